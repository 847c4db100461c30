// Package config loads and validates run configuration.
//
// Values are resolved in three layers: Defaults, then an optional YAML
// file, then command-line overrides. The merged Config is validated
// against the #Config definition in schema.cue.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Engine names.
const (
	EngineMemory = "memory"
	EngineSQLite = "sqlite"
)

// Config holds one run's settings.
type Config struct {
	Input       string `yaml:"input" json:"input"`
	Category    string `yaml:"category" json:"category"`
	OnMalformed string `yaml:"on_malformed" json:"on_malformed"` // "fail" | "skip"
	Engine      string `yaml:"engine" json:"engine"`             // "memory" | "sqlite"
	Workers     int    `yaml:"workers" json:"workers"`
	MaxRows     int    `yaml:"max_rows" json:"max_rows"` // rows shown per view, 0 = all
	Truncate    int    `yaml:"truncate" json:"truncate"` // cell width limit, 0 = none
}

// Defaults returns the reference run's settings without an input path.
func Defaults() Config {
	return Config{
		Category:    "Electronics",
		OnMalformed: "fail",
		Engine:      EngineMemory,
		Workers:     1,
		MaxRows:     20,
		Truncate:    20,
	}
}

// LoadFile reads a YAML file over the defaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Unknown fields are rejected so
// typos ("categroy:") do not silently fall back to a default.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// ValidationError lists every constraint the configuration violates.
type ValidationError struct {
	Details string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + e.Details
}

// Validate checks cfg against the #Config schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := def.Unify(ctx.Encode(c))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Details: cueerrors.Details(err, nil)}
	}
	return nil
}
