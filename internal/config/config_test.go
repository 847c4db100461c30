package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Input = "sales.csv"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "Electronics", cfg.Category)
	assert.Equal(t, "fail", cfg.OnMalformed)
	assert.Equal(t, EngineMemory, cfg.Engine)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 20, cfg.MaxRows)
	assert.Equal(t, 20, cfg.Truncate)
	assert.Empty(t, cfg.Input)
}

func TestParse_OverDefaults(t *testing.T) {
	cfg, err := Parse([]byte("input: data/sales.csv\ncategory: Books\nengine: sqlite\n"))
	require.NoError(t, err)

	assert.Equal(t, "data/sales.csv", cfg.Input)
	assert.Equal(t, "Books", cfg.Category)
	assert.Equal(t, EngineSQLite, cfg.Engine)
	assert.Equal(t, "fail", cfg.OnMalformed, "unset fields keep defaults")
	assert.Equal(t, 20, cfg.MaxRows)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("categroy: Books\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input: sales.csv\nworkers: 4\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"skip policy", func(c *Config) { c.OnMalformed = "skip" }, ""},
		{"sqlite engine", func(c *Config) { c.Engine = EngineSQLite }, ""},
		{"no display limits", func(c *Config) { c.MaxRows, c.Truncate = 0, 0 }, ""},
		{"max workers", func(c *Config) { c.Workers = 256 }, ""},
		{"empty input", func(c *Config) { c.Input = "" }, "input"},
		{"empty category", func(c *Config) { c.Category = "" }, "category"},
		{"unknown policy", func(c *Config) { c.OnMalformed = "ignore" }, "on_malformed"},
		{"unknown engine", func(c *Config) { c.Engine = "spark" }, "engine"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"too many workers", func(c *Config) { c.Workers = 257 }, "workers"},
		{"negative max rows", func(c *Config) { c.MaxRows = -1 }, "max_rows"},
		{"negative truncate", func(c *Config) { c.Truncate = -5 }, "truncate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
