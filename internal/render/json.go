package render

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/salesmetrics/internal/pipeline"
)

// Document is the JSON payload of a run.
type Document struct {
	RunID   string            `json:"run_id"`
	Report  json.RawMessage   `json:"report"`
	Digests map[string]string `json:"digests"`
}

// NewDocument builds the JSON payload for r. The report is embedded in
// canonical form so its bytes match the digests.
func NewDocument(r *pipeline.Report) (*Document, error) {
	canonical, err := r.Canonical()
	if err != nil {
		return nil, fmt.Errorf("canonical report: %w", err)
	}
	digests, err := r.Digests()
	if err != nil {
		return nil, fmt.Errorf("view digests: %w", err)
	}
	return &Document{
		RunID:   r.RunID,
		Report:  canonical,
		Digests: digests,
	}, nil
}
