package harness

import "github.com/roach88/salesmetrics/internal/pipeline"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when both backends agree and every assertion holds.
	Pass bool `json:"pass"`

	// Errors contains assertion and agreement failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// ErrorCode is the code of the run error, empty when the run succeeded.
	ErrorCode string `json:"error_code,omitempty"`

	// ErrorMessage is the text of the run error.
	ErrorMessage string `json:"error_message,omitempty"`

	// Report is the in-memory backend's report. Nil when the run failed.
	Report *pipeline.Report `json:"-"`

	// Digests holds the view digests of Report.
	Digests map[string]string `json:"digests,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
