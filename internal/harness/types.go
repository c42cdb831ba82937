package harness

import (
	"fmt"

	"github.com/patternmatch/strusmatch/internal/sessioninput"
)

// Result is the outcome of running one Scenario.
type Result struct {
	Scenario string
	Pass     bool
	Got      []sessioninput.ProjectedResult
	Errors   []string
}

// NewResult starts a passing Result for the named scenario; AddError
// flips it to failing.
func NewResult(name string) *Result {
	return &Result{Scenario: name, Pass: true}
}

// AddError records a failure reason and marks the result failed.
func (r *Result) AddError(format string, args ...any) {
	r.Pass = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}
