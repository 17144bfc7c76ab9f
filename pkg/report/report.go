// Package report records the outcome of each step of a deploy.
package report

import (
	"fmt"
	"time"
)

// Status of a single step
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Step is the outcome of one step
type Step struct {
	Name     string
	Status   Status
	Detail   string
	Err      error
	Duration time.Duration
}

// OK builds a successful step
func OK(name, detail string) Step {
	return Step{Name: name, Status: StatusOK, Detail: detail}
}

// Warning builds a step that completed with a non-fatal problem
func Warning(name, detail string) Step {
	return Step{Name: name, Status: StatusWarning, Detail: detail}
}

// Failed builds a failed step
func Failed(name string, err error) Step {
	return Step{Name: name, Status: StatusFailed, Err: err}
}

// Skipped builds a step that did not run
func Skipped(name, reason string) Step {
	return Step{Name: name, Status: StatusSkipped, Detail: reason}
}

func (s Step) String() string {
	switch {
	case s.Err != nil:
		return fmt.Sprintf("%s: %s (%v)", s.Name, s.Status, s.Err)
	case s.Detail != "":
		return fmt.Sprintf("%s: %s (%s)", s.Name, s.Status, s.Detail)
	default:
		return fmt.Sprintf("%s: %s", s.Name, s.Status)
	}
}

// Report collects the steps of one run
type Report struct {
	Version string
	Alias   string
	Steps   []Step
}

// Add appends a step
func (r *Report) Add(s Step) {
	r.Steps = append(r.Steps, s)
}

// Step returns the named step
func (r *Report) Step(name string) (Step, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

// Failed reports whether any step failed
func (r *Report) Failed() bool {
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return true
		}
	}
	return false
}
