// Package report collects the change log, warnings, and errors produced
// by one formatting run.
package report

import (
	"fmt"
	"time"
)

// WarningKind distinguishes recoverable irregularities.
type WarningKind string

const (
	// WarningStructural marks an ambiguous or undetected region;
	// formatting proceeded on a best guess.
	WarningStructural WarningKind = "structural"
	// WarningCrossReference marks an unresolved figure/table reference
	// that was left unchanged.
	WarningCrossReference WarningKind = "cross_reference"
	// WarningApproximation marks a best-effort result such as
	// position-based footnote page grouping.
	WarningApproximation WarningKind = "approximation"
)

// Warning is one non-fatal irregularity.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Pass    string      `json:"pass,omitempty" yaml:"pass,omitempty"`
	Message string      `json:"message" yaml:"message"`
}

// PassError records a pass that raised an unexpected condition. The
// pipeline continues past it; the error only degrades the report.
type PassError struct {
	Pass    string `json:"pass" yaml:"pass"`
	Message string `json:"message" yaml:"message"`
}

// ChangeRecord is one logged mutation of a formatting-relevant
// attribute. Records are append-only and never mutated after creation.
type ChangeRecord struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Location    string `json:"location" yaml:"location"`
	OldValue    string `json:"old_value,omitempty" yaml:"old_value,omitempty"`
	NewValue    string `json:"new_value,omitempty" yaml:"new_value,omitempty"`
}

// Report aggregates the outcome of one formatting run.
type Report struct {
	Success  bool           `json:"success" yaml:"success"`
	Message  string         `json:"message" yaml:"message"`
	Changes  []ChangeRecord `json:"changes" yaml:"changes"`
	Warnings []Warning      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []PassError    `json:"errors,omitempty" yaml:"errors,omitempty"`
	Started  time.Time      `json:"started" yaml:"started"`
	Duration time.Duration  `json:"duration" yaml:"duration"`
}

// New returns an empty report stamped with the current time.
func New() *Report {
	return &Report{Started: time.Now().UTC()}
}

// Change appends one change record.
func (r *Report) Change(typ, location, description string) {
	r.Changes = append(r.Changes, ChangeRecord{
		Type:        typ,
		Description: description,
		Location:    location,
	})
}

// ChangeValue appends a change record carrying old and new values.
func (r *Report) ChangeValue(typ, location, description, oldValue, newValue string) {
	r.Changes = append(r.Changes, ChangeRecord{
		Type:        typ,
		Description: description,
		Location:    location,
		OldValue:    oldValue,
		NewValue:    newValue,
	})
}

// Warn appends a warning.
func (r *Report) Warn(kind WarningKind, pass, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{
		Kind:    kind,
		Pass:    pass,
		Message: fmt.Sprintf(format, args...),
	})
}

// Fail records a pass-level error.
func (r *Report) Fail(pass, format string, args ...any) {
	r.Errors = append(r.Errors, PassError{
		Pass:    pass,
		Message: fmt.Sprintf(format, args...),
	})
}

// Finish stamps the duration and derives success: a run succeeds when
// no pass-level errors were recorded.
func (r *Report) Finish() {
	r.Duration = time.Since(r.Started)
	r.Success = len(r.Errors) == 0
	if r.Success {
		r.Message = fmt.Sprintf("formatting complete: %d changes, %d warnings", len(r.Changes), len(r.Warnings))
	} else {
		r.Message = fmt.Sprintf("formatting degraded: %d pass errors", len(r.Errors))
	}
}

// CountByPass returns how many changes carry the given type prefix.
func (r *Report) CountByPass(typ string) int {
	n := 0
	for _, c := range r.Changes {
		if c.Type == typ {
			n++
		}
	}
	return n
}
