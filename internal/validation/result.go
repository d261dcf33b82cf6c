// Package validation provides post-encode validation checks.
package validation

import "fmt"

// Result contains the overall validation result for one encoded output.
type Result struct {
	HasOutput            bool
	HasVideoStream       bool
	IsDurationCorrect    bool
	IsResolutionCorrect  bool
	IsPixelFormatCorrect bool

	// Details
	OutputMessage      string
	StreamMessage      string
	DurationMessage    string
	ResolutionMessage  string
	PixelFormatMessage string
}

// Step represents a single validation check.
type Step struct {
	Name    string
	Passed  bool
	Details string
}

// IsValid returns true if all validation checks passed.
func (r *Result) IsValid() bool {
	return r.HasOutput &&
		r.HasVideoStream &&
		r.IsDurationCorrect &&
		r.IsResolutionCorrect &&
		r.IsPixelFormatCorrect
}

// Steps returns all validation steps with results.
func (r *Result) Steps() []Step {
	return []Step{
		{Name: "Output file", Passed: r.HasOutput, Details: r.OutputMessage},
		{Name: "Video stream", Passed: r.HasVideoStream, Details: r.StreamMessage},
		{Name: "Duration", Passed: r.IsDurationCorrect, Details: r.DurationMessage},
		{Name: "Resolution", Passed: r.IsResolutionCorrect, Details: r.ResolutionMessage},
		{Name: "Pixel format", Passed: r.IsPixelFormatCorrect, Details: r.PixelFormatMessage},
	}
}

// Failures returns descriptions of failed validation checks.
func (r *Result) Failures() []string {
	var failures []string
	for _, step := range r.Steps() {
		if !step.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", step.Name, step.Details))
		}
	}
	return failures
}
