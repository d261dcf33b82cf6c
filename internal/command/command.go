// Package command provides the execution abstraction for external tools.
// Every encoder, probe, and scorer invocation goes through a Runner so the
// rest of the pipeline can be exercised with test doubles.
package command

import (
	"context"
	"strings"
	"time"
)

// Output captures everything a finished external process produced.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
	WallTime time.Duration
}

// Runner executes an external command and captures its output.
//
// Run blocks until the process exits or ctx is cancelled. A non-zero exit
// status is reported through the returned error while Output still carries
// the captured streams and exit code, so callers can surface the
// collaborator's diagnostics.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// LastLines returns the last n non-empty lines of output joined with " | ".
// External tools write long banners to stderr; error messages only need the
// tail where the actual failure is reported.
func LastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, strings.TrimSpace(line))
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, " | ")
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, name string, args ...string) (Output, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) (Output, error) {
	return f(ctx, name, args...)
}
