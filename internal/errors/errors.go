// Package errors provides structured error types for crfseek operations.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindIO represents I/O errors.
	KindIO ErrorKind = iota
	// KindInputTooShort means the source cannot fit even one sample window.
	KindInputTooShort
	// KindEncodeFailed means an external encode process failed.
	KindEncodeFailed
	// KindScoreFailed means the external quality scorer failed.
	KindScoreFailed
	// KindInsufficientSamples means aggregation was attempted on no results.
	KindInsufficientSamples
	// KindSearchExhausted means the search hit its iteration cap.
	KindSearchExhausted
	// KindNoPassingValue means no trial met the quality/size targets.
	KindNoPassingValue
	// KindCommand represents external command execution errors.
	KindCommand
	// KindProbeParse represents ffprobe output parsing errors.
	KindProbeParse
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindCancelled represents user-cancelled operations.
	KindCancelled
	// KindValidationFailed means the encoded output failed post-encode checks.
	KindValidationFailed
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "I/O error"
	case KindInputTooShort:
		return "Input too short"
	case KindEncodeFailed:
		return "Encode failed"
	case KindScoreFailed:
		return "Score failed"
	case KindInsufficientSamples:
		return "Insufficient samples"
	case KindSearchExhausted:
		return "Search exhausted"
	case KindNoPassingValue:
		return "No passing value"
	case KindCommand:
		return "Command error"
	case KindProbeParse:
		return "Probe parse error"
	case KindConfig:
		return "Configuration error"
	case KindCancelled:
		return "Operation cancelled"
	case KindValidationFailed:
		return "Validation failed"
	default:
		return "Unknown error"
	}
}

// CommandErrorKind represents the type of command error.
type CommandErrorKind int

const (
	// CommandStart means the command failed to start.
	CommandStart CommandErrorKind = iota
	// CommandWait means waiting for the command failed.
	CommandWait
	// CommandFailed means the command returned non-zero exit status.
	CommandFailed
)

// CommandError represents an error from executing an external command.
// Stderr carries the collaborator's diagnostic output so codec-specific
// failures can be debugged from the error message alone.
type CommandError struct {
	Command    string
	Kind       CommandErrorKind
	ExitCode   int
	Stderr     string
	Underlying error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case CommandStart:
		return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Underlying)
	case CommandWait:
		return fmt.Sprintf("failed to wait for %s: %v", e.Command, e.Underlying)
	case CommandFailed:
		if e.Stderr != "" {
			return fmt.Sprintf("command %s failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
		}
		return fmt.Sprintf("command %s failed with exit code %d", e.Command, e.ExitCode)
	default:
		return fmt.Sprintf("command %s error: %v", e.Command, e.Underlying)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Underlying
}

// CoreError is the main error type for crfseek operations.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

// NewInputTooShortError creates an error for a source too short to sample.
func NewInputTooShortError(duration float64) *CoreError {
	return &CoreError{
		Kind:    KindInputTooShort,
		Message: fmt.Sprintf("source duration %.1fs cannot fit a sample window", duration),
	}
}

// NewEncodeFailedError creates an error for a failed external encode.
func NewEncodeFailedError(encoder string, exitCode int, stderr string) *CoreError {
	cmdErr := &CommandError{
		Command:  encoder,
		Kind:     CommandFailed,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
	return &CoreError{Kind: KindEncodeFailed, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewScoreFailedError creates an error for a failed quality scoring run.
func NewScoreFailedError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindScoreFailed, Message: message, Underlying: underlying}
}

// NewInsufficientSamplesError creates an error for aggregation without results.
func NewInsufficientSamplesError() *CoreError {
	return &CoreError{Kind: KindInsufficientSamples, Message: "at least one sample result is required"}
}

// NewSearchExhaustedError creates an error for a search that hit its
// iteration cap before the bounds converged.
func NewSearchExhaustedError(iterations int) *CoreError {
	return &CoreError{
		Kind:    KindSearchExhausted,
		Message: fmt.Sprintf("search did not converge within %d iterations", iterations),
	}
}

// NewNoPassingValueError creates an error for a search where no trial met
// both the quality and size targets.
func NewNoPassingValueError(minQuality, maxSizePercent float64) *CoreError {
	return &CoreError{
		Kind: KindNoPassingValue,
		Message: fmt.Sprintf("no quality value met min quality %.1f within max size %.1f%%",
			minQuality, maxSizePercent),
	}
}

// NewCommandError creates a new command execution error.
func NewCommandError(cmd string, kind CommandErrorKind, underlying error) *CoreError {
	cmdErr := &CommandError{
		Command:    cmd,
		Kind:       kind,
		Underlying: underlying,
	}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewCommandStartError creates an error for when a command fails to start.
func NewCommandStartError(cmd string, err error) *CoreError {
	return NewCommandError(cmd, CommandStart, err)
}

// NewCommandFailedError creates an error for when a command returns non-zero exit status.
func NewCommandFailedError(cmd string, exitCode int, stderr string) *CoreError {
	cmdErr := &CommandError{
		Command:  cmd,
		Kind:     CommandFailed,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewProbeParseError creates a new ffprobe parsing error.
func NewProbeParseError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindProbeParse, Message: message, Underlying: underlying}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message}
}

// NewCancelledError creates an error for user-cancelled operations.
func NewCancelledError() *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "operation was cancelled by the user"}
}

// NewValidationFailedError creates an error listing failed post-encode checks.
func NewValidationFailedError(failures []string) *CoreError {
	return &CoreError{
		Kind:    KindValidationFailed,
		Message: fmt.Sprintf("encoded output failed validation: %s", strings.Join(failures, "; ")),
	}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsCancelled checks if the error is a cancellation error.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

// IsNoPassingValue checks if the error reports that no trial passed.
func IsNoPassingValue(err error) bool {
	return IsKind(err, KindNoPassingValue)
}

// IsSearchExhausted checks if the error reports an exhausted search.
func IsSearchExhausted(err error) bool {
	return IsKind(err, KindSearchExhausted)
}

// WrapExecError wraps an exec.ExitError into a CoreError.
func WrapExecError(cmd string, err error, stderr string) *CoreError {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return NewCommandFailedError(cmd, exitErr.ExitCode(), stderr)
	}
	return NewCommandStartError(cmd, err)
}
