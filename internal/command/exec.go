package command

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/alexheretic/crfseek/internal/errors"
	"github.com/alexheretic/crfseek/internal/logging"
)

// killGracePeriod is how long a cancelled process gets to clean up before
// being killed outright.
const killGracePeriod = 3 * time.Second

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args, capturing stdout and stderr separately.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	logging.Debug("running command", "command", name, "args", args)

	cmd := exec.CommandContext(ctx, name, args...)
	// Interrupt first so ffmpeg can finalize its output; WaitDelay kills
	// anything that ignores the signal.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = killGracePeriod

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	out := Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		WallTime: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return out, errors.NewCancelledError()
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			out.ExitCode = exitErr.ExitCode()
			return out, errors.NewCommandFailedError(name, out.ExitCode, LastLines(out.Stderr, 5))
		}
		return out, errors.NewCommandStartError(name, err)
	}

	return out, nil
}
