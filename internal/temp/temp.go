// Package temp manages run-scoped temporary artifact directories.
package temp

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/alexheretic/crfseek/internal/errors"
	"github.com/alexheretic/crfseek/internal/logging"
	"github.com/alexheretic/crfseek/internal/util"
)

// RunDir is the temporary directory for one search run. Sample clips live at
// the top level and are shared by every trial; each trial gets its own
// subdirectory for encoded artifacts so it can be discarded independently.
type RunDir struct {
	path string
}

// NewRunDir creates a uniquely named run directory under base, or the
// system temp directory when base is empty.
func NewRunDir(base string) (*RunDir, error) {
	if base == "" {
		base = os.TempDir()
	}

	path := filepath.Join(base, fmt.Sprintf("crfseek-%s", uuid.NewString()))
	if err := util.EnsureDirectory(path); err != nil {
		return nil, errors.NewIOError(fmt.Sprintf("failed to create run directory %s", path), err)
	}

	return &RunDir{path: path}, nil
}

// Path returns the run directory path.
func (d *RunDir) Path() string {
	return d.path
}

// SamplePath returns the path for the extracted clip of window index i.
func (d *RunDir) SamplePath(i int) string {
	return filepath.Join(d.path, fmt.Sprintf("sample_%d.mkv", i))
}

// TrialDir creates and returns the artifact directory for one trial CRF.
func (d *RunDir) TrialDir(crf int) (string, error) {
	path := filepath.Join(d.path, fmt.Sprintf("crf_%d", crf))
	if err := util.EnsureDirectory(path); err != nil {
		return "", errors.NewIOError(fmt.Sprintf("failed to create trial directory %s", path), err)
	}
	return path, nil
}

// RemoveTrial deletes one trial's artifacts. Removal failures are logged,
// not returned; Close still removes the whole tree.
func (d *RunDir) RemoveTrial(crf int) {
	path := filepath.Join(d.path, fmt.Sprintf("crf_%d", crf))
	if err := os.RemoveAll(path); err != nil {
		logging.Warn("failed to remove trial artifacts", "path", path, "error", err)
	}
}

// Close removes the run directory and everything in it. Safe to call on
// every exit path, including cancellation.
func (d *RunDir) Close() error {
	if err := os.RemoveAll(d.path); err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to remove run directory %s", d.path), err)
	}
	return nil
}
