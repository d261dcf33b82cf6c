package sample

import (
	"context"
	"fmt"

	"github.com/alexheretic/crfseek/internal/command"
	"github.com/alexheretic/crfseek/internal/errors"
	"github.com/alexheretic/crfseek/internal/logging"
	"github.com/alexheretic/crfseek/internal/temp"
	"github.com/alexheretic/crfseek/internal/util"
)

// Clip is one extracted sample on disk.
type Clip struct {
	Index     int
	Window    Window
	Path      string
	SizeBytes uint64
}

// Extractor cuts sample clips out of the source via ffmpeg stream copy.
// Stream copy keeps the source's frame rate and pixel format and avoids a
// decode+encode cycle, at the cost of keyframe-aligned cut points.
type Extractor struct {
	runner command.Runner
}

// NewExtractor creates an Extractor using the given command runner.
func NewExtractor(runner command.Runner) *Extractor {
	return &Extractor{runner: runner}
}

// Extract cuts one clip per window into the run directory. Clips are
// returned in window order.
func (e *Extractor) Extract(ctx context.Context, inputPath string, windows []Window, dir *temp.RunDir) ([]Clip, error) {
	clips := make([]Clip, 0, len(windows))

	for i, w := range windows {
		outPath := dir.SamplePath(i)
		args := []string{
			"-ss", fmt.Sprintf("%.3f", w.Start),
			"-i", inputPath,
			"-t", fmt.Sprintf("%.3f", w.Length),
			"-c:v", "copy",
			"-an", "-sn",
			"-y",
			outPath,
		}

		out, err := e.runner.Run(ctx, "ffmpeg", args...)
		if err != nil {
			if errors.IsCancelled(err) {
				return nil, err
			}
			return nil, errors.NewIOError(
				fmt.Sprintf("failed to extract sample %d (%.1fs-%.1fs)", i, w.Start, w.End()), err)
		}

		size, err := util.GetFileSize(outPath)
		if err != nil || size == 0 {
			return nil, errors.NewIOError(
				fmt.Sprintf("sample %d produced no output: %s", i, command.LastLines(out.Stderr, 3)), err)
		}

		logging.Debug("extracted sample", "index", i, "start", w.Start, "bytes", size)
		clips = append(clips, Clip{
			Index:     i,
			Window:    w,
			Path:      outPath,
			SizeBytes: size,
		})
	}

	return clips, nil
}
