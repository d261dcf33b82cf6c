// Package encode wraps the external encoder process.
package encode

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexheretic/crfseek/internal/command"
	"github.com/alexheretic/crfseek/internal/config"
	"github.com/alexheretic/crfseek/internal/errors"
	"github.com/alexheretic/crfseek/internal/logging"
	"github.com/alexheretic/crfseek/internal/util"
)

// Artifact is the product of one sample encode.
type Artifact struct {
	Path      string
	SizeBytes uint64
	WallTime  time.Duration
}

// SampleEncoder encodes sample clips at trial quality values.
type SampleEncoder struct {
	runner   command.Runner
	settings *config.Settings
}

// NewSampleEncoder creates a SampleEncoder.
func NewSampleEncoder(runner command.Runner, settings *config.Settings) *SampleEncoder {
	return &SampleEncoder{runner: runner, settings: settings}
}

// Encode encodes one sample clip at the given CRF into outDir. The caller
// owns cleanup of the artifact. Failures are surfaced, never retried: a bad
// codec name or broken toolchain does not heal itself.
func (e *SampleEncoder) Encode(ctx context.Context, clipPath string, crf int, outDir string) (*Artifact, error) {
	outPath := filepath.Join(outDir, filepath.Base(clipPath))
	args := buildArgs(clipPath, e.settings, crf, outPath)

	out, err := e.runner.Run(ctx, "ffmpeg", args...)
	if err != nil {
		if errors.IsCancelled(err) {
			return nil, err
		}
		return nil, errors.NewEncodeFailedError(e.settings.Encoder, out.ExitCode, command.LastLines(out.Stderr, 5))
	}

	size, err := util.GetFileSize(outPath)
	if err != nil || size == 0 {
		return nil, errors.NewEncodeFailedError(e.settings.Encoder, out.ExitCode,
			fmt.Sprintf("no output artifact produced: %s", command.LastLines(out.Stderr, 3)))
	}

	logging.Debug("encoded sample", "clip", clipPath, "crf", crf, "bytes", size, "wall_time", out.WallTime)
	return &Artifact{
		Path:      outPath,
		SizeBytes: size,
		WallTime:  out.WallTime,
	}, nil
}

// buildArgs assembles the ffmpeg command line for one encode.
func buildArgs(inputPath string, settings *config.Settings, crf int, outPath string) []string {
	args := []string{
		"-i", inputPath,
		"-c:v", settings.Encoder,
		QualityFlag(settings.Encoder), fmt.Sprintf("%d", crf),
	}
	if settings.Preset != "" {
		args = append(args, "-preset", settings.Preset)
	}
	if settings.PixelFormat != "" {
		args = append(args, "-pix_fmt", settings.PixelFormat)
	}
	for _, extra := range settings.ExtraArgs {
		key, value, _ := strings.Cut(extra, "=")
		args = append(args, "-"+key, value)
	}
	args = append(args, "-an", "-sn", "-y", outPath)
	return args
}

// QualityFlag returns the ffmpeg flag carrying the quality parameter for the
// given encoder. Most take -crf; hardware encoders spell it differently.
func QualityFlag(encoder string) string {
	switch encoder {
	case "librav1e":
		return "-qp"
	case "av1_nvenc", "hevc_nvenc", "h264_nvenc":
		return "-cq"
	case "av1_qsv", "hevc_qsv", "h264_qsv":
		return "-global_quality"
	default:
		return "-crf"
	}
}
