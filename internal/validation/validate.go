package validation

import (
	"context"
	"fmt"
	"math"

	"github.com/alexheretic/crfseek/internal/command"
	"github.com/alexheretic/crfseek/internal/ffprobe"
	"github.com/alexheretic/crfseek/internal/util"
)

// durationTolerance returns the allowed absolute duration drift in seconds:
// 1% of the source, but never below one second.
func durationTolerance(sourceDuration float64) float64 {
	return math.Max(1.0, sourceDuration*0.01)
}

// Validate probes the encoded output and checks it against the source. A
// probe failure is reported as failed checks, not as an error: the caller
// decides whether a bad output is fatal.
func Validate(ctx context.Context, runner command.Runner, source *ffprobe.Source, outputPath, expectedPixelFormat string) *Result {
	r := &Result{}

	size, err := util.GetFileSize(outputPath)
	if err != nil || size == 0 {
		r.OutputMessage = "output file is missing or empty"
		r.StreamMessage = "not checked"
		r.DurationMessage = "not checked"
		r.ResolutionMessage = "not checked"
		r.PixelFormatMessage = "not checked"
		return r
	}
	r.HasOutput = true
	r.OutputMessage = util.FormatBytes(size)

	encoded, err := ffprobe.Probe(ctx, runner, outputPath)
	if err != nil {
		r.StreamMessage = fmt.Sprintf("probe failed: %v", err)
		r.DurationMessage = "not checked"
		r.ResolutionMessage = "not checked"
		r.PixelFormatMessage = "not checked"
		return r
	}
	r.HasVideoStream = true
	r.StreamMessage = fmt.Sprintf("%dx%d %s", encoded.Width, encoded.Height, encoded.PixelFormat)

	drift := math.Abs(encoded.Duration - source.Duration)
	tolerance := durationTolerance(source.Duration)
	r.IsDurationCorrect = drift <= tolerance
	if r.IsDurationCorrect {
		r.DurationMessage = fmt.Sprintf("%s (drift %.2fs)", util.FormatDuration(encoded.Duration), drift)
	} else {
		r.DurationMessage = fmt.Sprintf("expected %s, got %s (drift %.2fs exceeds %.2fs)",
			util.FormatDuration(source.Duration), util.FormatDuration(encoded.Duration), drift, tolerance)
	}

	r.IsResolutionCorrect = encoded.Width == source.Width && encoded.Height == source.Height
	if r.IsResolutionCorrect {
		r.ResolutionMessage = fmt.Sprintf("%dx%d", encoded.Width, encoded.Height)
	} else {
		r.ResolutionMessage = fmt.Sprintf("expected %dx%d, got %dx%d",
			source.Width, source.Height, encoded.Width, encoded.Height)
	}

	if expectedPixelFormat == "" {
		r.IsPixelFormatCorrect = true
		r.PixelFormatMessage = encoded.PixelFormat
	} else {
		r.IsPixelFormatCorrect = encoded.PixelFormat == expectedPixelFormat
		if r.IsPixelFormatCorrect {
			r.PixelFormatMessage = encoded.PixelFormat
		} else {
			r.PixelFormatMessage = fmt.Sprintf("expected %s, got %s", expectedPixelFormat, encoded.PixelFormat)
		}
	}

	return r
}
