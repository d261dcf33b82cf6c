package encode

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/alexheretic/crfseek/internal/config"
	"github.com/alexheretic/crfseek/internal/errors"
	"github.com/alexheretic/crfseek/internal/util"
)

// Progress represents encoding progress information.
type Progress struct {
	Percent     float32
	Speed       float32
	FPS         float32
	ETA         time.Duration
	ElapsedSecs float64
}

// ProgressCallback is called with progress updates during encoding.
type ProgressCallback func(Progress)

// Run executes a full-video encode at a fixed CRF with progress reporting.
// Unlike sample encodes this streams ffmpeg's stderr, so it drives the
// process directly rather than through the buffered command runner.
func Run(ctx context.Context, inputPath, outputPath string, settings *config.Settings, crf int, duration float64, callback ProgressCallback) error {
	args := buildArgs(inputPath, settings, crf, outputPath)
	// Full encodes keep audio and subtitles; strip the sample-only flags.
	args = replaceStreamFlags(args)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.NewIOError("failed to get stderr pipe", err)
	}

	if err := cmd.Start(); err != nil {
		return errors.NewCommandStartError("ffmpeg", err)
	}

	var stderrBuilder strings.Builder
	parseProgress(stderr, &stderrBuilder, duration, callback)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return errors.NewCancelledError()
		}
		return errors.NewEncodeFailedError(settings.Encoder, cmd.ProcessState.ExitCode(),
			lastStderr(stderrBuilder.String()))
	}

	return nil
}

// replaceStreamFlags swaps the sample encoder's -an -sn for stream copies.
func replaceStreamFlags(args []string) []string {
	out := make([]string, 0, len(args)+2)
	for _, a := range args {
		if a == "-an" || a == "-sn" {
			continue
		}
		out = append(out, a)
	}
	// Keep audio/subtitles untouched; only video is re-encoded.
	last := out[len(out)-1]
	out = append(out[:len(out)-1], "-c:a", "copy", "-c:s", "copy", last)
	return out
}

func lastStderr(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, " | ")
}

// parseProgress reads FFmpeg stderr and parses progress updates.
func parseProgress(stderr io.Reader, stderrBuilder *strings.Builder, duration float64, callback ProgressCallback) {
	reader := bufio.NewReader(stderr)
	var lineBuf strings.Builder

	for {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}

		stderrBuilder.WriteByte(b)

		// Progress lines end with \r or \n
		if b == '\r' || b == '\n' {
			line := lineBuf.String()
			lineBuf.Reset()

			if callback != nil && strings.Contains(line, "frame=") {
				if progress := parseProgressLine(line, duration); progress != nil {
					callback(*progress)
				}
			}
		} else {
			lineBuf.WriteByte(b)
		}
	}
}

// parseProgressLine extracts progress information from an FFmpeg progress line.
func parseProgressLine(line string, duration float64) *Progress {
	var elapsedSecs float64
	if idx := strings.Index(line, "time="); idx >= 0 {
		remaining := line[idx+5:]
		if spaceIdx := strings.IndexAny(remaining, " \t"); spaceIdx > 0 {
			remaining = remaining[:spaceIdx]
		}
		if secs, ok := util.ParseFFmpegTime(remaining); ok {
			elapsedSecs = secs
		}
	}

	var fps, speed float32

	if idx := strings.Index(line, "fps="); idx >= 0 {
		remaining := strings.TrimLeft(line[idx+4:], " ")
		if spaceIdx := strings.IndexAny(remaining, " \t"); spaceIdx > 0 {
			if f, err := strconv.ParseFloat(remaining[:spaceIdx], 32); err == nil {
				fps = float32(f)
			}
		}
	}

	if idx := strings.Index(line, "speed="); idx >= 0 {
		remaining := strings.TrimLeft(line[idx+6:], " ")
		if spaceIdx := strings.IndexAny(remaining, " \t\r\n"); spaceIdx > 0 {
			remaining = remaining[:spaceIdx]
		}
		remaining = strings.TrimSuffix(remaining, "x")
		if s, err := strconv.ParseFloat(remaining, 32); err == nil {
			speed = float32(s)
		}
	}

	var percent float32
	if duration > 0 {
		percent = float32((elapsedSecs / duration) * 100)
		if percent > 100 {
			percent = 100
		}
	}

	var eta time.Duration
	if speed > 0 && duration > 0 {
		remainingDuration := duration - elapsedSecs
		eta = time.Duration(remainingDuration/float64(speed)) * time.Second
	}

	return &Progress{
		Percent:     percent,
		Speed:       speed,
		FPS:         fps,
		ETA:         eta,
		ElapsedSecs: elapsedSecs,
	}
}
