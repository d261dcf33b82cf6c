// Package ffprobe extracts media information for search runs.
package ffprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexheretic/crfseek/internal/command"
	"github.com/alexheretic/crfseek/internal/errors"
)

// Source describes the input video for the lifetime of a run.
type Source struct {
	Path        string
	Duration    float64
	Width       int
	Height      int
	FrameRate   float64
	PixelFormat string
	SizeBytes   uint64
}

// ffprobeOutput represents the JSON output from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	PixFmt       string `json:"pix_fmt"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
}

// Probe inspects the input file with ffprobe.
func Probe(ctx context.Context, runner command.Runner, inputPath string) (*Source, error) {
	out, err := runner.Run(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)
	if err != nil {
		return nil, err
	}

	var probe ffprobeOutput
	if err := json.Unmarshal([]byte(out.Stdout), &probe); err != nil {
		return nil, errors.NewProbeParseError(fmt.Sprintf("invalid ffprobe output for %s", inputPath), err)
	}

	src := &Source{Path: inputPath}

	if probe.Format.Duration != "" {
		d, err := strconv.ParseFloat(probe.Format.Duration, 64)
		if err != nil {
			return nil, errors.NewProbeParseError(fmt.Sprintf("invalid duration %q", probe.Format.Duration), err)
		}
		src.Duration = d
	}
	if src.Duration <= 0 {
		return nil, errors.NewProbeParseError(fmt.Sprintf("no duration reported for %s", inputPath), nil)
	}

	if probe.Format.Size != "" {
		if size, err := strconv.ParseUint(probe.Format.Size, 10, 64); err == nil {
			src.SizeBytes = size
		}
	}

	var video *ffprobeStream
	for i := range probe.Streams {
		if probe.Streams[i].CodecType == "video" {
			video = &probe.Streams[i]
			break
		}
	}
	if video == nil {
		return nil, errors.NewProbeParseError(fmt.Sprintf("no video stream found in %s", inputPath), nil)
	}
	if video.Width <= 0 || video.Height <= 0 {
		return nil, errors.NewProbeParseError(
			fmt.Sprintf("invalid dimensions in %s: %dx%d", inputPath, video.Width, video.Height), nil)
	}

	src.Width = video.Width
	src.Height = video.Height
	src.PixelFormat = video.PixFmt

	if fps, ok := parseFrameRate(video.AvgFrameRate); ok {
		src.FrameRate = fps
	} else if fps, ok := parseFrameRate(video.RFrameRate); ok {
		src.FrameRate = fps
	}

	return src, nil
}

// parseFrameRate parses an ffprobe rational frame rate ("30000/1001").
func parseFrameRate(s string) (float64, bool) {
	if s == "" || s == "0/0" {
		return 0, false
	}

	num, den, found := strings.Cut(s, "/")
	if !found {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil && f > 0
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	fps := n / d
	return fps, fps > 0
}
