package ffprobe

import (
	"context"
	"testing"

	"github.com/alexheretic/crfseek/internal/command"
	"github.com/alexheretic/crfseek/internal/errors"
)

const sampleProbeJSON = `{
	"streams": [
		{"codec_type": "audio", "channels": 6},
		{
			"codec_type": "video",
			"width": 1920,
			"height": 1080,
			"pix_fmt": "yuv420p10le",
			"avg_frame_rate": "24000/1001",
			"r_frame_rate": "24000/1001"
		}
	],
	"format": {"duration": "600.250000", "size": "4294967296"}
}`

func fakeRunner(stdout string, err error) command.Runner {
	return command.RunnerFunc(func(ctx context.Context, name string, args ...string) (command.Output, error) {
		return command.Output{Stdout: stdout}, err
	})
}

func TestProbe(t *testing.T) {
	src, err := Probe(context.Background(), fakeRunner(sampleProbeJSON, nil), "in.mkv")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}

	if src.Duration != 600.25 {
		t.Errorf("Duration = %v, want 600.25", src.Duration)
	}
	if src.Width != 1920 || src.Height != 1080 {
		t.Errorf("dimensions = %dx%d, want 1920x1080", src.Width, src.Height)
	}
	if src.PixelFormat != "yuv420p10le" {
		t.Errorf("PixelFormat = %q", src.PixelFormat)
	}
	if src.SizeBytes != 4294967296 {
		t.Errorf("SizeBytes = %d", src.SizeBytes)
	}
	if src.FrameRate < 23.97 || src.FrameRate > 23.98 {
		t.Errorf("FrameRate = %v, want ~23.976", src.FrameRate)
	}
}

func TestProbeErrors(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
	}{
		{"invalid json", "not json"},
		{"no video stream", `{"streams": [{"codec_type": "audio"}], "format": {"duration": "10"}}`},
		{"missing duration", `{"streams": [{"codec_type": "video", "width": 10, "height": 10}], "format": {}}`},
		{"zero dimensions", `{"streams": [{"codec_type": "video", "width": 0, "height": 0}], "format": {"duration": "10"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Probe(context.Background(), fakeRunner(tt.stdout, nil), "in.mkv")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsKind(err, errors.KindProbeParse) {
				t.Errorf("expected KindProbeParse, got %v", err)
			}
		})
	}
}

func TestProbePropagatesRunnerError(t *testing.T) {
	runErr := errors.NewCommandStartError("ffprobe", context.DeadlineExceeded)
	_, err := Probe(context.Background(), fakeRunner("", runErr), "in.mkv")
	if !errors.IsKind(err, errors.KindCommand) {
		t.Errorf("expected command error passthrough, got %v", err)
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"24/1", 24, true},
		{"30000/1001", 29.97002997002997, true},
		{"25", 25, true},
		{"0/0", 0, false},
		{"", 0, false},
		{"x/y", 0, false},
		{"10/0", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseFrameRate(tt.input)
		if ok != tt.ok {
			t.Errorf("parseFrameRate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got != tt.expected {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
