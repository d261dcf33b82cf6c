package validation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexheretic/crfseek/internal/command"
	"github.com/alexheretic/crfseek/internal/ffprobe"
)

func probeJSON(duration float64, width, height int, pixFmt string) string {
	return fmt.Sprintf(`{
		"streams": [
			{
				"codec_type": "video",
				"width": %d,
				"height": %d,
				"pix_fmt": %q,
				"r_frame_rate": "24/1"
			}
		],
		"format": {"duration": "%f", "size": "1000"}
	}`, width, height, pixFmt, duration)
}

func fakeRunner(stdout string) command.Runner {
	return command.RunnerFunc(func(context.Context, string, ...string) (command.Output, error) {
		return command.Output{Stdout: stdout}, nil
	})
}

func writeOutput(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.mkv")
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testSource() *ffprobe.Source {
	return &ffprobe.Source{
		Path:     "in.mkv",
		Duration: 600,
		Width:    1920,
		Height:   1080,
	}
}

func TestValidatePasses(t *testing.T) {
	out := writeOutput(t, 500)
	runner := fakeRunner(probeJSON(599.8, 1920, 1080, "yuv420p10le"))

	r := Validate(context.Background(), runner, testSource(), out, "yuv420p10le")
	if !r.IsValid() {
		t.Errorf("validation failed: %v", r.Failures())
	}
	if len(r.Steps()) != 5 {
		t.Errorf("steps = %d, want 5", len(r.Steps()))
	}
}

func TestValidateMissingOutput(t *testing.T) {
	runner := fakeRunner(probeJSON(600, 1920, 1080, "yuv420p10le"))

	r := Validate(context.Background(), runner, testSource(), filepath.Join(t.TempDir(), "missing.mkv"), "")
	if r.IsValid() {
		t.Fatal("expected failure for missing output")
	}
	if r.HasOutput {
		t.Error("HasOutput = true for missing file")
	}
}

func TestValidateDurationDrift(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		want     bool
	}{
		{"exact", 600, true},
		{"within one percent", 595, true},
		{"too short", 590, false},
		{"too long", 610, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := writeOutput(t, 500)
			runner := fakeRunner(probeJSON(tt.duration, 1920, 1080, "yuv420p10le"))

			r := Validate(context.Background(), runner, testSource(), out, "")
			if r.IsDurationCorrect != tt.want {
				t.Errorf("IsDurationCorrect = %v, want %v (%s)", r.IsDurationCorrect, tt.want, r.DurationMessage)
			}
		})
	}
}

func TestValidateShortSourceTolerance(t *testing.T) {
	// A 30s source gets the 1s floor, not 1%.
	source := testSource()
	source.Duration = 30
	out := writeOutput(t, 500)
	runner := fakeRunner(probeJSON(29.2, 1920, 1080, "yuv420p10le"))

	r := Validate(context.Background(), runner, source, out, "")
	if !r.IsDurationCorrect {
		t.Errorf("drift 0.8s should pass the 1s floor: %s", r.DurationMessage)
	}
}

func TestValidateResolutionMismatch(t *testing.T) {
	out := writeOutput(t, 500)
	runner := fakeRunner(probeJSON(600, 1280, 720, "yuv420p10le"))

	r := Validate(context.Background(), runner, testSource(), out, "")
	if r.IsResolutionCorrect {
		t.Error("expected resolution mismatch")
	}
	if r.IsValid() {
		t.Error("result should not be valid")
	}
}

func TestValidatePixelFormat(t *testing.T) {
	out := writeOutput(t, 500)
	runner := fakeRunner(probeJSON(600, 1920, 1080, "yuv420p"))

	r := Validate(context.Background(), runner, testSource(), out, "yuv420p10le")
	if r.IsPixelFormatCorrect {
		t.Error("expected pixel format mismatch")
	}

	// No expectation: any format passes.
	r = Validate(context.Background(), runner, testSource(), out, "")
	if !r.IsPixelFormatCorrect {
		t.Error("empty expectation should pass")
	}
}
