package processing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/alexheretic/crfseek/internal/command"
	"github.com/alexheretic/crfseek/internal/config"
	"github.com/alexheretic/crfseek/internal/search"
)

const probeJSON = `{
	"streams": [
		{
			"codec_type": "video",
			"width": 1920,
			"height": 1080,
			"pix_fmt": "yuv420p10le",
			"r_frame_rate": "24000/1001"
		}
	],
	"format": {"duration": "600.0", "size": "1073741824"}
}`

// scriptedRunner fakes ffprobe and every ffmpeg invocation the pipeline
// makes. Quality falls one point per CRF step and encoded size equals the
// CRF in bytes, against 100-byte extracted samples.
func scriptedRunner(t *testing.T) command.Runner {
	t.Helper()
	return command.RunnerFunc(func(_ context.Context, name string, args ...string) (command.Output, error) {
		switch {
		case name == "ffprobe":
			return command.Output{Stdout: probeJSON}, nil

		case slices.Contains(args, "-filter_complex"):
			// Scoring: recover the trial value from the distorted path,
			// which lives in a crf_<n> trial directory.
			distorted := args[slices.Index(args, "-i")+1]
			var crf int
			if _, err := fmt.Sscanf(filepath.Base(filepath.Dir(distorted)), "crf_%d", &crf); err != nil {
				t.Errorf("unexpected distorted path %q: %v", distorted, err)
			}
			return command.Output{Stderr: fmt.Sprintf("VMAF score: %d.000000", 100-crf)}, nil

		case slices.Contains(args, "copy"):
			// Sample extraction: produce a 100 byte clip.
			out := args[len(args)-1]
			if err := os.WriteFile(out, make([]byte, 100), 0o644); err != nil {
				t.Errorf("write clip: %v", err)
			}
			return command.Output{}, nil

		case slices.Contains(args, "-crf"):
			// Sample encode: artifact size equals the trial value.
			crf := 0
			fmt.Sscanf(args[slices.Index(args, "-crf")+1], "%d", &crf)
			out := args[len(args)-1]
			if err := os.WriteFile(out, make([]byte, crf), 0o644); err != nil {
				t.Errorf("write artifact: %v", err)
			}
			return command.Output{}, nil

		default:
			t.Errorf("unexpected command: %s %v", name, args)
			return command.Output{}, nil
		}
	})
}

func testOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	settings := config.Default()
	settings.MinCRF = 1
	settings.MaxCRF = 63
	settings.MinQuality = 95
	settings.MaxSizePercent = 100
	settings.TempDir = t.TempDir()
	return New(settings, scriptedRunner(t), nil)
}

func TestCRFSearchPipeline(t *testing.T) {
	o := testOrchestrator(t)

	result, err := o.CRFSearch(context.Background(), "input.mkv")
	if err != nil {
		t.Fatalf("CRFSearch: %v", err)
	}
	if result.Outcome != search.Converged {
		t.Errorf("outcome = %v, want Converged", result.Outcome)
	}
	if result.Best == nil || result.Best.CRF != 5 {
		t.Fatalf("best = %+v, want CRF 5", result.Best)
	}
	if result.Best.Prediction.MeanScore != 95 {
		t.Errorf("mean score = %v, want 95", result.Best.Prediction.MeanScore)
	}
	// 5 encoded bytes against a 100 byte sample predicts 5% of source size.
	if result.Best.Prediction.SizePercent != 5 {
		t.Errorf("size percent = %v, want 5", result.Best.Prediction.SizePercent)
	}

	// The run directory must be gone once the search finishes.
	entries, err := os.ReadDir(o.settings.TempDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir not cleaned up: %v", entries)
	}
}

func TestSampleEncodePipeline(t *testing.T) {
	o := testOrchestrator(t)

	prediction, err := o.SampleEncode(context.Background(), "input.mkv", 30)
	if err != nil {
		t.Fatalf("SampleEncode: %v", err)
	}
	if prediction.MeanScore != 70 {
		t.Errorf("mean score = %v, want 70", prediction.MeanScore)
	}
	if prediction.SizePercent != 30 {
		t.Errorf("size percent = %v, want 30", prediction.SizePercent)
	}
}

func TestScorePipeline(t *testing.T) {
	settings := config.Default()
	settings.TempDir = t.TempDir()
	runner := command.RunnerFunc(func(_ context.Context, name string, args ...string) (command.Output, error) {
		if name == "ffprobe" {
			return command.Output{Stdout: probeJSON}, nil
		}
		return command.Output{Stderr: "VMAF score: 93.412"}, nil
	})
	o := New(settings, runner, nil)

	score, err := o.Score(context.Background(), "ref.mkv", "dis.mkv")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score != 93.412 {
		t.Errorf("score = %v, want 93.412", score)
	}
}
