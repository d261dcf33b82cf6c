package vmaf

import (
	"context"
	"strings"
	"testing"

	"github.com/alexheretic/crfseek/internal/command"
	"github.com/alexheretic/crfseek/internal/errors"
)

func TestSelectModel(t *testing.T) {
	tests := []struct {
		height   int
		expected string
	}{
		{480, "vmaf_v0.6.1"},
		{720, "vmaf_v0.6.1"},
		{1080, "vmaf_v0.6.1"},
		{1440, "vmaf_v0.6.1"}, // tie goes to the smaller model
		{1600, "vmaf_4k_v0.6.1"},
		{2160, "vmaf_4k_v0.6.1"},
		{4320, "vmaf_4k_v0.6.1"},
	}

	for _, tt := range tests {
		if got := SelectModel(tt.height); got.Name != tt.expected {
			t.Errorf("SelectModel(%d) = %q, want %q", tt.height, got.Name, tt.expected)
		}
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected float64
		wantErr  bool
	}{
		{
			name:     "stderr summary line",
			output:   "[libvmaf @ 0x55] VMAF score: 95.432109",
			expected: 95.432109,
		},
		{
			name:     "json pooled metrics",
			output:   `{"pooled_metrics": {"vmaf": {"min": 91.2, "mean": 94.25, "max": 99.9}}}`,
			expected: 94.25,
		},
		{
			name:     "versioned mean line",
			output:   "vmaf_v0.6.1 mean: 88.5",
			expected: 88.5,
		},
		{
			name:    "no score",
			output:  "frame=500 fps=120",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScore(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Error("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScore: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ParseScore = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestScorerInvocation(t *testing.T) {
	var gotArgs []string
	runner := command.RunnerFunc(func(ctx context.Context, name string, args ...string) (command.Output, error) {
		gotArgs = append([]string{name}, args...)
		return command.Output{Stderr: "VMAF score: 96.1"}, nil
	})

	score, err := NewScorer(runner, "").Score(context.Background(), "ref.mkv", "dis.mkv", 1080)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score != 96.1 {
		t.Errorf("score = %v, want 96.1", score)
	}

	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "-i dis.mkv -i ref.mkv") {
		t.Errorf("distorted input must come first: %s", joined)
	}
	if !strings.Contains(joined, "libvmaf=model=version=vmaf_v0.6.1") {
		t.Errorf("missing model selection: %s", joined)
	}
	if strings.Contains(joined, "scale=") {
		t.Errorf("1080p input should not be upscaled: %s", joined)
	}
}

func TestScorerUpscalesBelowModelHeight(t *testing.T) {
	var filter string
	runner := command.RunnerFunc(func(ctx context.Context, name string, args ...string) (command.Output, error) {
		for i, a := range args {
			if a == "-filter_complex" {
				filter = args[i+1]
			}
		}
		return command.Output{Stderr: "VMAF score: 90.0"}, nil
	})

	if _, err := NewScorer(runner, "").Score(context.Background(), "ref.mkv", "dis.mkv", 720); err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !strings.Contains(filter, "scale=-1:1080") {
		t.Errorf("720p input should be upscaled to the model height: %s", filter)
	}
}

func TestScorerForcedModel(t *testing.T) {
	var filter string
	runner := command.RunnerFunc(func(ctx context.Context, name string, args ...string) (command.Output, error) {
		for i, a := range args {
			if a == "-filter_complex" {
				filter = args[i+1]
			}
		}
		return command.Output{Stderr: "VMAF score: 90.0"}, nil
	})

	if _, err := NewScorer(runner, "vmaf_4k_v0.6.1").Score(context.Background(), "ref.mkv", "dis.mkv", 720); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(filter, "model=version=vmaf_4k_v0.6.1") {
		t.Errorf("forced model not used: %s", filter)
	}
	if strings.Contains(filter, "scale=") {
		t.Errorf("forced model must bypass auto upscaling: %s", filter)
	}
}

func TestScorerProcessFailure(t *testing.T) {
	runner := command.RunnerFunc(func(ctx context.Context, name string, args ...string) (command.Output, error) {
		return command.Output{Stderr: "No such filter: 'libvmaf'"},
			errors.NewCommandFailedError("ffmpeg", 1, "No such filter: 'libvmaf'")
	})

	_, err := NewScorer(runner, "").Score(context.Background(), "ref.mkv", "dis.mkv", 1080)
	if !errors.IsKind(err, errors.KindScoreFailed) {
		t.Errorf("expected KindScoreFailed, got %v", err)
	}
}

func TestScorerUnparsableOutput(t *testing.T) {
	runner := command.RunnerFunc(func(ctx context.Context, name string, args ...string) (command.Output, error) {
		return command.Output{Stdout: "nothing useful"}, nil
	})

	_, err := NewScorer(runner, "").Score(context.Background(), "ref.mkv", "dis.mkv", 1080)
	if !errors.IsKind(err, errors.KindScoreFailed) {
		t.Errorf("expected KindScoreFailed, got %v", err)
	}
}
