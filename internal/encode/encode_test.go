package encode

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexheretic/crfseek/internal/command"
	"github.com/alexheretic/crfseek/internal/config"
	"github.com/alexheretic/crfseek/internal/errors"
)

func TestBuildArgs(t *testing.T) {
	settings := config.Default()
	settings.ExtraArgs = []string{"svtav1-params=tune=0", "g=240"}

	args := buildArgs("sample_0.mkv", settings, 32, "/tmp/out/sample_0.mkv")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-i sample_0.mkv",
		"-c:v libsvtav1",
		"-crf 32",
		"-preset 8",
		"-pix_fmt yuv420p10le",
		"-svtav1-params tune=0",
		"-g 240",
		"-an -sn",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "/tmp/out/sample_0.mkv" {
		t.Errorf("output path must be last: %v", args)
	}
}

func TestQualityFlag(t *testing.T) {
	tests := []struct {
		encoder  string
		expected string
	}{
		{"libsvtav1", "-crf"},
		{"libx265", "-crf"},
		{"libx264", "-crf"},
		{"librav1e", "-qp"},
		{"av1_nvenc", "-cq"},
		{"hevc_qsv", "-global_quality"},
	}

	for _, tt := range tests {
		if got := QualityFlag(tt.encoder); got != tt.expected {
			t.Errorf("QualityFlag(%q) = %q, want %q", tt.encoder, got, tt.expected)
		}
	}
}

func TestSampleEncoderSuccess(t *testing.T) {
	outDir := t.TempDir()

	runner := command.RunnerFunc(func(ctx context.Context, name string, args ...string) (command.Output, error) {
		if err := os.WriteFile(args[len(args)-1], []byte("encoded"), 0o644); err != nil {
			t.Fatal(err)
		}
		return command.Output{WallTime: 1500 * time.Millisecond}, nil
	})

	e := NewSampleEncoder(runner, config.Default())
	artifact, err := e.Encode(context.Background(), "sample_0.mkv", 30, outDir)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if artifact.SizeBytes != 7 {
		t.Errorf("SizeBytes = %d, want 7", artifact.SizeBytes)
	}
	if artifact.WallTime != 1500*time.Millisecond {
		t.Errorf("WallTime = %v", artifact.WallTime)
	}
	if filepath.Dir(artifact.Path) != outDir {
		t.Errorf("artifact outside trial dir: %s", artifact.Path)
	}
}

func TestSampleEncoderFailure(t *testing.T) {
	runner := command.RunnerFunc(func(ctx context.Context, name string, args ...string) (command.Output, error) {
		return command.Output{ExitCode: 234, Stderr: "Unknown encoder 'libsvtav1'"},
			errors.NewCommandFailedError("ffmpeg", 234, "Unknown encoder 'libsvtav1'")
	})

	e := NewSampleEncoder(runner, config.Default())
	_, err := e.Encode(context.Background(), "sample_0.mkv", 30, t.TempDir())
	if err == nil {
		t.Fatal("expected encode failure")
	}
	if !errors.IsKind(err, errors.KindEncodeFailed) {
		t.Errorf("expected KindEncodeFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Errorf("captured stderr missing from error: %v", err)
	}
}

func TestSampleEncoderNoArtifact(t *testing.T) {
	// Process exits zero but writes nothing.
	runner := command.RunnerFunc(func(ctx context.Context, name string, args ...string) (command.Output, error) {
		return command.Output{}, nil
	})

	e := NewSampleEncoder(runner, config.Default())
	_, err := e.Encode(context.Background(), "sample_0.mkv", 30, t.TempDir())
	if !errors.IsKind(err, errors.KindEncodeFailed) {
		t.Errorf("expected KindEncodeFailed for missing artifact, got %v", err)
	}
}

func TestParseProgressLine(t *testing.T) {
	line := "frame= 1234 fps=48.5 q=30.0 size=10240KiB time=00:01:40.00 bitrate=8388.6kbits/s speed=2.02x"
	p := parseProgressLine(line, 600)
	if p == nil {
		t.Fatal("expected progress")
	}
	if p.ElapsedSecs != 100 {
		t.Errorf("ElapsedSecs = %v, want 100", p.ElapsedSecs)
	}
	if p.FPS != 48.5 {
		t.Errorf("FPS = %v, want 48.5", p.FPS)
	}
	if p.Speed != 2.02 {
		t.Errorf("Speed = %v, want 2.02", p.Speed)
	}
	// 100s of 600s
	if p.Percent < 16.6 || p.Percent > 16.7 {
		t.Errorf("Percent = %v, want ~16.67", p.Percent)
	}
}

func TestReplaceStreamFlags(t *testing.T) {
	args := buildArgs("in.mkv", config.Default(), 30, "out.mkv")
	full := replaceStreamFlags(args)
	joined := strings.Join(full, " ")

	if strings.Contains(joined, "-an") || strings.Contains(joined, "-sn") {
		t.Errorf("full encode should keep audio/subtitle streams: %s", joined)
	}
	if !strings.Contains(joined, "-c:a copy") || !strings.Contains(joined, "-c:s copy") {
		t.Errorf("full encode should stream-copy audio/subtitles: %s", joined)
	}
	if full[len(full)-1] != "out.mkv" {
		t.Errorf("output path must stay last: %v", full)
	}
}
