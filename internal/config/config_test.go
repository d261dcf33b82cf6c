package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateDefaults(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default settings should validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"empty encoder", func(s *Settings) { s.Encoder = "" }},
		{"zero min quality", func(s *Settings) { s.MinQuality = 0 }},
		{"min quality above 100", func(s *Settings) { s.MinQuality = 101 }},
		{"zero max size", func(s *Settings) { s.MaxSizePercent = 0 }},
		{"negative min crf", func(s *Settings) { s.MinCRF = -1 }},
		{"max crf above limit", func(s *Settings) { s.MaxCRF = 64 }},
		{"inverted crf range", func(s *Settings) { s.MinCRF = 41; s.MaxCRF = 40 }},
		{"negative sample count", func(s *Settings) { s.SampleCount = -1 }},
		{"sample duration below floor", func(s *Settings) { s.SampleDuration = 0.5 }},
		{"zero iterations", func(s *Settings) { s.MaxIterations = 0 }},
		{"negative concurrency", func(s *Settings) { s.Concurrency = -2 }},
		{"bad encoder arg", func(s *Settings) { s.ExtraArgs = []string{"tune"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			if err := s.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSampleCountFor(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		duration   float64
		expected   int
	}{
		{"explicit count wins", 5, 60, 5},
		{"short source gets one", 0, 120, 1},
		{"twelve minutes gets one", 0, 720, 1},
		{"hour gets five", 0, 3600, 5},
		{"two hours gets ten", 0, 7200, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			s.SampleCount = tt.configured
			if got := s.SampleCountFor(tt.duration); got != tt.expected {
				t.Errorf("SampleCountFor(%v) = %d, want %d", tt.duration, got, tt.expected)
			}
		})
	}
}

func TestLoadFileApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crfseek.toml")
	content := `
encoder = "libx265"
min_vmaf = 93.5
max_crf = 40
samples = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	s := Default()
	f.Apply(s)

	if s.Encoder != "libx265" {
		t.Errorf("Encoder = %q, want libx265", s.Encoder)
	}
	if s.MinQuality != 93.5 {
		t.Errorf("MinQuality = %v, want 93.5", s.MinQuality)
	}
	if s.MaxCRF != 40 {
		t.Errorf("MaxCRF = %d, want 40", s.MaxCRF)
	}
	if s.SampleCount != 4 {
		t.Errorf("SampleCount = %d, want 4", s.SampleCount)
	}
	// Untouched keys keep defaults
	if s.MinCRF != DefaultMinCRF {
		t.Errorf("MinCRF = %d, want default %d", s.MinCRF, DefaultMinCRF)
	}
	if s.Preset != DefaultPreset {
		t.Errorf("Preset = %q, want default %q", s.Preset, DefaultPreset)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}
