package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// File holds optional defaults loaded from a crfseek.toml file. Every field
// is a pointer so absent keys leave the built-in defaults untouched.
type File struct {
	Encoder        *string  `toml:"encoder"`
	Preset         *string  `toml:"preset"`
	MinQuality     *float64 `toml:"min_vmaf"`
	MaxSizePercent *float64 `toml:"max_encoded_percent"`
	MinCRF         *int     `toml:"min_crf"`
	MaxCRF         *int     `toml:"max_crf"`
	SampleCount    *int     `toml:"samples"`
	SampleDuration *float64 `toml:"sample_duration"`
	MaxIterations  *int     `toml:"max_iterations"`
	Concurrency    *int     `toml:"concurrency"`
	VMAFModel      *string  `toml:"vmaf_model"`
	PixelFormat    *string  `toml:"pixel_format"`
	TempDir        *string  `toml:"temp_dir"`
}

// DefaultFilePath returns the conventional defaults-file location, or ""
// when the user config directory cannot be determined.
func DefaultFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "crfseek", "crfseek.toml")
}

// LoadFile parses a TOML defaults file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &f, nil
}

// Apply overlays the file's values onto s. CLI flags are applied after this,
// so precedence is flags > file > built-in defaults.
func (f *File) Apply(s *Settings) {
	if f.Encoder != nil {
		s.Encoder = *f.Encoder
	}
	if f.Preset != nil {
		s.Preset = *f.Preset
	}
	if f.MinQuality != nil {
		s.MinQuality = *f.MinQuality
	}
	if f.MaxSizePercent != nil {
		s.MaxSizePercent = *f.MaxSizePercent
	}
	if f.MinCRF != nil {
		s.MinCRF = *f.MinCRF
	}
	if f.MaxCRF != nil {
		s.MaxCRF = *f.MaxCRF
	}
	if f.SampleCount != nil {
		s.SampleCount = *f.SampleCount
	}
	if f.SampleDuration != nil {
		s.SampleDuration = *f.SampleDuration
	}
	if f.MaxIterations != nil {
		s.MaxIterations = *f.MaxIterations
	}
	if f.Concurrency != nil {
		s.Concurrency = *f.Concurrency
	}
	if f.VMAFModel != nil {
		s.VMAFModel = *f.VMAFModel
	}
	if f.PixelFormat != nil {
		s.PixelFormat = *f.PixelFormat
	}
	if f.TempDir != nil {
		s.TempDir = *f.TempDir
	}
}
