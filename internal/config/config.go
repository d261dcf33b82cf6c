// Package config provides configuration types and defaults for crfseek.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/alexheretic/crfseek/internal/errors"
)

// Default constants
const (
	// DefaultEncoder is the ffmpeg video encoder used when none is specified.
	DefaultEncoder = "libsvtav1"

	// DefaultPreset is the encoder speed preset passed through to the encoder.
	DefaultPreset = "8"

	// DefaultMinQuality is the minimum acceptable mean VMAF score.
	DefaultMinQuality = 95.0

	// DefaultMaxSizePercent is the maximum predicted output size as a
	// percentage of the source size.
	DefaultMaxSizePercent = 80.0

	// DefaultMinCRF is the lower bound of the CRF search range.
	DefaultMinCRF = 10

	// DefaultMaxCRF is the upper bound of the CRF search range.
	DefaultMaxCRF = 55

	// CRFLimit is the hard upper limit for CRF-style parameters.
	CRFLimit = 63

	// DefaultSampleDuration is the length of each sample window in seconds.
	DefaultSampleDuration = 20.0

	// SampleInterval is the source duration covered by one sample; the
	// automatic sample count is one window per interval.
	SampleInterval = 720.0

	// MinSampleDuration is the floor the sampler may shrink windows to when
	// the source is short.
	MinSampleDuration = 1.0

	// DefaultMaxIterations caps the number of search trials.
	DefaultMaxIterations = 10

	// DefaultPixelFormat is the pixel format for encoded output.
	DefaultPixelFormat = "yuv420p10le"
)

// Settings is the immutable input configuration for a whole run.
type Settings struct {
	// Encoder is the ffmpeg video encoder identity (e.g. libsvtav1, libx265).
	Encoder string

	// Preset is the encoder speed preset, passed through untouched.
	Preset string

	// ExtraArgs are additional encoder arguments in "key=value" form,
	// appended to the ffmpeg command line without interpretation.
	ExtraArgs []string

	// MinQuality is the minimum acceptable mean quality score (0-100).
	MinQuality float64

	// MaxSizePercent is the maximum predicted size as a percent of source size.
	MaxSizePercent float64

	// MinCRF and MaxCRF bound the quality-parameter search range.
	MinCRF int
	MaxCRF int

	// SampleCount is the number of sample windows; 0 selects automatically
	// from the source duration.
	SampleCount int

	// SampleDuration is the length of each sample window in seconds.
	SampleDuration float64

	// MaxIterations caps the number of search trials.
	MaxIterations int

	// Concurrency bounds parallel encode+score work within one trial;
	// 0 selects automatically from the processor count.
	Concurrency int

	// VMAFModel forces a specific scoring model; empty selects by resolution.
	VMAFModel string

	// PixelFormat is the output pixel format for encodes.
	PixelFormat string

	// TempDir overrides the base directory for run-scoped artifacts.
	TempDir string

	// Verbose enables debug logging.
	Verbose bool
}

// Default returns Settings populated with the package defaults.
func Default() *Settings {
	return &Settings{
		Encoder:        DefaultEncoder,
		Preset:         DefaultPreset,
		MinQuality:     DefaultMinQuality,
		MaxSizePercent: DefaultMaxSizePercent,
		MinCRF:         DefaultMinCRF,
		MaxCRF:         DefaultMaxCRF,
		SampleDuration: DefaultSampleDuration,
		MaxIterations:  DefaultMaxIterations,
		PixelFormat:    DefaultPixelFormat,
	}
}

// Validate checks the settings for internal consistency.
func (s *Settings) Validate() error {
	if s.Encoder == "" {
		return errors.NewConfigError("encoder must not be empty")
	}
	if s.MinQuality <= 0 || s.MinQuality > 100 {
		return errors.NewConfigError(fmt.Sprintf("min quality %.1f outside (0, 100]", s.MinQuality))
	}
	if s.MaxSizePercent <= 0 {
		return errors.NewConfigError(fmt.Sprintf("max size percent %.1f must be positive", s.MaxSizePercent))
	}
	if s.MinCRF < 0 || s.MaxCRF > CRFLimit {
		return errors.NewConfigError(fmt.Sprintf("CRF range %d-%d outside 0-%d", s.MinCRF, s.MaxCRF, CRFLimit))
	}
	if s.MinCRF > s.MaxCRF {
		return errors.NewConfigError(fmt.Sprintf("min CRF %d must not exceed max CRF %d", s.MinCRF, s.MaxCRF))
	}
	if s.SampleCount < 0 {
		return errors.NewConfigError("sample count must not be negative")
	}
	if s.SampleDuration < MinSampleDuration {
		return errors.NewConfigError(fmt.Sprintf("sample duration %.1fs below minimum %.1fs",
			s.SampleDuration, MinSampleDuration))
	}
	if s.MaxIterations < 1 {
		return errors.NewConfigError("max iterations must be at least 1")
	}
	if s.Concurrency < 0 {
		return errors.NewConfigError("concurrency must not be negative")
	}
	for _, arg := range s.ExtraArgs {
		if !strings.Contains(arg, "=") {
			return errors.NewConfigError(fmt.Sprintf("encoder argument %q must be key=value", arg))
		}
	}
	return nil
}

// SampleCountFor returns the number of sample windows for a source of the
// given duration: the configured count, or one window per SampleInterval
// (minimum 1) when unset.
func (s *Settings) SampleCountFor(duration float64) int {
	if s.SampleCount > 0 {
		return s.SampleCount
	}
	n := int(math.Round(duration / SampleInterval))
	if n < 1 {
		n = 1
	}
	return n
}
