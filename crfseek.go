// Package crfseek provides a Go library for finding the best constant
// quality value for a video encode.
//
// Crfseek wraps ffmpeg and libvmaf: it extracts short samples from the
// source, encodes them at trial CRF values, scores them against the
// originals, and searches for the highest CRF that still meets a minimum
// quality score and a maximum predicted size.
//
// Basic usage:
//
//	seeker, err := crfseek.New(
//	    crfseek.WithMinQuality(95),
//	    crfseek.WithMaxSizePercent(80),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := seeker.CRFSearch(ctx, "input.mkv", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("crf %d predicts score %.2f at %s\n",
//	    result.CRF, result.MeanScore, result.PredictedSize)
package crfseek

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexheretic/crfseek/internal/config"
	"github.com/alexheretic/crfseek/internal/predict"
	"github.com/alexheretic/crfseek/internal/processing"
	"github.com/alexheretic/crfseek/internal/reporter"
	"github.com/alexheretic/crfseek/internal/util"
)

// Reporter receives progress events during a run. Pass nil to any method
// taking a Reporter for a silent run.
type Reporter = reporter.Reporter

// Re-exported reporter event types, so callers can implement Reporter.
type (
	SourceSummary    = reporter.SourceSummary
	SearchSummary    = reporter.SearchSummary
	SampleSummary    = reporter.SampleSummary
	TrialEvent       = reporter.TrialEvent
	SearchOutcome    = reporter.SearchOutcome
	ProgressSnapshot = reporter.ProgressSnapshot
	EncodeOutcome    = reporter.EncodeOutcome
	ReportedError    = reporter.ReportedError
)

// NullReporter discards all events.
type NullReporter = reporter.NullReporter

// Prediction is the aggregated full-video estimate for one quality value.
type Prediction = predict.Prediction

// Seeker is the main entry point for quality searches and encodes.
type Seeker struct {
	settings *config.Settings
}

// Option configures a Seeker.
type Option func(*config.Settings)

// New creates a Seeker with the given options.
func New(opts ...Option) (*Seeker, error) {
	settings := config.Default()
	for _, opt := range opts {
		opt(settings)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Seeker{settings: settings}, nil
}

// WithEncoder sets the ffmpeg video encoder (default libsvtav1).
func WithEncoder(encoder string) Option {
	return func(s *config.Settings) { s.Encoder = encoder }
}

// WithPreset sets the encoder speed preset, passed through untouched.
func WithPreset(preset string) Option {
	return func(s *config.Settings) { s.Preset = preset }
}

// WithExtraArgs adds key=value encoder arguments to every encode.
func WithExtraArgs(args ...string) Option {
	return func(s *config.Settings) { s.ExtraArgs = append(s.ExtraArgs, args...) }
}

// WithMinQuality sets the minimum acceptable mean VMAF score (default 95).
func WithMinQuality(score float64) Option {
	return func(s *config.Settings) { s.MinQuality = score }
}

// WithMaxSizePercent sets the maximum predicted output size as a percent of
// the source size (default 80).
func WithMaxSizePercent(percent float64) Option {
	return func(s *config.Settings) { s.MaxSizePercent = percent }
}

// WithCRFRange restricts the search to [min, max] inclusive.
func WithCRFRange(min, max int) Option {
	return func(s *config.Settings) {
		s.MinCRF = min
		s.MaxCRF = max
	}
}

// WithSamples fixes the number of sample windows instead of deriving it
// from the source duration.
func WithSamples(count int) Option {
	return func(s *config.Settings) { s.SampleCount = count }
}

// WithSampleDuration sets the length of each sample window in seconds.
func WithSampleDuration(seconds float64) Option {
	return func(s *config.Settings) { s.SampleDuration = seconds }
}

// WithMaxIterations caps the number of search trials (default 10).
func WithMaxIterations(n int) Option {
	return func(s *config.Settings) { s.MaxIterations = n }
}

// WithConcurrency limits how many sample encodes run at once. Zero picks a
// limit from the CPU count.
func WithConcurrency(n int) Option {
	return func(s *config.Settings) { s.Concurrency = n }
}

// WithVMAFModel forces a specific libvmaf model version instead of
// selecting one by resolution.
func WithVMAFModel(model string) Option {
	return func(s *config.Settings) { s.VMAFModel = model }
}

// WithPixelFormat sets the output pixel format (default yuv420p10le).
func WithPixelFormat(format string) Option {
	return func(s *config.Settings) { s.PixelFormat = format }
}

// WithTempDir sets where sample clips and trial artifacts are written.
func WithTempDir(dir string) Option {
	return func(s *config.Settings) { s.TempDir = dir }
}

// SearchResult is the outcome of a CRF search.
type SearchResult struct {
	CRF                  int
	MeanScore            float64
	PredictedSize        string
	PredictedSizeBytes   uint64
	PredictedSizePercent float64
	PredictedDuration    time.Duration
	Iterations           int
}

// EncodeResult is the outcome of a full encode.
type EncodeResult struct {
	OutputFile           string
	CRF                  int
	OriginalSize         uint64
	EncodedSize          uint64
	SizeReductionPercent float64
	TotalTime            time.Duration
	ValidationPassed     bool
}

// CRFSearch finds the highest CRF meeting the configured targets.
func (s *Seeker) CRFSearch(ctx context.Context, input string, rep Reporter) (*SearchResult, error) {
	o := processing.New(s.settings, nil, rep)
	result, err := o.CRFSearch(ctx, input)
	if err != nil {
		return nil, err
	}
	return &SearchResult{
		CRF:                  result.Best.CRF,
		MeanScore:            result.Best.Prediction.MeanScore,
		PredictedSize:        util.FormatBytes(result.Best.Prediction.PredictedSizeBytes),
		PredictedSizeBytes:   result.Best.Prediction.PredictedSizeBytes,
		PredictedSizePercent: result.Best.Prediction.SizePercent,
		PredictedDuration:    result.Best.Prediction.PredictedDuration,
		Iterations:           result.Iterations,
	}, nil
}

// SampleEncode measures one specific CRF over the sample windows.
func (s *Seeker) SampleEncode(ctx context.Context, input string, crf int, rep Reporter) (*Prediction, error) {
	o := processing.New(s.settings, nil, rep)
	return o.SampleEncode(ctx, input, crf)
}

// Encode runs a full encode of input at the given CRF.
func (s *Seeker) Encode(ctx context.Context, input, output string, crf int, rep Reporter) (*EncodeResult, error) {
	o := processing.New(s.settings, nil, rep)
	result, err := o.Encode(ctx, input, output, crf)
	if err != nil {
		return nil, err
	}
	return encodeResult(result), nil
}

// AutoEncode searches for the best CRF and then encodes the whole input
// with it.
func (s *Seeker) AutoEncode(ctx context.Context, input, output string, rep Reporter) (*EncodeResult, error) {
	o := processing.New(s.settings, nil, rep)
	_, result, err := o.AutoEncode(ctx, input, output)
	if err != nil {
		return nil, err
	}
	return encodeResult(result), nil
}

// Score computes the mean VMAF of an encoded file against its reference.
func (s *Seeker) Score(ctx context.Context, reference, distorted string) (float64, error) {
	o := processing.New(s.settings, nil, nil)
	return o.Score(ctx, reference, distorted)
}

func encodeResult(r *processing.EncodeResult) *EncodeResult {
	return &EncodeResult{
		OutputFile:           r.OutputFile,
		CRF:                  r.CRF,
		OriginalSize:         r.OriginalSize,
		EncodedSize:          r.EncodedSize,
		SizeReductionPercent: util.SizeReduction(r.OriginalSize, r.EncodedSize),
		TotalTime:            r.TotalTime,
		ValidationPassed:     r.ValidationPassed,
	}
}

// ParseCRFRange parses a CRF range string. A single value like "27" fixes
// the search to that value; "10..55" searches the inclusive range.
func ParseCRFRange(s string) (min, max int, err error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, 0, fmt.Errorf("empty crf range")
	}

	parse := func(part string) (int, error) {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, fmt.Errorf("invalid crf value %q", part)
		}
		if v < 0 || v > config.CRFLimit {
			return 0, fmt.Errorf("crf %d out of range 0-%d", v, config.CRFLimit)
		}
		return v, nil
	}

	low, high, ranged := strings.Cut(trimmed, "..")
	if !ranged {
		v, err := parse(trimmed)
		if err != nil {
			return 0, 0, err
		}
		return v, v, nil
	}

	if min, err = parse(low); err != nil {
		return 0, 0, err
	}
	if max, err = parse(high); err != nil {
		return 0, 0, err
	}
	if min > max {
		return 0, 0, fmt.Errorf("crf range %d..%d is inverted", min, max)
	}
	return min, max, nil
}
