// Package predict extrapolates full-video results from sample measurements.
package predict

import (
	"time"

	"github.com/alexheretic/crfseek/internal/errors"
)

// SampleResult is the outcome of encoding and scoring one sample window at
// one trial quality value. Results are discarded after aggregation; nothing
// is cached across different quality values.
type SampleResult struct {
	// Index identifies the originating sample window.
	Index int

	// Score is the perceptual quality score (0-100).
	Score float64

	// EncodedBytes is the size of the encoded artifact.
	EncodedBytes uint64

	// SampleBytes is the size of the extracted source clip.
	SampleBytes uint64

	// EncodeTime is the wall time of the sample encode.
	EncodeTime time.Duration

	// SampleDuration is the window length in seconds.
	SampleDuration float64
}

// Prediction is the aggregated estimate for one trial. Immutable once computed.
type Prediction struct {
	// MeanScore is the unweighted arithmetic mean of sample scores.
	MeanScore float64

	// SizePercent is the predicted encoded size as a percent of source size.
	SizePercent float64

	// PredictedSizeBytes is SizePercent applied to the source's total size.
	PredictedSizeBytes uint64

	// PredictedDuration is the extrapolated full-encode wall time.
	PredictedDuration time.Duration
}

// Aggregate combines per-sample results into a single full-video prediction.
//
// The size ratio is total encoded bytes over total source-sample bytes, so
// larger samples naturally weigh more. Encode time extrapolates linearly by
// throughput: (mean encode time / mean sample length) x source duration.
func Aggregate(results []SampleResult, sourceSizeBytes uint64, sourceDuration float64) (*Prediction, error) {
	if len(results) == 0 {
		return nil, errors.NewInsufficientSamplesError()
	}

	var (
		scoreSum     float64
		encodedBytes uint64
		sampleBytes  uint64
		encodeTime   time.Duration
		sampleSecs   float64
	)
	for _, r := range results {
		scoreSum += r.Score
		encodedBytes += r.EncodedBytes
		sampleBytes += r.SampleBytes
		encodeTime += r.EncodeTime
		sampleSecs += r.SampleDuration
	}

	p := &Prediction{
		MeanScore: scoreSum / float64(len(results)),
	}

	if sampleBytes > 0 {
		ratio := float64(encodedBytes) / float64(sampleBytes)
		p.SizePercent = ratio * 100
		p.PredictedSizeBytes = uint64(ratio * float64(sourceSizeBytes))
	}

	if sampleSecs > 0 {
		meanEncodeSecs := encodeTime.Seconds() / float64(len(results))
		meanSampleSecs := sampleSecs / float64(len(results))
		p.PredictedDuration = time.Duration(meanEncodeSecs / meanSampleSecs * sourceDuration * float64(time.Second))
	}

	return p, nil
}
