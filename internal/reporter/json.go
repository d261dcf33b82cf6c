package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/alexheretic/crfseek/internal/util"
)

// JSONReporter outputs NDJSON events for machine consumers.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) SourceInfo(summary SourceSummary) {
	r.write(map[string]interface{}{
		"type":             "source_info",
		"input_file":       summary.InputFile,
		"duration_seconds": summary.Duration,
		"resolution":       summary.Resolution,
		"pixel_format":     summary.PixelFormat,
		"file_size":        summary.FileSize,
		"timestamp":        r.timestamp(),
	})
}

func (r *JSONReporter) SearchStarted(summary SearchSummary) {
	r.write(map[string]interface{}{
		"type":             "search_started",
		"encoder":          summary.Encoder,
		"preset":           summary.Preset,
		"min_crf":          summary.MinCRF,
		"max_crf":          summary.MaxCRF,
		"min_quality":      summary.MinQuality,
		"max_size_percent": summary.MaxSizePercent,
		"sample_count":     summary.SampleCount,
		"sample_duration":  summary.SampleDuration,
		"max_iterations":   summary.MaxIterations,
		"quality_model":    summary.QualityModel,
		"timestamp":        r.timestamp(),
	})
}

func (r *JSONReporter) SamplesExtracted(summary SampleSummary) {
	r.write(map[string]interface{}{
		"type":            "samples_extracted",
		"sample_count":    summary.Count,
		"sample_duration": summary.Duration,
		"adjusted":        summary.Adjusted,
		"timestamp":       r.timestamp(),
	})
}

func (r *JSONReporter) TrialStarted(event TrialEvent) {
	r.write(map[string]interface{}{
		"type":           "trial_started",
		"iteration":      event.Iteration,
		"max_iterations": event.MaxIterations,
		"crf":            event.CRF,
		"timestamp":      r.timestamp(),
	})
}

func (r *JSONReporter) TrialCompleted(event TrialEvent) {
	r.write(map[string]interface{}{
		"type":                       "trial_completed",
		"iteration":                  event.Iteration,
		"crf":                        event.CRF,
		"mean_score":                 event.MeanScore,
		"size_percent":               event.SizePercent,
		"predicted_size":             event.PredictedSize,
		"predicted_duration_seconds": int64(event.PredictedDuration.Seconds()),
		"passed":                     event.Passed,
		"timestamp":                  r.timestamp(),
	})
}

func (r *JSONReporter) SearchComplete(outcome SearchOutcome) {
	trials := make([]map[string]interface{}, len(outcome.Trials))
	for i, trial := range outcome.Trials {
		trials[i] = map[string]interface{}{
			"iteration":    trial.Iteration,
			"crf":          trial.CRF,
			"mean_score":   trial.MeanScore,
			"size_percent": trial.SizePercent,
			"passed":       trial.Passed,
		}
	}

	r.write(map[string]interface{}{
		"type":                       "search_complete",
		"best_crf":                   outcome.BestCRF,
		"mean_score":                 outcome.MeanScore,
		"size_percent":               outcome.SizePercent,
		"predicted_size":             outcome.PredictedSize,
		"predicted_duration_seconds": int64(outcome.PredictedDuration.Seconds()),
		"iterations":                 outcome.Iterations,
		"exhausted":                  outcome.Exhausted,
		"cancelled":                  outcome.Cancelled,
		"trials":                     trials,
		"timestamp":                  r.timestamp(),
	})
}

func (r *JSONReporter) EncodingStarted(outputFile string) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":        "encoding_started",
		"output_file": outputFile,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) EncodingProgress(progress ProgressSnapshot) {
	const progressBucketSize = 1
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent) / progressBucketSize
	now := time.Now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || progress.Percent >= 99.0

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":        "encoding_progress",
		"percent":     progress.Percent,
		"speed":       progress.Speed,
		"fps":         progress.FPS,
		"eta_seconds": int64(progress.ETA.Seconds()),
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) EncodingComplete(outcome EncodeOutcome) {
	reduction := util.SizeReduction(outcome.OriginalSize, outcome.EncodedSize)

	r.write(map[string]interface{}{
		"type":                   "encoding_complete",
		"input_file":             outcome.InputFile,
		"output_file":            outcome.OutputFile,
		"original_size":          outcome.OriginalSize,
		"encoded_size":           outcome.EncodedSize,
		"crf":                    outcome.CRF,
		"duration_seconds":       int64(outcome.TotalTime.Seconds()),
		"size_reduction_percent": reduction,
		"timestamp":              r.timestamp(),
	})
}

func (r *JSONReporter) ValidationComplete(summary ValidationSummary) {
	steps := make([]map[string]interface{}, len(summary.Steps))
	for i, step := range summary.Steps {
		steps[i] = map[string]interface{}{
			"name":    step.Name,
			"passed":  step.Passed,
			"details": step.Details,
		}
	}

	r.write(map[string]interface{}{
		"type":        "validation_complete",
		"output_file": summary.OutputFile,
		"passed":      summary.Passed,
		"steps":       steps,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReportedError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.write(map[string]interface{}{
		"type":      "operation_complete",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]interface{}{
		"type":      "verbose",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}
