// Package processing orchestrates probing, sampling, searching and encoding.
package processing

import (
	"context"
	"fmt"
	"time"

	"github.com/alexheretic/crfseek/internal/command"
	"github.com/alexheretic/crfseek/internal/config"
	"github.com/alexheretic/crfseek/internal/encode"
	crferrors "github.com/alexheretic/crfseek/internal/errors"
	"github.com/alexheretic/crfseek/internal/ffprobe"
	"github.com/alexheretic/crfseek/internal/predict"
	"github.com/alexheretic/crfseek/internal/reporter"
	"github.com/alexheretic/crfseek/internal/sample"
	"github.com/alexheretic/crfseek/internal/search"
	"github.com/alexheretic/crfseek/internal/temp"
	"github.com/alexheretic/crfseek/internal/util"
	"github.com/alexheretic/crfseek/internal/validation"
	"github.com/alexheretic/crfseek/internal/vmaf"
)

// Orchestrator wires the pipeline stages together. Construct with New.
type Orchestrator struct {
	settings *config.Settings
	runner   command.Runner
	rep      reporter.Reporter
}

// New creates an orchestrator. A nil runner uses the real subprocess
// runner; a nil reporter discards all events.
func New(settings *config.Settings, runner command.Runner, rep reporter.Reporter) *Orchestrator {
	if runner == nil {
		runner = command.NewExecRunner()
	}
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	return &Orchestrator{settings: settings, runner: runner, rep: rep}
}

// SearchResult is the outcome of a CRF search over one input.
type SearchResult struct {
	Source     *ffprobe.Source
	Best       *search.Trial
	Trials     []search.Trial
	Iterations int
	Outcome    search.Outcome
}

// CRFSearch probes the input, extracts sample windows, and searches for the
// highest quality value that still meets both targets.
func (o *Orchestrator) CRFSearch(ctx context.Context, inputPath string) (*SearchResult, error) {
	source, plan, err := o.prepare(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	o.rep.SearchStarted(reporter.SearchSummary{
		Encoder:        o.settings.Encoder,
		Preset:         o.settings.Preset,
		MinCRF:         o.settings.MinCRF,
		MaxCRF:         o.settings.MaxCRF,
		MinQuality:     o.settings.MinQuality,
		MaxSizePercent: o.settings.MaxSizePercent,
		SampleCount:    len(plan.Windows),
		SampleDuration: plan.Windows[0].Length,
		MaxIterations:  o.settings.MaxIterations,
		QualityModel:   o.settings.VMAFModel,
	})

	dir, err := temp.NewRunDir(o.settings.TempDir)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	searcher, err := o.newSearcher(ctx, inputPath, source, plan, dir)
	if err != nil {
		return nil, err
	}
	searcher.Observer = &trialObserver{rep: o.rep, maxIterations: o.settings.MaxIterations}

	result, err := searcher.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := result.Err(o.settings); err != nil {
		return nil, err
	}

	outcome := reporter.SearchOutcome{
		BestCRF:           result.Best.CRF,
		MeanScore:         result.Best.Prediction.MeanScore,
		SizePercent:       result.Best.Prediction.SizePercent,
		PredictedSize:     result.Best.Prediction.PredictedSizeBytes,
		PredictedDuration: result.Best.Prediction.PredictedDuration,
		Iterations:        result.Iterations,
		Exhausted:         result.Outcome == search.Exhausted,
		Cancelled:         result.Outcome == search.Cancelled,
	}
	for _, trial := range result.Trials {
		outcome.Trials = append(outcome.Trials, trialEvent(trial, o.settings.MaxIterations))
	}
	o.rep.SearchComplete(outcome)

	return &SearchResult{
		Source:     source,
		Best:       result.Best,
		Trials:     result.Trials,
		Iterations: result.Iterations,
		Outcome:    result.Outcome,
	}, nil
}

// SampleEncode measures a single quality value over the sample windows and
// returns the resulting prediction.
func (o *Orchestrator) SampleEncode(ctx context.Context, inputPath string, crf int) (*predict.Prediction, error) {
	source, plan, err := o.prepare(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	dir, err := temp.NewRunDir(o.settings.TempDir)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	searcher, err := o.newSearcher(ctx, inputPath, source, plan, dir)
	if err != nil {
		return nil, err
	}

	prediction, err := searcher.Trial(ctx, crf)
	if err != nil {
		return nil, err
	}

	passed := prediction.MeanScore >= o.settings.MinQuality &&
		prediction.SizePercent <= o.settings.MaxSizePercent
	o.rep.TrialCompleted(reporter.TrialEvent{
		Iteration:         1,
		MaxIterations:     1,
		CRF:               crf,
		MeanScore:         prediction.MeanScore,
		SizePercent:       prediction.SizePercent,
		PredictedSize:     prediction.PredictedSizeBytes,
		PredictedDuration: prediction.PredictedDuration,
		Passed:            passed,
	})
	return prediction, nil
}

// EncodeResult is the outcome of a full encode.
type EncodeResult struct {
	OutputFile       string
	CRF              int
	OriginalSize     uint64
	EncodedSize      uint64
	TotalTime        time.Duration
	ValidationPassed bool
}

// Encode runs a full encode of the input at the given quality value.
func (o *Orchestrator) Encode(ctx context.Context, inputPath, outputPath string, crf int) (*EncodeResult, error) {
	source, err := ffprobe.Probe(ctx, o.runner, inputPath)
	if err != nil {
		return nil, err
	}
	return o.encodeProbed(ctx, source, outputPath, crf)
}

// AutoEncode searches for the best quality value and then encodes the whole
// input with it.
func (o *Orchestrator) AutoEncode(ctx context.Context, inputPath, outputPath string) (*SearchResult, *EncodeResult, error) {
	searchResult, err := o.CRFSearch(ctx, inputPath)
	if err != nil {
		return nil, nil, err
	}

	encodeResult, err := o.encodeProbed(ctx, searchResult.Source, outputPath, searchResult.Best.CRF)
	if err != nil {
		return searchResult, nil, err
	}
	return searchResult, encodeResult, nil
}

// Score computes the perceptual quality of an encoded file against its
// reference.
func (o *Orchestrator) Score(ctx context.Context, referencePath, distortedPath string) (float64, error) {
	source, err := ffprobe.Probe(ctx, o.runner, referencePath)
	if err != nil {
		return 0, err
	}
	scorer := vmaf.NewScorer(o.runner, o.settings.VMAFModel)
	return scorer.Score(ctx, referencePath, distortedPath, source.Height)
}

// prepare probes the input and plans sample windows, emitting the source
// summary.
func (o *Orchestrator) prepare(ctx context.Context, inputPath string) (*ffprobe.Source, *sample.Plan, error) {
	source, err := ffprobe.Probe(ctx, o.runner, inputPath)
	if err != nil {
		return nil, nil, err
	}

	o.rep.SourceInfo(reporter.SourceSummary{
		InputFile:   inputPath,
		Duration:    source.Duration,
		Resolution:  fmt.Sprintf("%dx%d", source.Width, source.Height),
		PixelFormat: source.PixelFormat,
		FileSize:    source.SizeBytes,
	})

	count := o.settings.SampleCount
	if count <= 0 {
		count = o.settings.SampleCountFor(source.Duration)
	}
	plan, err := sample.PlanWindows(source.Duration, count, o.settings.SampleDuration)
	if err != nil {
		return nil, nil, err
	}
	return source, plan, nil
}

// newSearcher extracts the planned windows and builds a searcher over them.
func (o *Orchestrator) newSearcher(ctx context.Context, inputPath string, source *ffprobe.Source, plan *sample.Plan, dir *temp.RunDir) (*search.Searcher, error) {
	clips, err := sample.NewExtractor(o.runner).Extract(ctx, inputPath, plan.Windows, dir)
	if err != nil {
		return nil, err
	}

	o.rep.SamplesExtracted(reporter.SampleSummary{
		Count:    len(clips),
		Duration: plan.Windows[0].Length,
		Adjusted: plan.Adjusted,
	})

	return &search.Searcher{
		Settings: o.settings,
		Source:   source,
		Clips:    clips,
		Encoder:  encode.NewSampleEncoder(o.runner, o.settings),
		Scorer:   vmaf.NewScorer(o.runner, o.settings.VMAFModel),
		Dir:      dir,
	}, nil
}

func (o *Orchestrator) encodeProbed(ctx context.Context, source *ffprobe.Source, outputPath string, crf int) (*EncodeResult, error) {
	o.rep.EncodingStarted(outputPath)

	start := time.Now()
	err := encode.Run(ctx, source.Path, outputPath, o.settings, crf, source.Duration, func(p encode.Progress) {
		o.rep.EncodingProgress(reporter.ProgressSnapshot{
			Percent: float64(p.Percent),
			Speed:   float64(p.Speed),
			FPS:     float64(p.FPS),
			ETA:     p.ETA,
		})
	})
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	encodedSize, err := util.GetFileSize(outputPath)
	if err != nil {
		return nil, err
	}

	o.rep.EncodingComplete(reporter.EncodeOutcome{
		InputFile:    source.Path,
		OutputFile:   outputPath,
		OriginalSize: source.SizeBytes,
		EncodedSize:  encodedSize,
		CRF:          crf,
		TotalTime:    elapsed,
	})

	check := validation.Validate(ctx, o.runner, source, outputPath, o.settings.PixelFormat)
	summary := reporter.ValidationSummary{OutputFile: outputPath, Passed: check.IsValid()}
	for _, step := range check.Steps() {
		summary.Steps = append(summary.Steps, reporter.ValidationStep{
			Name:    step.Name,
			Passed:  step.Passed,
			Details: step.Details,
		})
	}
	o.rep.ValidationComplete(summary)
	if !check.IsValid() {
		return nil, crferrors.NewValidationFailedError(check.Failures())
	}

	return &EncodeResult{
		OutputFile:       outputPath,
		CRF:              crf,
		OriginalSize:     source.SizeBytes,
		EncodedSize:      encodedSize,
		TotalTime:        elapsed,
		ValidationPassed: true,
	}, nil
}

// trialObserver forwards search events to the reporter.
type trialObserver struct {
	rep           reporter.Reporter
	maxIterations int
}

func (t *trialObserver) TrialStarted(iteration, crf int) {
	t.rep.TrialStarted(reporter.TrialEvent{
		Iteration:     iteration,
		MaxIterations: t.maxIterations,
		CRF:           crf,
	})
}

func (t *trialObserver) TrialCompleted(trial search.Trial) {
	t.rep.TrialCompleted(trialEvent(trial, t.maxIterations))
}

func trialEvent(trial search.Trial, maxIterations int) reporter.TrialEvent {
	return reporter.TrialEvent{
		Iteration:         trial.Iteration,
		MaxIterations:     maxIterations,
		CRF:               trial.CRF,
		MeanScore:         trial.Prediction.MeanScore,
		SizePercent:       trial.Prediction.SizePercent,
		PredictedSize:     trial.Prediction.PredictedSizeBytes,
		PredictedDuration: trial.Prediction.PredictedDuration,
		Passed:            trial.Passed,
	}
}
