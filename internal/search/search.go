package search

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/alexheretic/crfseek/internal/config"
	"github.com/alexheretic/crfseek/internal/encode"
	crferrors "github.com/alexheretic/crfseek/internal/errors"
	"github.com/alexheretic/crfseek/internal/ffprobe"
	"github.com/alexheretic/crfseek/internal/logging"
	"github.com/alexheretic/crfseek/internal/predict"
	"github.com/alexheretic/crfseek/internal/sample"
	"github.com/alexheretic/crfseek/internal/temp"
	"github.com/alexheretic/crfseek/internal/worker"
)

// Encoder produces one encoded artifact from one sample clip.
type Encoder interface {
	Encode(ctx context.Context, clipPath string, crf int, outDir string) (*encode.Artifact, error)
}

// Scorer compares an encoded artifact against its reference clip.
type Scorer interface {
	Score(ctx context.Context, referencePath, distortedPath string, height int) (float64, error)
}

// Observer receives trial lifecycle events. All methods may be called
// from the controller goroutine only.
type Observer interface {
	TrialStarted(iteration, crf int)
	TrialCompleted(trial Trial)
}

// Outcome classifies how a search run ended.
type Outcome int

const (
	// Converged: bounds met, Best holds the winner (nil when nothing passed).
	Converged Outcome = iota
	// Exhausted: iteration cap hit before the bounds met.
	Exhausted
	// Cancelled: the context was cancelled mid-search.
	Cancelled
)

// Result is the final report of a search run. Best is nil when no trial
// ever satisfied both targets.
type Result struct {
	Outcome    Outcome
	Best       *Trial
	Trials     []Trial
	Iterations int
}

// Err maps a non-fatal outcome onto the error taxonomy. Converged with a
// best trial returns nil.
func (r *Result) Err(settings *config.Settings) error {
	switch {
	case r.Outcome == Cancelled:
		if r.Best != nil {
			return nil
		}
		return crferrors.NewCancelledError()
	case r.Outcome == Exhausted && r.Best == nil:
		return crferrors.NewSearchExhaustedError(r.Iterations)
	case r.Best == nil:
		return crferrors.NewNoPassingValueError(settings.MinQuality, settings.MaxSizePercent)
	default:
		return nil
	}
}

// Searcher runs the interpolated CRF search over pre-extracted sample
// clips. The zero value is not usable; populate every field.
type Searcher struct {
	Settings *config.Settings
	Source   *ffprobe.Source
	Clips    []sample.Clip
	Encoder  Encoder
	Scorer   Scorer
	Dir      *temp.RunDir
	Observer Observer
}

// Run executes trials until the bounds converge, the iteration cap is
// reached, or ctx is cancelled. Cancellation is not an error when at least
// one trial already passed: the partial best is returned instead.
func (s *Searcher) Run(ctx context.Context) (*Result, error) {
	state := NewState(
		s.Settings.MinCRF, s.Settings.MaxCRF,
		HigherIsSmaller,
		s.Settings.MinQuality, s.Settings.MaxSizePercent,
		s.Settings.MaxIterations,
	)

	for {
		crf := state.Next()
		if s.Observer != nil {
			s.Observer.TrialStarted(state.Iteration, crf)
		}

		prediction, err := s.runTrial(ctx, crf)
		if err != nil {
			if crferrors.IsCancelled(err) || errors.Is(err, context.Canceled) {
				logging.Info("search cancelled", "iteration", state.Iteration, "crf", crf)
				return s.result(state, Cancelled), nil
			}
			state.Fail()
			return nil, err
		}

		trial := state.Record(crf, prediction)
		if s.Observer != nil {
			s.Observer.TrialCompleted(trial)
		}
		logging.Debug("trial complete",
			"iteration", trial.Iteration,
			"crf", trial.CRF,
			"score", trial.Prediction.MeanScore,
			"size_percent", trial.Prediction.SizePercent,
			"passed", trial.Passed,
			"phase", state.Phase.String(),
		)

		switch state.Phase {
		case PhaseConverged:
			return s.result(state, Converged), nil
		case PhaseExhausted:
			return s.result(state, Exhausted), nil
		}
	}
}

func (s *Searcher) result(state *State, outcome Outcome) *Result {
	return &Result{
		Outcome:    outcome,
		Best:       state.Best,
		Trials:     state.Trials,
		Iterations: state.Iteration,
	}
}

// Trial runs a single trial at the given value without advancing any search
// state. Used to measure one specific quality value.
func (s *Searcher) Trial(ctx context.Context, crf int) (*predict.Prediction, error) {
	return s.runTrial(ctx, crf)
}

// runTrial encodes and scores every clip at the given value, in parallel up
// to the permit count, then aggregates a prediction. The trial's working
// directory is removed before returning; the shared clips stay on disk for
// later trials.
func (s *Searcher) runTrial(ctx context.Context, crf int) (*predict.Prediction, error) {
	dir, err := s.Dir.TrialDir(crf)
	if err != nil {
		return nil, err
	}
	defer s.Dir.RemoveTrial(crf)

	permits := worker.DefaultPermits(s.Settings.Concurrency, len(s.Clips))
	sem := worker.NewSemaphore(permits)

	results := make([]predict.SampleResult, len(s.Clips))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, clip := range s.Clips {
		i, clip := i, clip
		group.Go(func() error {
			if err := sem.Acquire(groupCtx); err != nil {
				return err
			}
			defer sem.Release()

			artifact, err := s.Encoder.Encode(groupCtx, clip.Path, crf, dir)
			if err != nil {
				return err
			}
			score, err := s.Scorer.Score(groupCtx, clip.Path, artifact.Path, s.Source.Height)
			if err != nil {
				return err
			}
			results[i] = predict.SampleResult{
				Index:          clip.Index,
				Score:          score,
				EncodedBytes:   artifact.SizeBytes,
				SampleBytes:    clip.SizeBytes,
				EncodeTime:     artifact.WallTime,
				SampleDuration: clip.Window.Length,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return predict.Aggregate(results, s.Source.SizeBytes, s.Source.Duration)
}
