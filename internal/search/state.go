// Package search drives the interpolated CRF search over sample trials.
package search

import (
	"math"

	"github.com/alexheretic/crfseek/internal/predict"
)

// Phase is the controller's lifecycle state.
type Phase int

const (
	// PhaseInitializing is the state before the first trial value is picked.
	PhaseInitializing Phase = iota
	// PhaseTrialing means trials are running and bounds are narrowing.
	PhaseTrialing
	// PhaseConverged means the bounds met at the parameter granularity.
	PhaseConverged
	// PhaseExhausted means the iteration cap was reached first.
	PhaseExhausted
	// PhaseFailed means an unrecoverable external error ended the search.
	PhaseFailed
)

// String returns a phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseTrialing:
		return "trialing"
	case PhaseConverged:
		return "converged"
	case PhaseExhausted:
		return "exhausted"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Direction declares which way the encoder's quality parameter trades
// quality for compression.
type Direction int

const (
	// HigherIsSmaller: a larger parameter value means more compression
	// (CRF-style parameters).
	HigherIsSmaller Direction = iota
	// LowerIsSmaller: a smaller parameter value means more compression
	// (bitrate-style parameters).
	LowerIsSmaller
)

// Trial records one completed sample->encode->score->aggregate pass.
type Trial struct {
	Iteration  int
	CRF        int
	Prediction *predict.Prediction
	Passed     bool
}

// State is the mutable search state. It is owned by the controller and
// mutated only between iterations.
//
// Bounds are kept in "compression coordinates": low..high is the untested
// range, inclusive, ordered from least to most compression regardless of the
// encoder's parameter direction. Conversion to the encoder's numeric value
// happens only at the edges.
type State struct {
	Phase     Phase
	Direction Direction

	low  int
	high int

	Trials    []Trial
	Best      *Trial
	Iteration int

	minQuality     float64
	maxSizePercent float64
	maxIterations  int
}

// NewState creates search state over the inclusive parameter range
// [minParam, maxParam].
func NewState(minParam, maxParam int, dir Direction, minQuality, maxSizePercent float64, maxIterations int) *State {
	s := &State{
		Phase:          PhaseInitializing,
		Direction:      dir,
		Trials:         make([]Trial, 0, maxIterations),
		minQuality:     minQuality,
		maxSizePercent: maxSizePercent,
		maxIterations:  maxIterations,
	}
	s.low = s.toCompression(s.leastCompressedParam(minParam, maxParam))
	s.high = s.toCompression(s.mostCompressedParam(minParam, maxParam))
	return s
}

func (s *State) leastCompressedParam(minParam, maxParam int) int {
	if s.Direction == HigherIsSmaller {
		return minParam
	}
	return maxParam
}

func (s *State) mostCompressedParam(minParam, maxParam int) int {
	if s.Direction == HigherIsSmaller {
		return maxParam
	}
	return minParam
}

// toCompression maps a parameter value into compression coordinates.
func (s *State) toCompression(param int) int {
	if s.Direction == HigherIsSmaller {
		return param
	}
	return -param
}

// toParam maps compression coordinates back to the encoder's value.
func (s *State) toParam(q int) int {
	if s.Direction == HigherIsSmaller {
		return q
	}
	return -q
}

// Next picks the next trial parameter value and moves to Trialing.
// Call only while Exhausted/Converged have not been reached.
func (s *State) Next() int {
	s.Iteration++
	s.Phase = PhaseTrialing
	return s.toParam(s.nextCompression())
}

// nextCompression interpolates between the nearest passing and failing
// trials when both exist, assuming quality is locally linear in the
// parameter; otherwise it bisects the remaining range. The result is always
// inside [low, high] so every trial narrows the bounds.
func (s *State) nextCompression() int {
	if q, ok := s.interpolate(); ok {
		return clamp(q, s.low, s.high)
	}
	return (s.low + s.high) / 2
}

// interpolate finds the bracketing pair: the most-compressed PASS and the
// least-compressed FAIL. Projects the min-quality contour between them.
func (s *State) interpolate() (int, bool) {
	var pass, fail *Trial
	for i := range s.Trials {
		t := &s.Trials[i]
		q := s.toCompression(t.CRF)
		if t.Passed {
			if pass == nil || q > s.toCompression(pass.CRF) {
				pass = t
			}
		} else {
			if fail == nil || q < s.toCompression(fail.CRF) {
				fail = t
			}
		}
	}
	if pass == nil || fail == nil {
		return 0, false
	}

	passQ := float64(s.toCompression(pass.CRF))
	failQ := float64(s.toCompression(fail.CRF))
	passScore := pass.Prediction.MeanScore
	failScore := fail.Prediction.MeanScore
	if failQ <= passQ || passScore <= failScore {
		return 0, false
	}

	// Where does the min-quality contour fall between the two scores?
	factor := (passScore - s.minQuality) / (passScore - failScore)
	q := passQ + factor*(failQ-passQ)
	return int(math.Round(q)), true
}

// Record classifies a finished trial, updates bounds, and advances the
// phase when the bounds converge or the iteration cap is hit. Returns the
// recorded trial.
func (s *State) Record(crf int, prediction *predict.Prediction) Trial {
	trial := Trial{
		Iteration:  s.Iteration,
		CRF:        crf,
		Prediction: prediction,
		Passed:     prediction.MeanScore >= s.minQuality && prediction.SizePercent <= s.maxSizePercent,
	}
	s.Trials = append(s.Trials, trial)

	q := s.toCompression(crf)
	if trial.Passed {
		// New candidate best; keep pushing toward more compression.
		if s.Best == nil || q > s.toCompression(s.Best.CRF) {
			best := trial
			s.Best = &best
		}
		if q+1 > s.low {
			s.low = q + 1
		}
	} else {
		if q-1 < s.high {
			s.high = q - 1
		}
	}

	switch {
	case s.low > s.high:
		s.Phase = PhaseConverged
	case s.Iteration >= s.maxIterations:
		s.Phase = PhaseExhausted
	default:
		s.Phase = PhaseTrialing
	}
	return trial
}

// Fail marks the search as terminally failed.
func (s *State) Fail() {
	s.Phase = PhaseFailed
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
