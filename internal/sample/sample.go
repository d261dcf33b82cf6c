// Package sample selects and extracts short windows of the source video.
//
// Windows are planned once per run and reused for every trial, so different
// quality parameters are always compared on identical content.
package sample

import (
	"github.com/alexheretic/crfseek/internal/config"
	"github.com/alexheretic/crfseek/internal/errors"
)

// Window is a single (start, length) region of the source, in seconds.
// The region covered is [Start, Start+Length).
type Window struct {
	Start  float64
	Length float64
}

// End returns the exclusive end offset of the window.
func (w Window) End() float64 {
	return w.Start + w.Length
}

// Plan is the deterministic window layout for one run.
type Plan struct {
	Windows []Window

	// RequestedCount and RequestedLength record what was asked for;
	// Adjusted is set when the source was too short and the plan shrank
	// the windows or dropped some of them.
	RequestedCount  int
	RequestedLength float64
	Adjusted        bool
}

// PlanWindows lays out count windows of the given length, evenly spaced
// across duration with equal gaps before, between, and after the windows.
//
// When the windows cannot fit, the length is halved (down to the minimum
// sample duration) and then the count reduced, in that order, so the
// adjustment is deterministic. Returns InputTooShort when even a single
// minimum-length window does not fit.
func PlanWindows(duration float64, count int, length float64) (*Plan, error) {
	if count < 1 {
		count = 1
	}
	if duration < config.MinSampleDuration {
		return nil, errors.NewInputTooShortError(duration)
	}

	plan := &Plan{
		RequestedCount:  count,
		RequestedLength: length,
	}

	for float64(count)*length > duration {
		if length/2 >= config.MinSampleDuration {
			length /= 2
		} else if count > 1 {
			count--
		} else {
			return nil, errors.NewInputTooShortError(duration)
		}
		plan.Adjusted = true
	}

	gap := (duration - float64(count)*length) / float64(count+1)
	plan.Windows = make([]Window, count)
	for i := 0; i < count; i++ {
		plan.Windows[i] = Window{
			Start:  gap*float64(i+1) + length*float64(i),
			Length: length,
		}
	}

	return plan, nil
}
