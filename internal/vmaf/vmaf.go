// Package vmaf wraps the external libvmaf quality scorer.
package vmaf

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alexheretic/crfseek/internal/command"
	"github.com/alexheretic/crfseek/internal/errors"
	"github.com/alexheretic/crfseek/internal/logging"
)

// Model is a VMAF model trained for a particular display resolution.
type Model struct {
	Name   string
	Height int
}

// supportedModels are the models shipped with libvmaf, ordered by height.
var supportedModels = []Model{
	{Name: "vmaf_v0.6.1", Height: 1080},
	{Name: "vmaf_4k_v0.6.1", Height: 2160},
}

// SelectModel picks the supported model whose trained resolution is nearest
// the given video height, ties going to the smaller model.
func SelectModel(height int) Model {
	best := supportedModels[0]
	bestDist := distance(height, best.Height)
	for _, m := range supportedModels[1:] {
		if d := distance(height, m.Height); d < bestDist {
			best = m
			bestDist = d
		}
	}
	return best
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// Scorer computes quality scores by running ffmpeg's libvmaf filter.
type Scorer struct {
	runner command.Runner

	// forcedModel bypasses resolution-based selection when non-empty.
	forcedModel string
}

// NewScorer creates a Scorer. model may be empty to select automatically.
func NewScorer(runner command.Runner, model string) *Scorer {
	return &Scorer{runner: runner, forcedModel: model}
}

// Score compares an encoded artifact against its reference clip and returns
// the mean VMAF score. height is the video height used for model selection;
// inputs below the model's resolution are upscaled to it before comparison,
// as the models are only meaningful at their trained resolution.
func (s *Scorer) Score(ctx context.Context, referencePath, distortedPath string, height int) (float64, error) {
	model := SelectModel(height)
	modelName := model.Name
	if s.forcedModel != "" {
		modelName = s.forcedModel
	}

	var filter string
	if s.forcedModel == "" && height < model.Height {
		filter = fmt.Sprintf(
			"[0:v]scale=-1:%d:flags=bicubic[dis];[1:v]scale=-1:%d:flags=bicubic[ref];[dis][ref]libvmaf=model=version=%s",
			model.Height, model.Height, modelName)
	} else {
		filter = fmt.Sprintf("[0:v][1:v]libvmaf=model=version=%s", modelName)
	}

	args := []string{
		"-i", distortedPath,
		"-i", referencePath,
		"-filter_complex", filter,
		"-f", "null", "-",
	}

	out, err := s.runner.Run(ctx, "ffmpeg", args...)
	if err != nil {
		if errors.IsCancelled(err) {
			return 0, err
		}
		return 0, errors.NewScoreFailedError(
			fmt.Sprintf("libvmaf failed comparing %s against %s", distortedPath, referencePath), err)
	}

	score, err := ParseScore(out.Stdout + "\n" + out.Stderr)
	if err != nil {
		return 0, errors.NewScoreFailedError(
			fmt.Sprintf("unreadable scorer output: %s", command.LastLines(out.Stderr, 3)), err)
	}

	logging.Debug("scored sample", "distorted", distortedPath, "model", modelName, "score", score)
	return score, nil
}

var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`VMAF score:\s*([\d.]+)`),
	regexp.MustCompile(`"vmaf"[^}]*"mean":\s*([\d.]+)`),
	regexp.MustCompile(`vmaf_v.*mean:\s*([\d.]+)`),
}

// ParseScore extracts the mean VMAF score from ffmpeg output. libvmaf's
// reporting format varies between builds, so several patterns are tried.
func ParseScore(output string) (float64, error) {
	for _, pattern := range scorePatterns {
		if matches := pattern.FindStringSubmatch(output); len(matches) >= 2 {
			score, err := strconv.ParseFloat(strings.TrimSpace(matches[1]), 64)
			if err == nil {
				return score, nil
			}
		}
	}
	return 0, fmt.Errorf("no VMAF score found in output")
}
