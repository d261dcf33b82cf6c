package reporter

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/alexheretic/crfseek/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu          sync.Mutex
	progress    *progressbar.ProgressBar
	maxPercent  float64
	interactive bool
	verbose     bool
	cyan        *color.Color
	green       *color.Color
	yellow      *color.Color
	red         *color.Color
	magenta     *color.Color
	bold        *color.Color
	faint       *color.Color
}

// NewTerminalReporter creates a new terminal reporter. Progress bars are
// only drawn when stderr is a terminal.
func NewTerminalReporter(verbose bool) *TerminalReporter {
	fd := os.Stderr.Fd()
	return &TerminalReporter{
		interactive: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		verbose:     verbose,
		cyan:        color.New(color.FgCyan, color.Bold),
		green:       color.New(color.FgGreen),
		yellow:      color.New(color.FgYellow, color.Bold),
		red:         color.New(color.FgRed, color.Bold),
		magenta:     color.New(color.FgMagenta),
		bold:        color.New(color.Bold),
		faint:       color.New(color.Faint),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) SourceInfo(summary SourceSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("SOURCE")
	const w = 11
	r.printLabel(w, "File:", summary.InputFile)
	r.printLabel(w, "Duration:", util.FormatDuration(summary.Duration))
	r.printLabel(w, "Resolution:", summary.Resolution)
	r.printLabel(w, "Pixels:", summary.PixelFormat)
	r.printLabel(w, "Size:", util.FormatBytes(summary.FileSize))
}

func (r *TerminalReporter) SearchStarted(summary SearchSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("SEARCH")
	const w = 11
	r.printLabel(w, "Encoder:", fmt.Sprintf("%s (preset %s)", summary.Encoder, summary.Preset))
	r.printLabel(w, "Range:", fmt.Sprintf("crf %d..%d", summary.MinCRF, summary.MaxCRF))
	r.printLabel(w, "Targets:", fmt.Sprintf("quality >= %.1f, size <= %s",
		summary.MinQuality, util.FormatPercent(summary.MaxSizePercent)))
	r.printLabel(w, "Samples:", fmt.Sprintf("%d x %.0fs", summary.SampleCount, summary.SampleDuration))
	if summary.QualityModel != "" {
		r.printLabel(w, "Model:", summary.QualityModel)
	}
}

func (r *TerminalReporter) SamplesExtracted(summary SampleSummary) {
	note := ""
	if summary.Adjusted {
		note = r.faint.Sprint(" (adjusted for short input)")
	}
	fmt.Printf("  %s extracted %d samples of %.0fs%s\n",
		r.magenta.Sprint("›"), summary.Count, summary.Duration, note)
}

func (r *TerminalReporter) TrialStarted(event TrialEvent) {
	fmt.Printf("  %s trial %d/%d: crf %d\n",
		r.magenta.Sprint("›"), event.Iteration, event.MaxIterations, event.CRF)
}

func (r *TerminalReporter) TrialCompleted(event TrialEvent) {
	var mark string
	if event.Passed {
		mark = r.green.Sprint("✓")
	} else {
		mark = r.red.Sprint("✗")
	}
	fmt.Printf("    %s crf %d: score %.2f, predicted size %s (%s), eta %s\n",
		mark, event.CRF, event.MeanScore,
		util.FormatBytes(event.PredictedSize),
		util.FormatPercent(event.SizePercent),
		util.FormatDuration(event.PredictedDuration.Seconds()))
}

func (r *TerminalReporter) SearchComplete(outcome SearchOutcome) {
	fmt.Println()
	_, _ = r.cyan.Println("RESULTS")
	if outcome.Cancelled {
		fmt.Printf("  %s\n", r.yellow.Sprint("Interrupted: best value found so far"))
	} else if outcome.Exhausted {
		fmt.Printf("  %s\n", r.yellow.Sprintf("Iteration cap reached after %d trials", outcome.Iterations))
	}

	const w = 15
	r.printLabel(w, "Best crf:", r.bold.Sprint(outcome.BestCRF))
	r.printLabel(w, "Mean score:", fmt.Sprintf("%.2f", outcome.MeanScore))
	r.printLabel(w, "Predicted size:", fmt.Sprintf("%s (%s of source)",
		util.FormatBytes(outcome.PredictedSize), util.FormatPercent(outcome.SizePercent)))
	r.printLabel(w, "Predicted time:", util.FormatDuration(outcome.PredictedDuration.Seconds()))

	if len(outcome.Trials) > 0 {
		fmt.Println()
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "CRF", "Score", "Size", "Result"})
		for _, trial := range outcome.Trials {
			result := "fail"
			if trial.Passed {
				result = "pass"
			}
			t.AppendRow(table.Row{
				trial.Iteration,
				trial.CRF,
				fmt.Sprintf("%.2f", trial.MeanScore),
				util.FormatPercent(trial.SizePercent),
				result,
			})
		}
		t.Render()
	}
}

func (r *TerminalReporter) EncodingStarted(outputFile string) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println("ENCODING")
	r.printLabel(8, "Output:", outputFile)

	if !r.interactive {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Encoding [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) EncodingProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := progress.Percent
	if clamped > 100 {
		clamped = 100
	}
	if clamped < 0 {
		clamped = 0
	}

	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	desc := fmt.Sprintf("speed %.1fx, fps %.1f, eta %s",
		progress.Speed, progress.FPS, util.FormatDuration(progress.ETA.Seconds()))
	r.progress.Describe(desc)
}

func (r *TerminalReporter) EncodingComplete(outcome EncodeOutcome) {
	r.finishProgress()

	reduction := util.SizeReduction(outcome.OriginalSize, outcome.EncodedSize)

	fmt.Println()
	_, _ = r.cyan.Println("ENCODED")
	const w = 10
	r.printLabel(w, "Output:", outcome.OutputFile)
	fmt.Printf("  %s %s -> %s\n",
		r.bold.Sprint(fmt.Sprintf("%-*s", w, "Size:")),
		util.FormatBytes(outcome.OriginalSize),
		util.FormatBytes(outcome.EncodedSize))
	r.printLabel(w, "Reduction:", r.bold.Sprintf("%.1f%%", reduction))
	r.printLabel(w, "Crf:", fmt.Sprintf("%d", outcome.CRF))
	r.printLabel(w, "Time:", util.FormatDuration(outcome.TotalTime.Seconds()))
}

func (r *TerminalReporter) ValidationComplete(summary ValidationSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("VALIDATION")
	for _, step := range summary.Steps {
		var mark string
		if step.Passed {
			mark = r.green.Sprint("✓")
		} else {
			mark = r.red.Sprint("✗")
		}
		fmt.Printf("  %s %s %s\n", mark, r.bold.Sprint(fmt.Sprintf("%-13s", step.Name+":")), step.Details)
	}
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReportedError) {
	r.finishProgress()

	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	r.finishProgress()

	fmt.Println()
	fmt.Printf("%s %s\n", r.green.Add(color.Bold).Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	fmt.Printf("  %s\n", r.faint.Sprint(message))
}
