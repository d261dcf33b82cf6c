// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// SourceSummary describes the probed input before any work starts.
type SourceSummary struct {
	InputFile   string
	Duration    float64
	Resolution  string
	PixelFormat string
	FileSize    uint64
}

// SearchSummary describes the search parameters about to be used.
type SearchSummary struct {
	Encoder        string
	Preset         string
	MinCRF         int
	MaxCRF         int
	MinQuality     float64
	MaxSizePercent float64
	SampleCount    int
	SampleDuration float64
	MaxIterations  int
	QualityModel   string
}

// SampleSummary describes the extracted sample windows.
type SampleSummary struct {
	Count    int
	Duration float64
	Adjusted bool
}

// TrialEvent carries one trial's identity and, once completed, its results.
type TrialEvent struct {
	Iteration         int
	MaxIterations     int
	CRF               int
	MeanScore         float64
	SizePercent       float64
	PredictedSize     uint64
	PredictedDuration time.Duration
	Passed            bool
}

// SearchOutcome is the final report of a CRF search.
type SearchOutcome struct {
	BestCRF           int
	MeanScore         float64
	SizePercent       float64
	PredictedSize     uint64
	PredictedDuration time.Duration
	Iterations        int
	Exhausted         bool
	Cancelled         bool
	Trials            []TrialEvent
}

// ProgressSnapshot contains full-encode progress information.
type ProgressSnapshot struct {
	Percent float64
	Speed   float64
	FPS     float64
	ETA     time.Duration
}

// EncodeOutcome contains final full-encode results.
type EncodeOutcome struct {
	InputFile    string
	OutputFile   string
	OriginalSize uint64
	EncodedSize  uint64
	CRF          int
	TotalTime    time.Duration
}

// ValidationStep is one post-encode check and its outcome.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// ValidationSummary collects the post-encode validation checks.
type ValidationSummary struct {
	OutputFile string
	Passed     bool
	Steps      []ValidationStep
}

// ReportedError contains error information for display.
type ReportedError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}
