package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	SourceInfo(summary SourceSummary)
	SearchStarted(summary SearchSummary)
	SamplesExtracted(summary SampleSummary)
	TrialStarted(event TrialEvent)
	TrialCompleted(event TrialEvent)
	SearchComplete(outcome SearchOutcome)
	EncodingStarted(outputFile string)
	EncodingProgress(progress ProgressSnapshot)
	EncodingComplete(outcome EncodeOutcome)
	ValidationComplete(summary ValidationSummary)
	Warning(message string)
	Error(err ReportedError)
	OperationComplete(message string)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) SourceInfo(SourceSummary)        {}
func (NullReporter) SearchStarted(SearchSummary)     {}
func (NullReporter) SamplesExtracted(SampleSummary)  {}
func (NullReporter) TrialStarted(TrialEvent)         {}
func (NullReporter) TrialCompleted(TrialEvent)       {}
func (NullReporter) SearchComplete(SearchOutcome)    {}
func (NullReporter) EncodingStarted(string)          {}
func (NullReporter) EncodingProgress(ProgressSnapshot) {}
func (NullReporter) EncodingComplete(EncodeOutcome)  {}
func (NullReporter) ValidationComplete(ValidationSummary) {}
func (NullReporter) Warning(string)                  {}
func (NullReporter) Error(ReportedError)             {}
func (NullReporter) OperationComplete(string)        {}
func (NullReporter) Verbose(string)                  {}
