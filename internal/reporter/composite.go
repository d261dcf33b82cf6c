package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) SourceInfo(summary SourceSummary) {
	for _, r := range c.reporters {
		r.SourceInfo(summary)
	}
}

func (c *CompositeReporter) SearchStarted(summary SearchSummary) {
	for _, r := range c.reporters {
		r.SearchStarted(summary)
	}
}

func (c *CompositeReporter) SamplesExtracted(summary SampleSummary) {
	for _, r := range c.reporters {
		r.SamplesExtracted(summary)
	}
}

func (c *CompositeReporter) TrialStarted(event TrialEvent) {
	for _, r := range c.reporters {
		r.TrialStarted(event)
	}
}

func (c *CompositeReporter) TrialCompleted(event TrialEvent) {
	for _, r := range c.reporters {
		r.TrialCompleted(event)
	}
}

func (c *CompositeReporter) SearchComplete(outcome SearchOutcome) {
	for _, r := range c.reporters {
		r.SearchComplete(outcome)
	}
}

func (c *CompositeReporter) EncodingStarted(outputFile string) {
	for _, r := range c.reporters {
		r.EncodingStarted(outputFile)
	}
}

func (c *CompositeReporter) EncodingProgress(progress ProgressSnapshot) {
	for _, r := range c.reporters {
		r.EncodingProgress(progress)
	}
}

func (c *CompositeReporter) EncodingComplete(outcome EncodeOutcome) {
	for _, r := range c.reporters {
		r.EncodingComplete(outcome)
	}
}

func (c *CompositeReporter) ValidationComplete(summary ValidationSummary) {
	for _, r := range c.reporters {
		r.ValidationComplete(summary)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReportedError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) OperationComplete(message string) {
	for _, r := range c.reporters {
		r.OperationComplete(message)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
