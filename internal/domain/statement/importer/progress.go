package importer

// Step names one pipeline phase for progress reporting.
type Step string

const (
	StepParsing            Step = "parsing"
	StepCheckingDuplicates Step = "checking_duplicates"
	StepProcessing         Step = "processing"
	StepImporting          Step = "importing"
)

// Progress is one event on the orchestrator's event channel. Current and
// Total are populated during StepImporting only, as entries are written one
// at a time.
type Progress struct {
	Step    Step
	Percent int // 0-100
	Current int
	Total   int
}

// emit sends a progress event without ever blocking the pipeline. When the
// subscriber's channel is full the event is dropped; progress is advisory.
func (o *Orchestrator) emit(p Progress) {
	if o.events == nil {
		return
	}
	select {
	case o.events <- p:
	default:
	}
}
