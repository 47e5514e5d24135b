package runner

import (
	"sync"

	"callscribe/pkg/model"
)

// Aggregator collects per-row outcomes into the batch report, in call
// order, and answers the first-success lookup used for spot-checking.
type Aggregator struct {
	mu     sync.Mutex
	report model.BatchReport
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record appends one row's outcome to the report.
func (a *Aggregator) Record(label string, outcome model.Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.report.Entries = append(a.report.Entries, model.ReportEntry{
		Label:   label,
		Outcome: outcome,
	})
}

// Summary returns the full report collected so far.
func (a *Aggregator) Summary() *model.BatchReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	entries := make([]model.ReportEntry, len(a.report.Entries))
	copy(entries, a.report.Entries)
	return &model.BatchReport{Entries: entries}
}

// FirstSuccess returns the earliest recorded success entry, or nil when no
// row succeeded.
func (a *Aggregator) FirstSuccess() *model.ReportEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.report.Entries {
		if a.report.Entries[i].Outcome.Kind == model.OutcomeSuccess {
			entry := a.report.Entries[i]
			return &entry
		}
	}
	return nil
}
