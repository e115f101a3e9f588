// Package report collects per-chapter outcomes for the end-of-run summary.
//
// Record may be called from any goroutine. Drain is called once, after every
// chapter has finished, and returns the chapters that did not come out clean.
package report

import (
	"errors"
	"sort"
	"sync"
)

// Status classifies how a chapter ended.
type Status int

const (
	Clean Status = iota
	// Degraded chapters produced documents with at least one page missing.
	Degraded
	// Fatal chapters were abandoned before a complete document set existed.
	Fatal
)

func (s Status) String() string {
	switch s {
	case Clean:
		return "clean"
	case Degraded:
		return "degraded"
	case Fatal:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrAlreadyDrained is returned by a second Drain.
var ErrAlreadyDrained = errors.New("report already drained")

// ChapterOutcome is the final account of one chapter.
type ChapterOutcome struct {
	Slug   string
	Status Status
	// Stage names the state the chapter was in when it failed; empty when clean.
	Stage string
	Err   error
	// Pages is the number of page slots discovered; Failed counts lost pages.
	Pages  int
	Failed int
}

// Totals summarizes every recorded chapter, clean ones included.
type Totals struct {
	Chapters int
	Clean    int
	Degraded int
	Fatal    int
}

// Aggregator is the run-wide outcome set guarded by a single mutex.
type Aggregator struct {
	mu       sync.Mutex
	outcomes map[string]ChapterOutcome
	drained  bool
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{outcomes: make(map[string]ChapterOutcome)}
}

// Record stores an outcome. Repeated records for a slug keep the most severe
// status; an equal status replaces the earlier record. Records after Drain
// are ignored.
func (a *Aggregator) Record(outcome ChapterOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.drained {
		return
	}
	if prev, ok := a.outcomes[outcome.Slug]; ok && prev.Status > outcome.Status {
		return
	}
	a.outcomes[outcome.Slug] = outcome
}

// Totals returns counts by status.
func (a *Aggregator) Totals() Totals {
	a.mu.Lock()
	defer a.mu.Unlock()
	totals := Totals{Chapters: len(a.outcomes)}
	for _, outcome := range a.outcomes {
		switch outcome.Status {
		case Clean:
			totals.Clean++
		case Degraded:
			totals.Degraded++
		case Fatal:
			totals.Fatal++
		}
	}
	return totals
}

// Drain returns degraded and fatal outcomes sorted by slug. It may be called
// once.
func (a *Aggregator) Drain() ([]ChapterOutcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.drained {
		return nil, ErrAlreadyDrained
	}
	a.drained = true

	failed := make([]ChapterOutcome, 0, len(a.outcomes))
	for _, outcome := range a.outcomes {
		if outcome.Status != Clean {
			failed = append(failed, outcome)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Slug < failed[j].Slug })
	return failed, nil
}
