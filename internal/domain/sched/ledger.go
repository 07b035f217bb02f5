package sched

import "github.com/mrdon/kioskd/pkg/metrics"

// resetShowsMultiplier triggers a ledger wipe once the population has been
// shown this many times on average.
const resetShowsMultiplier = 3

// Ledger maps identity keys to times-shown counts within one epoch.
// It is owned by the playback state machine and never shared across
// goroutines, so it needs no locking.
type Ledger struct {
	shown map[string]int
	total int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{shown: make(map[string]int)}
}

// Shown returns the times-shown count for an identity key, defaulting to 0.
func (l *Ledger) Shown(key string) int {
	return l.shown[key]
}

// Record increments the times-shown count for an identity key.
func (l *Ledger) Record(key string) {
	l.shown[key]++
	l.total++
	metrics.UpdateLedgerTotalShows(l.total)
}

// Total returns the sum of all times-shown counts.
func (l *Ledger) Total() int {
	return l.total
}

// Reset clears all recency stats.
func (l *Ledger) Reset() {
	l.shown = make(map[string]int)
	l.total = 0
	metrics.UpdateLedgerTotalShows(0)
	metrics.RecordLedgerReset()
}

// MaybeReset clears the ledger once cumulative shows reach
// resetShowsMultiplier times the population size, so all slides compete
// afresh. Returns true if a reset happened.
func (l *Ledger) MaybeReset(populationSize int) bool {
	if populationSize <= 0 {
		return false
	}
	if l.total < resetShowsMultiplier*populationSize {
		return false
	}
	l.Reset()
	return true
}
