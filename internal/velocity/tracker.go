// Package velocity tracks submission timestamps in a bounded sliding window.
package velocity

import (
	"sync"
	"time"
)

const (
	// minRetention is the floor on how far back entries are kept, so a
	// tracker built with a tiny window still answers slightly larger
	// ad-hoc queries.
	minRetention = 10 * time.Minute

	// maxEntries caps the log under burst load.
	maxEntries = 100000
)

// Tracker records submission timestamps and answers how many landed inside
// a trailing window. Safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	retention time.Duration
	entries   []time.Time
}

// NewTracker creates an empty tracker that retains entries long enough to
// answer CountWithin for the given window. Entries older than the
// retention horizon are pruned on write.
func NewTracker(window time.Duration) *Tracker {
	retention := window
	if retention < minRetention {
		retention = minRetention
	}
	return &Tracker{retention: retention}
}

// Record appends a submission timestamp and prunes expired entries.
func (t *Tracker) Record(ts time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, ts)
	t.prune(ts)
}

// CountWithin returns the number of recorded timestamps ts with
// now - ts < window.
func (t *Tracker) CountWithin(now time.Time, window time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0
	for _, ts := range t.entries {
		if now.Sub(ts) < window {
			count++
		}
	}
	return count
}

// prune drops entries past the retention horizon and caps the slice.
// Caller holds the lock. Entries are appended in call order, which is
// close to time order but not guaranteed monotonic, so prune scans rather
// than assuming a sorted prefix.
func (t *Tracker) prune(now time.Time) {
	cutoff := now.Add(-t.retention)
	kept := t.entries[:0]
	for _, ts := range t.entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	t.entries = kept

	if len(t.entries) > maxEntries {
		t.entries = t.entries[len(t.entries)-maxEntries:]
	}
}
