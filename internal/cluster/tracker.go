// Package cluster counts profile submissions per email domain. A burst of
// registrations from one domain is a cheap but effective clustering signal.
package cluster

import (
	"strings"
	"sync"
)

// Tracker holds monotonically increasing per-domain submission counts.
// Counts are process-lifetime state and never decremented.
type Tracker struct {
	mu     sync.RWMutex
	counts map[string]int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{counts: make(map[string]int)}
}

// Increment bumps the count for the normalized domain.
func (t *Tracker) Increment(domain string) {
	domain = strings.ToLower(domain)
	t.mu.Lock()
	t.counts[domain]++
	t.mu.Unlock()
}

// Count returns the current count for the normalized domain (0 if unseen).
func (t *Tracker) Count(domain string) int {
	domain = strings.ToLower(domain)
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counts[domain]
}

// DomainOf extracts the lowercased domain part of an email address:
// everything after the last '@'. An address with no '@' maps to itself,
// which keeps malformed input confined to its own bucket.
func DomainOf(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return strings.ToLower(email[i+1:])
	}
	return strings.ToLower(email)
}
