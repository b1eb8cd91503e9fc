package invoices

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the wait between keystrokes and the remote
// duplicate-number lookup.
const DefaultDebounce = 350 * time.Millisecond

// NumberLookup fetches persisted invoices carrying exactly the given
// invoice number.
type NumberLookup func(ctx context.Context, number string) ([]Invoice, error)

// IsDuplicateNumber reports whether candidate collides with another
// invoice's number. The comparison is exact and case-sensitive after
// trimming the candidate; an empty candidate is never a duplicate. Records
// with id == excludeID are skipped so an edited record cannot flag itself.
func IsDuplicateNumber(candidate string, existing []Invoice, excludeID int64) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false
	}
	for _, inv := range existing {
		if excludeID != 0 && inv.ID == excludeID {
			continue
		}
		if inv.InvoiceNumber == candidate {
			return true
		}
	}
	return false
}

// DuplicateChecker runs debounced asynchronous duplicate-number lookups.
// Each Check supersedes any in-flight one: a stale response is discarded by
// generation counter, so a slow lookup can never overwrite the verdict for
// a newer candidate. Lookup failures degrade to "not a duplicate" — the
// warning is advisory and must never block the user on transport trouble.
type DuplicateChecker struct {
	lookup   NumberLookup
	debounce time.Duration

	mu    sync.Mutex
	seq   uint64
	timer *time.Timer
}

// NewDuplicateChecker builds a checker around the given lookup. A
// non-positive debounce falls back to DefaultDebounce.
func NewDuplicateChecker(lookup NumberLookup, debounce time.Duration) *DuplicateChecker {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &DuplicateChecker{lookup: lookup, debounce: debounce}
}

// Check schedules a lookup for candidate and delivers the verdict to apply.
// apply runs at most once per Check, on the checker's timer goroutine, and
// only while this Check is still the latest. An empty candidate resolves to
// false immediately without touching the lookup.
func (c *DuplicateChecker) Check(ctx context.Context, candidate string, excludeID int64, apply func(bool)) {
	candidate = strings.TrimSpace(candidate)

	c.mu.Lock()
	c.seq++
	token := c.seq
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if candidate == "" {
		c.mu.Unlock()
		apply(false)
		return
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.run(ctx, token, candidate, excludeID, apply)
	})
	c.mu.Unlock()
}

// Cancel discards any pending check without delivering a verdict.
func (c *DuplicateChecker) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *DuplicateChecker) run(ctx context.Context, token uint64, candidate string, excludeID int64, apply func(bool)) {
	if !c.current(token) {
		return
	}
	exists := false
	if c.lookup != nil {
		if matches, err := c.lookup(ctx, candidate); err == nil {
			exists = IsDuplicateNumber(candidate, matches, excludeID)
		}
	}
	if !c.current(token) {
		return
	}
	apply(exists)
}

func (c *DuplicateChecker) current(token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq == token
}
