// Package pricing implements the static model-id → per-token pricing
// catalog described in spec §4.1. It is process-wide read-only state once
// built: NewDefaultCatalog (optionally layered with Merge) is called once
// at startup, and Price never mutates the catalog afterward.
package pricing

import (
	"sort"
	"sync"

	"github.com/agentaudit/agentaudit/internal/logging"
	"github.com/agentaudit/agentaudit/internal/model"
)

var log = logging.ForComponent(logging.CompPricing)

// Entry is one row of the pricing catalog: a model id prefix pattern and its
// per-million-token rates by token kind.
type Entry struct {
	ModelIDPattern    string
	InputPerMTok      float64
	OutputPerMTok     float64
	CacheReadPerMTok  float64
	CacheWritePerMTok float64
}

// Catalog resolves a model id to pricing via longest-prefix match, ties
// broken by lexicographic order of the pattern (spec §3 PricingEntry).
type Catalog struct {
	entries []Entry // sorted: longest pattern first, then lexicographic

	mu     sync.Mutex
	warned map[string]bool
}

// sortEntries orders entries by descending pattern length, then
// lexicographically, so the first match found by a linear scan is the
// correct longest-prefix winner.
func sortEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].ModelIDPattern) != len(out[j].ModelIDPattern) {
			return len(out[i].ModelIDPattern) > len(out[j].ModelIDPattern)
		}
		return out[i].ModelIDPattern < out[j].ModelIDPattern
	})
	return out
}

// New builds a Catalog from an explicit entry list, sorting it once.
func New(entries []Entry) *Catalog {
	return &Catalog{
		entries: sortEntries(entries),
		warned:  make(map[string]bool),
	}
}

// Merge returns a new Catalog containing both c's entries and extra,
// re-sorted. c is not mutated. Used to layer user-config overrides
// (internal/config) on top of the built-in table.
func (c *Catalog) Merge(extra []Entry) *Catalog {
	combined := make([]Entry, 0, len(c.entries)+len(extra))
	combined = append(combined, c.entries...)
	combined = append(combined, extra...)
	return New(combined)
}

// Price computes the USD cost of usage at the given model id. If no pattern
// matches, it returns zero and logs a one-time warning per unknown model id
// (spec §4.1).
func (c *Catalog) Price(modelID string, u model.Usage) float64 {
	entry, ok := c.lookup(modelID)
	if !ok {
		c.warnUnknown(modelID)
		return 0
	}
	return (float64(u.InputTokens)*entry.InputPerMTok +
		float64(u.OutputTokens)*entry.OutputPerMTok +
		float64(u.CacheReadTokens)*entry.CacheReadPerMTok +
		float64(u.CacheWriteTokens)*entry.CacheWritePerMTok) / 1_000_000
}

// lookup finds the longest-prefix entry matching modelID.
func (c *Catalog) lookup(modelID string) (Entry, bool) {
	if modelID == "" {
		return Entry{}, false
	}
	for _, e := range c.entries {
		if len(e.ModelIDPattern) <= len(modelID) && modelID[:len(e.ModelIDPattern)] == e.ModelIDPattern {
			return e, true
		}
	}
	return Entry{}, false
}

func (c *Catalog) warnUnknown(modelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warned[modelID] {
		return
	}
	c.warned[modelID] = true
	log.Warn("unknown_model_id", "model_id", modelID)
}

// Entries returns a copy of the catalog's sorted entries, for display or
// testing.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
