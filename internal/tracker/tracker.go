// Package tracker implements duplicate suppression for availability alerts.
//
// A notification fires only on the rising edge into InStock. Unknown results
// are transparent: they never write the snapshot and never notify.
package tracker

import (
	"maps"

	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

// Decision is the outcome of evaluating one classification.
type Decision struct {
	Notify  bool
	Changed bool
	Prev    domain.Availability // Unknown when the item had no entry
	Next    domain.Availability // the value held after evaluation
}

// Snapshot holds the last persisted availability per item code. It is owned
// by a single run and is not safe for concurrent use.
type Snapshot struct {
	entries map[string]bool
	changed bool
}

// NewSnapshot wraps a loaded mapping. A nil map is treated as empty. The map
// is copied.
func NewSnapshot(entries map[string]bool) *Snapshot {
	s := &Snapshot{entries: make(map[string]bool, len(entries))}
	maps.Copy(s.entries, entries)
	return s
}

// Get returns the stored availability for code, or Unknown when absent.
func (s *Snapshot) Get(code string) domain.Availability {
	v, ok := s.entries[code]
	if !ok {
		return domain.Unknown
	}
	return domain.FromBool(v)
}

// Changed reports whether any entry changed value since construction.
func (s *Snapshot) Changed() bool {
	return s.changed
}

// Entries returns a copy of the current mapping for persistence.
func (s *Snapshot) Entries() map[string]bool {
	return maps.Clone(s.entries)
}

// Evaluate applies a fresh availability for item and reports whether a
// notification is due.
func (s *Snapshot) Evaluate(item domain.TrackedItem, next domain.Availability) Decision {
	prev := s.Get(item.Code)
	d := Decision{Prev: prev, Next: prev}

	if !next.Known() {
		return d
	}

	if next == domain.InStock && prev != domain.InStock {
		d.Notify = true
	}

	if prev != next {
		s.entries[item.Code] = next == domain.InStock
		s.changed = true
		d.Changed = true
		d.Next = next
	}

	return d
}
