// Package domain defines the core business types for the restock monitor.
package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Availability is the tri-state verdict for one product page fetch.
// The zero value is Unknown so an unset field never reads as a confirmed state.
type Availability int

// Availability constants.
const (
	Unknown Availability = iota
	InStock
	OutOfStock
)

// String returns the lower-case name used in logs and metric labels.
func (a Availability) String() string {
	switch a {
	case InStock:
		return "in_stock"
	case OutOfStock:
		return "out_of_stock"
	default:
		return "unknown"
	}
}

// Known reports whether a carries information (InStock or OutOfStock).
func (a Availability) Known() bool {
	return a == InStock || a == OutOfStock
}

// MarshalText implements encoding.TextMarshaler.
func (a Availability) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Availability) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "in_stock":
		*a = InStock
	case "out_of_stock":
		*a = OutOfStock
	case "unknown", "":
		*a = Unknown
	default:
		return fmt.Errorf("invalid availability %q", string(b))
	}
	return nil
}

// FromBool maps a persisted snapshot value to an Availability.
func FromBool(inStock bool) Availability {
	if inStock {
		return InStock
	}
	return OutOfStock
}

// Error taxonomy. Classifier-level errors never propagate; they are wrapped
// into the reason text of an Unknown classification.
var (
	ErrTransportFailure     = errors.New("transport failure")
	ErrUnexpectedStatus     = errors.New("unexpected status")
	ErrParseAmbiguity       = errors.New("structured data unreadable")
	ErrConfigurationMissing = errors.New("configuration missing")
)

// TrackedItem is one monitored product page. Immutable after config load.
type TrackedItem struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url"  yaml:"url"`
}

// Classification is the outcome of classifying one fetch for one item.
type Classification struct {
	Item         TrackedItem  `json:"item"`
	Availability Availability `json:"availability"`
	Reason       string       `json:"reason"`
}

// SnapshotEntry is one row of a persisted snapshot, used for display.
type SnapshotEntry struct {
	Code    string `json:"code"`
	InStock bool   `json:"in_stock"`
}

// Entries returns the snapshot as rows sorted by item code.
func Entries(snapshot map[string]bool) []SnapshotEntry {
	out := make([]SnapshotEntry, 0, len(snapshot))
	for code, v := range snapshot {
		out = append(out, SnapshotEntry{Code: code, InStock: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// RunReport summarizes one check run.
type RunReport struct {
	Paused          bool             `json:"paused"`
	Results         []Classification `json:"results,omitempty"`
	Notified        []string         `json:"notified,omitempty"`
	SnapshotChanged bool             `json:"snapshot_changed"`
	NotifyErrors    int              `json:"notify_errors"`
}
