package resolver

import (
	"fmt"
	"sync"

	"eventdocs/internal/catalog"
)

type Reason string

const (
	// ReasonNoCandidate means no record with the referenced id exists.
	ReasonNoCandidate Reason = "no_candidate"
	// ReasonVersionMismatch means the family exists but no version satisfies the range.
	ReasonVersionMismatch Reason = "version_mismatch"
	ReasonChannelMissing  Reason = "channel_missing"
	ReasonLabelConflict   Reason = "label_conflict"
)

// Diagnostic records a reference that was dropped during hydration or graph
// building.
type Diagnostic struct {
	Source     string             `json:"source"`
	Collection catalog.Collection `json:"collection"`
	Field      catalog.Field      `json:"field,omitempty"`
	Target     string             `json:"target"`
	Reason     Reason             `json:"reason"`
	Detail     string             `json:"detail,omitempty"`
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s %s.%s -> %s: %s", d.Collection, d.Source, d.Field, d.Target, d.Reason)
	if d.Detail != "" {
		s += " (" + d.Detail + ")"
	}
	return s
}

// Diagnostics collects dropped references. A nil *Diagnostics discards
// everything, so callers that do not care can pass nil.
type Diagnostics struct {
	mu    sync.Mutex
	items []Diagnostic
	seen  map[Diagnostic]bool
	hooks []func(Diagnostic)
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{seen: make(map[Diagnostic]bool)}
}

// Add records d once; repeated enrichment runs do not duplicate entries.
func (d *Diagnostics) Add(diag Diagnostic) {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.seen == nil {
		d.seen = make(map[Diagnostic]bool)
	}
	if d.seen[diag] {
		d.mu.Unlock()
		return
	}
	d.seen[diag] = true
	d.items = append(d.items, diag)
	hooks := d.hooks
	d.mu.Unlock()

	for _, fn := range hooks {
		fn(diag)
	}
}

// OnAdd registers fn to run for every newly recorded diagnostic.
func (d *Diagnostics) OnAdd(fn func(Diagnostic)) {
	if d == nil || fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = append(d.hooks, fn)
}

func (d *Diagnostics) Items() []Diagnostic {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.items))
	copy(out, d.items)
	return out
}

func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

func (d *Diagnostics) Reset() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = nil
	d.seen = make(map[Diagnostic]bool)
}

func (d *Diagnostics) ReasonCounts() map[Reason]int {
	counts := make(map[Reason]int)
	for _, item := range d.Items() {
		reason := item.Reason
		if reason == "" {
			reason = ReasonNoCandidate
		}
		counts[reason]++
	}
	return counts
}
