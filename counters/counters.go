// Package counters keeps the denormalized "all" and "published" recipe
// counts in step with record mutations, driven by store change events
// instead of collection scans.
package counters

import (
	"context"
	"log"

	"forkful/hooks"
)

const (
	CountAll       = "all"
	CountPublished = "published"
)

// CountStore persists the singleton count documents. Get reports found =
// false when the document has never been written.
type CountStore interface {
	Get(ctx context.Context, name string) (count int64, found bool, err error)
	Set(ctx context.Context, name string, count int64) error
}

// Maintainer applies count deltas from change events. Writes are
// best-effort read-then-write: concurrent writers can race and a crash
// between a record mutation and its count update leaves the count stale.
// The counts are advisory display aggregates, so that drift is accepted.
type Maintainer struct {
	counts CountStore
}

func NewMaintainer(counts CountStore) *Maintainer {
	return &Maintainer{counts: counts}
}

// Register subscribes the maintainer to a store's change events.
func (m *Maintainer) Register(emitter *hooks.Emitter) {
	emitter.Subscribe(m.Apply)
}

func (m *Maintainer) Apply(ev hooks.Event) {
	ctx := context.Background()
	switch ev.Op {
	case hooks.OpCreate:
		m.adjust(ctx, CountAll, 1)
		if ev.After != nil && ev.After.IsPublished {
			m.adjust(ctx, CountPublished, 1)
		}
	case hooks.OpDelete:
		m.adjust(ctx, CountAll, -1)
		if ev.Before != nil && ev.Before.IsPublished {
			m.adjust(ctx, CountPublished, -1)
		}
	case hooks.OpUpdate:
		if ev.Before == nil || ev.After == nil {
			return
		}
		switch {
		case !ev.Before.IsPublished && ev.After.IsPublished:
			m.adjust(ctx, CountPublished, 1)
		case ev.Before.IsPublished && !ev.After.IsPublished:
			m.adjust(ctx, CountPublished, -1)
		}
	}
}

// Count returns the current value of a counter, 0 if it was never written.
func (m *Maintainer) Count(ctx context.Context, name string) (int64, error) {
	count, found, err := m.counts.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return count, nil
}

// adjust lazily creates the counter on first mutation: seed 1 for an
// increment, 0 for a decrement. Existing counters are clamped at 0 so drift
// never shows a negative count.
func (m *Maintainer) adjust(ctx context.Context, name string, delta int64) {
	current, found, err := m.counts.Get(ctx, name)
	if err != nil {
		log.Printf("counters: read %q: %v", name, err)
		return
	}

	next := delta
	if found {
		next = current + delta
	}
	if next < 0 {
		next = 0
	}

	if err := m.counts.Set(ctx, name, next); err != nil {
		log.Printf("counters: write %q: %v", name, err)
	}
}
