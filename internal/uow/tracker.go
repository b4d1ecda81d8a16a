package uow

import (
	"context"
	"slices"
)

// State is the pending change recorded for a tracked entity.
type State int

const (
	Added State = iota + 1
	Modified
	Deleted
)

func (s State) String() string {
	switch s {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Persister writes one entity in the state the unit of work settled on.
// Repositories supply it when they register a change.
type Persister func(ctx context.Context, state State) error

// Entry is a tracked entity and its pending change.
type Entry struct {
	Entity  any
	State   State
	persist Persister
}

// Tracker records pending changes in registration order. Entities are keyed
// by pointer identity.
type Tracker struct {
	entries []*Entry
}

// Track records state for entity, merging with an earlier registration of
// the same entity.
func (t *Tracker) Track(entity any, state State, persist Persister) {
	i := slices.IndexFunc(t.entries, func(e *Entry) bool { return e.Entity == entity })
	if i < 0 {
		t.entries = append(t.entries, &Entry{Entity: entity, State: state, persist: persist})
		return
	}

	existing := t.entries[i]
	existing.persist = persist
	switch {
	case existing.State == Added && state == Deleted:
		// Never written, so there is nothing to delete.
		t.entries = slices.Delete(t.entries, i, i+1)
	case existing.State == Modified && state == Deleted:
		existing.State = Deleted
	}
}

// Entries returns a copy of the tracked entries in registration order.
func (t *Tracker) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = *e
	}
	return out
}

func (t *Tracker) Len() int { return len(t.entries) }

func (t *Tracker) Reset() { t.entries = nil }
