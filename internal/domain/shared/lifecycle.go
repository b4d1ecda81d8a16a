package shared

import (
	"context"
	"errors"
	"slices"

	loopfsm "github.com/looplab/fsm"
)

// Transition defines a valid state change: an event moves an aggregate from
// Src to Dst.
type Transition[S ~string, E ~string] struct {
	Event E
	Src   S
	Dst   S
}

// Lifecycle validates state changes against a transition table using
// looplab/fsm.
type Lifecycle[S ~string, E ~string] struct {
	transitions []Transition[S, E]
	events      []loopfsm.EventDesc
}

// NewLifecycle builds a lifecycle from the given transition table.
func NewLifecycle[S ~string, E ~string](transitions []Transition[S, E]) *Lifecycle[S, E] {
	return &Lifecycle[S, E]{
		transitions: slices.Clone(transitions),
		events:      buildEvents(transitions),
	}
}

// buildEvents consolidates transitions sharing event and destination into a
// single EventDesc with multiple source states.
func buildEvents[S ~string, E ~string](transitions []Transition[S, E]) []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range transitions {
		k := key{event: string(t.Event), dst: string(t.Dst)}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// Apply returns the state reached by firing event from current, or a
// *TransitionError when the table does not allow it. A short-lived machine is
// created per call because looplab/fsm tracks the current state internally.
func (l *Lifecycle[S, E]) Apply(current S, event E) (S, error) {
	machine := loopfsm.NewFSM(string(current), l.events, nil)

	if err := machine.Event(context.Background(), string(event)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var unknownEvent loopfsm.UnknownEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) || errors.As(err, &noTransition) {
			return current, &TransitionError{
				Event:   string(event),
				Current: string(current),
			}
		}
		return current, err
	}

	return S(machine.Current()), nil
}

// Can reports whether event is allowed from current.
func (l *Lifecycle[S, E]) Can(current S, event E) bool {
	for _, t := range l.transitions {
		if t.Event == event && t.Src == current {
			return true
		}
	}
	return false
}

// Transitions returns a copy of the transition table.
func (l *Lifecycle[S, E]) Transitions() []Transition[S, E] {
	return slices.Clone(l.transitions)
}
