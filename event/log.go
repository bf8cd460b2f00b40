package event

import (
	"github.com/ruleflow-dev/ruleflow/rule"
	"github.com/ruleflow-dev/ruleflow/space"
)

// Log is the append-only event history of a flow. Index 0 is always the
// creation event, which submits the initial spaces unchanged so the first
// step has something to evolve from.
type Log struct {
	events []*Event
}

// NewLog seeds a log with the creation event for the given initial spaces
// and stamps every initial cell as created by it.
func NewLog(initial []*space.Linear) *Log {
	deltas := make([]rule.SpaceDelta, len(initial))
	for i, s := range initial {
		deltas[i] = rule.SpaceDelta{
			Input:   s,
			Outputs: []*space.Linear{s},
			Deltas:  []space.Delta{{}},
		}
		for _, c := range s.Cells() {
			c.CreatedAt = 0
		}
	}
	return &Log{
		events: []*Event{{
			Step:   0,
			Weight: 1,
			Deltas: []rule.RuleDelta{{Spaces: deltas}},
		}},
	}
}

// Len returns the number of events, the creation event included.
func (l *Log) Len() int {
	return len(l.events)
}

// At returns the event at index i.
func (l *Log) At(i int) *Event {
	return l.events[i]
}

// Events returns the backing event slice. Callers must not modify it.
func (l *Log) Events() []*Event {
	return l.events
}

// Current returns the latest event.
func (l *Log) Current() *Event {
	return l.events[len(l.events)-1]
}

// CurrentIndex returns the index of the latest event.
func (l *Log) CurrentIndex() int {
	return len(l.events) - 1
}

// Append records a new event holding the given rule deltas, stamps every
// created and destroyed cell with the event's index, and computes the
// event's causal distance to creation. The stamped index is the index of
// the appended event itself.
func (l *Log) Append(deltas []rule.RuleDelta) *Event {
	e := &Event{
		Step:   l.Current().Step + 1,
		Weight: 1,
		Deltas: deltas,
	}
	l.events = append(l.events, e)
	idx := len(l.events) - 1

	for _, rd := range deltas {
		for _, sd := range rd.Spaces {
			for _, cd := range sd.Deltas {
				for _, c := range cd.Created {
					c.CreatedAt = idx
				}
				for _, c := range cd.Destroyed {
					c.DestroyedAt = idx
				}
			}
		}
	}

	minPrev := -1
	for _, parent := range e.CausallyConnectedEvents() {
		d := l.events[parent].CausalDistance
		if minPrev == -1 || d < minPrev {
			minPrev = d
		}
	}
	e.CausalDistance = minPrev + 1
	return e
}
