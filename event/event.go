// Package event records the history of a flow: one event per step, each
// holding the rule deltas that produced it. Cells reference events by index,
// which is what makes the causal structure of an evolution recoverable.
package event

import (
	"strings"

	"github.com/ruleflow-dev/ruleflow/rule"
	"github.com/ruleflow-dev/ruleflow/space"
)

// Event is one step of an evolution. Step is the time coordinate; Deltas
// holds everything that changed, organized by the rule it changed under.
type Event struct {
	Step   int
	Deltas []rule.RuleDelta

	// Inert marks an event whose step produced no changes; the flow has
	// reached a fixed point.
	Inert bool

	// Weight is a time multiplier for weighted causality tracking.
	Weight float64

	// CausalDistance is the minimum number of causal hops from this event
	// back to the creation event.
	CausalDistance int
}

// AffectedDeltas returns every non-empty cell delta of the event.
func (e *Event) AffectedDeltas() []space.Delta {
	var out []space.Delta
	for _, rd := range e.Deltas {
		for _, sd := range rd.Spaces {
			for _, cd := range sd.Deltas {
				if cd.Effective() {
					out = append(out, cd)
				}
			}
		}
	}
	return out
}

// CausallyConnectedEvents returns the indices of the events whose created
// cells this event destroyed. Duplicates are kept; callers that want a set
// collapse it themselves.
func (e *Event) CausallyConnectedEvents() []int {
	var out []int
	for _, cd := range e.AffectedDeltas() {
		for _, c := range cd.Destroyed {
			out = append(out, c.CreatedAt)
		}
	}
	return out
}

// Spaces returns every space the event submitted, in delta order.
func (e *Event) Spaces() []*space.Linear {
	var out []*space.Linear
	for _, rd := range e.Deltas {
		for _, sd := range rd.Spaces {
			for _, o := range sd.Outputs {
				if o != nil {
					out = append(out, o)
				}
			}
		}
	}
	return out
}

func (e *Event) String() string {
	spaces := e.Spaces()
	parts := make([]string, len(spaces))
	for i, s := range spaces {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
