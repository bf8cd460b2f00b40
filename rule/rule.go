// Package rule implements rewrite rules over one-dimensional spaces: how
// they match, how they apply, and how a set of them is scheduled per step.
package rule

import (
	"github.com/ruleflow-dev/ruleflow/space"
)

// Meta carries the identification and scheduling flags a Set needs to decide
// whether a rule runs this step. Everything else a rule does is its own
// business.
type Meta struct {
	ID string

	Disabled    bool
	Group       string
	GroupBreak  bool
	AlwaysApply bool
}

// Rule is anything a Set can schedule. Match scans the given spaces and
// returns one Match per space that has any hits; Apply consumes those
// matches and returns the per-space deltas.
//
// Apply is handed every match rather than one at a time so a rule can decide
// for itself how to branch across spaces.
type Rule interface {
	Meta() *Meta
	Match(spaces []*space.Linear) []Match
	Apply(matches []Match) ([]SpaceDelta, error)
}

// Match is one space's worth of hits for a rule. Spans, bound and Conflicts
// line up by index: bound[i] is the chain member whose selector produced
// Spans[i].
type Match struct {
	Space     *space.Linear
	Spans     []space.Span
	Conflicts map[int]struct{}

	bound []*Base
}

// HasConflict reports whether the i-th span was marked as conflicting.
func (m Match) HasConflict(i int) bool {
	_, ok := m.Conflicts[i]
	return ok
}

// SpaceDelta is a single application of a rule to a single input space. The
// outputs can hold many child branches; a nil entry means the branch was
// produced but withheld from submission. Deltas aligns with Outputs.
type SpaceDelta struct {
	Input   *space.Linear
	Outputs []*space.Linear
	Deltas  []space.Delta
}

// Effective reports whether the application produced anything at all.
func (d SpaceDelta) Effective() bool {
	for _, o := range d.Outputs {
		if o != nil {
			return true
		}
	}
	for _, cd := range d.Deltas {
		if cd.Effective() {
			return true
		}
	}
	return false
}

// RuleDelta groups every space delta produced by one rule during one step.
type RuleDelta struct {
	Spaces []SpaceDelta
	Rule   Rule
}

// Effective reports whether any of the rule's applications changed anything.
func (d RuleDelta) Effective() bool {
	for _, sd := range d.Spaces {
		if sd.Effective() {
			return true
		}
	}
	return false
}
