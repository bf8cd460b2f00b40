package rule

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/ruleflow-dev/ruleflow/num"
	"github.com/ruleflow-dev/ruleflow/signal"
	"github.com/ruleflow-dev/ruleflow/space"
)

// Op is the space modifier a rule performs at each matched span.
type Op int

const (
	OpSubstitute Op = iota
	OpInsert
	OpOverwrite
	OpDelete
	OpShift
	OpReverse
)

func (o Op) String() string {
	switch o {
	case OpSubstitute:
		return "substitute"
	case OpInsert:
		return "insert"
	case OpOverwrite:
		return "overwrite"
	case OpDelete:
		return "delete"
	case OpShift:
		return "shift"
	case OpReverse:
		return "reverse"
	}
	return "unknown"
}

// Cmp is the conflict marking protocol: when a new span intersects an
// already-collected one, which of the pair gets marked.
type Cmp int

const (
	CmpIgnore Cmp = iota
	CmpBoth
	CmpOG
	CmpThis
)

// Crp is the conflict resolution protocol: what Apply does when it reaches a
// span that was marked as conflicting.
type Crp int

const (
	CrpIgnore Crp = iota
	CrpBranch
	CrpBranchNoLimit
	CrpSkip
	CrpBreak
)

// Origin picks the space a fresh branch is copied from.
type Origin int

const (
	OriginPrev Origin = iota
	OriginCurrent
)

// Bounds is a half-open [Min, Max) index window over spaces or matches.
type Bounds struct {
	Min int
	Max int
}

func (b Bounds) contains(i int) bool {
	return i >= b.Min && i < b.Max
}

// Execution is the payload of the per-match signals: which match set the
// rule was working through and the index it had reached.
type Execution struct {
	Match Match
	Index int
}

// Base is the concrete rule behind every flow-language operator. The Op
// picks the modifier, the flags shape the match and apply passes, and rules
// merged into the chain run as though they were this one.
type Base struct {
	meta      Meta
	op        Op
	Selectors []Selector
	Targets   []Target

	// Rules chained onto this one are matched and applied collectively,
	// span by span. A rule that was merged into another chain no longer
	// runs on its own.
	chain   []*Base
	inChain bool

	// match flags
	SpaceRange Bounds
	MatchRange Bounds
	Offset     int
	CMP        Cmp

	// apply flags
	NoCausalityTracking bool
	NoInitialBranch     bool
	NoDeltaSubmit       bool
	ParallelLimit       int
	BranchLimit         int
	BranchOrigin        Origin
	CRP                 Crp

	// Lifespan counts down once per Apply that produced output; at zero
	// the rule disables itself.
	Lifespan int

	OnApplied   *signal.Hub[[]SpaceDelta]
	OnExecution *signal.Hub[Execution]
	OnBranch    *signal.Hub[Execution]
	OnConflict  *signal.Hub[Execution]
}

// New builds a rule with the default flags: runs on the first space only,
// takes the first match only, single parallel execution, no extra branches,
// branches copied from the previous event's space, infinite lifespan.
func New(op Op, selectors []Selector, targets []Target) *Base {
	b := &Base{
		meta:          Meta{Group: "0", GroupBreak: true},
		op:            op,
		Selectors:     selectors,
		Targets:       targets,
		SpaceRange:    Bounds{Min: 0, Max: 1},
		MatchRange:    Bounds{Min: 0, Max: 1},
		ParallelLimit: 1,
		BranchLimit:   0,
		Lifespan:      num.Inf,
		OnApplied:     signal.NewHub[[]SpaceDelta](),
		OnExecution:   signal.NewHub[Execution](),
		OnBranch:      signal.NewHub[Execution](),
		OnConflict:    signal.NewHub[Execution](),
	}
	b.chain = []*Base{b}
	return b
}

// NewSubstitution replaces every selected span with the replacement cells.
func NewSubstitution(selector, replacement string) (*Base, error) {
	sel, err := LiteralSelector(selector)
	if err != nil {
		return nil, err
	}
	return New(OpSubstitute, []Selector{sel}, []Target{CellsTarget(replacement)}), nil
}

// NewInsertion inserts the cells before the start of every selected span.
func NewInsertion(selector, insertion string) (*Base, error) {
	sel, err := LiteralSelector(selector)
	if err != nil {
		return nil, err
	}
	return New(OpInsert, []Selector{sel}, []Target{CellsTarget(insertion)}), nil
}

// NewOverwrite writes the cells over the space starting at every selected
// span, skipping Wildcard positions.
func NewOverwrite(selector, overwrite string) (*Base, error) {
	sel, err := LiteralSelector(selector)
	if err != nil {
		return nil, err
	}
	return New(OpOverwrite, []Selector{sel}, []Target{CellsTarget(overwrite)}), nil
}

// NewDeletion removes every selected span.
func NewDeletion(selector string) (*Base, error) {
	sel, err := LiteralSelector(selector)
	if err != nil {
		return nil, err
	}
	return New(OpDelete, []Selector{sel}, nil), nil
}

// NewShift moves every selected span by k positions.
func NewShift(selector string, k int) (*Base, error) {
	sel, err := LiteralSelector(selector)
	if err != nil {
		return nil, err
	}
	return New(OpShift, []Selector{sel}, []Target{AmountTarget(k)}), nil
}

// NewReverse flips every selected span in place.
func NewReverse(selector string) (*Base, error) {
	sel, err := LiteralSelector(selector)
	if err != nil {
		return nil, err
	}
	return New(OpReverse, []Selector{sel}, nil), nil
}

// Meta exposes the scheduling flags to the Set.
func (b *Base) Meta() *Meta {
	return &b.meta
}

// Op returns the rule's modifier operation.
func (b *Base) Op() Op {
	return b.op
}

// Merge chains the other rules onto this one. They stop running on their
// own and instead contribute their matches to this rule's runs.
func (b *Base) Merge(others ...*Base) {
	for _, o := range others {
		b.chain = append(b.chain, o)
		o.inChain = true
	}
}

// InChain reports whether the rule was merged into another rule's chain.
func (b *Base) InChain() bool {
	return b.inChain
}

// Chain returns the rules that run collectively with this one, itself first.
func (b *Base) Chain() []*Base {
	return b.chain
}

func (b *Base) String() string {
	return fmt.Sprintf("%s(%v, %v)", b.op, b.Selectors, b.Targets)
}

// markConflicts records intersections between the new span and every span
// collected so far, honoring the conflict marking protocol.
func (b *Base) markConflicts(collected []space.Span, sp space.Span, conflicts map[int]struct{}) {
	thisIdx := len(collected)
	for ogIdx, other := range collected {
		if !sp.Overlaps(other) {
			continue
		}
		switch b.CMP {
		case CmpThis:
			conflicts[thisIdx] = struct{}{}
		case CmpOG:
			conflicts[ogIdx] = struct{}{}
		case CmpBoth:
			conflicts[thisIdx] = struct{}{}
			conflicts[ogIdx] = struct{}{}
		}
	}
}

// Match scans the spaces inside SpaceRange and collects, per space, the
// spans found by every selector of every chain member, windowed by each
// member's MatchRange. The spans and the chain members that produced them
// stay aligned so Apply can run each span under its own rule's flags.
func (b *Base) Match(spaces []*space.Linear) []Match {
	if b.inChain {
		return nil
	}
	var out []Match
	for i, sp := range spaces {
		if !b.SpaceRange.contains(i) {
			if i >= b.SpaceRange.Max {
				break
			}
			continue
		}
		var spans []space.Span
		var bound []*Base
		conflicts := make(map[int]struct{})
		for _, r := range b.chain {
			if r.meta.Disabled {
				continue
			}
			for _, sel := range r.Selectors {
				for j, span := range sel.Spans(sp) {
					if r.Offset != 0 {
						span = span.Offset(r.Offset)
					}
					if !r.MatchRange.contains(j) {
						if j >= r.MatchRange.Max {
							break
						}
						continue
					}
					if r.CMP != CmpIgnore {
						r.markConflicts(spans, span, conflicts)
					}
					spans = append(spans, span)
					bound = append(bound, r)
				}
			}
		}
		if len(spans) > 0 {
			out = append(out, Match{Space: sp, Spans: spans, Conflicts: conflicts, bound: bound})
		}
	}
	return out
}

func (b *Base) modify(l *space.Linear, sel space.Span, target Target) (space.Delta, error) {
	switch b.op {
	case OpSubstitute:
		return l.Substitute(sel, target.Cells()), nil
	case OpInsert:
		return l.Insert(sel.Start, target.Cells()), nil
	case OpOverwrite:
		return l.Overwrite(sel.Start, target.Cells()), nil
	case OpDelete:
		return l.Delete(sel), nil
	case OpShift:
		return l.Shift(sel, target.Amount()), nil
	case OpReverse:
		return l.Reverse(sel), nil
	}
	return space.Delta{}, eris.Errorf("rule: unknown op %d", int(b.op))
}

// Apply runs every match set. Each run walks the spans in order, applying
// the chain member bound to the span, submitting the working space whenever
// that member's parallel limit fills or the spans run out, and then
// branching a fresh working space while the member's branch limit allows.
// Conflicting spans are resolved per the member's Crp before any of that.
func (b *Base) Apply(matches []Match) ([]SpaceDelta, error) {
	out := make([]SpaceDelta, 0, len(matches))
	for _, m := range matches {
		var submitted []*space.Linear
		var submittedDeltas []space.Delta

		prev := m.Space
		current := prev
		if !b.NoInitialBranch {
			current = prev.Branch()
		}
		var pending []space.Delta
		pl, bl := 0, 0
		last := len(m.Spans) - 1

	run:
		for idx, sel := range m.Spans {
			r := m.bound[idx]
			var target Target
			if len(r.Targets) > 0 {
				target = r.Targets[idx%len(r.Targets)]
			}

			if r.ParallelLimit > 1 && r.CRP != CrpIgnore && m.HasConflict(idx) {
				r.OnConflict.Emit(Execution{Match: m, Index: idx})
				switch r.CRP {
				case CrpBranch, CrpBranchNoLimit:
					if r.CRP == CrpBranch && bl > r.BranchLimit {
						continue
					}
					branch := prev.Branch()
					if r.BranchOrigin == OriginCurrent {
						branch = current.Branch()
					}
					d, err := r.modify(branch, sel, target)
					if err != nil {
						return nil, err
					}
					if r.NoDeltaSubmit {
						submitted = append(submitted, nil)
					} else {
						submitted = append(submitted, branch)
					}
					if r.NoCausalityTracking {
						submittedDeltas = append(submittedDeltas, space.Delta{})
					} else {
						submittedDeltas = append(submittedDeltas, d)
					}
				case CrpSkip:
				case CrpBreak:
					break run
				}
				continue
			}

			d, err := r.modify(current, sel, target)
			if err != nil {
				return nil, err
			}
			pending = append(pending, d)
			pl++

			if pl == r.ParallelLimit || idx == last {
				if r.NoDeltaSubmit {
					submitted = append(submitted, nil)
				} else {
					submitted = append(submitted, current)
				}
				if r.NoCausalityTracking {
					submittedDeltas = append(submittedDeltas, space.Delta{})
				} else {
					submittedDeltas = append(submittedDeltas, space.Merge(pending))
				}
				pl = 0
				pending = nil
				r.OnExecution.Emit(Execution{Match: m, Index: idx})

				if bl != r.BranchLimit {
					if r.BranchOrigin == OriginPrev {
						current = prev.Branch()
					} else {
						current = current.Branch()
					}
					bl++
					r.OnBranch.Emit(Execution{Match: m, Index: idx})
				} else {
					break run
				}
			}
		}

		out = append(out, SpaceDelta{
			Input:   prev,
			Outputs: submitted,
			Deltas:  submittedDeltas,
		})
	}

	if b.Lifespan != num.Inf {
		b.Lifespan--
		if b.Lifespan == 0 && len(out) > 0 {
			b.meta.Disabled = true
		}
	}
	b.OnApplied.Emit(out)
	return out, nil
}
