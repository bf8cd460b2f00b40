package rule_test

import (
	"testing"

	"github.com/ruleflow-dev/ruleflow/assert"
	"github.com/ruleflow-dev/ruleflow/num"
	"github.com/ruleflow-dev/ruleflow/rule"
	"github.com/ruleflow-dev/ruleflow/space"
)

func mustSub(t *testing.T, selector, replacement string) *rule.Base {
	t.Helper()
	r, err := rule.NewSubstitution(selector, replacement)
	assert.NilError(t, err)
	return r
}

func outputs(deltas []rule.SpaceDelta) []string {
	var out []string
	for _, sd := range deltas {
		for _, o := range sd.Outputs {
			if o != nil {
				out = append(out, o.String())
			}
		}
	}
	return out
}

func TestLiteralSelectorWildcard(t *testing.T) {
	sel, err := rule.LiteralSelector("A_B")
	assert.NilError(t, err)
	l := space.NewLinear("AXBAYB")
	assert.DeepEqual(t, sel.Spans(l), []space.Span{{Start: 0, End: 3}, {Start: 3, End: 6}})
}

func TestRangeSelectorClampsInf(t *testing.T) {
	sel := rule.RangeSelector(0, num.Inf)
	l := space.NewLinear("ABCD")
	assert.DeepEqual(t, sel.Spans(l), []space.Span{{Start: 0, End: 4}})
}

func TestSubstitutionFirstMatchOnly(t *testing.T) {
	r := mustSub(t, "AB", "BA")
	l := space.NewLinear("AABB")

	matches := r.Match([]*space.Linear{l})
	assert.Len(t, matches, 1)
	assert.DeepEqual(t, matches[0].Spans, []space.Span{{Start: 1, End: 3}})

	deltas, err := r.Apply(matches)
	assert.NilError(t, err)
	assert.DeepEqual(t, outputs(deltas), []string{"ABAB"})
	assert.Equal(t, l.String(), "AABB", "input space must stay untouched")
}

func TestParallelRun(t *testing.T) {
	r := mustSub(t, "AB", "BA")
	r.MatchRange = rule.Bounds{Min: 0, Max: num.Inf}
	r.ParallelLimit = num.Inf
	l := space.NewLinear("ABAB")

	deltas, err := r.Apply(r.Match([]*space.Linear{l}))
	assert.NilError(t, err)
	assert.DeepEqual(t, outputs(deltas), []string{"BABA"})
}

func TestMultiwayBranches(t *testing.T) {
	r := mustSub(t, "AB", "BA")
	r.MatchRange = rule.Bounds{Min: 0, Max: num.Inf}
	r.BranchLimit = num.Inf
	l := space.NewLinear("ABAB")

	deltas, err := r.Apply(r.Match([]*space.Linear{l}))
	assert.NilError(t, err)
	assert.DeepEqual(t, outputs(deltas), []string{"BAAB", "ABBA"})
}

func TestTargetsCycle(t *testing.T) {
	selA, err := rule.LiteralSelector("A")
	assert.NilError(t, err)
	r := rule.New(rule.OpSubstitute,
		[]rule.Selector{selA},
		[]rule.Target{rule.CellsTarget("X"), rule.CellsTarget("Y")},
	)
	r.MatchRange = rule.Bounds{Min: 0, Max: num.Inf}
	r.ParallelLimit = num.Inf
	l := space.NewLinear("AAA")

	deltas, err := r.Apply(r.Match([]*space.Linear{l}))
	assert.NilError(t, err)
	assert.DeepEqual(t, outputs(deltas), []string{"XYX"})
}

func TestOffsetShiftsSpans(t *testing.T) {
	r := mustSub(t, "AB", "CC")
	r.Offset = 1
	l := space.NewLinear("ABBB")

	matches := r.Match([]*space.Linear{l})
	assert.DeepEqual(t, matches[0].Spans, []space.Span{{Start: 1, End: 3}})
}

func TestNoDeltaSubmitWithholdsSpaces(t *testing.T) {
	r := mustSub(t, "AB", "BA")
	r.NoDeltaSubmit = true
	l := space.NewLinear("AB")

	deltas, err := r.Apply(r.Match([]*space.Linear{l}))
	assert.NilError(t, err)
	assert.Len(t, deltas, 1)
	assert.Len(t, deltas[0].Outputs, 1)
	assert.Nil(t, deltas[0].Outputs[0])
	assert.True(t, deltas[0].Effective(), "cell deltas still count as change")
}

func TestNoInitialBranchMutatesInput(t *testing.T) {
	r := mustSub(t, "AB", "BA")
	r.NoInitialBranch = true
	l := space.NewLinear("AB")

	_, err := r.Apply(r.Match([]*space.Linear{l}))
	assert.NilError(t, err)
	assert.Equal(t, l.String(), "BA")
}

func TestLifespanDisables(t *testing.T) {
	r := mustSub(t, "AB", "BA")
	r.Lifespan = 1
	l := space.NewLinear("AB")

	_, err := r.Apply(r.Match([]*space.Linear{l}))
	assert.NilError(t, err)
	assert.True(t, r.Meta().Disabled)
}

func TestConflictMarking(t *testing.T) {
	selAB, err := rule.LiteralSelector("AB")
	assert.NilError(t, err)
	selBA, err := rule.LiteralSelector("BA")
	assert.NilError(t, err)
	r := rule.New(rule.OpSubstitute,
		[]rule.Selector{selAB, selBA},
		[]rule.Target{rule.CellsTarget("CC")},
	)
	r.CMP = rule.CmpBoth
	l := space.NewLinear("ABA")

	matches := r.Match([]*space.Linear{l})
	assert.Len(t, matches, 1)
	assert.DeepEqual(t, matches[0].Spans, []space.Span{{Start: 0, End: 2}, {Start: 1, End: 3}})
	assert.True(t, matches[0].HasConflict(0))
	assert.True(t, matches[0].HasConflict(1))
}

func TestCrpSkipDropsConflicts(t *testing.T) {
	selAB, err := rule.LiteralSelector("AB")
	assert.NilError(t, err)
	selBA, err := rule.LiteralSelector("BA")
	assert.NilError(t, err)
	r := rule.New(rule.OpSubstitute,
		[]rule.Selector{selAB, selBA},
		[]rule.Target{rule.CellsTarget("CC")},
	)
	r.CMP = rule.CmpBoth
	r.CRP = rule.CrpSkip
	r.ParallelLimit = 2
	l := space.NewLinear("ABA")

	deltas, err := r.Apply(r.Match([]*space.Linear{l}))
	assert.NilError(t, err)
	assert.Len(t, deltas, 1)
	assert.False(t, deltas[0].Effective())
}

func TestCrpBranchResolvesConflicts(t *testing.T) {
	selAB, err := rule.LiteralSelector("AB")
	assert.NilError(t, err)
	selBA, err := rule.LiteralSelector("BA")
	assert.NilError(t, err)
	r := rule.New(rule.OpSubstitute,
		[]rule.Selector{selAB, selBA},
		[]rule.Target{rule.CellsTarget("C")},
	)
	r.CMP = rule.CmpBoth
	r.CRP = rule.CrpBranchNoLimit
	r.ParallelLimit = 2
	l := space.NewLinear("ABA")

	deltas, err := r.Apply(r.Match([]*space.Linear{l}))
	assert.NilError(t, err)
	assert.DeepEqual(t, outputs(deltas), []string{"CA", "AC"})
}

func TestSignalsFire(t *testing.T) {
	r := mustSub(t, "AB", "BA")
	var applied, executed int
	r.OnApplied.Connect(func([]rule.SpaceDelta) { applied++ })
	r.OnExecution.Connect(func(rule.Execution) { executed++ })
	l := space.NewLinear("AB")

	_, err := r.Apply(r.Match([]*space.Linear{l}))
	assert.NilError(t, err)
	assert.Equal(t, applied, 1)
	assert.Equal(t, executed, 1)
}

func TestShiftRule(t *testing.T) {
	r, err := rule.NewShift("AB", 2)
	assert.NilError(t, err)
	l := space.NewLinear("ABXY")

	deltas, err := r.Apply(r.Match([]*space.Linear{l}))
	assert.NilError(t, err)
	assert.DeepEqual(t, outputs(deltas), []string{"XYAB"})
}

func TestDeletionRule(t *testing.T) {
	r, err := rule.NewDeletion("B+")
	assert.NilError(t, err)
	l := space.NewLinear("ABBBA")

	deltas, err := r.Apply(r.Match([]*space.Linear{l}))
	assert.NilError(t, err)
	assert.DeepEqual(t, outputs(deltas), []string{"AA"})
}
