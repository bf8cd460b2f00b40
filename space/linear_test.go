package space_test

import (
	"regexp"
	"testing"

	"github.com/ruleflow-dev/ruleflow/assert"
	"github.com/ruleflow-dev/ruleflow/space"
)

func spans(pairs ...int) []space.Span {
	out := make([]space.Span, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, space.Span{Start: pairs[i], End: pairs[i+1]})
	}
	return out
}

func TestFindLiteral(t *testing.T) {
	l := space.NewLinear("ABABAB")
	assert.DeepEqual(t, l.Find(space.Cells("AB")), spans(0, 2, 2, 4, 4, 6))
	assert.DeepEqual(t, l.Find(space.Cells("BA")), spans(1, 3, 3, 5))
	assert.Len(t, l.Find(space.Cells("C")), 0)
}

func TestFindWildcard(t *testing.T) {
	l := space.NewLinear("AXB AYB")
	assert.DeepEqual(t, l.Find(space.Cells("A_B")), spans(0, 3, 4, 7))
}

func TestFindPattern(t *testing.T) {
	l := space.NewLinear("AABBBA")
	re := regexp.MustCompile("B+")
	assert.DeepEqual(t, l.FindPattern(re), spans(2, 5))
}

func TestSubstitute(t *testing.T) {
	l := space.NewLinear("ABAB")
	d := l.Substitute(space.Span{Start: 0, End: 2}, space.Cells("BA"))
	assert.Equal(t, l.String(), "BAAB")
	assert.Equal(t, space.Render(d.Destroyed), "AB")
	assert.Equal(t, space.Render(d.Created), "BA")
}

func TestSubstituteGrows(t *testing.T) {
	l := space.NewLinear("AB")
	l.Substitute(space.Span{Start: 1, End: 2}, space.Cells("BBB"))
	assert.Equal(t, l.String(), "ABBB")
}

func TestInsert(t *testing.T) {
	l := space.NewLinear("AC")
	d := l.Insert(1, space.Cells("B"))
	assert.Equal(t, l.String(), "ABC")
	assert.Len(t, d.Destroyed, 0)
	assert.Equal(t, space.Render(d.Created), "B")
}

func TestInsertNegativeAppends(t *testing.T) {
	l := space.NewLinear("AB")
	l.Insert(-1, space.Cells("C"))
	assert.Equal(t, l.String(), "ABC")

	l = space.NewLinear("AB")
	l.Insert(-2, space.Cells("C"))
	assert.Equal(t, l.String(), "ACB")
}

func TestOverwrite(t *testing.T) {
	l := space.NewLinear("AAAA")
	d := l.Overwrite(1, space.Cells("BB"))
	assert.Equal(t, l.String(), "ABBA")
	assert.Equal(t, space.Render(d.Destroyed), "AA")
	assert.Equal(t, space.Render(d.Created), "BB")
}

func TestOverwriteSkipsWildcard(t *testing.T) {
	l := space.NewLinear("AAAA")
	d := l.Overwrite(0, space.Cells("B_B"))
	assert.Equal(t, l.String(), "BABA")
	assert.Equal(t, space.Render(d.Destroyed), "AA")
}

func TestOverwriteAppendsPastEnd(t *testing.T) {
	l := space.NewLinear("AA")
	d := l.Overwrite(1, space.Cells("BBB"))
	assert.Equal(t, l.String(), "ABBB")
	assert.Equal(t, space.Render(d.Destroyed), "A")
	assert.Equal(t, space.Render(d.Created), "BBB")
}

func TestDelete(t *testing.T) {
	l := space.NewLinear("ABCD")
	d := l.Delete(space.Span{Start: 1, End: 3})
	assert.Equal(t, l.String(), "AD")
	assert.Equal(t, space.Render(d.Destroyed), "BC")
	assert.Len(t, d.Created, 0)
}

func TestShiftLeft(t *testing.T) {
	l := space.NewLinear("XYAB")
	d := l.Shift(space.Span{Start: 2, End: 4}, -2)
	assert.Equal(t, l.String(), "ABXY")
	assert.False(t, d.Effective())
}

func TestShiftRight(t *testing.T) {
	l := space.NewLinear("ABXY")
	l.Shift(space.Span{Start: 0, End: 2}, 2)
	assert.Equal(t, l.String(), "XYAB")
}

func TestSwap(t *testing.T) {
	l := space.NewLinear("ABCD")
	_, err := l.Swap(space.Span{Start: 0, End: 1}, space.Span{Start: 3, End: 4})
	assert.NilError(t, err)
	assert.Equal(t, l.String(), "DBCA")
}

func TestSwapUnevenLengths(t *testing.T) {
	l := space.NewLinear("AABCC")
	_, err := l.Swap(space.Span{Start: 3, End: 5}, space.Span{Start: 0, End: 2})
	assert.NilError(t, err)
	assert.Equal(t, l.String(), "CCBAA")
}

func TestSwapOverlapFails(t *testing.T) {
	l := space.NewLinear("ABCD")
	_, err := l.Swap(space.Span{Start: 0, End: 2}, space.Span{Start: 1, End: 3})
	assert.ErrorIs(t, err, space.ErrOverlappingSpans)
	assert.Equal(t, l.String(), "ABCD")
}

func TestReverse(t *testing.T) {
	l := space.NewLinear("ABCD")
	l.Reverse(space.Span{Start: 1, End: 4})
	assert.Equal(t, l.String(), "ADCB")
}

func TestBranchIsIndependent(t *testing.T) {
	l := space.NewLinear("ABAB")
	b := l.Branch()
	b.Substitute(space.Span{Start: 0, End: 2}, space.Cells("CC"))
	assert.Equal(t, l.String(), "ABAB")
	assert.Equal(t, b.String(), "CCAB")
}

func TestBranchSharesCells(t *testing.T) {
	l := space.NewLinear("AB")
	b := l.Branch()
	assert.Same(t, l.At(0), b.At(0))
}

func TestNegativeSpanBounds(t *testing.T) {
	l := space.NewLinear("ABCD")
	d := l.Delete(space.Span{Start: -2, End: -1})
	assert.Equal(t, l.String(), "ABD")
	assert.Equal(t, space.Render(d.Destroyed), "C")
}

func TestMergeDeltas(t *testing.T) {
	d1 := space.Delta{Created: space.Cells("A")}
	d2 := space.Delta{Destroyed: space.Cells("B"), Created: space.Cells("C")}
	m := space.Merge([]space.Delta{d1, d2})
	assert.Equal(t, space.Render(m.Created), "AC")
	assert.Equal(t, space.Render(m.Destroyed), "B")
}

func TestShiftClampsAtEdges(t *testing.T) {
	// no neighbours to the left, nothing moves
	l := space.NewLinear("ABCD")
	l.Shift(space.Span{Start: 0, End: 2}, -1)
	assert.Equal(t, l.String(), "ABCD")

	// only one neighbour exists to the right of the selection
	l = space.NewLinear("ABCD")
	l.Shift(space.Span{Start: 1, End: 3}, 2)
	assert.Equal(t, l.String(), "ADBC")

	// shift reaching past the end with nothing after the selection
	l = space.NewLinear("ABCD")
	l.Shift(space.Span{Start: 2, End: 4}, 3)
	assert.Equal(t, l.String(), "ABCD")

	// partial left clamp: two requested, one available
	l = space.NewLinear("ABCD")
	l.Shift(space.Span{Start: 1, End: 3}, -2)
	assert.Equal(t, l.String(), "BCAD")
}

func TestSpansClampPastTheEnds(t *testing.T) {
	l := space.NewLinear("AB")
	d := l.Substitute(space.Span{Start: 5, End: 10}, space.Cells("X"))
	assert.Equal(t, l.String(), "ABX")
	assert.Len(t, d.Destroyed, 0)

	l = space.NewLinear("ABCD")
	d = l.Delete(space.Span{Start: 1, End: 99})
	assert.Equal(t, l.String(), "A")
	assert.Equal(t, space.Render(d.Destroyed), "BCD")

	l = space.NewLinear("ABCD")
	l.Reverse(space.Span{Start: -99, End: 2})
	assert.Equal(t, l.String(), "BACD")
}

func TestInsertClampsPosition(t *testing.T) {
	l := space.NewLinear("AB")
	l.Insert(10, space.Cells("C"))
	assert.Equal(t, l.String(), "ABC")

	l = space.NewLinear("AB")
	l.Insert(-99, space.Cells("C"))
	assert.Equal(t, l.String(), "CAB")
}
