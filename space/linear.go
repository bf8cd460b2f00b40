package space

import (
	"regexp"

	"github.com/rotisserie/eris"
)

// ErrOverlappingSpans is returned by Swap when the two selections intersect.
var ErrOverlappingSpans = eris.New("swap selections cannot overlap")

// Linear is a one-dimensional space: a string of cells. It is the state of a
// universe at one event. Modifiers mutate the space in place and return the
// Delta of destroyed and created cells so the flow can stamp causality onto
// them.
//
// Modifiers that destroy cells snapshot them first; see Delta.
//
// Quanta must come from a single-byte alphabet (Latin-1). Pattern matching
// runs over a one-byte-per-cell search buffer, so quanta above U+00FF are
// indistinguishable from others sharing the same low byte.
type Linear struct {
	vec *Vec
}

// NewLinear builds a space from a string, one cell per rune.
func NewLinear(s string) *Linear {
	return &Linear{vec: NewVec(Cells(s))}
}

// NewLinearFromCells builds a space over the given cells.
func NewLinearFromCells(cells []*Cell) *Linear {
	return &Linear{vec: NewVec(cells)}
}

// Len returns the number of cells in the space.
func (l *Linear) Len() int {
	return l.vec.Len()
}

// IsEmpty reports whether the space holds no cells.
func (l *Linear) IsEmpty() bool {
	return l.vec.Len() == 0
}

// At returns the cell at index i.
func (l *Linear) At(i int) *Cell {
	return l.vec.At(i)
}

// Cells returns every cell in the space, in order.
func (l *Linear) Cells() []*Cell {
	return l.vec.Cells()
}

// String renders the space as the concatenation of its quanta.
func (l *Linear) String() string {
	return Render(l.vec.Cells())
}

// Equal reports semantic equality: same length, same quanta.
func (l *Linear) Equal(other *Linear) bool {
	if l.Len() != other.Len() {
		return false
	}
	for i, c := range l.vec.Cells() {
		if c.Quanta != other.vec.At(i).Quanta {
			return false
		}
	}
	return true
}

// Branch returns an independent copy of the space. The cells themselves stay
// shared with the original until a modifier replaces them; this is what makes
// multiway branching affordable.
func (l *Linear) Branch() *Linear {
	return &Linear{vec: l.vec.Branch()}
}

// Find returns the spans of every occurrence of the subspace, searching left
// to right. A Wildcard quanta in the subspace matches any cell.
func (l *Linear) Find(subspace []*Cell) []Span {
	m := len(subspace)
	n := l.vec.Len()
	var spans []Span
	for i := 0; i+m <= n; i++ {
		matched := true
		for j := 0; j < m; j++ {
			if subspace[j].Quanta == Wildcard {
				continue
			}
			if l.vec.At(i+j).Quanta != subspace[j].Quanta {
				matched = false
				break
			}
		}
		if matched {
			spans = append(spans, Span{Start: i, End: i + m})
		}
	}
	return spans
}

// FindPattern returns the spans of every match of re over the space's search
// buffer.
func (l *Linear) FindPattern(re *regexp.Regexp) []Span {
	return l.vec.FindPattern(re)
}

// Substitute replaces the cells in sel with repl.
func (l *Linear) Substitute(sel Span, repl []*Cell) Delta {
	sel = sel.Norm(l.Len())
	destroyed := snapshot(l.vec.Slice(sel))
	l.vec.Splice(sel.Start, sel.End, repl)
	return Delta{Destroyed: destroyed, Created: repl}
}

// Insert places the cells before position pos. A negative pos counts from
// the end, with -1 meaning append. Positions beyond either end clamp to it.
func (l *Linear) Insert(pos int, cells []*Cell) Delta {
	if pos < 0 {
		pos = l.Len() + pos + 1
	}
	if pos < 0 {
		pos = 0
	}
	if pos > l.Len() {
		pos = l.Len()
	}
	l.vec.Splice(pos, pos, cells)
	return Delta{Created: cells}
}

// Overwrite writes the cells over the space starting at pos. Wildcard cells
// leave the underlying position untouched. Positions past the end of the
// space are appended.
func (l *Linear) Overwrite(pos int, cells []*Cell) Delta {
	if pos < 0 {
		pos = l.Len() + pos
	}
	if pos < 0 {
		pos = 0
	}
	var destroyed, created []*Cell
	for i, c := range cells {
		if c.Quanta == Wildcard {
			continue
		}
		idx := pos + i
		if idx < l.vec.Len() {
			destroyed = append(destroyed, l.vec.At(idx).Clone())
			l.vec.Set(idx, c)
		} else {
			l.vec.Append(c)
		}
		created = append(created, c)
	}
	return Delta{Destroyed: destroyed, Created: created}
}

// Delete removes the cells in sel.
func (l *Linear) Delete(sel Span) Delta {
	sel = sel.Norm(l.Len())
	destroyed := snapshot(l.vec.Slice(sel))
	l.vec.Splice(sel.Start, sel.End, nil)
	return Delta{Destroyed: destroyed}
}

// Shift moves the selected region by k positions: negative k shifts it left,
// positive k shifts it right, with the displaced neighbours wrapping around
// the selection. Only neighbours that exist move, so a shift at the edge of
// the space moves fewer cells or none. Cells are moved, not destroyed, so
// the delta is empty.
func (l *Linear) Shift(sel Span, k int) Delta {
	sel = sel.Norm(l.Len())
	switch {
	case k == 0:
	case k < 0:
		start := sel.Start + k
		if start < 0 {
			start = 0
		}
		from := Span{Start: start, End: sel.Start}
		before := make([]*Cell, from.Len())
		copy(before, l.vec.Slice(from))
		l.vec.Splice(sel.End, sel.End, before)
		l.vec.Splice(from.Start, from.End, nil)
	default:
		end := sel.End + k
		if end > l.Len() {
			end = l.Len()
		}
		from := Span{Start: sel.End, End: end}
		after := make([]*Cell, from.Len())
		copy(after, l.vec.Slice(from))
		l.vec.Splice(from.Start, from.End, nil)
		l.vec.Splice(sel.Start, sel.Start, after)
	}
	return Delta{}
}

// Swap exchanges the cells of two non-overlapping selections.
func (l *Linear) Swap(sel1, sel2 Span) (Delta, error) {
	sel1 = sel1.Norm(l.Len())
	sel2 = sel2.Norm(l.Len())
	if sel1.Overlaps(sel2) {
		return Delta{}, ErrOverlappingSpans
	}
	if sel2.Start < sel1.Start {
		sel1, sel2 = sel2, sel1
	}
	first := make([]*Cell, sel1.Len())
	copy(first, l.vec.Slice(sel1))
	second := make([]*Cell, sel2.Len())
	copy(second, l.vec.Slice(sel2))
	// Replace the later selection first so the earlier indices stay valid.
	l.vec.Splice(sel2.Start, sel2.End, first)
	l.vec.Splice(sel1.Start, sel1.End, second)
	return Delta{}, nil
}

// Reverse flips the order of the cells in sel.
func (l *Linear) Reverse(sel Span) Delta {
	sel = sel.Norm(l.Len())
	cells := l.vec.Slice(sel)
	reversed := make([]*Cell, len(cells))
	for i, c := range cells {
		reversed[len(cells)-1-i] = c
	}
	l.vec.Splice(sel.Start, sel.End, reversed)
	return Delta{}
}
