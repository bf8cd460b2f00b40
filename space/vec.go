package space

import "regexp"

// Vec is the cell container backing a space. Alongside the cells it keeps a
// byte search buffer (one byte per quanta) so pattern matching runs over a
// flat []byte instead of walking cell pointers. The buffer must be kept in
// sync by every modifier.
//
// The buffer stores only the low byte of each quanta, so quanta above
// U+00FF alias during literal and regex matching. Alphabets are expected
// to fit in Latin-1; see Linear.
type Vec struct {
	cells []*Cell
	buf   []byte
}

// NewVec builds a vector over the given cells.
func NewVec(cells []*Cell) *Vec {
	v := &Vec{
		cells: cells,
		buf:   make([]byte, len(cells)),
	}
	for i, c := range cells {
		v.buf[i] = byte(c.Quanta)
	}
	return v
}

// Len returns the number of cells.
func (v *Vec) Len() int {
	return len(v.cells)
}

// At returns the cell at index i.
func (v *Vec) At(i int) *Cell {
	return v.cells[i]
}

// Slice returns the cells within the normalized span. The returned slice
// aliases the vector; callers that keep it must copy.
func (v *Vec) Slice(s Span) []*Cell {
	return v.cells[s.Start:s.End]
}

// Cells returns the backing cell slice.
func (v *Vec) Cells() []*Cell {
	return v.cells
}

// Branch returns an independent vector seeing the same cell pointers.
// Mutating the branch does not disturb the original; the cells themselves
// stay shared until replaced.
func (v *Vec) Branch() *Vec {
	nv := &Vec{
		cells: make([]*Cell, len(v.cells)),
		buf:   make([]byte, len(v.buf)),
	}
	copy(nv.cells, v.cells)
	copy(nv.buf, v.buf)
	return nv
}

// Splice replaces the cells in [start, end) with repl, growing or shrinking
// the vector as needed.
func (v *Vec) Splice(start, end int, repl []*Cell) {
	cells := make([]*Cell, 0, len(v.cells)-(end-start)+len(repl))
	cells = append(cells, v.cells[:start]...)
	cells = append(cells, repl...)
	cells = append(cells, v.cells[end:]...)
	v.cells = cells

	buf := make([]byte, 0, len(cells))
	buf = append(buf, v.buf[:start]...)
	for _, c := range repl {
		buf = append(buf, byte(c.Quanta))
	}
	buf = append(buf, v.buf[end:]...)
	v.buf = buf
}

// Set replaces the cell at index i.
func (v *Vec) Set(i int, c *Cell) {
	v.cells[i] = c
	v.buf[i] = byte(c.Quanta)
}

// Append adds a cell to the end of the vector.
func (v *Vec) Append(c *Cell) {
	v.cells = append(v.cells, c)
	v.buf = append(v.buf, byte(c.Quanta))
}

// FindPattern returns the spans of every match of re over the search buffer,
// left to right.
func (v *Vec) FindPattern(re *regexp.Regexp) []Span {
	idx := re.FindAllIndex(v.buf, -1)
	spans := make([]Span, 0, len(idx))
	for _, pair := range idx {
		spans = append(spans, Span{Start: pair[0], End: pair[1]})
	}
	return spans
}

// Bytes exposes the search buffer. Callers must not mutate it.
func (v *Vec) Bytes() []byte {
	return v.buf
}
