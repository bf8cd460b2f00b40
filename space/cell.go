package space

// Wildcard is the quanta that matches any cell in a literal selector and
// marks a skipped position in an overwrite target.
const Wildcard = '_'

// Cell is the smallest unit of a universe: a quanta of matter plus the
// metadata that makes causality trackable. CreatedAt and DestroyedAt are
// indices into the owning flow's event log.
//
// The metadata is the only thing, other than the quanta itself, that makes
// two cells differentiable. Keep it that way so cells stay cheap to copy.
type Cell struct {
	Quanta      rune
	CreatedAt   int
	DestroyedAt int
}

// NewCell creates a cell holding the given quanta.
func NewCell(q rune) *Cell {
	return &Cell{Quanta: q}
}

// Clone returns an independent copy of the cell, metadata included.
func (c *Cell) Clone() *Cell {
	cp := *c
	return &cp
}

// Equal reports semantic equality: quanta only. Compare pointers for
// identity.
func (c *Cell) Equal(other *Cell) bool {
	return c.Quanta == other.Quanta
}

func (c *Cell) String() string {
	return string(c.Quanta)
}

// Cells converts a string into a slice of fresh cells, one per rune.
func Cells(s string) []*Cell {
	out := make([]*Cell, 0, len(s))
	for _, r := range s {
		out = append(out, NewCell(r))
	}
	return out
}

// CloneCells deep-copies a slice of cells. Rule targets are cloned per
// application so every inserted cell has its own causal metadata.
func CloneCells(cells []*Cell) []*Cell {
	out := make([]*Cell, len(cells))
	for i, c := range cells {
		out[i] = c.Clone()
	}
	return out
}

// Render concatenates the quanta of the given cells.
func Render(cells []*Cell) string {
	runes := make([]rune, len(cells))
	for i, c := range cells {
		runes[i] = c.Quanta
	}
	return string(runes)
}
