package automata

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Grid is a bounded two-dimensional Game of Life board. Cells outside the
// bounds count as dead.
type Grid struct {
	width  int
	height int
	cells  []bool
}

// NewGrid returns an empty width x height board.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]bool, width*height),
	}, nil
}

// ParseGrid reads a board from its text form: one row per line, '#' for a
// live cell, anything else dead. Rows are padded to the longest line.
func ParseGrid(s string) (*Grid, error) {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	width := 0
	for _, line := range lines {
		if len(line) > width {
			width = len(line)
		}
	}
	g, err := NewGrid(width, len(lines))
	if err != nil {
		return nil, err
	}
	for y, line := range lines {
		for x, c := range line {
			if c == '#' {
				g.Set(x, y, true)
			}
		}
	}
	return g, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Alive reports the state of the cell at (x, y). Out-of-bounds cells are
// dead.
func (g *Grid) Alive(x, y int) bool {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return false
	}
	return g.cells[y*g.width+x]
}

// Set writes the cell at (x, y); out-of-bounds writes are dropped.
func (g *Grid) Set(x, y int, alive bool) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return
	}
	g.cells[y*g.width+x] = alive
}

// Place stamps a pattern in ParseGrid's text form with its top-left corner
// at (x, y).
func (g *Grid) Place(x, y int, pattern string) {
	for dy, line := range strings.Split(strings.Trim(pattern, "\n"), "\n") {
		for dx, c := range line {
			if c == '#' {
				g.Set(x+dx, y+dy, true)
			}
		}
	}
}

// Population counts the live cells.
func (g *Grid) Population() int {
	n := 0
	for _, alive := range g.cells {
		if alive {
			n++
		}
	}
	return n
}

func (g *Grid) neighbours(x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.Alive(x+dx, y+dy) {
				n++
			}
		}
	}
	return n
}

// Step advances the board one generation: a dead cell with exactly three
// live Moore neighbours is born, a live cell with two or three survives.
func (g *Grid) Step() {
	next := make([]bool, len(g.cells))
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			n := g.neighbours(x, y)
			alive := g.Alive(x, y)
			next[y*g.width+x] = n == 3 || (alive && n == 2)
		}
	}
	g.cells = next
}

// StepN advances the board n generations.
func (g *Grid) StepN(n int) {
	for i := 0; i < n; i++ {
		g.Step()
	}
}

// String renders the board in ParseGrid's text form.
func (g *Grid) String() string {
	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.Alive(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Well-known seed patterns for Place.
const (
	Blinker = "###"
	Glider  = ".#.\n..#\n###"
)
