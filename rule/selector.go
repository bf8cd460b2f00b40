package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ruleflow-dev/ruleflow/num"
	"github.com/ruleflow-dev/ruleflow/space"
)

// SelectorKind discriminates how a selector picks spans out of a space.
type SelectorKind int

const (
	// SelectorLiteral matches a quanta string, with Wildcard matching any
	// single cell. Literals compile down to regexes so matching runs over
	// the space's search buffer.
	SelectorLiteral SelectorKind = iota
	// SelectorRegex matches a regular expression.
	SelectorRegex
	// SelectorRange selects a fixed [start, end) region regardless of the
	// space's contents.
	SelectorRange
)

// Selector picks the spans of a space that a rule operates on.
type Selector struct {
	kind SelectorKind
	expr string
	re   *regexp.Regexp
	span space.Span
}

// LiteralSelector compiles a quanta string into a selector. The Wildcard
// quanta becomes the any-cell pattern.
func LiteralSelector(s string) (Selector, error) {
	re, err := regexp.Compile(strings.ReplaceAll(s, string(space.Wildcard), "."))
	if err != nil {
		return Selector{}, eris.Wrapf(err, "invalid literal selector %q", s)
	}
	return Selector{kind: SelectorLiteral, expr: s, re: re}, nil
}

// RegexSelector compiles a regular expression into a selector.
func RegexSelector(expr string) (Selector, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Selector{}, eris.Wrapf(err, "invalid regex selector %q", expr)
	}
	return Selector{kind: SelectorRegex, expr: expr, re: re}, nil
}

// RangeSelector selects the fixed region [start, end). Negative bounds count
// from the end of the space and num.Inf clamps to its length.
func RangeSelector(start, end int) Selector {
	return Selector{kind: SelectorRange, span: space.Span{Start: start, End: end}}
}

// Kind returns the selector's kind.
func (s Selector) Kind() SelectorKind {
	return s.kind
}

func (s Selector) String() string {
	if s.kind == SelectorRange {
		return fmt.Sprintf("[%s,%s]", num.Format(s.span.Start), num.Format(s.span.End))
	}
	return s.expr
}

// Spans returns the selector's hits on the space, left to right.
func (s Selector) Spans(l *space.Linear) []space.Span {
	if s.kind == SelectorRange {
		sp := s.span
		if sp.End == num.Inf || sp.End > l.Len() {
			sp.End = l.Len()
		} else if sp.End < 0 {
			sp.End = l.Len() + sp.End
		}
		if sp.Start < 0 {
			sp.Start = l.Len() + sp.Start
		}
		return []space.Span{sp}
	}
	return l.FindPattern(s.re)
}

// TargetKind discriminates what a rule writes into the spans it selected.
type TargetKind int

const (
	// TargetCells is a replacement string of cells.
	TargetCells TargetKind = iota
	// TargetAmount is a bare integer, used by rules like shifting that
	// take a distance instead of content.
	TargetAmount
)

// Target is what a rule produces at a matched span. Rules with several
// targets cycle through them match by match.
type Target struct {
	kind   TargetKind
	cells  []*space.Cell
	amount int
}

// CellsTarget builds a replacement-cells target from a quanta string.
func CellsTarget(s string) Target {
	return Target{kind: TargetCells, cells: space.Cells(s)}
}

// AmountTarget builds an integer target.
func AmountTarget(n int) Target {
	return Target{kind: TargetAmount, amount: n}
}

// Kind returns the target's kind.
func (t Target) Kind() TargetKind {
	return t.kind
}

// Amount returns the integer payload.
func (t Target) Amount() int {
	return t.amount
}

// Cells returns fresh copies of the target's cells. Every application gets
// its own cells so causal metadata never crosses branches.
func (t Target) Cells() []*space.Cell {
	return space.CloneCells(t.cells)
}

func (t Target) String() string {
	if t.kind == TargetAmount {
		return num.Format(t.amount)
	}
	return space.Render(t.cells)
}
