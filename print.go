package ruleflow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ruleflow-dev/ruleflow/event"
)

// printConfig controls how an evolution is rendered, one line per event.
type printConfig struct {
	showSteps               bool
	showCausalDistance      bool
	showConnectedEvents     bool
	collapseConnectedEvents bool
	spaceIndex              int
	exclude                 []string
	highlight               map[rune]string
}

// PrintOption adjusts the rendering of an evolution.
type PrintOption func(*printConfig)

// WithoutSteps drops the step number column.
func WithoutSteps() PrintOption {
	return func(c *printConfig) { c.showSteps = false }
}

// WithCausalDistance adds each event's causal distance to creation.
func WithCausalDistance() PrintOption {
	return func(c *printConfig) { c.showCausalDistance = true }
}

// WithConnectedEvents adds the indices of the events each event destroyed
// cells from.
func WithConnectedEvents() PrintOption {
	return func(c *printConfig) { c.showConnectedEvents = true }
}

// WithCollapsedConnectedEvents renders connected events as a de-duplicated
// set instead of one entry per destroyed cell.
func WithCollapsedConnectedEvents() PrintOption {
	return func(c *printConfig) {
		c.showConnectedEvents = true
		c.collapseConnectedEvents = true
	}
}

// WithSpaceIndex renders only the i-th space of each event instead of all
// of them.
func WithSpaceIndex(i int) PrintOption {
	return func(c *printConfig) { c.spaceIndex = i }
}

// WithExclude drops lines containing any of the given substrings.
func WithExclude(substrings ...string) PrintOption {
	return func(c *printConfig) { c.exclude = substrings }
}

// WithHighlight wraps every occurrence of a quanta in the given ANSI escape
// sequence, for terminal rendering.
func WithHighlight(quanta rune, ansi string) PrintOption {
	return func(c *printConfig) {
		if c.highlight == nil {
			c.highlight = map[rune]string{}
		}
		c.highlight[quanta] = ansi
	}
}

// Render returns the evolution as text, one line per event.
func (f *Flow) Render(opts ...PrintOption) string {
	cfg := printConfig{
		showSteps:  true,
		spaceIndex: -1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var lines []string
	for _, e := range f.Events() {
		line := strings.Join(renderEvent(e, cfg), "\t")
		if excluded(line, cfg.exclude) {
			continue
		}
		lines = append(lines, line)
	}
	out := strings.Join(lines, "\n")
	for quanta, ansi := range cfg.highlight {
		out = strings.ReplaceAll(out, string(quanta), ansi+" "+string(quanta)+" \x1b[0m")
	}
	return out
}

// Print writes the rendered evolution to stdout.
func (f *Flow) Print(opts ...PrintOption) {
	fmt.Println(f.Render(opts...))
}

func renderEvent(e *event.Event, cfg printConfig) []string {
	var cols []string
	if cfg.showSteps {
		cols = append(cols, strconv.Itoa(e.Step))
	}
	if cfg.showCausalDistance {
		cols = append(cols, strconv.Itoa(e.CausalDistance))
	}
	if cfg.spaceIndex == -1 {
		cols = append(cols, e.String())
	} else {
		spaces := e.Spaces()
		if cfg.spaceIndex < len(spaces) {
			cols = append(cols, spaces[cfg.spaceIndex].String())
		} else {
			cols = append(cols, "")
		}
	}
	if cfg.showConnectedEvents {
		cols = append(cols, renderConnected(e, cfg.collapseConnectedEvents))
	}
	return cols
}

func renderConnected(e *event.Event, collapse bool) string {
	connected := e.CausallyConnectedEvents()
	if collapse {
		seen := make(map[int]struct{}, len(connected))
		var unique []int
		for _, idx := range connected {
			if _, ok := seen[idx]; ok {
				continue
			}
			seen[idx] = struct{}{}
			unique = append(unique, idx)
		}
		connected = unique
	}
	parts := make([]string, len(connected))
	for i, idx := range connected {
		parts[i] = strconv.Itoa(idx)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func excluded(line string, substrings []string) bool {
	for _, s := range substrings {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}
