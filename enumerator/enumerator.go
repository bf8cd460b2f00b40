// Package enumerator expands compact rule numbering schemes into explicit
// selector/replacement tables.
package enumerator

import (
	"github.com/rotisserie/eris"
)

// WolframRule is one selector/replacement pair of an elementary cellular
// automaton rule table.
type WolframRule struct {
	Selector    string
	Replacement string
}

// The eight three-cell neighbourhoods in Wolfram's canonical order, from
// 111 down to 000. The n-th bit of the rule number (most significant first)
// decides the n-th neighbourhood's outcome.
var wolframPatterns = [8][3]int{
	{1, 1, 1}, {1, 1, 0}, {1, 0, 1}, {1, 0, 0},
	{0, 1, 1}, {0, 1, 0}, {0, 0, 1}, {0, 0, 0},
}

// WolframRules expands an elementary cellular automaton rule number into its
// eight selector/replacement pairs. charset[0] stands for a dead cell and
// charset[1] for a live one.
func WolframRules(charset string, index int) ([]WolframRule, error) {
	cs := []rune(charset)
	if len(cs) != 2 {
		return nil, eris.Errorf("charset must contain exactly 2 characters, got %q", charset)
	}
	if index < 0 || index > 255 {
		return nil, eris.Errorf("rule index must be in [0, 255], got %d", index)
	}
	rules := make([]WolframRule, 0, len(wolframPatterns))
	for i, p := range wolframPatterns {
		bit := (index >> (7 - i)) & 1
		rules = append(rules, WolframRule{
			Selector:    string([]rune{cs[p[0]], cs[p[1]], cs[p[2]]}),
			Replacement: string(cs[bit]),
		})
	}
	return rules, nil
}
