// Package automata builds well-known cellular automata and substitution
// systems on top of the flow engine. The one-dimensional systems compile
// flow-language source; the Game of Life keeps its own two-dimensional
// grid because linear spaces cannot express a Moore neighbourhood.
package automata

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ruleflow-dev/ruleflow"
)

// NewSubstitutionSystem assembles a sequential substitution system from an
// initial string and textual rules such as "ABA -> AAB". A trailing
// semicolon on a rule is optional.
func NewSubstitutionSystem(initial string, rules []string, opts ...ruleflow.FlowOption) (*ruleflow.Flow, error) {
	if initial == "" {
		return nil, eris.New("substitution system needs an initial string")
	}
	if len(rules) == 0 {
		return nil, eris.New("substitution system needs at least one rule")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "@init(%q);\n", initial)
	for _, r := range rules {
		r = strings.TrimSpace(r)
		if !strings.HasSuffix(r, ";") {
			r += ";"
		}
		sb.WriteString(r + "\n")
	}
	flow, _, err := ruleflow.NewFlowFromSource(sb.String(), nil, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "building substitution system")
	}
	return flow, nil
}

// NewElementaryAutomaton builds a Wolfram elementary cellular automaton
// over a two-character alphabet. The rule number selects one of the 256
// update tables; cells beyond the initial string stay in the first
// (dead) character of the charset.
func NewElementaryAutomaton(charset string, ruleNumber int, initial string, opts ...ruleflow.FlowOption) (*ruleflow.Flow, error) {
	if initial == "" {
		return nil, eris.New("elementary automaton needs an initial string")
	}
	source := fmt.Sprintf(
		"@init(%q);\n@import(ca_presets);\n@decode(wns, %s, %d);\n",
		initial, charset, ruleNumber,
	)
	flow, _, err := ruleflow.NewFlowFromSource(source, nil, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "building elementary automaton")
	}
	return flow, nil
}
