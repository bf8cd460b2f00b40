package ruleflow

import (
	"github.com/rotisserie/eris"

	"github.com/ruleflow-dev/ruleflow/lang"
	"github.com/ruleflow-dev/ruleflow/space"
)

// NewFlowFromSource compiles flow-language source and builds a flow from
// its rule set and @init spaces. Runtime directives (@evolve, @print) are
// left to the caller; Program.Steps reports the requested step count.
func NewFlowFromSource(source string, compileOpts []lang.CompileOption, opts ...FlowOption) (*Flow, *lang.Program, error) {
	prog, err := lang.Compile(source, compileOpts...)
	if err != nil {
		return nil, nil, err
	}
	if len(prog.Initial) == 0 {
		return nil, nil, eris.New("source has no @init directive, nothing to evolve")
	}
	initial := make([]*space.Linear, 0, len(prog.Initial))
	for _, s := range prog.Initial {
		initial = append(initial, space.NewLinear(s))
	}
	f, err := NewFlow(prog.Set, initial, opts...)
	if err != nil {
		return nil, nil, err
	}
	f.SetSource(source)
	return f, prog, nil
}
