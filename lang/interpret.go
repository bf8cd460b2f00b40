package lang

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ruleflow-dev/ruleflow/enumerator"
	"github.com/ruleflow-dev/ruleflow/num"
	"github.com/ruleflow-dev/ruleflow/rule"
)

// Resolver turns a `{prompt}` selector into a regular expression.
type Resolver func(prompt string) (string, error)

// Importer loads the source behind an `@import(path)` directive. Builtin
// presets are looked up before the importer runs.
type Importer func(path string) (string, error)

// Directive is a runtime directive the compiler leaves for the host to act
// on, in source order.
type Directive struct {
	Name string
	Args []string
}

// Program is compiled flow-language source: the rule set with every
// compile-time directive already applied, the initial space contents, and
// the directives that only make sense against a running flow.
type Program struct {
	Initial    []string
	Set        *rule.Set
	Directives []Directive
}

// Steps sums the arguments of every @evolve directive.
func (p *Program) Steps() (int, error) {
	total := 0
	for _, d := range p.Directives {
		if d.Name != "evolve" {
			continue
		}
		if len(d.Args) != 1 {
			return 0, eris.Errorf("@evolve expects one argument, got %v", d.Args)
		}
		n, err := num.Parse(d.Args[0])
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// CompileOption configures a compilation.
type CompileOption func(*compiler)

// WithResolver supplies the client that resolves `{prompt}` selectors.
// Without one, compiling a prompt selector fails.
func WithResolver(r Resolver) CompileOption {
	return func(c *compiler) {
		c.resolver = r
	}
}

// WithImporter replaces how @import paths are loaded. The default reads
// `<path>.flow` from disk.
func WithImporter(i Importer) CompileOption {
	return func(c *compiler) {
		c.importer = i
	}
}

var builtinImports = map[string]string{
	// Puts cellular-automaton rules in the 0th group as a single chain and
	// lets them run across every match in parallel.
	"ca_presets": "@merge(0);\n-pl[inf]\n-mr[0,inf]",
}

const maxImportDepth = 16

var opMapper = map[string]rule.Op{
	"->":   rule.OpSubstitute,
	">":    rule.OpInsert,
	"-->":  rule.OpOverwrite,
	"><":   rule.OpDelete,
	">>":   rule.OpShift,
	"<<":   rule.OpShift,
	">><<": rule.OpReverse,
}

type compiler struct {
	resolver Resolver
	importer Importer
}

// boundInstruction is an instruction with its effective flags after block
// flag groups were distributed over it.
type boundInstruction struct {
	inst  *instruction
	flags flagSet
}

// collected is the flattened form of a file: imports spliced in, decode
// directives expanded, block flags pushed down onto their instructions.
type collected struct {
	directives   []Directive
	globalFlags  flagSet
	instructions []*boundInstruction
}

// Compile parses and interprets flow-language source into a Program.
func Compile(source string, opts ...CompileOption) (*Program, error) {
	c := &compiler{importer: fileImporter}
	for _, opt := range opts {
		opt(c)
	}

	file, err := parse(source)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	acc := &collected{globalFlags: flagSet{}}
	if err := c.collect(file.Statements, nil, acc, 0); err != nil {
		return nil, err
	}

	rules := make([]rule.Rule, 0, len(acc.instructions))
	for i, bi := range acc.instructions {
		r, err := c.buildRule(i, bi, acc.globalFlags)
		if err != nil {
			return nil, eris.Wrapf(err, "instruction %q", bi.inst)
		}
		rules = append(rules, r)
	}
	set := rule.NewSet(rules...)

	prog := &Program{Set: set}
	for _, d := range acc.directives {
		switch d.Name {
		case "init":
			for _, arg := range d.Args {
				prog.Initial = append(prog.Initial, unquote(arg))
			}
		case "merge":
			if len(d.Args) != 1 {
				return nil, eris.Errorf("@merge expects one group identifier, got %v", d.Args)
			}
			set.MergeGroup(d.Args[0])
		case "compress":
			if len(d.Args) != 1 {
				return nil, eris.Errorf("@compress expects one group identifier, got %v", d.Args)
			}
			set.CompressGroup(d.Args[0])
		default:
			prog.Directives = append(prog.Directives, d)
		}
	}
	return prog, nil
}

// collect flattens statements into acc. blockFlags are the flag-group
// defaults in effect at this nesting level, innermost winning.
func (c *compiler) collect(stmts []*statement, blockFlags flagSet, acc *collected, depth int) error {
	for _, stmt := range stmts {
		switch {
		case stmt.Directive != nil:
			if err := c.collectDirective(stmt.Directive, blockFlags, acc, depth); err != nil {
				return err
			}
		case stmt.GlobalFlags != nil:
			fs, err := parseFlags(stmt.GlobalFlags.Flags)
			if err != nil {
				return err
			}
			for name, v := range fs {
				acc.globalFlags[name] = v
			}
		case stmt.Block != nil:
			fs, err := parseFlags(stmt.Block.Flags)
			if err != nil {
				return err
			}
			fs.setDefaults(blockFlags)
			if err := c.collect(stmt.Block.Statements, fs, acc, depth); err != nil {
				return err
			}
		case stmt.Instruction != nil:
			fs, err := parseFlags(stmt.Instruction.Flags)
			if err != nil {
				return err
			}
			fs.setDefaults(blockFlags)
			acc.instructions = append(acc.instructions, &boundInstruction{
				inst:  stmt.Instruction,
				flags: fs,
			})
		}
	}
	return nil
}

func (c *compiler) collectDirective(d *directiveStmt, blockFlags flagSet, acc *collected, depth int) error {
	name := strings.TrimPrefix(d.Name, "@")
	switch name {
	case "import":
		if len(d.Args) != 1 {
			return eris.Errorf("@import expects one path, got %v", d.Args)
		}
		return c.importSource(unquote(d.Args[0]), blockFlags, acc, depth)
	case "decode":
		src, err := decodeSource(d.Args)
		if err != nil {
			return err
		}
		return c.spliceSource(src, blockFlags, acc, depth)
	}
	acc.directives = append(acc.directives, Directive{Name: name, Args: d.Args})
	return nil
}

func (c *compiler) importSource(path string, blockFlags flagSet, acc *collected, depth int) error {
	source, ok := builtinImports[path]
	if !ok {
		var err error
		source, err = c.importer(path)
		if err != nil {
			return err
		}
	}
	return c.spliceSource(source, blockFlags, acc, depth)
}

func (c *compiler) spliceSource(source string, blockFlags flagSet, acc *collected, depth int) error {
	if depth >= maxImportDepth {
		return eris.Errorf("import depth exceeds %d, likely an import cycle", maxImportDepth)
	}
	file, err := parse(source)
	if err != nil {
		return eris.Wrap(err, "")
	}
	return c.collect(file.Statements, blockFlags, acc, depth+1)
}

// decodeSource expands an `@decode(method, ...)` directive into instruction
// source. The only method so far is the Wolfram numbering scheme.
func decodeSource(args []string) (string, error) {
	if len(args) == 0 {
		return "", eris.New("@decode expects a method argument")
	}
	method := unquote(args[0])
	if method != "wns" {
		return "", eris.Errorf("decode method %q is not implemented", method)
	}
	if len(args) != 3 {
		return "", eris.Errorf("@decode(wns, charset, index) expects 3 arguments, got %v", args)
	}
	index, err := num.Parse(args[2])
	if err != nil {
		return "", err
	}
	table, err := enumerator.WolframRules(unquote(args[1]), index)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, r := range table {
		// The leading wildcard leaves the left neighbour untouched so
		// the overwrite lands on the centre cell of the neighbourhood.
		fmt.Fprintf(&sb, "%s --> _%s;", r.Selector, r.Replacement)
	}
	return sb.String(), nil
}

func (c *compiler) buildRule(id int, bi *boundInstruction, globals flagSet) (*rule.Base, error) {
	op, ok := opMapper[bi.inst.Operator]
	if !ok {
		return nil, eris.Errorf("unknown operator %q", bi.inst.Operator)
	}

	selectors := make([]rule.Selector, 0, len(bi.inst.Selectors))
	for _, term := range bi.inst.Selectors {
		sel, err := c.buildSelector(term)
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, sel)
	}

	targets, err := buildTargets(op, bi.inst)
	if err != nil {
		return nil, err
	}

	b := rule.New(op, selectors, targets)
	b.Meta().ID = fmt.Sprintf("r%d", id)

	final := globals.clone()
	for name, v := range bi.flags {
		final[name] = v
	}
	for name, v := range final {
		if err := applyFlag(b, name, v); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (c *compiler) buildSelector(term *selectorTerm) (rule.Selector, error) {
	switch {
	case term.Literal != "":
		return rule.LiteralSelector(term.Literal)
	case term.Regex != "":
		return rule.RegexSelector(unescapeRegex(term.Regex))
	case term.Range != "":
		start, end, err := parseRange(term.Range)
		if err != nil {
			return rule.Selector{}, err
		}
		return rule.RangeSelector(start, end), nil
	case term.Prompt != "":
		if c.resolver == nil {
			return rule.Selector{}, eris.Errorf("no resolver configured for prompt selector %q", term.Prompt)
		}
		prompt := strings.TrimSpace(term.Prompt[1 : len(term.Prompt)-1])
		expr, err := c.resolver(prompt)
		if err != nil {
			return rule.Selector{}, eris.Wrapf(err, "resolving prompt selector %q", prompt)
		}
		return rule.RegexSelector(expr)
	}
	return rule.Selector{}, eris.New("empty selector")
}

func buildTargets(op rule.Op, inst *instruction) ([]rule.Target, error) {
	switch op {
	case rule.OpShift:
		if len(inst.Targets) != 1 {
			return nil, eris.Errorf("shift expects one numeric target, got %v", inst.Targets)
		}
		n, err := num.Parse(inst.Targets[0])
		if err != nil {
			return nil, err
		}
		if inst.Operator == "<<" {
			n = -n
		}
		return []rule.Target{rule.AmountTarget(n)}, nil
	case rule.OpDelete, rule.OpReverse:
		if len(inst.Targets) != 0 {
			return nil, eris.Errorf("%s takes no target, got %v", op, inst.Targets)
		}
		return nil, nil
	}
	if len(inst.Targets) == 0 {
		return nil, eris.Errorf("%s requires a target", op)
	}
	targets := make([]rule.Target, 0, len(inst.Targets))
	for _, t := range inst.Targets {
		targets = append(targets, rule.CellsTarget(t))
	}
	return targets, nil
}

// parseRange reads a `[a,b]` selector token. `[n]` selects the empty span
// at n, a missing start is 0 and a missing end is inf.
func parseRange(raw string) (int, int, error) {
	inner := raw[1 : len(raw)-1]
	parts := strings.Split(inner, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch len(parts) {
	case 1:
		n, err := num.Parse(parts[0])
		if err != nil {
			return 0, 0, err
		}
		return n, n, nil
	case 2:
		start, end := 0, num.Inf
		var err error
		if parts[0] != "" {
			if start, err = num.Parse(parts[0]); err != nil {
				return 0, 0, err
			}
		}
		if parts[1] != "" {
			if end, err = num.Parse(parts[1]); err != nil {
				return 0, 0, err
			}
		}
		return start, end, nil
	}
	return 0, 0, eris.Errorf("malformed range %q", raw)
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

func unescapeRegex(raw string) string {
	return strings.ReplaceAll(raw[1:len(raw)-1], `\/`, "/")
}

func fileImporter(path string) (string, error) {
	data, err := os.ReadFile(path + ".flow")
	if err != nil {
		return "", eris.Wrapf(err, "import %q", path)
	}
	return string(data), nil
}
