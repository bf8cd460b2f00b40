package lang

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ruleflow-dev/ruleflow/num"
	"github.com/ruleflow-dev/ruleflow/rule"
)

// flagValue is the parsed argument list of a single `-name[args]` flag. A
// bare flag has nil args and reads as true.
type flagValue struct {
	args []string
}

type flagSet map[string]flagValue

// parseFlag splits a raw `-name` or `-name[a,b]` token.
func parseFlag(raw string) (string, flagValue, error) {
	body := strings.TrimPrefix(raw, "-")
	open := strings.IndexByte(body, '[')
	if open < 0 {
		return body, flagValue{}, nil
	}
	if !strings.HasSuffix(body, "]") {
		return "", flagValue{}, eris.Errorf("malformed flag %q", raw)
	}
	name := body[:open]
	inner := body[open+1 : len(body)-1]
	if inner == "" {
		return name, flagValue{}, nil
	}
	parts := strings.Split(inner, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return name, flagValue{args: parts}, nil
}

func parseFlags(raw []string) (flagSet, error) {
	out := make(flagSet, len(raw))
	for _, r := range raw {
		name, v, err := parseFlag(r)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// setDefaults fills in every flag from defaults that fs does not set itself.
func (fs flagSet) setDefaults(defaults flagSet) {
	for name, v := range defaults {
		if _, ok := fs[name]; !ok {
			fs[name] = v
		}
	}
}

func (fs flagSet) clone() flagSet {
	out := make(flagSet, len(fs))
	for name, v := range fs {
		out[name] = v
	}
	return out
}

func (v flagValue) boolean() (bool, error) {
	if v.args == nil {
		return true, nil
	}
	if len(v.args) != 1 {
		return false, eris.Errorf("expected a single boolean argument, got %v", v.args)
	}
	switch v.args[0] {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, eris.Errorf("invalid boolean argument %q", v.args[0])
}

func (v flagValue) integer() (int, error) {
	if len(v.args) != 1 {
		return 0, eris.Errorf("expected a single numeric argument, got %v", v.args)
	}
	return num.Parse(v.args[0])
}

func (v flagValue) str() (string, error) {
	if len(v.args) != 1 {
		return "", eris.Errorf("expected a single argument, got %v", v.args)
	}
	return v.args[0], nil
}

// bounds reads a range argument: `[a,b]` is the half-open range [a, b) and
// a single `[n]` selects just index n.
func (v flagValue) bounds() (rule.Bounds, error) {
	switch len(v.args) {
	case 1:
		n, err := num.Parse(v.args[0])
		if err != nil {
			return rule.Bounds{}, err
		}
		return rule.Bounds{Min: n, Max: n + 1}, nil
	case 2:
		min, err := num.Parse(v.args[0])
		if err != nil {
			return rule.Bounds{}, err
		}
		max, err := num.Parse(v.args[1])
		if err != nil {
			return rule.Bounds{}, err
		}
		return rule.Bounds{Min: min, Max: max}, nil
	}
	return rule.Bounds{}, eris.Errorf("expected one or two range arguments, got %v", v.args)
}

// applyFlag sets one flag on a rule. Both the short aliases and the spelled
// out names are accepted; flags this rule type has no use for are tolerated.
func applyFlag(b *rule.Base, name string, v flagValue) error {
	var err error
	switch name {
	case "d", "disabled":
		b.Meta().Disabled, err = v.boolean()
	case "g", "group":
		b.Meta().Group, err = v.str()
	case "gb", "group_break":
		b.Meta().GroupBreak, err = v.boolean()
	case "a", "always_apply":
		b.Meta().AlwaysApply, err = v.boolean()
	case "sr", "space_range":
		b.SpaceRange, err = v.bounds()
	case "mr", "match_range":
		b.MatchRange, err = v.bounds()
	case "offset":
		b.Offset, err = v.integer()
	case "cmp":
		b.CMP, err = v.cmp()
	case "nct", "no_causality_tracking":
		b.NoCausalityTracking, err = v.boolean()
	case "nib", "no_initial_branch":
		b.NoInitialBranch, err = v.boolean()
	case "nds", "no_delta_submit":
		b.NoDeltaSubmit, err = v.boolean()
	case "pl", "parallel_execution_limit":
		b.ParallelLimit, err = v.integer()
	case "bl", "branch_limit":
		b.BranchLimit, err = v.integer()
	case "bo", "branch_origin":
		b.BranchOrigin, err = v.origin()
	case "crp":
		b.CRP, err = v.crp()
	case "life", "lifespan":
		b.Lifespan, err = v.integer()
	}
	if err != nil {
		return eris.Wrapf(err, "flag -%s", name)
	}
	return nil
}

func (v flagValue) cmp() (rule.Cmp, error) {
	s, err := v.str()
	if err != nil {
		return rule.CmpIgnore, err
	}
	switch s {
	case "ignore":
		return rule.CmpIgnore, nil
	case "both":
		return rule.CmpBoth, nil
	case "og":
		return rule.CmpOG, nil
	case "this":
		return rule.CmpThis, nil
	}
	return rule.CmpIgnore, eris.Errorf("unknown conflict marking protocol %q", s)
}

func (v flagValue) crp() (rule.Crp, error) {
	s, err := v.str()
	if err != nil {
		return rule.CrpIgnore, err
	}
	switch s {
	case "ignore":
		return rule.CrpIgnore, nil
	case "branch":
		return rule.CrpBranch, nil
	case "branch_nbl":
		return rule.CrpBranchNoLimit, nil
	case "skip":
		return rule.CrpSkip, nil
	case "break":
		return rule.CrpBreak, nil
	}
	return rule.CrpIgnore, eris.Errorf("unknown conflict resolution protocol %q", s)
}

func (v flagValue) origin() (rule.Origin, error) {
	s, err := v.str()
	if err != nil {
		return rule.OriginPrev, err
	}
	switch s {
	case "prev":
		return rule.OriginPrev, nil
	case "current":
		return rule.OriginCurrent, nil
	}
	return rule.OriginPrev, eris.Errorf("unknown branch origin %q", s)
}
