package rule

import (
	"strings"

	"github.com/ruleflow-dev/ruleflow/space"
)

// Set holds the rules of a flow in application order and schedules them each
// step. Rules sharing a group are tried in order until one of them applies
// effectively; a rule with GroupBreak off leaves its group open, and a rule
// with AlwaysApply runs regardless of its group's state.
type Set struct {
	Rules []Rule
}

// NewSet builds a rule set over the given rules.
func NewSet(rules ...Rule) *Set {
	return &Set{Rules: rules}
}

// Add appends rules to the end of the set.
func (s *Set) Add(rules ...Rule) {
	s.Rules = append(s.Rules, rules...)
}

// Apply runs the set against the given spaces and returns one RuleDelta per
// rule that changed anything.
func (s *Set) Apply(spaces []*space.Linear) ([]RuleDelta, error) {
	groups := make(map[string]bool)
	var applied []RuleDelta
	for _, r := range s.Rules {
		meta := r.Meta()
		if meta.Disabled {
			continue
		}
		active, seen := groups[meta.Group]
		if !seen {
			active = true
			groups[meta.Group] = true
		}
		if !active && !meta.AlwaysApply {
			continue
		}
		matches := r.Match(spaces)
		if len(matches) == 0 {
			continue
		}
		spaceDeltas, err := r.Apply(matches)
		if err != nil {
			return nil, err
		}
		delta := RuleDelta{Spaces: spaceDeltas, Rule: r}
		if delta.Effective() {
			applied = append(applied, delta)
			if meta.GroupBreak {
				groups[meta.Group] = false
			}
		}
	}
	return applied, nil
}

// MergeGroup chains every enabled rule of the group onto its first enabled
// member, so the group matches and applies as one composite rule.
func (s *Set) MergeGroup(group string) {
	for _, r := range s.Rules {
		head, ok := r.(*Base)
		if !ok || head.meta.Disabled || head.meta.Group != group {
			continue
		}
		for _, other := range s.Rules {
			o, ok := other.(*Base)
			if !ok || o == head || o.meta.Group != group {
				continue
			}
			head.Merge(o)
		}
		return
	}
}

// CompressGroup disables the overwrite rules of a group whose targets can
// never change what their selectors matched. Causality is preserved: a cell
// overwritten with an identical-looking cell would otherwise count as
// destroyed and recreated.
func (s *Set) CompressGroup(group string) {
	for _, r := range s.Rules {
		b, ok := r.(*Base)
		if !ok || b.meta.Disabled || b.meta.Group != group || b.op != OpOverwrite {
			continue
		}
		if !overwriteChangesAnything(b) {
			b.meta.Disabled = true
		}
	}
}

func overwriteChangesAnything(b *Base) bool {
	for _, target := range b.Targets {
		if target.Kind() != TargetCells {
			continue
		}
		for _, sel := range b.Selectors {
			if sel.Kind() == SelectorRange {
				continue
			}
			pattern := []rune(sel.expr)
			for i, cell := range target.cells {
				if cell.Quanta == space.Wildcard {
					continue
				}
				if i >= len(pattern) || pattern[i] != cell.Quanta {
					return true
				}
			}
		}
	}
	return false
}

func (s *Set) String() string {
	parts := make([]string, len(s.Rules))
	for i, r := range s.Rules {
		if str, ok := r.(interface{ String() string }); ok {
			parts[i] = str.String()
		} else {
			parts[i] = r.Meta().ID
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
