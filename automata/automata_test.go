package automata_test

import (
	"testing"

	"github.com/ruleflow-dev/ruleflow/assert"
	"github.com/ruleflow-dev/ruleflow/automata"
)

func TestSubstitutionSystemEvolves(t *testing.T) {
	flow, err := automata.NewSubstitutionSystem("AB", []string{"ABA -> AAB", "A -> ABA;"})
	assert.NilError(t, err)

	want := []string{"ABAB", "AABB", "ABAABB", "AABABB"}
	for _, w := range want {
		assert.NilError(t, flow.Evolve())
		assert.Equal(t, flow.Spaces()[0].String(), w)
	}
}

func TestSubstitutionSystemValidation(t *testing.T) {
	_, err := automata.NewSubstitutionSystem("", []string{"A -> B"})
	assert.ErrorContains(t, err, "initial string")

	_, err = automata.NewSubstitutionSystem("AB", nil)
	assert.ErrorContains(t, err, "at least one rule")

	_, err = automata.NewSubstitutionSystem("AB", []string{"A -> "})
	assert.Assert(t, err != nil)
}

func TestElementaryAutomatonRule30(t *testing.T) {
	flow, err := automata.NewElementaryAutomaton("AB", 30, "AAAABAAAA")
	assert.NilError(t, err)

	assert.NilError(t, flow.Evolve())
	assert.Equal(t, flow.Spaces()[0].String(), "AAABBBAAA")
	assert.NilError(t, flow.Evolve())
	assert.Equal(t, flow.Spaces()[0].String(), "AABBAABAA")
}

func TestElementaryAutomatonValidation(t *testing.T) {
	_, err := automata.NewElementaryAutomaton("ABC", 30, "A")
	assert.Assert(t, err != nil)

	_, err = automata.NewElementaryAutomaton("AB", 300, "A")
	assert.Assert(t, err != nil)

	_, err = automata.NewElementaryAutomaton("AB", 30, "")
	assert.ErrorContains(t, err, "initial string")
}
