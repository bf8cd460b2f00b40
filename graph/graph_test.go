package graph_test

import (
	"strings"
	"testing"

	"github.com/ruleflow-dev/ruleflow/assert"
	"github.com/ruleflow-dev/ruleflow/codec"
	"github.com/ruleflow-dev/ruleflow/event"
	"github.com/ruleflow-dev/ruleflow/graph"
	"github.com/ruleflow-dev/ruleflow/rule"
	"github.com/ruleflow-dev/ruleflow/space"
)

// evolves the sorted substitution system twice: AB -> ABAB -> AABB.
func sssLog(t *testing.T) *event.Log {
	t.Helper()
	sort, err := rule.NewSubstitution("ABA", "AAB")
	assert.NilError(t, err)
	grow, err := rule.NewSubstitution("A", "ABA")
	assert.NilError(t, err)
	set := rule.NewSet(sort, grow)

	log := event.NewLog([]*space.Linear{space.NewLinear("AB")})
	for i := 0; i < 2; i++ {
		deltas, err := set.Apply(log.Current().Spaces())
		assert.NilError(t, err)
		log.Append(deltas)
	}
	return log
}

func TestCausalGraphStructure(t *testing.T) {
	g := graph.New(sssLog(t))

	assert.Len(t, g.Nodes, 3)
	assert.Equal(t, g.Nodes[1].Step, 1)
	assert.DeepEqual(t, g.Nodes[1].Spaces, []string{"ABAB"})
	assert.Equal(t, g.Nodes[2].CausalDistance, 2)

	// one cell of event 0 destroyed at step 1, three cells of event 1
	// destroyed at step 2
	assert.Len(t, g.Edges, 4)
	assert.Equal(t, g.Edges[0], graph.Edge{From: 0, To: 1})
}

func TestAdjacencyMatrixCountsParallelEdges(t *testing.T) {
	g := graph.New(sssLog(t))
	m := g.AdjacencyMatrix()

	assert.Len(t, m, 3)
	assert.Equal(t, m[0][1], 1)
	assert.Equal(t, m[1][2], 3)
	assert.Equal(t, m[0][2], 0)
}

func TestDOTExport(t *testing.T) {
	dot := graph.New(sssLog(t)).DOT()

	assert.True(t, strings.HasPrefix(dot, "digraph causal {"))
	assert.Contains(t, dot, "0 -> 1;")
	assert.Contains(t, dot, "1 -> 2;")
	assert.Contains(t, dot, "Causal Distance: 2")
}

func TestJSONExportRoundTrips(t *testing.T) {
	g := graph.New(sssLog(t))
	bz, err := g.JSON()
	assert.NilError(t, err)

	decoded, err := codec.Decode[graph.Graph](bz)
	assert.NilError(t, err)
	assert.Len(t, decoded.Nodes, 3)
	assert.Len(t, decoded.Edges, 4)
}
