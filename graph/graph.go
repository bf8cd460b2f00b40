// Package graph builds the causal network of a flow's event log: one node
// per event, one edge per causal link from the event that created a cell to
// the event that destroyed it.
package graph

import (
	"fmt"
	"strings"

	"github.com/ruleflow-dev/ruleflow/codec"
	"github.com/ruleflow-dev/ruleflow/event"
)

// Node is a single event of the log. Spaces holds the renderings of every
// space the event submitted.
type Node struct {
	Step           int      `json:"id"`
	CausalDistance int      `json:"causalDistance"`
	Spaces         []string `json:"spaces"`
}

// Edge is a directed causal link. Parallel edges are kept: an event that
// destroys several cells of the same parent is linked once per cell.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Graph is the causal network of an event log.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// New walks the event log and assembles its causal graph.
func New(log *event.Log) *Graph {
	g := &Graph{}
	for _, e := range log.Events() {
		spaces := e.Spaces()
		rendered := make([]string, len(spaces))
		for i, s := range spaces {
			rendered[i] = s.String()
		}
		g.Nodes = append(g.Nodes, Node{
			Step:           e.Step,
			CausalDistance: e.CausalDistance,
			Spaces:         rendered,
		})
		for _, parent := range e.CausallyConnectedEvents() {
			g.Edges = append(g.Edges, Edge{From: parent, To: e.Step})
		}
	}
	return g
}

// AdjacencyMatrix returns the n×n matrix of edge counts, indexed by step.
func (g *Graph) AdjacencyMatrix() [][]int {
	n := len(g.Nodes)
	matrix := make([][]int, n)
	for i := range matrix {
		matrix[i] = make([]int, n)
	}
	for _, e := range g.Edges {
		if e.From >= 0 && e.From < n && e.To >= 0 && e.To < n {
			matrix[e.From][e.To]++
		}
	}
	return matrix
}

// DOT renders the graph in Graphviz dot format.
func (g *Graph) DOT() string {
	var sb strings.Builder
	sb.WriteString("digraph causal {\n")
	sb.WriteString("\tnode [shape=box];\n")
	for _, n := range g.Nodes {
		fmt.Fprintf(&sb, "\t%d [label=%q tooltip=%q];\n",
			n.Step,
			fmt.Sprintf("%d", n.Step),
			fmt.Sprintf("Causal Distance: %d\nSpace: [%s]", n.CausalDistance, strings.Join(n.Spaces, ", ")),
		)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&sb, "\t%d -> %d;\n", e.From, e.To)
	}
	sb.WriteString("}\n")
	return sb.String()
}

// JSON renders the graph for browser visualization.
func (g *Graph) JSON() ([]byte, error) {
	return codec.Encode(g)
}
