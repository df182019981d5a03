package graph

import (
	"fmt"
	"strings"

	"github.com/emicklei/dot"

	"github.com/dylandreimerink/asmviz/pkg/machine"
)

// ListingToGraph creates a control-flow graph of the listing loaded in m. Red edges are the non-branching path,
// green edges the branching path and orange edges function calls, which return and then follow the red edge.
// Every function, the entry and all call targets, is drawn as a blue cluster.
func ListingToGraph(m machine.Machine) *dot.Graph {
	blocks := Blocks(m)

	graph := dot.NewGraph(dot.Directed)
	graph.Attr("splines", "ortho")
	graph.Attr("nodesep", "0.5")
	graph.Attr("ranksep", "0.3")

	if len(blocks) == 0 {
		return graph
	}

	functions := make(map[*Block]bool)
	for _, block := range blocks {
		if block.Calls() && block.Branch != nil {
			functions[block.Branch] = true
		}
	}

	funcSubGraph := graph.Subgraph("entry", dot.ClusterOption{})
	funcSubGraph.Attr("color", "blue")

	start := m.CodeStart()
	blockNodes := make(map[*Block]dot.Node)
	for _, block := range blocks {
		if functions[block] {
			funcSubGraph = graph.Subgraph(fmt.Sprintf("func %04X", start+uint64(block.Lines[0].Index)*machine.InstructionSize), dot.ClusterOption{})
			funcSubGraph.Attr("color", "blue")
		}

		var label strings.Builder
		label.WriteString("\"")
		for _, line := range block.Lines {
			addr := start + uint64(line.Index)*machine.InstructionSize
			label.WriteString(fmt.Sprintf("%04X: %s\\l", addr, strings.ReplaceAll(line.Text, "\"", "\\\"")))
		}
		label.WriteString("\"")

		blockNode := funcSubGraph.Node(fmt.Sprintf("Block %d", block.Index))
		blockNode.Attr("label", dot.Literal(label.String()))
		blockNode.Attr("shape", "box")

		blockNodes[block] = blockNode
	}

	for _, block := range blocks {
		if block.Branch != nil {
			edge := graph.Edge(blockNodes[block], blockNodes[block.Branch]).
				Attr("color", "darkgreen")

			if block.Calls() {
				edge.Attr("color", "orange")
			}
		}

		if block.NoBranch != nil {
			graph.Edge(blockNodes[block], blockNodes[block.NoBranch]).
				Attr("color", "red")
		}
	}

	return graph
}
