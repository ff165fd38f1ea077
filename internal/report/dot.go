// Package report renders assembly graphs and solution paths to Graphviz
// DOT for external visualization
package report

import (
	"fmt"
	"os"
	"strconv"

	"github.com/awalterschulze/gographviz"

	"github.com/mothorchids/ScaffoQA/internal/assembly"
)

const graphName = "assembly"

// DOT renders the graph in Graphviz DOT form. Nodes and edges on the
// highlight path are drawn green so a solved path stands out from the
// rest of the graph
func DOT(g *assembly.Graph, highlight []string) (string, error) {
	onPath := make(map[string]bool, len(highlight))
	pathEdge := make(map[[2]string]bool)
	for i, id := range highlight {
		onPath[id] = true
		if i > 0 {
			pathEdge[[2]string{highlight[i-1], id}] = true
		}
	}

	viz := gographviz.NewGraph()
	if err := viz.SetName(graphName); err != nil {
		return "", fmt.Errorf("render dot: %w", err)
	}
	if err := viz.SetDir(true); err != nil {
		return "", fmt.Errorf("render dot: %w", err)
	}

	for _, id := range g.Nodes() {
		attrs := map[string]string{"label": strconv.Quote(id)}
		if onPath[id] {
			attrs["color"] = "green"
		}
		if err := viz.AddNode(graphName, strconv.Quote(id), attrs); err != nil {
			return "", fmt.Errorf("render dot: node %s: %w", id, err)
		}
	}

	for _, u := range g.Nodes() {
		for _, v := range g.OutNeighbors(u) {
			var attrs map[string]string
			if pathEdge[[2]string{u, v}] {
				attrs = map[string]string{"color": "green", "penwidth": "2"}
			}
			if err := viz.AddEdge(strconv.Quote(u), strconv.Quote(v), true, attrs); err != nil {
				return "", fmt.Errorf("render dot: edge %s->%s: %w", u, v, err)
			}
		}
	}
	return viz.String(), nil
}

// WriteDOT renders the graph to a DOT file
func WriteDOT(path string, g *assembly.Graph, highlight []string) error {
	s, err := DOT(g, highlight)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(s), 0644); err != nil {
		return fmt.Errorf("write dot file: %w", err)
	}
	return nil
}
