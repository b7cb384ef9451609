package headers

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	graphlib "github.com/dominikbraun/graph"
)

// IncludeGraph is the directed graph of resolved includes, keyed by mirrored path.
type IncludeGraph struct {
	g graphlib.Graph[string, string]
}

// IncludeCycle is a chain of headers that include each other, starting and
// ending at Path[0].
type IncludeCycle struct {
	Path []string
}

func NewIncludeGraph() *IncludeGraph {
	return &IncludeGraph{g: graphlib.New(graphlib.StringHash, graphlib.Directed())}
}

// AddInclude records that from includes to. Repeated edges are ignored.
func (ig *IncludeGraph) AddInclude(from, to string) error {
	for _, v := range []string{from, to} {
		if err := ig.g.AddVertex(v); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return err
		}
	}
	if err := ig.g.AddEdge(from, to); err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
		return err
	}
	return nil
}

// AdjacencyList returns every node with its sorted direct includes.
func (ig *IncludeGraph) AdjacencyList() (map[string][]string, error) {
	adjacencyMap, err := ig.g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("failed to read include graph: %w", err)
	}

	adjacency := make(map[string][]string, len(adjacencyMap))
	for node, targets := range adjacencyMap {
		deps := make([]string, 0, len(targets))
		for target := range targets {
			deps = append(deps, target)
		}
		sort.Strings(deps)
		adjacency[node] = deps
	}
	return adjacency, nil
}

// Cycles returns one canonical cycle per group of mutually including headers.
func (ig *IncludeGraph) Cycles() ([]IncludeCycle, error) {
	adjacency, err := ig.AdjacencyList()
	if err != nil {
		return nil, err
	}

	components, err := graphlib.StronglyConnectedComponents(ig.g)
	if err != nil {
		return nil, fmt.Errorf("failed to find include cycles: %w", err)
	}

	var cycles []IncludeCycle
	for _, component := range components {
		if len(component) == 1 && !contains(adjacency[component[0]], component[0]) {
			continue
		}
		cycles = append(cycles, IncludeCycle{Path: cyclePath(adjacency, component)})
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Path[0] < cycles[j].Path[0]
	})
	return cycles, nil
}

// cyclePath finds the shortest cycle through the smallest member of a
// strongly connected component.
func cyclePath(adjacency map[string][]string, component []string) []string {
	members := make(map[string]bool, len(component))
	for _, node := range component {
		members[node] = true
	}
	sorted := append([]string(nil), component...)
	sort.Strings(sorted)
	start := sorted[0]

	parent := map[string]string{}
	queue := []string{start}
	seen := map[string]bool{start: true}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range adjacency[current] {
			if next == start {
				var path []string
				for n := current; n != start; n = parent[n] {
					path = append([]string{n}, path...)
				}
				return append([]string{start}, path...)
			}
			if members[next] && !seen[next] {
				seen[next] = true
				parent[next] = current
				queue = append(queue, next)
			}
		}
	}

	return sorted
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// FormatDOT renders the graph as Graphviz DOT. Headers in a cycle are filled red.
func (ig *IncludeGraph) FormatDOT(label string) (string, error) {
	adjacency, err := ig.AdjacencyList()
	if err != nil {
		return "", err
	}
	cycleNodes, _, err := ig.cycleMembership()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("digraph includes {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n")
	if label != "" {
		sb.WriteString(fmt.Sprintf("  label=%q;\n", label))
		sb.WriteString("  labelloc=t;\n")
		sb.WriteString("  labeljust=l;\n")
		sb.WriteString("  fontsize=10;\n")
		sb.WriteString("  fontname=Courier;\n")
	}
	sb.WriteString("\n")

	nodes := sortedKeys(adjacency)
	for _, node := range nodes {
		if cycleNodes[node] {
			sb.WriteString(fmt.Sprintf("  %q [style=filled, fillcolor=lightcoral];\n", node))
		} else {
			sb.WriteString(fmt.Sprintf("  %q;\n", node))
		}
	}

	if len(nodes) > 0 {
		sb.WriteString("\n")
	}
	for _, node := range nodes {
		for _, dep := range adjacency[node] {
			sb.WriteString(fmt.Sprintf("  %q -> %q;\n", node, dep))
		}
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

// FormatMermaid renders the graph as a Mermaid flowchart.
func (ig *IncludeGraph) FormatMermaid(label string) (string, error) {
	adjacency, err := ig.AdjacencyList()
	if err != nil {
		return "", err
	}
	cycleNodes, cycles, err := ig.cycleMembership()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if label != "" {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", label))
		sb.WriteString("---\n")
	}
	sb.WriteString("flowchart LR\n")

	for i, cycle := range cycles {
		parts := append(append([]string(nil), cycle.Path...), cycle.Path[0])
		sb.WriteString(fmt.Sprintf("%%%% C%d: %s\n", i+1, strings.Join(parts, " -> ")))
	}

	// Mermaid node IDs can't carry slashes or dots.
	nodes := sortedKeys(adjacency)
	nodeIDs := make(map[string]string, len(nodes))
	for i, node := range nodes {
		nodeIDs[node] = fmt.Sprintf("n%d", i)
		nodeLabel := strings.ReplaceAll(node, "\"", "#quot;")
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeIDs[node], nodeLabel))
	}

	for _, node := range nodes {
		for _, dep := range adjacency[node] {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", nodeIDs[node], nodeIDs[dep]))
		}
	}

	for _, node := range nodes {
		if cycleNodes[node] {
			sb.WriteString(fmt.Sprintf("    style %s fill:#f08080\n", nodeIDs[node]))
		}
	}

	return sb.String(), nil
}

func (ig *IncludeGraph) cycleMembership() (map[string]bool, []IncludeCycle, error) {
	cycles, err := ig.Cycles()
	if err != nil {
		return nil, nil, err
	}
	members := make(map[string]bool)
	for _, cycle := range cycles {
		for _, node := range cycle.Path {
			members[node] = true
		}
	}
	return members, cycles, nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
