package compiler

import (
	"fmt"
	"slices"
	"strings"
)

// CycleWarning reports profiles whose extends chains loop. Such profiles
// cannot be resolved; the other profiles of the registry stay usable, so
// the cycle is reported rather than failing the whole load.
type CycleWarning struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// AnalyzeExtends finds extends cycles among profiles with Tarjan's
// strongly connected components. An acyclic set returns no warnings.
func AnalyzeExtends(profiles []Profile) []CycleWarning {
	graph := make(extendsGraph, len(profiles))
	for _, p := range profiles {
		graph[p.Name] = nil
		if p.Extends != "" {
			graph[p.Name] = []string{p.Extends}
		}
	}

	var warnings []CycleWarning
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, cycleWarning(scc, graph))
		}
	}
	slices.SortFunc(warnings, func(a, b CycleWarning) int { return strings.Compare(a.Path[0], b.Path[0]) })
	return warnings
}

// extendsGraph maps a profile to the profile it extends.
type extendsGraph map[string][]string

func hasSelfLoop(node string, graph extendsGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC returns the strongly connected components of graph. Nodes are
// visited in sorted order so the output is deterministic.
func tarjanSCC(graph extendsGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// cycleWarning walks the cycle from its smallest member.
func cycleWarning(scc []string, graph extendsGraph) CycleWarning {
	start := slices.Min(scc)
	path := []string{start}
	for cur := start; ; {
		next := graph[cur][0]
		path = append(path, next)
		if next == start {
			break
		}
		cur = next
	}
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("extends cycle: %s", strings.Join(path, " -> ")),
	}
}
