package compiler

import (
	"fmt"
	"strings"

	"github.com/patternmatch/strusmatch/internal/ir"
)

// CheckAcyclic verifies that the event-firing cascade implied by
// programs forms a DAG, rejecting any program whose emit-event is
// transitively its own trigger. A cycle is a hard BuildError, not a
// warning — the state machine's dispatch loop has no cycle-breaking
// mechanism, so an undetected cycle would cascade indefinitely.
func CheckAcyclic(programs []ir.Program) error {
	graph := buildEventGraph(programs)

	sccs := tarjanSCC(graph)
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			return &ir.BuildError{
				Code:    ir.ErrCyclicReference,
				Message: fmt.Sprintf("cyclic event dependency: %s", describeCycle(scc, graph)),
			}
		}
	}
	return nil
}

// eventGraph maps an event handle to the event handles
// reachable by one program firing: trigger event -> emitted event.
type eventGraph map[ir.EventHandle][]ir.EventHandle

// buildEventGraph adds one edge per program: every trigger event of P
// points at P's emitted event, since consuming any trigger of P can
// (transitively) cause P's event_on_fire to be produced.
func buildEventGraph(programs []ir.Program) eventGraph {
	graph := make(eventGraph)
	for _, p := range programs {
		emitted := p.Slot.EventOnFire
		if !emitted.IsValid() {
			continue
		}
		for _, trig := range p.Triggers {
			if graph[trig.Event] == nil {
				graph[trig.Event] = []ir.EventHandle{}
			}
			graph[trig.Event] = append(graph[trig.Event], emitted)
		}
		if graph[emitted] == nil {
			graph[emitted] = []ir.EventHandle{}
		}
	}
	return graph
}

func hasSelfLoop(node ir.EventHandle, graph eventGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components of graph using
// Tarjan's algorithm.
func tarjanSCC(graph eventGraph) [][]ir.EventHandle {
	var (
		index   = 0
		stack   []ir.EventHandle
		indices = make(map[ir.EventHandle]int)
		lowlink = make(map[ir.EventHandle]int)
		onStack = make(map[ir.EventHandle]bool)
		sccs    [][]ir.EventHandle
	)

	var strongConnect func(ir.EventHandle)
	strongConnect = func(v ir.EventHandle) {
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
			var scc []ir.EventHandle
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

	for node := range graph {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// describeCycle renders an SCC as a readable "a -> b -> a" path.
func describeCycle(scc []ir.EventHandle, graph eventGraph) string {
	if len(scc) == 1 {
		return fmt.Sprintf("%s -> %s", scc[0], scc[0])
	}

	sccSet := make(map[ir.EventHandle]bool, len(scc))
	for _, n := range scc {
		sccSet[n] = true
	}

	start := scc[0]
	current := start
	path := []string{current.String()}
	visited := make(map[ir.EventHandle]bool)

	for {
		visited[current] = true
		var next ir.EventHandle
		found := false
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				found = true
				break
			}
		}
		if !found {
			break
		}
		path = append(path, next.String())
		if next == start {
			break
		}
		current = next
	}

	return strings.Join(path, " -> ")
}
