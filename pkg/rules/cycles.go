package rules

import (
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/fsdcheck/pkg/graph"
)

// FindCycles returns the dependency cycles of g.
//
// A depth-first traversal is started from every module in sorted order; an
// edge back to a module on the current recursion stack closes a cycle. Each
// cycle is returned closed (first element repeated at the end) and rotated so
// that it starts at its lexicographically smallest module. Rotations of the
// same cycle are reported once. The result is sorted.
//
// Traversals from different start modules are independent and run on up to
// workers goroutines.
func FindCycles(g *graph.Graph, workers int) [][]string {
	modules := g.Modules()
	succ := make(map[string][]string, len(modules))
	for _, m := range modules {
		succ[m] = g.Successors(m)
	}

	found := make([][][]string, len(modules))
	var eg errgroup.Group
	eg.SetLimit(max(workers, 1))
	for i, start := range modules {
		eg.Go(func() error {
			found[i] = cyclesFrom(start, succ)
			return nil
		})
	}
	_ = eg.Wait()

	seen := make(map[string]bool)
	var cycles [][]string
	for _, batch := range found {
		for _, c := range batch {
			key := strings.Join(c, "\x00")
			if seen[key] {
				continue
			}
			seen[key] = true
			cycles = append(cycles, c)
		}
	}
	slices.SortFunc(cycles, slices.Compare)
	return cycles
}

// cyclesFrom runs one traversal from start and returns the normalized cycles
// it closes.
func cyclesFrom(start string, succ map[string][]string) [][]string {
	var (
		stack   []string
		onStack = make(map[string]int)
		visited = make(map[string]bool)
		out     [][]string
	)

	var visit func(n string)
	visit = func(n string) {
		visited[n] = true
		onStack[n] = len(stack)
		stack = append(stack, n)
		for _, next := range succ[n] {
			if i, ok := onStack[next]; ok {
				closed := append(slices.Clone(stack[i:]), next)
				out = append(out, normalizeCycle(closed))
				continue
			}
			if !visited[next] {
				visit(next)
			}
		}
		stack = stack[:len(stack)-1]
		delete(onStack, n)
	}
	visit(start)
	return out
}

// normalizeCycle rotates a closed cycle to start at its smallest module.
func normalizeCycle(closed []string) []string {
	open := closed[:len(closed)-1]
	lo := 0
	for i, m := range open {
		if m < open[lo] {
			lo = i
		}
	}
	out := make([]string, 0, len(closed))
	out = append(out, open[lo:]...)
	out = append(out, open[:lo]...)
	return append(out, open[lo])
}

// cycleEdges returns the consecutive (from, to) pairs of a closed cycle.
func cycleEdges(cycle []string) [][2]string {
	pairs := make([][2]string, 0, len(cycle)-1)
	for i := 0; i+1 < len(cycle); i++ {
		pairs = append(pairs, [2]string{cycle[i], cycle[i+1]})
	}
	return pairs
}
