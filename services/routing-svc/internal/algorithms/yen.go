package algorithms

import (
	"container/heap"
	"context"
	"fmt"
	"strings"

	"transitroute/pkg/domain"
)

// =============================================================================
// Yen's K-Shortest-Loopless-Paths Algorithm
// =============================================================================
//
// Built entirely on top of Shortest via the EdgeSkip/NodeSkip overlay: no
// spur ever mutates or copies the graph (§9's design note). Each spur run
// masks the edges leaving already-accepted routes' shared prefixes and the
// nodes that precede the spur, enforcing looplessness without a deep copy.
// =============================================================================

// candidate is one not-yet-accepted route waiting in Yen's heap, ordered by
// (cost, path) for determinism.
type candidate struct {
	path []int32
	cost float64
}

type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return pathKey(h[i].path) < pathKey(h[j].path)
}
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)   { *h = append(*h, x.(candidate)) }
func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func pathKey(path []int32) string {
	var b strings.Builder
	for i, n := range path {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", n)
	}
	return b.String()
}

// KShortest returns up to k loopless alternative routes from source to
// target in nondecreasing total-cost order, per §4.4. k is clamped to
// [1, Config.KMax] by the caller (the façade; KMax defaults to
// domain.DefaultKMax); this function accepts
// whatever k it is given and simply stops once the candidate pool runs dry.
func KShortest(ctx context.Context, g *domain.Graph, source, target int32, params domain.CostParams, k int) []Result {
	if k < 1 {
		return nil
	}

	first := Shortest(ctx, g, source, target, params, Options{})
	if !first.Found() {
		return nil
	}

	accepted := []Result{first}
	seen := map[string]struct{}{pathKey(first.Path): {}}

	candidates := &candidateHeap{}
	heap.Init(candidates)

	for len(accepted) < k {
		prev := accepted[len(accepted)-1].Path

		for i := 0; i < len(prev)-1; i++ {
			spurNode := prev[i]
			rootPath := append([]int32(nil), prev[:i+1]...)

			excludedEdges := make(map[domain.EdgeKey]struct{})
			for _, r := range accepted {
				if len(r.Path) > i && pathHasPrefix(r.Path, rootPath) {
					excludedEdges[domain.EdgeKey{From: r.Path[i], To: r.Path[i+1]}] = struct{}{}
				}
			}
			excludedNodes := make(map[int32]struct{})
			for _, n := range rootPath[:len(rootPath)-1] {
				excludedNodes[n] = struct{}{}
			}

			opts := Options{
				SkipEdge: func(e domain.Edge) bool {
					_, skip := excludedEdges[e.Key()]
					return skip
				},
				SkipNode: func(n int32) bool {
					_, skip := excludedNodes[n]
					return skip
				},
			}

			spurResult := Shortest(ctx, g, spurNode, target, params, opts)
			if !spurResult.Found() {
				continue
			}

			totalPath := append(append([]int32(nil), rootPath[:len(rootPath)-1]...), spurResult.Path...)
			if hasDuplicateNode(totalPath) {
				continue
			}
			if _, dup := seen[pathKey(totalPath)]; dup {
				continue
			}

			totalCost := pathCost(g, totalPath, params)
			heap.Push(candidates, candidate{path: totalPath, cost: totalCost})
			seen[pathKey(totalPath)] = struct{}{}
		}

		if candidates.Len() == 0 {
			break
		}

		next := heap.Pop(candidates).(candidate)
		accepted = append(accepted, Result{Path: next.path, TotalCost: next.cost})
	}

	return accepted
}

func pathHasPrefix(path, prefix []int32) bool {
	if len(path) < len(prefix) {
		return false
	}
	for i, n := range prefix {
		if path[i] != n {
			return false
		}
	}
	return true
}

func hasDuplicateNode(path []int32) bool {
	seen := make(map[int32]struct{}, len(path))
	for _, n := range path {
		if _, ok := seen[n]; ok {
			return true
		}
		seen[n] = struct{}{}
	}
	return false
}

func pathCost(g *domain.Graph, path []int32, params domain.CostParams) float64 {
	var total float64
	for i := 0; i < len(path)-1; i++ {
		e, ok := g.EdgeBetween(path[i], path[i+1])
		if !ok {
			continue
		}
		total += params.Cost(e)
	}
	return total
}
