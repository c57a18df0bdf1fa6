// Package algorithms implements the single-source shortest-path engine
// (C3) and, building on it, the k-shortest-loopless-paths engine (C4).
package algorithms

import (
	"container/heap"
	"context"

	"transitroute/pkg/domain"
)

// =============================================================================
// Dijkstra's Algorithm
// =============================================================================
//
// The cost model (domain.CostParams) only ever produces nonnegative edge
// costs, so a plain binary-heap Dijkstra suffices; there is no negative-edge
// fallback path here. Tie-breaking uses (dist, node_idx) as the priority
// key, which is what makes two runs over identical inputs byte-for-byte
// identical (§4.3, §8 Determinism).
//
// Time Complexity: O((V + E) log V) with a binary heap.
// Space Complexity: O(V) per query, released on return.
// =============================================================================

// checkInterval bounds how often a running search polls ctx.Done().
const checkInterval = 256

// heapItem is one entry in the priority queue: a candidate distance to a
// node, tie-broken by node index for determinism.
type heapItem struct {
	node  int32
	dist  float64
	index int
}

// priorityQueue implements heap.Interface. It is a min-heap on distance
// with node index as the tie-breaker; stale entries are pushed rather than
// fixed in place and discarded lazily on pop (no decrease-key, per §4.3).
type priorityQueue []*heapItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].node < pq[j].node
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*heapItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// EdgeSkip is consulted for every candidate edge during a search; returning
// true makes Dijkstra treat the edge as absent. Yen's algorithm (C4) uses
// this to overlay per-spur exclusions on the immutable graph without
// copying it (§9: "operating on mutable graph copies" is replaced by an
// overlay/mask mechanism).
type EdgeSkip func(e domain.Edge) bool

// NodeSkip reports whether a node must be treated as removed from the
// graph for the duration of one search.
type NodeSkip func(node int32) bool

// Options configures a single search. The zero value searches the full
// graph with no exclusions.
type Options struct {
	SkipEdge EdgeSkip
	SkipNode NodeSkip
}

// Result is the outcome of a single-source-to-target search.
type Result struct {
	// Path is the sequence of node indices from source to target,
	// inclusive. Empty means unreachable — NoRoute is a value, not an
	// error (§7).
	Path      []int32
	TotalCost float64
	// TimedOut is set when the context deadline interrupted the search
	// before it converged; Path is empty in that case.
	TimedOut bool
}

// Found reports whether the search reached the target.
func (r Result) Found() bool { return len(r.Path) > 0 }

// Shortest computes the lowest-cost simple path from source to target under
// params (§4.3). source == target yields the single-node path at cost 0.
// An unreachable target yields an empty Result, never an error.
func Shortest(ctx context.Context, g *domain.Graph, source, target int32, params domain.CostParams, opts Options) Result {
	if source == target {
		return Result{Path: []int32{source}, TotalCost: 0}
	}

	n := g.NodeCount()
	dist := make([]float64, n)
	parent := make([]int32, n)
	settled := make([]bool, n)
	for i := range dist {
		dist[i] = domain.Infinity
		parent[i] = -1
	}
	dist[source] = 0

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &heapItem{node: source, dist: 0})

	iterations := 0
	for pq.Len() > 0 {
		iterations++
		if iterations%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return Result{TimedOut: true}
			default:
			}
		}

		current := heap.Pop(pq).(*heapItem)
		u := current.node

		// Stale entry: a better distance was already settled for u.
		if settled[u] || current.dist > dist[u]+domain.Epsilon {
			continue
		}
		settled[u] = true

		if u == target {
			break
		}

		if opts.SkipNode != nil && opts.SkipNode(u) {
			continue
		}

		for _, e := range g.Outgoing(u) {
			if settled[e.To] {
				continue
			}
			if opts.SkipNode != nil && opts.SkipNode(e.To) {
				continue
			}
			if opts.SkipEdge != nil && opts.SkipEdge(e) {
				continue
			}

			cand := dist[u] + params.Cost(e)
			if cand < dist[e.To]-domain.Epsilon {
				dist[e.To] = cand
				parent[e.To] = u
				heap.Push(pq, &heapItem{node: e.To, dist: cand})
			}
		}
	}

	if !settled[target] {
		return Result{}
	}

	return Result{Path: reconstructPath(parent, source, target), TotalCost: dist[target]}
}

// reconstructPath walks the parent array from target back to source and
// reverses it into forward order.
func reconstructPath(parent []int32, source, target int32) []int32 {
	path := []int32{target}
	current := target
	for current != source {
		p := parent[current]
		if p < 0 {
			return nil
		}
		path = append(path, p)
		current = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
