// Package analysis implements the edge-improvement analyser (C6): for a
// deterministic sample of origin/destination pairs, it ranks edges whose
// worst fixable barrier attribute, if cleared, would most reduce aggregate
// routing cost.
package analysis

import (
	"context"
	"math"
	"sort"

	"transitroute/pkg/domain"
	"transitroute/services/routing-svc/internal/algorithms"
)

// Thresholds bucket an edge's composite impact score into a priority tier.
// Scores are unbounded above; these are the historical cut points.
const (
	highThreshold   = 50.0
	mediumThreshold = 15.0
)

// minSamplePairs is the floor below which the poi/entrance sample is
// considered too small and the hop-bounded all-pairs fallback kicks in.
const minSamplePairs = 3

// maxHops bounds the fallback sampling's source fan-out so analysis stays
// near-linear on large graphs instead of enumerating every pair.
const maxHops = 4

type aggregate struct {
	edge           domain.Edge
	issueType      string
	currentCost    float64
	savingsSum     float64
	affectedRoutes int
}

// Analyse implements §4.6's contract. The sampling policy is deterministic
// (see SPEC_FULL.md): it prefers poi/entrance node pairs as plausible trip
// endpoints, falling back to a hop-bounded all-pairs sweep when too few
// such nodes exist, and always iterates pairs in a fixed (from_idx, to_idx)
// order so repeated runs over an unchanged graph produce identical output.
func Analyse(ctx context.Context, g *domain.Graph, params domain.CostParams, maxResults int) []domain.EdgeImprovement {
	pairs := samplePairs(g)
	if len(pairs) == 0 {
		return nil
	}

	agg := make(map[domain.EdgeKey]*aggregate)

	for _, p := range pairs {
		result := algorithms.Shortest(ctx, g, p.from, p.to, params, algorithms.Options{})
		if !result.Found() {
			continue
		}

		for i := 0; i < len(result.Path)-1; i++ {
			e, ok := g.EdgeBetween(result.Path[i], result.Path[i+1])
			if !ok {
				continue
			}
			issue, incremental := fixableContribution(e, params)
			if issue == "" {
				continue
			}

			a, exists := agg[e.Key()]
			if !exists {
				a = &aggregate{edge: e, issueType: issue, currentCost: params.Cost(e)}
				agg[e.Key()] = a
			}
			a.savingsSum += incremental
			a.affectedRoutes++
		}
	}

	return rank(agg, maxResults)
}

type pair struct{ from, to int32 }

func samplePairs(g *domain.Graph) []pair {
	var endpoints []int32
	for i := int32(0); i < int32(g.NodeCount()); i++ {
		kind := g.NodeByIndex(i).Kind
		if kind == domain.NodeKindPOI || kind == domain.NodeKindEntrance {
			endpoints = append(endpoints, i)
		}
	}

	var pairs []pair
	if len(endpoints) >= 2 {
		for _, from := range endpoints {
			for _, to := range endpoints {
				if from != to {
					pairs = append(pairs, pair{from, to})
				}
			}
		}
	}

	if len(pairs) < minSamplePairs {
		pairs = hopBoundedPairs(g)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].from != pairs[j].from {
			return pairs[i].from < pairs[j].from
		}
		return pairs[i].to < pairs[j].to
	})
	return dedupPairs(pairs)
}

// hopBoundedPairs samples, for every node, the set of nodes reachable
// within maxHops outgoing edges, giving full coverage on small graphs and
// bounded work on large ones.
func hopBoundedPairs(g *domain.Graph) []pair {
	var pairs []pair
	n := int32(g.NodeCount())
	for source := int32(0); source < n; source++ {
		frontier := []int32{source}
		visited := map[int32]struct{}{source: {}}
		for hop := 0; hop < maxHops && len(frontier) > 0; hop++ {
			var next []int32
			for _, u := range frontier {
				for _, e := range g.Outgoing(u) {
					if _, seen := visited[e.To]; seen {
						continue
					}
					visited[e.To] = struct{}{}
					next = append(next, e.To)
					pairs = append(pairs, pair{source, e.To})
				}
			}
			frontier = next
		}
	}
	return pairs
}

func dedupPairs(pairs []pair) []pair {
	seen := make(map[pair]struct{}, len(pairs))
	out := make([]pair, 0, len(pairs))
	for _, p := range pairs {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// fixableContribution returns the barrier type dominating e's cost and the
// incremental cost that attribute contributes, or "" if e carries no
// fixable attribute active under params.
func fixableContribution(e domain.Edge, params domain.CostParams) (string, float64) {
	type candidate struct {
		issue string
		cost  float64
	}
	var candidates []candidate
	if e.Stairs && params.PcDMode {
		candidates = append(candidates, candidate{"stairs", params.Beta})
	}
	if e.BadPavement && params.PcDMode {
		candidates = append(candidates, candidate{"bad_pavement", params.Gamma})
	}
	if e.FloodRisk && params.RainOn {
		candidates = append(candidates, candidate{"flood_risk", params.Delta})
	}
	if len(candidates) == 0 {
		return "", 0
	}

	worst := candidates[0]
	for _, c := range candidates[1:] {
		if c.cost > worst.cost {
			worst = c
		}
	}
	return worst.issue, worst.cost
}

func rank(agg map[domain.EdgeKey]*aggregate, maxResults int) []domain.EdgeImprovement {
	results := make([]domain.EdgeImprovement, 0, len(agg))
	for key, a := range agg {
		score := a.savingsSum * math.Log1p(float64(a.affectedRoutes))
		results = append(results, domain.EdgeImprovement{
			From:             key.From,
			To:               key.To,
			IssueType:        a.issueType,
			CurrentCost:      a.currentCost,
			PotentialSavings: a.savingsSum,
			AffectedRoutes:   a.affectedRoutes,
			ImpactScore:      score,
			Priority:         bucket(score),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].ImpactScore != results[j].ImpactScore {
			return results[i].ImpactScore > results[j].ImpactScore
		}
		if results[i].From != results[j].From {
			return results[i].From < results[j].From
		}
		return results[i].To < results[j].To
	})

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func bucket(score float64) domain.Priority {
	switch {
	case score > highThreshold:
		return domain.PriorityHigh
	case score > mediumThreshold:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}
