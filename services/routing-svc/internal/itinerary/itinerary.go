// Package itinerary converts an index path produced by the shortest-path
// engines into a rider-facing Itinerary: segments, transfer counts, barrier
// notes, mode groupings, and a step-by-step narrative.
package itinerary

import (
	"fmt"

	"transitroute/pkg/domain"
)

// Build turns route into a domain.Itinerary under params, per §4.5. An
// empty route (NoRoute) yields an empty Itinerary, not an error.
func Build(g *domain.Graph, route domain.Route, params domain.CostParams) domain.Itinerary {
	if !route.Found() {
		return domain.Itinerary{Route: route}
	}

	segments := buildSegments(g, route.Path)

	it := domain.Itinerary{
		Route:        route,
		TotalTimeMin: sumTime(segments),
		Transfers:    countTransfers(segments),
		BarrierNotes: identifyBarriers(g, route.Path, params),
		Modes:        distinctModes(segments),
		Steps:        groupSteps(g, segments),
	}
	return it
}

func buildSegments(g *domain.Graph, path []int32) []domain.Segment {
	segments := make([]domain.Segment, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		e, ok := g.EdgeBetween(path[i], path[i+1])
		if !ok {
			continue
		}
		segments = append(segments, domain.Segment{
			FromID:   g.NodeByIndex(path[i]).ID,
			ToID:     g.NodeByIndex(path[i+1]).ID,
			TimeMin:  e.TimeMin,
			Mode:     e.Mode,
			Transfer: e.Transfer,
		})
	}
	return segments
}

func sumTime(segments []domain.Segment) float64 {
	var total float64
	for _, s := range segments {
		total += s.TimeMin
	}
	return total
}

// countTransfers implements §4.5's rule: a non-walk-to-different-non-walk
// change always counts; a non-walk-to-walk change counts only if a later
// edge in the path returns to any non-walk mode. Walk-only paths score 0.
//
// A journey's very first boarding of a non-walk mode (walking from the
// origin to a stop, then riding) counts as one transfer, same as any later
// non-walk-to-walk-to-non-walk detour; once transit has been boarded once,
// a subsequent walk-to-non-walk re-boarding is not double-counted on top of
// the transfer already attributed to leaving transit for that walk.
func countTransfers(segments []domain.Segment) int {
	if len(segments) == 0 {
		return 0
	}

	transfers := 0
	boardedTransit := segments[0].Mode != domain.ModeWalk
	previous := segments[0].Mode

	for i := 1; i < len(segments); i++ {
		current := segments[i].Mode
		if current == previous {
			continue
		}

		switch {
		case previous != domain.ModeWalk && current != domain.ModeWalk:
			transfers++
		case previous != domain.ModeWalk && current == domain.ModeWalk:
			if laterReturnsToTransit(segments, i) {
				transfers++
			}
		case previous == domain.ModeWalk && current != domain.ModeWalk:
			if !boardedTransit {
				transfers++
			}
			boardedTransit = true
		}

		previous = current
	}

	return transfers
}

func laterReturnsToTransit(segments []domain.Segment, fromIndex int) bool {
	for j := fromIndex + 1; j < len(segments); j++ {
		if segments[j].Mode != domain.ModeWalk {
			return true
		}
	}
	return false
}

// identifyBarriers reports barrier-flagged edges present on the path that
// are relevant to the active profile: stairs/bad_pavement for PcD, and
// flood_risk for any profile when rain is active. Named BarrierNote per
// §9's naming resolution ("avoided" in the source material but actually
// present-on-path).
func identifyBarriers(g *domain.Graph, path []int32, params domain.CostParams) []domain.BarrierNote {
	notes := make([]domain.BarrierNote, 0)
	for i := 0; i < len(path)-1; i++ {
		e, ok := g.EdgeBetween(path[i], path[i+1])
		if !ok {
			continue
		}
		from, to := g.NodeByIndex(path[i]).ID, g.NodeByIndex(path[i+1]).ID

		if params.PcDMode && e.Stairs {
			notes = append(notes, domain.BarrierNote{Issue: "stairs", FromID: from, ToID: to})
		}
		if params.PcDMode && e.BadPavement {
			notes = append(notes, domain.BarrierNote{Issue: "bad_pavement", FromID: from, ToID: to})
		}
		if params.RainOn && e.FloodRisk {
			notes = append(notes, domain.BarrierNote{Issue: "flood_risk", FromID: from, ToID: to})
		}
	}
	return notes
}

func distinctModes(segments []domain.Segment) []domain.Mode {
	seen := make(map[domain.Mode]struct{})
	modes := make([]domain.Mode, 0, len(segments))
	for _, s := range segments {
		if _, ok := seen[s.Mode]; !ok {
			seen[s.Mode] = struct{}{}
			modes = append(modes, s.Mode)
		}
	}
	return modes
}

// groupSteps run-length-encodes segments by mode into Step groups, with a
// synthetic leading "Begin journey" step at the path's origin, per §4.5.
func groupSteps(g *domain.Graph, segments []domain.Segment) []domain.Step {
	if len(segments) == 0 {
		return nil
	}

	steps := make([]domain.Step, 0, len(segments)+1)

	origin := g.NodeByIndex(mustIndexOf(g, segments[0].FromID))
	steps = append(steps, domain.Step{
		Mode:        domain.ModeWalk,
		FromID:      origin.ID,
		FromName:    origin.Name,
		ToID:        origin.ID,
		ToName:      origin.Name,
		TimeMin:     0,
		Instruction: fmt.Sprintf("Begin journey at %s", origin.Name),
	})

	var group []domain.Segment
	flush := func() {
		if len(group) == 0 {
			return
		}
		steps = append(steps, buildStep(g, group))
		group = nil
	}

	for i, seg := range segments {
		if i > 0 && seg.Mode != segments[i-1].Mode {
			flush()
		}
		group = append(group, seg)
	}
	flush()

	return steps
}

func buildStep(g *domain.Graph, group []domain.Segment) domain.Step {
	first, last := group[0], group[len(group)-1]
	fromNode := g.NodeByIndex(mustIndexOf(g, first.FromID))
	toNode := g.NodeByIndex(mustIndexOf(g, last.ToID))

	var total float64
	for _, s := range group {
		total += s.TimeMin
	}

	instruction := fmt.Sprintf("Walk from %s to %s", fromNode.Name, toNode.Name)
	if first.Mode != domain.ModeWalk {
		instruction = fmt.Sprintf("Take %s from %s to %s", first.Mode.Label(), fromNode.Name, toNode.Name)
	}

	return domain.Step{
		Mode:        first.Mode,
		FromID:      fromNode.ID,
		FromName:    fromNode.Name,
		ToID:        toNode.ID,
		ToName:      toNode.Name,
		TimeMin:     total,
		Segments:    append([]domain.Segment(nil), group...),
		Instruction: instruction,
	}
}

func mustIndexOf(g *domain.Graph, id string) int32 {
	idx, ok := g.IndexOf(id)
	if !ok {
		panic(fmt.Sprintf("itinerary: node id %q not present in graph used to build the route", id))
	}
	return idx
}
