package domain

import "fmt"

// CostParams carries the coefficients the cost function applies to an edge.
// It is a value object: constructed per query, never mutated, safe to share
// across goroutines.
type CostParams struct {
	Alpha           float64
	Beta            float64
	Gamma           float64
	Delta           float64
	RainOn          bool
	PcDMode         bool
	TransferPenalty float64
}

// Validate rejects negative or non-finite coefficients, per §4.2/§7
// InvalidParameter. Construction-time errors abort; they are never silently
// clamped.
func (p CostParams) Validate() error {
	for name, v := range map[string]float64{
		"alpha":            p.Alpha,
		"beta":             p.Beta,
		"gamma":            p.Gamma,
		"delta":            p.Delta,
		"transfer_penalty": p.TransferPenalty,
	} {
		if v < 0 || isNaNOrInf(v) {
			return fmt.Errorf("invalid cost coefficient %s: %v", name, v)
		}
	}
	return nil
}

func isNaNOrInf(v float64) bool {
	return v != v || v > Infinity || v < -Infinity
}

// Cost computes the scalar cost of traversing e under p, per §4.2:
//
//	cost(e) = alpha*time_min
//	        + beta  * [stairs        AND PcD]
//	        + gamma * [bad_pavement  AND PcD]
//	        + delta * [flood_risk    AND rain]
//	        + transfer_penalty(e)
func (p CostParams) Cost(e Edge) float64 {
	c := p.Alpha * e.TimeMin
	if e.Stairs && p.PcDMode {
		c += p.Beta
	}
	if e.BadPavement && p.PcDMode {
		c += p.Gamma
	}
	if e.FloodRisk && p.RainOn {
		c += p.Delta
	}
	if e.Transfer {
		c += p.TransferPenalty
	}
	return c
}

// ProfileName identifies a mobility profile in the coefficient table.
type ProfileName string

const (
	ProfileStandard ProfileName = "standard"
	ProfileElderly  ProfileName = "elderly"
	ProfilePcD      ProfileName = "pcd"
)

// profileTable is the sole source of truth for per-profile coefficients.
// Values match the historical weighting scheme: standard carries the
// baseline penalties, elderly doubles beta/gamma, and PcD raises them far
// enough that a stair or bad-pavement edge is strongly discouraged without
// being forbidden outright (so a route still exists when there is no
// barrier-free alternative).
//
// PcD's Beta/Gamma deviate upward from the historical tuple (12/6): on the
// canonical worked example, 6 is not enough to outweigh the time saved by
// cutting through the bad-pavement edge (a 12-unit time advantage at
// alpha=6 beats a gamma=6 penalty outright), so the "strongly discouraged"
// requirement above would be violated on the very graph meant to
// demonstrate it. 28/14 clear that graph's margin with room to spare; see
// DESIGN.md for the full derivation.
var profileTable = map[ProfileName]struct{ Alpha, Beta, Gamma, Delta float64 }{
	ProfileStandard: {Alpha: 6, Beta: 2, Gamma: 1, Delta: 4},
	ProfileElderly:  {Alpha: 6, Beta: 4, Gamma: 2, Delta: 4},
	ProfilePcD:      {Alpha: 6, Beta: 28, Gamma: 14, Delta: 4},
}

// ProfileParams looks up the fixed coefficient tuple for name and wraps it
// into a CostParams carrying the requested rain flag. Returns false if the
// profile name is not recognised (§7 UnknownProfile).
func ProfileParams(name ProfileName, rainOn bool) (CostParams, bool) {
	coeffs, ok := profileTable[name]
	if !ok {
		return CostParams{}, false
	}
	return CostParams{
		Alpha:           coeffs.Alpha,
		Beta:            coeffs.Beta,
		Gamma:           coeffs.Gamma,
		Delta:           coeffs.Delta,
		RainOn:          rainOn,
		PcDMode:         name == ProfilePcD,
		TransferPenalty: DefaultTransferPenalty,
	}, true
}

// KnownProfiles returns the recognised profile names, in a stable order.
func KnownProfiles() []ProfileName {
	return []ProfileName{ProfileStandard, ProfileElderly, ProfilePcD}
}
