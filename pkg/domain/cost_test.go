package domain

import "testing"

func TestProfileParams_KnownProfiles(t *testing.T) {
	for _, name := range KnownProfiles() {
		p, ok := ProfileParams(name, false)
		if !ok {
			t.Fatalf("expected profile %q to be known", name)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("profile %q produced invalid params: %v", name, err)
		}
	}
}

func TestProfileParams_Unknown(t *testing.T) {
	if _, ok := ProfileParams("tourist", false); ok {
		t.Fatal("expected unknown profile to return ok=false")
	}
}

func TestProfileParams_PcDHasLargerBarrierCoefficients(t *testing.T) {
	standard, _ := ProfileParams(ProfileStandard, false)
	pcd, _ := ProfileParams(ProfilePcD, false)

	if pcd.Beta <= standard.Beta {
		t.Errorf("expected pcd.Beta > standard.Beta, got %v vs %v", pcd.Beta, standard.Beta)
	}
	if pcd.Gamma <= standard.Gamma {
		t.Errorf("expected pcd.Gamma > standard.Gamma, got %v vs %v", pcd.Gamma, standard.Gamma)
	}
	if !pcd.PcDMode {
		t.Error("expected pcd profile to set PcDMode")
	}
	if standard.PcDMode {
		t.Error("did not expect standard profile to set PcDMode")
	}
}

func TestCostParams_Validate_RejectsNegative(t *testing.T) {
	p := CostParams{Alpha: -1}
	if err := p.Validate(); err == nil {
		t.Fatal("expected negative alpha to be rejected")
	}
}

func TestCostParams_Cost(t *testing.T) {
	p, _ := ProfileParams(ProfileStandard, true)

	plain := Edge{TimeMin: 5}
	if got := p.Cost(plain); got != p.Alpha*5 {
		t.Errorf("expected plain edge cost %v, got %v", p.Alpha*5, got)
	}

	transfer := Edge{TimeMin: 5, Transfer: true}
	if got := p.Cost(transfer); got != p.Alpha*5+p.TransferPenalty {
		t.Errorf("expected transfer surcharge applied, got %v", got)
	}

	flood := Edge{TimeMin: 5, FloodRisk: true}
	if got := p.Cost(flood); got != p.Alpha*5+p.Delta {
		t.Errorf("expected flood_risk surcharge when rain is on, got %v", got)
	}

	dry, _ := ProfileParams(ProfileStandard, false)
	if got := dry.Cost(flood); got != dry.Alpha*5 {
		t.Errorf("did not expect flood_risk surcharge when rain is off, got %v", got)
	}

	pcd, _ := ProfileParams(ProfilePcD, false)
	stairs := Edge{TimeMin: 5, Stairs: true}
	if got := pcd.Cost(stairs); got != pcd.Alpha*5+pcd.Beta {
		t.Errorf("expected stairs surcharge for pcd profile, got %v", got)
	}

	standard, _ := ProfileParams(ProfileStandard, false)
	if got := standard.Cost(stairs); got != standard.Alpha*5 {
		t.Errorf("did not expect stairs surcharge for standard profile, got %v", got)
	}
}
