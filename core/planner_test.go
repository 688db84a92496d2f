package core

import (
	"errors"
	"testing"
	"time"

	"github.com/seisworks/seisfetch/model"
)

// stubLookup computes arrivals from a function, mirroring how a travel-time
// table behaves without needing real model data.
type stubLookup struct {
	fn func(depthKm, distanceDeg float64, phases []string) ([]Arrival, error)
}

func (s stubLookup) TravelTimes(depthKm, distanceDeg float64, phases []string) ([]Arrival, error) {
	return s.fn(depthKm, distanceDeg, phases)
}

// linearLookup returns a single P arrival at 60s + 2s per degree, matching
// the stub values used throughout these tests.
func linearLookup() stubLookup {
	return stubLookup{fn: func(depth, dist float64, phases []string) ([]Arrival, error) {
		return []Arrival{{Phase: "P", TimeSeconds: 60 + 2*dist}}, nil
	}}
}

var testOrigin = model.Origin{
	Time:      time.Date(2023, 2, 6, 1, 17, 34, 0, time.UTC),
	Latitude:  10,
	Longitude: 20,
	DepthKm:   10,
}

func TestPlan_NoReferencePhases(t *testing.T) {
	p := NewPlanner(nil)
	cfg := WindowConfig{
		MinRadius:   0,
		MaxRadius:   90,
		StartOffset: -30 * time.Second,
		EndOffset:   1800 * time.Second,
	}

	units, err := p.Plan(testOrigin, cfg)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected exactly one request unit, got %d", len(units))
	}

	u := units[0]
	if !u.Start.Equal(testOrigin.Time.Add(-30 * time.Second)) {
		t.Errorf("start = %v, want origin-30s", u.Start)
	}
	if !u.End.Equal(testOrigin.Time.Add(1800 * time.Second)) {
		t.Errorf("end = %v, want origin+1800s", u.End)
	}
	params := u.Domain.QueryParameters()
	if params["latitude"] != 10 || params["longitude"] != 20 ||
		params["minradius"] != 0 || params["maxradius"] != 90 {
		t.Errorf("domain should be a pure circle with configured radii, got %v", params)
	}
}

func TestPlan_AnnulusCoverageFullRange(t *testing.T) {
	p := NewPlanner(linearLookup())
	cfg := WindowConfig{
		MinRadius:      0,
		MaxRadius:      180,
		StartRefPhases: []string{"P"},
		EndRefPhases:   []string{"P"},
		RadiusStep:     30,
	}

	units, err := p.Plan(testOrigin, cfg)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if len(units) != 6 {
		t.Fatalf("expected 6 annuli over [0,180] with step 30, got %d", len(units))
	}
	for i, u := range units {
		params := u.Domain.QueryParameters()
		wantLo := float64(i) * 30
		wantHi := wantLo + 30
		if params["minradius"] != wantLo || params["maxradius"] != wantHi {
			t.Errorf("annulus %d = [%v, %v], want [%v, %v]",
				i, params["minradius"], params["maxradius"], wantLo, wantHi)
		}
	}
}

func TestPlan_RangeRestrictionSkipsAndClips(t *testing.T) {
	p := NewPlanner(linearLookup())
	cfg := WindowConfig{
		MinRadius:      40,
		MaxRadius:      70,
		StartRefPhases: []string{"P"},
		EndRefPhases:   []string{"P"},
		RadiusStep:     30,
	}

	units, err := p.Plan(testOrigin, cfg)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	// Candidate annuli are [30,60] and [60,90]; [0,30] ends below 40 and
	// [90,120] starts above 70, so both are dropped. The survivors get
	// clipped to [40,60] and [60,70].
	if len(units) != 2 {
		t.Fatalf("expected 2 clipped annuli, got %d", len(units))
	}
	first := units[0].Domain.QueryParameters()
	if first["minradius"] != 40 || first["maxradius"] != 60 {
		t.Errorf("first annulus = [%v, %v], want [40, 60]",
			first["minradius"], first["maxradius"])
	}
	last := units[1].Domain.QueryParameters()
	if last["minradius"] != 60 || last["maxradius"] != 70 {
		t.Errorf("last annulus = [%v, %v], want [60, 70]",
			last["minradius"], last["maxradius"])
	}
}

func TestPlan_PhaseReferencedScenario(t *testing.T) {
	p := NewPlanner(linearLookup())
	cfg := WindowConfig{
		MinRadius:      0,
		MaxRadius:      90,
		StartRefPhases: []string{"P"},
		EndRefPhases:   []string{"P"},
		StartOffset:    -10 * time.Second,
		EndOffset:      30 * time.Second,
		RadiusStep:     30,
	}

	units, err := p.Plan(testOrigin, cfg)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if len(units) != 3 {
		t.Fatalf("expected 3 request units, got %d", len(units))
	}

	t0 := testOrigin.Time
	want := []struct {
		start, end time.Time
		lo, hi     float64
	}{
		{t0.Add(50 * time.Second), t0.Add(150 * time.Second), 0, 30},
		{t0.Add(110 * time.Second), t0.Add(210 * time.Second), 30, 60},
		{t0.Add(170 * time.Second), t0.Add(270 * time.Second), 60, 90},
	}
	for i, w := range want {
		u := units[i]
		if !u.Start.Equal(w.start) || !u.End.Equal(w.end) {
			t.Errorf("unit %d window = [%v, %v], want [%v, %v]",
				i, u.Start, u.End, w.start, w.end)
		}
		params := u.Domain.QueryParameters()
		if params["minradius"] != w.lo || params["maxradius"] != w.hi {
			t.Errorf("unit %d band = [%v, %v], want [%v, %v]",
				i, params["minradius"], params["maxradius"], w.lo, w.hi)
		}
	}
}

func TestPlan_EndUsesLastArrival(t *testing.T) {
	// Two arrivals per lookup: the start boundary must use the first,
	// the end boundary the last.
	lookup := stubLookup{fn: func(depth, dist float64, phases []string) ([]Arrival, error) {
		return []Arrival{
			{Phase: "P", TimeSeconds: 100},
			{Phase: "PP", TimeSeconds: 250},
		}, nil
	}}
	p := NewPlanner(lookup)
	cfg := WindowConfig{
		MinRadius:      0,
		MaxRadius:      30,
		StartRefPhases: []string{"P", "PP"},
		EndRefPhases:   []string{"P", "PP"},
		RadiusStep:     30,
	}

	units, err := p.Plan(testOrigin, cfg)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if !units[0].Start.Equal(testOrigin.Time.Add(100 * time.Second)) {
		t.Errorf("start should anchor on the first arrival, got %v", units[0].Start)
	}
	if !units[0].End.Equal(testOrigin.Time.Add(250 * time.Second)) {
		t.Errorf("end should anchor on the last arrival, got %v", units[0].End)
	}
}

func TestPlan_MixedReferencePhasesRejected(t *testing.T) {
	p := NewPlanner(linearLookup())

	for _, cfg := range []WindowConfig{
		{MaxRadius: 90, StartRefPhases: []string{"P"}, RadiusStep: 30},
		{MaxRadius: 90, EndRefPhases: []string{"S"}, RadiusStep: 30},
	} {
		_, err := p.Plan(testOrigin, cfg)
		var cerr *ConfigurationError
		if !errors.As(err, &cerr) {
			t.Errorf("config %+v: got %v, want ConfigurationError", cfg, err)
		}
	}
}

func TestPlan_InvalidRadiusConfigRejected(t *testing.T) {
	p := NewPlanner(linearLookup())

	_, err := p.Plan(testOrigin, WindowConfig{MinRadius: 181, MaxRadius: 181})
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Errorf("MinRadius > 180: got %v, want ConfigurationError", err)
	}

	_, err = p.Plan(testOrigin, WindowConfig{
		MaxRadius:      90,
		StartRefPhases: []string{"P"},
		EndRefPhases:   []string{"P"},
		RadiusStep:     0,
	})
	if !errors.As(err, &cerr) {
		t.Errorf("non-positive RadiusStep: got %v, want ConfigurationError", err)
	}
}

func TestPlan_EmptyPlanIsNotAnError(t *testing.T) {
	p := NewPlanner(linearLookup())
	cfg := WindowConfig{
		MinRadius:      120,
		MaxRadius:      100,
		StartRefPhases: []string{"P"},
		EndRefPhases:   []string{"P"},
		RadiusStep:     30,
	}

	units, err := p.Plan(testOrigin, cfg)
	if err != nil {
		t.Fatalf("inverted radius range should yield an empty plan, got error %v", err)
	}
	if len(units) != 0 {
		t.Fatalf("expected empty plan, got %d units", len(units))
	}
}

func TestPlan_LookupFailurePropagates(t *testing.T) {
	// Fail at the outer edge of the second annulus only.
	lookup := stubLookup{fn: func(depth, dist float64, phases []string) ([]Arrival, error) {
		if dist == 60 {
			return nil, &PhaseNotFoundError{DepthKm: depth, DistanceDeg: dist, Phases: phases}
		}
		return []Arrival{{Phase: "P", TimeSeconds: 60 + 2*dist}}, nil
	}}
	p := NewPlanner(lookup)
	cfg := WindowConfig{
		MinRadius:      0,
		MaxRadius:      90,
		StartRefPhases: []string{"P"},
		EndRefPhases:   []string{"P"},
		RadiusStep:     30,
	}

	units, err := p.Plan(testOrigin, cfg)
	var perr *PhaseNotFoundError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want PhaseNotFoundError", err)
	}
	if units != nil {
		t.Fatalf("failed plan must produce no output, got %d units", len(units))
	}
}
