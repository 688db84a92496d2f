package taup

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/seisworks/seisfetch/core"
)

func mustDefaultModel(t *testing.T) *Model {
	t.Helper()
	m, err := Default()
	if err != nil {
		t.Fatalf("Default model: %v", err)
	}
	return m
}

func TestTravelTimes_GridPoint(t *testing.T) {
	m := mustDefaultModel(t)

	arrivals, err := m.TravelTimes(0, 30, []string{"P"})
	if err != nil {
		t.Fatalf("TravelTimes: %v", err)
	}
	if len(arrivals) != 1 || arrivals[0].Phase != "P" {
		t.Fatalf("unexpected arrivals: %#v", arrivals)
	}
	if math.Abs(arrivals[0].TimeSeconds-372) > 0.5 {
		t.Errorf("P at 30 deg = %.1f s, want ~372", arrivals[0].TimeSeconds)
	}
}

func TestTravelTimes_InterpolatesBetweenGridPoints(t *testing.T) {
	m := mustDefaultModel(t)

	at30, _ := m.TravelTimes(0, 30, []string{"P"})
	at40, _ := m.TravelTimes(0, 40, []string{"P"})
	mid, err := m.TravelTimes(0, 35, []string{"P"})
	if err != nil {
		t.Fatalf("TravelTimes: %v", err)
	}

	want := (at30[0].TimeSeconds + at40[0].TimeSeconds) / 2
	if math.Abs(mid[0].TimeSeconds-want) > 1e-9 {
		t.Errorf("midpoint = %.2f, want %.2f", mid[0].TimeSeconds, want)
	}
}

func TestTravelTimes_DeeperSourceArrivesEarlier(t *testing.T) {
	m := mustDefaultModel(t)

	shallow, _ := m.TravelTimes(10, 60, []string{"P"})
	deep, err := m.TravelTimes(500, 60, []string{"P"})
	if err != nil {
		t.Fatalf("TravelTimes: %v", err)
	}
	if deep[0].TimeSeconds >= shallow[0].TimeSeconds {
		t.Errorf("deep source (%.1f s) should arrive before shallow (%.1f s)",
			deep[0].TimeSeconds, shallow[0].TimeSeconds)
	}
}

func TestTravelTimes_ShadowZone(t *testing.T) {
	m := mustDefaultModel(t)

	// Direct P does not arrive around 120 deg.
	_, err := m.TravelTimes(10, 120, []string{"P"})
	var perr *core.PhaseNotFoundError
	if !errors.As(err, &perr) {
		t.Fatalf("P in shadow zone: got %v, want PhaseNotFoundError", err)
	}
	if !strings.Contains(perr.Error(), "120") {
		t.Errorf("error should name the distance: %v", perr)
	}

	// The ttp alias falls back to core phases at the same distance.
	arrivals, err := m.TravelTimes(10, 120, []string{"ttp"})
	if err != nil {
		t.Fatalf("ttp in shadow zone: %v", err)
	}
	if len(arrivals) == 0 {
		t.Fatalf("ttp should produce diffracted or core arrivals at 120 deg")
	}
}

func TestTravelTimes_ArrivalsSortedByTime(t *testing.T) {
	m := mustDefaultModel(t)

	arrivals, err := m.TravelTimes(10, 60, []string{"S", "P"})
	if err != nil {
		t.Fatalf("TravelTimes: %v", err)
	}
	if len(arrivals) != 2 {
		t.Fatalf("expected P and S, got %#v", arrivals)
	}
	if arrivals[0].Phase != "P" || arrivals[1].Phase != "S" {
		t.Errorf("arrivals must be time-ordered, got %#v", arrivals)
	}
}

func TestTravelTimes_UnknownPhase(t *testing.T) {
	m := mustDefaultModel(t)

	_, err := m.TravelTimes(10, 60, []string{"ScS"})
	var perr *core.PhaseNotFoundError
	if !errors.As(err, &perr) {
		t.Fatalf("unknown phase: got %v, want PhaseNotFoundError", err)
	}
}

func TestTravelTimes_InputValidation(t *testing.T) {
	m := mustDefaultModel(t)

	if _, err := m.TravelTimes(-1, 60, []string{"P"}); err == nil {
		t.Errorf("negative depth should be rejected")
	}
	if _, err := m.TravelTimes(10, 181, []string{"P"}); err == nil {
		t.Errorf("distance beyond 180 should be rejected")
	}
}

func TestLoad_RejectsMalformedTables(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no name", `{"tables": []}`},
		{"empty phase", `{"name": "x", "tables": [{"phase": "", "depths": [0, 10], "distances": [0, 10], "times": [[0, 1], [0, 1]]}]}`},
		{"row mismatch", `{"name": "x", "tables": [{"phase": "P", "depths": [0, 10], "distances": [0, 10], "times": [[0, 1]]}]}`},
		{"cell mismatch", `{"name": "x", "tables": [{"phase": "P", "depths": [0, 10], "distances": [0, 10], "times": [[0], [0]]}]}`},
	}
	for _, tc := range cases {
		if _, err := Load(strings.NewReader(tc.body)); err == nil {
			t.Errorf("%s: expected load error", tc.name)
		}
	}
}

func TestLoad_SmallModel(t *testing.T) {
	body := `{
		"name": "toy",
		"aliases": {"tt": ["X"]},
		"tables": [{
			"phase": "X",
			"depths": [0, 100],
			"distances": [0, 90],
			"times": [[0, 900], [10, 890]]
		}]
	}`
	m, err := Load(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name() != "toy" {
		t.Errorf("Name = %q, want toy", m.Name())
	}
	arrivals, err := m.TravelTimes(50, 45, []string{"tt"})
	if err != nil {
		t.Fatalf("TravelTimes: %v", err)
	}
	// Bilinear midpoint of the four corners.
	if math.Abs(arrivals[0].TimeSeconds-450) > 1e-9 {
		t.Errorf("interpolated time = %v, want 450", arrivals[0].TimeSeconds)
	}
}
