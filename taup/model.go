// Package taup provides a table-driven travel-time model implementing
// core.TravelTimeLookup. Travel times are bilinearly interpolated from
// precomputed (source depth x epicentral distance) grids, one grid per
// seismic phase, with absent cells marking distances where the phase does
// not arrive (e.g. direct P inside the core shadow zone).
package taup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"

	_ "embed"

	"github.com/seisworks/seisfetch/core"
)

//go:embed data/iasp91.json
var iasp91JSON []byte

// table is the interpolation grid for one phase. Times is depth-major;
// NaN entries mean the phase has no arrival at that grid point.
type table struct {
	phase     string
	depths    []float64
	distances []float64
	times     [][]float64
}

// Model is a set of phase travel-time tables plus group aliases such as
// "ttp" (any first-arriving P-type phase). A Model is immutable after Load
// and safe for concurrent lookups.
type Model struct {
	name    string
	tables  map[string]*table
	aliases map[string][]string
}

// JSON wire shapes. Missing cells are encoded as null.
type modelJSON struct {
	Name    string              `json:"name"`
	Aliases map[string][]string `json:"aliases"`
	Tables  []tableJSON         `json:"tables"`
}

type tableJSON struct {
	Phase     string       `json:"phase"`
	Depths    []float64    `json:"depths"`
	Distances []float64    `json:"distances"`
	Times     [][]*float64 `json:"times"`
}

// Load reads a travel-time model from JSON.
func Load(r io.Reader) (*Model, error) {
	var payload modelJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("taup: decode model: %w", err)
	}
	if payload.Name == "" {
		return nil, fmt.Errorf("taup: model has no name")
	}

	m := &Model{
		name:    payload.Name,
		tables:  make(map[string]*table, len(payload.Tables)),
		aliases: payload.Aliases,
	}
	for _, tj := range payload.Tables {
		if tj.Phase == "" {
			return nil, fmt.Errorf("taup: model %q: table with empty phase", payload.Name)
		}
		if len(tj.Depths) < 2 || len(tj.Distances) < 2 {
			return nil, fmt.Errorf("taup: model %q, phase %q: grid needs at least 2 depths and 2 distances",
				payload.Name, tj.Phase)
		}
		if len(tj.Times) != len(tj.Depths) {
			return nil, fmt.Errorf("taup: model %q, phase %q: %d time rows for %d depths",
				payload.Name, tj.Phase, len(tj.Times), len(tj.Depths))
		}

		tb := &table{
			phase:     tj.Phase,
			depths:    tj.Depths,
			distances: tj.Distances,
			times:     make([][]float64, len(tj.Times)),
		}
		for i, row := range tj.Times {
			if len(row) != len(tj.Distances) {
				return nil, fmt.Errorf("taup: model %q, phase %q: row %d has %d cells for %d distances",
					payload.Name, tj.Phase, i, len(row), len(tj.Distances))
			}
			cells := make([]float64, len(row))
			for j, v := range row {
				if v == nil {
					cells[j] = math.NaN()
				} else {
					cells[j] = *v
				}
			}
			tb.times[i] = cells
		}
		m.tables[tj.Phase] = tb
	}
	return m, nil
}

var (
	defaultOnce  sync.Once
	defaultModel *Model
	defaultErr   error
)

// Default returns the embedded iasp91-flavoured model. The embedded data is
// parsed once; subsequent calls return the same instance.
func Default() (*Model, error) {
	defaultOnce.Do(func() {
		defaultModel, defaultErr = Load(bytes.NewReader(iasp91JSON))
	})
	return defaultModel, defaultErr
}

// Name returns the model name, e.g. "iasp91".
func (m *Model) Name() string { return m.name }

// TravelTimes implements core.TravelTimeLookup. Group aliases in the phase
// list are expanded before lookup, and the returned arrivals are sorted by
// ascending travel time. When none of the phases arrives it returns a
// *core.PhaseNotFoundError.
func (m *Model) TravelTimes(depthKm, distanceDeg float64, phases []string) ([]core.Arrival, error) {
	if depthKm < 0 {
		return nil, fmt.Errorf("taup: negative source depth %.1f km", depthKm)
	}
	if distanceDeg < 0 || distanceDeg > 180 {
		return nil, fmt.Errorf("taup: distance %.2f deg outside [0, 180]", distanceDeg)
	}

	var arrivals []core.Arrival
	for _, phase := range m.expand(phases) {
		tb, ok := m.tables[phase]
		if !ok {
			continue
		}
		t, ok := tb.interpolate(depthKm, distanceDeg)
		if !ok {
			continue
		}
		arrivals = append(arrivals, core.Arrival{Phase: phase, TimeSeconds: t})
	}
	if len(arrivals) == 0 {
		return nil, &core.PhaseNotFoundError{
			DepthKm:     depthKm,
			DistanceDeg: distanceDeg,
			Phases:      phases,
		}
	}

	sort.Slice(arrivals, func(i, j int) bool {
		return arrivals[i].TimeSeconds < arrivals[j].TimeSeconds
	})
	return arrivals, nil
}

// expand replaces group aliases with their member phases, preserving order
// and dropping duplicates.
func (m *Model) expand(phases []string) []string {
	out := make([]string, 0, len(phases))
	seen := make(map[string]bool, len(phases))
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range phases {
		if members, ok := m.aliases[p]; ok {
			for _, mp := range members {
				add(mp)
			}
			continue
		}
		add(p)
	}
	return out
}

// interpolate returns the bilinearly interpolated travel time at (depth,
// distance), or false when the surrounding grid cells include a gap or the
// depth falls outside the table.
func (tb *table) interpolate(depthKm, distanceDeg float64) (float64, bool) {
	i, fd, ok := bracket(tb.depths, depthKm)
	if !ok {
		return 0, false
	}
	j, fx, ok := bracket(tb.distances, distanceDeg)
	if !ok {
		return 0, false
	}

	t00 := tb.times[i][j]
	t01 := tb.times[i][j+1]
	t10 := tb.times[i+1][j]
	t11 := tb.times[i+1][j+1]
	if math.IsNaN(t00) || math.IsNaN(t01) || math.IsNaN(t10) || math.IsNaN(t11) {
		return 0, false
	}

	top := t00 + (t01-t00)*fx
	bottom := t10 + (t11-t10)*fx
	return top + (bottom-top)*fd, true
}

// bracket finds the interval of a sorted axis containing v and the
// fractional position of v inside it.
func bracket(axis []float64, v float64) (int, float64, bool) {
	if v < axis[0] || v > axis[len(axis)-1] {
		return 0, 0, false
	}
	for i := 0; i < len(axis)-1; i++ {
		if v <= axis[i+1] {
			width := axis[i+1] - axis[i]
			if width == 0 {
				return i, 0, true
			}
			return i, (v - axis[i]) / width, true
		}
	}
	return 0, 0, false
}
