package core

import (
	"time"

	"github.com/seisworks/seisfetch/model"
)

// WindowConfig controls how request windows are derived for one event.
//
// StartRefPhases and EndRefPhases must be both set or both empty. When both
// are empty the whole radius band gets a single window relative to the
// origin time. When both are set, the distance range is partitioned into
// annuli of RadiusStep degrees and every annulus gets its own window
// anchored on phase arrival times.
type WindowConfig struct {
	// MinRadius and MaxRadius bound the epicentral distance of requested
	// stations, in degrees.
	MinRadius float64
	MaxRadius float64

	// Reference phase lists passed to the travel-time lookup, e.g.
	// ["P"] or ["ttp"]. See the struct comment for their pairing rule.
	StartRefPhases []string
	EndRefPhases   []string

	// Offsets added to the derived start and end times. Negative start
	// offsets open the window before the reference arrival.
	StartOffset time.Duration
	EndOffset   time.Duration

	// RadiusStep is the annulus width in degrees for the phase-referenced
	// path. Must be positive there; unused otherwise.
	RadiusStep float64

	// ModelName names the travel-time model the lookup was built from,
	// e.g. "iasp91". Carried for logging and file naming; the planner
	// itself only talks to the TravelTimeLookup it was given.
	ModelName string

	// Providers restricts which datacenters the downloader should use.
	// Empty means all. The planner passes this through untouched.
	Providers []string
}

// RequestUnit pairs a geographic domain with the absolute time window to
// request for stations inside it. Units are handed to the downloader in
// ascending-distance order and are not retained by the planner.
type RequestUnit struct {
	Domain *GeoDomain
	Start  time.Time
	End    time.Time
}

// Planner turns an event origin plus a WindowConfig into an ordered plan of
// request units. It holds no per-call state; one Planner may serve
// concurrent callers as long as its TravelTimeLookup does.
type Planner struct {
	travelTimes TravelTimeLookup
}

// NewPlanner constructs a planner around the given travel-time lookup. The
// lookup may be nil if only non-phase-referenced plans will be requested.
func NewPlanner(tt TravelTimeLookup) *Planner {
	return &Planner{travelTimes: tt}
}

// Plan computes the request units for one event.
//
// An empty plan is valid output: it simply means no annulus overlaps the
// configured distance range, and the downloader has nothing to do. A failed
// travel-time lookup, by contrast, aborts the whole call - a window with an
// undefined boundary cannot be approximated safely.
func (p *Planner) Plan(origin model.Origin, cfg WindowConfig) ([]RequestUnit, error) {
	hasStart := len(cfg.StartRefPhases) > 0
	hasEnd := len(cfg.EndRefPhases) > 0

	if hasStart != hasEnd {
		return nil, &ConfigurationError{
			Reason: "StartRefPhases and EndRefPhases must be either both set or both unset",
		}
	}
	if cfg.MinRadius > 180 {
		return nil, &ConfigurationError{
			Reason: "MinRadius must not exceed 180 degrees",
		}
	}

	if !hasStart {
		// No reference phases: one window for the whole radius band,
		// relative to the origin time.
		unit := RequestUnit{
			Domain: NewCircularDomain(origin.Latitude, origin.Longitude,
				cfg.MinRadius, cfg.MaxRadius),
			Start: origin.Time.Add(cfg.StartOffset),
			End:   origin.Time.Add(cfg.EndOffset),
		}
		return []RequestUnit{unit}, nil
	}

	if cfg.RadiusStep <= 0 {
		return nil, &ConfigurationError{
			Reason: "RadiusStep must be positive when reference phases are set",
		}
	}

	var units []RequestUnit
	for i := 0; ; i++ {
		radius := float64(i) * cfg.RadiusStep
		if radius > 180 {
			break
		}
		// Annuli outside [MinRadius, MaxRadius] are dropped silently;
		// partial overlaps are clipped below. The comparisons are inclusive
		// so that a boundary-aligned annulus does not survive as a
		// zero-width band.
		if radius+cfg.RadiusStep <= cfg.MinRadius || radius >= cfg.MaxRadius {
			continue
		}

		lo := radius
		if lo < cfg.MinRadius {
			lo = cfg.MinRadius
		}
		hi := radius + cfg.RadiusStep
		if hi > cfg.MaxRadius {
			hi = cfg.MaxRadius
		}

		// The start window is anchored on the earliest matching arrival
		// at the inner edge; the end window on the latest matching
		// arrival at the outer edge. Taking the last arrival maximizes
		// coverage when the end phase list matches several branches.
		arrivals, err := p.travelTimes.TravelTimes(origin.DepthKm, lo, cfg.StartRefPhases)
		if err != nil {
			return nil, err
		}
		start := origin.Time.Add(secondsToDuration(arrivals[0].TimeSeconds)).Add(cfg.StartOffset)

		arrivals, err = p.travelTimes.TravelTimes(origin.DepthKm, hi, cfg.EndRefPhases)
		if err != nil {
			return nil, err
		}
		end := origin.Time.Add(secondsToDuration(arrivals[len(arrivals)-1].TimeSeconds)).Add(cfg.EndOffset)

		units = append(units, RequestUnit{
			Domain: NewCircularDomain(origin.Latitude, origin.Longitude, lo, hi),
			Start:  start,
			End:    end,
		})
	}

	return units, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
