package core

import (
	"fmt"
	"strings"
)

// Arrival is a single predicted phase arrival: the named phase and its
// travel time from the origin in seconds.
type Arrival struct {
	Phase       string
	TimeSeconds float64
}

// TravelTimeLookup predicts phase arrivals for a source depth and an
// epicentral distance. Implementations must return arrivals sorted by
// ascending travel time, so the first entry is the earliest matching phase
// and the last entry the latest. Implementations must be safe for
// concurrent use; lookups are pure functions of their inputs.
type TravelTimeLookup interface {
	// TravelTimes returns the arrivals at distanceDeg for the listed
	// phases. depthKm is the source depth in kilometres. When none of the
	// phases arrives at that depth/distance it returns a
	// *PhaseNotFoundError.
	TravelTimes(depthKm, distanceDeg float64, phases []string) ([]Arrival, error)
}

// PhaseNotFoundError reports that a travel-time lookup produced no arrival
// for any of the requested phases, e.g. a direct P query inside the core
// shadow zone.
type PhaseNotFoundError struct {
	DepthKm     float64
	DistanceDeg float64
	Phases      []string
}

func (e *PhaseNotFoundError) Error() string {
	return fmt.Sprintf("no arrival for phases [%s] at depth %.1f km, distance %.2f deg",
		strings.Join(e.Phases, ", "), e.DepthKm, e.DistanceDeg)
}

// ConfigurationError reports a malformed WindowConfig. It is raised before
// any travel-time lookup happens and is fatal to the call.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid window config: " + e.Reason
}
