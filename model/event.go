package model

import "time"

// Origin is an event hypocenter: where and when an earthquake happened.
// Depth is in kilometres below the surface.
type Origin struct {
	Time      time.Time
	Latitude  float64
	Longitude float64
	DepthKm   float64
}

// Magnitude is a single magnitude estimate for an event.
type Magnitude struct {
	Value float64
	Type  string // e.g. "Mw", "mb"; may be empty
}

// Event is one catalog entry. Origins[0] is the preferred origin when
// PreferredOrigin is negative.
type Event struct {
	ID              string
	Origins         []Origin
	Magnitudes      []Magnitude
	PreferredOrigin int
}

// PreferredOriginOrFirst returns the preferred origin, falling back to the
// first one. The second return value is false when the event has no origin.
func (e Event) PreferredOriginOrFirst() (Origin, bool) {
	if len(e.Origins) == 0 {
		return Origin{}, false
	}
	if e.PreferredOrigin >= 0 && e.PreferredOrigin < len(e.Origins) {
		return e.Origins[e.PreferredOrigin], true
	}
	return e.Origins[0], true
}

// EventID derives a compact event identifier from the origin time. It is used
// to group downloaded files on disk.
func EventID(o Origin) string {
	return o.Time.UTC().Format("20060102150405")
}
