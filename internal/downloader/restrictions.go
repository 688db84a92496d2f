// Package downloader turns one planned request unit into files on disk:
// it routes the channel query across datacenters, post-filters stations
// against the geographic domain, selects channels by priority, thins
// stations that sit too close together, and fetches the surviving records
// through a bounded worker pool.
package downloader

import (
	"fmt"
	"path"
	"time"

	"github.com/seisworks/seisfetch/core"
	"github.com/seisworks/seisfetch/model"
)

// DefaultChannelPriorities orders channel patterns from most to least
// preferred band. The first pattern that matches any of a station's
// channels wins for that station.
var DefaultChannelPriorities = []string{
	"HH[ZNE12]",
	"BH[ZNE12]",
	"MH[ZNE12]",
	"EH[ZNE12]",
	"LH[ZNE12]",
}

// Restrictions bound what a download batch is allowed to fetch.
type Restrictions struct {
	// Time window of the request unit.
	Start time.Time
	End   time.Time

	// SEED code constraints passed through to the routing query; empty
	// means unrestricted. Wildcards and comma lists are allowed.
	Network  string
	Station  string
	Location string
	Channel  string

	// ChannelPriorities selects one channel band per station; patterns use
	// shell-style wildcards, e.g. "BH[ZNE12]" or "BH?". Empty falls back
	// to DefaultChannelPriorities.
	ChannelPriorities []string

	// RejectChannelsWithGaps asks the service for only the longest
	// continuous segment, dropping gappy channels server-side.
	RejectChannelsWithGaps bool

	// MinimumLengthFraction rejects segments shorter than this fraction of
	// the requested window, in [0, 1]. Zero disables the check.
	MinimumLengthFraction float64

	// MinimumInterstationDistanceM drops stations closer than this to an
	// already accepted station. Zero keeps everything.
	MinimumInterstationDistanceM float64

	// Provider filters forwarded to the routing query.
	IncludeProviders []string
	ExcludeProviders []string
}

// Sanitize validates the restrictions and fills defaults.
func (r Restrictions) Sanitize() (Restrictions, error) {
	if r.Start.IsZero() || r.End.IsZero() {
		return r, fmt.Errorf("downloader: restrictions need both start and end times")
	}
	if !r.End.After(r.Start) {
		return r, fmt.Errorf("downloader: restriction end %v is not after start %v", r.End, r.Start)
	}
	if r.MinimumLengthFraction < 0 || r.MinimumLengthFraction > 1 {
		return r, fmt.Errorf("downloader: minimum length fraction %v outside [0, 1]", r.MinimumLengthFraction)
	}
	if r.MinimumInterstationDistanceM < 0 {
		return r, fmt.Errorf("downloader: negative interstation distance %v", r.MinimumInterstationDistanceM)
	}
	if len(r.ChannelPriorities) == 0 {
		r.ChannelPriorities = DefaultChannelPriorities
	}
	for _, p := range r.ChannelPriorities {
		if _, err := path.Match(p, "XXX"); err != nil {
			return r, fmt.Errorf("downloader: bad channel priority pattern %q: %w", p, err)
		}
	}
	return r, nil
}

// WindowSeconds is the length of the requested window.
func (r Restrictions) WindowSeconds() float64 {
	return r.End.Sub(r.Start).Seconds()
}

// selectChannels keeps, per station, only the records matching the first
// priority pattern that matches anything at that station. Record order is
// preserved.
func selectChannels(records []model.Record, priorities []string) []model.Record {
	byStation := make(map[string][]model.Record)
	var order []string
	for _, rec := range records {
		key := rec.Network + "." + rec.Station
		if _, seen := byStation[key]; !seen {
			order = append(order, key)
		}
		byStation[key] = append(byStation[key], rec)
	}

	var kept []model.Record
	for _, key := range order {
		for _, pattern := range priorities {
			var matched []model.Record
			for _, rec := range byStation[key] {
				if ok, _ := path.Match(pattern, rec.Channel); ok {
					matched = append(matched, rec)
				}
			}
			if len(matched) > 0 {
				kept = append(kept, matched...)
				break
			}
		}
	}
	return kept
}

// thinStations drops records from stations closer than minDistanceM to an
// already accepted station. Stations are considered in first-appearance
// order, so earlier stations win ties.
func thinStations(records []model.Record, minDistanceM float64) []model.Record {
	if minDistanceM <= 0 {
		return records
	}
	minDeg := core.KilometersToDegrees(minDistanceM / 1000)

	type site struct{ lat, lon float64 }
	accepted := make(map[string]site)
	var keptSites []site

	var kept []model.Record
	for _, rec := range records {
		key := rec.Network + "." + rec.Station
		if _, ok := accepted[key]; ok {
			kept = append(kept, rec)
			continue
		}

		tooClose := false
		for _, s := range keptSites {
			if core.GreatCircleDeg(rec.Latitude, rec.Longitude, s.lat, s.lon) < minDeg {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		accepted[key] = site{rec.Latitude, rec.Longitude}
		keptSites = append(keptSites, site{rec.Latitude, rec.Longitude})
		kept = append(kept, rec)
	}
	return kept
}
