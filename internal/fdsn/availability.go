package fdsn

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Extent describes the available data span of one channel as reported by
// the availability service.
type Extent struct {
	Network  string
	Station  string
	Location string
	Channel  string
	Earliest time.Time
	Latest   time.Time
}

// AvailabilityExtent queries the availability service for the data extents
// of the matching channels. Network and station accept comma lists and
// wildcards. A network or station may have operated for decades while the
// datacenter only holds part of that span; this is the span that is
// actually downloadable.
func (c *Client) AvailabilityExtent(ctx context.Context, root, network, station string) ([]Extent, error) {
	params := url.Values{}
	params.Set("net", network)
	params.Set("sta", station)
	params.Set("format", "request")

	body, err := c.get(ctx, fmt.Sprintf("%s/fdsnws/availability/1/extent", root), params)
	if err != nil {
		return nil, err
	}
	return parseAvailability(string(body))
}

// parseAvailability parses "request" format availability lines:
//
//	IU ANMO 00 BHZ 2002-11-19T21:07:00.000000Z 2024-01-01T00:00:00.000000Z
func parseAvailability(body string) ([]Extent, error) {
	var extents []Extent
	for lineNo, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 6 {
			return nil, fmt.Errorf("fdsn: availability line %d has %d fields, want 6", lineNo+1, len(fields))
		}
		earliest, err := parseServiceTime(fields[4])
		if err != nil {
			return nil, fmt.Errorf("fdsn: availability line %d: %w", lineNo+1, err)
		}
		latest, err := parseServiceTime(fields[5])
		if err != nil {
			return nil, fmt.Errorf("fdsn: availability line %d: %w", lineNo+1, err)
		}
		extents = append(extents, Extent{
			Network:  fields[0],
			Station:  fields[1],
			Location: normalizeLocation(fields[2]),
			Channel:  fields[3],
			Earliest: earliest,
			Latest:   latest,
		})
	}
	return extents, nil
}

// Span returns the union of all extents, i.e. the earliest and latest
// instant any of the channels has data for.
func Span(extents []Extent) (time.Time, time.Time, bool) {
	if len(extents) == 0 {
		return time.Time{}, time.Time{}, false
	}
	earliest, latest := extents[0].Earliest, extents[0].Latest
	for _, e := range extents[1:] {
		if e.Earliest.Before(earliest) {
			earliest = e.Earliest
		}
		if e.Latest.After(latest) {
			latest = e.Latest
		}
	}
	return earliest, latest, true
}

// normalizeLocation maps the "--" placeholder back to an empty location
// code.
func normalizeLocation(loc string) string {
	if loc == "--" {
		return ""
	}
	return loc
}
