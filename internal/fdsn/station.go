package fdsn

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seisworks/seisfetch/model"
)

// StationQuery describes a channel-level station metadata request.
type StationQuery struct {
	// Domain holds the geographic constraints exactly as produced by
	// core.GeoDomain.QueryParameters().
	Domain map[string]float64

	// SEED code constraints; empty means no constraint. Comma-separated
	// lists and wildcards pass through to the service untouched.
	Network  string
	Station  string
	Location string
	Channel  string

	// Channels must overlap [Start, End) to be returned.
	Start time.Time
	End   time.Time
}

// Channels queries the station service of the datacenter rooted at root and
// returns the matching channel epochs.
func (c *Client) Channels(ctx context.Context, root string, q StationQuery) ([]model.Channel, error) {
	return c.channels(ctx, serviceURL(root, "station"), q)
}

func (c *Client) channels(ctx context.Context, endpoint string, q StationQuery) ([]model.Channel, error) {
	params := url.Values{}
	params.Set("level", "channel")
	params.Set("format", "text")
	for k, v := range q.Domain {
		params.Set(k, strconv.FormatFloat(v, 'f', -1, 64))
	}
	if q.Network != "" {
		params.Set("network", q.Network)
	}
	if q.Station != "" {
		params.Set("station", q.Station)
	}
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	if q.Channel != "" {
		params.Set("channel", q.Channel)
	}
	if !q.Start.IsZero() {
		params.Set("starttime", q.Start.UTC().Format("2006-01-02T15:04:05"))
	}
	if !q.End.IsZero() {
		params.Set("endtime", q.End.UTC().Format("2006-01-02T15:04:05"))
	}

	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return ParseStationText(string(body))
}

// ChannelsFromService is Channels against a full station service URL, as
// handed out by the routing service.
func (c *Client) ChannelsFromService(ctx context.Context, stationURL string, q StationQuery) ([]model.Channel, error) {
	return c.channels(ctx, queryURL(stationURL), q)
}

// StationXML fetches response-level StationXML for one station, as saved
// alongside the waveforms.
func (c *Client) StationXML(ctx context.Context, root, network, station string) ([]byte, error) {
	return c.stationXML(ctx, serviceURL(root, "station"), network, station)
}

// StationXMLFromService is StationXML against a full station service URL.
func (c *Client) StationXMLFromService(ctx context.Context, stationURL, network, station string) ([]byte, error) {
	return c.stationXML(ctx, queryURL(stationURL), network, station)
}

func (c *Client) stationXML(ctx context.Context, endpoint, network, station string) ([]byte, error) {
	params := url.Values{}
	params.Set("network", network)
	params.Set("station", station)
	params.Set("level", "response")
	return c.get(ctx, endpoint, params)
}

// ParseStationText parses the FDSN station text format at channel level:
// pipe-separated columns with '#' comment lines, e.g.
//
//	#Network|Station|Location|Channel|Latitude|Longitude|Elevation|Depth|...
//	IU|ANMO|00|BHZ|34.9459|-106.4572|1850.0|100.0|...
func ParseStationText(body string) ([]model.Channel, error) {
	var channels []model.Channel
	for lineNo, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) < 16 {
			return nil, fmt.Errorf("fdsn: station text line %d has %d fields, want >= 16", lineNo+1, len(fields))
		}

		lat, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("fdsn: station text line %d: bad latitude %q", lineNo+1, fields[4])
		}
		lon, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, fmt.Errorf("fdsn: station text line %d: bad longitude %q", lineNo+1, fields[5])
		}
		elev, _ := strconv.ParseFloat(fields[6], 64)
		depth, _ := strconv.ParseFloat(fields[7], 64)

		start, err := parseServiceTime(fields[15])
		if err != nil {
			return nil, fmt.Errorf("fdsn: station text line %d: %w", lineNo+1, err)
		}
		var end time.Time
		if len(fields) > 16 && strings.TrimSpace(fields[16]) != "" {
			end, err = parseServiceTime(fields[16])
			if err != nil {
				return nil, fmt.Errorf("fdsn: station text line %d: %w", lineNo+1, err)
			}
		}

		channels = append(channels, model.Channel{
			Network:   fields[0],
			Station:   fields[1],
			Location:  fields[2],
			Code:      fields[3],
			Latitude:  lat,
			Longitude: lon,
			ElevM:     elev,
			DepthM:    depth,
			Start:     start,
			End:       end,
		})
	}
	return channels, nil
}

// serviceTimeLayouts covers the timestamp spellings FDSN services emit.
var serviceTimeLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05.999999Z",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

func parseServiceTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range serviceTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable service time %q", s)
}
