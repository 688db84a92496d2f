package fdsn

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/seisworks/seisfetch/model"
)

// FedcatalogURL is the IRIS federator endpoint that routes a channel query
// across all registered FDSN datacenters.
const FedcatalogURL = "https://service.iris.edu/irisws/fedcatalog/1/query"

// Route is the slice of a federated response belonging to one datacenter:
// its service endpoints plus the request lines it can serve.
type Route struct {
	Datacenter    string
	StationURL    string
	DataselectURL string
	Records       []model.Record
}

// RoutingQuery restricts the federated channel search.
type RoutingQuery struct {
	Network  string
	Station  string
	Location string
	Channel  string
	Start    string // service timestamp, e.g. 2011-03-11T05:00:00
	End      string

	// IncludeProviders keeps only the named datacenters; empty keeps all.
	// ExcludeProviders then removes datacenters from that set.
	IncludeProviders []string
	ExcludeProviders []string
}

// AvailableChannels asks the federator which datacenters hold the matching
// channels and returns one Route per datacenter, after applying the
// provider include/exclude filters. It fails when the filters leave nothing
// to download.
func (c *Client) AvailableChannels(ctx context.Context, endpoint string, q RoutingQuery) ([]Route, error) {
	if endpoint == "" {
		endpoint = FedcatalogURL
	}

	params := url.Values{}
	params.Set("format", "request")
	if q.Network != "" {
		params.Set("net", q.Network)
	}
	if q.Station != "" {
		params.Set("sta", q.Station)
	}
	if q.Location != "" {
		params.Set("loc", q.Location)
	}
	if q.Channel != "" {
		params.Set("cha", q.Channel)
	}
	if q.Start != "" {
		params.Set("starttime", q.Start)
	}
	if q.End != "" {
		params.Set("endtime", q.End)
	}

	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	routes, err := ParseRoutingResponse(string(body))
	if err != nil {
		return nil, err
	}

	routes = filterRoutes(routes, q.IncludeProviders, q.ExcludeProviders)
	if len(routes) == 0 {
		return nil, fmt.Errorf("fdsn: nothing remains to download after the provider inclusion/exclusion filters have been applied")
	}
	return routes, nil
}

// ParseRoutingResponse splits a fedcatalog "request" format response into
// per-datacenter routes. Sections open with a DATACENTER= line, followed by
// *SERVICE= lines and then plain request lines:
//
//	DATACENTER=IRISDMC,http://ds.iris.edu
//	STATIONSERVICE=http://service.iris.edu/fdsnws/station/1/
//	DATASELECTSERVICE=http://service.iris.edu/fdsnws/dataselect/1/
//	IU ANMO 00 BHZ 2011-03-11T05:00:00.000000 2011-03-11T07:00:00.000000
func ParseRoutingResponse(body string) ([]Route, error) {
	var routes []Route
	var current *Route

	for lineNo, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "DATACENTER="):
			if current != nil {
				routes = append(routes, *current)
			}
			name := strings.TrimPrefix(line, "DATACENTER=")
			if i := strings.Index(name, ","); i >= 0 {
				name = name[:i]
			}
			current = &Route{Datacenter: name}

		case strings.Contains(line, "SERVICE="):
			if current == nil {
				return nil, fmt.Errorf("fdsn: routing line %d: service before any DATACENTER", lineNo+1)
			}
			key, value, _ := strings.Cut(line, "=")
			switch key {
			case "STATIONSERVICE":
				current.StationURL = value
			case "DATASELECTSERVICE":
				current.DataselectURL = value
			}
			// other services (availability, event) are not needed here

		default:
			if current == nil {
				return nil, fmt.Errorf("fdsn: routing line %d: request line before any DATACENTER", lineNo+1)
			}
			rec, err := parseRequestLine(line)
			if err != nil {
				return nil, fmt.Errorf("fdsn: routing line %d: %w", lineNo+1, err)
			}
			current.Records = append(current.Records, rec)
		}
	}
	if current != nil {
		routes = append(routes, *current)
	}
	return routes, nil
}

func parseRequestLine(line string) (model.Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return model.Record{}, fmt.Errorf("request line has %d fields, want 6", len(fields))
	}
	start, err := parseServiceTime(fields[4])
	if err != nil {
		return model.Record{}, err
	}
	end, err := parseServiceTime(fields[5])
	if err != nil {
		return model.Record{}, err
	}
	return model.Record{
		Network:  fields[0],
		Station:  fields[1],
		Location: normalizeLocation(fields[2]),
		Channel:  fields[3],
		Start:    start,
		End:      end,
	}, nil
}

// AttachCoordinates fills station coordinates into the routed records from
// channel metadata, keyed by NET.STA. Records without a matching station
// keep Located == false and can be skipped by geometric post-filters.
func AttachCoordinates(routes []Route, channels []model.Channel) {
	coords := make(map[string]model.Channel, len(channels))
	for _, ch := range channels {
		coords[ch.StationKey()] = ch
	}
	for i := range routes {
		for j := range routes[i].Records {
			rec := &routes[i].Records[j]
			if ch, ok := coords[rec.Network+"."+rec.Station]; ok {
				rec.Latitude = ch.Latitude
				rec.Longitude = ch.Longitude
				rec.Located = true
			}
		}
	}
}

func filterRoutes(routes []Route, include, exclude []string) []Route {
	keep := routes
	if len(include) > 0 {
		keep = nil
		for _, r := range routes {
			if containsFold(include, r.Datacenter) {
				keep = append(keep, r)
			}
		}
	}
	if len(exclude) > 0 {
		var filtered []Route
		for _, r := range keep {
			if !containsFold(exclude, r.Datacenter) {
				filtered = append(filtered, r)
			}
		}
		keep = filtered
	}
	return keep
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
