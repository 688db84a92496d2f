// Package catalog reads event catalogs from structured files. Two formats
// are supported: a simple CSV listing (time, longitude, latitude, depth,
// magnitude) and QuakeML.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/seisworks/seisfetch/model"
)

// Read loads a catalog, choosing the parser by file extension.
func Read(path string) ([]model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".quakeml", ".xml":
		return ReadQuakeML(f)
	default:
		return nil, fmt.Errorf("catalog: unrecognized catalog format: %s", path)
	}
}

// csv column names, matched case-insensitively against the header row.
const (
	colTime      = "time"
	colLongitude = "longitude"
	colLatitude  = "latitude"
	colDepth     = "depth"
	colMagnitude = "magnitude"
)

// ReadCSV parses a CSV catalog. The file must carry a header row naming at
// least the time, longitude, latitude, depth, and magnitude columns; extra
// columns are ignored. Depth is in kilometres.
func ReadCSV(r io.Reader) ([]model.Event, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("catalog: read CSV header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colTime, colLongitude, colLatitude, colDepth, colMagnitude} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("catalog: CSV is missing column %q", required)
		}
	}

	var events []model.Event
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: read CSV line %d: %w", line, err)
		}

		when, err := parseTime(row[idx[colTime]])
		if err != nil {
			return nil, fmt.Errorf("catalog: CSV line %d: %w", line, err)
		}
		lon, err := parseFloat(row[idx[colLongitude]], colLongitude)
		if err != nil {
			return nil, fmt.Errorf("catalog: CSV line %d: %w", line, err)
		}
		lat, err := parseFloat(row[idx[colLatitude]], colLatitude)
		if err != nil {
			return nil, fmt.Errorf("catalog: CSV line %d: %w", line, err)
		}
		depth, err := parseFloat(row[idx[colDepth]], colDepth)
		if err != nil {
			return nil, fmt.Errorf("catalog: CSV line %d: %w", line, err)
		}
		mag, err := parseFloat(row[idx[colMagnitude]], colMagnitude)
		if err != nil {
			return nil, fmt.Errorf("catalog: CSV line %d: %w", line, err)
		}

		origin := model.Origin{
			Time:      when,
			Latitude:  lat,
			Longitude: lon,
			DepthKm:   depth,
		}
		events = append(events, model.Event{
			ID:              model.EventID(origin),
			Origins:         []model.Origin{origin},
			Magnitudes:      []model.Magnitude{{Value: mag}},
			PreferredOrigin: 0,
		})
	}
	return events, nil
}

// timeLayouts lists the timestamp formats accepted in CSV catalogs.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}

func parseFloat(s, column string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", column, s)
	}
	return v, nil
}
