package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/seisworks/seisfetch/model"
)

// Minimal QuakeML 1.2 shapes: only the parts needed to recover origins and
// magnitudes. QuakeML stores depth in metres; we convert to kilometres.
type quakeMLDocument struct {
	XMLName    xml.Name       `xml:"quakeml"`
	EventParas quakeMLEventPs `xml:"eventParameters"`
}

type quakeMLEventPs struct {
	Events []quakeMLEvent `xml:"event"`
}

type quakeMLEvent struct {
	PublicID          string             `xml:"publicID,attr"`
	PreferredOriginID string             `xml:"preferredOriginID"`
	Origins           []quakeMLOrigin    `xml:"origin"`
	Magnitudes        []quakeMLMagnitude `xml:"magnitude"`
}

type quakeMLOrigin struct {
	PublicID  string        `xml:"publicID,attr"`
	Time      quakeMLTime   `xml:"time"`
	Latitude  quakeMLScalar `xml:"latitude"`
	Longitude quakeMLScalar `xml:"longitude"`
	Depth     quakeMLScalar `xml:"depth"`
}

type quakeMLMagnitude struct {
	Mag  quakeMLScalar `xml:"mag"`
	Type string        `xml:"type"`
}

type quakeMLTime struct {
	Value string `xml:"value"`
}

type quakeMLScalar struct {
	Value float64 `xml:"value"`
}

// ReadQuakeML parses a QuakeML document into events. Events without any
// origin are skipped: there is nothing to plan requests around.
func ReadQuakeML(r io.Reader) ([]model.Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: read QuakeML: %w", err)
	}

	var doc quakeMLDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse QuakeML: %w", err)
	}

	var events []model.Event
	for _, qe := range doc.EventParas.Events {
		if len(qe.Origins) == 0 {
			continue
		}

		ev := model.Event{
			ID:              qe.PublicID,
			PreferredOrigin: 0,
		}
		for i, qo := range qe.Origins {
			when, err := parseQuakeMLTime(qo.Time.Value)
			if err != nil {
				return nil, fmt.Errorf("catalog: event %s: %w", qe.PublicID, err)
			}
			ev.Origins = append(ev.Origins, model.Origin{
				Time:      when,
				Latitude:  qo.Latitude.Value,
				Longitude: qo.Longitude.Value,
				DepthKm:   qo.Depth.Value / 1000.0,
			})
			if qe.PreferredOriginID != "" && qo.PublicID == qe.PreferredOriginID {
				ev.PreferredOrigin = i
			}
		}
		for _, qm := range qe.Magnitudes {
			ev.Magnitudes = append(ev.Magnitudes, model.Magnitude{
				Value: qm.Mag.Value,
				Type:  qm.Type,
			})
		}
		if ev.ID == "" {
			ev.ID = model.EventID(ev.Origins[0])
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseQuakeMLTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	// Some producers omit the timezone designator.
	if t, err := time.Parse("2006-01-02T15:04:05.999999", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable QuakeML time %q", s)
}
