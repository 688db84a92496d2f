package model

import (
	"fmt"
	"time"
)

// RequestTimeLayout is the timestamp format used on FDSN "request" format
// lines (dataselect bulk requests and fedcatalog responses).
const RequestTimeLayout = "2006-01-02T15:04:05.000000"

// Record is one line of an FDSN request: a channel plus the time span to
// fetch. Latitude/Longitude are filled in later from station metadata and
// are only meaningful when Located is true.
type Record struct {
	Network   string
	Station   string
	Location  string
	Channel   string
	Start     time.Time
	End       time.Time
	Latitude  float64
	Longitude float64
	Located   bool
}

// String renders the record as an FDSN request line. Empty location codes
// are written as "--" per the dataselect convention.
func (r Record) String() string {
	loc := r.Location
	if loc == "" {
		loc = "--"
	}
	return fmt.Sprintf("%s %s %s %s %s %s",
		r.Network, r.Station, loc, r.Channel,
		r.Start.UTC().Format(RequestTimeLayout),
		r.End.UTC().Format(RequestTimeLayout),
	)
}
