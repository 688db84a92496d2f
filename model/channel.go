package model

import "time"

// Channel describes one seismic channel epoch as reported by the FDSN
// station service at channel level.
type Channel struct {
	Network   string
	Station   string
	Location  string
	Code      string // channel code, e.g. "BHZ"
	Latitude  float64
	Longitude float64
	ElevM     float64
	DepthM    float64
	Start     time.Time
	End       time.Time // zero when the epoch is open
}

// StationKey identifies the station a channel belongs to, e.g. "IU.ANMO".
func (c Channel) StationKey() string {
	return c.Network + "." + c.Station
}

// SEEDID returns the full NET.STA.LOC.CHA identifier.
func (c Channel) SEEDID() string {
	return c.Network + "." + c.Station + "." + c.Location + "." + c.Code
}
