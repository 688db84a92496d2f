package downloader

import (
	"testing"
	"time"

	"github.com/seisworks/seisfetch/model"
)

func validRestrictions() Restrictions {
	return Restrictions{
		Start: time.Date(2023, 2, 6, 1, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 2, 6, 2, 0, 0, 0, time.UTC),
	}
}

func TestRestrictions_SanitizeDefaults(t *testing.T) {
	r, err := validRestrictions().Sanitize()
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if len(r.ChannelPriorities) != len(DefaultChannelPriorities) {
		t.Errorf("default priorities not applied: %v", r.ChannelPriorities)
	}
	if got := r.WindowSeconds(); got != 3600 {
		t.Errorf("WindowSeconds = %v, want 3600", got)
	}
}

func TestRestrictions_SanitizeRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Restrictions)
	}{
		{"missing times", func(r *Restrictions) { r.Start, r.End = time.Time{}, time.Time{} }},
		{"end before start", func(r *Restrictions) { r.Start, r.End = r.End, r.Start }},
		{"fraction above one", func(r *Restrictions) { r.MinimumLengthFraction = 1.5 }},
		{"negative distance", func(r *Restrictions) { r.MinimumInterstationDistanceM = -1 }},
		{"bad priority pattern", func(r *Restrictions) { r.ChannelPriorities = []string{"BH["} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validRestrictions()
			tc.mutate(&r)
			if _, err := r.Sanitize(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSelectChannels_PriorityPerStation(t *testing.T) {
	records := []model.Record{
		{Network: "XX", Station: "AAA", Channel: "BHZ"},
		{Network: "XX", Station: "AAA", Channel: "BHN"},
		{Network: "XX", Station: "AAA", Channel: "LHZ"},
		{Network: "XX", Station: "BBB", Channel: "LHZ"},
	}

	kept := selectChannels(records, DefaultChannelPriorities)
	if len(kept) != 3 {
		t.Fatalf("kept %d records, want 3: %+v", len(kept), kept)
	}
	if kept[0].Channel != "BHZ" || kept[1].Channel != "BHN" {
		t.Errorf("station AAA should keep only the BH band: %+v", kept[:2])
	}
	if kept[2].Station != "BBB" || kept[2].Channel != "LHZ" {
		t.Errorf("station BBB has no BH channels and must fall back to LH: %+v", kept[2])
	}
}

func TestSelectChannels_NoPriorityMatches(t *testing.T) {
	records := []model.Record{
		{Network: "XX", Station: "AAA", Channel: "VMZ"},
	}
	if kept := selectChannels(records, DefaultChannelPriorities); len(kept) != 0 {
		t.Fatalf("no priority matches VMZ, kept %+v", kept)
	}
}

func TestThinStations(t *testing.T) {
	records := []model.Record{
		{Network: "XX", Station: "AAA", Channel: "BHZ", Latitude: 0, Longitude: 0},
		{Network: "XX", Station: "AAA", Channel: "BHN", Latitude: 0, Longitude: 0},
		{Network: "XX", Station: "BBB", Channel: "BHZ", Latitude: 0, Longitude: 0.5},
		{Network: "XX", Station: "CCC", Channel: "BHZ", Latitude: 0, Longitude: 2},
	}

	// 111.19 km is one degree of great-circle arc; BBB sits half a degree
	// from AAA and must go, CCC at two degrees stays.
	kept := thinStations(records, 111_190)
	if len(kept) != 3 {
		t.Fatalf("kept %d records, want 3: %+v", len(kept), kept)
	}
	for _, rec := range kept {
		if rec.Station == "BBB" {
			t.Errorf("BBB is within the minimum distance of AAA and must be dropped")
		}
	}

	if got := thinStations(records, 0); len(got) != len(records) {
		t.Errorf("zero distance must keep everything, kept %d", len(got))
	}
}
