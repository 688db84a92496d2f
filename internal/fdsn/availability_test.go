package fdsn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseAvailability(t *testing.T) {
	body := `IM TX31 -- BHZ 2004-09-30T18:07:06.000000Z 2010-01-01T00:00:00.000000Z
IM TX32 -- BHZ 2002-11-19T21:07:00.000000Z 2024-06-01T12:30:00.000000Z
`
	extents, err := parseAvailability(body)
	if err != nil {
		t.Fatalf("parseAvailability: %v", err)
	}
	if len(extents) != 2 {
		t.Fatalf("expected 2 extents, got %d", len(extents))
	}
	if extents[0].Station != "TX31" || extents[0].Location != "" {
		t.Errorf("unexpected extent: %+v", extents[0])
	}
	if extents[0].Earliest.Year() != 2004 || extents[1].Latest.Year() != 2024 {
		t.Errorf("unexpected extent times: %+v", extents)
	}
}

func TestParseAvailability_Malformed(t *testing.T) {
	if _, err := parseAvailability("IM TX31 -- BHZ 2004-09-30T18:07:06\n"); err == nil {
		t.Fatalf("expected error for 5-field line")
	}
}

func TestSpan(t *testing.T) {
	extents := []Extent{
		{Earliest: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), Latest: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Earliest: time.Date(2002, 1, 1, 0, 0, 0, 0, time.UTC), Latest: time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	earliest, latest, ok := Span(extents)
	if !ok {
		t.Fatalf("Span reported no extents")
	}
	if earliest.Year() != 2002 || latest.Year() != 2015 {
		t.Errorf("Span = [%v, %v]", earliest, latest)
	}

	if _, _, ok := Span(nil); ok {
		t.Errorf("empty extent list must report ok=false")
	}
}

func TestAvailabilityExtent_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fdsnws/availability/1/extent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("net") != "IM" || r.URL.Query().Get("sta") != "TX*" {
			t.Errorf("query not passed through: %v", r.URL.Query())
		}
		w.Write([]byte(`IM TX31 -- BHZ 2004-09-30T18:07:06.000000Z 2010-01-01T00:00:00.000000Z` + "\n"))
	}))
	defer srv.Close()

	c := NewClient()
	extents, err := c.AvailabilityExtent(context.Background(), srv.URL, "IM", "TX*")
	if err != nil {
		t.Fatalf("AvailabilityExtent: %v", err)
	}
	if len(extents) != 1 || extents[0].Channel != "BHZ" {
		t.Fatalf("unexpected extents: %+v", extents)
	}
}
