package core

import "testing"

func TestQueryParameters_RectangleWinsOverCircle(t *testing.T) {
	d := NewGeoDomain(DomainSpec{
		MinLatitude:  Float(-10),
		MaxLatitude:  Float(10),
		MinLongitude: Float(100),
		MaxLongitude: Float(120),
		Latitude:     Float(0),
		Longitude:    Float(110),
		MinRadius:    Float(0),
		MaxRadius:    Float(30),
	})

	params := d.QueryParameters()
	if len(params) != 4 {
		t.Fatalf("expected 4 query parameters, got %d: %v", len(params), params)
	}
	if params["minlatitude"] != -10 || params["maxlatitude"] != 10 ||
		params["minlongitude"] != 100 || params["maxlongitude"] != 120 {
		t.Fatalf("rectangle should win the query parameters, got %v", params)
	}
}

func TestQueryParameters_CircleOnly(t *testing.T) {
	d := NewCircularDomain(45, -120, 5, 95)

	params := d.QueryParameters()
	if params["latitude"] != 45 || params["longitude"] != -120 ||
		params["minradius"] != 5 || params["maxradius"] != 95 {
		t.Fatalf("unexpected circle query parameters: %v", params)
	}
}

func TestQueryParameters_GlobalDomainEmpty(t *testing.T) {
	d := NewGeoDomain(DomainSpec{})
	if params := d.QueryParameters(); len(params) != 0 {
		t.Fatalf("global domain should have no query parameters, got %v", params)
	}
}

func TestIsInDomain_CombinedAppliesCirclePostFilter(t *testing.T) {
	// Rectangle spans a wide box, circle keeps only a 10-30 degree band
	// around the equator point (0, 0).
	d := NewGeoDomain(DomainSpec{
		MinLatitude:  Float(-60),
		MaxLatitude:  Float(60),
		MinLongitude: Float(-60),
		MaxLongitude: Float(60),
		Latitude:     Float(0),
		Longitude:    Float(0),
		MinRadius:    Float(10),
		MaxRadius:    Float(30),
	})

	cases := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"at center, below min radius", 0, 0, false},
		{"inside band", 0, 20, true},
		{"on outer edge", 0, 30, true},
		{"outside band but inside rectangle", 0, 45, false},
		{"inside band, outside rectangle", 0, -25, true},
	}
	for _, tc := range cases {
		if got := d.IsInDomain(tc.lat, tc.lon); got != tc.want {
			t.Errorf("%s: IsInDomain(%v, %v) = %v, want %v",
				tc.name, tc.lat, tc.lon, got, tc.want)
		}
	}
}

func TestIsInDomain_SingleBoundAlwaysTrue(t *testing.T) {
	circle := NewCircularDomain(0, 0, 10, 30)
	if !circle.IsInDomain(0, 170) {
		t.Errorf("circle-only domain must not re-validate: the query already applied it")
	}

	rect := NewGeoDomain(DomainSpec{
		MinLatitude:  Float(-1),
		MaxLatitude:  Float(1),
		MinLongitude: Float(-1),
		MaxLongitude: Float(1),
	})
	if !rect.IsInDomain(50, 50) {
		t.Errorf("rectangle-only domain must not re-validate")
	}

	global := NewGeoDomain(DomainSpec{})
	if !global.IsInDomain(-89, 13) {
		t.Errorf("global domain matches everywhere")
	}
}

func TestCircleAccessor(t *testing.T) {
	lat, lon, minRadius, maxRadius, ok := NewCircularDomain(45, -120, 5, 95).Circle()
	if !ok || lat != 45 || lon != -120 || minRadius != 5 || maxRadius != 95 {
		t.Errorf("Circle() = (%v, %v, %v, %v, %v)", lat, lon, minRadius, maxRadius, ok)
	}

	if _, _, _, _, ok := NewGeoDomain(DomainSpec{}).Circle(); ok {
		t.Errorf("domain without a circle must report ok=false")
	}
}

func TestNewGeoDomain_PartialBoundsAreDisabled(t *testing.T) {
	// Three of four rectangle fields: the rectangle is dropped, leaving a
	// circle-only domain. This permissiveness is deliberate.
	d := NewGeoDomain(DomainSpec{
		MinLatitude:  Float(-10),
		MaxLatitude:  Float(10),
		MinLongitude: Float(100),
		Latitude:     Float(0),
		Longitude:    Float(110),
		MinRadius:    Float(0),
		MaxRadius:    Float(30),
	})

	params := d.QueryParameters()
	if _, ok := params["minlatitude"]; ok {
		t.Fatalf("partial rectangle must be disabled, got %v", params)
	}
	if params["latitude"] != 0 || params["maxradius"] != 30 {
		t.Fatalf("circle should drive the query, got %v", params)
	}
	// With only the circle active there is no post-filter either.
	if !d.IsInDomain(0, 170) {
		t.Errorf("partial rectangle must not enable the post-filter")
	}

	// Partial circle alongside a full rectangle: rectangle-only domain.
	d = NewGeoDomain(DomainSpec{
		MinLatitude:  Float(-10),
		MaxLatitude:  Float(10),
		MinLongitude: Float(100),
		MaxLongitude: Float(120),
		Latitude:     Float(0),
		MinRadius:    Float(0),
	})
	if !d.IsInDomain(0, 170) {
		t.Errorf("partial circle must not enable the post-filter")
	}
}
