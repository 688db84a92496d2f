package core

// GeoDomain is a geographic station selection that may combine a rectangular
// bound with a circular bound. The rectangle, when present, is expressed as
// server-side query parameters; the circle is then re-applied client side as
// a post-filter, because FDSN station queries accept only one shape at a
// time.
//
// Possible configurations:
//
//  1. rectangle only: fully expressed by QueryParameters()
//  2. circle only: fully expressed by QueryParameters()
//  3. rectangle and circle: rectangle via QueryParameters(), circle via
//     IsInDomain()
//  4. neither: global domain, matches everywhere
type GeoDomain struct {
	minLatitude  float64
	maxLatitude  float64
	minLongitude float64
	maxLongitude float64

	latitude  float64
	longitude float64
	minRadius float64
	maxRadius float64

	hasRectangle bool
	hasCircle    bool
}

// DomainSpec lists the optional bounds of a GeoDomain. A bound only takes
// effect when all four of its fields are set; partial bounds are silently
// ignored rather than rejected.
type DomainSpec struct {
	MinLatitude  *float64
	MaxLatitude  *float64
	MinLongitude *float64
	MaxLongitude *float64

	Latitude  *float64
	Longitude *float64
	MinRadius *float64
	MaxRadius *float64
}

// Float is a convenience helper for building DomainSpec literals.
func Float(v float64) *float64 { return &v }

// NewGeoDomain builds a domain from the given spec. Construction never
// fails: presence flags are derived once, here, from the all-or-nothing
// field check.
func NewGeoDomain(spec DomainSpec) *GeoDomain {
	d := &GeoDomain{}

	if spec.MinLatitude != nil && spec.MaxLatitude != nil &&
		spec.MinLongitude != nil && spec.MaxLongitude != nil {
		d.hasRectangle = true
		d.minLatitude = *spec.MinLatitude
		d.maxLatitude = *spec.MaxLatitude
		d.minLongitude = *spec.MinLongitude
		d.maxLongitude = *spec.MaxLongitude
	}

	if spec.Latitude != nil && spec.Longitude != nil &&
		spec.MinRadius != nil && spec.MaxRadius != nil {
		d.hasCircle = true
		d.latitude = *spec.Latitude
		d.longitude = *spec.Longitude
		d.minRadius = *spec.MinRadius
		d.maxRadius = *spec.MaxRadius
	}

	return d
}

// NewCircularDomain builds a circle-only domain around a center point with
// the given radius band in degrees.
func NewCircularDomain(lat, lon, minRadius, maxRadius float64) *GeoDomain {
	return NewGeoDomain(DomainSpec{
		Latitude:  Float(lat),
		Longitude: Float(lon),
		MinRadius: Float(minRadius),
		MaxRadius: Float(maxRadius),
	})
}

// Circle returns the circular bound when one is configured, for callers
// that need to rebuild a domain with extra constraints added.
func (d *GeoDomain) Circle() (lat, lon, minRadius, maxRadius float64, ok bool) {
	if !d.hasCircle {
		return 0, 0, 0, 0, false
	}
	return d.latitude, d.longitude, d.minRadius, d.maxRadius, true
}

// QueryParameters returns the geographic constraints to place on the
// server-side station query. The rectangle wins when both bounds are
// configured; a domain without bounds returns an empty map (global search).
func (d *GeoDomain) QueryParameters() map[string]float64 {
	if d.hasRectangle {
		return map[string]float64{
			"minlatitude":  d.minLatitude,
			"maxlatitude":  d.maxLatitude,
			"minlongitude": d.minLongitude,
			"maxlongitude": d.maxLongitude,
		}
	}
	if d.hasCircle {
		return map[string]float64{
			"latitude":  d.latitude,
			"longitude": d.longitude,
			"minradius": d.minRadius,
			"maxradius": d.maxRadius,
		}
	}
	return map[string]float64{}
}

// IsInDomain reports whether a station at (lat, lon) belongs to the domain.
//
// Only the rectangle+circle combination needs a client-side check: the
// rectangle was already enforced by the query, so this re-applies the
// circular band the query could not express. In every other configuration
// the server query (or the absence of any constraint) is already sufficient
// and the answer is unconditionally true.
func (d *GeoDomain) IsInDomain(lat, lon float64) bool {
	if d.hasRectangle && d.hasCircle {
		dist := GreatCircleDeg(d.latitude, d.longitude, lat, lon)
		return d.minRadius <= dist && dist <= d.maxRadius
	}
	return true
}
