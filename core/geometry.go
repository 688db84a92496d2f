package core

import "math"

// EarthRadiusKm is the mean Earth radius used for all great-circle
// calculations in the planning layer (kilometres).
const EarthRadiusKm = 6371.0

// degPerKm converts a surface distance in kilometres to degrees of arc on
// the mean-radius sphere.
const degPerKm = 180.0 / (math.Pi * EarthRadiusKm)

// KilometersToDegrees converts a distance along the surface to degrees of
// epicentral distance.
func KilometersToDegrees(km float64) float64 {
	return km * degPerKm
}

// DegreesToKilometers converts degrees of epicentral distance to a surface
// distance in kilometres.
func DegreesToKilometers(deg float64) float64 {
	return deg / degPerKm
}

// GreatCircleDeg returns the angular distance in degrees between two
// geographic points.
//
// It uses the haversine formula on a sphere of mean Earth radius. FDSN
// services resolve radius constraints on similar spherical approximations;
// the disagreement with ellipsoidal formulas (< ~0.3%) is far below the
// radius steps used for windowing, so post-filter decisions stay stable.
func GreatCircleDeg(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180.0

	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lon2 - lon1) * degToRad

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return c / degToRad
}
