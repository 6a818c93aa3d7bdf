// Package geo holds the approximate proximity math used for event discovery.
//
// Distances are converted to degrees with a flat 111 km per degree on both
// axes. That over-includes along longitude away from the equator and near the
// poles; it is an accepted approximation, not a geodesic search.
package geo

import "math"

// KmPerDegree approximates one degree of latitude in kilometres.
const KmPerDegree = 111.0

// DefaultRadiusKm is used when a caller supplies no radius.
const DefaultRadiusKm = 10.0

// Box is an inclusive latitude/longitude rectangle.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoxAround returns the square box of half-width radiusKm/KmPerDegree degrees
// centred on (lat, lng). The box is not clamped or wrapped at the poles or
// the antimeridian.
func BoxAround(lat, lng, radiusKm float64) Box {
	delta := radiusKm / KmPerDegree
	return Box{
		MinLat: lat - delta,
		MaxLat: lat + delta,
		MinLng: lng - delta,
		MaxLng: lng + delta,
	}
}

// Contains reports whether (lat, lng) lies inside b, edges included.
func (b Box) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lng >= b.MinLng && lng <= b.MaxLng
}

// ValidLat reports whether lat is a finite latitude in [-90, 90].
func ValidLat(lat float64) bool {
	return finite(lat) && lat >= -90 && lat <= 90
}

// ValidLng reports whether lng is a finite longitude in [-180, 180].
func ValidLng(lng float64) bool {
	return finite(lng) && lng >= -180 && lng <= 180
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
