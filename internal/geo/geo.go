// Package geo implements great-circle distance on a spherical Earth.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// kmPerDegreeLat is the arc length of one degree of latitude on the same sphere.
const kmPerDegreeLat = EarthRadiusKm * math.Pi / 180

type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Valid reports whether the point is inside the usual degree ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the haversine distance between a and b in kilometers.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := lat2 - lat1
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h a hair above 1 for antipodal points
	h = math.Min(1, h)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// LatitudeBand returns the latitude interval that can hold any point within
// radiusKm of origin. Longitude is left unbounded so the band stays correct
// near the poles and the antimeridian.
func LatitudeBand(origin Point, radiusKm float64) (minLat, maxLat float64) {
	delta := radiusKm / kmPerDegreeLat
	return math.Max(-90, origin.Lat-delta), math.Min(90, origin.Lat+delta)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
