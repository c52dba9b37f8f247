// Package geo holds the spherical-earth helpers used for zone geofencing and
// flight position interpolation. Inputs and outputs are in degrees.
package geo

import "math"

// EarthRadiusKm is the mean earth radius used for all distances.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Haversine returns the central angle between a and b in radians.
func Haversine(a, b Point) float64 {
	lat1, lon1 := radians(a.Lat), radians(a.Lon)
	lat2, lon2 := radians(b.Lat), radians(b.Lon)
	sinDLat := math.Sin((lat2 - lat1) / 2)
	sinDLon := math.Sin((lon2 - lon1) / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return 2 * math.Asin(math.Min(1, math.Sqrt(h)))
}

// DistanceKm returns the great-circle distance between a and b.
func DistanceKm(a, b Point) float64 {
	return Haversine(a, b) * EarthRadiusKm
}

// Interpolate returns the point at fraction progress along the great circle
// from origin to destination. progress is clamped to [0, 1]; coincident
// endpoints yield origin.
func Interpolate(origin, destination Point, progress float64) Point {
	delta := Haversine(origin, destination)
	if delta == 0 || math.IsNaN(delta) {
		return origin
	}
	t := math.Min(1, math.Max(0, progress))

	lat1, lon1 := radians(origin.Lat), radians(origin.Lon)
	lat2, lon2 := radians(destination.Lat), radians(destination.Lon)
	sinDelta := math.Sin(delta)
	a := math.Sin((1-t)*delta) / sinDelta
	b := math.Sin(t*delta) / sinDelta

	x := a*math.Cos(lat1)*math.Cos(lon1) + b*math.Cos(lat2)*math.Cos(lon2)
	y := a*math.Cos(lat1)*math.Sin(lon1) + b*math.Cos(lat2)*math.Sin(lon2)
	z := a*math.Sin(lat1) + b*math.Sin(lat2)

	return Point{
		Lat: degrees(math.Atan2(z, math.Sqrt(x*x+y*y))),
		Lon: degrees(math.Atan2(y, x)),
	}
}

// InCircle reports whether p lies within radiusKm of center, boundary included.
func InCircle(p, center Point, radiusKm float64) bool {
	return DistanceKm(p, center) <= radiusKm
}

// Centroid is the arithmetic mean of the points' coordinates. It is not
// geodesically exact and only meant for clusters a few hundred km across.
func Centroid(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	var c Point
	for _, p := range points {
		c.Lat += p.Lat
		c.Lon += p.Lon
	}
	n := float64(len(points))
	return Point{Lat: c.Lat / n, Lon: c.Lon / n}, true
}
