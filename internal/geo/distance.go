// File: internal/geo/distance.go
package geo

import "math"

const earthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance in kilometers between a
// reference point and a listing's coordinates. It returns nil when the
// listing coordinates are missing.
func HaversineKM(lat1, lon1 float64, lat2, lon2 *float64) *float64 {
	if lat2 == nil || lon2 == nil {
		return nil
	}

	rLat1 := degToRad(lat1)
	rLon1 := degToRad(lon1)
	rLat2 := degToRad(*lat2)
	rLon2 := degToRad(*lon2)

	dLat := rLat2 - rLat1
	dLon := rLon2 - rLon1

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Pow(math.Sin(dLon/2), 2)
	d := 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
	return &d
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
