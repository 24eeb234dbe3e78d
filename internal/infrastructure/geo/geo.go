// Package geo implements the geofence used by duplicate detection on top of
// S2 cells: a report is indexed under the token of its level-16 cell, and a
// search radius is turned into the set of level-16 cells covering it.
package geo

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	EarthRadiusMeters = 6371008.8

	// CellLevel 16 cells are roughly 150m across, so a 50m cap is covered
	// by at most four of them.
	CellLevel = 16

	maxCoveringCells = 16
)

func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// DistanceMeters is the great-circle distance between two points.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	return a.Distance(b).Radians() * EarthRadiusMeters
}

// CellToken returns the token of the CellLevel cell containing the point.
func CellToken(lat, lon float64) string {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon)).Parent(CellLevel).ToToken()
}

// CoveringTokens returns the CellLevel cells intersecting a circle of
// radiusMeters around the point. The point's own cell is always included.
func CoveringTokens(lat, lon, radiusMeters float64) []string {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	capRegion := s2.CapFromCenterAngle(center, s1.Angle(radiusMeters/EarthRadiusMeters))

	coverer := &s2.RegionCoverer{
		MinLevel: CellLevel,
		MaxLevel: CellLevel,
		MaxCells: maxCoveringCells,
	}

	own := CellToken(lat, lon)
	tokens := []string{own}
	for _, id := range coverer.Covering(capRegion) {
		token := id.ToToken()
		if token != own {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
