// Package geo centralises the geospatial helpers used by the Requery
// Decision, Ranker, and idempotency-key bucketing: haversine distance via
// orb/geo and H3 cell bucketing via uber/h3-go.
package geo

import (
	"github.com/paulmach/orb"
	geodist "github.com/paulmach/orb/geo"
	"github.com/uber/h3-go/v4"
)

// BucketResolution is the fixed H3 resolution used for the "same location
// bucket" comparisons (~300 m cells at resolution 9).
const BucketResolution = 9

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(a, b orb.Point) float64 {
	return geodist.Distance(a, b)
}

// Bucket returns the canonical H3 cell index for a point at BucketResolution
// — two coordinates in the same cell never force a hard-context provider
// call by proximity alone, and the cell index is stable under GPS jitter.
func Bucket(p orb.Point) h3.Cell {
	return h3.LatLngToCell(h3.LatLng{Lat: p[1], Lng: p[0]}, BucketResolution)
}

// SameBucket reports whether two points fall in the same H3 cell.
func SameBucket(a, b orb.Point) bool {
	return Bucket(a) == Bucket(b)
}

// RadiusDeltaFraction returns |next-prev|/prev, the fractional change in
// radius used by the >50% hard-context rule. A zero or negative prev radius
// returns 1, which exceeds that threshold, so it always counts as hard.
func RadiusDeltaFraction(prev, next float64) float64 {
	if prev <= 0 {
		return 1
	}
	delta := next - prev
	if delta < 0 {
		delta = -delta
	}
	return delta / prev
}
