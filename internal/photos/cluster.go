package photos

import (
	"math"
	"sort"
	"time"
)

const metersPerMile = 1609.34

// Coord is a GPS position in decimal degrees.
type Coord struct {
	Lat float64
	Lng float64
}

func haversineMeters(a, b Coord) float64 {
	const earthRadiusM = 6371000.0

	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1)*math.Cos(lat2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceMiles is the great-circle distance between a and b.
func DistanceMiles(a, b Coord) float64 {
	return haversineMeters(a, b) / metersPerMile
}

// Cluster groups photos into jobs. Photos are ordered by capture time and a
// photo joins the running group when it was taken within maxGap of the
// previous one and, if both carry GPS, less than maxMiles away.
func Cluster(photos []*Photo, maxMiles float64, maxGap time.Duration) [][]*Photo {
	if len(photos) == 0 {
		return nil
	}
	sorted := make([]*Photo, len(photos))
	copy(sorted, photos)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TakenAt.Before(sorted[j].TakenAt) })

	near := func(a, b *Photo) bool {
		gap := a.TakenAt.Sub(b.TakenAt)
		if gap < 0 {
			gap = -gap
		}
		if gap > maxGap {
			return false
		}
		if a.GPS == nil || b.GPS == nil {
			return true
		}
		return DistanceMiles(*a.GPS, *b.GPS) < maxMiles
	}

	var groups [][]*Photo
	current := []*Photo{sorted[0]}
	for _, p := range sorted[1:] {
		if near(p, current[len(current)-1]) {
			current = append(current, p)
			continue
		}
		groups = append(groups, current)
		current = []*Photo{p}
	}
	return append(groups, current)
}
