package service

import (
	"math"
	"sort"

	"github.com/petwell/petwell/internal/model"
)

const (
	earthRadiusKm = 6371

	defaultNearbyLimit = 5
	maxNearbyLimit     = 25
)

// HaversineKm is the great-circle distance between two coordinates. Both the
// context assembler and the nearby-services tool rank with this exact
// formula, so results agree wherever they appear.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	return earthRadiusKm * math.Acos(
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Cos((lng2-lng1)*rad)+
			math.Sin(lat1*rad)*math.Sin(lat2*rad))
}

// RankByDistance sorts services ascending by distance from the query point,
// keeping catalog order for equal distances, and caps the result.
func RankByDistance(services []model.ServiceLocation, lat, lng float64, limit int) []model.RankedService {
	if limit <= 0 {
		limit = defaultNearbyLimit
	}
	if limit > maxNearbyLimit {
		limit = maxNearbyLimit
	}
	ranked := make([]model.RankedService, 0, len(services))
	for _, svc := range services {
		ranked = append(ranked, model.RankedService{
			ServiceLocation: svc,
			DistanceKm:      HaversineKm(lat, lng, svc.Lat, svc.Lng),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
