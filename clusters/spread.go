package clusters

import (
	"math"

	"starlings/models"
)

// How far co-located markers are pushed apart, in degrees.
const spreadRadius = 0.02

// Spread nudges clusters that share exact coordinates apart on a circle
// so map markers don't stack. Clusters alone at their position are left
// untouched. The input is modified in place and returned.
func Spread(clusters []models.CityCluster) []models.CityCluster {
	type position struct{ lat, lng float64 }

	counts := make(map[position]int, len(clusters))
	for _, cluster := range clusters {
		counts[position{cluster.Lat, cluster.Lng}]++
	}

	seen := make(map[position]int, len(clusters))
	for i := range clusters {
		pos := position{clusters[i].Lat, clusters[i].Lng}
		total := counts[pos]
		if total < 2 {
			continue
		}
		index := seen[pos]
		seen[pos]++

		angle := float64(index) / float64(total) * 2 * math.Pi
		clusters[i].Lat = pos.lat + math.Sin(angle)*spreadRadius
		clusters[i].Lng = pos.lng + math.Cos(angle)*spreadRadius
	}

	return clusters
}
