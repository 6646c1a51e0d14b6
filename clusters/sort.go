package clusters

import (
	"sort"

	"starlings/gazetteer"
	"starlings/models"
)

// SortByCount orders clusters largest first. Ties keep their relative
// order.
func SortByCount(clusters []models.CityCluster) {
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Count > clusters[j].Count
	})
}

// SortByDistance orders clusters nearest to the given point first.
func SortByDistance(clusters []models.CityCluster, lat, lng float64) {
	sort.SliceStable(clusters, func(i, j int) bool {
		di := gazetteer.Distance(lat, lng, clusters[i].Lat, clusters[i].Lng)
		dj := gazetteer.Distance(lat, lng, clusters[j].Lat, clusters[j].Lng)
		return di < dj
	})
}

// SortByRecency orders clusters by their newest post, newest first.
func SortByRecency(clusters []models.CityCluster) {
	newest := func(c models.CityCluster) int64 {
		var max int64
		for _, post := range c.Posts {
			if ts := post.CreatedAt().Unix(); ts > max {
				max = ts
			}
		}
		return max
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		return newest(clusters[i]) > newest(clusters[j])
	})
}
