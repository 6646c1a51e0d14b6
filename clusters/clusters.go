package clusters

import (
	"sort"

	"starlings/models"
)

const topTagCount = 3

// Aggregate groups posts into one cluster per city. The cluster id is
// the city||country composite key, matched case-sensitively; "toronto"
// and "Toronto" form separate clusters, as the upstream data is trusted
// to be canonical. The centroid is the running mean of the member
// coordinates, so input order does not change the result.
func Aggregate(posts []models.Post) []models.CityCluster {
	index := make(map[string]int, len(posts))
	clusters := make([]models.CityCluster, 0, len(posts))
	tagCounts := make([]map[string]int, 0, len(posts))
	tagOrder := make([][]string, 0, len(posts))

	for _, post := range posts {
		key := post.City + "||" + post.Country

		at, seen := index[key]
		if !seen {
			at = len(clusters)
			index[key] = at
			clusters = append(clusters, models.CityCluster{
				Id:      key,
				City:    post.City,
				Country: post.Country,
			})
			tagCounts = append(tagCounts, map[string]int{})
			tagOrder = append(tagOrder, nil)
		}

		cluster := &clusters[at]
		cluster.Count++
		n := float64(cluster.Count)
		cluster.Lat = (cluster.Lat*(n-1) + post.Lat) / n
		cluster.Lng = (cluster.Lng*(n-1) + post.Lng) / n
		cluster.Posts = append(cluster.Posts, post)

		for _, tag := range post.WhatHelped {
			if tagCounts[at][tag] == 0 {
				tagOrder[at] = append(tagOrder[at], tag)
			}
			tagCounts[at][tag]++
		}
	}

	for i := range clusters {
		clusters[i].TopTags = topTags(tagCounts[i], tagOrder[i])
	}

	return clusters
}

// topTags ranks tags by frequency, breaking ties by first-seen order.
func topTags(counts map[string]int, order []string) []string {
	ranked := append([]string(nil), order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > topTagCount {
		ranked = ranked[:topTagCount]
	}
	return ranked
}
