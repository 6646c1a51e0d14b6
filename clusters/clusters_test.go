package clusters_test

import (
	"math/rand"
	"testing"
	"time"

	"starlings/clusters"
	"starlings/models"

	"github.com/stretchr/testify/assert"
)

func post(id, city string, lat, lng float64, tags ...string) models.Post {
	return models.Post{
		Id:         id,
		Status:     models.StatusApproved,
		Country:    "Canada",
		City:       city,
		Lat:        lat,
		Lng:        lng,
		WhatHelped: tags,
	}
}

func TestAggregate(t *testing.T) {
	posts := []models.Post{
		post("1", "Toronto", 43.6532, -79.3832, "Therapy", "Boundaries"),
		post("2", "Toronto", 43.6532, -79.3832, "Therapy", "Peer support"),
		post("3", "Vancouver", 49.2827, -123.1207, "Support group"),
	}

	result := clusters.Aggregate(posts)
	if !assert.Len(t, result, 2) {
		return
	}

	toronto := result[0]
	assert.Equal(t, "Toronto||Canada", toronto.Id)
	assert.Equal(t, 2, toronto.Count)
	assert.Len(t, toronto.Posts, 2)
	assert.InDelta(t, 43.6532, toronto.Lat, 1e-9)
	assert.InDelta(t, -79.3832, toronto.Lng, 1e-9)
	// Therapy appears twice; the tie between Boundaries and Peer support
	// falls to first-seen order.
	assert.Equal(t, []string{"Therapy", "Boundaries", "Peer support"}, toronto.TopTags)

	vancouver := result[1]
	assert.Equal(t, 1, vancouver.Count)
	assert.Equal(t, []string{"Support group"}, vancouver.TopTags)
}

func TestAggregateCentroidIsRunningMean(t *testing.T) {
	posts := []models.Post{
		post("1", "Toronto", 43.0, -79.0),
		post("2", "Toronto", 44.0, -80.0),
		post("3", "Toronto", 45.0, -81.0),
	}

	result := clusters.Aggregate(posts)
	if assert.Len(t, result, 1) {
		assert.InDelta(t, 44.0, result[0].Lat, 1e-9)
		assert.InDelta(t, -80.0, result[0].Lng, 1e-9)
	}
}

func TestAggregateOrderInvariantCentroid(t *testing.T) {
	posts := []models.Post{
		post("1", "Toronto", 43.1, -79.1),
		post("2", "Toronto", 43.9, -79.5),
		post("3", "Toronto", 44.3, -80.2),
		post("4", "Vancouver", 49.2827, -123.1207),
	}

	base := clusters.Aggregate(posts)
	baseByID := map[string]models.CityCluster{}
	for _, c := range base {
		baseByID[c.Id] = c
	}

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]models.Post(nil), posts...)
		r.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		for _, c := range clusters.Aggregate(shuffled) {
			want := baseByID[c.Id]
			assert.InDelta(t, want.Lat, c.Lat, 1e-9)
			assert.InDelta(t, want.Lng, c.Lng, 1e-9)
			assert.Equal(t, want.Count, c.Count)
		}
	}
}

func TestAggregateCountsSumToInput(t *testing.T) {
	posts := []models.Post{
		post("1", "Toronto", 43.6532, -79.3832),
		post("2", "Toronto", 43.6532, -79.3832),
		post("3", "Vancouver", 49.2827, -123.1207),
		post("4", "Halifax", 44.6488, -63.5752),
	}

	total := 0
	for _, c := range clusters.Aggregate(posts) {
		total += c.Count
	}
	assert.Equal(t, len(posts), total)
}

func TestAggregateCaseSensitiveKeys(t *testing.T) {
	posts := []models.Post{
		post("1", "Toronto", 43.6532, -79.3832),
		post("2", "toronto", 43.6532, -79.3832),
	}

	assert.Len(t, clusters.Aggregate(posts), 2)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, clusters.Aggregate(nil))
}

func TestSortByCount(t *testing.T) {
	cs := clusters.Aggregate([]models.Post{
		post("1", "Vancouver", 49.2827, -123.1207),
		post("2", "Toronto", 43.6532, -79.3832),
		post("3", "Toronto", 43.6532, -79.3832),
	})

	clusters.SortByCount(cs)
	assert.Equal(t, "Toronto", cs[0].City)
	assert.Equal(t, "Vancouver", cs[1].City)
}

func TestSortByDistance(t *testing.T) {
	cs := clusters.Aggregate([]models.Post{
		post("1", "Vancouver", 49.2827, -123.1207),
		post("2", "Halifax", 44.6488, -63.5752),
		post("3", "Montreal", 45.5017, -73.5673),
	})

	// From Toronto, Montreal is nearest and Vancouver farthest.
	clusters.SortByDistance(cs, 43.6532, -79.3832)
	assert.Equal(t, "Montreal", cs[0].City)
	assert.Equal(t, "Halifax", cs[1].City)
	assert.Equal(t, "Vancouver", cs[2].City)
}

func TestSortByRecency(t *testing.T) {
	old := post("1", "Toronto", 43.6532, -79.3832)
	old.Timestamp = time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339)
	recent := post("2", "Vancouver", 49.2827, -123.1207)
	recent.Timestamp = time.Now().UTC().Format(time.RFC3339)

	cs := clusters.Aggregate([]models.Post{old, recent})
	clusters.SortByRecency(cs)
	assert.Equal(t, "Vancouver", cs[0].City)
}
