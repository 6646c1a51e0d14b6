package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"starlings/gazetteer"
	"starlings/models"
	"starlings/posts"
	"starlings/resolver"
	"starlings/server"

	"github.com/stretchr/testify/assert"
)

type stubFetcher struct {
	posts []models.Post
}

func (s *stubFetcher) FetchApproved(ctx context.Context) ([]models.Post, error) {
	return s.posts, nil
}

type stubSubmitter struct {
	result models.SubmitResult
	err    error
	last   models.Post
}

func (s *stubSubmitter) Submit(ctx context.Context, post models.Post) (models.SubmitResult, error) {
	s.last = post
	return s.result, s.err
}

func feedPost(id, city string, lat, lng float64, message string) models.Post {
	return models.Post{
		Id:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    models.StatusApproved,
		Country:   "Canada",
		City:      city,
		Lat:       lat,
		Lng:       lng,
		Message:   message,
		Alias:     "Quiet North",
	}
}

func newTestServer(fetcher posts.Fetcher, submitter server.Submitter) *server.ServerConfig {
	return &server.ServerConfig{
		Hostname:    "localhost",
		Coordinator: posts.NewCoordinator(fetcher, nil, time.Minute),
		Resolver:    resolver.New(gazetteer.New(), nil),
		Backend:     submitter,
		Broadcaster: server.NewBroadcaster(),
	}
}

func TestGetPosts(t *testing.T) {
	fetcher := &stubFetcher{posts: []models.Post{
		feedPost("1", "Toronto", 43.6532, -79.3832, "Routine helped"),
		feedPost("2", "Vancouver", 49.2827, -123.1207, "Therapy helped"),
	}}
	app := server.Server(newTestServer(fetcher, &stubSubmitter{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts", nil))
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var feed []models.Post
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
	assert.Len(t, feed, 2)
}

func TestGetPostsFiltered(t *testing.T) {
	fetcher := &stubFetcher{posts: []models.Post{
		feedPost("1", "Toronto", 43.6532, -79.3832, "Routine helped"),
		feedPost("2", "Vancouver", 49.2827, -123.1207, "Therapy helped"),
	}}
	app := server.Server(newTestServer(fetcher, &stubSubmitter{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts?q=therapy", nil))
	assert.NoError(t, err)

	var feed []models.Post
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
	if assert.Len(t, feed, 1) {
		assert.Equal(t, "Vancouver", feed[0].City)
	}
}

func TestGetClusters(t *testing.T) {
	fetcher := &stubFetcher{posts: []models.Post{
		feedPost("1", "Toronto", 43.6532, -79.3832, "a"),
		feedPost("2", "Toronto", 43.6532, -79.3832, "b"),
		feedPost("3", "Vancouver", 49.2827, -123.1207, "c"),
	}}
	app := server.Server(newTestServer(fetcher, &stubSubmitter{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/clusters", nil))
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var grouped []models.CityCluster
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&grouped))
	if assert.Len(t, grouped, 2) {
		assert.Equal(t, "Toronto", grouped[0].City)
		assert.Equal(t, 2, grouped[0].Count)
	}
}

func TestGetClustersByDistance(t *testing.T) {
	fetcher := &stubFetcher{posts: []models.Post{
		feedPost("1", "Vancouver", 49.2827, -123.1207, "a"),
		feedPost("2", "Montreal", 45.5017, -73.5673, "b"),
	}}
	app := server.Server(newTestServer(fetcher, &stubSubmitter{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/clusters?sort=distance&lat=43.6532&lng=-79.3832", nil))
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var grouped []models.CityCluster
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&grouped))
	if assert.Len(t, grouped, 2) {
		assert.Equal(t, "Montreal", grouped[0].City)
	}
}

func TestGetClustersBadRequests(t *testing.T) {
	fetcher := &stubFetcher{posts: []models.Post{feedPost("1", "Toronto", 43.6532, -79.3832, "a")}}
	app := server.Server(newTestServer(fetcher, &stubSubmitter{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/clusters?sort=distance", nil))
	assert.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/clusters?sort=alphabetical", nil))
	assert.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestLocationSearch(t *testing.T) {
	app := server.Server(newTestServer(&stubFetcher{}, &stubSubmitter{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/locations/search?q=toronto", nil))
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var candidates []models.LocationCandidate
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&candidates))
	if assert.NotEmpty(t, candidates) {
		assert.Equal(t, "Toronto, ON, Canada", candidates[0].DisplayName)
	}
}

func TestLocationSearchShortQuery(t *testing.T) {
	app := server.Server(newTestServer(&stubFetcher{}, &stubSubmitter{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/locations/search?q=t", nil))
	assert.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, "[]", string(body))
}

func TestHelpOptions(t *testing.T) {
	app := server.Server(newTestServer(&stubFetcher{}, &stubSubmitter{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/help-options", nil))
	assert.NoError(t, err)

	var options []string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&options))
	assert.Len(t, options, 8)
}

func submissionBody() map[string]interface{} {
	return map[string]interface{}{
		"promptA": "a daily walk",
		"location": map[string]interface{}{
			"display_name": "Tofino, BC, Canada",
			"lat":          "49.1530",
			"lon":          "-125.9066",
			"address":      map[string]string{"town": "Tofino", "country": "Canada"},
		},
		"what_helped":      []string{"Routine / hobbies"},
		"confirmAge":       true,
		"confirmNoDetails": true,
		"confirmReviewed":  true,
	}
}

func TestSubmitPost(t *testing.T) {
	submitter := &stubSubmitter{result: models.SubmitResult{Success: true}}
	app := server.Server(newTestServer(&stubFetcher{}, submitter))

	payload, _ := json.Marshal(submissionBody())
	req := httptest.NewRequest("POST", "/api/posts", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result models.SubmitResult
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, "Tofino", submitter.last.City)
	assert.Equal(t, models.StatusPending, submitter.last.Status)
}

func TestSubmitPostInvalid(t *testing.T) {
	app := server.Server(newTestServer(&stubFetcher{}, &stubSubmitter{}))

	body := submissionBody()
	body["confirmAge"] = false
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/posts", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestSubmitPostBackendFailure(t *testing.T) {
	submitter := &stubSubmitter{err: errors.New("backend down")}
	app := server.Server(newTestServer(&stubFetcher{}, submitter))

	payload, _ := json.Marshal(submissionBody())
	req := httptest.NewRequest("POST", "/api/posts", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, 502, resp.StatusCode)
}
