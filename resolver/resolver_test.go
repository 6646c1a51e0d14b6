package resolver_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"starlings/gazetteer"
	"starlings/models"
	"starlings/resolver"

	"github.com/stretchr/testify/assert"
)

type fakeRemote struct {
	mu      sync.Mutex
	queries []string
	results []models.LocationCandidate
	err     error
	block   chan struct{} // when non-nil, Search waits for a close before returning
}

func (f *fakeRemote) Search(ctx context.Context, query string) ([]models.LocationCandidate, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.results, f.err
}

func (f *fakeRemote) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func remoteCandidate(name string) models.LocationCandidate {
	return models.LocationCandidate{
		DisplayName: name,
		Lat:         "49.0",
		Lon:         "-125.0",
		Address:     models.Address{Town: name, Country: "Canada"},
	}
}

func collect(updates <-chan resolver.Update) []resolver.Update {
	var all []resolver.Update
	for u := range updates {
		all = append(all, u)
	}
	return all
}

func TestResolveShortQuery(t *testing.T) {
	remote := &fakeRemote{}
	r := resolver.New(gazetteer.New(), remote)

	for _, query := range []string{"", "t", "  "} {
		updates := collect(r.Resolve(context.Background(), query))
		assert.Empty(t, updates, "query %q", query)
	}
	assert.Zero(t, remote.queryCount())
}

func TestResolveLocalOnlyBelowRemoteThreshold(t *testing.T) {
	remote := &fakeRemote{}
	r := resolver.New(gazetteer.New(), remote)

	updates := collect(r.Resolve(context.Background(), "to"))
	if assert.Len(t, updates, 1) {
		assert.True(t, updates[0].Final)
		assert.Equal(t, "Toronto, ON, Canada", updates[0].Candidates[0].DisplayName)
	}
	assert.Zero(t, remote.queryCount())
}

func TestResolveTwoPhases(t *testing.T) {
	remote := &fakeRemote{results: []models.LocationCandidate{
		remoteCandidate("Tofino, British Columbia, Canada"),
	}}
	r := resolver.New(gazetteer.New(), remote)

	updates := collect(r.Resolve(context.Background(), "tor"))
	if assert.Len(t, updates, 2) {
		assert.False(t, updates[0].Final)
		assert.True(t, updates[1].Final)
		// Merged list keeps local results first, remote appended.
		assert.GreaterOrEqual(t, len(updates[1].Candidates), len(updates[0].Candidates))
		last := updates[1].Candidates[len(updates[1].Candidates)-1]
		assert.Equal(t, "Tofino, British Columbia, Canada", last.DisplayName)
	}
	assert.Equal(t, 1, remote.queryCount())
}

func TestResolveMergeDeduplicatesByDisplayName(t *testing.T) {
	remote := &fakeRemote{results: []models.LocationCandidate{
		{DisplayName: "Toronto, ON, Canada", Lat: "0", Lon: "0"},
		remoteCandidate("Ucluelet, British Columbia, Canada"),
	}}
	r := resolver.New(gazetteer.New(), remote)

	updates := collect(r.Resolve(context.Background(), "toronto"))
	if assert.Len(t, updates, 2) {
		final := updates[1].Candidates
		names := map[string]int{}
		for _, c := range final {
			names[c.DisplayName]++
		}
		assert.Equal(t, 1, names["Toronto, ON, Canada"])
		assert.Equal(t, 1, names["Ucluelet, British Columbia, Canada"])
		// Local entry wins over the remote duplicate.
		assert.Equal(t, "43.6532", final[0].Lat)
	}
}

func TestResolveMergeCap(t *testing.T) {
	remote := &fakeRemote{results: []models.LocationCandidate{
		remoteCandidate("A"), remoteCandidate("B"), remoteCandidate("C"),
		remoteCandidate("D"), remoteCandidate("E"), remoteCandidate("F"),
	}}
	r := resolver.New(gazetteer.New(), remote)

	// "an" is too short for the remote phase, so use a query with many
	// local matches and enough remote filler.
	updates := collect(r.Resolve(context.Background(), "ont"))
	final := updates[len(updates)-1].Candidates
	assert.LessOrEqual(t, len(final), 6)
}

func TestResolveRemoteErrorKeepsLocal(t *testing.T) {
	remote := &fakeRemote{err: errors.New("geocoder unavailable")}
	r := resolver.New(gazetteer.New(), remote)

	updates := collect(r.Resolve(context.Background(), "toronto"))
	if assert.Len(t, updates, 2) {
		assert.True(t, updates[1].Final)
		assert.Equal(t, updates[0].Candidates, updates[1].Candidates)
	}
}

func TestResolveSupersededCallDropsRemote(t *testing.T) {
	release := make(chan struct{})
	remote := &fakeRemote{
		results: []models.LocationCandidate{remoteCandidate("Tofino, British Columbia, Canada")},
		block:   release,
	}
	r := resolver.New(gazetteer.New(), remote)

	first := r.Resolve(context.Background(), "vancouver")
	<-first // local update

	second := r.Resolve(context.Background(), "calgary")
	<-second // local update

	close(release)

	// The superseded call closes without a final update.
	_, ok := <-first
	assert.False(t, ok)

	// The latest call still completes normally.
	final, ok := <-second
	if assert.True(t, ok) {
		assert.True(t, final.Final)
	}
}

func TestResolveAllReturnsFinalCandidates(t *testing.T) {
	remote := &fakeRemote{results: []models.LocationCandidate{
		remoteCandidate("Tofino, British Columbia, Canada"),
	}}
	r := resolver.New(gazetteer.New(), remote)

	candidates := r.ResolveAll(context.Background(), "tofino")
	if assert.NotEmpty(t, candidates) {
		assert.Equal(t, "Tofino, British Columbia, Canada", candidates[len(candidates)-1].DisplayName)
	}
}
