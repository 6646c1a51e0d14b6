package resolver

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"starlings/gazetteer"
	"starlings/models"
)

const (
	// How long callers should wait for input quiescence before a
	// resolve that may reach the remote geocoder.
	DefaultDebounce = 600 * time.Millisecond

	localLimit  = 5
	mergedLimit = 6

	// Queries below this length never leave the process.
	remoteMinLength = 3
)

// Update is one result-set revision for a query. A resolve emits at
// most two: the instant local results, then the merged local+remote
// list. Final marks the last update for its query.
type Update struct {
	Query      string                     `json:"query"`
	Candidates []models.LocationCandidate `json:"candidates"`
	Final      bool                       `json:"final"`
}

// RemoteSearcher is the slice of the geocoder client the resolver needs.
type RemoteSearcher interface {
	Search(ctx context.Context, query string) ([]models.LocationCandidate, error)
}

// Resolver combines the in-memory gazetteer with the remote geocoder
// into a single ranked, deduplicated suggestion stream.
type Resolver struct {
	gazetteer *gazetteer.Gazetteer
	remote    RemoteSearcher
	gen       atomic.Int64
}

func New(g *gazetteer.Gazetteer, remote RemoteSearcher) *Resolver {
	return &Resolver{gazetteer: g, remote: remote}
}

// Resolve answers a location query in up to two phases. Local results
// are emitted immediately; for queries of three or more characters a
// single remote lookup follows and the merged list is emitted as the
// final update. The channel closes once no more updates will come.
//
// Each call supersedes all earlier ones on the same resolver: a
// superseded call never emits its remote update, so stale suggestions
// can't clobber a newer query. Remote failures degrade to an empty
// contribution and are never surfaced to the caller.
func (r *Resolver) Resolve(ctx context.Context, query string) <-chan Update {
	updates := make(chan Update, 2)
	gen := r.gen.Add(1)

	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < 2 {
		close(updates)
		return updates
	}

	local := r.gazetteer.Search(q, localLimit)

	if len(q) < remoteMinLength || r.remote == nil {
		updates <- Update{Query: query, Candidates: local, Final: true}
		close(updates)
		return updates
	}

	updates <- Update{Query: query, Candidates: local}

	go func() {
		defer close(updates)

		remote, err := r.remote.Search(ctx, q)
		if err != nil {
			log.WithFields(log.Fields{
				"query": query,
				"error": err,
			}).Warn("Remote geocode failed, keeping local results")
			remote = nil
		}

		if r.gen.Load() != gen {
			log.WithFields(log.Fields{
				"query": query,
			}).Debug("Discarding stale geocode response")
			return
		}

		updates <- Update{
			Query:      query,
			Candidates: merge(local, remote),
			Final:      true,
		}
	}()

	return updates
}

// ResolveAll blocks until the final update for the query and returns
// its candidates. Convenience for callers that don't render the
// progressive stream, like the HTTP handler.
func (r *Resolver) ResolveAll(ctx context.Context, query string) []models.LocationCandidate {
	var last []models.LocationCandidate
	for update := range r.Resolve(ctx, query) {
		last = update.Candidates
	}
	return last
}

// merge appends remote results to local ones, dropping remote entries
// whose display label duplicates a local one, capped at the merged
// result limit.
func merge(local, remote []models.LocationCandidate) []models.LocationCandidate {
	merged := make([]models.LocationCandidate, 0, mergedLimit)
	merged = append(merged, local...)

	for _, candidate := range remote {
		if len(merged) >= mergedLimit {
			break
		}
		duplicate := lo.ContainsBy(merged, func(c models.LocationCandidate) bool {
			return c.DisplayName == candidate.DisplayName
		})
		if !duplicate {
			merged = append(merged, candidate)
		}
	}

	if len(merged) > mergedLimit {
		merged = merged[:mergedLimit]
	}
	return merged
}
