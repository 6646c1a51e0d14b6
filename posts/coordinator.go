package posts

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"starlings/models"
)

// Add Prometheus metrics
var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starlings_post_cache_hits_total",
		Help: "The number of approved-feed reads served from the in-memory cache",
	})

	cacheFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starlings_post_fetches_total",
		Help: "The number of approved-feed fetches issued to the moderation backend",
	})

	seedFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starlings_post_seed_fallbacks_total",
		Help: "The number of times the bundled seed dataset stood in for the backend",
	})
)

// DefaultTTL is how long a fetched feed stays fresh. An entry exactly
// this old is already stale.
const DefaultTTL = 5 * time.Minute

// Fetcher is the slice of the moderation client the coordinator needs.
type Fetcher interface {
	FetchApproved(ctx context.Context) ([]models.Post, error)
}

// Snapshotter persists the last good feed across restarts.
type Snapshotter interface {
	GetSnapshot(ctx context.Context) ([]models.Post, time.Time, error)
	PutSnapshot(ctx context.Context, posts []models.Post, fetchedAt time.Time) error
}

type inflight struct {
	done  chan struct{}
	posts []models.Post
}

// Coordinator caches the approved feed and collapses concurrent
// refreshes into a single backend fetch. GetApproved never fails: a
// dead backend degrades to the persisted snapshot, then to the bundled
// seed dataset.
type Coordinator struct {
	fetcher Fetcher
	store   Snapshotter // may be nil
	ttl     time.Duration
	now     func() time.Time

	mu        sync.Mutex
	cached    []models.Post
	fetchedAt time.Time
	flight    *inflight
}

func NewCoordinator(fetcher Fetcher, store Snapshotter, ttl time.Duration) *Coordinator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Coordinator{
		fetcher: fetcher,
		store:   store,
		ttl:     ttl,
		now:     time.Now,
	}
}

// GetApproved returns the approved feed, fetching it when the cache is
// stale or forceRefresh is set. Concurrent callers during a fetch share
// its result. The returned slice is the caller's to keep.
func (c *Coordinator) GetApproved(ctx context.Context, forceRefresh bool) []models.Post {
	c.mu.Lock()

	if !forceRefresh && c.cached != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		posts := c.cached
		c.mu.Unlock()
		cacheHits.Inc()
		return clone(posts)
	}

	if c.flight != nil {
		flight := c.flight
		stale := c.cached
		c.mu.Unlock()
		select {
		case <-flight.done:
			return clone(flight.posts)
		case <-ctx.Done():
			// The caller is gone anyway; hand back whatever we have.
			return clone(stale)
		}
	}

	flight := &inflight{done: make(chan struct{})}
	c.flight = flight
	c.mu.Unlock()

	posts := c.fetch(ctx)

	c.mu.Lock()
	c.cached = posts
	c.fetchedAt = c.now()
	// Cleared exactly once; a new call from here on starts a new fetch.
	c.flight = nil
	c.mu.Unlock()

	flight.posts = posts
	close(flight.done)

	return clone(posts)
}

// fetch retrieves and normalizes the feed, falling back to the
// persisted snapshot and finally the seed dataset. The result is always
// non-empty.
func (c *Coordinator) fetch(ctx context.Context) []models.Post {
	cacheFetches.Inc()

	fetched, err := c.fetcher.FetchApproved(ctx)
	if err == nil && len(fetched) > 0 {
		posts := Dedupe(fetched)
		backfillAliases(posts)
		if c.store != nil {
			if err := c.store.PutSnapshot(ctx, posts, c.now()); err != nil {
				log.WithFields(log.Fields{
					"error": err,
				}).Warn("Failed to persist post snapshot")
			}
		}
		return posts
	}

	log.WithFields(log.Fields{
		"error": err,
		"count": len(fetched),
	}).Warn("Backend fetch failed or empty, falling back")

	if c.store != nil {
		if persisted, fetchedAt, err := c.store.GetSnapshot(ctx); err == nil && len(persisted) > 0 {
			log.WithFields(log.Fields{
				"count":     len(persisted),
				"fetchedAt": fetchedAt.Format(time.RFC3339),
			}).Info("Serving persisted post snapshot")
			return persisted
		}
	}

	seedFallbacks.Inc()
	seed := SeedPosts()
	backfillAliases(seed)
	return seed
}

// Dedupe removes duplicate ids, keeping the later entry in the earlier
// entry's position.
func Dedupe(posts []models.Post) []models.Post {
	index := make(map[string]int, len(posts))
	deduped := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		if at, seen := index[post.Id]; seen {
			deduped[at] = post
			continue
		}
		index[post.Id] = len(deduped)
		deduped = append(deduped, post)
	}
	return deduped
}

func clone(posts []models.Post) []models.Post {
	return append([]models.Post(nil), posts...)
}
