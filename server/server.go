package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"starlings/clusters"
	"starlings/models"
	"starlings/moderation"
	"starlings/posts"
	"starlings/resolver"
)

// Submitter is the slice of the moderation client the server needs for
// new posts.
type Submitter interface {
	Submit(ctx context.Context, post models.Post) (models.SubmitResult, error)
}

type ServerConfig struct {

	// The hostname to use for the server
	Hostname string

	// The cached approved-post feed
	Coordinator *posts.Coordinator

	// The hybrid location resolver
	Resolver *resolver.Resolver

	// The moderation backend for new submissions
	Backend Submitter

	// Broadcast channels to pass events to SSE clients
	Broadcaster *Broadcaster
}

// Make it sync
type Broadcaster struct {
	sync.RWMutex
	createPostClients map[string]chan models.CreatePostEvent
	refreshClients    map[string]chan models.RefreshEvent
}

// Constructor
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		createPostClients: make(map[string]chan models.CreatePostEvent, 10000),
		refreshClients:    make(map[string]chan models.RefreshEvent, 10000),
	}
}

func (b *Broadcaster) BroadcastCreatePost(post models.CreatePostEvent) {
	b.RLock()
	defer b.RUnlock()

	for id, client := range b.createPostClients {
		select {
		case client <- post: // Non-blocking send
		default:
			log.Warnf("Client channel full, skipping post for client: %v", id)
		}
	}
}

func (b *Broadcaster) BroadcastRefresh(refresh models.RefreshEvent) {
	b.RLock()
	defer b.RUnlock()

	for id, client := range b.refreshClients {
		select {
		case client <- refresh: // Non-blocking send
		default:
			log.Warnf("Client channel full, skipping refresh for client: %v", id)
		}
	}
}

// Function to add a client to the broadcaster
func (b *Broadcaster) AddClient(key string, createPostClient chan models.CreatePostEvent, refreshClient chan models.RefreshEvent) {
	b.Lock()
	defer b.Unlock()
	b.createPostClients[key] = createPostClient
	b.refreshClients[key] = refreshClient
	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.createPostClients),
	}).Info("Adding client to broadcaster")
}

// Function to remove a client from the broadcaster
func (b *Broadcaster) RemoveClient(key string) {
	b.Lock()
	defer b.Unlock()

	if client, ok := b.createPostClients[key]; ok {
		close(client)
		delete(b.createPostClients, key)
	}

	if client, ok := b.refreshClients[key]; ok {
		close(client)
		delete(b.refreshClients, key)
	}

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.createPostClients),
	}).Info("Removed client from broadcaster")
}

func (b *Broadcaster) Shutdown() {
	log.Info("Shutting down broadcaster")
	b.Lock()
	defer b.Unlock()
	for key, client := range b.createPostClients {
		close(client)
		delete(b.createPostClients, key)
	}
	for key, client := range b.refreshClients {
		close(client)
		delete(b.refreshClients, key)
	}
}

// Returns a fiber.App instance to be used as the HTTP server for the
// support map
func Server(config *ServerConfig) *fiber.App {

	bc := config.Broadcaster

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		// start timer
		start := time.Now()

		// next routes
		err := c.Next()

		// stop timer
		stop := time.Now()

		// Diff
		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": stop.Sub(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	// Setup CORS for the web client
	app.Use(func(c *fiber.Ctx) error {
		corsConfig := cors.Config{
			AllowOrigins:     "http://localhost:3000",
			AllowHeaders:     "Cache-Control, Content-Type",
			AllowCredentials: true,
		}
		return cors.New(corsConfig)(c)
	})

	// Setup cache for the read-only map endpoints. The coordinator
	// already caches the upstream feed; this only absorbs bursts of
	// identical requests.
	app.Use(cache.New(cache.Config{
		Expiration: 30 * time.Second,
		Next: func(c *fiber.Ctx) bool {

			if c.Method() != "GET" {
				return true
			}

			// If the pathname ends with /sse, don't cache
			if strings.HasSuffix(c.Path(), "/sse") {
				return true
			}

			// A forced refresh must reach the coordinator
			if c.Query("refresh") == "true" {
				return true
			}

			if c.Path() == "/api/posts" || c.Path() == "/api/clusters" {
				return false
			}
			return true
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			// Get URL with query string to use as cache key
			url := c.Request().URI().String()
			// Include the query parameters in the cache key
			return url
		},
	}))

	app.Get("/api/posts", func(c *fiber.Ctx) error {
		query := c.Query("q", "")
		refresh := c.Query("refresh", "") == "true"

		feed := config.Coordinator.GetApproved(c.Context(), refresh)

		if refresh {
			bc.BroadcastRefresh(models.RefreshEvent{
				Count:     len(feed),
				FetchedAt: time.Now().Unix(),
			})
		}

		log.WithFields(log.Fields{
			"query":   query,
			"refresh": refresh,
			"count":   len(feed),
		}).Info("Get posts")

		return c.JSON(posts.Filter(feed, query))
	})

	app.Get("/api/clusters", func(c *fiber.Ctx) error {
		sortParam := c.Query("sort", "count")

		feed := config.Coordinator.GetApproved(c.Context(), false)
		grouped := clusters.Aggregate(feed)

		switch sortParam {
		case "count":
			clusters.SortByCount(grouped)
		case "recency":
			clusters.SortByRecency(grouped)
		case "distance":
			lat, latErr := strconv.ParseFloat(c.Query("lat", ""), 64)
			lng, lngErr := strconv.ParseFloat(c.Query("lng", ""), 64)
			if latErr != nil || lngErr != nil {
				return c.Status(400).SendString("Sorting by distance requires lat and lng")
			}
			clusters.SortByDistance(grouped, lat, lng)
		default:
			return c.Status(400).SendString("Invalid sort")
		}

		if c.Query("spread", "true") != "false" {
			clusters.Spread(grouped)
		}

		log.WithFields(log.Fields{
			"sort":  sortParam,
			"count": len(grouped),
		}).Info("Get clusters")

		return c.JSON(grouped)
	})

	app.Get("/api/locations/search", func(c *fiber.Ctx) error {
		query := c.Query("q", "")

		candidates := config.Resolver.ResolveAll(c.Context(), query)
		if candidates == nil {
			candidates = []models.LocationCandidate{}
		}

		log.WithFields(log.Fields{
			"query": query,
			"count": len(candidates),
		}).Info("Location search")

		return c.JSON(candidates)
	})

	app.Get("/api/help-options", func(c *fiber.Ctx) error {
		return c.JSON(moderation.HelpOptions())
	})

	app.Post("/api/posts", func(c *fiber.Ctx) error {
		var submission moderation.Submission
		if err := c.BodyParser(&submission); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		if err := submission.Validate(); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}

		post := submission.BuildPost()

		result, err := config.Backend.Submit(c.Context(), post)
		if err != nil {
			log.WithFields(log.Fields{
				"error": err,
			}).Error("Error submitting post")
			return c.Status(502).JSON(fiber.Map{"error": "submission failed"})
		}

		log.WithFields(log.Fields{
			"city":    post.City,
			"flagged": result.Flagged,
		}).Info("Post submitted")

		bc.BroadcastCreatePost(models.CreatePostEvent{Post: post})

		return c.JSON(result)
	})

	app.Delete("/api/posts/sse", func(c *fiber.Ctx) error {
		key := c.Query("key", "")
		bc.RemoveClient(key)
		return c.Status(200).SendString("OK")
	})

	app.Get("/api/posts/sse", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("Transfer-Encoding", "chunked")

		// Unique client key
		key := uuid.New().String()
		sseCreatePostChannel := make(chan models.CreatePostEvent, 10) // Buffered channel
		sseRefreshChannel := make(chan models.RefreshEvent, 10)
		aliveChan := time.NewTicker(5 * time.Second)

		defer aliveChan.Stop()

		// Register the client
		bc.AddClient(key, sseCreatePostChannel, sseRefreshChannel)

		// Cleanup function
		cleanup := func() {
			log.Infof("Cleaning up SSE stream for client: %s", key)
			bc.RemoveClient(key)
		}

		// Use StreamWriter to manage SSE streaming
		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer cleanup()

			// Send initial event with client key
			fmt.Fprintf(w, "event: init\ndata: %s\n\n", key)
			if err := w.Flush(); err != nil {
				log.Errorf("Failed to send init event: %v", err)
				return
			}

			// Start streaming loop
			for {
				select {
				case <-aliveChan.C:
					// Send keep-alive pings
					if _, err := fmt.Fprintf(w, "event: ping\ndata: \n\n"); err != nil {
						log.Warnf("Failed to send ping to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush ping for client %s: %v", key, err)
						return
					}

				case post, ok := <-sseCreatePostChannel:
					if !ok {
						log.Warnf("CreatePostChannel closed for client %s", key)
						return
					}
					jsonPost, err := json.Marshal(post.Post)
					if err != nil {
						log.Errorf("Error marshalling post for client %s: %v", key, err)
						continue
					}
					if _, err := fmt.Fprintf(w, "event: create-post\ndata: %s\n\n", jsonPost); err != nil {
						log.Warnf("Failed to send create-post event to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush create-post event for client %s: %v", key, err)
						return
					}

				case refresh, ok := <-sseRefreshChannel:
					if !ok {
						log.Warnf("RefreshChannel closed for client %s", key)
						return
					}
					jsonRefresh, err := json.Marshal(refresh)
					if err != nil {
						log.Errorf("Error marshalling refresh for client %s: %v", key, err)
						continue
					}
					if _, err := fmt.Fprintf(w, "event: refresh\ndata: %s\n\n", jsonRefresh); err != nil {
						log.Warnf("Failed to send refresh event to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush refresh event for client %s: %v", key, err)
						return
					}
				}
			}
		}))

		return nil
	})

	return app
}
