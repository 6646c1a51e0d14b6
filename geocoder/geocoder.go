package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"starlings/models"
)

// Add Prometheus metrics
var (
	geocodeRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starlings_geocode_requests_total",
		Help: "The total number of requests issued to the remote geocoder",
	})

	geocodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starlings_geocode_errors_total",
		Help: "The total number of failed remote geocoder requests",
	})

	geocodeThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starlings_geocode_throttle_waits_total",
		Help: "The number of geocoder requests delayed by the rate limit",
	})
)

const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org/search"

	// Nominatim's usage policy asks for at most one request per second.
	DefaultMinInterval = time.Second

	DefaultTimeout      = 4 * time.Second
	DefaultCountryCodes = "ca"
	defaultUserAgent    = "starlings-support-map/1.0"

	resultLimit = 5
)

// Config holds the remote geocoder settings.
type Config struct {
	BaseURL      string
	CountryCodes string
	MinInterval  time.Duration
	Timeout      time.Duration

	// Contact is appended to the User-Agent so the geocoder operator
	// can reach us, per the Nominatim usage policy.
	Contact string
}

// Client wraps the remote place-search service. The zero value is not
// usable; construct with NewClient.
type Client struct {
	http   *http.Client
	config Config

	mu       sync.Mutex
	lastCall time.Time
}

func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.CountryCodes == "" {
		config.CountryCodes = DefaultCountryCodes
	}
	if config.MinInterval <= 0 {
		config.MinInterval = DefaultMinInterval
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		http:   &http.Client{Timeout: config.Timeout},
		config: config,
	}
}

// Search queries the remote geocoder for settlement results matching
// the free-text query. The query is scoped to the configured country
// and capped at five results. The remote payload is untrusted; any
// parse failure surfaces as an error so callers can degrade to an
// empty contribution.
func (c *Client) Search(ctx context.Context, query string) ([]models.LocationCandidate, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse geocoder URL: %w", err)
	}

	q := u.Query()
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("addressdetails", "1")
	q.Set("limit", fmt.Sprintf("%d", resultLimit))
	q.Set("countrycodes", c.config.CountryCodes)
	q.Set("featuretype", "settlement")
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoder request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())

	geocodeRequests.Inc()

	resp, err := c.http.Do(req)
	if err != nil {
		geocodeErrors.Inc()
		return nil, fmt.Errorf("geocoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		geocodeErrors.Inc()
		log.Errorf("geocoder returned status %d for query %q", resp.StatusCode, query)
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		geocodeErrors.Inc()
		return nil, fmt.Errorf("failed to read geocoder response: %w", err)
	}

	var candidates []models.LocationCandidate
	if err := json.Unmarshal(body, &candidates); err != nil {
		geocodeErrors.Inc()
		return nil, fmt.Errorf("failed to parse geocoder response: %w", err)
	}

	if len(candidates) > resultLimit {
		candidates = candidates[:resultLimit]
	}

	return candidates, nil
}

// throttle enforces the minimum interval between outbound requests.
// The wait respects ctx so a superseded search does not hold the slot.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	wait := c.config.MinInterval - time.Since(c.lastCall)
	if wait > 0 {
		geocodeThrottled.Inc()
	}
	// Reserve the slot before sleeping so concurrent callers queue up
	// rather than stampede.
	now := time.Now()
	if wait > 0 {
		c.lastCall = now.Add(wait)
	} else {
		c.lastCall = now
	}
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) userAgent() string {
	if c.config.Contact != "" {
		return defaultUserAgent + " (" + c.config.Contact + ")"
	}
	return defaultUserAgent
}
