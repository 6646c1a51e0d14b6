package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/gommon/log"

	"starlings/models"
)

const DefaultTimeout = 10 * time.Second

// Client talks to the moderation backend. The backend serves approved
// posts as a JSON array and accepts new submissions for the pending
// queue.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchApproved retrieves the approved feed, retrying transient
// failures with exponential backoff. Anything other than a JSON array
// is an error; the backend signals its own failures with a JSON object.
func (c *Client) FetchApproved(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post

	operation := func() error {
		fetched, err := c.fetchApprovedOnce(ctx)
		if err != nil {
			log.Warnf("fetching approved posts failed, retrying: %v", err)
			return err
		}
		posts = fetched
		return nil
	}

	// Set up exponential backoff for retry attempts
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	policy.MaxElapsedTime = 10 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	return posts, nil
}

func (c *Client) fetchApprovedOnce(ctx context.Context) ([]models.Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var posts []models.Post
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("failed to parse approved posts: %w", err)
	}

	return posts, nil
}

// Submit sends a new post to the pending moderation queue. Submissions
// are not retried; the backend appends a row per request.
func (c *Client) Submit(ctx context.Context, post models.Post) (models.SubmitResult, error) {
	payload, err := json.Marshal(post)
	if err != nil {
		return models.SubmitResult{}, fmt.Errorf("failed to encode post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return models.SubmitResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.SubmitResult{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.SubmitResult{}, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var result models.SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.SubmitResult{}, fmt.Errorf("failed to parse submit response: %w", err)
	}

	return result, nil
}
