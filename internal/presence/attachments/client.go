// Package attachments is an HTTP client for the file service's internal
// cleanup API. The presence gateway only lists and deletes orphaned uploads;
// upload and serving belong to the file service itself.
package attachments

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"meeshy/pkg/platform/circuit"
	"meeshy/pkg/platform/sentinel"
)

// Client implements the orphaned-attachment operations against the file
// service's internal API. A circuit breaker guards the listing call so a down
// file service costs one failed probe per cleanup run instead of a hammering
// retry loop.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: circuit.New("attachment-service", circuit.WithFailureThreshold(3)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListOrphaned returns the ids of attachments with no owning message that were
// uploaded before olderThan.
func (c *Client) ListOrphaned(ctx context.Context, olderThan time.Time) ([]string, error) {
	if c.breaker.IsOpen() {
		// Probe with a single call; the breaker closes again on success.
		c.logger.Debug("attachment service breaker open, probing")
	}

	ids, err := c.listOrphaned(ctx, olderThan)
	if err != nil {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.Warn("attachment service circuit opened", "error", err)
		}
		return nil, err
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("attachment service circuit closed")
	}
	return ids, nil
}

func (c *Client) listOrphaned(ctx context.Context, olderThan time.Time) ([]string, error) {
	endpoint := fmt.Sprintf("%s/internal/attachments/orphaned?olderThan=%s",
		c.baseURL, url.QueryEscape(olderThan.UTC().Format(time.RFC3339)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build orphaned attachments request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list orphaned attachments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list orphaned attachments: unexpected status %d: %w",
			resp.StatusCode, sentinel.ErrUnavailable)
	}

	var body struct {
		AttachmentIDs []string `json:"attachmentIds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode orphaned attachments response: %w", err)
	}
	return body.AttachmentIDs, nil
}

// Delete removes one attachment. A 404 is success: another replica's cleanup
// got there first.
func (c *Client) Delete(ctx context.Context, attachmentID string) error {
	endpoint := fmt.Sprintf("%s/internal/attachments/%s", c.baseURL, url.PathEscape(attachmentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build attachment delete request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete attachment %s: %w", attachmentID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("delete attachment %s: unexpected status %d: %w",
			attachmentID, resp.StatusCode, sentinel.ErrUnavailable)
	}
}
