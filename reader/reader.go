// Package reader consumes the Readwise Reader list API with cursor paging
// and rate-limit handling.
package reader

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/readloom/readloom/types"
)

// DefaultBaseURL is the production Reader API root.
const DefaultBaseURL = "https://readwise.io/api/v3"

// Locations is the fixed ordered list of reading locations a sync pages
// through.
var Locations = []string{"new", "later", "archive"}

const (
	maxRetries       = 5
	defaultRetryWait = 5 * time.Second
	requestTimeout   = 60 * time.Second
)

// StatusError reports a non-2xx reader API response.
type StatusError struct {
	Code int
	Body string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("reader API returned status %d: %s", e.Code, e.Body)
}

// Unauthorized reports whether the error is a credential rejection.
func (e *StatusError) Unauthorized() bool {
	return e.Code == 401 || e.Code == 403
}

// ListResponse is one page of documents.
type ListResponse struct {
	Results        []types.Document `json:"results"`
	NextPageCursor string           `json:"nextPageCursor"`
}

// Client pages the Reader API. 429 responses are retried on the same
// cursor, honoring the Retry-After header; other non-2xx responses
// surface as *StatusError.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// New builds a reader client with the given bearer token. baseURL is
// overridable for tests; empty means production.
func New(token, baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := log.With().Str("component", "reader").Logger()

	http := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", "Token "+token).
		SetTimeout(requestTimeout).
		SetRetryCount(maxRetries).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r.StatusCode() == 429
		}).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			wait := retryAfter(resp)
			logger.Warn().Dur("wait", wait).Msg("rate limited, honoring Retry-After")
			return wait, nil
		})

	return &Client{http: http, log: logger}
}

// List fetches one page of documents for a location. cursor and
// updatedAfter are optional; updatedAfter is an ISO-8601 timestamp.
func (c *Client) List(ctx context.Context, location, cursor, updatedAfter string) (*ListResponse, error) {
	var page ListResponse

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("withHtmlContent", "true").
		SetQueryParam("location", location).
		SetResult(&page)
	if cursor != "" {
		req.SetQueryParam("pageCursor", cursor)
	}
	if updatedAfter != "" {
		req.SetQueryParam("updatedAfter", updatedAfter)
	}

	resp, err := req.Get("/list/")
	if err != nil {
		return nil, fmt.Errorf("reader API request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{Code: resp.StatusCode(), Body: strings.TrimSpace(string(resp.Body()))}
	}
	if ct := resp.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return nil, fmt.Errorf("reader API returned unexpected content type %q", ct)
	}

	c.log.Debug().
		Str("location", location).
		Int("results", len(page.Results)).
		Bool("more", page.NextPageCursor != "").
		Msg("fetched page")
	return &page, nil
}

// retryAfter reads the Retry-After seconds header, falling back to a fixed
// wait when absent or malformed.
func retryAfter(resp *resty.Response) time.Duration {
	header := resp.Header().Get("Retry-After")
	if header == "" {
		return defaultRetryWait
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return defaultRetryWait
	}
	return time.Duration(seconds) * time.Second
}
