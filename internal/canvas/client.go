// Package canvas implements the read side of the mirror: a Canvas REST
// client with bearer authentication, Link-header pagination and retry
// support for transient failures.
package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/canvasmirror/internal/pkg/apperrors"
	"github.com/yigit/canvasmirror/internal/pkg/logger"
)

const (
	// maxPerPage is the page size cap Canvas enforces server-side.
	maxPerPage = 100

	// maxErrorBodySize limits how much of an error response body is read
	// for diagnostics.
	maxErrorBodySize = 64 * 1024
)

// Config holds the settings for a Client. Zero values fall back to
// defaults, so tests can construct a client from just BaseURL and Token.
type Config struct {
	BaseURL                string
	Token                  string
	PerPage                int
	Timeout                time.Duration
	MaxAttempts            int
	RetryBaseDelay         time.Duration
	AnnouncementWindowDays int
	FetchConcurrency       int
}

// Client talks to the Canvas REST API. Safe for concurrent use.
type Client struct {
	baseURL          string
	token            string
	httpClient       *http.Client
	perPage          int
	maxAttempts      int
	retryBaseDelay   time.Duration
	announcementDays int
	fetchConcurrency int
	log              zerolog.Logger
}

// NewClient creates a Canvas API client from the given configuration.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	perPage := cfg.PerPage
	if perPage <= 0 || perPage > maxPerPage {
		perPage = maxPerPage
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	retryBaseDelay := cfg.RetryBaseDelay
	if retryBaseDelay <= 0 {
		retryBaseDelay = 1 * time.Second
	}

	announcementDays := cfg.AnnouncementWindowDays
	if announcementDays <= 0 {
		announcementDays = 120
	}

	fetchConcurrency := cfg.FetchConcurrency
	if fetchConcurrency < 1 {
		fetchConcurrency = 1
	}

	return &Client{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		token:            cfg.Token,
		httpClient:       &http.Client{Timeout: timeout},
		perPage:          perPage,
		maxAttempts:      maxAttempts,
		retryBaseDelay:   retryBaseDelay,
		announcementDays: announcementDays,
		fetchConcurrency: fetchConcurrency,
		log:              logger.WithComponent("canvas"),
	}
}

// do performs one authenticated GET, retrying transport failures and
// retryable statuses (429, 5xx) with exponential backoff. Backoff waits are
// cancellable through the context.
func (c *Client) do(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.retryBaseDelay << uint(attempt-2)
			c.log.Warn().Str("url", reqURL).Int("attempt", attempt).Dur("delay", delay).Msg("Retrying request")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = apperrors.NewSourceUnavailable(err.Error())
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			message := errorMessage(readBodyForError(resp.Body))
			_ = resp.Body.Close()
			lastErr = apperrors.NewSourceRejected(resp.StatusCode, message)
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

// getJSON issues one GET, translates HTTP failures into the source error
// taxonomy and decodes the body into out. An empty or null body leaves out
// untouched. Returns the next page URL from the Link header, if any.
func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) (string, error) {
	resp, err := c.do(ctx, reqURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		message := errorMessage(readBodyForError(resp.Body))
		return "", apperrors.NewSourceRejected(resp.StatusCode, message)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewSourceUnavailable(fmt.Sprintf("failed to read response body: %v", err))
	}

	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return "", fmt.Errorf("failed to decode response from %s: %w", reqURL, err)
		}
	}

	return nextPageURL(resp.Header.Get("Link")), nil
}

// collectPages walks a paginated listing, following the Link header's
// rel="next" URL until it is absent. The result is never nil.
func collectPages[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	out := make([]T, 0)

	next := c.listURL(path, query)
	for next != "" {
		var page []T
		nextURL, err := c.getJSON(ctx, next, &page)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		next = nextURL
	}

	return out, nil
}

// listURL builds the first-page URL for a listing request.
func (c *Client) listURL(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("per_page", strconv.Itoa(c.perPage))
	return c.baseURL + path + "?" + query.Encode()
}

// nextPageURL extracts the rel="next" target from an RFC 5988 Link header.
// Returns "" when the header is absent or carries no next link.
func nextPageURL(linkHeader string) string {
	for _, link := range strings.Split(linkHeader, ",") {
		segments := strings.Split(link, ";")
		if len(segments) < 2 {
			continue
		}

		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}

		for _, param := range segments[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return strings.Trim(target, "<>")
			}
		}
	}
	return ""
}

// canvasErrorBody is the error envelope Canvas returns for failed requests.
type canvasErrorBody struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Message string `json:"message"`
}

// errorMessage extracts a human-readable message from an error response
// body, falling back to a raw snippet when the envelope does not parse.
func errorMessage(body []byte) string {
	var parsed canvasErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if len(parsed.Errors) > 0 && parsed.Errors[0].Message != "" {
			return parsed.Errors[0].Message
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}

	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200] + "..."
	}
	return snippet
}

// readBodyForError reads at most maxErrorBodySize bytes of a response body
// for error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
