// Package quay provides a client for the Quay.io repository usage-log API.
package quay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/fedora-infra/quaystats/internal/model"
)

// DefaultBaseURL is the public Quay.io API root.
const DefaultBaseURL = "https://quay.io/api/v1"

// APITimeFormat is the MM/DD/YYYY form the logs endpoints accept for
// starttime/endtime parameters.
const APITimeFormat = "01/02/2006"

// ErrAggregateUnavailable indicates the aggregatelogs endpoint returned 404
// for the repository. Some repositories do not expose aggregated logs.
var ErrAggregateUnavailable = eris.New("quay: aggregated logs unavailable for repository")

// Client defines the Quay usage-log operations.
type Client interface {
	// Logs fetches all usage-log entries for a repository, following
	// next_page pagination until the API reports no further pages.
	Logs(ctx context.Context, repo string, opts LogsOptions) ([]model.LogEntry, error)
	// AggregateLogs fetches per-day aggregated event counts for a repository
	// over the given date range. Returned entries carry the repo and date
	// fields stamped on.
	AggregateLogs(ctx context.Context, repo string, start, end time.Time) ([]model.AggregatedEntry, error)
}

// LogsOptions filters a Logs call. StartTime/EndTime accept the relative
// forms the API understands ("30d") as well as MM/DD/YYYY dates; empty
// values are omitted from the request.
type LogsOptions struct {
	StartTime string
	EndTime   string
	// OnPage, if set, is called after each page with the page number and the
	// entries retrieved on that page.
	OnPage func(page, retrieved int)
}

// Option configures the Quay client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithPageSize sets the requested page size for log listings.
func WithPageSize(n int) Option {
	return func(c *httpClient) {
		c.pageSize = n
	}
}

// WithLimiter paces requests through the given rate limiter. Useful when
// walking many pages or repositories against the public API.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

type httpClient struct {
	token    string
	baseURL  string
	pageSize int
	limiter  *rate.Limiter
	http     *http.Client
}

// NewClient creates a Quay API client authenticated with the given OAuth2
// bearer token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:    token,
		baseURL:  DefaultBaseURL,
		pageSize: 100,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// logsPage is the wire shape of one /logs response page.
type logsPage struct {
	Logs     []model.LogEntry `json:"logs"`
	NextPage string           `json:"next_page"`
}

// aggregateResponse is the wire shape of the /aggregatelogs response.
type aggregateResponse struct {
	Aggregated []model.AggregatedEntry `json:"aggregated"`
}

func (c *httpClient) Logs(ctx context.Context, repo string, opts LogsOptions) ([]model.LogEntry, error) {
	if repo == "" {
		return nil, eris.New("quay: repository is required")
	}

	logsURL := fmt.Sprintf("%s/repository/%s/logs", c.baseURL, repo)

	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.pageSize))
	if opts.StartTime != "" {
		params.Set("starttime", opts.StartTime)
	}
	if opts.EndTime != "" {
		params.Set("endtime", opts.EndTime)
	}

	var all []model.LogEntry
	for page := 1; ; page++ {
		body, statusCode, err := c.get(ctx, logsURL+"?"+params.Encode())
		if err != nil {
			return nil, eris.Wrapf(err, "quay: fetch logs page %d", page)
		}
		if statusCode != http.StatusOK {
			return nil, eris.Errorf("quay: logs page %d: unexpected status %d: %s", page, statusCode, string(body))
		}

		var pg logsPage
		if err := json.Unmarshal(body, &pg); err != nil {
			return nil, eris.Wrapf(err, "quay: unmarshal logs page %d", page)
		}

		if len(pg.Logs) == 0 {
			break
		}
		all = append(all, pg.Logs...)
		if opts.OnPage != nil {
			opts.OnPage(page, len(pg.Logs))
		}

		if pg.NextPage == "" {
			break
		}
		// The next_page token preserves the original query context, so
		// subsequent requests carry only the token.
		params = url.Values{}
		params.Set("next_page", pg.NextPage)
	}

	return all, nil
}

func (c *httpClient) AggregateLogs(ctx context.Context, repo string, start, end time.Time) ([]model.AggregatedEntry, error) {
	if repo == "" {
		return nil, eris.New("quay: repository is required")
	}

	params := url.Values{}
	params.Set("starttime", start.Format(APITimeFormat))
	params.Set("endtime", end.Format(APITimeFormat))

	aggURL := fmt.Sprintf("%s/repository/%s/aggregatelogs?%s", c.baseURL, repo, params.Encode())

	body, statusCode, err := c.get(ctx, aggURL)
	if err != nil {
		return nil, eris.Wrap(err, "quay: fetch aggregated logs")
	}
	switch {
	case statusCode == http.StatusNotFound:
		return nil, eris.Wrapf(ErrAggregateUnavailable, "repository %s", repo)
	case statusCode != http.StatusOK:
		return nil, eris.Errorf("quay: aggregated logs: unexpected status %d: %s", statusCode, string(body))
	}

	var resp aggregateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "quay: unmarshal aggregated logs")
	}

	for i := range resp.Aggregated {
		resp.Aggregated[i].StampDerived(repo)
	}
	return resp.Aggregated, nil
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// get executes an authenticated GET with exponential backoff retries on
// transient failures (429, 500, 502, 503). Returns the response body and
// status code on success, or the last error after exhausting retries.
func (c *httpClient) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, 0, err
			}
		}

		resp, err := c.http.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}
