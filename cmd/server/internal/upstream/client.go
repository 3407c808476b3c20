// Package upstream implements the client for the third-party meetings API:
// one cursor-paginated listing endpoint and one per-recording transcript
// endpoint, behind bearer-token authentication.
package upstream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/semaphore"

	"github.com/meetkit/meetings-gateway/cmd/server/internal/config"
	"github.com/meetkit/meetings-gateway/cmd/server/internal/metrics"
)

// PageResult is one page of the recordings listing.
type PageResult struct {
	// Items are the page's raw records in upstream order. Individual items
	// are opaque at this layer; normalization happens in the recordings
	// package.
	Items []gjson.Result

	// NextCursor is the continuation token, "" when the result set is
	// exhausted.
	NextCursor string
}

// Client issues authenticated requests to the meetings API.
//
// A weighted semaphore caps in-flight upstream calls process-wide so that
// concurrent drains and transcript fetches cannot stampede a rate-limited
// vendor. The semaphore bounds single HTTP calls only, it never serializes
// whole drains.
type Client struct {
	baseURL    string
	apiKey     string
	filters    config.FilterConfig
	httpClient *http.Client
	sem        *semaphore.Weighted
	logger     *slog.Logger
}

// NewClient creates a Client from the upstream configuration and the fixed
// process-wide filter set.
func NewClient(cfg config.UpstreamConfig, filters config.FilterConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		filters:    filters,
		httpClient: &http.Client{Timeout: timeout},
		sem:        semaphore.NewWeighted(int64(maxConcurrent)),
		logger:     logger,
	}
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListRecordingsPage fetches one page of the recordings listing. The fixed
// filter lists become repeated query parameters; cursor is forwarded when
// non-empty. Callers branch on IsRateLimited for 429 handling.
func (c *Client) ListRecordingsPage(ctx context.Context, cursor string) (PageResult, error) {
	status, body, err := c.doGet(ctx, "recordings", c.recordingsURL(cursor))
	if err != nil {
		return PageResult{}, err
	}
	if status < 200 || status >= 300 {
		return PageResult{}, NewHTTPError(status, string(body))
	}
	if !gjson.ValidBytes(body) {
		return PageResult{}, NewBadResponseError("recordings page is not valid JSON")
	}

	doc := gjson.ParseBytes(body)
	page := PageResult{
		Items:      extractItems(doc),
		NextCursor: extractCursor(doc),
	}

	c.logger.Debug("[MeetingsClient] fetched recordings page",
		"items", len(page.Items),
		"has_more", page.NextCursor != "",
	)
	return page, nil
}

// GetTranscript fetches the transcript of a single recording. The returned
// value is either a plain string or a decoded structure, whichever envelope
// the upstream used. Both an upstream 404 and a success body with no
// recognizable transcript surface as not-found.
func (c *Client) GetTranscript(ctx context.Context, recordingID int64) (interface{}, error) {
	u := fmt.Sprintf("%s/recordings/%d/transcript", c.baseURL, recordingID)
	status, body, err := c.doGet(ctx, "transcript", u)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, NewHTTPError(status, string(body))
	}
	if !gjson.ValidBytes(body) {
		return nil, NewBadResponseError("transcript response is not valid JSON")
	}

	value, ok := extractTranscript(gjson.ParseBytes(body))
	if !ok {
		return nil, NewTranscriptMissingError()
	}
	return value, nil
}

// recordingsURL 构造分页列表请求地址，过滤条件展开为重复查询参数
func (c *Client) recordingsURL(cursor string) string {
	q := url.Values{}
	for _, d := range c.filters.InviteeDomains {
		q.Add("calendar_invitees_domains", d)
	}
	for _, r := range c.filters.RecordedBy {
		q.Add("recorded_by", r)
	}
	for _, t := range c.filters.Teams {
		q.Add("teams", t)
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	u := c.baseURL + "/recordings"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// doGet performs one authenticated GET against the upstream. The credential
// is checked before any network activity. Network-level failures come back
// as UPSTREAM_UNREACHABLE; non-success statuses are returned to the caller
// undecided so each operation can classify them.
func (c *Client) doGet(ctx context.Context, endpoint, rawURL string) (int, []byte, error) {
	if c.apiKey == "" {
		metrics.RecordUpstreamRequest(endpoint, "no_credential")
		return 0, nil, NewConfigMissingError()
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return 0, nil, fmt.Errorf("failed to acquire upstream slot: %w", err)
	}
	defer c.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, "unreachable")
		return 0, nil, NewUnreachableError(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	metrics.RecordUpstreamRequest(endpoint, statusClass(resp.StatusCode))
	metrics.RecordUpstreamDuration(endpoint, time.Since(start).Seconds())

	return resp.StatusCode, body, nil
}

// statusClass 将状态码折叠为指标标签（2xx/429/4xx/5xx）
func statusClass(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "429"
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
