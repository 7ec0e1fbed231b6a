package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hn-discuss/internal/model"
	"hn-discuss/internal/observe"

	"golang.org/x/time/rate"
)

const (
	DefaultByDateURL   = "https://hn.algolia.com/api/v1/search_by_date"
	DefaultByPointsURL = "https://hn.algolia.com/api/v1/search"
)

// Client queries the Hacker News Algolia search API.
// Docs: https://hn.algolia.com/api
type Client struct {
	byDateURL   string
	byPointsURL string
	userAgent   string
	client      *http.Client
	limiter     *rate.Limiter
	reporter    observe.Reporter
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	ByDateURL         string
	ByPointsURL       string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 means unlimited
	UserAgent         string
	Reporter          observe.Reporter
	HTTPClient        *http.Client
}

// NewClient creates a new search client.
func NewClient(opts Options) *Client {
	byDate := strings.TrimSpace(opts.ByDateURL)
	if byDate == "" {
		byDate = DefaultByDateURL
	}
	byPoints := strings.TrimSpace(opts.ByPointsURL)
	if byPoints == "" {
		byPoints = DefaultByPointsURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	rep := opts.Reporter
	if rep == nil {
		rep = observe.LogReporter{}
	}
	return &Client{
		byDateURL:   strings.TrimRight(byDate, "/"),
		byPointsURL: strings.TrimRight(byPoints, "/"),
		userAgent:   opts.UserAgent,
		client:      hc,
		limiter:     limiter,
		reporter:    rep,
	}
}

// Endpoint maps a sort mode to its base endpoint. There is no fallback between the two.
func (c *Client) Endpoint(sort model.Sort) string {
	if sort == model.SortDate {
		return c.byDateURL
	}
	return c.byPointsURL
}

// searchResponse is the upstream envelope.
type searchResponse[T any] struct {
	Hits   []T `json:"hits"`
	NbHits int `json:"nbHits"`
}

// request is one upstream call, kept for failure reports.
type request struct {
	op       string
	endpoint string
	params   url.Values
	storyID  int64
	page     int
}

// fetchResult separates parsed hits from a failure that callers treat as empty.
type fetchResult[T any] struct {
	hits    []T
	failure *observe.Failure
}

// hitsOrEmpty reports a failure to the sink and returns no hits for it.
func (r fetchResult[T]) hitsOrEmpty(ctx context.Context, rep observe.Reporter) []T {
	if r.failure != nil {
		rep.Report(ctx, *r.failure)
		return nil
	}
	return r.hits
}

func fetchHits[T any](ctx context.Context, c *Client, req request) fetchResult[T] {
	fail := func(status int, err error) fetchResult[T] {
		return fetchResult[T]{failure: &observe.Failure{
			Op:       req.op,
			Endpoint: req.endpoint,
			Query:    req.params.Get("query"),
			StoryID:  req.storyID,
			Page:     req.page,
			Status:   status,
			Err:      err,
			At:       time.Now().UTC(),
		}}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fail(0, err)
	}
	endpoint := req.endpoint + "?" + req.params.Encode()
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fail(0, err)
	}
	if c.userAgent != "" {
		hreq.Header.Set("User-Agent", c.userAgent)
	}
	hreq.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(hreq)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(resp.StatusCode, fmt.Errorf("hackernews: %s status %d", req.op, resp.StatusCode))
	}
	var env searchResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("hackernews: %s decode: %w", req.op, err))
	}
	slog.Debug("hackernews: fetched hits", "op", req.op, "hits", len(env.Hits), "nb_hits", env.NbHits, "page", req.page)
	return fetchResult[T]{hits: env.Hits}
}
