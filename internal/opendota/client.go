// Package opendota is a small client for the OpenDota REST API used by
// ingestion. Requests are retried with backoff; match details are cached in
// memory and, when configured, in the store.
package opendota

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/DoyleJ11/ti-helper/internal/store"
)

const (
	DefaultBaseURL   = "https://api.opendota.com/api"
	DefaultCacheSize = 1024
	DefaultRetryMax  = 4
)

// APIError is a non-2xx answer that survived the retry policy.
type APIError struct {
	Status int
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("opendota %s: status %d: %s", e.Path, e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	base   string
	apiKey string
	http   *retryablehttp.Client
	cache  store.ResponseCache
	recent *lru.Cache[string, []byte]
	log    *zap.Logger

	cacheSize int
}

type Option func(*Client)

func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithCache persists match responses in the store.
func WithCache(rc store.ResponseCache) Option {
	return func(c *Client) { c.cache = rc }
}

func WithCacheSize(n int) Option {
	return func(c *Client) { c.cacheSize = n }
}

func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.http.RetryMax = max
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.HTTPClient.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.RetryMax = DefaultRetryMax
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		base:      strings.TrimRight(baseURL, "/"),
		http:      rc,
		log:       zap.NewNop(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	rc.Logger = leveledLogger{c.log.Sugar()}

	recent, err := lru.New[string, []byte](c.cacheSize)
	if err != nil {
		recent, _ = lru.New[string, []byte](DefaultCacheSize)
	}
	c.recent = recent
	return c
}

func (c *Client) HeroStats(ctx context.Context) ([]HeroStat, error) {
	var out []HeroStat
	return out, c.getJSON(ctx, "/heroStats", &out)
}

func (c *Client) League(ctx context.Context, leagueID int64) (League, error) {
	var out League
	return out, c.getJSON(ctx, "/leagues/"+strconv.FormatInt(leagueID, 10), &out)
}

func (c *Client) LeagueMatches(ctx context.Context, leagueID int64) ([]LeagueMatch, error) {
	var out []LeagueMatch
	return out, c.getJSON(ctx, "/leagues/"+strconv.FormatInt(leagueID, 10)+"/matches", &out)
}

func (c *Client) LeagueTeams(ctx context.Context, leagueID int64) ([]LeagueTeam, error) {
	var out []LeagueTeam
	return out, c.getJSON(ctx, "/leagues/"+strconv.FormatInt(leagueID, 10)+"/teams", &out)
}

func (c *Client) TeamPlayers(ctx context.Context, teamID int64) ([]TeamPlayer, error) {
	var out []TeamPlayer
	return out, c.getJSON(ctx, "/teams/"+strconv.FormatInt(teamID, 10)+"/players", &out)
}

// Match returns full match details, served from cache when possible. Only
// responses that carry players are cached; OpenDota answers unparsed matches
// with a stub.
func (c *Client) Match(ctx context.Context, matchID int64) (Match, error) {
	path := "/matches/" + strconv.FormatInt(matchID, 10)

	if body, ok := c.cached(ctx, path); ok {
		var m Match
		if err := json.Unmarshal(body, &m); err == nil {
			return m, nil
		}
		c.log.Warn("discarding unreadable cached match", zap.Int64("match_id", matchID))
	}

	body, err := c.get(ctx, path)
	if err != nil {
		return Match{}, err
	}
	var m Match
	if err := json.Unmarshal(body, &m); err != nil {
		return Match{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(m.Players) > 0 {
		c.remember(ctx, path, body)
	}
	return m, nil
}

func (c *Client) cached(ctx context.Context, path string) ([]byte, bool) {
	if body, ok := c.recent.Get(path); ok {
		return body, true
	}
	if c.cache == nil {
		return nil, false
	}
	body, _, err := c.cache.CachedResponse(ctx, path)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.log.Warn("response cache read failed", zap.String("path", path), zap.Error(err))
		}
		return nil, false
	}
	c.recent.Add(path, body)
	return body, true
}

func (c *Client) remember(ctx context.Context, path string, body []byte) {
	c.recent.Add(path, body)
	if c.cache == nil {
		return
	}
	if err := c.cache.CacheResponse(ctx, path, body); err != nil {
		c.log.Warn("response cache write failed", zap.String("path", path), zap.Error(err))
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	u := c.base + path
	if c.apiKey != "" {
		u += "?api_key=" + url.QueryEscape(c.apiKey)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opendota %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Path: path, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// leveledLogger routes retryablehttp's logging through zap.
type leveledLogger struct{ s *zap.SugaredLogger }

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
