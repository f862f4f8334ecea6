// Package gateway talks to the data service: option lists for the dropdowns
// and stats bundles for the stats region. Every call is one request with no
// retry.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"

	"github.com/DoyleJ11/ti-helper/internal/observability"
	"github.com/DoyleJ11/ti-helper/internal/stats"
	"github.com/DoyleJ11/ti-helper/pkg/types"
)

var ErrTransport = errors.New("data service unreachable")
var ErrMalformed = errors.New("malformed data service response")

// ServiceError is an answer from the data service that reports a failure.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("data service error (status %d)", e.Status)
	}
	return e.Message
}

// OptionList is a parsed <option> fragment without its placeholder.
type OptionList struct {
	Options []types.Option
}

type Client struct {
	base    string
	http    *http.Client
	log     *zap.Logger
	metrics *observability.Metrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: cleanhttp.DefaultPooledClient(),
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Teams lists the teams that played in a league.
func (c *Client) Teams(ctx context.Context, leagueID string) (OptionList, error) {
	return c.options(ctx, "teams", "/teams/"+url.PathEscape(leagueID))
}

// Players lists the active players of a team.
func (c *Client) Players(ctx context.Context, teamID string) (OptionList, error) {
	return c.options(ctx, "players", "/players/"+url.PathEscape(teamID))
}

// Heroes lists the heroes a player has played, or every hero for an empty id.
func (c *Client) Heroes(ctx context.Context, playerID string) (OptionList, error) {
	if playerID == "" {
		return c.options(ctx, "heroes", "/heroes")
	}
	return c.options(ctx, "heroes", "/heroes/"+url.PathEscape(playerID))
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Stats fetches the bundle for a query. An unsuccessful envelope comes back as
// a *ServiceError; an empty bundle is not an error.
func (c *Client) Stats(ctx context.Context, q stats.Query) (stats.Bundle, error) {
	body, status, err := c.get(ctx, "stats", "/stats/context?"+q.Values().Encode())
	if err != nil && status == 0 {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !env.Success {
		return nil, &ServiceError{Status: status, Message: env.Error}
	}
	if err != nil {
		return nil, &ServiceError{Status: status}
	}

	bundle := stats.Bundle{}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return bundle, nil
	}
	if err := json.Unmarshal(env.Data, &bundle); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return bundle, nil
}

func (c *Client) options(ctx context.Context, endpoint, path string) (OptionList, error) {
	body, status, err := c.get(ctx, endpoint, path)
	if err != nil && status == 0 {
		return OptionList{}, err
	}

	opts, message, perr := parseOptions(body)
	if err != nil {
		return OptionList{}, &ServiceError{Status: status, Message: message}
	}
	if perr != nil {
		return OptionList{}, fmt.Errorf("%w: %v", ErrMalformed, perr)
	}
	return OptionList{Options: opts}, nil
}

// get returns the body and status. A non-2xx answer yields the body, its
// status and a non-nil error; a transport failure yields status 0.
func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, int, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveGateway(endpoint, "transport_error", time.Since(start))
		c.log.Warn("data service request failed", zap.String("path", path), zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveGateway(endpoint, "transport_error", time.Since(start))
		return nil, 0, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.ObserveGateway(endpoint, "service_error", time.Since(start))
		c.log.Warn("data service error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return body, resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode)
	}

	c.metrics.ObserveGateway(endpoint, "ok", time.Since(start))
	c.log.Debug("data service request", zap.String("path", path), zap.Duration("took", time.Since(start)))
	return body, resp.StatusCode, nil
}
