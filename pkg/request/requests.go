// Package request provides the authenticated HTTP request layer for the
// TIDAL API: default parameter merging, transparent token refresh, and
// typed error surfacing.
package request

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Prometheus metrics for request operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidal_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tidal_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	tokenRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidal_token_refreshes_total",
		Help: "Total access token refresh attempts by result",
	}, []string{"result"})
)

// expiredMessagePrefix opens the userMessage field of the error body the
// API returns for requests made with an expired access token, e.g.
// "The token has expired. (Expired on time)".
const expiredMessagePrefix = "The token has expired."

// Params are the query parameters of one request. A nil value marks the
// parameter as absent: it is dropped before transmission and never
// overrides a default.
type Params map[string]any

// Session supplies credentials and configuration at call time. Values are
// read fresh per request so a refresh happening on another call site is
// picked up immediately.
type Session interface {
	SessionID() string
	CountryCode() string
	TokenType() string
	AccessToken() string
	RefreshToken() string

	// APILocation is the base URL request paths are resolved against.
	APILocation() string

	// ItemLimit is the default limit parameter for list endpoints.
	ItemLimit() int

	// TokenRefresh exchanges refreshToken for a new access token and
	// reports whether the session now holds a usable token.
	TokenRefresh(ctx context.Context, refreshToken string) (bool, error)
}

// Doer executes one HTTP request. *http.Client satisfies it; tests inject
// fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is one fully-read API response. The body is buffered so it can
// be inspected repeatedly and the request retried safely.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	URL        string
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON decodes the response body into a generic JSON object.
func (r *Response) JSON() (map[string]any, error) {
	var body map[string]any
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return nil, &DecodeError{URL: r.URL, Err: err}
	}
	return body, nil
}

// Client is the request layer. It owns no credentials of its own; every
// call reads them from the Session.
type Client struct {
	http    Doer
	session Session
	logger  zerolog.Logger
}

// New creates a request client around a session.
func New(session Session) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		session: session,
		logger:  log.With().Str("component", "tidal-request").Logger(),
	}
}

// SetHTTPClient replaces the underlying HTTP executor (for testing).
func (c *Client) SetHTTPClient(d Doer) {
	c.http = d
}

// Perform sends the request and recovers an expired access token once: if
// the response fails with the token-expired error body and a refresh token
// is configured, the token is refreshed and the identical request re-issued
// a single time. A successful refresh always changes the token, so the
// retry is never repeated within one call.
//
// Any still-failing response is returned as-is, without error, so callers
// can inspect status and body; Do wraps it into an error instead.
func (c *Client) Perform(ctx context.Context, method, path string, params Params, data url.Values, headers http.Header) (*Response, error) {
	resp, err := c.send(ctx, method, path, params, data, headers)
	if err != nil {
		return nil, err
	}
	if resp.OK() {
		return resp, nil
	}

	refreshToken := c.session.RefreshToken()
	if refreshToken != "" && tokenExpired(resp.Body) {
		c.logger.Debug().
			Str("endpoint", path).
			Msg("Access token expired, refreshing")

		refreshed, refreshErr := c.session.TokenRefresh(ctx, refreshToken)
		if refreshErr != nil || !refreshed {
			tokenRefreshesTotal.WithLabelValues("failure").Inc()
			c.logger.Warn().
				Err(refreshErr).
				Str("endpoint", path).
				Int("status_code", resp.StatusCode).
				Msg("Token refresh failed")
			return resp, nil
		}
		tokenRefreshesTotal.WithLabelValues("success").Inc()

		retry, err := c.send(ctx, method, path, params, data, headers)
		if err != nil {
			return nil, err
		}
		if !retry.OK() {
			c.logger.Warn().
				Str("endpoint", path).
				Int("status_code", retry.StatusCode).
				Msg("HTTP error after token refresh")
			c.logger.Debug().
				Str("response_text", string(retry.Body)).
				Msg("Response text")
		}
		return retry, nil
	}

	c.logger.Warn().
		Str("endpoint", path).
		Int("status_code", resp.StatusCode).
		Msg("HTTP error")
	c.logger.Debug().
		Str("response_text", string(resp.Body)).
		Msg("Response text")
	return resp, nil
}

// Do performs an orchestrated request and converts any remaining failure
// (status >= 400) into an *APIError. The failed response is still returned
// alongside the error for callers that need the raw body.
func (c *Client) Do(ctx context.Context, method, path string, params Params, data url.Values, headers http.Header) (*Response, error) {
	resp, err := c.Perform(ctx, method, path, params, data, headers)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("url", resp.URL).
		Msg("Request")

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(resp.Body),
			URL:        resp.URL,
		}
	}

	if len(resp.Body) > 0 && c.logger.GetLevel() <= zerolog.DebugLevel {
		c.logger.Debug().
			Str("response", string(pretty.Pretty(resp.Body))).
			Msg("Response")
	}
	return resp, nil
}

// tokenExpired reports whether body is the structured token-expired error.
// Empty and non-JSON bodies carry no structured message and never match.
func tokenExpired(body []byte) bool {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return false
	}
	return strings.HasPrefix(gjson.GetBytes(body, "userMessage").String(), expiredMessagePrefix)
}
