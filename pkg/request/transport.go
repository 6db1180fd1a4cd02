package request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// send issues exactly one HTTP call: it merges the caller's params over the
// session defaults, resolves the path against the API location, attaches
// the authorization header when a token type is set, and returns the raw
// buffered response. It never interprets the status; transport-level
// failures (DNS, connection) propagate unchanged.
func (c *Client) send(ctx context.Context, method, path string, params Params, data url.Values, headers http.Header) (*Response, error) {
	u, err := c.resolveURL(path)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("sessionId", c.session.SessionID())
	query.Set("countryCode", c.session.CountryCode())
	query.Set("limit", strconv.Itoa(c.session.ItemLimit()))
	for key, value := range params {
		if value == nil {
			// Absent values keep the default instead of clearing it.
			continue
		}
		query.Set(key, paramValue(value))
	}
	u.RawQuery = query.Encode()

	var body io.Reader
	if data != nil {
		body = strings.NewReader(data.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if data != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	if tokenType := c.session.TokenType(); tokenType != "" {
		req.Header.Set("Authorization", tokenType+" "+c.session.AccessToken())
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       respBody,
		URL:        req.URL.String(),
	}, nil
}

// resolveURL joins path against the session's API location with standard
// URL-join semantics: a rooted path replaces the base path component, a
// relative one extends it.
func (c *Client) resolveURL(path string) (*url.URL, error) {
	base, err := url.Parse(c.session.APILocation())
	if err != nil {
		return nil, fmt.Errorf("parse api location: %w", err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse request path %q: %w", path, err)
	}
	return base.ResolveReference(ref), nil
}

// paramValue renders one query parameter value. The API takes strings and
// integers; anything else falls back to its default formatting.
func paramValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
