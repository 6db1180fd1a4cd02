// Package testutil provides testing utilities for the TIDAL client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
)

// MockResponse defines the behavior for a mock API endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockTidal is a configurable mock TIDAL API server for testing.
type MockTidal struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	Requests          []*url.URL
	LastRequestHeader http.Header
}

// NewMockTidal creates a new mock API server.
func NewMockTidal() *MockTidal {
	mock := &MockTidal{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.Requests = append(mock.Requests, r.URL)
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockTidal) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockTidal) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockTidal) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Requests = nil
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockTidal) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockTidal) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetPaginatedItems configures a path to serve items from a flat-list
// envelope, sliced by the offset and limit query parameters the way the
// real list endpoints behave. Items are JSON object literals.
func (m *MockTidal) SetPaginatedItems(path string, items []string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = len(items)
		}

		end := offset + limit
		if offset > len(items) {
			offset = len(items)
		}
		if end > len(items) {
			end = len(items)
		}

		body := `{"items": [`
		for i, item := range items[offset:end] {
			if i > 0 {
				body += ","
			}
			body += item
		}
		body += `], "offset": ` + strconv.Itoa(offset) + `, "limit": ` + strconv.Itoa(limit) + `}`

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockTidal) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// RequestURLs returns a copy of the URLs requested so far, in order.
func (m *MockTidal) RequestURLs() []*url.URL {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*url.URL, len(m.Requests))
	copy(out, m.Requests)
	return out
}

// defaultHandler provides a default empty-object response.
func (m *MockTidal) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{}`))
}

// NumberedItems builds n sequential item object literals starting at first,
// for paginated endpoint fixtures.
func NumberedItems(first, n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"id": %d, "title": "Track %d"}`, first+i, first+i)
	}
	return items
}

// NewTokenExpiredResponse creates the 401 response the API returns for an
// expired access token.
func NewTokenExpiredResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"status": 401, "subStatus": 11003, "userMessage": "The token has expired. (Expired on time)"}`,
	}
}

// NewUnauthorizedResponse creates a 401 response with an unrelated error
// message (no refresh should be triggered for it).
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"status": 401, "subStatus": 11002, "userMessage": "Token could not be verified"}`,
	}
}

// NewNotFoundResponse creates a 404 response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"status": 404, "userMessage": "The requested resource could not be found"}`,
	}
}

// NewTokenGrantResponse creates the 200 response of a successful
// refresh-token grant.
func NewTokenGrantResponse(accessToken string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"access_token": "` + accessToken + `", "token_type": "Bearer", "expires_in": 86400}`,
	}
}
