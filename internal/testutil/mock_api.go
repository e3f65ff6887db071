// Package testutil provides testing utilities for the EVE XML API client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TimeLayout matches the XML API timestamp format.
const TimeLayout = "2006-01-02 15:04:05"

// MockResponse defines the behavior for a mock XML API response.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockAPI is a configurable mock XML API server for testing.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount  int
	actionCounts  map[string]int
	LastQuery     url.Values
	LastUserAgent string
}

// NewMockAPI creates a new mock XML API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers:     make(map[string]func(w http.ResponseWriter, r *http.Request)),
		actionCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := ActionFromPath(r.URL.Path)

		mock.mu.Lock()
		mock.RequestCount++
		mock.actionCounts[action]++
		mock.LastQuery = r.URL.Query()
		mock.LastUserAgent = r.UserAgent()
		handler, exists := mock.handlers[action]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// ActionFromPath turns /char/MarketOrders.xml.aspx into char/MarketOrders.
func ActionFromPath(path string) string {
	return strings.TrimSuffix(strings.TrimPrefix(path, "/"), ".xml.aspx")
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.actionCounts = make(map[string]int)
	m.LastQuery = nil
	m.LastUserAgent = ""
}

// SetHandler sets a custom handler for an action such as "char/MarketOrders".
func (m *MockAPI) SetHandler(action string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[action] = handler
}

// SetResponse configures a simple response for an action.
func (m *MockAPI) SetResponse(action string, resp MockResponse) {
	m.SetHandler(action, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetActionCount returns the number of requests made for one action.
func (m *MockAPI) GetActionCount(action string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.actionCounts[action]
}

// GetLastQuery returns the query of the most recent request.
func (m *MockAPI) GetLastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

// GetLastUserAgent returns the User-Agent of the most recent request.
func (m *MockAPI) GetLastUserAgent() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastUserAgent
}

// defaultHandler answers any action with an empty result cached for 5 minutes.
func (m *MockAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(Envelope(now, now.Add(5*time.Minute), "<result/>")))
}

// Envelope renders a response body with the given clock fields around inner.
func Envelope(current, cachedUntil time.Time, inner string) string {
	return fmt.Sprintf(`<?xml version='1.0' encoding='UTF-8'?>
<eveapi version="2">
  <currentTime>%s</currentTime>
  %s
  <cachedUntil>%s</cachedUntil>
</eveapi>`, current.UTC().Format(TimeLayout), inner, cachedUntil.UTC().Format(TimeLayout))
}

// NewCachedResponse creates a 200 OK response cached for ttl by the server clock.
func NewCachedResponse(current time.Time, ttl time.Duration, result string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       Envelope(current, current.Add(ttl), "<result>"+result+"</result>"),
	}
}

// NewErrorResponse creates a response carrying an API error element.
func NewErrorResponse(statusCode, code int, message string, current time.Time, ttl time.Duration) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body:       Envelope(current, current.Add(ttl), fmt.Sprintf(`<error code="%d">%s</error>`, code, message)),
	}
}

// NewEmptyResponse creates a bodiless response with the given status.
func NewEmptyResponse(statusCode int) MockResponse {
	return MockResponse{StatusCode: statusCode}
}
