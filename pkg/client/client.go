// Package client provides the cached EVE XML API request pipeline: cache
// lookup, network fetch, TTL extraction and cache store.
package client

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

	"github.com/Sternrassler/eve-xmlapi-client/pkg/cache"
	"github.com/Sternrassler/eve-xmlapi-client/pkg/xmlapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Prometheus metrics for XML API client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xmlapi_requests_total",
		Help: "Total XML API requests by action and outcome",
	}, []string{"action", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xmlapi_request_duration_seconds",
		Help:    "XML API network fetch duration in seconds by action",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"action"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xmlapi_errors_total",
		Help: "Total XML API errors by class",
	}, []string{"class"})

	coalescedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xmlapi_coalesced_requests_total",
		Help: "Total cache misses served by another in-flight fetch",
	})
)

const (
	// DefaultEndpoint is the public XML API.
	DefaultEndpoint = "https://api.eveonline.com"

	// DefaultUserAgent identifies this client upstream.
	DefaultUserAgent = "evenado/0.0.1"
)

// Credential is an API key: the key ID and its verification code.
type Credential struct {
	KeyID string
	VCode string
}

// Config holds the client configuration.
type Config struct {
	// Endpoint is the API base URL without trailing slash.
	Endpoint string

	// Credential is appended to every query when set. Its key ID selects
	// the cache silo.
	Credential *Credential

	// UserAgent header sent with every request.
	UserAgent string

	// HTTPClient performs the network fetch. Timeouts are whatever it
	// is configured with; the client adds no deadline of its own.
	HTTPClient *http.Client

	// Store caches raw response bodies (REQUIRED).
	Store cache.Store

	// Logger receives request and cache events.
	Logger zerolog.Logger

	// Coalesce merges concurrent misses on the same key into one fetch.
	// Off by default: concurrent misses each fetch and each write the
	// cache, last writer wins.
	Coalesce bool
}

// DefaultConfig returns a configuration for anonymous access to the
// public endpoint.
func DefaultConfig(store cache.Store) Config {
	return Config{
		Endpoint:   DefaultEndpoint,
		UserAgent:  DefaultUserAgent,
		HTTPClient: &http.Client{},
		Store:      store,
		Logger:     log.With().Str("component", "xmlapi-client").Logger(),
	}
}

// Client performs cached XML API requests. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	store      cache.Store
	config     Config
	endpoint   string
	logger     zerolog.Logger
	group      singleflight.Group
}

// Result is the outcome of an asynchronous Perform.
type Result struct {
	Document *xmlapi.Document
	Err      error
}

// New creates a new XML API client.
func New(cfg Config) (*Client, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("cache store is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", cfg.Endpoint)
	}

	if cfg.Credential != nil {
		if cfg.Credential.KeyID == "" || cfg.Credential.VCode == "" {
			return nil, fmt.Errorf("credential requires both key id and vcode")
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		httpClient: httpClient,
		store:      cfg.Store,
		config:     cfg,
		endpoint:   endpoint,
		logger:     cfg.Logger,
	}, nil
}

// Silo returns the cache silo this client reads and writes.
func (c *Client) Silo() string {
	if c.config.Credential == nil {
		return cache.PublicSilo
	}
	return c.config.Credential.KeyID
}

// Perform returns the document for action with params, from cache when a
// live entry exists and from the network otherwise.
//
// A response carrying an API error element is returned like any other
// document and cached for its advertised window; interpreting the error is
// up to the caller. Transport failures (*TransportError) and malformed
// bodies (xmlapi.ErrMalformedResponse) are returned as errors and never
// cached.
func (c *Client) Perform(ctx context.Context, action string, params url.Values) (*xmlapi.Document, error) {
	query := c.buildQuery(params)
	key := cache.NewKey(c.resource(action), query, c.keyID())
	logger := c.logger.With().
		Str("action", action).
		Str("silo", key.Silo).
		Str("key", key.Hash).
		Logger()

	if doc, ok := c.lookup(ctx, key, logger); ok {
		requestsTotal.WithLabelValues(action, "cache_hit").Inc()
		return doc, nil
	}

	if !c.config.Coalesce {
		return c.fetchAndStore(ctx, action, query, key, logger)
	}

	v, err, shared := c.group.Do(key.String(), func() (any, error) {
		return c.fetchAndStore(ctx, action, query, key, logger)
	})
	if shared {
		coalescedTotal.Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.(*xmlapi.Document), nil
}

// PerformAsync runs Perform in its own goroutine. The returned channel
// delivers exactly one Result and is then closed.
func (c *Client) PerformAsync(ctx context.Context, action string, params url.Values) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		doc, err := c.Perform(ctx, action, params)
		ch <- Result{Document: doc, Err: err}
	}()
	return ch
}

// Purge drops every cached response in this client's silo.
func (c *Client) Purge(ctx context.Context) error {
	if err := c.store.Purge(ctx, c.Silo()); err != nil {
		return fmt.Errorf("purge silo %s: %w", c.Silo(), err)
	}
	return nil
}

// lookup returns the cached document if a live, parseable entry exists.
// Store failures degrade to a miss.
func (c *Client) lookup(ctx context.Context, key cache.Key, logger zerolog.Logger) (*xmlapi.Document, bool) {
	body, err := c.store.Get(ctx, key.Silo, key.Hash)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			logger.Debug().Msg("Cache miss")
		} else {
			logger.Warn().Err(err).Msg("Cache get error")
		}
		return nil, false
	}

	doc, err := xmlapi.Parse(body)
	if err != nil {
		logger.Warn().Err(err).Msg("Discarding unparseable cache entry")
		return nil, false
	}

	logger.Debug().Msg("Cache hit")
	return doc, true
}

// fetchAndStore performs the network request, parses the body and caches
// it for the window advertised by the server clock.
func (c *Client) fetchAndStore(ctx context.Context, action string, query url.Values, key cache.Key, logger zerolog.Logger) (*xmlapi.Document, error) {
	body, err := c.fetch(ctx, action, query, logger)
	if err != nil {
		return nil, err
	}

	doc, err := xmlapi.Parse(body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassMalformed)).Inc()
		logger.Error().Err(err).Msg("Malformed response")
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	env := doc.Envelope()
	if env.Error != nil {
		errorsTotal.WithLabelValues(string(ErrorClassAPI)).Inc()
		logger.Info().
			Int("api_error_code", env.Error.Code).
			Str("api_error", env.Error.Message).
			Msg("API returned error document")
	}

	ttl := env.TTL()
	if !env.Cacheable() {
		logger.Debug().Dur("ttl", ttl).Msg("Response not cacheable")
		return doc, nil
	}

	if err := c.store.Set(ctx, key.Silo, key.Hash, body, ttl); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache response")
	} else {
		logger.Debug().Dur("ttl", ttl).Msg("Cached response")
	}

	return doc, nil
}

// fetch issues the GET and returns the body. A non-2xx status with a body
// is still a usable response; only a missing body is a transport failure.
func (c *Client) fetch(ctx context.Context, action string, query url.Values, logger zerolog.Logger) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(action).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(action, query), nil)
	if err != nil {
		return nil, &TransportError{Action: action, Err: c.redact(err, action, query)}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/xml")

	logger.Debug().Msg("Executing XML API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(action, "network_error").Inc()
		err = c.redact(err, action, query)
		logger.Error().Err(err).Msg("HTTP request failed")
		return nil, &TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(action, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		logger.Error().Err(err).Int("status", resp.StatusCode).Msg("Reading response body failed")
		return nil, &TransportError{Action: action, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) == 0 {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			logger.Error().Int("status", resp.StatusCode).Msg("Error status without body")
			return nil, &TransportError{
				Action:     action,
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("%s with empty body", resp.Status),
			}
		}
		logger.Warn().Int("status", resp.StatusCode).Msg("Error status with body, using body")
	}

	return body, nil
}

// buildQuery copies params and appends the credential fields.
func (c *Client) buildQuery(params url.Values) url.Values {
	query := make(url.Values, len(params)+2)
	for name, values := range params {
		query[name] = append([]string(nil), values...)
	}
	if c.config.Credential != nil {
		query.Set(cache.KeyIDParam, c.config.Credential.KeyID)
		query.Set(cache.SecretParam, c.config.Credential.VCode)
	}
	return query
}

func (c *Client) keyID() string {
	if c.config.Credential == nil {
		return ""
	}
	return c.config.Credential.KeyID
}

// resource is the request URL without its query: <endpoint>/<action>.xml.aspx.
// Cache keys hash it, so clients on different endpoints never share entries.
func (c *Client) resource(action string) string {
	return c.endpoint + "/" + action + ".xml.aspx"
}

// requestURL renders <endpoint>/<action>.xml.aspx?<sorted query>.
func (c *Client) requestURL(action string, query url.Values) string {
	u := c.resource(action)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// sanitizedURL is requestURL with the secret replaced, safe to log.
func (c *Client) sanitizedURL(action string, query url.Values) string {
	return cache.CanonicalRequest(c.resource(action), query)
}

// redact strips the secret from URLs embedded in net/http errors.
func (c *Client) redact(err error, action string, query url.Values) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = c.sanitizedURL(action, query)
	}
	return err
}
