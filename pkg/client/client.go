// Package client provides the YouTube Data API v3 client with API key
// rotation, request pacing and error classification.
package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Sternrassler/yt-finder/pkg/keypool"
	"github.com/Sternrassler/yt-finder/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Prometheus metrics for API client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytfinder_requests_total",
		Help: "Total YouTube API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ytfinder_request_duration_seconds",
		Help:    "YouTube API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytfinder_errors_total",
		Help: "Total YouTube API errors by class",
	}, []string{"class"})

	poolExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ytfinder_pool_exhausted_total",
		Help: "Total calls that failed after every API key was tried",
	})
)

// MaxPageSize is the largest maxResults the API accepts for list calls.
const MaxPageSize = 50

// Config holds the client configuration.
type Config struct {
	// UserAgent is appended to the User-Agent of every request.
	UserAgent string

	// Endpoint overrides the API base URL (tests, proxies).
	Endpoint string

	// Timeout per HTTP request.
	Timeout time.Duration

	// RateLimit is the maximum number of requests per second, all keys combined.
	RateLimit float64
	Burst     int

	// PageSize is maxResults for paginated calls.
	PageSize int64

	// ProbeQuery is the search term used by the quota probe.
	ProbeQuery string

	// Pagination configures the paginator used for multi-page listings.
	Pagination pagination.Config
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:  userAgent,
		Timeout:    30 * time.Second,
		RateLimit:  5,
		Burst:      1,
		PageSize:   MaxPageSize,
		ProbeQuery: "test",
		Pagination: pagination.DefaultConfig(),
	}
}

// Client issues YouTube Data API calls through a shared key pool.
//
// Calls are meant to be issued one at a time. The pool cursor is shared
// with every other holder of the pool.
type Client struct {
	pool      *keypool.Pool
	config    Config
	transport http.RoundTripper
	limiter   *rate.Limiter
	paginator *pagination.Paginator
	logger    zerolog.Logger

	mu       sync.Mutex
	services map[string]*youtube.Service
}

// New creates a new client bound to pool.
func New(pool *keypool.Pool, cfg Config) (*Client, error) {
	if pool == nil {
		return nil, fmt.Errorf("key pool is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.PageSize <= 0 || cfg.PageSize > MaxPageSize {
		return nil, fmt.Errorf("page_size must be in [1, %d] (got %d)", MaxPageSize, cfg.PageSize)
	}

	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("rate_limit must be > 0 (got %g)", cfg.RateLimit)
	}

	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ProbeQuery == "" {
		cfg.ProbeQuery = "test"
	}

	logger := log.With().Str("component", "youtube-client").Logger()

	return &Client{
		pool:      pool,
		config:    cfg,
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		paginator: pagination.New(cfg.Pagination, logger),
		logger:    logger,
		services:  make(map[string]*youtube.Service),
	}, nil
}

// service returns the API service bound to key.
func (c *Client) service(ctx context.Context, key string) (*youtube.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if svc, ok := c.services[key]; ok {
		return svc, nil
	}

	opts := []option.ClientOption{
		option.WithHTTPClient(&http.Client{
			Transport: &transport.APIKey{Key: key, Transport: c.transport},
			Timeout:   c.config.Timeout,
		}),
	}
	if c.config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.config.Endpoint))
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	svc.UserAgent = c.config.UserAgent

	c.services[key] = svc
	return svc, nil
}

// Pool returns the key pool the client rotates through.
func (c *Client) Pool() *keypool.Pool {
	return c.pool
}

// SetTransport sets a custom HTTP transport (for testing).
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transport = rt
	c.services = make(map[string]*youtube.Service)
}

// SetLogger replaces the client logger.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
	c.paginator = pagination.New(c.config.Pagination, logger)
}
