// Package client provides the products API client used by the admin view,
// with retries, a circuit breaker, an optional shared quota gate and
// Prometheus instrumentation.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/product-admin/pkg/logging"
	"github.com/Sternrassler/product-admin/pkg/product"
	"github.com/Sternrassler/product-admin/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ProductsEndpoint is the listing endpoint of the products API.
const ProductsEndpoint = "/api/products"

// maxBodyBytes bounds the listing body read into memory.
const maxBodyBytes = 32 << 20

// Prometheus metrics for products API calls.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_upstream_requests_total",
		Help: "Total products API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "admin_upstream_request_duration_seconds",
		Help:    "Products API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_upstream_errors_total",
		Help: "Total products API errors by class",
	}, []string{"class"})

	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "admin_circuit_breaker_state",
		Help: "Current state of the products API circuit breaker (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors other than 429.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents transport failures and timeouts.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a 2xx response whose body is not a product list.
	ErrorClassDecode ErrorClass = "decode"
)

// Config holds the client configuration.
type Config struct {
	// BaseURL of the products API, e.g. "http://localhost:3000".
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Redis enables the shared quota gate when non-nil.
	Redis *redis.Client

	// Timeout per HTTP attempt.
	Timeout time.Duration

	// Retry overrides; zero values keep the per-class defaults.
	// MaxAttempts counts the initial request.
	MaxAttempts    int
	InitialBackoff time.Duration

	// Circuit breaker
	BreakerName        string
	BreakerFailures    uint32        // consecutive failures that open the breaker
	BreakerOpenTimeout time.Duration // time spent open before a trial request
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:            baseURL,
		UserAgent:          userAgent,
		Timeout:            30 * time.Second,
		MaxAttempts:        3,
		BreakerName:        "products-api",
		BreakerFailures:    5,
		BreakerOpenTimeout: 30 * time.Second,
	}
}

// Client fetches the product listing.
type Client struct {
	httpClient  *http.Client
	rateLimiter *ratelimit.Tracker
	breaker     *gobreaker.CircuitBreaker[[]product.Product]
	config      Config
	logger      zerolog.Logger
}

// New creates a new products API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("base URL must be http or https (got %q)", cfg.BaseURL)
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.MaxAttempts < 0 {
		return nil, fmt.Errorf("max_attempts must be >= 0 (got %d)", cfg.MaxAttempts)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BreakerName == "" {
		cfg.BreakerName = "products-api"
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	logger := logging.NewLogger("products-client")

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}

	if cfg.Redis != nil {
		c.rateLimiter = ratelimit.NewTracker(cfg.Redis, logger)
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]product.Product](gobreaker.Settings{
		Name:        cfg.BreakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
			circuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	circuitBreakerState.WithLabelValues(cfg.BreakerName).Set(0)

	return c, nil
}

// breakerSuccess decides which failures count against the upstream.
// Client errors and caller cancellation say nothing about upstream health.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	switch ClassOf(err) {
	case ErrorClassClient, ErrorClassDecode:
		return true
	}
	return false
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// ListProducts fetches the full product collection.
func (c *Client) ListProducts(ctx context.Context) ([]product.Product, error) {
	if c.rateLimiter != nil {
		allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
		if err != nil && ctx.Err() != nil {
			upstreamRequestsTotal.WithLabelValues(ProductsEndpoint, "cancelled").Inc()
			return nil, fmt.Errorf("list products: %w: %w", ErrContextCancelled, ctx.Err())
		}
		if err != nil {
			// A broken gate must not take the admin down; fall through.
			c.logger.Warn().Err(err).Msg("Rate limit check failed")
		} else if !allowed {
			upstreamRequestsTotal.WithLabelValues(ProductsEndpoint, "rate_limited").Inc()
			return nil, ErrRateLimited
		}
	}

	products, err := c.breaker.Execute(func() ([]product.Product, error) {
		return c.fetchProducts(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			upstreamRequestsTotal.WithLabelValues(ProductsEndpoint, "circuit_open").Inc()
			return nil, fmt.Errorf("list products: %w", ErrCircuitOpen)
		}
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// fetchProducts performs the retried GET and decodes the body.
func (c *Client) fetchProducts(ctx context.Context) ([]product.Product, error) {
	var body []byte

	err := retryWithBackoff(ctx, c.logger, c.retryConfig, func() error {
		var attemptErr error
		body, attemptErr = c.getOnce(ctx, ProductsEndpoint)
		return attemptErr
	})
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", ProductsEndpoint).Msg("Products API request failed")
		return nil, err
	}

	products, err := product.DecodeList(body)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Error().Err(err).Str("endpoint", ProductsEndpoint).Msg("Malformed products response")
		return nil, &APIError{
			StatusCode: http.StatusOK,
			ErrorClass: ErrorClassDecode,
			Message:    "malformed product list",
			Err:        err,
		}
	}

	c.logger.Debug().Int("products", len(products)).Msg("Product list fetched")
	return products, nil
}

// getOnce performs a single attempt and returns the body of a 2xx response.
func (c *Client) getOnce(ctx context.Context, endpoint string) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+endpoint, nil)
	if err != nil {
		return nil, &APIError{ErrorClass: ErrorClassClient, Message: "create request", Err: err}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing products API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		upstreamRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &APIError{ErrorClass: ErrorClassNetwork, Message: "transport failure", Err: err}
	}
	defer resp.Body.Close()

	if c.rateLimiter != nil {
		if err := c.rateLimiter.UpdateFromHeaders(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}
	}

	upstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errClass := classifyStatus(resp.StatusCode)
		upstreamErrorsTotal.WithLabelValues(string(errClass)).Inc()
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Products API request error")

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}
	return body, nil
}

// retryConfig applies the configured overrides to the per-class defaults.
func (c *Client) retryConfig(errorClass ErrorClass) RetryConfig {
	cfg := RetryConfigForErrorClass(errorClass)
	if c.config.MaxAttempts > 0 {
		cfg.MaxAttempts = c.config.MaxAttempts
	}
	if c.config.InitialBackoff > 0 {
		cfg.InitialBackoff = c.config.InitialBackoff
		if cfg.MaxBackoff < cfg.InitialBackoff {
			cfg.MaxBackoff = cfg.InitialBackoff
		}
	}
	return cfg
}

// classifyStatus maps a non-2xx status to an error class.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		// 1xx/3xx that survived redirect handling: not a product list.
		return ErrorClassClient
	}
}

// BreakerState returns the circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
