package myvariant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/tumorboard-evidence-service/internal/domain"
)

const (
	// DefaultBaseURL is the MyVariant.info v1 API root.
	DefaultBaseURL = "https://myvariant.info/v1"

	// DefaultTimeout is the per-request timeout applied at construction.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the total number of attempts for a query,
	// including the first one.
	DefaultMaxRetries = 3

	defaultRetryWaitMin = 2 * time.Second
	defaultRetryWaitMax = 10 * time.Second
	defaultRateLimit    = 10 // requests per second

	// maxBodyExcerpt bounds how much of an upstream error body is carried
	// into the error message.
	maxBodyExcerpt = 512
)

// Client is an HTTP client for the MyVariant.info API. The underlying
// session is pooled, acquired lazily on first use and safe for concurrent
// use by multiple in-flight calls. The client imposes no concurrency limit
// beyond a per-client politeness rate limiter.
type Client struct {
	baseURL      string
	timeout      time.Duration
	maxRetries   int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	logger  *logrus.Logger
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker

	mu         sync.Mutex
	httpClient *http.Client
}

// NewClient creates a MyVariant API client. Zero values in cfg fall back to
// the package defaults.
func NewClient(cfg domain.MyVariantConfig, logger *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryWaitMin == 0 {
		cfg.RetryWaitMin = defaultRetryWaitMin
	}
	if cfg.RetryWaitMax == 0 {
		cfg.RetryWaitMax = defaultRetryWaitMax
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if logger == nil {
		logger = logrus.New()
	}

	cbSettings := gobreaker.Settings{
		Name:        "MyVariant",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit_breaker": name,
				"from_state":      from,
				"to_state":        to,
			}).Warn("Circuit breaker state changed")
		},
	}

	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout:      cfg.Timeout,
		maxRetries:   cfg.MaxRetries,
		retryWaitMin: cfg.RetryWaitMin,
		retryWaitMax: cfg.RetryWaitMax,
		logger:       logger,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit),
		breaker:      gobreaker.NewCircuitBreaker(cbSettings),
	}
}

// session returns the pooled HTTP client, creating it on first use.
func (c *Client) session() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return c.httpClient
}

// Close releases the pooled session. It is a no-op when the session was
// never acquired or was already closed; the next call re-acquires lazily.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
	}
}

// Query executes a search query against the /query endpoint. Network-level
// failures and timeouts are retried with exponential backoff; well-formed
// error responses are surfaced immediately. All failures are returned as a
// *domain.APIError.
func (c *Client) Query(ctx context.Context, query string, fields []string) (map[string]interface{}, error) {
	var lastErr error

	wait := c.retryWaitMin
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			c.logger.WithFields(logrus.Fields{
				"query":   query,
				"attempt": attempt,
				"wait":    wait.String(),
			}).Warn("Retrying MyVariant query after transient failure")

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, domain.WrapAPIError(domain.ErrUpstreamAPI, ctx.Err().Error(), ctx.Err())
			}

			wait *= 2
			if wait > c.retryWaitMax {
				wait = c.retryWaitMax
			}
		}

		result, retryable, err := c.doQuery(ctx, query, fields)
		if err == nil {
			return result, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// GetVariant fetches a single variant by ID (HGVS, dbSNP rsid, etc.) from
// the /variant direct-lookup endpoint.
func (c *Client) GetVariant(ctx context.Context, variantID string) (map[string]interface{}, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, domain.WrapAPIError(domain.ErrUpstreamAPI, err.Error(), err)
	}

	lookupURL := fmt.Sprintf("%s/variant/%s", c.baseURL, url.PathEscape(variantID))

	result, err := c.breaker.Execute(func() (interface{}, error) {
		data, _, err := c.roundTrip(ctx, lookupURL)
		return data, err
	})
	if err != nil {
		if apiErr, ok := err.(*domain.APIError); ok {
			return nil, apiErr
		}
		return nil, domain.WrapAPIError(domain.ErrUpstreamAPI, fmt.Sprintf("failed to fetch variant: %s", err), err)
	}

	return result.(map[string]interface{}), nil
}

// doQuery performs a single /query round trip. The second return value
// reports whether the failure is transient and worth another attempt.
func (c *Client) doQuery(ctx context.Context, query string, fields []string) (map[string]interface{}, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, domain.WrapAPIError(domain.ErrUpstreamAPI, err.Error(), err)
	}

	params := url.Values{"q": {query}}
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}
	queryURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	result, err := c.breaker.Execute(func() (interface{}, error) {
		data, retryable, err := c.roundTrip(ctx, queryURL)
		if err != nil {
			if retryable {
				return nil, err
			}
			// A well-formed upstream error response is an answer, not a
			// transport failure; carry it through as the result so it does
			// not count toward the breaker.
			return err, nil
		}
		return data, nil
	})
	if err != nil {
		if apiErr, ok := err.(*domain.APIError); ok {
			return nil, true, apiErr
		}
		// Breaker open or other gobreaker-level failure.
		return nil, true, domain.WrapAPIError(domain.ErrUpstreamAPI, err.Error(), err)
	}

	if apiErr, ok := result.(*domain.APIError); ok {
		return nil, false, apiErr
	}

	return result.(map[string]interface{}), true, nil
}

// roundTrip executes one GET and decodes the JSON body. It returns a
// retryable=true error only for network-level failures and timeouts;
// non-2xx statuses and explicit error bodies are terminal.
func (c *Client) roundTrip(ctx context.Context, rawURL string) (map[string]interface{}, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, domain.WrapAPIError(domain.ErrUpstreamAPI, fmt.Sprintf("failed to create request: %s", err), err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.session().Do(req)
	if err != nil {
		if isTimeout(err) {
			msg := fmt.Sprintf("request timed out after %s", c.timeout)
			return nil, true, domain.WrapAPIError(domain.ErrTimeout, msg, err)
		}
		return nil, true, domain.WrapAPIError(domain.ErrUpstreamAPI, err.Error(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, domain.WrapAPIError(domain.ErrUpstreamAPI, fmt.Sprintf("failed to read response: %s", err), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("upstream returned status %d: %s", resp.StatusCode, bodyExcerpt(body))
		return nil, false, domain.NewAPIError(domain.ErrUpstreamAPI, msg)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, false, domain.WrapAPIError(domain.ErrUpstreamAPI, fmt.Sprintf("failed to decode response: %s", err), err)
	}

	if apiErr, ok := data["error"]; ok {
		msg := fmt.Sprintf("API error: %v", apiErr)
		return nil, false, domain.NewAPIError(domain.ErrUpstreamAPI, msg)
	}

	return data, false, nil
}

// isTimeout reports whether err represents a request timeout.
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// bodyExcerpt truncates an upstream body for inclusion in error messages.
func bodyExcerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodyExcerpt {
		return s[:maxBodyExcerpt] + "..."
	}
	return s
}
