// Package fetch is the HTTP transport shared by the data providers: rate
// limited, retried and backed by the sqlite page cache.
package fetch

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/meta-collector/internal/logging"
	"github.com/ramonehamilton/meta-collector/internal/metrics"
	"github.com/ramonehamilton/meta-collector/internal/storage/models"
)

// Cache stores response bodies. repository.PageCacheRepository satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) (*models.CachedPage, error)
	Put(ctx context.Context, page *models.CachedPage) error
}

// Config configures a Client.
type Config struct {
	// UserAgent is sent with every request.
	UserAgent string

	// RequestTimeout bounds a single attempt.
	RequestTimeout time.Duration

	// RateLimit is the minimum spacing between network requests.
	RateLimit time.Duration

	// RetryMax is the number of retries after the first attempt.
	RetryMax int

	// RetryWaitMin and RetryWaitMax bound the retry backoff.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// CacheTTL is how long a cached body is served without refetching.
	// Zero disables cache reads; responses are still written.
	CacheTTL time.Duration
}

// DefaultConfig returns default configuration.
func DefaultConfig() *Config {
	return &Config{
		UserAgent:      "meta-collector/1.0",
		RequestTimeout: 30 * time.Second,
		RateLimit:      100 * time.Millisecond,
		RetryMax:       3,
		RetryWaitMin:   1 * time.Second,
		RetryWaitMax:   16 * time.Second,
		CacheTTL:       12 * time.Hour,
	}
}

// Client performs cached GET and POST requests.
type Client struct {
	http      *retryablehttp.Client
	limiter   *rate.Limiter
	cache     Cache
	ttl       time.Duration
	userAgent string
	metrics   *metrics.FetchMetrics
	now       func() time.Time
}

// NewClient creates a client. cache may be nil.
func NewClient(config *Config, cache Cache) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = config.RequestTimeout
	rc.RetryMax = config.RetryMax
	rc.RetryWaitMin = config.RetryWaitMin
	rc.RetryWaitMax = config.RetryWaitMax
	rc.Logger = leveledLogger{entry: logging.Log.WithField("component", "fetch")}

	return &Client{
		http:      rc,
		limiter:   rate.NewLimiter(rate.Every(config.RateLimit), 1),
		cache:     cache,
		ttl:       config.CacheTTL,
		userAgent: config.UserAgent,
		now:       time.Now,
	}
}

// WithMetrics makes the client count its requests and cache lookups in m.
func (c *Client) WithMetrics(m *metrics.FetchMetrics) *Client {
	c.metrics = m
	return c
}

// Metrics returns the collector set with WithMetrics, or nil.
func (c *Client) Metrics() *metrics.FetchMetrics {
	return c.metrics
}

// Fresh returns a client sharing c's transport and limiter that always goes
// to the network and then refreshes the cache.
func (c *Client) Fresh() *Client {
	fresh := *c
	fresh.ttl = 0
	return &fresh
}

// Get fetches url.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, "", nil)
}

// Post sends body to url. Responses are cached by url and body.
func (c *Client) Post(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, contentType, body)
}

// CacheKey identifies a request in the page cache.
func CacheKey(method, url string, body []byte) string {
	h, _ := blake2b.New256(nil)
	_, _ = io.WriteString(h, method)
	_, _ = io.WriteString(h, " ")
	_, _ = io.WriteString(h, url)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Client) do(ctx context.Context, method, url, contentType string, body []byte) ([]byte, error) {
	key := CacheKey(method, url, body)
	log := logging.Log.WithFields(logrus.Fields{"method": method, "url": url})

	if cached := c.lookup(ctx, key); cached != nil {
		log.Debug("page cache hit")
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	var reqBody any
	if body != nil {
		reqBody = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	data, status, err := c.send(req)
	if err == nil && status != http.StatusOK {
		err = &StatusError{URL: url, StatusCode: status}
	}
	c.metrics.RecordRequest(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	c.store(ctx, &models.CachedPage{
		Key:        key,
		URL:        url,
		StatusCode: status,
		Body:       data,
		FetchedAt:  c.now(),
	})

	return data, nil
}

func (c *Client) send(req *retryablehttp.Request) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

func (c *Client) lookup(ctx context.Context, key string) []byte {
	if c.cache == nil || c.ttl <= 0 {
		return nil
	}
	page, err := c.cache.Get(ctx, key)
	if err != nil {
		logging.Log.WithError(err).Warn("page cache read failed")
		return nil
	}
	if page == nil || c.now().Sub(page.FetchedAt) > c.ttl {
		c.metrics.RecordCache(false)
		return nil
	}
	c.metrics.RecordCache(true)
	return page.Body
}

func (c *Client) store(ctx context.Context, page *models.CachedPage) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(ctx, page); err != nil {
		logging.Log.WithError(err).Warn("page cache write failed")
	}
}

// StatusError reports a non-200 response after retries.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// leveledLogger adapts logrus to retryablehttp.LeveledLogger. Request
// chatter goes to debug.
type leveledLogger struct {
	entry *logrus.Entry
}

func (l leveledLogger) fields(kv []any) *logrus.Entry {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return l.entry.WithFields(f)
}

func (l leveledLogger) Error(msg string, kv ...any) { l.fields(kv).Error(msg) }
func (l leveledLogger) Info(msg string, kv ...any)  { l.fields(kv).Debug(msg) }
func (l leveledLogger) Debug(msg string, kv ...any) { l.fields(kv).Debug(msg) }
func (l leveledLogger) Warn(msg string, kv ...any)  { l.fields(kv).Warn(msg) }
