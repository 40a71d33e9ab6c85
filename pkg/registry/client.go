package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultTimeout bounds every registry request
	DefaultTimeout = 5 * time.Second
	// DefaultCacheSize is the number of subjects kept in memory
	DefaultCacheSize = 128

	contentType = "application/vnd.schemaregistry.v1+json"
)

// ErrNotFound is returned when the registry does not know the subject
var ErrNotFound = errors.New("subject not found in schema registry")

// Config holds configuration for the registry client
type Config struct {
	// URL is the registry endpoint, e.g. "http://localhost:18081"
	URL string

	// Username and Password enable basic auth when Username is set
	Username string
	Password string

	// Timeout for each request, DefaultTimeout when zero
	Timeout time.Duration

	// CacheSize is the number of subjects cached, DefaultCacheSize when zero
	CacheSize int

	// RetryCount is the number of retries on network errors and 5xx responses
	RetryCount int
}

type apiError struct {
	Code    int    `json:"error_code"`
	Message string `json:"message"`
}

// Client talks to the registry over HTTP
type Client struct {
	url    string
	http   *resty.Client
	schema *lru.Cache[string, []byte]
}

// NewClient creates a registry client
func NewClient(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("schema registry URL is required")
	}
	if _, err := url.ParseRequestURI(config.URL); err != nil {
		return nil, fmt.Errorf("invalid schema registry URL %q: %w", config.URL, err)
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.CacheSize <= 0 {
		config.CacheSize = DefaultCacheSize
	}

	schemaCache, err := lru.New[string, []byte](config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema cache: %w", err)
	}

	base := strings.TrimRight(config.URL, "/")
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(config.Timeout).
		SetHeader("Accept", contentType).
		SetRetryCount(config.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)
	client.AddRetryCondition(retryCondition)
	if config.Username != "" {
		client.SetBasicAuth(config.Username, config.Password)
	}

	return &Client{
		url:    base,
		http:   client,
		schema: schemaCache,
	}, nil
}

func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	return r.StatusCode() >= 500
}

// URL returns the registry base URL without a trailing slash
func (c *Client) URL() string {
	return c.url
}

// SchemaURL returns the locator of the latest schema of subject. Documents that
// reference the registry instead of embedding a schema point here.
func (c *Client) SchemaURL(subject string) string {
	return SchemaURL(c.url, subject)
}

// SchemaURL builds the latest-schema locator without a client
func SchemaURL(base, subject string) string {
	return strings.TrimRight(base, "/") + "/subjects/" + url.PathEscape(subject) + "/versions/latest/schema"
}

// LatestSchema fetches the latest schema document registered for subject
func (c *Client) LatestSchema(ctx context.Context, subject string) ([]byte, error) {
	if subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	if raw, ok := c.schema.Get(subject); ok {
		return raw, nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("subject", subject).
		SetError(&apiError{}).
		Get("/subjects/{subject}/versions/latest/schema")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema for %s: %w", subject, err)
	}
	if err := checkResponse(resp, subject); err != nil {
		return nil, err
	}

	raw := resp.Body()
	c.schema.Add(subject, raw)
	return raw, nil
}

func checkResponse(resp *resty.Response, subject string) error {
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, subject)
	}
	if resp.StatusCode() < 400 {
		return nil
	}
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr != nil && apiErr.Message != "" {
		return fmt.Errorf("schema registry returned status %d: %s (code %d)", resp.StatusCode(), apiErr.Message, apiErr.Code)
	}
	return fmt.Errorf("schema registry returned status %d: %s", resp.StatusCode(), resp.String())
}
