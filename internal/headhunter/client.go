package headhunter

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL  = "https://api.hh.ru"
	userAgent       = "vector-ai/vector-backend (api@vector-ai.dev)"
	contentType     = "application/json"
	contentEncoding = "gzip, deflate, br"
)

// Client talks to the job-posting API. Every call goes through the cache, so
// two requests for the same (endpoint, parameters) within the TTL hit the
// upstream at most once.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client

	cache  *Cache
	logger *zap.Logger
}

// NewClient builds a client over cache. baseURL may be empty for the public
// API endpoint.
func NewClient(baseURL string, cache *Cache, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:  cache,
		logger: logger,
	}
}

// getJSON fetches path with the given query through the cache and returns the
// decoded generic payload. Cached values are the raw decoded documents;
// callers shape them with mapstructure.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values) (any, error) {
	key := CacheKey(path, q)
	return c.cache.Get(key, func() (any, error) {
		return c.fetchJSON(ctx, path, q)
	})
}

func (c *Client) fetchJSON(ctx context.Context, path string, q url.Values) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	c.logger.Debug("job-posting api request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Endpoint: path, Status: resp.StatusCode}
	}

	var payload any
	if err := json.NewDecoder(reader).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return payload, nil
}
