// Package client is the HTTP source client for the ingestion engine. It
// performs one GET per run against a JSON endpoint, optionally appending the
// API key as a query parameter, and decodes the response into raw records.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"sportseed/internal/metrics"
)

// PayloadCache stores raw response bodies keyed by request URL. Implemented
// by the Redis cache; nil disables caching.
type PayloadCache interface {
	GetPayload(ctx context.Context, key string) ([]byte, bool)
	SetPayload(ctx context.Context, key string, body []byte)
}

// Client fetches JSON arrays of records from sports data APIs
type Client struct {
	apiKey     string
	httpClient *http.Client
	cache      PayloadCache
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a source client. apiKey may be empty for keyless sources
// (e.g. Sleeper); cache may be nil.
func NewClient(apiKey string, timeout time.Duration, cache PayloadCache) *Client {
	return &Client{
		apiKey:     apiKey,
		cache:      cache,
		maxRetries: 3,
		retryDelay: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchRecords performs a single GET against the endpoint and decodes the
// body as a JSON array of objects. Any non-200 response is an error; the
// caller treats it as fatal for the run. Cached payloads are keyed by the
// credential-free URL.
func (c *Client) FetchRecords(ctx context.Context, rawURL string, params map[string]string) ([]map[string]any, error) {
	cacheKey, err := buildURL(rawURL, params)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if body, ok := c.cache.GetPayload(ctx, cacheKey); ok {
			metrics.RecordCacheHit()
			return decodeRecords(body)
		}
		metrics.RecordCacheMiss()
	}

	body, err := c.get(ctx, c.withAPIKey(cacheKey))
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.SetPayload(ctx, cacheKey, body)
	}

	return decodeRecords(body)
}

// buildURL appends query parameters to the endpoint URL.
func buildURL(rawURL string, params map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid source URL %s: %w", rawURL, err)
	}

	q := u.Query()
	for key, value := range params {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// withAPIKey appends the API key to an already validated URL. The key stays
// out of cache keys, so rotating it leaves cached payloads addressable.
func (c *Client) withAPIKey(cleanURL string) string {
	if c.apiKey == "" {
		return cleanURL
	}
	u, err := url.Parse(cleanURL)
	if err != nil {
		return cleanURL
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String()
}

// get performs the GET request with retry logic for transient failures
func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	start := time.Now()
	host := hostOf(requestURL)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("host", host).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "sportseed/1.0")

		log.Debug().
			Str("host", host).
			Int("attempt", attempt+1).
			Msg("Making API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("API request failed: %w", err)
			if attempt < c.maxRetries {
				continue
			}
			metrics.RecordAPICall(host, "error", time.Since(start).Seconds())
			return nil, lastErr
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			if attempt < c.maxRetries {
				continue
			}
			metrics.RecordAPICall(host, "error", time.Since(start).Seconds())
			return nil, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			metrics.RecordAPICall(host, "ok", time.Since(start).Seconds())
			log.Debug().
				Str("host", host).
				Int("size", len(body)).
				Msg("API request successful")
			return body, nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("API returned retryable status %d: %s", resp.StatusCode, string(body))
			if attempt < c.maxRetries {
				log.Warn().
					Str("host", host).
					Int("status", resp.StatusCode).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			metrics.RecordAPICall(host, "error", time.Since(start).Seconds())
			return nil, lastErr

		case http.StatusUnauthorized, http.StatusForbidden:
			// Don't retry auth errors
			metrics.RecordAPICall(host, "auth_error", time.Since(start).Seconds())
			return nil, fmt.Errorf("API authentication failed (status %d): %s", resp.StatusCode, string(body))

		default:
			metrics.RecordAPICall(host, "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}

// decodeRecords unmarshals a JSON array of flat or nested objects.
func decodeRecords(body []byte) ([]map[string]any, error) {
	var records []map[string]any
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}
	return records, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	return u.Host
}
