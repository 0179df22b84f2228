// Package upstream is the client for the external usage API.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/keymeter/internal/domain"
	"github.com/kailas-cloud/keymeter/internal/domain/quota"
	"github.com/kailas-cloud/keymeter/internal/metrics"
)

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 1 << 20

// Client queries the upstream usage API. Safe for concurrent use; the
// underlying http.Client pools connections across calls, which is a
// performance optimization only — every lookup is an independent request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
	logger     *zap.Logger
}

// Config holds the upstream usage API settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
}

// NewClient creates an upstream usage API client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		timeout:    timeout,
		logger:     logger,
	}
}

// Fetch performs a single usage lookup for the given credential.
// Exactly one outbound request is made per call; no retries.
// The credential is attached as a Bearer token and never logged.
func (c *Client) Fetch(ctx context.Context, credential string) (quota.Quota, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, http.NoBody)
	if err != nil {
		return quota.Quota{}, fmt.Errorf("build usage request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)

	duration := time.Since(start)

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("unreachable").Inc()
		c.logger.Warn("upstream unreachable",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return quota.Quota{}, fmt.Errorf("usage request failed: %w", domain.ErrUpstreamUnreachable)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("unreachable").Inc()
		return quota.Quota{}, fmt.Errorf("read usage response: %w", domain.ErrUpstreamUnreachable)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := domain.NewUpstreamStatusError(resp.StatusCode, extractDetail(body))
		metrics.UpstreamRequestsTotal.WithLabelValues(outcomeLabel(statusErr)).Inc()
		c.logger.Warn("upstream rejected usage lookup",
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		return quota.Quota{}, statusErr
	}

	q, err := quota.Parse(body)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("protocol_error").Inc()
		c.logger.Warn("upstream returned unexpected payload shape",
			zap.Int("status", resp.StatusCode),
			zap.Int("body_bytes", len(body)),
		)
		return quota.Quota{}, err
	}

	metrics.UpstreamRequestsTotal.WithLabelValues("success").Inc()
	metrics.UpstreamRequestDuration.Observe(duration.Seconds())

	return q, nil
}

// HealthCheck verifies the upstream endpoint is reachable. Any HTTP response
// counts as reachable; no credential is attached.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream health check: %w", domain.ErrUpstreamUnreachable)
	}
	_ = resp.Body.Close()
	return nil
}

// outcomeLabel maps a classified upstream error to its metrics label.
func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredential):
		return "rejected"
	case errors.Is(err, domain.ErrUpstreamRateLimited):
		return "rate_limited"
	default:
		return "upstream_error"
	}
}

// extractDetail pulls a human-readable message from a JSON error body.
// Upstream error formats vary; "error" and "message" cover the common ones.
func extractDetail(body []byte) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Error != "" {
		return parsed.Error
	}
	return parsed.Message
}
