package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/logger"
)

// HTTPClient defines an interface for JSON HTTP operations to enable mocking.
// Implementations perform a single attempt per call and surface non-2xx
// responses as *domain.StatusError; retry policy lives with the caller.
//
//go:generate mockgen -source=http.go -destination=../mocks/http.go -package=mocks -mock_names=HTTPClient=MockHTTPClient
type HTTPClient interface {
	// GetJSON performs a GET request and unmarshals the response into result
	GetJSON(ctx context.Context, url string, headers map[string]string, result interface{}) error

	// PostJSON performs a POST request with a JSON body and unmarshals the response into result
	PostJSON(ctx context.Context, url string, headers map[string]string, body, result interface{}) error

	// PutJSON performs a PUT request with a JSON body and unmarshals the response into result
	PutJSON(ctx context.Context, url string, headers map[string]string, body, result interface{}) error
}

// RealHTTPClient implements HTTPClient using the standard http package
type RealHTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a new real HTTP client with a fixed timeout
func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &RealHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetJSON performs a GET request and unmarshals the response into result
func (c *RealHTTPClient) GetJSON(ctx context.Context, url string, headers map[string]string, result interface{}) error {
	return c.doJSON(ctx, http.MethodGet, url, headers, nil, result)
}

// PostJSON performs a POST request with a JSON body and unmarshals the response into result
func (c *RealHTTPClient) PostJSON(ctx context.Context, url string, headers map[string]string, body, result interface{}) error {
	return c.doJSON(ctx, http.MethodPost, url, headers, body, result)
}

// PutJSON performs a PUT request with a JSON body and unmarshals the response into result
func (c *RealHTTPClient) PutJSON(ctx context.Context, url string, headers map[string]string, body, result interface{}) error {
	return c.doJSON(ctx, http.MethodPut, url, headers, body, result)
}

func (c *RealHTTPClient) doJSON(ctx context.Context, method, url string, headers map[string]string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("failed to close response body", zap.Error(err), zap.String("url", url))
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &domain.StatusError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// parseRetryAfter parses the delay-seconds form of the Retry-After header.
// The HTTP-date form is rare on the APIs this client talks to; zero is
// returned for anything unparseable and the caller falls back to its default.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
