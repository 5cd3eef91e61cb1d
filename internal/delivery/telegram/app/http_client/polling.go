// internal/delivery/telegram/app/http_client/polling.go
package http_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// PollingClient клиент для long polling с увеличенным таймаутом
type PollingClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewPollingClient создает клиент. HTTP таймаут больше таймаута long polling.
func NewPollingClient(baseURL string, pollTimeout int) *PollingClient {
	return &PollingClient{
		httpClient: &http.Client{
			Timeout: time.Duration(pollTimeout)*time.Second + 5*time.Second,
		},
		baseURL: baseURL,
	}
}

// GetUpdates получает обновления начиная с offset
func (c *PollingClient) GetUpdates(ctx context.Context, offset int, timeout int) ([]Update, error) {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("timeout", strconv.Itoa(timeout))
	query.Set("allowed_updates", `["message","callback_query"]`)
	fullURL := c.baseURL + "getUpdates?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}

	result, err := do(c.httpClient, req, "getUpdates")
	if retryErr, ok := err.(*retryError); ok {
		return nil, retryErr.APIError
	}
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("failed to decode updates: %w", err)
	}
	return updates, nil
}
