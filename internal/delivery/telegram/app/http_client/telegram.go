// internal/delivery/telegram/app/http_client/telegram.go
package http_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"solboost-bot/pkg/logger"
)

// maxRetryAfter верхняя граница ожидания при 429
const maxRetryAfter = 30 * time.Second

// APIError ответ Telegram с ok=false
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error %d in %s: %s", e.Code, e.Method, e.Description)
}

// TelegramClient клиент для работы с Telegram Bot API
type TelegramClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewTelegramClient создает клиент. baseURL вида https://api.telegram.org/bot<token>/
func NewTelegramClient(baseURL string) *TelegramClient {
	return &TelegramClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

// BaseURL собирает адрес API бота
func BaseURL(apiURL, token string) string {
	return apiURL + "/bot" + token + "/"
}

// Call выполняет метод API и возвращает поле result.
// На 429 один раз ждет retry_after и повторяет запрос.
func (c *TelegramClient) Call(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	result, err := c.call(ctx, method, payload)
	if apiErr, ok := err.(*retryError); ok {
		logger.Warn("⚠️ Telegram API rate limit, ждем %v", apiErr.wait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(apiErr.wait):
		}
		result, err = c.call(ctx, method, payload)
		if retryErr, ok := err.(*retryError); ok {
			return nil, retryErr.APIError
		}
	}
	return result, err
}

type retryError struct {
	*APIError
	wait time.Duration
}

func (c *TelegramClient) call(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+method, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return do(c.httpClient, req, method)
}

// do отправляет запрос и разбирает конверт {ok, result}
func do(httpClient *http.Client, req *http.Request, method string) (json.RawMessage, error) {
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var telegramResp apiResponse
	if err := json.Unmarshal(body, &telegramResp); err != nil {
		return nil, fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}

	if !telegramResp.OK {
		apiErr := &APIError{Method: method, Code: telegramResp.ErrorCode, Description: telegramResp.Description}
		if telegramResp.ErrorCode == http.StatusTooManyRequests {
			wait := 5 * time.Second
			if telegramResp.Parameters != nil && telegramResp.Parameters.RetryAfter > 0 {
				wait = time.Duration(telegramResp.Parameters.RetryAfter) * time.Second
			}
			if wait > maxRetryAfter {
				wait = maxRetryAfter
			}
			return nil, &retryError{APIError: apiErr, wait: wait}
		}
		return nil, apiErr
	}

	return telegramResp.Result, nil
}

// SetTimeout устанавливает таймаут для клиента
func (c *TelegramClient) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// GetBaseURL возвращает базовый URL
func (c *TelegramClient) GetBaseURL() string {
	return c.baseURL
}
