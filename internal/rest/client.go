// Package rest — транспортный клиент провайдерских API.
// Повторяет временные сбои ограниченное число раз и классифицирует ответ:
// 429 — ErrRateLimited, остальные 4xx — ClientError, не-JSON-объект — ErrMalformedResponse.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"news_ingest/internal/logger"
)

const maxBodySize = 10 * 1024 * 1024

// ErrRateLimited сигнализирует HTTP 429. Повтор с резервным ключом —
// ответственность адаптера, транспорт 4xx не ретраит.
var ErrRateLimited = errors.New("rate limited")

// ErrMalformedResponse — тело ответа не является JSON-объектом.
var ErrMalformedResponse = errors.New("malformed response: expected JSON object")

// ClientError — ошибка 4xx (кроме 429) с кодом статуса.
type ClientError struct {
	Status   int
	Endpoint string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("API client error: %d (%s)", e.Status, e.Endpoint)
}

// Client выполняет GET-запросы с ограниченным числом повторов.
type Client struct {
	http       *http.Client
	maxRetries uint64
	backoff    time.Duration
}

func NewClient() *Client {
	return &Client{
		http:       &http.Client{Timeout: 10 * time.Second},
		maxRetries: 2,
		backoff:    time.Second,
	}
}

// SetRetryPolicy переопределяет число повторов и базовую задержку (для тестов).
func (c *Client) SetRetryPolicy(maxRetries uint64, backoff time.Duration) {
	c.maxRetries = maxRetries
	c.backoff = backoff
}

// Fetch выполняет GET endpoint?query и возвращает сырой JSON-объект.
// Сетевые ошибки и 5xx повторяются с экспоненциальной задержкой, 4xx — никогда.
func (c *Client) Fetch(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error) {
	reqURL := endpoint + "?" + query.Encode()

	var body json.RawMessage
	err := retry.Do(ctx, retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.backoff)), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("http get: %w", err))
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			logger.Log.WithFields(logrus.Fields{
				"endpoint": endpoint,
				"status":   resp.StatusCode,
			}).Warn("Rate limit exceeded")
			return ErrRateLimited

		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			logger.Log.WithFields(logrus.Fields{
				"endpoint": endpoint,
				"status":   resp.StatusCode,
			}).Error("Client error from API")
			return &ClientError{Status: resp.StatusCode, Endpoint: endpoint}

		case resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("server error: status %d", resp.StatusCode))
		}

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return retry.RetryableError(fmt.Errorf("read body: %w", err))
		}

		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
			logger.Log.WithFields(logrus.Fields{
				"endpoint": endpoint,
				"status":   resp.StatusCode,
			}).Error("Malformed API response")
			return ErrMalformedResponse
		}

		body = trimmed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
