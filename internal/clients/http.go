package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/models"
)

const userAgent = "Cosmos-Dashboard/1.0"

// RetryPolicy - ограничение повторов для временных ошибок
// (сеть, 5xx, 429). Остальные статусы не повторяются.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, InitialInterval: 500 * time.Millisecond}
}

// HTTPConfig - общие настройки для всех клиентов.
type HTTPConfig struct {
	Timeout time.Duration
	Retry   RetryPolicy
}

type fetcher struct {
	client *http.Client
	retry  RetryPolicy
}

func newFetcher(cfg HTTPConfig) *fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:       10,
				IdleConnTimeout:    30 * time.Second,
				DisableCompression: false,
			},
		},
		retry: cfg.Retry,
	}
}

// getJSON выполняет GET и декодирует тело в out.
func (f *fetcher) getJSON(ctx context.Context, rawURL string, params url.Values, out interface{}) error {
	reqURL, err := withParams(rawURL, params)
	if err != nil {
		return fmt.Errorf("%w: build url: %v", apperr.ErrUpstream, err)
	}

	var body []byte
	operation := func() error {
		b, err := f.do(ctx, reqURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	if err := backoff.Retry(operation, f.policy(ctx)); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode JSON from %s: %v", apperr.ErrDecode, redact(reqURL), err)
	}
	return nil
}

func (f *fetcher) do(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: create request: %v", apperr.ErrUpstream, err))
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: %v", apperr.ErrUpstream, ctx.Err()))
		}
		return nil, fmt.Errorf("%w: execute request: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", apperr.ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("%w: %s returned status %d: %s",
			apperr.ErrUpstream, redact(reqURL), resp.StatusCode, truncate(body, 200))
		if isTransientStatus(resp.StatusCode) {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	return body, nil
}

func (f *fetcher) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if f.retry.InitialInterval > 0 {
		b.InitialInterval = f.retry.InitialInterval
	}
	// общее время ограничено числом повторов
	b.MaxElapsedTime = 0

	retries := f.retry.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func withParams(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// redact убирает api_key из URL для логов и ошибок.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "***")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}

// toDocuments приводит элементы JSON-массива к документам, пропуская не-объекты.
func toDocuments(items []interface{}) []models.Document {
	docs := make([]models.Document, 0, len(items))
	for _, item := range items {
		if doc, ok := item.(map[string]interface{}); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}
