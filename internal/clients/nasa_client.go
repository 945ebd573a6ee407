package clients

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cosmosfeed/internal/models"
)

// Типы событий DONKI.
const (
	DONKIFlare = "FLR"
	DONKICME   = "CME"
)

type NASAClient interface {
	FetchOSDR(ctx context.Context) ([]models.Document, error)
	FetchAPOD(ctx context.Context, date string) (models.Document, error)
	FetchNEOFeed(ctx context.Context, days int) (models.Document, error)
	FetchDONKI(ctx context.Context, eventType string, days int) ([]models.Document, error)
}

type nasaClient struct {
	apiKey   string
	osdrURL  string
	apodURL  string
	neoURL   string
	donkiURL string
	http     *fetcher
	now      func() time.Time
}

type NASAConfig struct {
	APIKey   string
	OSDRURL  string
	APODURL  string
	NEOURL   string
	DONKIURL string
	HTTP     HTTPConfig
}

func NewNASAClient(config NASAConfig) NASAClient {
	return &nasaClient{
		apiKey:   config.APIKey,
		osdrURL:  config.OSDRURL,
		apodURL:  config.APODURL,
		neoURL:   config.NEOURL,
		donkiURL: strings.TrimRight(config.DONKIURL, "/"),
		http:     newFetcher(config.HTTP),
		now:      time.Now,
	}
}

// FetchOSDR возвращает список датасетов. Ответ бывает трех видов:
// объект с items, объект с results или голый массив.
// Прочие объекты возвращаются как единственный элемент.
func (c *nasaClient) FetchOSDR(ctx context.Context) ([]models.Document, error) {
	var result interface{}
	if err := c.http.getJSON(ctx, c.osdrURL, c.keyParams(), &result); err != nil {
		return nil, fmt.Errorf("fetch OSDR: %w", err)
	}

	switch v := result.(type) {
	case []interface{}:
		return toDocuments(v), nil
	case map[string]interface{}:
		if data, ok := v["items"].([]interface{}); ok {
			return toDocuments(data), nil
		}
		if data, ok := v["results"].([]interface{}); ok {
			return toDocuments(data), nil
		}
		return []models.Document{v}, nil
	}
	return nil, nil
}

func (c *nasaClient) FetchAPOD(ctx context.Context, date string) (models.Document, error) {
	params := c.keyParams()
	params.Add("thumbs", "true")
	if date != "" {
		params.Add("date", date)
	}

	var data models.Document
	if err := c.http.getJSON(ctx, c.apodURL, params, &data); err != nil {
		return nil, fmt.Errorf("fetch APOD: %w", err)
	}
	return data, nil
}

func (c *nasaClient) FetchNEOFeed(ctx context.Context, days int) (models.Document, error) {
	if days < 1 || days > 7 {
		days = 7
	}

	params := c.keyParams()
	start, end := c.dateRange(days)
	params.Add("start_date", start)
	params.Add("end_date", end)

	var data models.Document
	if err := c.http.getJSON(ctx, c.neoURL, params, &data); err != nil {
		return nil, fmt.Errorf("fetch NEO feed: %w", err)
	}
	return data, nil
}

func (c *nasaClient) FetchDONKI(ctx context.Context, eventType string, days int) ([]models.Document, error) {
	if days < 1 || days > 30 {
		days = 5
	}

	params := c.keyParams()
	start, end := c.dateRange(days)
	params.Add("startDate", start)
	params.Add("endDate", end)

	// null в ответе дает пустой список
	var data []interface{}
	if err := c.http.getJSON(ctx, fmt.Sprintf("%s/%s", c.donkiURL, eventType), params, &data); err != nil {
		return nil, fmt.Errorf("fetch DONKI %s: %w", eventType, err)
	}
	return toDocuments(data), nil
}

func (c *nasaClient) keyParams() url.Values {
	params := url.Values{}
	if c.apiKey != "" {
		params.Add("api_key", c.apiKey)
	}
	return params
}

func (c *nasaClient) dateRange(days int) (string, string) {
	now := c.now().UTC()
	return now.AddDate(0, 0, -days).Format("2006-01-02"), now.Format("2006-01-02")
}
