package clients

import (
	"context"
	"fmt"

	"cosmosfeed/internal/models"
	"cosmosfeed/internal/utils"
)

// ISSClient - основной источник сэмплов МКС (wheretheiss.at).
type ISSClient interface {
	GetCurrentPosition(ctx context.Context) (models.Document, error)
}

type issClient struct {
	baseURL string
	http    *fetcher
}

func NewISSClient(baseURL string, cfg HTTPConfig) ISSClient {
	return &issClient{
		baseURL: baseURL,
		http:    newFetcher(cfg),
	}
}

func (c *issClient) GetCurrentPosition(ctx context.Context) (models.Document, error) {
	var data models.Document
	if err := c.http.getJSON(ctx, c.baseURL, nil, &data); err != nil {
		return nil, fmt.Errorf("fetch ISS position: %w", err)
	}
	return data, nil
}

// OpenNotifyClient - запасной источник текущей позиции (open-notify.org).
type OpenNotifyClient interface {
	GetPosition(ctx context.Context) (*models.Position, error)
}

type openNotifyClient struct {
	url  string
	http *fetcher
}

func NewOpenNotifyClient(url string, cfg HTTPConfig) OpenNotifyClient {
	return &openNotifyClient{
		url:  url,
		http: newFetcher(cfg),
	}
}

func (c *openNotifyClient) GetPosition(ctx context.Context) (*models.Position, error) {
	var data models.Document
	if err := c.http.getJSON(ctx, c.url, nil, &data); err != nil {
		return nil, fmt.Errorf("fetch open-notify position: %w", err)
	}

	pos, err := utils.ParsePosition(data)
	if err != nil {
		return nil, fmt.Errorf("open-notify response: %w", err)
	}
	pos.Source = models.PositionFromUpstream
	return pos, nil
}
