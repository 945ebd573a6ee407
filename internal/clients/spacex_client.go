package clients

import (
	"context"
	"fmt"

	"cosmosfeed/internal/models"
)

// SpaceXClient отдает ближайший запуск.
type SpaceXClient interface {
	FetchNextLaunch(ctx context.Context) (models.Document, error)
}

type spaceXClient struct {
	url  string
	http *fetcher
}

func NewSpaceXClient(url string, cfg HTTPConfig) SpaceXClient {
	return &spaceXClient{
		url:  url,
		http: newFetcher(cfg),
	}
}

func (c *spaceXClient) FetchNextLaunch(ctx context.Context) (models.Document, error) {
	var data models.Document
	if err := c.http.getJSON(ctx, c.url, nil, &data); err != nil {
		return nil, fmt.Errorf("fetch SpaceX next launch: %w", err)
	}
	return data, nil
}
