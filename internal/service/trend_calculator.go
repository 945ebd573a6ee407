package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"cosmosfeed/internal/models"
	"cosmosfeed/internal/repository"
	"cosmosfeed/internal/utils"
)

const (
	earthRadiusKm       = 6371.0
	movementThresholdKm = 0.1

	trendStatusOK      = "ok"
	trendMessageOK     = "calculated successfully"
	trendMessageNoData = "not enough samples"
)

// TrendCalculator считает движение МКС по двум последним сэмплам.
type TrendCalculator interface {
	ComputeTrend(ctx context.Context) (*models.ISSTrend, error)
}

type trendCalculator struct {
	samples repository.SpaceCacheRepository
}

func NewTrendCalculator(samples repository.SpaceCacheRepository) TrendCalculator {
	return &trendCalculator{samples: samples}
}

func (c *trendCalculator) ComputeTrend(ctx context.Context) (*models.ISSTrend, error) {
	rows, err := c.samples.Recent(ctx, models.SourceISS, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to get ISS samples: %w", err)
	}

	if len(rows) < 2 {
		return &models.ISSTrend{
			Status:  trendStatusOK,
			Message: trendMessageNoData,
		}, nil
	}

	return calculateTrend(rows[0], rows[1]), nil
}

// calculateTrend: current новее previous.
func calculateTrend(current, previous models.SpaceCache) *models.ISSTrend {
	curr := decodePayload(current)
	prev := decodePayload(previous)

	lat1 := utils.PickFloat(prev, "latitude")
	lon1 := utils.PickFloat(prev, "longitude")
	lat2 := utils.PickFloat(curr, "latitude")
	lon2 := utils.PickFloat(curr, "longitude")

	var deltaKm float64
	if lat1 != nil && lon1 != nil && lat2 != nil && lon2 != nil {
		deltaKm = HaversineKm(*lat1, *lon1, *lat2, *lon2)
	}

	fromTime := previous.FetchedAt
	toTime := current.FetchedAt

	return &models.ISSTrend{
		Movement:    deltaKm > movementThresholdKm,
		DeltaKm:     deltaKm,
		DtSec:       toTime.Sub(fromTime).Seconds(),
		VelocityKmh: utils.PickFloat(curr, "velocity"),
		FromTime:    &fromTime,
		ToTime:      &toTime,
		FromLat:     lat1,
		FromLon:     lon1,
		ToLat:       lat2,
		ToLon:       lon2,
		Status:      trendStatusOK,
		Message:     trendMessageOK,
	}
}

// HaversineKm - расстояние по большой окружности в километрах.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// decodePayload: битый или не-объектный payload дает пустой документ.
func decodePayload(row models.SpaceCache) map[string]interface{} {
	var doc map[string]interface{}
	if err := json.Unmarshal(row.Payload, &doc); err != nil || doc == nil {
		return map[string]interface{}{}
	}
	return doc
}
