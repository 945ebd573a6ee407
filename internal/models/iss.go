package models

import (
	"time"
)

// Position - текущее положение МКС.
type Position struct {
	Timestamp int64   `json:"timestamp"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    string  `json:"source"`
}

const (
	PositionFromRedis    = "redis"
	PositionFromUpstream = "upstream"
)

type ISSTrend struct {
	Movement    bool       `json:"movement"`
	DeltaKm     float64    `json:"delta_km"`
	DtSec       float64    `json:"dt_sec"`
	VelocityKmh *float64   `json:"velocity_kmh"`
	FromTime    *time.Time `json:"from_time"`
	ToTime      *time.Time `json:"to_time"`
	FromLat     *float64   `json:"from_lat"`
	FromLon     *float64   `json:"from_lon"`
	ToLat       *float64   `json:"to_lat"`
	ToLon       *float64   `json:"to_lon"`
	Status      string     `json:"status"`
	Message     string     `json:"message"`
}
