package models

import (
	"time"

	"gorm.io/datatypes"
)

// Имена источников, которые опрашивает планировщик.
const (
	SourceISS    = "iss"
	SourceAPOD   = "apod"
	SourceNEO    = "neo"
	SourceFLR    = "flr"
	SourceCME    = "cme"
	SourceSpaceX = "spacex"
)

// FeedSources - источники, которые кэшируются в space_caches помимо МКС.
var FeedSources = []string{SourceAPOD, SourceNEO, SourceFLR, SourceCME, SourceSpaceX}

// SpaceCache - запись append-only лога. После вставки не изменяется.
type SpaceCache struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Source    string         `gorm:"not null;index" json:"source"`
	FetchedAt time.Time      `gorm:"not null" json:"fetched_at"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
}
