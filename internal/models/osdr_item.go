package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document - сырой JSON объект от внешнего API.
type Document map[string]interface{}

type OSDRItem struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	DatasetID        *string        `gorm:"uniqueIndex" json:"dataset_id"`
	Title            *string        `gorm:"type:text" json:"title"`
	Status           *string        `gorm:"type:varchar(50)" json:"status"`
	DatasetUpdatedAt *time.Time     `gorm:"column:updated_at;index" json:"updated_at"`
	InsertedAt       time.Time      `gorm:"not null;index" json:"inserted_at"`
	Raw              datatypes.JSON `gorm:"type:jsonb;not null" json:"raw"`
}
