package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/models"
	"cosmosfeed/internal/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OSDRRepository interface {
	// UpsertMany сохраняет пачку документов в одной транзакции
	// и возвращает число новых строк.
	UpsertMany(ctx context.Context, docs []models.Document) (int, error)
	GetByDatasetID(ctx context.Context, datasetID string) (*models.OSDRItem, error)
	List(ctx context.Context, limit int) ([]models.OSDRItem, error)
	Count(ctx context.Context) (int64, error)
}

type osdrRepository struct {
	db     *gorm.DB
	fields utils.DatasetFields
	now    func() time.Time
}

func NewOSDRRepository(db *gorm.DB, fields utils.DatasetFields) OSDRRepository {
	return &osdrRepository{db: db, fields: fields, now: time.Now}
}

// обновляемые при повторном приходе ключа колонки; inserted_at не трогаем
var osdrUpdateColumns = []string{"title", "status", "updated_at", "raw"}

func (r *osdrRepository) UpsertMany(ctx context.Context, docs []models.Document) (int, error) {
	inserted := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, doc := range docs {
			item, err := r.toItem(doc)
			if err != nil {
				return err
			}

			if item.DatasetID == nil {
				if err := tx.Create(item).Error; err != nil {
					return err
				}
				inserted++
				continue
			}

			var existing int64
			if err := tx.Model(&models.OSDRItem{}).
				Where("dataset_id = ?", *item.DatasetID).
				Count(&existing).Error; err != nil {
				return err
			}

			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "dataset_id"}},
				DoUpdates: clause.AssignmentColumns(osdrUpdateColumns),
			}).Create(item).Error
			if err != nil {
				return err
			}
			if existing == 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: upsert osdr items: %v", apperr.ErrStorage, err)
	}
	return inserted, nil
}

func (r *osdrRepository) toItem(doc models.Document) (*models.OSDRItem, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal osdr document: %w", err)
	}

	return &models.OSDRItem{
		DatasetID:        utils.PickString(doc, r.fields.Key),
		Title:            utils.PickString(doc, r.fields.Title),
		Status:           utils.PickString(doc, r.fields.Status),
		DatasetUpdatedAt: utils.PickTime(doc, r.fields.UpdatedAt),
		InsertedAt:       r.now().UTC(),
		Raw:              datatypes.JSON(raw),
	}, nil
}

func (r *osdrRepository) GetByDatasetID(ctx context.Context, datasetID string) (*models.OSDRItem, error) {
	var item models.OSDRItem
	err := r.db.WithContext(ctx).First(&item, "dataset_id = ?", datasetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: dataset %s", apperr.ErrNotFound, datasetID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get dataset %s: %v", apperr.ErrStorage, datasetID, err)
	}
	return &item, nil
}

// List - последние добавленные записи, новые первыми.
func (r *osdrRepository) List(ctx context.Context, limit int) ([]models.OSDRItem, error) {
	if limit < 1 {
		return []models.OSDRItem{}, nil
	}

	var items []models.OSDRItem
	err := r.db.WithContext(ctx).
		Order("inserted_at DESC, id DESC").
		Limit(limit).
		Find(&items).
		Error
	if err != nil {
		return nil, fmt.Errorf("%w: list osdr items: %v", apperr.ErrStorage, err)
	}
	return items, nil
}

func (r *osdrRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OSDRItem{}).
		Count(&count).
		Error
	if err != nil {
		return 0, fmt.Errorf("%w: count osdr items: %v", apperr.ErrStorage, err)
	}
	return count, nil
}
