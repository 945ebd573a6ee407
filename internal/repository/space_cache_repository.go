package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SpaceCacheRepository - append-only лог сэмплов по источникам.
// Методов обновления и удаления нет.
type SpaceCacheRepository interface {
	Write(ctx context.Context, source string, payload interface{}) (*models.SpaceCache, error)
	Latest(ctx context.Context, source string) (*models.SpaceCache, error)
	Recent(ctx context.Context, source string, n int) ([]models.SpaceCache, error)
	Range(ctx context.Context, source string, from, to time.Time) ([]models.SpaceCache, error)
	Count(ctx context.Context, source string) (int64, error)
}

type spaceCacheRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSpaceCacheRepository(db *gorm.DB) SpaceCacheRepository {
	return &spaceCacheRepository{db: db, now: time.Now}
}

const recencyOrder = "fetched_at DESC, id DESC"

func (r *spaceCacheRepository) Write(ctx context.Context, source string, payload interface{}) (*models.SpaceCache, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", source, err)
	}

	row := &models.SpaceCache{
		Source:    source,
		FetchedAt: r.now().UTC(),
		Payload:   datatypes.JSON(data),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("%w: insert %s sample: %v", apperr.ErrStorage, source, err)
	}
	return row, nil
}

func (r *spaceCacheRepository) Latest(ctx context.Context, source string) (*models.SpaceCache, error) {
	var row models.SpaceCache
	err := r.db.WithContext(ctx).
		Where("source = ?", source).
		Order(recencyOrder).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no %s samples", apperr.ErrNotFound, source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: latest %s sample: %v", apperr.ErrStorage, source, err)
	}
	return &row, nil
}

func (r *spaceCacheRepository) Recent(ctx context.Context, source string, n int) ([]models.SpaceCache, error) {
	if n < 1 {
		return []models.SpaceCache{}, nil
	}

	var rows []models.SpaceCache
	err := r.db.WithContext(ctx).
		Where("source = ?", source).
		Order(recencyOrder).
		Limit(n).
		Find(&rows).
		Error
	if err != nil {
		return nil, fmt.Errorf("%w: recent %s samples: %v", apperr.ErrStorage, source, err)
	}
	return rows, nil
}

// Range возвращает сэмплы в окне [from, to], новые первыми.
func (r *spaceCacheRepository) Range(ctx context.Context, source string, from, to time.Time) ([]models.SpaceCache, error) {
	var rows []models.SpaceCache
	err := r.db.WithContext(ctx).
		Where("source = ? AND fetched_at >= ? AND fetched_at <= ?", source, from.UTC(), to.UTC()).
		Order(recencyOrder).
		Find(&rows).
		Error
	if err != nil {
		return nil, fmt.Errorf("%w: %s samples in range: %v", apperr.ErrStorage, source, err)
	}
	return rows, nil
}

func (r *spaceCacheRepository) Count(ctx context.Context, source string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SpaceCache{}).
		Where("source = ?", source).
		Count(&count).
		Error
	if err != nil {
		return 0, fmt.Errorf("%w: count %s samples: %v", apperr.ErrStorage, source, err)
	}
	return count, nil
}
