package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HanyangXu0508/clinic-appointment-system/internal/model"
)

type ChangeLogRepository interface {
	// Добавить запись журнала.
	Append(ctx context.Context, entry *model.ChangeLog) error
	// Последние записи журнала, новые первыми.
	ListRecent(ctx context.Context, limit int) ([]model.ChangeLog, error)
}

// Реализация на GORM.
type GormChangeLogRepository struct {
	db *gorm.DB
}

func NewGormChangeLogRepository(db *gorm.DB) *GormChangeLogRepository {
	return &GormChangeLogRepository{db: db}
}

func (r *GormChangeLogRepository) Append(ctx context.Context, entry *model.ChangeLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *GormChangeLogRepository) ListRecent(ctx context.Context, limit int) ([]model.ChangeLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []model.ChangeLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
