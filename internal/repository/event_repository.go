package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/refresh-booking/internal/model"
)

type EventRepository interface {
	// Append пишет событие аудита; details сериализуется в JSON.
	Append(ctx context.Context, e *model.Event, details any) error
	// ListRecent: последние события, новые первыми.
	ListRecent(ctx context.Context, limit int) ([]model.Event, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Append(ctx context.Context, e *model.Event, details any) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshal event details: %w", err)
		}
		e.Details = datatypes.JSON(raw)
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *GormEventRepository) ListRecent(ctx context.Context, limit int) ([]model.Event, error) {
	var events []model.Event
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
