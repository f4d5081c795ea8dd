package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/refresh-booking/internal/model"
)

type HolidayRepository interface {
	// Upsert записывает отметку провайдера на дату.
	Upsert(ctx context.Context, providerID, date, mark string) error
	// Delete снимает отметку (переход в None).
	Delete(ctx context.Context, providerID, date string) error
	// List возвращает все отметки.
	List(ctx context.Context) ([]model.Holiday, error)
}

type GormHolidayRepository struct {
	db *gorm.DB
}

func NewGormHolidayRepository(db *gorm.DB) *GormHolidayRepository {
	return &GormHolidayRepository{db: db}
}

func (r *GormHolidayRepository) Upsert(ctx context.Context, providerID, date, mark string) error {
	h := model.Holiday{
		ProviderID: providerID,
		Date:       date,
		Mark:       mark,
		UpdatedAt:  time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"mark", "updated_at"}),
		}).
		Create(&h).Error
}

func (r *GormHolidayRepository) Delete(ctx context.Context, providerID, date string) error {
	return r.db.WithContext(ctx).
		Where("provider_id = ? AND date = ?", providerID, date).
		Delete(&model.Holiday{}).Error
}

func (r *GormHolidayRepository) List(ctx context.Context) ([]model.Holiday, error) {
	var holidays []model.Holiday
	err := r.db.WithContext(ctx).
		Order("provider_id ASC").
		Order("date ASC").
		Find(&holidays).Error
	if err != nil {
		return nil, err
	}
	return holidays, nil
}
