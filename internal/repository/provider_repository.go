package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/refresh-booking/internal/model"
)

type ProviderRepository interface {
	GetByID(ctx context.Context, id string) (*model.Provider, error)
	List(ctx context.Context) ([]model.Provider, error)
	// EnsureExists создаёт провайдера, если его ещё нет.
	EnsureExists(ctx context.Context, p *model.Provider) error
}

type GormProviderRepository struct {
	db *gorm.DB
}

func NewGormProviderRepository(db *gorm.DB) *GormProviderRepository {
	return &GormProviderRepository{db: db}
}

func (r *GormProviderRepository) GetByID(ctx context.Context, id string) (*model.Provider, error) {
	var p model.Provider
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProviderRepository) List(ctx context.Context) ([]model.Provider, error) {
	var providers []model.Provider
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *GormProviderRepository) EnsureExists(ctx context.Context, p *model.Provider) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(p).Error
}
