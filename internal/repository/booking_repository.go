package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/refresh-booking/internal/model"
)

type BookingRepository interface {
	// Создать запись; занятый слот -> gorm.ErrDuplicatedKey.
	Create(ctx context.Context, booking *model.Booking) error
	// Получить запись по ID.
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// Удалить запись; возвращает число удалённых строк.
	Delete(ctx context.Context, id string) (int64, error)
	// Все живые записи в порядке (date, time).
	List(ctx context.Context) ([]model.Booking, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Booking{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *GormBookingRepository) List(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Order("date ASC").
		Order("time ASC").
		Order("provider_id ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
