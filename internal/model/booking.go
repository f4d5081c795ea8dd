package model

import "time"

// bookings - живые записи. Отменённая запись удаляется из таблицы,
// след остаётся в events.
type Booking struct {
	ID         string `gorm:"type:varchar(36);primaryKey"`
	UserID     string `gorm:"type:varchar(64);not null;index"`
	ProviderID string `gorm:"type:varchar(64);not null;uniqueIndex:idx_bookings_slot,priority:1"`

	// ISO-дата YYYY-MM-DD и время HH:MM из сетки слотов.
	Date string `gorm:"type:varchar(10);not null;uniqueIndex:idx_bookings_slot,priority:2;index"`
	Time string `gorm:"type:varchar(5);not null;uniqueIndex:idx_bookings_slot,priority:3"`

	CreatedAt time.Time `gorm:"not null"`
}
