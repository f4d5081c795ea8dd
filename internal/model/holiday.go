package model

import "time"

// holidays - отметки недоступности провайдера (full / am / pm).
// Строка отсутствует, если провайдер в этот день работает.
type Holiday struct {
	ProviderID string `gorm:"type:varchar(64);primaryKey"`
	Date       string `gorm:"type:varchar(10);primaryKey"`
	Mark       string `gorm:"type:varchar(8);not null"`

	UpdatedAt time.Time `gorm:"not null"`
}
