package model

import "time"

// Provider - специалист, к которому записываются (массажист и т.п.).
type Provider struct {
	ID string `gorm:"type:varchar(64);primaryKey"`

	// Имя/отображаемое название в интерфейсе.
	DisplayName string `gorm:"type:varchar(255);not null"`

	// Специализация.
	Specialty string `gorm:"type:varchar(255)"`

	ImageURL string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
