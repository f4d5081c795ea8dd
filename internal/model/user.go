package model

import "time"

// users: клиенты, которые записываются на слоты.
type User struct {
	ID          string `gorm:"type:varchar(64);primaryKey"`
	DisplayName string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
