package model

import "time"

// notices: непрочитанные уведомления об автоотмене.
// Хранят снимок отменённой записи; одна запись: одно уведомление.
type Notice struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	BookingID string `gorm:"type:varchar(36);not null;uniqueIndex"`
	UserID    string `gorm:"type:varchar(64);not null;index"`

	ProviderID string    `gorm:"type:varchar(64);not null"`
	Date       string    `gorm:"type:varchar(10);not null"`
	Time       string    `gorm:"type:varchar(5);not null"`
	BookedAt   time.Time // CreatedAt исходной записи

	Reason    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}
