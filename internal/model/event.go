package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Тип события аудита.
type EventType string

const (
	EventTypeBookingCreated       EventType = "booking_created"
	EventTypeBookingCancelled     EventType = "booking_cancelled"
	EventTypeBookingAutoCancelled EventType = "booking_auto_cancelled"
	EventTypeHolidayChanged       EventType = "holiday_changed"
	EventTypeNoticeDismissed      EventType = "notice_dismissed"
)

// events: события аудита
type Event struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	UserID     *string `gorm:"type:varchar(64);index"`
	ProviderID *string `gorm:"type:varchar(64);index"`
	BookingID  *string `gorm:"type:varchar(36);index"`

	// Полезная нагрузка события (снимок записи, старая/новая отметка и т.п.).
	Details datatypes.JSON
}
