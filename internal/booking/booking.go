package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/Leganyst/refresh-booking/internal/calendar"
)

var (
	// ErrSlotConflict: слот (provider, date, time) уже занят живой записью.
	ErrSlotConflict = errors.New("slot conflict")
	// ErrDuplicateID - коллизия идентификатора записи; это дефект генератора id.
	ErrDuplicateID = errors.New("duplicate booking id")

	ErrQuotaExceeded   = errors.New("quota exceeded")
	ErrSlotUnavailable = errors.New("slot unavailable")
)

// Booking: живая запись клиента к провайдеру на слот.
type Booking struct {
	ID         string             `json:"id"`
	UserID     string             `json:"userId"`
	ProviderID string             `json:"providerId"`
	Date       calendar.Date      `json:"date"`
	Time       calendar.TimeOfDay `json:"time"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// SlotKey - координата слота, которую может занимать не более одной записи.
type SlotKey struct {
	ProviderID string
	Date       calendar.Date
	Time       calendar.TimeOfDay
}

func (b Booking) Slot() SlotKey {
	return SlotKey{ProviderID: b.ProviderID, Date: b.Date, Time: b.Time}
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.ProviderID, k.Date, k.Time)
}

// less задаёт порядок выдачи по дате, времени, провайдеру и id.
func less(a, b Booking) bool {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c < 0
	}
	if a.Time != b.Time {
		return a.Time.Before(b.Time)
	}
	if a.ProviderID != b.ProviderID {
		return a.ProviderID < b.ProviderID
	}
	return a.ID < b.ID
}
