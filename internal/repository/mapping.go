package repository

import (
	"fmt"

	"github.com/Leganyst/refresh-booking/internal/booking"
	"github.com/Leganyst/refresh-booking/internal/calendar"
	"github.com/Leganyst/refresh-booking/internal/model"
	"github.com/Leganyst/refresh-booking/internal/notice"
)

func bookingToModel(b booking.Booking) model.Booking {
	return model.Booking{
		ID:         b.ID,
		UserID:     b.UserID,
		ProviderID: b.ProviderID,
		Date:       b.Date.String(),
		Time:       b.Time.String(),
		CreatedAt:  b.CreatedAt,
	}
}

func bookingFromRow(id, userID, providerID, date, tm string) (booking.Booking, error) {
	d, err := calendar.ParseDate(date)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("booking %s: %w", id, err)
	}
	t, err := calendar.ParseTimeOfDay(tm)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("booking %s: %w", id, err)
	}
	return booking.Booking{
		ID:         id,
		UserID:     userID,
		ProviderID: providerID,
		Date:       d,
		Time:       t,
	}, nil
}

func bookingFromModel(m model.Booking) (booking.Booking, error) {
	b, err := bookingFromRow(m.ID, m.UserID, m.ProviderID, m.Date, m.Time)
	if err != nil {
		return booking.Booking{}, err
	}
	b.CreatedAt = m.CreatedAt
	return b, nil
}

func noticeToModel(n notice.Notice) model.Notice {
	return model.Notice{
		ID:         n.ID,
		BookingID:  n.Booking.ID,
		UserID:     n.Booking.UserID,
		ProviderID: n.Booking.ProviderID,
		Date:       n.Booking.Date.String(),
		Time:       n.Booking.Time.String(),
		BookedAt:   n.Booking.CreatedAt,
		Reason:     n.Reason,
		CreatedAt:  n.CreatedAt,
	}
}

func noticeFromModel(m model.Notice) (notice.Notice, error) {
	b, err := bookingFromRow(m.BookingID, m.UserID, m.ProviderID, m.Date, m.Time)
	if err != nil {
		return notice.Notice{}, fmt.Errorf("notice %s: %w", m.ID, err)
	}
	b.CreatedAt = m.BookedAt
	return notice.Notice{
		ID:        m.ID,
		Booking:   b,
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt,
	}, nil
}
