package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Leganyst/refresh-booking/internal/booking"
	"github.com/Leganyst/refresh-booking/internal/calendar"
	"github.com/Leganyst/refresh-booking/internal/holiday"
	"github.com/Leganyst/refresh-booking/internal/model"
	"github.com/Leganyst/refresh-booking/internal/notice"
)

// GormStore: долговременное хранилище ядра записи.
// Каждая мутация и её событие аудита пишутся в одной транзакции.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

type bookingDetails struct {
	ProviderID string `json:"providerId"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Reason     string `json:"reason,omitempty"`
}

type holidayDetails struct {
	Date string `json:"date"`
	Mark string `json:"mark"`
}

type noticeDetails struct {
	NoticeID string `json:"noticeId"`
}

func (s *GormStore) LoadBookings(ctx context.Context) ([]booking.Booking, error) {
	rows, err := NewGormBookingRepository(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	out := make([]booking.Booking, 0, len(rows))
	for _, row := range rows {
		b, err := bookingFromModel(row)
		if err != nil {
			return nil, fmt.Errorf("load bookings: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *GormStore) LoadHolidays(ctx context.Context) (holiday.Snapshot, error) {
	rows, err := NewGormHolidayRepository(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	snap := make(holiday.Snapshot)
	for _, row := range rows {
		d, err := calendar.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("load holidays: provider %s: %w", row.ProviderID, err)
		}
		m, err := holiday.ParseMark(row.Mark)
		if err != nil {
			return nil, fmt.Errorf("load holidays: provider %s: %w", row.ProviderID, err)
		}
		if m == holiday.None {
			continue
		}
		byDate, ok := snap[row.ProviderID]
		if !ok {
			byDate = make(map[calendar.Date]holiday.Mark)
			snap[row.ProviderID] = byDate
		}
		byDate[d] = m
	}
	return snap, nil
}

func (s *GormStore) LoadNotices(ctx context.Context) ([]notice.Notice, error) {
	rows, err := NewGormNoticeRepository(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load notices: %w", err)
	}
	out := make([]notice.Notice, 0, len(rows))
	for _, row := range rows {
		n, err := noticeFromModel(row)
		if err != nil {
			return nil, fmt.Errorf("load notices: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// PersistInsert сохраняет запись. Занятый слот (в том числе другим экземпляром)
// возвращается как booking.ErrSlotConflict.
func (s *GormStore) PersistInsert(ctx context.Context, b booking.Booking) error {
	row := bookingToModel(b)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewGormBookingRepository(tx).Create(ctx, &row); err != nil {
			return err
		}
		return NewGormEventRepository(tx).Append(ctx, &model.Event{
			EventType:  model.EventTypeBookingCreated,
			CreatedAt:  b.CreatedAt,
			UserID:     &b.UserID,
			ProviderID: &b.ProviderID,
			BookingID:  &b.ID,
		}, bookingDetails{ProviderID: b.ProviderID, Date: row.Date, Time: row.Time})
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", booking.ErrSlotConflict, b.Slot())
	}
	if err != nil {
		return fmt.Errorf("persist booking %s: %w", b.ID, err)
	}
	return nil
}

// PersistRemove удаляет запись. Пустой reason: отмена пользователем,
// иначе автоотмена с указанной причиной. Отсутствующая запись: no-op.
func (s *GormStore) PersistRemove(ctx context.Context, bookingID, reason string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return removeBooking(ctx, tx, bookingID, reason)
	})
	if err != nil {
		return fmt.Errorf("remove booking %s: %w", bookingID, err)
	}
	return nil
}

// PersistAutoCancel снимает запись из уведомления и сохраняет само уведомление
// в одной транзакции. Повтор безопасен: снятая запись пропускается,
// уведомление на ту же запись не дублируется.
func (s *GormStore) PersistAutoCancel(ctx context.Context, n notice.Notice) error {
	row := noticeToModel(n)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := removeBooking(ctx, tx, n.Booking.ID, n.Reason); err != nil {
			return err
		}
		return NewGormNoticeRepository(tx).Create(ctx, &row)
	})
	if err != nil {
		return fmt.Errorf("auto-cancel booking %s: %w", n.Booking.ID, err)
	}
	return nil
}

func removeBooking(ctx context.Context, tx *gorm.DB, bookingID, reason string) error {
	repo := NewGormBookingRepository(tx)
	row, err := repo.GetByID(ctx, bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := repo.Delete(ctx, bookingID); err != nil {
		return err
	}

	eventType := model.EventTypeBookingCancelled
	if reason != "" {
		eventType = model.EventTypeBookingAutoCancelled
	}
	return NewGormEventRepository(tx).Append(ctx, &model.Event{
		EventType:  eventType,
		UserID:     &row.UserID,
		ProviderID: &row.ProviderID,
		BookingID:  &row.ID,
	}, bookingDetails{ProviderID: row.ProviderID, Date: row.Date, Time: row.Time, Reason: reason})
}

// PersistHolidaySet записывает отметку; None удаляет строку.
func (s *GormStore) PersistHolidaySet(ctx context.Context, providerID string, date calendar.Date, mark holiday.Mark) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewGormHolidayRepository(tx)
		var err error
		if mark == holiday.None {
			err = repo.Delete(ctx, providerID, date.String())
		} else {
			err = repo.Upsert(ctx, providerID, date.String(), mark.String())
		}
		if err != nil {
			return err
		}
		return NewGormEventRepository(tx).Append(ctx, &model.Event{
			EventType:  model.EventTypeHolidayChanged,
			ProviderID: &providerID,
		}, holidayDetails{Date: date.String(), Mark: mark.String()})
	})
	if err != nil {
		return fmt.Errorf("set holiday %s/%s: %w", providerID, date, err)
	}
	return nil
}

// RecentEvents читает журнал аудита, новые события первыми.
func (s *GormStore) RecentEvents(ctx context.Context, limit int) ([]model.Event, error) {
	events, err := NewGormEventRepository(s.db).ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	return events, nil
}

// PersistDismiss удаляет уведомление; отсутствующее: no-op.
func (s *GormStore) PersistDismiss(ctx context.Context, noticeID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.Notice
		err := tx.WithContext(ctx).First(&row, "id = ?", noticeID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := NewGormNoticeRepository(tx).Delete(ctx, noticeID); err != nil {
			return err
		}
		return NewGormEventRepository(tx).Append(ctx, &model.Event{
			EventType: model.EventTypeNoticeDismissed,
			UserID:    &row.UserID,
			BookingID: &row.BookingID,
		}, noticeDetails{NoticeID: noticeID})
	})
	if err != nil {
		return fmt.Errorf("dismiss notice %s: %w", noticeID, err)
	}
	return nil
}
