package service

import (
	"context"
	"fmt"

	"github.com/Leganyst/refresh-booking/internal/booking"
	"github.com/Leganyst/refresh-booking/internal/calendar"
	"github.com/Leganyst/refresh-booking/internal/holiday"
)

// SlotState: состояние ячейки расписания с точки зрения пользователя.
type SlotState uint8

const (
	StateAvailable SlotState = iota
	StateHoliday
	StateBookedByUser
	StateBookedByOther
	StatePast
	StateUnavailableRule
)

func (s SlotState) String() string {
	switch s {
	case StateAvailable:
		return "available"
	case StateHoliday:
		return "holiday"
	case StateBookedByUser:
		return "booked_by_user"
	case StateBookedByOther:
		return "booked_by_other"
	case StatePast:
		return "past"
	case StateUnavailableRule:
		return "unavailable_rule"
	default:
		return fmt.Sprintf("SlotState(%d)", uint8(s))
	}
}

func (s SlotState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type SlotView struct {
	ProviderID string           `json:"providerId"`
	Date       calendar.Date    `json:"date"`
	Slot       calendar.Slot    `json:"slot"`
	State      SlotState        `json:"state"`
	Booking    *booking.Booking `json:"booking,omitempty"` // только для booked_by_*
	Rule       booking.Reason   `json:"-"`                 // для unavailable_rule
}

// ProviderRow - строка расписания, провайдер на конкретную дату.
type ProviderRow struct {
	ProviderID string       `json:"providerId"`
	Mark       holiday.Mark `json:"mark"`
	Slots      []SlotView   `json:"slots"`
}

type DayView struct {
	Date      calendar.Date `json:"date"`
	Providers []ProviderRow `json:"providers"`
}

// BookableDays - ближайшие рабочие дни, начиная с сегодняшнего.
func (s *CalendarService) BookableDays() []calendar.Date {
	today := calendar.DateOf(s.clock.Now().In(s.loc))
	return calendar.BookableDays(today, s.publicHolidays, s.lookaheadDays, s.targetDays)
}

// SlotStatus вычисляет состояние одного слота. Приоритет:
// отметка недоступности, занятость, прошедшее время, правила квоты.
func (s *CalendarService) SlotStatus(ctx context.Context, userID, providerID string, date calendar.Date, t calendar.TimeOfDay) (SlotView, error) {
	if err := s.checkKnown(ctx, userID, providerID); err != nil {
		return SlotView{}, err
	}
	slot, ok := s.grid.Slot(t)
	if !ok {
		return SlotView{}, fmt.Errorf("%w: %s is not on the slot grid", booking.ErrSlotUnavailable, t)
	}
	unlock := s.days.RLock(dayKey(providerID, date))
	defer unlock()
	return s.slotView(userID, providerID, date, slot, s.HolidayMark(providerID, date)), nil
}

func (s *CalendarService) slotView(userID, providerID string, date calendar.Date, slot calendar.Slot, m holiday.Mark) SlotView {
	v := SlotView{ProviderID: providerID, Date: date, Slot: slot}

	if m.Covers(slot.Start) {
		v.State = StateHoliday
		return v
	}

	req := booking.Request{UserID: userID, ProviderID: providerID, Date: date, Time: slot.Start}
	if b, taken := s.store.SlotTaken(req.Slot()); taken {
		v.Booking = &b
		if b.UserID == userID {
			v.State = StateBookedByUser
		} else {
			v.State = StateBookedByOther
		}
		return v
	}

	now := s.clock.Now()
	if calendar.IsPast(date, slot.Start, now, s.loc) {
		v.State = StatePast
		return v
	}

	if verdict := s.validator.Validate(req, now); !verdict.OK() {
		v.State = StateUnavailableRule
		v.Rule = verdict.Reason
		return v
	}

	v.State = StateAvailable
	return v
}

// Timetable строит расписание на ближайшие рабочие дни по всем провайдерам.
// Пустой providerIDs: все провайдеры из справочника.
func (s *CalendarService) Timetable(ctx context.Context, userID string, providerIDs []string) ([]DayView, error) {
	if len(providerIDs) == 0 {
		if s.dir == nil {
			return nil, fmt.Errorf("timetable: no providers given and no directory configured")
		}
		ids, err := s.dir.ProviderIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("timetable: %w", err)
		}
		providerIDs = ids
	}

	days := s.BookableDays()
	out := make([]DayView, 0, len(days))
	for _, d := range days {
		day := DayView{Date: d, Providers: make([]ProviderRow, 0, len(providerIDs))}
		for _, providerID := range providerIDs {
			day.Providers = append(day.Providers, s.providerRow(userID, providerID, d))
		}
		out = append(out, day)
	}
	return out, nil
}

func (s *CalendarService) providerRow(userID, providerID string, date calendar.Date) ProviderRow {
	unlock := s.days.RLock(dayKey(providerID, date))
	defer unlock()

	m := s.schedule.Get(providerID, date)
	row := ProviderRow{ProviderID: providerID, Mark: m, Slots: make([]SlotView, 0, s.grid.Len())}
	for _, slot := range s.grid.Slots() {
		row.Slots = append(row.Slots, s.slotView(userID, providerID, date, slot, m))
	}
	return row
}

// WeekSummary: записи пользователя в окне квоты и остаток лимита.
type WeekSummary struct {
	Week      calendar.Week     `json:"week"`
	Bookings  []booking.Booking `json:"bookings"`
	Remaining int               `json:"remaining"`
}

func (s *CalendarService) WeekSummary(userID string, week calendar.Week) WeekSummary {
	bookings := s.store.ByUserAndWeek(userID, week)
	remaining := booking.MaxPerWeek - len(bookings)
	if remaining < 0 {
		remaining = 0
	}
	return WeekSummary{Week: week, Bookings: bookings, Remaining: remaining}
}

// Summary - текущая и следующая неделя.
func (s *CalendarService) Summary(userID string) []WeekSummary {
	this := calendar.WeekOf(calendar.DateOf(s.clock.Now().In(s.loc)))
	return []WeekSummary{
		s.WeekSummary(userID, this),
		s.WeekSummary(userID, this.Next()),
	}
}

// UserBookings: записи пользователя постранично, по дате и времени.
func (s *CalendarService) UserBookings(userID string, page, pageSize int) calendar.Page[booking.Booking] {
	return calendar.Paginate(s.store.ByUser(userID), page, pageSize)
}
