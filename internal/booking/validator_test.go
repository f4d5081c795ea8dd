package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/Leganyst/refresh-booking/internal/calendar"
	"github.com/Leganyst/refresh-booking/internal/holiday"
)

var validatorNow = time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)

func newTestValidator(t *testing.T, holidays ...string) (*Validator, *Store, *holiday.Schedule) {
	t.Helper()
	public, err := calendar.NewPublicHolidays(holidays...)
	if err != nil {
		t.Fatalf("public holidays: %v", err)
	}
	store := NewStore()
	marks := holiday.NewSchedule()
	return NewValidator(store, marks, calendar.DefaultSlotGrid(), public, time.UTC), store, marks
}

func request(userID, providerID, date, tod string) Request {
	return Request{
		UserID:     userID,
		ProviderID: providerID,
		Date:       calendar.MustDate(date),
		Time:       calendar.MustTimeOfDay(tod),
	}
}

func accept(t *testing.T, v *Validator, s *Store, id string, req Request) {
	t.Helper()
	if verdict := v.Validate(req, validatorNow); !verdict.OK() {
		t.Fatalf("expected %+v to be accepted, got %s", req, verdict.Reason)
	}
	b := Booking{ID: id, UserID: req.UserID, ProviderID: req.ProviderID, Date: req.Date, Time: req.Time}
	if _, err := s.Insert(b); err != nil {
		t.Fatalf("insert %s: %v", id, err)
	}
}

func expectReason(t *testing.T, v *Validator, req Request, want Reason) Verdict {
	t.Helper()
	verdict := v.Validate(req, validatorNow)
	if verdict.Reason != want {
		t.Fatalf("expected %q for %+v, got %q (%s)", want, req, verdict.Reason, verdict.Detail)
	}
	return verdict
}

func TestValidator_WeeklyScenario(t *testing.T) {
	v, s, _ := newTestValidator(t)

	// Понедельник недели W к провайдеру P.
	accept(t, v, s, "b1", request("U", "P", "2025-10-27", "10:00"))

	// Снова P в среду той же недели.
	expectReason(t, v, request("U", "P", "2025-10-29", "10:00"), ReasonProviderOncePerWeek)

	// Q в среду: можно, квота заполнена.
	accept(t, v, s, "b2", request("U", "Q", "2025-10-29", "10:00"))

	// Третья запись в неделе: куда угодно.
	expectReason(t, v, request("U", "R", "2025-10-31", "14:00"), ReasonTwoPerWeek)

	// Следующая неделя снова свободна.
	accept(t, v, s, "b3", request("U", "P", "2025-11-03", "10:00"))
}

func TestValidator_DailyCapWinsOverOtherRules(t *testing.T) {
	v, s, _ := newTestValidator(t)
	accept(t, v, s, "b1", request("U", "P", "2025-10-28", "10:00"))

	expectReason(t, v, request("U", "Q", "2025-10-28", "15:20"), ReasonOnePerDay)
	// Тот же занятый слот тоже даёт дневной лимит: правило 1 проверяется первым.
	expectReason(t, v, request("U", "P", "2025-10-28", "10:00"), ReasonOnePerDay)
}

func TestValidator_SlotTakenByOther(t *testing.T) {
	v, s, _ := newTestValidator(t)
	accept(t, v, s, "b1", request("other", "P", "2025-10-28", "10:00"))

	verdict := expectReason(t, v, request("U", "P", "2025-10-28", "10:00"), ReasonSlotUnavailable)
	if verdict.Detail != "already booked" {
		t.Fatalf("unexpected detail %q", verdict.Detail)
	}
}

func TestValidator_HolidayMarks(t *testing.T) {
	v, _, marks := newTestValidator(t)
	d := calendar.MustDate("2025-10-28")

	marks.Set("P", d, holiday.AM)
	expectReason(t, v, request("U", "P", "2025-10-28", "12:40"), ReasonSlotUnavailable)
	expectReason(t, v, request("U", "P", "2025-10-28", "13:20"), ReasonNone)

	marks.Set("P", d, holiday.PM)
	expectReason(t, v, request("U", "P", "2025-10-28", "12:40"), ReasonNone)
	expectReason(t, v, request("U", "P", "2025-10-28", "13:20"), ReasonSlotUnavailable)

	marks.Set("P", d, holiday.Full)
	expectReason(t, v, request("U", "P", "2025-10-28", "10:00"), ReasonSlotUnavailable)
	expectReason(t, v, request("U", "Q", "2025-10-28", "10:00"), ReasonNone)
}

func TestValidator_PastSlot(t *testing.T) {
	v, _, _ := newTestValidator(t)
	// validatorNow = 2025-10-20 09:00.
	expectReason(t, v, request("U", "P", "2025-10-17", "10:00"), ReasonSlotUnavailable)

	now := time.Date(2025, 10, 20, 10, 30, 0, 0, time.UTC)
	if verdict := v.Validate(request("U", "P", "2025-10-20", "10:00"), now); verdict.Reason != ReasonSlotUnavailable {
		t.Fatalf("expected past slot to be unavailable, got %q", verdict.Reason)
	}
	if verdict := v.Validate(request("U", "P", "2025-10-20", "10:40"), now); !verdict.OK() {
		t.Fatalf("expected future slot to be available, got %q", verdict.Reason)
	}
}

func TestValidator_OffGridWeekendAndPublicHoliday(t *testing.T) {
	v, _, _ := newTestValidator(t, "2025-10-23")

	expectReason(t, v, request("U", "P", "2025-10-28", "10:20"), ReasonSlotUnavailable)
	expectReason(t, v, request("U", "P", "2025-10-25", "10:00"), ReasonSlotUnavailable)
	expectReason(t, v, request("U", "P", "2025-10-23", "10:00"), ReasonSlotUnavailable)
}

func TestValidator_IsSideEffectFree(t *testing.T) {
	v, s, _ := newTestValidator(t)
	for i := 0; i < 3; i++ {
		v.Validate(request("U", "P", "2025-10-28", "10:00"), validatorNow)
	}
	if s.Len() != 0 {
		t.Fatalf("validate must not mutate the store")
	}
}

func TestRejectionError_Is(t *testing.T) {
	quota := Verdict{Reason: ReasonTwoPerWeek}.Err()
	if !errors.Is(quota, ErrQuotaExceeded) || errors.Is(quota, ErrSlotUnavailable) {
		t.Fatalf("unexpected classification for %v", quota)
	}

	slot := Verdict{Reason: ReasonSlotUnavailable, Detail: "already booked"}.Err()
	if !errors.Is(slot, ErrSlotUnavailable) || errors.Is(slot, ErrQuotaExceeded) {
		t.Fatalf("unexpected classification for %v", slot)
	}

	var rej *RejectionError
	if !errors.As(slot, &rej) || rej.Reason != ReasonSlotUnavailable {
		t.Fatalf("expected *RejectionError, got %T", slot)
	}

	if (Verdict{}).Err() != nil {
		t.Fatalf("ok verdict must have nil error")
	}
}
