package booking

import (
	"time"

	"github.com/Leganyst/refresh-booking/internal/calendar"
	"github.com/Leganyst/refresh-booking/internal/holiday"
)

// MaxPerWeek: лимит записей пользователя в одном окне квоты.
const MaxPerWeek = 2

// Reason - причина отказа; правила проверяются строго в порядке объявления.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonOnePerDay
	ReasonTwoPerWeek
	ReasonProviderOncePerWeek
	ReasonSlotUnavailable
)

func (r Reason) String() string {
	switch r {
	case ReasonOnePerDay:
		return "one booking per day"
	case ReasonTwoPerWeek:
		return "two bookings per week"
	case ReasonProviderOncePerWeek:
		return "at most once per provider per week"
	case ReasonSlotUnavailable:
		return "slot unavailable"
	default:
		return ""
	}
}

// IsQuota: отказ по одному из правил квоты (1–3).
func (r Reason) IsQuota() bool {
	return r == ReasonOnePerDay || r == ReasonTwoPerWeek || r == ReasonProviderOncePerWeek
}

// Request - предполагаемая запись.
type Request struct {
	UserID     string
	ProviderID string
	Date       calendar.Date
	Time       calendar.TimeOfDay
}

func (r Request) Slot() SlotKey {
	return SlotKey{ProviderID: r.ProviderID, Date: r.Date, Time: r.Time}
}

// Verdict - результат проверки, Ok или отказ с причиной.
type Verdict struct {
	Reason Reason
	Detail string // уточнение для ReasonSlotUnavailable
}

func (v Verdict) OK() bool { return v.Reason == ReasonNone }

// Err возвращает nil для Ok и *RejectionError для отказа.
func (v Verdict) Err() error {
	if v.OK() {
		return nil
	}
	return &RejectionError{Reason: v.Reason, Detail: v.Detail}
}

// RejectionError: отказ валидатора как значение ошибки.
// errors.Is(err, ErrQuotaExceeded) / errors.Is(err, ErrSlotUnavailable).
type RejectionError struct {
	Reason Reason
	Detail string
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return "booking rejected: " + e.Reason.String()
	}
	return "booking rejected: " + e.Reason.String() + ": " + e.Detail
}

func (e *RejectionError) Is(target error) bool {
	switch target {
	case ErrQuotaExceeded:
		return e.Reason.IsQuota()
	case ErrSlotUnavailable:
		return e.Reason == ReasonSlotUnavailable
	}
	return false
}

// MarkReader - источник отметок недоступности (holiday.Schedule).
type MarkReader interface {
	Get(providerID string, date calendar.Date) holiday.Mark
}

// Validator решает, допустима ли запись. Ничего не меняет.
type Validator struct {
	store          *Store
	marks          MarkReader
	grid           *calendar.SlotGrid
	publicHolidays calendar.PublicHolidays
	loc            *time.Location
}

func NewValidator(
	store *Store,
	marks MarkReader,
	grid *calendar.SlotGrid,
	publicHolidays calendar.PublicHolidays,
	loc *time.Location,
) *Validator {
	if grid == nil {
		grid = calendar.DefaultSlotGrid()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Validator{
		store:          store,
		marks:          marks,
		grid:           grid,
		publicHolidays: publicHolidays,
		loc:            loc,
	}
}

// Validate проверяет правила по порядку; первое нарушенное определяет причину:
//  1. у пользователя уже есть запись на эту дату;
//  2. в неделе даты у пользователя уже MaxPerWeek записей;
//  3. в этой неделе уже есть запись к этому провайдеру;
//  4. слот занят, закрыт отметкой, уже прошёл или не существует.
func (v *Validator) Validate(req Request, now time.Time) Verdict {
	if len(v.store.ByUserAndDate(req.UserID, req.Date)) > 0 {
		return Verdict{Reason: ReasonOnePerDay}
	}

	inWeek := v.store.ByUserAndWeek(req.UserID, calendar.WeekOf(req.Date))
	if len(inWeek) >= MaxPerWeek {
		return Verdict{Reason: ReasonTwoPerWeek}
	}
	for _, b := range inWeek {
		if b.ProviderID == req.ProviderID {
			return Verdict{Reason: ReasonProviderOncePerWeek}
		}
	}

	if detail, ok := v.slotAvailable(req, now); !ok {
		return Verdict{Reason: ReasonSlotUnavailable, Detail: detail}
	}
	return Verdict{}
}

func (v *Validator) slotAvailable(req Request, now time.Time) (string, bool) {
	if !v.grid.Contains(req.Time) {
		return "not on the slot grid", false
	}
	if req.Date.IsWeekend() {
		return "weekend", false
	}
	if v.publicHolidays.Contains(req.Date) {
		return "public holiday", false
	}
	if _, taken := v.store.SlotTaken(req.Slot()); taken {
		return "already booked", false
	}
	if m := v.marks.Get(req.ProviderID, req.Date); m.Covers(req.Time) {
		return "provider closed: " + m.CancellationReason(), false
	}
	if calendar.IsPast(req.Date, req.Time, now, v.loc) {
		return "slot start has passed", false
	}
	return "", true
}
