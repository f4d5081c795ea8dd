package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Leganyst/refresh-booking/internal/booking"
	"github.com/Leganyst/refresh-booking/internal/calendar"
	"github.com/Leganyst/refresh-booking/internal/holiday"
	"github.com/Leganyst/refresh-booking/internal/lock"
	"github.com/Leganyst/refresh-booking/internal/model"
	"github.com/Leganyst/refresh-booking/internal/notice"
)

var (
	ErrUnknownUser     = errors.New("unknown user")
	ErrUnknownProvider = errors.New("unknown provider")
)

// Persistence - долговременное хранилище. Память остаётся источником истины,
// каждая мутация сразу пишется сюда.
type Persistence interface {
	LoadBookings(ctx context.Context) ([]booking.Booking, error)
	LoadHolidays(ctx context.Context) (holiday.Snapshot, error)
	LoadNotices(ctx context.Context) ([]notice.Notice, error)
	PersistInsert(ctx context.Context, b booking.Booking) error
	// PersistRemove: пустой reason означает отмену пользователем, иначе автоотмена.
	PersistRemove(ctx context.Context, bookingID, reason string) error
	PersistHolidaySet(ctx context.Context, providerID string, date calendar.Date, mark holiday.Mark) error
	// PersistAutoCancel снимает n.Booking и сохраняет n атомарно; повтор безопасен.
	PersistAutoCancel(ctx context.Context, n notice.Notice) error
	PersistDismiss(ctx context.Context, noticeID string) error
}

// AuditSource: хранилище, ведущее журнал событий.
type AuditSource interface {
	RecentEvents(ctx context.Context, limit int) ([]model.Event, error)
}

// Directory: справочник пользователей и провайдеров.
type Directory interface {
	UserExists(ctx context.Context, id string) (bool, error)
	ProviderExists(ctx context.Context, id string) (bool, error)
	ProviderIDs(ctx context.Context) ([]string, error)
}

// Transition - итог нажатия админа на ячейку (провайдер, дата).
type Transition struct {
	ProviderID string
	Date       calendar.Date
	Previous   holiday.Mark
	Next       holiday.Mark
	Applied    bool
	Refusal    holiday.Refusal
	Cancelled  []notice.Notice
}

// CalendarService - ядро записи: бронирование, отмена, отметки недоступности
// с каскадной отменой и уведомления.
//
// Порядок блокировок: пользователь -> слот -> день (чтение).
// Смена отметки берёт только блокировку дня на запись.
type CalendarService struct {
	store     *booking.Store
	schedule  *holiday.Schedule
	notices   *notice.Log
	validator *booking.Validator
	persist   Persistence
	dir       Directory

	locker lock.Locker
	days   *lock.KeyedRWMutex

	grid           *calendar.SlotGrid
	publicHolidays calendar.PublicHolidays
	loc            *time.Location
	dayEnd         calendar.TimeOfDay
	lookaheadDays  int
	targetDays     int

	clock Clock
	log   *zap.Logger
	newID func() string
}

func NewCalendarService(persist Persistence, opts ...Option) *CalendarService {
	s := &CalendarService{
		store:    booking.NewStore(),
		schedule: holiday.NewSchedule(),
		notices:  notice.NewLog(),
		persist:  persist,
		days:     lock.NewKeyedRWMutex(),
		dayEnd:   calendar.TimeOfDay{Hour: 23, Minute: 59},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.persist == nil {
		s.persist = nopPersistence{}
	}
	if s.locker == nil {
		s.locker = lock.NewKeyedMutex()
	}
	if s.grid == nil {
		s.grid = calendar.DefaultSlotGrid()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.clock == nil {
		s.clock = systemClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.validator = booking.NewValidator(s.store, s.schedule, s.grid, s.publicHolidays, s.loc)
	return s
}

// Hydrate загружает записи, отметки и уведомления из хранилища и досматривает
// каскады: запись, оставшаяся под отметкой после сбоя записи в хранилище,
// снимается сейчас. Вызывается один раз до начала обслуживания.
func (s *CalendarService) Hydrate(ctx context.Context) error {
	bookings, err := s.persist.LoadBookings(ctx)
	if err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}
	for _, b := range bookings {
		if _, err := s.store.Insert(b); err != nil {
			s.log.Warn("skip stored booking", zap.String("booking_id", b.ID), zap.Error(err))
		}
	}

	marks, err := s.persist.LoadHolidays(ctx)
	if err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}
	s.schedule.Load(marks)

	notices, err := s.persist.LoadNotices(ctx)
	if err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}
	s.notices.Load(notices)

	reconciled := s.reconcile(ctx, marks)

	s.log.Info("calendar hydrated",
		zap.Int("bookings", s.store.Len()),
		zap.Int("providers_with_marks", len(marks)),
		zap.Int("notices", len(notices)),
		zap.Int("reconciled", reconciled),
	)
	return nil
}

// reconcile повторяет каскад для каждой загруженной отметки.
// Уже существующее уведомление переиспользуется.
func (s *CalendarService) reconcile(ctx context.Context, marks holiday.Snapshot) int {
	now := s.clock.Now()
	total := 0
	for providerID, byDate := range marks {
		for date, m := range byDate {
			unlock := s.days.Lock(dayKey(providerID, date))
			cancelled := s.cascade(ctx, providerID, date, m, now)
			unlock()
			if len(cancelled) > 0 {
				s.log.Warn("stale bookings under holiday mark removed",
					zap.String("provider_id", providerID),
					zap.Stringer("date", date),
					zap.Int("cancelled", len(cancelled)),
				)
			}
			total += len(cancelled)
		}
	}
	return total
}

// Validate: вердикт без побочных эффектов.
func (s *CalendarService) Validate(ctx context.Context, req booking.Request) (booking.Verdict, error) {
	if err := booking.CheckRequest(req); err != nil {
		return booking.Verdict{}, err
	}
	if err := s.checkKnown(ctx, req.UserID, req.ProviderID); err != nil {
		return booking.Verdict{}, err
	}
	unlock := s.days.RLock(dayKey(req.ProviderID, req.Date))
	defer unlock()
	return s.validator.Validate(req, s.clock.Now()), nil
}

// RequestBooking проверяет и создаёт запись. Отказ валидатора возвращается
// как *booking.RejectionError, занятый слот: как booking.ErrSlotConflict.
func (s *CalendarService) RequestBooking(ctx context.Context, req booking.Request) (booking.Booking, error) {
	if err := booking.CheckRequest(req); err != nil {
		return booking.Booking{}, err
	}
	if err := s.checkKnown(ctx, req.UserID, req.ProviderID); err != nil {
		return booking.Booking{}, err
	}

	unlockUser, err := s.locker.Lock(ctx, userKey(req.UserID))
	if err != nil {
		return booking.Booking{}, fmt.Errorf("lock user %s: %w", req.UserID, err)
	}
	defer unlockUser()

	unlockSlot, err := s.locker.Lock(ctx, slotKey(req.Slot()))
	if err != nil {
		return booking.Booking{}, fmt.Errorf("lock slot %s: %w", req.Slot(), err)
	}
	defer unlockSlot()

	unlockDay := s.days.RLock(dayKey(req.ProviderID, req.Date))
	defer unlockDay()

	now := s.clock.Now()
	if err := s.validator.Validate(req, now).Err(); err != nil {
		return booking.Booking{}, err
	}

	b, err := s.store.Insert(booking.Booking{
		ID:         s.newID(),
		UserID:     req.UserID,
		ProviderID: req.ProviderID,
		Date:       req.Date,
		Time:       req.Time,
		CreatedAt:  now,
	})
	if err != nil {
		return booking.Booking{}, err
	}

	if err := s.persist.PersistInsert(ctx, b); err != nil {
		s.store.Remove(b.ID)
		s.log.Warn("persist booking failed, rolled back",
			zap.String("booking_id", b.ID),
			zap.Stringer("slot", b.Slot()),
			zap.Error(err),
		)
		return booking.Booking{}, err
	}

	s.log.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("user_id", b.UserID),
		zap.Stringer("slot", b.Slot()),
	)
	return b, nil
}

// CancelBooking удаляет запись по запросу пользователя.
// Неизвестный id: успешный no-op (removed == false).
func (s *CalendarService) CancelBooking(ctx context.Context, bookingID string) (booking.Booking, bool, error) {
	b, ok := s.store.Get(bookingID)
	if !ok {
		return booking.Booking{}, false, nil
	}

	unlockUser, err := s.locker.Lock(ctx, userKey(b.UserID))
	if err != nil {
		return booking.Booking{}, false, fmt.Errorf("lock user %s: %w", b.UserID, err)
	}
	defer unlockUser()

	unlockSlot, err := s.locker.Lock(ctx, slotKey(b.Slot()))
	if err != nil {
		return booking.Booking{}, false, fmt.Errorf("lock slot %s: %w", b.Slot(), err)
	}
	defer unlockSlot()

	unlockDay := s.days.RLock(dayKey(b.ProviderID, b.Date))
	defer unlockDay()

	removed, ok := s.store.Remove(bookingID)
	if !ok {
		// уже снята каскадом
		return booking.Booking{}, false, nil
	}

	if err := s.persist.PersistRemove(ctx, removed.ID, ""); err != nil {
		if _, insErr := s.store.Insert(removed); insErr != nil {
			s.log.Error("restore booking after failed cancel", zap.String("booking_id", removed.ID), zap.Error(insErr))
		}
		return booking.Booking{}, false, err
	}

	s.log.Info("booking cancelled",
		zap.String("booking_id", removed.ID),
		zap.String("user_id", removed.UserID),
		zap.Stringer("slot", removed.Slot()),
	)
	return removed, true, nil
}

// CycleHoliday переводит отметку (провайдер, дата) в следующее состояние цикла
// и снимает записи, которые новая отметка закрывает. Прошедшая дата и
// праздник не меняются: Transition.Refusal объясняет причину.
func (s *CalendarService) CycleHoliday(ctx context.Context, providerID string, date calendar.Date) (Transition, error) {
	if err := s.checkProvider(ctx, providerID); err != nil {
		return Transition{}, err
	}

	unlock := s.days.Lock(dayKey(providerID, date))
	defer unlock()

	now := s.clock.Now()
	prev := s.schedule.Get(providerID, date)
	tr := Transition{ProviderID: providerID, Date: date, Previous: prev, Next: prev}

	if r := s.refusal(date, now); r != holiday.RefusalNone {
		tr.Refusal = r
		s.log.Debug("holiday change refused",
			zap.String("provider_id", providerID),
			zap.Stringer("date", date),
			zap.Stringer("refusal", r),
		)
		return tr, nil
	}

	next := prev.Next()
	if err := s.persist.PersistHolidaySet(ctx, providerID, date, next); err != nil {
		return tr, err
	}
	s.schedule.Set(providerID, date, next)
	tr.Next = next
	tr.Applied = true
	tr.Cancelled = s.cascade(ctx, providerID, date, next, now)

	s.log.Info("holiday mark changed",
		zap.String("provider_id", providerID),
		zap.Stringer("date", date),
		zap.Stringer("from", markName(prev)),
		zap.Stringer("to", markName(next)),
		zap.Int("cancelled", len(tr.Cancelled)),
	)
	return tr, nil
}

func (s *CalendarService) refusal(date calendar.Date, now time.Time) holiday.Refusal {
	if calendar.IsPast(date, s.dayEnd, now, s.loc) {
		return holiday.RefusalPastDate
	}
	if s.publicHolidays.Contains(date) {
		return holiday.RefusalPublicHoliday
	}
	return holiday.RefusalNone
}

// cascade снимает записи (провайдер, дата), закрытые отметкой m, и создаёт
// по уведомлению на каждую. Вызывается под блокировкой дня на запись.
// Ошибки хранилища логируются и не прерывают обход; несохранённое снятие
// досматривает следующий Hydrate.
func (s *CalendarService) cascade(ctx context.Context, providerID string, date calendar.Date, m holiday.Mark, now time.Time) []notice.Notice {
	var out []notice.Notice
	reason := m.CancellationReason()

	for _, b := range s.store.ByProviderAndDate(providerID, date) {
		if !m.Covers(b.Time) {
			continue
		}
		removed, ok := s.store.Remove(b.ID)
		if !ok {
			continue
		}
		n, _ := s.notices.Append(removed, reason, now)

		if err := s.persist.PersistAutoCancel(ctx, n); err != nil {
			s.log.Warn("persist auto-cancel failed",
				zap.String("booking_id", removed.ID),
				zap.String("notice_id", n.ID),
				zap.Error(err),
			)
		}

		s.log.Info("booking auto-cancelled",
			zap.String("booking_id", removed.ID),
			zap.String("user_id", removed.UserID),
			zap.Stringer("slot", removed.Slot()),
			zap.String("reason", reason),
		)
		out = append(out, n)
	}
	return out
}

// PendingNotices - непрочитанные уведомления пользователя в порядке создания.
func (s *CalendarService) PendingNotices(userID string) []notice.Notice {
	return s.notices.Pending(userID)
}

// DismissNotice закрывает уведомление; неизвестный id: no-op.
func (s *CalendarService) DismissNotice(ctx context.Context, noticeID string) (bool, error) {
	n, ok := s.notices.Dismiss(noticeID)
	if !ok {
		return false, nil
	}
	if err := s.persist.PersistDismiss(ctx, noticeID); err != nil {
		s.log.Warn("persist dismiss failed", zap.String("notice_id", noticeID), zap.Error(err))
		return true, err
	}
	s.log.Debug("notice dismissed", zap.String("notice_id", n.ID), zap.String("user_id", n.UserID()))
	return true, nil
}

func (s *CalendarService) HolidayMark(providerID string, date calendar.Date) holiday.Mark {
	return s.schedule.Get(providerID, date)
}

func (s *CalendarService) Holidays() holiday.Snapshot {
	return s.schedule.Snapshot()
}

// RecentEvents - последние события журнала аудита, новые первыми.
// Без журнала в хранилище возвращает nil.
func (s *CalendarService) RecentEvents(ctx context.Context, limit int) ([]model.Event, error) {
	src, ok := s.persist.(AuditSource)
	if !ok {
		return nil, nil
	}
	return src.RecentEvents(ctx, limit)
}

func (s *CalendarService) checkKnown(ctx context.Context, userID, providerID string) error {
	if err := s.checkUser(ctx, userID); err != nil {
		return err
	}
	return s.checkProvider(ctx, providerID)
}

func (s *CalendarService) checkUser(ctx context.Context, userID string) error {
	if s.dir == nil {
		return nil
	}
	ok, err := s.dir.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user %s: %w", userID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	return nil
}

func (s *CalendarService) checkProvider(ctx context.Context, providerID string) error {
	if s.dir == nil {
		return nil
	}
	ok, err := s.dir.ProviderExists(ctx, providerID)
	if err != nil {
		return fmt.Errorf("lookup provider %s: %w", providerID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, providerID)
	}
	return nil
}

func userKey(userID string) string { return "user:" + userID }

func slotKey(k booking.SlotKey) string { return "slot:" + k.String() }

func dayKey(providerID string, date calendar.Date) string {
	return providerID + "/" + date.String()
}

// markName печатает None как "none" в логах.
type markName holiday.Mark

func (m markName) String() string {
	if holiday.Mark(m) == holiday.None {
		return "none"
	}
	return holiday.Mark(m).String()
}

type nopPersistence struct{}

func (nopPersistence) LoadBookings(context.Context) ([]booking.Booking, error) { return nil, nil }
func (nopPersistence) LoadHolidays(context.Context) (holiday.Snapshot, error)  { return nil, nil }
func (nopPersistence) LoadNotices(context.Context) ([]notice.Notice, error)    { return nil, nil }
func (nopPersistence) PersistInsert(context.Context, booking.Booking) error    { return nil }
func (nopPersistence) PersistRemove(context.Context, string, string) error     { return nil }
func (nopPersistence) PersistAutoCancel(context.Context, notice.Notice) error  { return nil }
func (nopPersistence) PersistDismiss(context.Context, string) error            { return nil }
func (nopPersistence) PersistHolidaySet(context.Context, string, calendar.Date, holiday.Mark) error {
	return nil
}
