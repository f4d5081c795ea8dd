package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/Leganyst/refresh-booking/internal/calendar"
	"github.com/Leganyst/refresh-booking/internal/lock"
)

// Clock: источник текущего времени; в тестах подменяется.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type Option func(*CalendarService)

func WithClock(c Clock) Option {
	return func(s *CalendarService) { s.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *CalendarService) { s.log = l }
}

// WithLocker задаёт блокировки пользователя и слота (например, lock.RedisLocker).
func WithLocker(l lock.Locker) Option {
	return func(s *CalendarService) { s.locker = l }
}

// WithDirectory включает проверку известных пользователей и провайдеров.
func WithDirectory(d Directory) Option {
	return func(s *CalendarService) { s.dir = d }
}

func WithGrid(g *calendar.SlotGrid) Option {
	return func(s *CalendarService) { s.grid = g }
}

func WithPublicHolidays(h calendar.PublicHolidays) Option {
	return func(s *CalendarService) { s.publicHolidays = h }
}

func WithLocation(loc *time.Location) Option {
	return func(s *CalendarService) { s.loc = loc }
}

// WithDayEndCutoff - момент, после которого день закрыт для админских отметок.
func WithDayEndCutoff(t calendar.TimeOfDay) Option {
	return func(s *CalendarService) { s.dayEnd = t }
}

// WithBookableDays задаёт горизонт расписания (предел просмотра и число рабочих дней).
func WithBookableDays(lookaheadCapDays, targetCount int) Option {
	return func(s *CalendarService) {
		s.lookaheadDays = lookaheadCapDays
		s.targetDays = targetCount
	}
}

// WithIDGenerator подменяет генератор id записей.
func WithIDGenerator(f func() string) Option {
	return func(s *CalendarService) { s.newID = f }
}
