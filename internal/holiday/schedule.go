package holiday

import (
	"sync"

	"github.com/Leganyst/refresh-booking/internal/calendar"
)

// Refusal - причина, по которой переход цикла отклонён.
type Refusal uint8

const (
	RefusalNone Refusal = iota
	RefusalPastDate
	RefusalPublicHoliday
)

func (r Refusal) String() string {
	switch r {
	case RefusalPastDate:
		return "date is in the past"
	case RefusalPublicHoliday:
		return "date is a public holiday"
	default:
		return ""
	}
}

// Snapshot: providerID -> дата -> отметка (только не-None).
type Snapshot map[string]map[calendar.Date]Mark

// Schedule хранит отметки по ключу (providerID, дата).
// Отсутствие записи означает None.
type Schedule struct {
	mu    sync.RWMutex
	marks Snapshot
}

func NewSchedule() *Schedule {
	return &Schedule{marks: make(Snapshot)}
}

func (s *Schedule) Get(providerID string, date calendar.Date) Mark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marks[providerID][date]
}

// Set записывает отметку; None удаляет запись, пустая карта провайдера убирается.
func (s *Schedule) Set(providerID string, date calendar.Date, m Mark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(providerID, date, m)
}

func (s *Schedule) setLocked(providerID string, date calendar.Date, m Mark) {
	if m == None {
		byDate, ok := s.marks[providerID]
		if !ok {
			return
		}
		delete(byDate, date)
		if len(byDate) == 0 {
			delete(s.marks, providerID)
		}
		return
	}
	byDate, ok := s.marks[providerID]
	if !ok {
		byDate = make(map[calendar.Date]Mark)
		s.marks[providerID] = byDate
	}
	byDate[date] = m
}

// Load заменяет содержимое (первичная загрузка из хранилища).
func (s *Schedule) Load(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks = make(Snapshot, len(snap))
	for providerID, byDate := range snap {
		for d, m := range byDate {
			s.setLocked(providerID, d, m)
		}
	}
}

// Snapshot возвращает глубокую копию.
func (s *Schedule) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Snapshot, len(s.marks))
	for providerID, byDate := range s.marks {
		cp := make(map[calendar.Date]Mark, len(byDate))
		for d, m := range byDate {
			cp[d] = m
		}
		out[providerID] = cp
	}
	return out
}
