package booking

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Leganyst/refresh-booking/internal/calendar"
)

// Store: множество живых записей. Единственный владелец Booking:
// остальные компоненты меняют записи только через Insert/Remove.
type Store struct {
	mu     sync.RWMutex
	byID   map[string]Booking
	bySlot map[SlotKey]string
}

func NewStore() *Store {
	return &Store{
		byID:   make(map[string]Booking),
		bySlot: make(map[SlotKey]string),
	}
}

// Insert атомарно проверяет слот и сохраняет запись.
// Из двух одновременных вставок в один слот ровно одна получит ErrSlotConflict.
func (s *Store) Insert(b Booking) (Booking, error) {
	key := b.Slot()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.bySlot[key]; taken {
		return Booking{}, fmt.Errorf("%w: %s", ErrSlotConflict, key)
	}
	if _, dup := s.byID[b.ID]; dup {
		return Booking{}, fmt.Errorf("%w: %s", ErrDuplicateID, b.ID)
	}

	s.byID[b.ID] = b
	s.bySlot[key] = b.ID
	return b, nil
}

// Remove удаляет запись; отсутствующий id: no-op (ok == false).
func (s *Store) Remove(id string) (Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return Booking{}, false
	}
	delete(s.byID, id)
	if s.bySlot[b.Slot()] == id {
		delete(s.bySlot, b.Slot())
	}
	return b, true
}

func (s *Store) Get(id string) (Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byID[id]
	return b, ok
}

// SlotTaken возвращает запись, занимающую слот, если она есть.
func (s *Store) SlotTaken(key SlotKey) (Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySlot[key]
	if !ok {
		return Booking{}, false
	}
	return s.byID[id], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *Store) All() []Booking {
	return s.filter(func(Booking) bool { return true })
}

func (s *Store) ByUser(userID string) []Booking {
	return s.filter(func(b Booking) bool { return b.UserID == userID })
}

func (s *Store) ByProviderAndDate(providerID string, date calendar.Date) []Booking {
	return s.filter(func(b Booking) bool {
		return b.ProviderID == providerID && b.Date == date
	})
}

func (s *Store) ByUserAndDate(userID string, date calendar.Date) []Booking {
	return s.filter(func(b Booking) bool {
		return b.UserID == userID && b.Date == date
	})
}

// ByUserAndWeek - записи пользователя, чья дата попадает в окно квоты week.
func (s *Store) ByUserAndWeek(userID string, week calendar.Week) []Booking {
	return s.filter(func(b Booking) bool {
		return b.UserID == userID && week.Contains(b.Date)
	})
}

// filter возвращает копии, отсортированные по (дата, время).
func (s *Store) filter(keep func(Booking) bool) []Booking {
	s.mu.RLock()
	out := make([]Booking, 0)
	for _, b := range s.byID {
		if keep(b) {
			out = append(out, b)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
