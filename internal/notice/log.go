package notice

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/refresh-booking/internal/booking"
)

// Notice - уведомление об автоматически отменённой записи.
// Неизменяемо; живёт, пока пользователь его не закроет.
type Notice struct {
	ID        string          `json:"id"`
	Booking   booking.Booking `json:"booking"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (n Notice) UserID() string { return n.Booking.UserID }

// Log: очередь непрочитанных уведомлений по пользователям.
type Log struct {
	mu        sync.RWMutex
	byUser    map[string][]string // userID -> id уведомлений в порядке вставки
	byID      map[string]Notice
	byBooking map[string]string // bookingID -> noticeID
}

func NewLog() *Log {
	return &Log{
		byUser:    make(map[string][]string),
		byID:      make(map[string]Notice),
		byBooking: make(map[string]string),
	}
}

// Append создаёт уведомление для отменённой записи.
// Для одной записи уведомление создаётся один раз: повтор вернёт существующее и false.
func (l *Log) Append(b booking.Booking, reason string, at time.Time) (Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id, ok := l.byBooking[b.ID]; ok {
		return l.byID[id], false
	}

	n := Notice{
		ID:        uuid.NewString(),
		Booking:   b,
		Reason:    reason,
		CreatedAt: at,
	}
	l.addLocked(n)
	return n, true
}

// Load добавляет ранее сохранённые уведомления в порядке среза.
func (l *Log) Load(notices []Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, n := range notices {
		if _, ok := l.byBooking[n.Booking.ID]; ok {
			continue
		}
		l.addLocked(n)
	}
}

func (l *Log) addLocked(n Notice) {
	l.byID[n.ID] = n
	l.byBooking[n.Booking.ID] = n.ID
	l.byUser[n.UserID()] = append(l.byUser[n.UserID()], n.ID)
}

// Pending - непрочитанные уведомления пользователя в порядке вставки.
func (l *Log) Pending(userID string) []Notice {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.byUser[userID]
	out := make([]Notice, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.byID[id])
	}
	return out
}

func (l *Log) Get(id string) (Notice, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n, ok := l.byID[id]
	return n, ok
}

// Dismiss удаляет уведомление; неизвестный id: no-op.
func (l *Log) Dismiss(id string) (Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.byID[id]
	if !ok {
		return Notice{}, false
	}
	delete(l.byID, id)
	// byBooking не чистим: запись уже отменена и повторно уведомлять о ней нельзя.

	ids := l.byUser[n.UserID()]
	for i, cur := range ids {
		if cur == id {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(l.byUser, n.UserID())
	} else {
		l.byUser[n.UserID()] = ids
	}
	return n, true
}
