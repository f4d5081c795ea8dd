package booking

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Leganyst/refresh-booking/internal/calendar"
)

func newBooking(id, userID, providerID, date, tod string) Booking {
	return Booking{
		ID:         id,
		UserID:     userID,
		ProviderID: providerID,
		Date:       calendar.MustDate(date),
		Time:       calendar.MustTimeOfDay(tod),
	}
}

func TestStore_InsertRejectsTakenSlot(t *testing.T) {
	s := NewStore()

	if _, err := s.Insert(newBooking("b1", "user1", "1", "2025-10-28", "10:00")); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	_, err := s.Insert(newBooking("b2", "user2", "1", "2025-10-28", "10:00"))
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}

	// Тот же час у другого провайдера: другой слот.
	if _, err := s.Insert(newBooking("b3", "user2", "2", "2025-10-28", "10:00")); err != nil {
		t.Fatalf("insert other provider: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 bookings, got %d", s.Len())
	}
}

func TestStore_InsertRejectsDuplicateID(t *testing.T) {
	s := NewStore()
	if _, err := s.Insert(newBooking("b1", "user1", "1", "2025-10-28", "10:00")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := s.Insert(newBooking("b1", "user1", "1", "2025-10-29", "10:00"))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestStore_ConcurrentInsertSameSlotExactlyOneWins(t *testing.T) {
	s := NewStore()

	const writers = 64
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	start := make(chan struct{})

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := s.Insert(newBooking(fmt.Sprintf("b%d", i), fmt.Sprintf("user%d", i), "1", "2025-10-28", "10:40"))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrSlotConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if successes.Load() != 1 {
		t.Fatalf("expected exactly 1 success, got %d", successes.Load())
	}
	if conflicts.Load() != writers-1 {
		t.Fatalf("expected %d conflicts, got %d", writers-1, conflicts.Load())
	}
}

func TestStore_RemoveIsIdempotentAndFreesSlot(t *testing.T) {
	s := NewStore()
	b := newBooking("b1", "user1", "1", "2025-10-28", "10:00")
	if _, err := s.Insert(b); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, ok := s.Remove("b1"); !ok {
		t.Fatalf("expected first remove to report removal")
	}
	if _, ok := s.Remove("b1"); ok {
		t.Fatalf("second remove must be a no-op")
	}
	if _, ok := s.Remove("missing"); ok {
		t.Fatalf("remove of unknown id must be a no-op")
	}

	if _, taken := s.SlotTaken(b.Slot()); taken {
		t.Fatalf("slot must be free after remove")
	}
	if _, err := s.Insert(newBooking("b2", "user2", "1", "2025-10-28", "10:00")); err != nil {
		t.Fatalf("re-insert into freed slot: %v", err)
	}
}

func TestStore_Queries(t *testing.T) {
	s := NewStore()
	for _, b := range []Booking{
		newBooking("b1", "user1", "1", "2025-10-29", "11:20"),
		newBooking("b2", "user1", "2", "2025-10-27", "10:00"),
		newBooking("b3", "user1", "1", "2025-11-03", "10:00"), // следующая неделя
		newBooking("b4", "user2", "1", "2025-10-29", "10:00"),
	} {
		if _, err := s.Insert(b); err != nil {
			t.Fatalf("insert %s: %v", b.ID, err)
		}
	}

	byUser := s.ByUser("user1")
	if len(byUser) != 3 || byUser[0].ID != "b2" || byUser[2].ID != "b3" {
		t.Fatalf("unexpected ByUser result %+v", byUser)
	}

	week := calendar.WeekOf(calendar.MustDate("2025-10-28"))
	inWeek := s.ByUserAndWeek("user1", week)
	if len(inWeek) != 2 || inWeek[0].ID != "b2" || inWeek[1].ID != "b1" {
		t.Fatalf("unexpected ByUserAndWeek result %+v", inWeek)
	}

	day := s.ByProviderAndDate("1", calendar.MustDate("2025-10-29"))
	if len(day) != 2 || day[0].ID != "b4" || day[1].ID != "b1" {
		t.Fatalf("unexpected ByProviderAndDate result %+v", day)
	}

	if got := s.ByUserAndDate("user2", calendar.MustDate("2025-10-29")); len(got) != 1 {
		t.Fatalf("unexpected ByUserAndDate result %+v", got)
	}
}
