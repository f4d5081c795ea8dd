package notice

import (
	"testing"
	"time"

	"github.com/Leganyst/refresh-booking/internal/booking"
	"github.com/Leganyst/refresh-booking/internal/calendar"
)

var at = time.Date(2025, 10, 27, 9, 0, 0, 0, time.UTC)

func cancelled(id, userID, tod string) booking.Booking {
	return booking.Booking{
		ID:         id,
		UserID:     userID,
		ProviderID: "1",
		Date:       calendar.MustDate("2025-10-28"),
		Time:       calendar.MustTimeOfDay(tod),
	}
}

func TestLog_PendingInInsertionOrder(t *testing.T) {
	l := NewLog()
	l.Append(cancelled("b2", "user1", "14:00"), "afternoon closure", at)
	l.Append(cancelled("b1", "user1", "10:00"), "full-day closure", at)
	l.Append(cancelled("b3", "user2", "10:40"), "full-day closure", at)

	pending := l.Pending("user1")
	if len(pending) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(pending))
	}
	if pending[0].Booking.ID != "b2" || pending[1].Booking.ID != "b1" {
		t.Fatalf("unexpected order: %s, %s", pending[0].Booking.ID, pending[1].Booking.ID)
	}
	if pending[0].Reason != "afternoon closure" {
		t.Fatalf("unexpected reason %q", pending[0].Reason)
	}
	if got := l.Pending("nobody"); len(got) != 0 {
		t.Fatalf("expected no notices, got %d", len(got))
	}
}

func TestLog_NeverDuplicatesForSameBooking(t *testing.T) {
	l := NewLog()
	first, created := l.Append(cancelled("b1", "user1", "10:00"), "full-day closure", at)
	if !created {
		t.Fatalf("expected first append to create a notice")
	}

	again, created := l.Append(cancelled("b1", "user1", "10:00"), "morning closure", at)
	if created || again.ID != first.ID {
		t.Fatalf("expected existing notice, got %+v (created=%v)", again, created)
	}
	if len(l.Pending("user1")) != 1 {
		t.Fatalf("expected a single notice")
	}

	// И после закрытия: тоже.
	l.Dismiss(first.ID)
	if _, created := l.Append(cancelled("b1", "user1", "10:00"), "full-day closure", at); created {
		t.Fatalf("dismissed notice must not be recreated")
	}
}

func TestLog_DismissIsIdempotent(t *testing.T) {
	l := NewLog()
	n1, _ := l.Append(cancelled("b1", "user1", "10:00"), "full-day closure", at)
	n2, _ := l.Append(cancelled("b2", "user1", "10:40"), "full-day closure", at)

	if _, ok := l.Dismiss(n1.ID); !ok {
		t.Fatalf("expected dismiss to remove notice")
	}
	if _, ok := l.Dismiss(n1.ID); ok {
		t.Fatalf("second dismiss must be a no-op")
	}
	if _, ok := l.Dismiss("unknown"); ok {
		t.Fatalf("dismiss of unknown id must be a no-op")
	}

	pending := l.Pending("user1")
	if len(pending) != 1 || pending[0].ID != n2.ID {
		t.Fatalf("unexpected pending %+v", pending)
	}
}

func TestLog_Load(t *testing.T) {
	l := NewLog()
	l.Load([]Notice{
		{ID: "n1", Booking: cancelled("b1", "user1", "10:00"), Reason: "morning closure", CreatedAt: at},
		{ID: "n2", Booking: cancelled("b2", "user1", "13:20"), Reason: "afternoon closure", CreatedAt: at},
		{ID: "n3", Booking: cancelled("b1", "user1", "10:00"), Reason: "morning closure", CreatedAt: at},
	})

	pending := l.Pending("user1")
	if len(pending) != 2 || pending[0].ID != "n1" || pending[1].ID != "n2" {
		t.Fatalf("unexpected pending %+v", pending)
	}
	if _, ok := l.Get("n3"); ok {
		t.Fatalf("duplicate notice for the same booking must be skipped")
	}
}
