package calendar

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrSlotDuration     = errors.New("slot duration must be positive")
	ErrSlotStep         = errors.New("slot step must not be shorter than slot duration")
)

// MiddayHour: граница полудня для полудневных отгулов:
// AM закрывает слоты с часом < MiddayHour, PM: с часом >= MiddayHour.
// Не зависит от сетки слотов.
const MiddayHour = 13

// TimeRange представляет временной интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange создаёт интервал и делает простую валидацию.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// SplitToTimeSlots нарезает интервал на слоты длительностью slotDuration,
// начала которых идут с шагом step. Слот, не помещающийся целиком, отбрасывается.
// step == 0 означает step == slotDuration (слоты встык).
func SplitToTimeSlots(tr TimeRange, slotDuration, step time.Duration) ([]TimeRange, error) {
	if slotDuration <= 0 {
		return nil, ErrSlotDuration
	}
	if step == 0 {
		step = slotDuration
	}
	if step < slotDuration {
		return nil, ErrSlotStep
	}
	if !tr.End.After(tr.Start) {
		return []TimeRange{}, nil
	}

	var slots []TimeRange
	for cur := tr.Start; cur.Before(tr.End); cur = cur.Add(step) {
		slotEnd := cur.Add(slotDuration)
		if slotEnd.After(tr.End) {
			break
		}
		slots = append(slots, TimeRange{Start: cur, End: slotEnd})
	}
	return slots, nil
}

// Slot - одна позиция фиксированной сетки.
type Slot struct {
	Session  string // "1차", "2차", ...
	Start    TimeOfDay
	Duration time.Duration
}

// Range: интервал слота на конкретной дате.
func (s Slot) Range(d Date, loc *time.Location) TimeRange {
	start := s.Start.On(d, loc)
	return TimeRange{Start: start, End: start.Add(s.Duration)}
}

// Display - "10:00-10:20".
func (s Slot) Display() string {
	end := s.Start.On(Date{Year: 2000, Month: time.January, Day: 1}, time.UTC).Add(s.Duration)
	return fmt.Sprintf("%s-%s", s.Start, end.Format(timeOfDayLayout))
}

// SlotGrid: упорядоченный неизменяемый список слотов рабочего дня.
type SlotGrid struct {
	slots []Slot
	index map[TimeOfDay]int
}

// NewSlotGrid строит сетку внутри окна [from, to) рабочего дня.
func NewSlotGrid(from, to TimeOfDay, slotDuration, step time.Duration) (*SlotGrid, error) {
	ref := Date{Year: 2000, Month: time.January, Day: 3}
	window, err := NewTimeRange(from.On(ref, time.UTC), to.On(ref, time.UTC))
	if err != nil {
		return nil, err
	}
	ranges, err := SplitToTimeSlots(window, slotDuration, step)
	if err != nil {
		return nil, err
	}
	if len(ranges) == 0 {
		return nil, ErrInvalidTimeRange
	}

	g := &SlotGrid{
		slots: make([]Slot, 0, len(ranges)),
		index: make(map[TimeOfDay]int, len(ranges)),
	}
	for i, r := range ranges {
		start := TimeOfDay{Hour: r.Start.Hour(), Minute: r.Start.Minute()}
		g.index[start] = i
		g.slots = append(g.slots, Slot{
			Session:  fmt.Sprintf("%d차", i+1),
			Start:    start,
			Duration: slotDuration,
		})
	}
	return g, nil
}

// DefaultSlotGrid - двенадцать 20-минутных сеансов с 10:00 каждые 40 минут (10:00 … 17:20).
func DefaultSlotGrid() *SlotGrid {
	g, err := NewSlotGrid(
		TimeOfDay{Hour: 10},
		TimeOfDay{Hour: 18},
		20*time.Minute,
		40*time.Minute,
	)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *SlotGrid) Contains(t TimeOfDay) bool {
	_, ok := g.index[t]
	return ok
}

func (g *SlotGrid) Slot(t TimeOfDay) (Slot, bool) {
	i, ok := g.index[t]
	if !ok {
		return Slot{}, false
	}
	return g.slots[i], true
}

func (g *SlotGrid) Slots() []Slot {
	out := make([]Slot, len(g.slots))
	copy(out, g.slots)
	return out
}

func (g *SlotGrid) Times() []TimeOfDay {
	out := make([]TimeOfDay, len(g.slots))
	for i, s := range g.slots {
		out[i] = s.Start
	}
	return out
}

func (g *SlotGrid) Len() int { return len(g.slots) }
