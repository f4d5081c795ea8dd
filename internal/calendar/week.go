package calendar

import "time"

// Week - окно квоты, неделя с понедельника по воскресенье, содержащая дату.
type Week struct {
	Start Date // всегда понедельник
}

// WeekOf возвращает неделю, в которую попадает d.
func WeekOf(d Date) Week {
	// Sunday = 0, поэтому воскресенье относится к неделе, начавшейся шесть дней назад.
	offset := (int(d.Weekday()) + 6) % 7
	return Week{Start: d.AddDays(-offset)}
}

func (w Week) End() Date { return w.Start.AddDays(6) }

func (w Week) Next() Week { return Week{Start: w.Start.AddDays(7)} }

func (w Week) Prev() Week { return Week{Start: w.Start.AddDays(-7)} }

func (w Week) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End())
}

// Days: семь дней недели по порядку.
func (w Week) Days() []Date {
	days := make([]Date, 7)
	for i := range days {
		days[i] = w.Start.AddDays(i)
	}
	return days
}

// Bounds - [понедельник 00:00:00, воскресенье 23:59:59.999] в loc.
func (w Week) Bounds(loc *time.Location) TimeRange {
	start := w.Start.In(loc)
	end := w.End().AddDays(1).In(loc).Add(-time.Millisecond)
	return TimeRange{Start: start, End: end}
}

func (w Week) String() string {
	return w.Start.String() + "/" + w.End().String()
}
