package calendar

import "sort"

const (
	DefaultLookaheadCapDays = 30
	DefaultTargetDays       = 8
)

// PublicHolidays - статический внешний набор закрытых дат.
// Ядро его не меняет.
type PublicHolidays map[Date]struct{}

// NewPublicHolidays собирает набор из ISO-строк; пустые строки пропускаются.
func NewPublicHolidays(isoDates ...string) (PublicHolidays, error) {
	h := make(PublicHolidays, len(isoDates))
	for _, s := range isoDates {
		if s == "" {
			continue
		}
		d, err := ParseDate(s)
		if err != nil {
			return nil, err
		}
		h[d] = struct{}{}
	}
	return h, nil
}

func (h PublicHolidays) Contains(d Date) bool {
	_, ok := h[d]
	return ok
}

// Dates: отсортированный список дат.
func (h PublicHolidays) Dates() []Date {
	out := make([]Date, 0, len(h))
	for d := range h {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// IsBookableDay - будний день и не праздник.
func IsBookableDay(d Date, publicHolidays PublicHolidays) bool {
	return !d.IsWeekend() && !publicHolidays.Contains(d)
}

// BookableDays идёт по дням вперёд начиная с from (включительно), пропуская
// субботы, воскресенья и праздники, пока не наберёт targetCount дней или
// не просмотрит lookaheadCapDays календарных дней: что наступит раньше.
// Значения <= 0 заменяются дефолтами (30 и 8).
func BookableDays(from Date, publicHolidays PublicHolidays, lookaheadCapDays, targetCount int) []Date {
	if lookaheadCapDays <= 0 {
		lookaheadCapDays = DefaultLookaheadCapDays
	}
	if targetCount <= 0 {
		targetCount = DefaultTargetDays
	}

	days := make([]Date, 0, targetCount)
	cur := from
	for checked := 0; len(days) < targetCount && checked < lookaheadCapDays; checked++ {
		if IsBookableDay(cur, publicHolidays) {
			days = append(days, cur)
		}
		cur = cur.AddDays(1)
	}
	return days
}
