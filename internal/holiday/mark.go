package holiday

import (
	"errors"
	"fmt"

	"github.com/Leganyst/refresh-booking/internal/calendar"
)

var ErrUnknownMark = errors.New("unknown holiday mark")

// Mark: отметка недоступности провайдера на дату.
// Нулевое значение None означает «работает» и в хранилище не записывается.
type Mark uint8

const (
	None Mark = iota
	Full
	AM
	PM
)

// cycleNext задаёт единственный порядок перехода None→Full→AM→PM→None.
var cycleNext = [...]Mark{
	None: Full,
	Full: AM,
	AM:   PM,
	PM:   None,
}

var markCodes = [...]string{
	None: "",
	Full: "full",
	AM:   "am",
	PM:   "pm",
}

var cancellationReasons = [...]string{
	None: "",
	Full: "full-day closure",
	AM:   "morning closure",
	PM:   "afternoon closure",
}

func (m Mark) valid() bool { return int(m) < len(cycleNext) }

// Next возвращает следующее состояние цикла.
func (m Mark) Next() Mark {
	if !m.valid() {
		return None
	}
	return cycleNext[m]
}

// Covers - закрывает ли отметка слот, начинающийся в t.
func (m Mark) Covers(t calendar.TimeOfDay) bool {
	switch m {
	case Full:
		return true
	case AM:
		return t.Hour < calendar.MiddayHour
	case PM:
		return t.Hour >= calendar.MiddayHour
	default:
		return false
	}
}

// CancellationReason: текст причины для уведомления об автоотмене.
func (m Mark) CancellationReason() string {
	if !m.valid() {
		return ""
	}
	return cancellationReasons[m]
}

// String возвращает код для хранения: "", "full", "am", "pm".
func (m Mark) String() string {
	if !m.valid() {
		return fmt.Sprintf("Mark(%d)", uint8(m))
	}
	return markCodes[m]
}

func (m Mark) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMark, uint8(m))
	}
	return []byte(markCodes[m]), nil
}

func (m *Mark) UnmarshalText(b []byte) error {
	parsed, err := ParseMark(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMark разбирает код хранения; пустая строка и "none" дают None.
func ParseMark(s string) (Mark, error) {
	switch s {
	case "", "none":
		return None, nil
	case "full":
		return Full, nil
	case "am":
		return AM, nil
	case "pm":
		return PM, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownMark, s)
	}
}
