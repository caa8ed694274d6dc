package timeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadClock — строка времени не разбирается как HH:MM.
var ErrBadClock = errors.New("invalid clock time")

// Clock — время на часах без даты и зоны. Hour может превышать 23
// у интервалов, перекатившихся за полночь.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock разбирает строку вида "09:30". Времена в хранилище
// валидируются на входе, поэтому ошибка здесь — нарушение контракта
// вызывающей стороны, а не деградация.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Clock{}, fmt.Errorf("%w: %q", ErrBadClock, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrBadClock, s)
	}

	return Clock{Hour: hour, Minute: minute}, nil
}

// String форматирует время обратно в "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Offset возвращает дробно-часовое смещение: hour + minute/60.
// Используется для пропорционального размещения на часовой оси.
func (c Clock) Offset() float64 {
	return float64(c.Hour) + float64(c.Minute)/60
}

// AddMinutes прибавляет минуты с переносом в часы. День не
// оборачивается: 23:30 + 90 даёт 25:00, смещение за последней
// часовой строкой (политика rollover, без обрезания).
func (c Clock) AddMinutes(m int) Clock {
	total := c.Hour*60 + c.Minute + m
	return Clock{Hour: total / 60, Minute: total % 60}
}
