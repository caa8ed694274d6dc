package timeline

import (
	"fmt"
	"time"

	"github.com/HanyangXu0508/clinic-appointment-system/internal/model"
)

// DefaultDurationMinutes — длительность по умолчанию, когда фактический
// интервал (приход-уход) не задан.
const DefaultDurationMinutes = 90

// DateLayout — каноничный формат хранимой даты.
const DateLayout = "2006-01-02"

// Window — окно раскладки: один день или неделя с понедельника.
type Window struct {
	start time.Time // полночь первого дня
	days  int       // 1 или 7
}

// DayOf строит однодневное окно для даты t.
func DayOf(t time.Time) Window {
	return Window{start: midnight(t), days: 1}
}

// WeekOf строит недельное окно, содержащее дату t.
// Первый столбец — понедельник.
func WeekOf(t time.Time) Window {
	d := midnight(t)
	// time.Weekday: воскресенье = 0.
	shift := (int(d.Weekday()) + 6) % 7
	return Window{start: d.AddDate(0, 0, -shift), days: 7}
}

// Start возвращает первый день окна.
func (w Window) Start() time.Time { return w.start }

// Len возвращает количество дней (столбцов) окна.
func (w Window) Len() int { return w.days }

// Days перечисляет дни окна по порядку.
func (w Window) Days() []time.Time {
	out := make([]time.Time, w.days)
	for i := range out {
		out[i] = w.start.AddDate(0, 0, i)
	}
	return out
}

// Bounds возвращает границы окна в хранимой форме дат (включительно).
func (w Window) Bounds() (from, to string) {
	return w.start.Format(DateLayout), w.start.AddDate(0, 0, w.days-1).Format(DateLayout)
}

// IndexOf возвращает номер столбца для хранимой даты и признак
// попадания в окно.
func (w Window) IndexOf(dateISO string) (int, bool) {
	d, err := time.ParseInLocation(DateLayout, dateISO, w.start.Location())
	if err != nil {
		return 0, false
	}
	idx := daysBetween(w.start, d)
	if idx < 0 || idx >= w.days {
		return 0, false
	}
	return idx, true
}

// Block — размещённый на оси блок одной записи.
type Block struct {
	ID      string
	Patient string
	// Столбец окна: 0 для дневного вида, 0..6 для недельного.
	Day int

	Start Clock
	End   Clock

	// Дробно-часовые смещения для вертикального позиционирования.
	StartOffset float64
	EndOffset   float64

	Services []string
}

// Layout раскладывает записи по окну. Занятый интервал — фактический
// (приход, уход), когда оба заданы, иначе плановое время плюс 90 минут.
// Записи вне окна пропускаются без ошибки; пересекающиеся блоки не
// разрешаются — они просто накладываются.
func Layout(appts []model.Appointment, w Window) ([]Block, error) {
	blocks := make([]Block, 0, len(appts))

	for _, a := range appts {
		day, ok := w.IndexOf(a.Date)
		if !ok {
			continue
		}

		start, end, err := occupiedInterval(a)
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, Block{
			ID:          a.ID,
			Patient:     a.Patient,
			Day:         day,
			Start:       start,
			End:         end,
			StartOffset: start.Offset(),
			EndOffset:   end.Offset(),
			Services:    model.ParseServices(a.Services),
		})
	}

	return blocks, nil
}

func occupiedInterval(a model.Appointment) (Clock, Clock, error) {
	if a.ArrivalTime != "" && a.LeaveTime != "" {
		start, err := ParseClock(a.ArrivalTime)
		if err != nil {
			return Clock{}, Clock{}, fmt.Errorf("appointment %s arrival: %w", a.ID, err)
		}
		end, err := ParseClock(a.LeaveTime)
		if err != nil {
			return Clock{}, Clock{}, fmt.Errorf("appointment %s leave: %w", a.ID, err)
		}
		return start, end, nil
	}

	start, err := ParseClock(a.PlannedTime)
	if err != nil {
		return Clock{}, Clock{}, fmt.Errorf("appointment %s planned: %w", a.ID, err)
	}
	return start, start.AddMinutes(DefaultDurationMinutes), nil
}

// NowOffset возвращает дробно-часовое смещение момента t внутри суток.
func NowOffset(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}

// NowMarker вычисляет позицию линии «сейчас»: столбец и смещение.
// visible = false, когда текущий день не попадает в окно.
func NowMarker(w Window, now time.Time) (day int, offset float64, visible bool) {
	day, visible = w.IndexOf(midnight(now).Format(DateLayout))
	if !visible {
		return 0, 0, false
	}
	return day, NowOffset(now), true
}

func midnight(t time.Time) time.Time {
	year, month, dayOfMonth := t.Date()
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, t.Location())
}

func daysBetween(from, to time.Time) int {
	// Округление до суток сглаживает переходы летнего времени.
	return int(to.Sub(from).Round(24*time.Hour) / (24 * time.Hour))
}
