package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// weekdayLabels — подписи столбцов недельного вида.
var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Render печатает окно как текстовую часовую ось: по секции на день,
// внутри — строки часов с блоками, начинающимися в этот час, и линия
// «сейчас» на текущем дне. Это терминальная версия канвы оригинала.
func Render(blocks []Block, w Window, now time.Time) string {
	var b strings.Builder

	byDay := make(map[int][]Block, w.Len())
	lastHour := 23
	for _, bl := range blocks {
		byDay[bl.Day] = append(byDay[bl.Day], bl)
		// Перекат за полночь удлиняет ось, а не обрезается.
		if bl.End.Hour > lastHour {
			lastHour = bl.End.Hour
		}
	}
	for _, day := range byDay {
		sort.Slice(day, func(i, j int) bool {
			return day[i].StartOffset < day[j].StartOffset
		})
	}

	nowDay, nowOffset, nowVisible := NowMarker(w, now)

	for i, date := range w.Days() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s\n", weekdayLabels[(int(date.Weekday())+6)%7], date.Format("02.01.2006"))

		dayBlocks := byDay[i]
		for h := 0; h <= lastHour; h++ {
			fmt.Fprintf(&b, "%02d:00 |", h)
			for _, bl := range dayBlocks {
				if bl.Start.Hour == h {
					fmt.Fprintf(&b, " [%s–%s %s%s]", bl.Start, bl.End, bl.Patient, servicesSuffix(bl.Services))
				}
			}
			b.WriteString("\n")

			if nowVisible && nowDay == i && int(nowOffset) == h {
				fmt.Fprintf(&b, "%s<-- now %s\n", strings.Repeat(" ", 6), now.Format("15:04"))
			}
		}
	}

	return b.String()
}

func servicesSuffix(services []string) string {
	if len(services) == 0 {
		return ""
	}
	return " (" + strings.Join(services, ", ") + ")"
}
