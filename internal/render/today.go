package render

import (
	"fmt"
	"time"

	"knwidget/internal/model"
)

// TodayList filters the snapshot to the current weekday, sorted by start
// minute. It is the data source for the simplified list widget.
func TodayList(snap *model.WidgetSnapshot, now time.Time) []model.LaidOutSlot {
	if snap == nil {
		return nil
	}
	return snap.SlotsForDay(int(now.Weekday()))
}

// TodayLines renders the today list as plain text lines, one class per
// line: "09:00 - 10:30  자료구조  공학관 204".
func TodayLines(snap *model.WidgetSnapshot, now time.Time) []string {
	slots := TodayList(snap, now)
	lines := make([]string, 0, len(slots))
	for _, s := range slots {
		lines = append(lines, fmt.Sprintf("%s  %s  %s", s.TimeDisplay, s.Title, s.Location))
	}
	return lines
}
