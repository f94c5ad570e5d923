package schedule

import (
	"fmt"
	"time"

	"knwidget/internal/model"
)

var koreanWeekdays = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// BuildSnapshot runs the full normalize → layout pipeline and stamps the
// snapshot with its display strings. now must already be in the configured
// display timezone.
func BuildSnapshot(raw *model.RawSchedule, theme model.Theme, now time.Time) *model.WidgetSnapshot {
	if !theme.Valid() {
		theme = model.ThemeDark
	}

	slots := Layout(Normalize(raw))

	return &model.WidgetSnapshot{
		GeneratedAtDisplay: "업데이트: " + FormatKoreanClock(now),
		DateDisplay:        FormatKoreanDate(now),
		Theme:              theme,
		Slots:              slots,
		IsEmpty:            len(slots) == 0,
	}
}

// FormatKoreanClock renders t as "오전 9:05" / "오후 3:05".
func FormatKoreanClock(t time.Time) string {
	meridiem := "오전"
	h := t.Hour()
	if h >= 12 {
		meridiem = "오후"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%s %d:%02d", meridiem, h12, t.Minute())
}

// FormatKoreanDate renders t as "3월 4일 (월)".
func FormatKoreanDate(t time.Time) string {
	return fmt.Sprintf("%d월 %d일 (%s)", int(t.Month()), t.Day(), koreanWeekdays[int(t.Weekday())])
}
