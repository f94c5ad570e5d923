package model

// Theme selects the widget color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// RawSchedule is the loosely-typed payload the web app sends over the
// bridge when the user saves their timetable. Field names are camelCase to
// match the web layer; older payloads used "classes" instead of "courses".
type RawSchedule struct {
	Courses   []RawCourse `json:"courses"`
	Classes   []RawCourse `json:"classes"`
	UpdatedAt int64       `json:"updatedAt"`
}

// CourseList returns whichever of the two payload keys is populated.
func (r *RawSchedule) CourseList() []RawCourse {
	if len(r.Courses) > 0 {
		return r.Courses
	}
	return r.Classes
}

// RawCourse is one course as reported by the web app, carrying a nested
// list of weekly meeting slots.
type RawCourse struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Room  string       `json:"room,omitempty"`
	Color string       `json:"color,omitempty"`
	Slots []RawMeeting `json:"slots"`
}

// RawMeeting is one weekly meeting of a course. Day may arrive as a
// 3-letter weekday string ("mon") or as a number (0=Sun..6=Sat), so it is
// kept untyped until validation.
type RawMeeting struct {
	Day       any    `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Location  string `json:"location,omitempty"`
	Color     string `json:"color,omitempty"`
}

// ClassSlot is one validated weekly occurrence of a class.
//
// Invariants (enforced by the normalizer, assumed everywhere else):
//   - Day in [0..6], 0=Sunday
//   - 0 <= StartMinute < EndMinute <= 1440
//   - ColorHex matches #RGB or #RRGGBB
type ClassSlot struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	TimeDisplay string `json:"time_display"` // "09:00 - 10:30"
	ColorHex    string `json:"color"`
	DeepLink    string `json:"deep_link"` // "kangnaeng://class/<id>"
	Day         int    `json:"day"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
}

// Overlaps reports whether the two slots' [start,end) intervals intersect
// on the same day. Touching intervals (end == other start) do not overlap.
func (s ClassSlot) Overlaps(o ClassSlot) bool {
	return s.Day == o.Day && s.StartMinute < o.EndMinute && o.StartMinute < s.EndMinute
}

// LaidOutSlot is a ClassSlot with its horizontal placement inside the day
// column: the slot occupies 1/ColumnCount of the column width, offset by
// ColumnIndex slots.
type LaidOutSlot struct {
	ClassSlot
	ColumnIndex int `json:"column_index"`
	ColumnCount int `json:"column_count"`
}

// WidgetSnapshot is the single persisted unit of truth shared by the grid
// renderer and the alarm scheduler. It is replaced wholesale on every
// schedule save and deleted wholesale on logout; it is never partially
// mutated.
type WidgetSnapshot struct {
	GeneratedAtDisplay string        `json:"generated_at_display"` // "업데이트: 오후 3:05"
	DateDisplay        string        `json:"date_display"`         // "3월 4일 (월)"
	Theme              Theme         `json:"theme"`
	Slots              []LaidOutSlot `json:"slots"`
	IsEmpty            bool          `json:"is_empty"`
}

// SlotsForDay returns the snapshot's slots for the given weekday
// (0=Sun..6=Sat) sorted by start minute, preserving snapshot order for
// equal starts.
func (w *WidgetSnapshot) SlotsForDay(day int) []LaidOutSlot {
	out := make([]LaidOutSlot, 0)
	for _, s := range w.Slots {
		if s.Day == day {
			out = append(out, s)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].StartMinute < out[j-1].StartMinute; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// AlarmSettings controls class-start notifications. Persisted independently
// of the snapshot.
type AlarmSettings struct {
	Enabled       bool `json:"enabled"`
	OffsetMinutes int  `json:"offset_minutes"`
}

// DefaultAlarmSettings matches the app's first-run behavior: notifications
// off, 10 minutes before class start once enabled.
func DefaultAlarmSettings() AlarmSettings {
	return AlarmSettings{Enabled: false, OffsetMinutes: 10}
}
