package schedule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	appLog "knwidget/internal/log"
	"knwidget/internal/model"
)

// Defaults applied when the web payload omits or mangles a field. The
// placeholder strings match the app UI language.
const (
	DefaultColor       = "#6366f1"
	PlaceholderTitle   = "수업"
	PlaceholderRoom    = "강의실 미정"
	DeepLinkScheme     = "kangnaeng://class/"
	MinutesPerDay      = 1440
)

var (
	timeRe  = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)
	colorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

	// Namespace for deterministic fallback slot IDs (uuid v5).
	slotIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("kangnaeng://slot"))

	dayNames = map[string]int{
		"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
	}
)

// Normalize flattens a raw course list into validated ClassSlots.
//
// Each (course, meeting) pair is validated independently: a bad day, a bad
// time string or a reversed time range drops that single slot (logged at
// debug), never the whole batch. A bad color is substituted with
// DefaultColor. Empty input yields an empty, non-nil slice.
func Normalize(raw *model.RawSchedule) []model.ClassSlot {
	out := make([]model.ClassSlot, 0)
	if raw == nil {
		return out
	}

	for _, course := range raw.CourseList() {
		for _, meeting := range course.Slots {
			slot, ok := normalizeOne(course, meeting)
			if !ok {
				continue
			}
			out = append(out, slot)
		}
	}

	appLog.Info("schedule normalized", "slot_count", len(out))
	return out
}

func normalizeOne(course model.RawCourse, m model.RawMeeting) (model.ClassSlot, bool) {
	day, ok := parseDay(m.Day)
	if !ok {
		appLog.Debug("slot skipped: bad day", "course", course.Name, "day", fmt.Sprint(m.Day))
		return model.ClassSlot{}, false
	}

	start, ok := parseMinutes(m.StartTime)
	if !ok {
		appLog.Debug("slot skipped: bad start time", "course", course.Name, "start", m.StartTime)
		return model.ClassSlot{}, false
	}
	end, ok := parseMinutes(m.EndTime)
	if !ok {
		appLog.Debug("slot skipped: bad end time", "course", course.Name, "end", m.EndTime)
		return model.ClassSlot{}, false
	}
	if start >= end {
		appLog.Debug("slot skipped: start not before end",
			"course", course.Name, "start", m.StartTime, "end", m.EndTime)
		return model.ClassSlot{}, false
	}

	title := strings.TrimSpace(course.Name)
	if title == "" {
		title = PlaceholderTitle
	}

	location := strings.TrimSpace(m.Location)
	if location == "" {
		location = strings.TrimSpace(course.Room)
	}
	if location == "" {
		location = PlaceholderRoom
	}

	// Slot-level color wins over course-level color.
	colorHex := m.Color
	if colorHex == "" {
		colorHex = course.Color
	}
	if !colorRe.MatchString(colorHex) {
		colorHex = DefaultColor
	}

	id := strings.TrimSpace(course.ID)
	if id == "" {
		// Deterministic content-derived fallback so alarm keys stay stable
		// across saves of an unchanged schedule.
		seed := fmt.Sprintf("%s|%d|%d|%d", title, day, start, end)
		id = uuid.NewSHA1(slotIDNamespace, []byte(seed)).String()
	}

	return model.ClassSlot{
		ID:          id,
		Title:       title,
		Location:    location,
		TimeDisplay: fmt.Sprintf("%s - %s", canonicalTime(start), canonicalTime(end)),
		ColorHex:    colorHex,
		DeepLink:    DeepLinkScheme + id,
		Day:         day,
		StartMinute: start,
		EndMinute:   end,
	}, true
}

// parseDay accepts a 3-letter weekday abbreviation (case-insensitive,
// longer names are matched by their first three letters) or a number in
// [0..6] with 0=Sunday. JSON numbers arrive as float64.
func parseDay(v any) (int, bool) {
	switch d := v.(type) {
	case string:
		s := strings.ToLower(strings.TrimSpace(d))
		if len(s) > 3 {
			s = s[:3]
		}
		n, ok := dayNames[s]
		return n, ok
	case float64:
		n := int(d)
		return n, float64(n) == d && n >= 0 && n <= 6
	case int:
		return d, d >= 0 && d <= 6
	default:
		return 0, false
	}
}

// parseMinutes validates an HH:MM string (hour 0-23, minute 0-59) and
// returns minutes from midnight.
func parseMinutes(s string) (int, bool) {
	m := timeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	// The regexp guarantees both captures are in-range numerics.
	h := atoi2(m[1])
	mm := atoi2(m[2])
	return h*60 + mm, true
}

func atoi2(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

func canonicalTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// CanonicalHour renders a whole hour as "HH:00".
func CanonicalHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}
