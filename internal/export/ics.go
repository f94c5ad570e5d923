// Package export serializes the widget snapshot as an iCalendar feed so
// the timetable can be pulled into external calendar apps.
package export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "knwidget/internal/log"
	"knwidget/internal/model"
)

// rrule weekday per snapshot day index (0=Sun..6=Sat).
var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// BuildICS renders the snapshot as a VCALENDAR with one weekly-recurring
// VEVENT per class slot. The first occurrence is the next (or currently
// running) meeting relative to now in the display timezone. Slots that
// fail occurrence computation are skipped and logged; the feed is still
// produced for the rest.
func BuildICS(snap *model.WidgetSnapshot, loc *time.Location, now time.Time) (string, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//knwidget//timetable//KO")

	if snap == nil {
		return cal.Serialize(), nil
	}

	for _, s := range snap.Slots {
		if err := addSlotEvent(cal, s, loc, now); err != nil {
			appLog.Error("ics export: slot skipped", err, "slot_id", s.ID)
		}
	}
	return cal.Serialize(), nil
}

func addSlotEvent(cal *ical.Calendar, s model.LaidOutSlot, loc *time.Location, now time.Time) error {
	if s.Day < 0 || s.Day > 6 {
		return fmt.Errorf("day out of range: %d", s.Day)
	}

	// Seed the rule at today's date with the slot's start clock time; the
	// BYDAY constraint moves the first occurrence onto the right weekday.
	seed := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).
		Add(time.Duration(s.StartMinute) * time.Minute)

	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[s.Day]},
		Dtstart:   seed,
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return fmt.Errorf("build rrule: %w", err)
	}

	duration := time.Duration(s.EndMinute-s.StartMinute) * time.Minute

	// Next-or-current occurrence: a class that already started today still
	// counts as the first DTSTART.
	first := r.After(now.Add(-duration), true)
	if first.IsZero() {
		return fmt.Errorf("no occurrence computed")
	}

	ev := cal.AddEvent(fmt.Sprintf("%s@knwidget", s.ID))
	ev.SetDtStampTime(now)
	ev.SetStartAt(first)
	ev.SetEndAt(first.Add(duration))
	ev.SetSummary(s.Title)
	ev.SetLocation(s.Location)
	ev.SetProperty(ical.ComponentPropertyRrule, opt.RRuleString())
	ev.SetProperty(ical.ComponentProperty("COLOR"), s.ColorHex)
	return nil
}
