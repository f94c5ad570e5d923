package export

import (
	"strings"
	"testing"
	"time"

	"knwidget/internal/model"
)

var kst = time.FixedZone("KST", 9*3600)

func snapWith(slots ...model.LaidOutSlot) *model.WidgetSnapshot {
	return &model.WidgetSnapshot{Slots: slots}
}

func mondayClass() model.LaidOutSlot {
	return model.LaidOutSlot{
		ClassSlot: model.ClassSlot{
			ID: "c1", Title: "자료구조", Location: "공학관 204",
			TimeDisplay: "09:00 - 10:30", ColorHex: "#FF5733",
			Day: 1, StartMinute: 540, EndMinute: 630,
		},
		ColumnCount: 1,
	}
}

func TestBuildICS_WeeklyEvent(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, kst) // a Wednesday

	out, err := BuildICS(snapWith(mondayClass()), kst, now)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:c1@knwidget",
		"SUMMARY:자료구조",
		"LOCATION:공학관 204",
		"FREQ=WEEKLY",
		"BYDAY=MO",
		"COLOR:#FF5733",
		"END:VEVENT",
		"END:VCALENDAR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("feed missing %q\n%s", want, out)
		}
	}

	// First occurrence from a Wednesday is the following Monday 09:00.
	if !strings.Contains(out, "20250310T") {
		t.Errorf("expected DTSTART on 2025-03-10, got:\n%s", out)
	}
}

func TestBuildICS_ClassRunningNowStillToday(t *testing.T) {
	// Wednesday class, queried mid-class on Wednesday: DTSTART stays today.
	slot := mondayClass()
	slot.Day = 3
	now := time.Date(2025, 3, 5, 9, 30, 0, 0, kst)

	out, err := BuildICS(snapWith(slot), kst, now)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "20250305T") {
		t.Errorf("expected DTSTART today (2025-03-05), got:\n%s", out)
	}
}

func TestBuildICS_BadSlotSkipped(t *testing.T) {
	bad := mondayClass()
	bad.ID = "bad"
	bad.Day = 9

	out, err := BuildICS(snapWith(bad, mondayClass()), kst, time.Date(2025, 3, 5, 12, 0, 0, 0, kst))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "UID:bad@knwidget") {
		t.Error("out-of-range slot should be skipped")
	}
	if !strings.Contains(out, "UID:c1@knwidget") {
		t.Error("valid slot missing from feed")
	}
}

func TestBuildICS_NilSnapshot(t *testing.T) {
	out, err := BuildICS(nil, kst, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "BEGIN:VCALENDAR") || strings.Contains(out, "BEGIN:VEVENT") {
		t.Errorf("nil snapshot should yield an empty calendar:\n%s", out)
	}
}
