package render

import (
	"image/color"
	"testing"
	"time"

	"knwidget/internal/model"
)

func testSnapshot(slots ...model.LaidOutSlot) *model.WidgetSnapshot {
	return &model.WidgetSnapshot{
		GeneratedAtDisplay: "업데이트: 오전 9:00",
		DateDisplay:        "3월 3일 (월)",
		Theme:              model.ThemeDark,
		Slots:              slots,
		IsEmpty:            len(slots) == 0,
	}
}

func classBlock(id, colorHex string, day, start, end int) model.LaidOutSlot {
	return model.LaidOutSlot{
		ClassSlot: model.ClassSlot{
			ID: id, Title: "자료구조", Location: "공학관 204",
			TimeDisplay: "09:00 - 10:30", ColorHex: colorHex,
			Day: day, StartMinute: start, EndMinute: end,
		},
		ColumnCount: 1,
	}
}

func TestDrawTimetable_BasicPixels(t *testing.T) {
	snap := testSnapshot(classBlock("c1", "#FF5733", 1, 540, 720))
	opts := Options{Width: 540, Height: 540, Density: 1}

	img, err := DrawTimetable(snap, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Dx(); got != 540 {
		t.Fatalf("width = %d", got)
	}

	// Background outside the grid is the dark theme background.
	pal := paletteFor(model.ThemeDark)
	if got := img.NRGBAAt(2, 2); got != pal.bg {
		t.Errorf("corner pixel = %v, want bg %v", got, pal.bg)
	}

	// Center of the block (well below the text lines) carries the class
	// color.
	g := computeGeometry(snap.Slots, opts)
	r, ok := g.blockRect(snap.Slots[0])
	if !ok {
		t.Fatal("block invisible")
	}
	cx := int((r.x0 + r.x1) / 2)
	cy := int(r.y1 - 5)
	want := color.NRGBA{R: 0xFF, G: 0x57, B: 0x33, A: 0xFF}
	if got := img.NRGBAAt(cx, cy); got != want {
		t.Errorf("block pixel at (%d,%d) = %v, want %v", cx, cy, got, want)
	}
}

func TestDrawTimetable_BadColorFallsBack(t *testing.T) {
	snap := testSnapshot(classBlock("c1", "not-a-color", 1, 540, 720))

	img, err := DrawTimetable(snap, Options{Width: 540, Height: 540, Density: 1})
	if err != nil {
		t.Fatal(err)
	}

	g := computeGeometry(snap.Slots, Options{Width: 540, Height: 540, Density: 1})
	r, _ := g.blockRect(snap.Slots[0])
	if got := img.NRGBAAt(int((r.x0+r.x1)/2), int(r.y1-5)); got != FallbackBlockColor {
		t.Errorf("bad-color block pixel = %v, want fallback gray", got)
	}
}

func TestDrawTimetable_ToleratesHostileSlots(t *testing.T) {
	// None of these may abort the render: weekend day, inverted interval,
	// column metadata out of range.
	snap := testSnapshot(
		classBlock("weekend", "#FF5733", 6, 540, 600),
		classBlock("inverted", "#FF5733", 1, 600, 540),
		model.LaidOutSlot{
			ClassSlot:   model.ClassSlot{ID: "wild", Title: "x", ColorHex: "#abc", Day: 2, StartMinute: 540, EndMinute: 600},
			ColumnIndex: 7, ColumnCount: 2,
		},
		classBlock("good", "#FF5733", 3, 540, 600),
	)

	if _, err := DrawTimetable(snap, Options{Width: 540, Height: 540, Density: 1}); err != nil {
		t.Fatalf("render aborted: %v", err)
	}
}

func TestDrawTimetable_NilAndEmptySnapshot(t *testing.T) {
	if _, err := DrawTimetable(nil, Options{}); err != nil {
		t.Fatalf("nil snapshot: %v", err)
	}
	if _, err := DrawTimetable(testSnapshot(), Options{Width: 200, Height: 200}); err != nil {
		t.Fatalf("empty snapshot: %v", err)
	}
}

func TestDrawTimetable_SnapshotThemeWins(t *testing.T) {
	snap := testSnapshot()
	snap.Theme = model.ThemeLight

	img, err := DrawTimetable(snap, Options{Width: 200, Height: 200, Theme: model.ThemeDark})
	if err != nil {
		t.Fatal(err)
	}
	if got := img.NRGBAAt(2, 2); got != paletteFor(model.ThemeLight).bg {
		t.Errorf("bg pixel = %v, want light background", got)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF5733", color.NRGBA{0xFF, 0x57, 0x33, 0xFF}, false},
		{"#abc", color.NRGBA{0xAA, 0xBB, 0xCC, 0xFF}, false},
		{"#000000", color.NRGBA{0, 0, 0, 0xFF}, false},
		{"", color.NRGBA{}, true},
		{"FF5733", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, true},
		{"#GGGGGG", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHexColor(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTodayList(t *testing.T) {
	monday := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	snap := testSnapshot(
		classBlock("mon-late", "#abc", 1, 780, 840),
		classBlock("tue", "#abc", 2, 540, 600),
		classBlock("mon-early", "#abc", 1, 540, 630),
	)

	got := TodayList(snap, monday)
	if len(got) != 2 {
		t.Fatalf("today list = %d slots, want 2", len(got))
	}
	if got[0].ID != "mon-early" || got[1].ID != "mon-late" {
		t.Errorf("order = [%s %s], want earliest first", got[0].ID, got[1].ID)
	}

	if lines := TodayLines(snap, monday); len(lines) != 2 ||
		lines[0] != "09:00 - 10:30  자료구조  공학관 204" {
		t.Errorf("lines = %q", lines)
	}

	if TodayList(nil, monday) != nil {
		t.Error("nil snapshot should yield nil")
	}
}
