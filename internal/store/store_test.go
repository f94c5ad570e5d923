package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"knwidget/internal/model"
)

func sampleSnapshot() *model.WidgetSnapshot {
	return &model.WidgetSnapshot{
		GeneratedAtDisplay: "업데이트: 오전 9:00",
		DateDisplay:        "3월 3일 (월)",
		Theme:              model.ThemeDark,
		Slots: []model.LaidOutSlot{{
			ClassSlot: model.ClassSlot{
				ID: "c1", Title: "자료구조", Location: "공학관 204",
				TimeDisplay: "09:00 - 10:30", ColorHex: "#FF5733",
				DeepLink: "kangnaeng://class/c1",
				Day:      1, StartMinute: 540, EndMinute: 630,
			},
			ColumnIndex: 0, ColumnCount: 1,
		}},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New(t.TempDir())

	if _, ok := s.LoadSnapshot(); ok {
		t.Fatal("fresh store should have no snapshot")
	}

	want := sampleSnapshot()
	if err := s.SaveSnapshot(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok := s.LoadSnapshot()
	if !ok {
		t.Fatal("snapshot missing after save")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestSaveSnapshot_NilRejected(t *testing.T) {
	s := New(t.TempDir())
	if err := s.SaveSnapshot(nil); err == nil {
		t.Error("expected error for nil snapshot")
	}
}

func TestClearSnapshot(t *testing.T) {
	s := New(t.TempDir())

	// Clearing an absent snapshot is a no-op.
	if err := s.ClearSnapshot(); err != nil {
		t.Fatalf("clear on empty store: %v", err)
	}

	if err := s.SaveSnapshot(sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.ClearSnapshot(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := s.LoadSnapshot(); ok {
		t.Error("snapshot still readable after clear")
	}
}

func TestLoadSnapshot_CorruptReadsAsAbsent(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if err := os.WriteFile(filepath.Join(dir, SnapshotFile), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.LoadSnapshot(); ok {
		t.Error("corrupt snapshot should read as absent")
	}

	// A later save recovers the blob.
	if err := s.SaveSnapshot(sampleSnapshot()); err != nil {
		t.Fatalf("save after corruption: %v", err)
	}
	if _, ok := s.LoadSnapshot(); !ok {
		t.Error("snapshot unreadable after recovery save")
	}
}

func TestSettingsRoundTripAndDefaults(t *testing.T) {
	s := New(t.TempDir())

	got := s.LoadSettings()
	if !reflect.DeepEqual(got, model.DefaultAlarmSettings()) {
		t.Errorf("fresh store settings = %+v, want defaults", got)
	}

	want := model.AlarmSettings{Enabled: true, OffsetMinutes: 20}
	if err := s.SaveSettings(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := s.LoadSettings(); got != want {
		t.Errorf("settings = %+v, want %+v", got, want)
	}
}

func TestSaveSettings_ClampsNegativeOffset(t *testing.T) {
	s := New(t.TempDir())

	if err := s.SaveSettings(model.AlarmSettings{Enabled: true, OffsetMinutes: -5}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := s.LoadSettings(); got.OffsetMinutes != 0 {
		t.Errorf("offset = %d, want clamped to 0", got.OffsetMinutes)
	}
}

func TestStore_CreatesDataDirOnFirstSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "var")
	s := New(dir)

	if err := s.SaveSettings(model.AlarmSettings{Enabled: true, OffsetMinutes: 10}); err != nil {
		t.Fatalf("save into missing dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, SettingsFile)); err != nil {
		t.Errorf("settings file not created: %v", err)
	}
}
