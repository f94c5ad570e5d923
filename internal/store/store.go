package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	appLog "knwidget/internal/log"
	"knwidget/internal/model"
)

// Well-known blob file names under the data directory.
const (
	SnapshotFile = "schedule.json"
	SettingsFile = "settings.json"
)

// Store persists the widget snapshot and the alarm settings as two
// independent JSON blobs. Every write replaces the whole blob atomically
// (temp file + rename), so concurrent readers never observe a torn
// snapshot. A corrupt or unreadable blob reads as absent, never as an
// error surfaced to callers.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// New creates a Store rooted at dir. The directory is created lazily on
// first save.
func New(dir string) *Store {
	if dir == "" {
		dir = "./var"
	}
	return &Store{dir: dir}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// SaveSnapshot atomically replaces the persisted widget snapshot.
func (s *Store) SaveSnapshot(snap *model.WidgetSnapshot) error {
	if snap == nil {
		return errors.New("store: snapshot is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeBlob(SnapshotFile, snap)
}

// LoadSnapshot returns the persisted snapshot, or (nil, false) when no
// snapshot exists or the blob does not parse.
func (s *Store) LoadSnapshot() (*model.WidgetSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap model.WidgetSnapshot
	if !s.readBlob(SnapshotFile, &snap) {
		return nil, false
	}
	return &snap, true
}

// ClearSnapshot removes the persisted snapshot (logout). Removing an
// absent snapshot is a no-op.
func (s *Store) ClearSnapshot() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.dir, SnapshotFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// SaveSettings atomically replaces the persisted alarm settings.
func (s *Store) SaveSettings(st model.AlarmSettings) error {
	if st.OffsetMinutes < 0 {
		st.OffsetMinutes = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeBlob(SettingsFile, st)
}

// LoadSettings returns the persisted alarm settings, falling back to the
// defaults when absent or corrupt.
func (s *Store) LoadSettings() model.AlarmSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st model.AlarmSettings
	if !s.readBlob(SettingsFile, &st) {
		return model.DefaultAlarmSettings()
	}
	if st.OffsetMinutes < 0 {
		st.OffsetMinutes = 0
	}
	return st
}

// writeBlob marshals v and writes it under name via temp file + rename.
// Caller holds the write lock.
func (s *Store) writeBlob(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, filepath.Join(s.dir, name))
}

// readBlob loads name into v. Returns false (absent) for missing files and
// for unparseable content; parse failures are logged. Caller holds a read
// lock.
func (s *Store) readBlob(name string, v any) bool {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			appLog.Error("store: read failed, treating as absent", err, "blob", name)
		}
		return false
	}
	if len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		appLog.Error("store: corrupt blob, treating as absent", err, "blob", name)
		return false
	}
	return true
}
