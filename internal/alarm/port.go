// Package alarm maintains class-start wake alarms derived from the
// persisted widget snapshot. The scheduling substrate is abstracted behind
// Port so the policy stays a pure function of (snapshot, settings, now)
// and can be exercised without real timers.
package alarm

import (
	"context"
	"errors"
	"time"
)

// ErrExactUnavailable is returned by a Port whose host denies precise wake
// alarms. Callers fall back to inexact scheduling instead of failing.
var ErrExactUnavailable = errors.New("alarm: exact scheduling unavailable")

// Notice is the payload delivered when an armed alarm fires.
type Notice struct {
	Title    string `json:"title"`
	Body     string `json:"body"` // "09:00 - 10:30 | 공학관 204"
	DeepLink string `json:"deep_link"`
}

// Notifier delivers a fired notice to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// Port is the host alarm subsystem. Scheduling an already-armed key
// replaces it; cancelling an unknown key is a no-op. Implementations must
// be safe for concurrent use.
type Port interface {
	// ScheduleExact arms a precise wake alarm for key at the given instant.
	// Returns ErrExactUnavailable when the host denies the privilege.
	ScheduleExact(key string, at time.Time, n Notice) error

	// ScheduleInexact arms a coarse alarm; delivery may be deferred to the
	// host's convenience (here: the surrounding minute boundary).
	ScheduleInexact(key string, at time.Time, n Notice) error

	Cancel(key string)
}

// Key derives the stable alarm identifier for a class slot. Using the slot
// id keeps re-arming idempotent: saving an unchanged schedule replaces
// alarms in place instead of accumulating duplicates.
func Key(slotID string) string {
	return "class-" + slotID
}
