package alarm

import (
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "knwidget/internal/log"
	"knwidget/internal/model"
	"knwidget/internal/store"
)

// SystemEvent is a host event that invalidates previously armed alarms.
type SystemEvent string

const (
	EventBootCompleted    SystemEvent = "boot_completed"
	EventTimeChanged      SystemEvent = "time_changed"
	EventTimezoneChanged  SystemEvent = "timezone_changed"
	EventMidnightRollover SystemEvent = "midnight_rollover"
)

// Scheduler keeps the invariant: for every slot in today's schedule whose
// trigger instant (start - offset) is still ahead, and only while
// notifications are enabled, exactly one pending alarm exists under the
// slot's stable key.
//
// The only consistency-preserving strategy against events the process
// cannot observe (boot, clock/timezone shifts) is full cancel-then-recreate,
// so RescheduleToday never diffs.
type Scheduler struct {
	st   *store.Store
	port Port
	loc  *time.Location
	now  func() time.Time

	mu         sync.Mutex
	cron       *cron.Cron
	rolloverID cron.EntryID
}

// New creates a Scheduler. now is injectable for tests; nil means
// time.Now.
func New(st *store.Store, port Port, loc *time.Location, now func() time.Time) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{st: st, port: port, loc: loc, now: now}
}

// Start arms the recurring midnight rollover and performs the initial
// reschedule (the daemon starting is equivalent to a boot event).
func (s *Scheduler) Start() {
	s.armRollover()
	s.RescheduleToday()
}

// Stop halts the rollover cron. Armed per-class alarms are left to the
// port owner to close.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		c.Stop()
	}
}

// RescheduleToday cancels every alarm for today's currently-known slots
// and re-arms those still ahead of now. Idempotent: running it twice with
// unchanged data yields the same armed key set.
func (s *Scheduler) RescheduleToday() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().In(s.loc)
	today := int(now.Weekday())

	var todaySlots []model.LaidOutSlot
	if snap, ok := s.st.LoadSnapshot(); ok {
		todaySlots = snap.SlotsForDay(today)
	}

	// Cancel-then-recreate; cancelling an unarmed key is a no-op.
	for _, sl := range todaySlots {
		s.port.Cancel(Key(sl.ID))
	}

	settings := s.st.LoadSettings()
	if !settings.Enabled {
		appLog.Info("alarms disabled, nothing armed", "cancelled", len(todaySlots))
		return
	}
	if len(todaySlots) == 0 {
		appLog.Info("no classes today, nothing armed", "day", today)
		return
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	armed := 0
	for _, sl := range todaySlots {
		trigger := midnight.Add(time.Duration(sl.StartMinute-settings.OffsetMinutes) * time.Minute)
		if !trigger.After(now) {
			appLog.Info("trigger already passed, slot skipped",
				"slot_id", sl.ID, "title", sl.Title, "trigger", trigger.Format(time.RFC3339))
			continue
		}

		n := Notice{
			Title:    sl.Title,
			Body:     sl.TimeDisplay + " | " + sl.Location,
			DeepLink: sl.DeepLink,
		}
		key := Key(sl.ID)

		err := s.port.ScheduleExact(key, trigger, n)
		if errors.Is(err, ErrExactUnavailable) {
			err = s.port.ScheduleInexact(key, trigger, n)
		}
		if err != nil {
			appLog.Error("failed to arm alarm", err, "key", key)
			continue
		}
		armed++
	}

	appLog.Info("today rescheduled",
		"day", today,
		"slots", len(todaySlots),
		"armed", armed,
		"offset_minutes", settings.OffsetMinutes,
	)
}

// OnSettingsChanged persists the new settings and reschedules.
func (s *Scheduler) OnSettingsChanged(enabled bool, offsetMinutes int) error {
	if offsetMinutes < 0 {
		offsetMinutes = 0
	}
	if err := s.st.SaveSettings(model.AlarmSettings{Enabled: enabled, OffsetMinutes: offsetMinutes}); err != nil {
		return err
	}
	s.RescheduleToday()
	return nil
}

// OnScheduleDataChanged reschedules after the snapshot was replaced.
func (s *Scheduler) OnScheduleDataChanged() {
	s.RescheduleToday()
}

// OnSystemEvent re-arms the rollover and recomputes today's alarms. Boot
// and clock/timezone changes can silently drop or invalidate armed alarms,
// so full recomputation is the only safe response.
func (s *Scheduler) OnSystemEvent(ev SystemEvent) {
	appLog.Info("system event", "event", string(ev))
	s.armRollover()
	s.RescheduleToday()
}

// CancelAll cancels the alarms of every slot in the current snapshot
// (logout path; call before clearing the store).
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.st.LoadSnapshot()
	if !ok {
		return
	}
	for _, sl := range snap.Slots {
		s.port.Cancel(Key(sl.ID))
	}
	appLog.Info("all class alarms cancelled", "count", len(snap.Slots))
}

// armRollover (re)creates the recurring 00:00 local-time cron that flips
// the scheduler to the new day. cron re-arms itself after each run, which
// satisfies the "re-arm for the following midnight" contract.
func (s *Scheduler) armRollover() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return // already armed; cron keeps firing daily
	}

	c := cron.New(cron.WithLocation(s.loc))
	id, err := c.AddFunc("0 0 * * *", func() {
		appLog.Info("midnight rollover")
		s.RescheduleToday()
	})
	if err != nil {
		appLog.Error("failed to arm midnight rollover", err)
		return
	}
	s.cron = c
	s.rolloverID = id
	c.Start()
}
