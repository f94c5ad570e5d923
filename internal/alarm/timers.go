package alarm

import (
	"context"
	"sync"
	"time"

	appLog "knwidget/internal/log"
)

// TimerPort is the in-process Port implementation: one time.Timer per
// armed key, delivering through a Notifier when it fires. Exact scheduling
// can be administratively disabled, which makes ScheduleExact return
// ErrExactUnavailable so the scheduler exercises its fallback path.
type TimerPort struct {
	notifier   Notifier
	allowExact bool

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewTimerPort creates a TimerPort delivering through notifier.
func NewTimerPort(notifier Notifier, allowExact bool) *TimerPort {
	return &TimerPort{
		notifier:   notifier,
		allowExact: allowExact,
		timers:     make(map[string]*time.Timer),
	}
}

func (p *TimerPort) ScheduleExact(key string, at time.Time, n Notice) error {
	if !p.allowExact {
		return ErrExactUnavailable
	}
	p.arm(key, at, n)
	return nil
}

// ScheduleInexact defers firing to the next minute boundary at or after
// the requested instant.
func (p *TimerPort) ScheduleInexact(key string, at time.Time, n Notice) error {
	coarse := at.Truncate(time.Minute)
	if coarse.Before(at) {
		coarse = coarse.Add(time.Minute)
	}
	p.arm(key, coarse, n)
	return nil
}

func (p *TimerPort) Cancel(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.timers[key]; ok {
		t.Stop()
		delete(p.timers, key)
	}
}

// ArmedKeys returns the currently armed alarm keys (diagnostics and tests).
func (p *TimerPort) ArmedKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.timers))
	for k := range p.timers {
		keys = append(keys, k)
	}
	return keys
}

// Close cancels every armed alarm.
func (p *TimerPort) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, t := range p.timers {
		t.Stop()
		delete(p.timers, k)
	}
	p.closed = true
}

// arm replaces any existing timer for key.
func (p *TimerPort) arm(key string, at time.Time, n Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if t, ok := p.timers[key]; ok {
		t.Stop()
	}
	p.timers[key] = time.AfterFunc(time.Until(at), func() {
		p.fire(key, n)
	})
}

func (p *TimerPort) fire(key string, n Notice) {
	p.mu.Lock()
	delete(p.timers, key)
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := p.notifier.Notify(ctx, n); err != nil {
		appLog.Error("alarm delivery failed", err, "key", key, "title", n.Title)
		return
	}
	appLog.Info("alarm delivered", "key", key, "title", n.Title)
}
