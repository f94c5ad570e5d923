package alarm

import (
	"context"
	"errors"
	"testing"
	"time"
)

// chanNotifier forwards delivered notices to a channel.
type chanNotifier struct {
	ch chan Notice
}

func (n *chanNotifier) Notify(ctx context.Context, notice Notice) error {
	n.ch <- notice
	return nil
}

func TestTimerPort_ExactDenied(t *testing.T) {
	p := NewTimerPort(&chanNotifier{ch: make(chan Notice, 1)}, false)
	defer p.Close()

	err := p.ScheduleExact("k", time.Now().Add(time.Hour), Notice{})
	if !errors.Is(err, ErrExactUnavailable) {
		t.Errorf("err = %v, want ErrExactUnavailable", err)
	}
	if len(p.ArmedKeys()) != 0 {
		t.Error("denied exact schedule must not arm a timer")
	}
}

func TestTimerPort_ArmReplaceCancel(t *testing.T) {
	p := NewTimerPort(&chanNotifier{ch: make(chan Notice, 1)}, true)
	defer p.Close()

	far := time.Now().Add(time.Hour)
	if err := p.ScheduleExact("k", far, Notice{Title: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := p.ScheduleExact("k", far, Notice{Title: "second"}); err != nil {
		t.Fatal(err)
	}
	if keys := p.ArmedKeys(); len(keys) != 1 || keys[0] != "k" {
		t.Errorf("armed = %v, want exactly [k]", keys)
	}

	p.Cancel("k")
	p.Cancel("k") // unknown key is a no-op
	if len(p.ArmedKeys()) != 0 {
		t.Error("key still armed after cancel")
	}
}

func TestTimerPort_FiresAndDelivers(t *testing.T) {
	n := &chanNotifier{ch: make(chan Notice, 1)}
	p := NewTimerPort(n, true)
	defer p.Close()

	want := Notice{Title: "자료구조", Body: "09:00 - 10:30 | 공학관 204", DeepLink: "kangnaeng://class/c1"}
	if err := p.ScheduleExact("k", time.Now().Add(20*time.Millisecond), want); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-n.ch:
		if got != want {
			t.Errorf("delivered %+v, want %+v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("alarm never fired")
	}

	if len(p.ArmedKeys()) != 0 {
		t.Error("fired key should no longer be armed")
	}
}

func TestTimerPort_InexactRoundsUpToMinute(t *testing.T) {
	p := NewTimerPort(&chanNotifier{ch: make(chan Notice, 1)}, false)
	defer p.Close()

	// Far in the future so the timer cannot fire during the test; we only
	// check that scheduling succeeds where exact was denied.
	if err := p.ScheduleInexact("k", time.Now().Add(time.Hour).Add(30*time.Second), Notice{}); err != nil {
		t.Fatal(err)
	}
	if keys := p.ArmedKeys(); len(keys) != 1 {
		t.Errorf("armed = %v, want one key", keys)
	}
}

func TestTimerPort_ClosedIgnoresArm(t *testing.T) {
	p := NewTimerPort(&chanNotifier{ch: make(chan Notice, 1)}, true)
	p.Close()

	if err := p.ScheduleExact("k", time.Now().Add(time.Hour), Notice{}); err != nil {
		t.Fatal(err)
	}
	if len(p.ArmedKeys()) != 0 {
		t.Error("closed port must not arm timers")
	}
}
