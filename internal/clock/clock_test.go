package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeAfterFuncFiresOnAdvance(t *testing.T) {
	c := Fake(epoch)
	fired := 0
	c.AfterFunc(time.Second, func() { fired++ })

	c.Advance(999 * time.Millisecond)
	if fired != 0 {
		t.Fatalf("fired early: %d", fired)
	}

	c.Advance(time.Millisecond)
	if fired != 1 {
		t.Fatalf("expected 1 fire, got %d", fired)
	}

	c.Advance(time.Hour)
	if fired != 1 {
		t.Fatalf("one-shot timer fired again: %d", fired)
	}
}

func TestFakeStop(t *testing.T) {
	c := Fake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Fatal("Stop on pending timer should return true")
	}
	if timer.Stop() {
		t.Fatal("second Stop should return false")
	}

	c.Advance(2 * time.Second)
	if fired {
		t.Fatal("stopped timer fired")
	}
	if c.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", c.Pending())
	}
}

func TestFakeDeadlineOrderAndNow(t *testing.T) {
	c := Fake(epoch)
	var order []string
	var seen []time.Time
	c.AfterFunc(3*time.Second, func() { order = append(order, "c"); seen = append(seen, c.Now()) })
	c.AfterFunc(1*time.Second, func() { order = append(order, "a"); seen = append(seen, c.Now()) })
	c.AfterFunc(2*time.Second, func() { order = append(order, "b"); seen = append(seen, c.Now()) })

	c.Advance(5 * time.Second)

	if got := len(order); got != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("unexpected order: %v", order)
	}
	for i, ts := range seen {
		want := epoch.Add(time.Duration(i+1) * time.Second)
		if !ts.Equal(want) {
			t.Errorf("callback %d saw %v, want %v", i, ts, want)
		}
	}
	if !c.Now().Equal(epoch.Add(5 * time.Second)) {
		t.Errorf("clock at %v after advance", c.Now())
	}
}

func TestFakeCallbackMayRegisterTimer(t *testing.T) {
	c := Fake(epoch)
	fired := 0
	c.AfterFunc(time.Second, func() {
		fired++
		c.AfterFunc(time.Second, func() { fired++ })
	})

	c.Advance(3 * time.Second)
	if fired != 2 {
		t.Fatalf("expected chained timer to fire, got %d", fired)
	}
}
