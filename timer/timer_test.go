package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerManager_OneShot(t *testing.T) {
	m := NewTimerManager()
	defer m.Stop()

	var count atomic.Int32
	fired := make(chan struct{}, 1)
	m.AddTimer(10*time.Millisecond, 0, func() {
		count.Add(1)
		fired <- struct{}{}
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Timer did not fire")
	}

	time.Sleep(300 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Errorf("One-shot timer should run once, ran %d times", got)
	}
}

func TestTimerManager_Periodic(t *testing.T) {
	m := NewTimerManager()
	defer m.Stop()

	var count atomic.Int32
	id := m.AddTimer(0, 50*time.Millisecond, func() { count.Add(1) })

	deadline := time.Now().Add(3 * time.Second)
	for count.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if count.Load() < 3 {
		t.Fatalf("Expected at least 3 runs, got %d", count.Load())
	}

	m.RemoveTimer(id)
	// a run already handed to its goroutine may still land
	time.Sleep(150 * time.Millisecond)
	settled := count.Load()
	time.Sleep(300 * time.Millisecond)
	if got := count.Load(); got != settled {
		t.Errorf("Removed periodic timer kept running: %d -> %d", settled, got)
	}
}

func TestTimerManager_RemoveBeforeFire(t *testing.T) {
	m := NewTimerManager()
	defer m.Stop()

	var fired atomic.Bool
	id := m.AddTimer(300*time.Millisecond, 0, func() { fired.Store(true) })
	m.RemoveTimer(id)

	time.Sleep(500 * time.Millisecond)
	if fired.Load() {
		t.Error("Removed timer must not fire")
	}
}

func TestTimerManager_Stop(t *testing.T) {
	m := NewTimerManager()
	var fired atomic.Bool
	m.AddTimer(200*time.Millisecond, 0, func() { fired.Store(true) })
	m.Stop()
	m.Stop()

	time.Sleep(400 * time.Millisecond)
	if fired.Load() {
		t.Error("Stopped manager must not run callbacks")
	}
}
