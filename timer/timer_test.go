package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleOneShot(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	fired := make(chan struct{})
	m.Schedule(50*time.Millisecond, 0, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("one-shot task never fired")
	}
}

func TestScheduleRepeating(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var count int32
	m.Schedule(50*time.Millisecond, 150*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	})

	time.Sleep(600 * time.Millisecond)
	if got := atomic.LoadInt32(&count); got < 2 {
		t.Errorf("repeating task fired %d times, want at least 2", got)
	}
}

func TestCancel(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var count int32
	id := m.Schedule(300*time.Millisecond, 0, func() {
		atomic.AddInt32(&count, 1)
	})
	m.Cancel(id)

	time.Sleep(600 * time.Millisecond)
	if got := atomic.LoadInt32(&count); got != 0 {
		t.Errorf("cancelled task fired %d times", got)
	}
}

func TestStopHaltsProcessing(t *testing.T) {
	m := NewManager()

	var count int32
	m.Schedule(300*time.Millisecond, 0, func() {
		atomic.AddInt32(&count, 1)
	})
	m.Stop()
	m.Stop() // idempotent

	time.Sleep(600 * time.Millisecond)
	if got := atomic.LoadInt32(&count); got != 0 {
		t.Errorf("task fired %d times after Stop", got)
	}
}
