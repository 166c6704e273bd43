package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

const dispatchHost = "feed.api.example"

func TestNew(t *testing.T) {
	l := New(time.Second)
	if l == nil {
		t.Fatal("New() returned nil")
	}
	if l.hosts == nil {
		t.Fatal("hosts map not initialized")
	}
	if l.minInterval != time.Second {
		t.Errorf("minInterval = %v, want %v", l.minInterval, time.Second)
	}
}

func TestAllow(t *testing.T) {
	t.Run("first request passes", func(t *testing.T) {
		l := New(100 * time.Millisecond)
		if !l.Allow(dispatchHost) {
			t.Error("first request to a host should pass")
		}
	})

	t.Run("request inside interval is denied", func(t *testing.T) {
		l := New(100 * time.Millisecond)
		l.Allow(dispatchHost)
		if l.Allow(dispatchHost) {
			t.Error("second request inside the interval should be denied")
		}
	})

	t.Run("request after interval passes", func(t *testing.T) {
		l := New(50 * time.Millisecond)
		l.Allow(dispatchHost)
		time.Sleep(60 * time.Millisecond)
		if !l.Allow(dispatchHost) {
			t.Error("request after the interval should pass")
		}
	})

	t.Run("hosts are tracked independently", func(t *testing.T) {
		l := New(100 * time.Millisecond)
		l.Allow(dispatchHost)
		if !l.Allow("cdn.example") {
			t.Error("a different host should not share the interval")
		}
	})
}

func TestAllow_DeniedRequestKeepsTimestamp(t *testing.T) {
	l := New(50 * time.Millisecond)

	l.Allow(dispatchHost)
	time.Sleep(30 * time.Millisecond)
	l.Allow(dispatchHost) // denied, must not restart the interval
	time.Sleep(30 * time.Millisecond)

	if !l.Allow(dispatchHost) {
		t.Error("the interval counts from the allowed request, not the denied one")
	}
}

func TestWait(t *testing.T) {
	t.Run("first request returns immediately", func(t *testing.T) {
		l := New(50 * time.Millisecond)
		start := time.Now()
		l.Wait(dispatchHost)
		if time.Since(start) >= 50*time.Millisecond {
			t.Error("first Wait() should not sleep")
		}
	})

	t.Run("second request sleeps out the interval", func(t *testing.T) {
		l := New(50 * time.Millisecond)
		l.Wait(dispatchHost)
		start := time.Now()
		l.Wait(dispatchHost)
		if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
			t.Errorf("Wait() returned after %v, want close to the 50ms interval", elapsed)
		}
	})

	t.Run("different host returns immediately", func(t *testing.T) {
		l := New(100 * time.Millisecond)
		l.Wait(dispatchHost)
		start := time.Now()
		l.Wait("cdn.example")
		if time.Since(start) >= 50*time.Millisecond {
			t.Error("Wait() on a fresh host should not sleep")
		}
	})
}

func TestWait_SleepsOnlyTheRemainder(t *testing.T) {
	l := New(100 * time.Millisecond)

	l.Wait(dispatchHost)
	time.Sleep(30 * time.Millisecond)

	start := time.Now()
	l.Wait(dispatchHost)
	elapsed := time.Since(start)

	if elapsed < 60*time.Millisecond || elapsed > 90*time.Millisecond {
		t.Errorf("Wait() slept %v, want roughly the remaining 70ms", elapsed)
	}
}

func TestReset(t *testing.T) {
	l := New(100 * time.Millisecond)

	l.Allow(dispatchHost)
	if l.Allow(dispatchHost) {
		t.Fatal("request inside the interval should be denied before reset")
	}

	l.Reset(dispatchHost)

	if !l.Allow(dispatchHost) {
		t.Error("Reset() should clear the host's interval")
	}

	// Resetting a host never seen must not panic.
	l.Reset("never-seen.example")
}

func TestResetAll(t *testing.T) {
	l := New(100 * time.Millisecond)
	l.Allow(dispatchHost)
	l.Allow("cdn.example")

	l.ResetAll()

	if !l.Allow(dispatchHost) || !l.Allow("cdn.example") {
		t.Error("ResetAll() should clear every host")
	}
}

func TestLimiter_ZeroIntervalNeverDenies(t *testing.T) {
	l := New(0)
	for i := 0; i < 10; i++ {
		if !l.Allow(dispatchHost) {
			t.Fatalf("request %d denied with a zero interval", i)
		}
	}
}

func TestLimiter_ConcurrentUse(t *testing.T) {
	l := New(10 * time.Millisecond)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				l.Allow(dispatchHost)
				l.Reset(dispatchHost)
			}
		}()
	}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Wait(fmt.Sprintf("shard-%d.example", n))
		}(i)
	}

	wg.Wait()
}
