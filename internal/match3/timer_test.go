package match3

import (
	"testing"
	"time"
)

func TestTimerLifecycle(t *testing.T) {
	timer := NewTimer()
	if timer.State() != TimerIdle {
		t.Fatalf("expected idle state, got %v", timer.State())
	}

	timer.Setup(5 * time.Second)
	timer.Start()
	if timer.State() != TimerRunning {
		t.Fatalf("expected running state, got %v", timer.State())
	}

	timer.Update(2 * time.Second)
	if timer.TimeRemaining() != 3*time.Second {
		t.Fatalf("expected 3s remaining, got %v", timer.TimeRemaining())
	}
}

func TestTimerPauseStallsUpdate(t *testing.T) {
	timer := NewTimer()
	timer.Setup(5 * time.Second)
	timer.Start()
	timer.Pause()

	timer.Update(3 * time.Second)
	if timer.Elapsed() != 0 {
		t.Fatalf("expected no progress while paused, got elapsed %v", timer.Elapsed())
	}

	timer.Resume()
	timer.Update(1 * time.Second)
	if timer.Elapsed() != time.Second {
		t.Fatalf("expected 1s elapsed after resume, got %v", timer.Elapsed())
	}
}

func TestTimerFiresOnTimesUpExactlyOnce(t *testing.T) {
	timer := NewTimer()
	timer.Setup(2 * time.Second)
	timer.Start()

	fired := 0
	timer.OnTimesUp = func() { fired++ }

	timer.Update(3 * time.Second) // overshoot
	timer.Update(1 * time.Second) // stopped, should not refire

	if fired != 1 {
		t.Fatalf("expected OnTimesUp to fire exactly once, fired %d times", fired)
	}
	if timer.State() != TimerStopped {
		t.Fatalf("expected stopped state, got %v", timer.State())
	}
	if timer.TimeRemaining() != 0 {
		t.Fatalf("expected zero remaining after expiry, got %v", timer.TimeRemaining())
	}
}
