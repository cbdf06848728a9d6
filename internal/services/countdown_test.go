package services

import (
	"testing"
	"time"
)

func newTestCountdown() (*fakeScheduler, *Countdown) {
	fs := newFakeScheduler(time.Date(2026, 1, 2, 22, 0, 0, 0, time.UTC))
	return fs, NewCountdown(fs, fs.Now, time.Second)
}

func TestCountdownRemainingMonotone(t *testing.T) {
	fs, cd := newTestCountdown()
	var ticks []time.Duration
	cd.Start(90*time.Second, func(remaining time.Duration) {
		ticks = append(ticks, remaining)
	}, nil)

	prev := cd.Remaining()
	for i := 0; i < 90; i++ {
		fs.Advance(time.Second)
		cur := cd.Remaining()
		if cur > prev {
			t.Fatalf("remaining increased: %v after %v", cur, prev)
		}
		prev = cur
	}
	if prev != 0 {
		t.Fatalf("remaining after full run = %v, want 0", prev)
	}
	if len(ticks) == 0 || ticks[len(ticks)-1] != 0 {
		t.Fatalf("last tick remaining = %v, want exactly 0", ticks[len(ticks)-1])
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i] > ticks[i-1] {
			t.Fatalf("tick sequence not monotone at %d: %v", i, ticks)
		}
	}
}

func TestCountdownZeroFiresExactlyOnce(t *testing.T) {
	fs, cd := newTestCountdown()
	zeros := 0
	cd.Start(5*time.Second, nil, func() { zeros++ })
	fs.Advance(30 * time.Second)
	if zeros != 1 {
		t.Fatalf("zero callback fired %d times, want 1", zeros)
	}
	if cd.Remaining() != 0 {
		t.Fatalf("remaining after zero = %v, want 0", cd.Remaining())
	}
}

// A suspended process wakes up past the deadline; the next read must floor
// at zero instead of going negative.
func TestCountdownFloorsAfterDeadline(t *testing.T) {
	fs, cd := newTestCountdown()
	cd.Start(90*time.Second, nil, nil)
	fs.Advance(30 * time.Second)
	if got := cd.Remaining(); got != 60*time.Second {
		t.Fatalf("remaining = %v, want 60s", got)
	}

	// Jump the clock 61s forward without letting any timer fire.
	fs.now = fs.now.Add(61 * time.Second)
	if got := cd.Remaining(); got != 0 {
		t.Fatalf("remaining past deadline = %v, want 0", got)
	}
}

func TestCountdownCancelSuppressesZero(t *testing.T) {
	fs, cd := newTestCountdown()
	ticks, zeros := 0, 0
	cd.Start(10*time.Second, func(time.Duration) { ticks++ }, func() { zeros++ })
	fs.Advance(4 * time.Second)
	cd.Cancel()
	ticksAtCancel := ticks
	fs.Advance(60 * time.Second)
	if zeros != 0 {
		t.Fatal("zero callback fired after cancel")
	}
	if ticks != ticksAtCancel {
		t.Fatalf("ticks continued after cancel: %d then %d", ticksAtCancel, ticks)
	}
	if cd.Remaining() != 0 {
		t.Fatalf("cancelled countdown remaining = %v, want 0", cd.Remaining())
	}
}

func TestCountdownRestart(t *testing.T) {
	fs, cd := newTestCountdown()
	firstZeros, secondZeros := 0, 0
	cd.Start(10*time.Second, nil, func() { firstZeros++ })
	fs.Advance(4 * time.Second)

	cd.Start(20*time.Second, nil, func() { secondZeros++ })
	if got := cd.Remaining(); got != 20*time.Second {
		t.Fatalf("remaining after restart = %v, want 20s", got)
	}
	fs.Advance(30 * time.Second)
	if firstZeros != 0 {
		t.Fatal("first run's zero callback fired after restart")
	}
	if secondZeros != 1 {
		t.Fatalf("second run's zero callback fired %d times, want 1", secondZeros)
	}
}
