package services

import (
	"context"
	"sort"
	"time"
)

// fakeScheduler drives deferred callbacks from a manual clock so tests can
// step through timed transitions without real waits. Single-goroutine use
// only, which is how every test here runs.
type fakeScheduler struct {
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func newFakeScheduler(start time.Time) *fakeScheduler {
	return &fakeScheduler{now: start}
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) ScheduledTimer {
	s.seq++
	t := &fakeTimer{at: s.now.Add(d), seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Now() time.Time { return s.now }

// Advance moves the clock forward, firing due timers in deadline order.
// Callbacks may schedule new timers; those fire too if they fall due.
func (s *fakeScheduler) Advance(d time.Duration) {
	target := s.now.Add(d)
	for {
		t := s.nextDue(target)
		if t == nil {
			break
		}
		s.now = t.at
		t.fired = true
		t.f()
	}
	s.now = target
}

func (s *fakeScheduler) nextDue(target time.Time) *fakeTimer {
	pending := make([]*fakeTimer, 0, len(s.timers))
	for _, t := range s.timers {
		if !t.fired && !t.stopped && !t.at.After(target) {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].at.Equal(pending[j].at) {
			return pending[i].seq < pending[j].seq
		}
		return pending[i].at.Before(pending[j].at)
	})
	return pending[0]
}

// stubProfileStore records persisted snapshots; putErr simulates a store
// that cannot write.
type stubProfileStore struct {
	profile *CompanionProfile
	moods   []*MoodEntry
	putErr  error
	puts    int
	deletes int
}

func (s *stubProfileStore) GetProfile() (*CompanionProfile, error) {
	if s.profile == nil {
		return nil, nil
	}
	copy := *s.profile
	return &copy, nil
}

func (s *stubProfileStore) PutProfile(p *CompanionProfile) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	copy := *p
	s.profile = &copy
	return nil
}

func (s *stubProfileStore) DeleteProfile() error {
	s.deletes++
	s.profile = nil
	return nil
}

func (s *stubProfileStore) ClearMoodEntries() error {
	s.moods = nil
	return nil
}

func (s *stubProfileStore) AddMoodEntry(e *MoodEntry) error {
	copy := *e
	s.moods = append(s.moods, &copy)
	return nil
}

func (s *stubProfileStore) ListMoodEntries() ([]*MoodEntry, error) {
	return append([]*MoodEntry(nil), s.moods...), nil
}

// stubLedger counts reward grants.
type stubLedger struct {
	sessionRewards int
	breathRewards  int
	successes      int
}

func (l *stubLedger) GrantSessionReward() error {
	l.sessionRewards++
	l.successes++
	return nil
}

func (l *stubLedger) GrantBreathingReward() error {
	l.breathRewards++
	return nil
}

func (l *stubLedger) SuccessCount() int { return l.successes }

// failingProvider always errors, standing in for an unreachable backend.
type failingProvider struct{ calls int }

func (p *failingProvider) OpeningLines(context.Context, HourBucket) ([]DialogueLine, error) {
	p.calls++
	return nil, NewUnavailableError("backend down")
}

func (p *failingProvider) Reply(context.Context, string) ([]DialogueLine, error) {
	p.calls++
	return nil, NewUnavailableError("backend down")
}
