package services

import (
	"context"
	"sync"
	"time"
)

// PauseState is the 90-second pause mechanic's state.
type PauseState string

const (
	PauseIdle       PauseState = "IDLE"
	PauseActive     PauseState = "ACTIVE_90S"
	PauseReflection PauseState = "REFLECTION"
)

// HapticSink receives fire-and-forget pulses during the pause. Errors are
// swallowed: an unsupported platform must never interrupt the mechanic.
type HapticSink interface {
	Pulse() error
}

// NoopHaptics is the sink used when the platform offers none.
type NoopHaptics struct{}

func (NoopHaptics) Pulse() error { return nil }

// ReflectionSource supplies the prompt shown after the pause completes.
type ReflectionSource interface {
	Reflection(ctx context.Context) (string, error)
}

const (
	pauseDuration  = 90 * time.Second
	hapticInterval = 5 * time.Second
)

// PauseService runs the urge-surfing pause: a 90-second wall-clock
// countdown with a haptic pulse every five seconds, ending in a reflection
// prompt. Cancellable at any point; cancel silences everything.
type PauseService struct {
	mu         sync.Mutex
	state      PauseState
	countdown  *Countdown
	haptics    HapticSink
	reflection ReflectionSource
	prompt     string
	pulses     int
}

func NewPauseService(scheduler Scheduler, now func() time.Time, haptics HapticSink, reflection ReflectionSource) *PauseService {
	if haptics == nil {
		haptics = NoopHaptics{}
	}
	return &PauseService{
		state:      PauseIdle,
		countdown:  NewCountdown(scheduler, now, time.Second),
		haptics:    haptics,
		reflection: reflection,
	}
}

// Activate starts the pause. Re-activating restarts the countdown.
func (s *PauseService) Activate() {
	s.mu.Lock()
	s.state = PauseActive
	s.prompt = ""
	s.pulses = 0
	s.mu.Unlock()
	s.countdown.Start(pauseDuration, s.onTick, s.onZero)
}

func (s *PauseService) onTick(remaining time.Duration) {
	s.mu.Lock()
	if s.state != PauseActive {
		s.mu.Unlock()
		return
	}
	elapsed := pauseDuration - remaining
	due := int(elapsed / hapticInterval)
	fire := due - s.pulses
	if fire > 0 {
		s.pulses = due
	}
	s.mu.Unlock()
	for ; fire > 0; fire-- {
		_ = s.haptics.Pulse() // best effort
	}
}

func (s *PauseService) onZero() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	prompt, err := s.reflection.Reflection(ctx)
	cancel()
	if err != nil || prompt == "" {
		prompt = defaultReflection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != PauseActive {
		return // reset raced the zero callback
	}
	s.state = PauseReflection
	s.prompt = prompt
}

// State reports the current phase, the remaining time while active, and the
// reflection prompt once reached.
func (s *PauseService) State() (PauseState, time.Duration, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := time.Duration(0)
	if s.state == PauseActive {
		remaining = s.countdown.Remaining()
	}
	return s.state, remaining, s.prompt
}

// Reset returns to idle, stopping all further ticks and pulses.
func (s *PauseService) Reset() {
	s.countdown.Cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = PauseIdle
	s.prompt = ""
	s.pulses = 0
}
