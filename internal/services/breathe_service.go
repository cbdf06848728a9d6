package services

import (
	"sync"
	"time"
)

// BreathMode names a guided-breathing pattern.
type BreathMode string

const (
	BreathRelax  BreathMode = "relax"  // 4-7-8
	BreathCalm   BreathMode = "calm"   // 4-4-4-4 box breathing
	BreathEnergy BreathMode = "energy" // quick 2-0-2
)

// BreathModeConfig is one pattern's per-phase durations in seconds.
type BreathModeConfig struct {
	Name      string `json:"name"`
	Inhale    int    `json:"inhale"`
	Hold      int    `json:"hold"`
	Exhale    int    `json:"exhale"`
	HoldAfter int    `json:"hold_after"`
}

var BreathModes = map[BreathMode]BreathModeConfig{
	BreathRelax:  {Name: "放松呼吸", Inhale: 4, Hold: 7, Exhale: 8},
	BreathCalm:   {Name: "平静呼吸", Inhale: 4, Hold: 4, Exhale: 4, HoldAfter: 4},
	BreathEnergy: {Name: "活力呼吸", Inhale: 2, Exhale: 2},
}

// BreathPhase is the position within a breathing cycle.
type BreathPhase string

const (
	BreathIdle      BreathPhase = "idle"
	BreathInhale    BreathPhase = "inhale"
	BreathHold      BreathPhase = "hold"
	BreathExhale    BreathPhase = "exhale"
	BreathHoldAfter BreathPhase = "holdAfter"
	BreathComplete  BreathPhase = "complete"
)

// totalBreathCycles is how many full cycles earn the reward.
const totalBreathCycles = 3

// BreathLedger credits a finished exercise.
type BreathLedger interface {
	GrantBreathingReward() error
}

// BreatheService runs the guided breathing exercise. One cake is credited
// exactly once, when all cycles complete; stopping mid-cycle grants
// nothing. A generation counter keeps callbacks from a stopped run from
// driving a later one.
type BreatheService struct {
	mu        sync.Mutex
	scheduler Scheduler
	ledger    BreathLedger

	mode   BreathMode
	phase  BreathPhase
	cycle  int
	gen    int
	timer  ScheduledTimer
	active bool
}

func NewBreatheService(scheduler Scheduler, ledger BreathLedger) *BreatheService {
	return &BreatheService{scheduler: scheduler, ledger: ledger, phase: BreathIdle}
}

// Start begins the exercise in the given mode.
func (s *BreatheService) Start(mode BreathMode) error {
	cfg, ok := BreathModes[mode]
	if !ok {
		return NewInvalidError("unknown breathing mode")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.mode = mode
	s.cycle = 0
	s.active = true
	s.gen++
	s.enterPhaseLocked(BreathInhale, cfg.Inhale)
	return nil
}

// Stop abandons the exercise without reward.
func (s *BreatheService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// State reports the current phase and completed cycle count.
func (s *BreatheService) State() (BreathMode, BreathPhase, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, s.phase, s.cycle
}

func (s *BreatheService) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.active = false
	s.phase = BreathIdle
	s.cycle = 0
	s.gen++
}

func (s *BreatheService) enterPhaseLocked(phase BreathPhase, seconds int) {
	s.phase = phase
	gen := s.gen
	s.timer = s.scheduler.AfterFunc(time.Duration(seconds)*time.Second, func() {
		s.advance(gen)
	})
}

func (s *BreatheService) advance(gen int) {
	s.mu.Lock()
	if !s.active || gen != s.gen {
		s.mu.Unlock()
		return
	}
	cfg := BreathModes[s.mode]
	var grant bool
	switch s.phase {
	case BreathInhale:
		if cfg.Hold > 0 {
			s.enterPhaseLocked(BreathHold, cfg.Hold)
		} else {
			s.enterPhaseLocked(BreathExhale, cfg.Exhale)
		}
	case BreathHold:
		s.enterPhaseLocked(BreathExhale, cfg.Exhale)
	case BreathExhale:
		if cfg.HoldAfter > 0 {
			s.enterPhaseLocked(BreathHoldAfter, cfg.HoldAfter)
		} else {
			grant = s.finishCycleLocked(cfg)
		}
	case BreathHoldAfter:
		grant = s.finishCycleLocked(cfg)
	}
	s.mu.Unlock()
	if grant {
		_ = s.ledger.GrantBreathingReward()
	}
}

// finishCycleLocked closes one cycle; on the last it completes the
// exercise and reports that the reward is due.
func (s *BreatheService) finishCycleLocked(cfg BreathModeConfig) bool {
	s.cycle++
	if s.cycle >= totalBreathCycles {
		s.phase = BreathComplete
		s.active = false
		s.timer = nil
		s.gen++
		return true
	}
	s.enterPhaseLocked(BreathInhale, cfg.Inhale)
	return false
}
