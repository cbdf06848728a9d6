package services

import (
	"log"
	"math/rand"
	"sync"
	"time"
)

// ProfileStore is the persistence slice the profile service needs. The
// profile is a single keyed snapshot; absence is "no profile yet", not an
// error.
type ProfileStore interface {
	GetProfile() (*CompanionProfile, error)
	PutProfile(p *CompanionProfile) error
	DeleteProfile() error
	ClearMoodEntries() error
}

// ProfileService owns the companion profile and is the reward ledger: cake
// and success counters are mutated here and nowhere else. The in-memory
// copy is authoritative for the process lifetime; persistence failures are
// logged and retried on the next successful write.
type ProfileService struct {
	mu         sync.Mutex
	store      ProfileStore
	profile    *CompanionProfile
	now        func() time.Time
	rng        *rand.Rand
	resetHooks []func()
}

func NewProfileService(store ProfileStore, rng *rand.Rand) *ProfileService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ProfileService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		rng:   rng,
	}
}

// Load reads the persisted snapshot once at startup and applies a daily
// reset if the calendar date moved while the app was closed.
func (s *ProfileService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.store.GetProfile()
	if err != nil {
		return err
	}
	s.profile = p
	if s.profile != nil {
		s.resetDailyLocked()
	}
	return nil
}

// Get returns a copy of the current profile, or nil when onboarding has not
// completed yet.
func (s *ProfileService) Get() *CompanionProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	copy := *s.profile
	copy.Traits = append([]string(nil), s.profile.Traits...)
	return &copy
}

// PutProfile installs a freshly onboarded profile, replacing any previous
// one. Satisfies the matching facade's ProfileWriter.
func (s *ProfileService) PutProfile(p *CompanionProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	s.persistLocked()
	return nil
}

// GrantSessionReward credits one completed SOS session: +1 cake, +1 success
// counter. The session machine's resolution exit is the only call site.
func (s *ProfileService) GrantSessionReward() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return NewNotFoundError("no companion profile")
	}
	s.profile.CakeCount++
	s.profile.SOSSuccessCount++
	s.persistLocked()
	return nil
}

// GrantDailyTask credits a daily task once per calendar day. Repeat calls
// on the same day are a no-op; the returned bool reports whether the reward
// was credited by this call.
func (s *ProfileService) GrantDailyTask(task TaskID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return false, NewNotFoundError("no companion profile")
	}
	s.resetDailyLocked()
	var done *bool
	switch task {
	case TaskMindfulness:
		done = &s.profile.DailyMindfulnessDone
	case TaskLighthouse:
		done = &s.profile.DailyLighthouseDone
	default:
		return false, NewInvalidError("unknown task")
	}
	if *done {
		return false, nil
	}
	*done = true
	s.profile.CakeCount++
	s.persistLocked()
	return true, nil
}

// GrantBreathingReward credits one completed breathing exercise.
func (s *ProfileService) GrantBreathingReward() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return NewNotFoundError("no companion profile")
	}
	s.profile.CakeCount++
	s.persistLocked()
	return nil
}

// SuccessCount reports the cumulative completed-session counter.
func (s *ProfileService) SuccessCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return 0
	}
	return s.profile.SOSSuccessCount
}

// SpendCakes deducts n cakes, failing without mutation when the balance is
// short.
func (s *ProfileService) SpendCakes(n int) error {
	if n <= 0 {
		return NewInvalidError("amount must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return NewNotFoundError("no companion profile")
	}
	if s.profile.CakeCount < n {
		return NewInsufficientError("not enough cakes")
	}
	s.profile.CakeCount -= n
	s.persistLocked()
	return nil
}

// ResetDaily clears the per-day task flags and bumps the day counter when
// the calendar date changed. Idempotent within a day.
func (s *ProfileService) ResetDaily() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return
	}
	s.resetDailyLocked()
}

func (s *ProfileService) resetDailyLocked() {
	today := DayOf(s.now())
	if s.profile.LastResetDate == today {
		return
	}
	s.profile.DailyMindfulnessDone = false
	s.profile.DailyLighthouseDone = false
	s.profile.LastResetDate = today
	s.profile.TotalDays++
	s.persistLocked()
}

// RegisterResetHook adds a callback that Reset runs synchronously, so a
// full reset tears down dependent state (active sessions, pause timers) in
// the same logical action. A profile cleared with timers still firing is a
// defect this guards against.
func (s *ProfileService) RegisterResetHook(hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetHooks = append(s.resetHooks, hook)
}

// Reset destroys the profile and all dependent app state.
func (s *ProfileService) Reset() error {
	s.mu.Lock()
	s.profile = nil
	if err := s.store.DeleteProfile(); err != nil {
		log.Printf("profile service: delete profile: %v", err)
	}
	if err := s.store.ClearMoodEntries(); err != nil {
		log.Printf("profile service: clear mood entries: %v", err)
	}
	hooks := append([]func(){}, s.resetHooks...)
	s.mu.Unlock()
	for _, hook := range hooks {
		hook()
	}
	return nil
}

// DailyPhrase picks a low-key companion phrase for the current archetype.
func (s *ProfileService) DailyPhrase() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return "", NewNotFoundError("no companion profile")
	}
	pool := MonsterDailyPhrases[s.profile.Archetype]
	return pool[s.rng.Intn(len(pool))], nil
}

func (s *ProfileService) persistLocked() {
	if s.profile == nil {
		return
	}
	copy := *s.profile
	if err := s.store.PutProfile(&copy); err != nil {
		log.Printf("profile service: persist profile: %v", err)
	}
}
