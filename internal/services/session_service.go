package services

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SessionPhase is the state of one SOS intervention run.
type SessionPhase string

const (
	PhaseOpening        SessionPhase = "opening"
	PhaseOptionSelect   SessionPhase = "optionSelect"
	PhaseBranchDialogue SessionPhase = "branchDialogue"
	PhaseWaiting        SessionPhase = "waiting"
	PhaseResolution     SessionPhase = "resolution"
)

// Destination is where the user goes after resolving a session. Both count
// as a completed, rewarded session.
type Destination string

const (
	DestinationHome      Destination = "home"
	DestinationCommunity Destination = "community"
)

// RewardLedger is the slice of the profile service the session machine
// touches, from exactly one transition.
type RewardLedger interface {
	GrantSessionReward() error
	SuccessCount() int
}

// SessionConfig tunes the timed parts of the machine. The waiting duration
// is the "60 time units" of the shipped app, kept configurable.
type SessionConfig struct {
	WaitingDuration time.Duration
	Checkpoints     int
	LineDelay       time.Duration
	TickInterval    time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		WaitingDuration: 60 * time.Second,
		Checkpoints:     4,
		LineDelay:       defaultLineDelay,
		TickInterval:    time.Second,
	}
}

// Session is one transient SOS run. Never persisted; discarded on
// resolution or cancel.
type Session struct {
	ID         string             `json:"id"`
	Phase      SessionPhase       `json:"phase"`
	Bucket     HourBucket         `json:"bucket"`
	Option     InterventionOption `json:"option,omitempty"`
	MoodLabel  string             `json:"mood_label,omitempty"`
	Transcript []TranscriptLine   `json:"transcript"`

	emitted int // waiting-phase checkpoint lines appended so far
	timers  []ScheduledTimer
	waiting *Countdown
	dead    bool
}

// GuardCard is the resolution summary shown after a completed session.
type GuardCard struct {
	Date         string `json:"date"`
	TimeOfDay    string `json:"time_of_day"`
	SuccessCount int    `json:"success_count"`
	Quote        string `json:"quote"`
}

// SessionService drives the SOS intervention lifecycle:
// idle → opening → optionSelect → branchDialogue → waiting → resolution.
// All transitions run under one mutex; every deferred callback re-checks
// that its session is still the live one before touching state, so a
// superseded or cancelled session's timers can never mutate a later one.
type SessionService struct {
	mu        sync.Mutex
	cfg       SessionConfig
	provider  DialogueProvider
	ledger    RewardLedger
	scheduler Scheduler
	now       func() time.Time

	sessions map[string]*Session
	activeID string
}

func NewSessionService(cfg SessionConfig, provider DialogueProvider, ledger RewardLedger, scheduler Scheduler, now func() time.Time) *SessionService {
	if now == nil {
		now = func() time.Time { return time.Now() }
	}
	if cfg.Checkpoints <= 0 {
		cfg.Checkpoints = 4
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return &SessionService{
		cfg:       cfg,
		provider:  provider,
		ledger:    ledger,
		scheduler: scheduler,
		now:       now,
		sessions:  map[string]*Session{},
	}
}

// Start begins a session. The opening script is keyed by the current hour
// bucket and revealed line by line on the configured delay; once the last
// line lands the session moves to optionSelect on its own. Starting while
// another session is live supersedes it without reward.
func (s *SessionService) Start(ctx context.Context) (*Session, error) {
	lines, err := s.provider.OpeningLines(ctx, BucketForHour(s.now().Hour()))
	if err != nil {
		// The fallback wrapper makes this unreachable with a local tier
		// configured, but a bare provider can still refuse.
		return nil, NewUnavailableError("no dialogue content: " + err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev := s.sessions[s.activeID]; prev != nil {
		s.teardownLocked(prev)
	}
	sess := &Session{
		ID:         shortID(12),
		Phase:      PhaseOpening,
		Bucket:     BucketForHour(s.now().Hour()),
		Transcript: []TranscriptLine{},
	}
	s.sessions[sess.ID] = sess
	s.activeID = sess.ID
	s.scheduleLinesLocked(sess, PhaseOpening, lines, func(sess *Session) {
		sess.Phase = PhaseOptionSelect
	})
	return s.snapshotLocked(sess), nil
}

// Choose picks one of the fixed intervention options. Only legal from
// optionSelect. The branch is deterministic: the option's canned lines play
// out, then the session moves to waiting and the countdown starts.
func (s *SessionService) Choose(sessionID string, option InterventionOption) (*Session, error) {
	if !ValidOption(option) {
		return nil, NewInvalidError("unknown intervention option")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.liveLocked(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Phase != PhaseOptionSelect {
		return nil, NewConflictError(fmt.Sprintf("cannot choose in phase %s", sess.Phase))
	}
	branch := interventionBranches[option]
	sess.Phase = PhaseBranchDialogue
	sess.Option = option
	sess.MoodLabel = branch.MoodLabel
	sess.Transcript = append(sess.Transcript, TranscriptLine{Speaker: SpeakerUser, Text: branch.UserLine})
	lines := make([]DialogueLine, 0, len(branch.Lines))
	for _, text := range branch.Lines {
		lines = append(lines, DialogueLine{Text: text, Delay: s.cfg.LineDelay})
	}
	s.scheduleLinesLocked(sess, PhaseBranchDialogue, lines, s.beginWaitingLocked)
	return s.snapshotLocked(sess), nil
}

// Resolve ends a completed session. Only legal from resolution, and the one
// and only place the reward ledger is invoked: exactly once per completed
// session, for either destination.
func (s *SessionService) Resolve(sessionID string, dest Destination) (*GuardCard, error) {
	switch dest {
	case DestinationHome, DestinationCommunity:
	default:
		return nil, NewInvalidError("unknown destination")
	}
	s.mu.Lock()
	sess, err := s.liveLocked(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if sess.Phase != PhaseResolution {
		s.mu.Unlock()
		return nil, NewConflictError(fmt.Sprintf("cannot resolve in phase %s", sess.Phase))
	}
	s.teardownLocked(sess)
	now := s.now()
	bucket := sess.Bucket
	s.mu.Unlock()

	if err := s.ledger.GrantSessionReward(); err != nil {
		return nil, err
	}
	return &GuardCard{
		Date:         now.Format("2006.01.02"),
		TimeOfDay:    BucketLabel[bucket],
		SuccessCount: s.ledger.SuccessCount(),
		Quote:        "撑过那90秒，就是胜利",
	}, nil
}

// Cancel exits a session early from any non-terminal state: all deferred
// callbacks stop as a unit, nothing more is appended, and the ledger is
// never consulted.
func (s *SessionService) Cancel(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.liveLocked(sessionID)
	if err != nil {
		return err
	}
	s.teardownLocked(sess)
	return nil
}

// CancelAll tears down every live session. Wired as a reset hook so a full
// app reset cannot leave orphaned timers firing.
func (s *SessionService) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		s.teardownLocked(sess)
	}
}

// Get returns a point-in-time copy of a live session.
func (s *SessionService) Get(sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.liveLocked(sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshotLocked(sess), nil
}

// WaitingRemaining reports the time left in the waiting phase.
func (s *SessionService) WaitingRemaining(sessionID string) (time.Duration, error) {
	s.mu.Lock()
	sess, err := s.liveLocked(sessionID)
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}
	cd := sess.waiting
	s.mu.Unlock()
	if cd == nil {
		return 0, nil
	}
	return cd.Remaining(), nil
}

// Options lists the intervention choices in their fixed display order.
type OptionView struct {
	ID    InterventionOption `json:"id"`
	Label string             `json:"label"`
}

func (s *SessionService) Options() []OptionView {
	out := make([]OptionView, 0, len(sessionOptionOrder))
	for _, id := range sessionOptionOrder {
		out = append(out, OptionView{ID: id, Label: interventionBranches[id].UserLine})
	}
	return out
}

var sessionOptionOrder = []InterventionOption{OptionUnderstand, OptionQuiet, OptionDistract, OptionGoal}

// liveLocked resolves a session ID to a session that has not been torn
// down. Callbacks use the same check, which is the stale-callback guard.
func (s *SessionService) liveLocked(sessionID string) (*Session, error) {
	sess := s.sessions[sessionID]
	if sess == nil || sess.dead {
		return nil, NewNotFoundError("no such session")
	}
	return sess, nil
}

// scheduleLinesLocked reveals lines one by one at cumulative delays and
// runs then (still under the lock) after the last line lands. The next
// phase is therefore never scheduled before the prior phase's script has
// fully appended, which keeps transcript order fixed.
func (s *SessionService) scheduleLinesLocked(sess *Session, phase SessionPhase, lines []DialogueLine, then func(*Session)) {
	var offset time.Duration
	for i, line := range lines {
		offset += line.Delay
		line := line
		last := i == len(lines)-1
		timer := s.scheduler.AfterFunc(offset, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			live, err := s.liveLocked(sess.ID)
			if err != nil || live != sess || sess.Phase != phase {
				return // stale callback; session gone or moved on
			}
			sess.Transcript = append(sess.Transcript, TranscriptLine{Speaker: SpeakerMonster, Text: line.Text})
			if last && then != nil {
				then(sess)
			}
		})
		sess.timers = append(sess.timers, timer)
	}
}

// beginWaitingLocked starts the timed waiting phase. The countdown is the
// single ticking source for both progress and the checkpoint reassurance
// lines, so "seconds remaining" and "which line is due" cannot drift apart.
func (s *SessionService) beginWaitingLocked(sess *Session) {
	sess.Phase = PhaseWaiting
	sess.emitted = 0
	cd := NewCountdown(s.scheduler, s.now, s.cfg.TickInterval)
	sess.waiting = cd
	duration := s.cfg.WaitingDuration
	checkpoints := s.cfg.Checkpoints

	onTick := func(remaining time.Duration) {
		s.mu.Lock()
		defer s.mu.Unlock()
		live, err := s.liveLocked(sess.ID)
		if err != nil || live != sess || sess.Phase != PhaseWaiting {
			return
		}
		elapsed := duration - remaining
		s.emitCheckpointsLocked(sess, elapsed, duration, checkpoints)
	}
	onZero := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		live, err := s.liveLocked(sess.ID)
		if err != nil || live != sess || sess.Phase != PhaseWaiting {
			return
		}
		s.emitCheckpointsLocked(sess, duration, duration, checkpoints)
		sess.Phase = PhaseResolution
		sess.waiting = nil
	}
	cd.Start(duration, onTick, onZero)
}

// emitCheckpointsLocked appends every reassurance line whose evenly spaced
// threshold the monotone elapsed time has crossed. Progress only moves
// forward, so lines append in script order and at most once.
func (s *SessionService) emitCheckpointsLocked(sess *Session, elapsed, duration time.Duration, checkpoints int) {
	if checkpoints > len(waitingLines) {
		checkpoints = len(waitingLines)
	}
	for sess.emitted < checkpoints {
		next := sess.emitted + 1
		threshold := duration * time.Duration(next) / time.Duration(checkpoints)
		if elapsed < threshold {
			return
		}
		sess.Transcript = append(sess.Transcript, TranscriptLine{Speaker: SpeakerMonster, Text: waitingLines[sess.emitted]})
		sess.emitted = next
	}
}

// teardownLocked cancels the session's deferred work as a unit and removes
// it. Timers that already fired will hit the liveLocked guard and bail.
func (s *SessionService) teardownLocked(sess *Session) {
	for _, t := range sess.timers {
		t.Stop()
	}
	sess.timers = nil
	if sess.waiting != nil {
		sess.waiting.Cancel()
		sess.waiting = nil
	}
	sess.dead = true
	delete(s.sessions, sess.ID)
	if s.activeID == sess.ID {
		s.activeID = ""
	}
}

func (s *SessionService) snapshotLocked(sess *Session) *Session {
	copy := *sess
	copy.Transcript = append([]TranscriptLine(nil), sess.Transcript...)
	copy.timers = nil
	copy.waiting = nil
	return &copy
}
