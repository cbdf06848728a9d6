package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnavailable  ErrorCode = "unavailable"
	ErrorInsufficient ErrorCode = "insufficient"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error  { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error { return &ServiceError{Code: ErrorConflict, Message: msg} }

func NewUnavailableError(msg string) error {
	return &ServiceError{Code: ErrorUnavailable, Message: msg}
}

func NewInsufficientError(msg string) error {
	return &ServiceError{Code: ErrorInsufficient, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Archetype is one of the three fixed companion personalities.
type Archetype string

const (
	ArchetypeHealing Archetype = "healing"
	ArchetypeQuiet   Archetype = "quiet"
	ArchetypeEmpathy Archetype = "empathy"
)

// archetypePriority fixes the tie-break order when scores are exactly equal.
var archetypePriority = []Archetype{ArchetypeHealing, ArchetypeQuiet, ArchetypeEmpathy}

// TriggerTiming answers "when do you usually reach for food".
type TriggerTiming string

const (
	TimingMidnight  TriggerTiming = "midnight"
	TimingAfterWork TriggerTiming = "afterWork"
	TimingStressed  TriggerTiming = "stressed"
	TimingEmpty     TriggerTiming = "empty"
)

// CompanionStyle answers "in that moment, you'd rather have someone...".
type CompanionStyle string

const (
	StyleSilent     CompanionStyle = "silent"
	StyleChat       CompanionStyle = "chat"
	StyleUnderstand CompanionStyle = "understand"
)

// EmotionExpression answers "how do you usually handle your feelings".
type EmotionExpression string

const (
	ExpressSuppress EmotionExpression = "suppress"
	ExpressOpenly   EmotionExpression = "express"
	ExpressConfused EmotionExpression = "confused"
	ExpressAvoid    EmotionExpression = "avoid"
)

// OnboardingAnswers holds one answer per onboarding question. All four
// fields must be set before matching runs.
type OnboardingAnswers struct {
	TriggerTiming        TriggerTiming     `json:"trigger_timing"`
	CompanionStyle       CompanionStyle    `json:"companion_style"`
	PreferredPersonality Archetype         `json:"preferred_personality"`
	EmotionExpression    EmotionExpression `json:"emotion_expression"`
}

// Validate rejects missing or out-of-enum answers. The scoring table has no
// defined behavior for partial input, so matching must not run past this.
func (a OnboardingAnswers) Validate() error {
	switch a.TriggerTiming {
	case TimingMidnight, TimingAfterWork, TimingStressed, TimingEmpty:
	default:
		return NewInvalidError("trigger_timing required")
	}
	switch a.CompanionStyle {
	case StyleSilent, StyleChat, StyleUnderstand:
	default:
		return NewInvalidError("companion_style required")
	}
	switch a.PreferredPersonality {
	case ArchetypeHealing, ArchetypeQuiet, ArchetypeEmpathy:
	default:
		return NewInvalidError("preferred_personality required")
	}
	switch a.EmotionExpression {
	case ExpressSuppress, ExpressOpenly, ExpressConfused, ExpressAvoid:
	default:
		return NewInvalidError("emotion_expression required")
	}
	return nil
}

// ArchetypeScores maps each archetype to its accumulated score. Ephemeral;
// recomputed on every match run, never persisted.
type ArchetypeScores map[Archetype]int

// MatchResult is the immutable outcome of one matching run.
type MatchResult struct {
	Archetype   Archetype `json:"archetype"`
	MatchScore  int       `json:"match_score"`
	MatchReason string    `json:"match_reason"`
	Traits      []string  `json:"traits"`
	Greeting    string    `json:"greeting"`
}

// TaskID names a once-per-day completable action.
type TaskID string

const (
	TaskMindfulness TaskID = "mindfulness"
	TaskLighthouse  TaskID = "lighthouse"
)

// CompanionProfile is the persisted companion identity plus reward state.
// Mutated only through ProfileService; destroyed only by explicit reset.
type CompanionProfile struct {
	Archetype            Archetype `json:"archetype"`
	Name                 string    `json:"name"`
	MatchScore           int       `json:"match_score,omitempty"`
	MatchReason          string    `json:"match_reason,omitempty"`
	Traits               []string  `json:"traits,omitempty"`
	Greeting             string    `json:"greeting,omitempty"`
	CakeCount            int       `json:"cake_count"`
	SOSSuccessCount      int       `json:"sos_success_count"`
	DailyMindfulnessDone bool      `json:"daily_mindfulness_done"`
	DailyLighthouseDone  bool      `json:"daily_lighthouse_done"`
	LastResetDate        string    `json:"last_reset_date"` // YYYY-MM-DD
	TotalDays            int       `json:"total_days"`
	CreatedAt            time.Time `json:"created_at"`
}

// Speaker identifies who a transcript line belongs to.
type Speaker string

const (
	SpeakerMonster Speaker = "monster"
	SpeakerUser    Speaker = "user"
)

// TranscriptLine is one {speaker, text} pair of a session transcript.
type TranscriptLine struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// MoodEntry is one mood-journal record.
type MoodEntry struct {
	ID        string    `json:"id"`
	Mood      string    `json:"mood"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// DayOf formats t as a calendar date, the granularity daily tasks reset on.
func DayOf(t time.Time) string { return t.Format("2006-01-02") }
