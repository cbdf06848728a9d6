package services

import (
	"math/rand"
	"time"
)

// ProfileWriter is the slice of the profile store the matching facade needs
// to persist a freshly onboarded companion.
type ProfileWriter interface {
	PutProfile(p *CompanionProfile) error
}

// MatchService composes the scoring engine and the narrative generator into
// the single result object the onboarding flow consumes.
type MatchService struct {
	weights   ScoreWeights
	narrative *NarrativeGenerator
	store     ProfileWriter
	now       func() time.Time
}

func NewMatchService(store ProfileWriter, rng *rand.Rand) *MatchService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MatchService{
		weights:   DefaultScoreWeights,
		narrative: NewNarrativeGenerator(rng),
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Match validates the answers, scores them and generates the narrative.
// Pure apart from pool sampling; nothing is persisted.
func (s *MatchService) Match(answers OnboardingAnswers) (*MatchResult, error) {
	if err := answers.Validate(); err != nil {
		return nil, err
	}
	scores := ScoreAnswers(answers, s.weights)
	arch, confidence := SelectArchetype(scores)
	return &MatchResult{
		Archetype:   arch,
		MatchScore:  confidence,
		MatchReason: s.narrative.Reason(arch, answers),
		Traits:      s.narrative.Traits(arch, answers),
		Greeting:    s.narrative.Greeting(arch, answers),
	}, nil
}

// CompleteOnboarding runs Match and persists the companion profile. A
// re-onboarding fully replaces any previous profile. The name defaults to
// the archetype's own when the user left it blank.
func (s *MatchService) CompleteOnboarding(answers OnboardingAnswers, name string) (*CompanionProfile, error) {
	result, err := s.Match(answers)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = ArchetypeConfigs[result.Archetype].DefaultName
	}
	now := s.now()
	profile := &CompanionProfile{
		Archetype:     result.Archetype,
		Name:          name,
		MatchScore:    result.MatchScore,
		MatchReason:   result.MatchReason,
		Traits:        result.Traits,
		Greeting:      result.Greeting,
		LastResetDate: DayOf(now),
		CreatedAt:     now,
	}
	if err := s.store.PutProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}
