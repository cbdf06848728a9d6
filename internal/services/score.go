package services

import "math"

// AnswerWeights is one question's point contribution per archetype.
type AnswerWeights map[Archetype]int

// ScoreWeights holds the hand-tuned contribution of every answer to every
// archetype. Exposed as a table rather than hard-coded in the scorer because
// the values are heuristics expected to be retuned.
type ScoreWeights struct {
	TriggerTiming        map[TriggerTiming]AnswerWeights
	CompanionStyle       map[CompanionStyle]AnswerWeights
	PreferredPersonality map[Archetype]AnswerWeights
	EmotionExpression    map[EmotionExpression]AnswerWeights
}

// DefaultScoreWeights mirrors the shipped tuning. Every answer contributes
// something to every archetype except the personality question, which puts
// all 50 points on the archetype the user named outright.
var DefaultScoreWeights = ScoreWeights{
	TriggerTiming: map[TriggerTiming]AnswerWeights{
		TimingMidnight:  {ArchetypeQuiet: 30, ArchetypeEmpathy: 25, ArchetypeHealing: 15},
		TimingAfterWork: {ArchetypeHealing: 30, ArchetypeQuiet: 20, ArchetypeEmpathy: 15},
		TimingStressed:  {ArchetypeEmpathy: 35, ArchetypeHealing: 25, ArchetypeQuiet: 10},
		TimingEmpty:     {ArchetypeHealing: 30, ArchetypeEmpathy: 30, ArchetypeQuiet: 10},
	},
	CompanionStyle: map[CompanionStyle]AnswerWeights{
		StyleSilent:     {ArchetypeQuiet: 40, ArchetypeEmpathy: 20, ArchetypeHealing: 10},
		StyleChat:       {ArchetypeHealing: 40, ArchetypeEmpathy: 15, ArchetypeQuiet: 5},
		StyleUnderstand: {ArchetypeEmpathy: 45, ArchetypeHealing: 20, ArchetypeQuiet: 15},
	},
	PreferredPersonality: map[Archetype]AnswerWeights{
		ArchetypeHealing: {ArchetypeHealing: 50},
		ArchetypeQuiet:   {ArchetypeQuiet: 50},
		ArchetypeEmpathy: {ArchetypeEmpathy: 50},
	},
	EmotionExpression: map[EmotionExpression]AnswerWeights{
		ExpressSuppress: {ArchetypeEmpathy: 30, ArchetypeQuiet: 25, ArchetypeHealing: 15},
		ExpressOpenly:   {ArchetypeHealing: 35, ArchetypeEmpathy: 20, ArchetypeQuiet: 10},
		ExpressConfused: {ArchetypeEmpathy: 35, ArchetypeHealing: 25, ArchetypeQuiet: 15},
		ExpressAvoid:    {ArchetypeQuiet: 35, ArchetypeEmpathy: 25, ArchetypeHealing: 10},
	},
}

// ScoreAnswers accumulates the weight table over the four answers. Pure:
// identical answers always produce identical scores. Answers are assumed
// validated upstream.
func ScoreAnswers(answers OnboardingAnswers, w ScoreWeights) ArchetypeScores {
	scores := ArchetypeScores{ArchetypeHealing: 0, ArchetypeQuiet: 0, ArchetypeEmpathy: 0}
	for arch, pts := range w.TriggerTiming[answers.TriggerTiming] {
		scores[arch] += pts
	}
	for arch, pts := range w.CompanionStyle[answers.CompanionStyle] {
		scores[arch] += pts
	}
	for arch, pts := range w.PreferredPersonality[answers.PreferredPersonality] {
		scores[arch] += pts
	}
	for arch, pts := range w.EmotionExpression[answers.EmotionExpression] {
		scores[arch] += pts
	}
	return scores
}

// SelectArchetype picks the archetype with the highest accumulated score and
// returns it with a confidence percentage (winning share of the total,
// rounded). Exact ties resolve in the fixed healing > quiet > empathy order
// so results stay deterministic.
func SelectArchetype(scores ArchetypeScores) (Archetype, int) {
	selected := archetypePriority[0]
	best := scores[selected]
	total := 0
	for _, arch := range archetypePriority {
		total += scores[arch]
		if scores[arch] > best {
			best = scores[arch]
			selected = arch
		}
	}
	if total <= 0 {
		return selected, 0
	}
	confidence := int(math.Round(float64(best) / float64(total) * 100))
	return selected, confidence
}
