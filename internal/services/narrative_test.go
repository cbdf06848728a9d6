package services

import (
	"math/rand"
	"reflect"
	"testing"
)

func newTestNarrative() *NarrativeGenerator {
	return NewNarrativeGenerator(rand.New(rand.NewSource(1)))
}

func contains(pool []string, s string) bool {
	for _, p := range pool {
		if p == s {
			return true
		}
	}
	return false
}

func TestReasonOverrides(t *testing.T) {
	g := newTestNarrative()

	confused := OnboardingAnswers{EmotionExpression: ExpressConfused}
	for _, arch := range archetypePriority {
		if got := g.Reason(arch, confused); got != reasonConfused {
			t.Fatalf("confused override for %s = %q, want %q", arch, got, reasonConfused)
		}
	}

	suppress := OnboardingAnswers{EmotionExpression: ExpressSuppress}
	if got := g.Reason(ArchetypeEmpathy, suppress); got != reasonSuppressEmpathy {
		t.Fatalf("suppress+empathy reason = %q, want override", got)
	}
	// Suppress only overrides for empathy; others fall through to the pool.
	if got := g.Reason(ArchetypeHealing, suppress); !contains(matchReasons[ArchetypeHealing], got) {
		t.Fatalf("suppress+healing reason %q not from healing pool", got)
	}
}

func TestReasonFromOwnPool(t *testing.T) {
	g := newTestNarrative()
	answers := OnboardingAnswers{EmotionExpression: ExpressOpenly}
	for _, arch := range archetypePriority {
		for i := 0; i < 20; i++ {
			if got := g.Reason(arch, answers); !contains(matchReasons[arch], got) {
				t.Fatalf("reason %q not from %s pool", got, arch)
			}
		}
	}
}

func TestGreetingOverrides(t *testing.T) {
	g := newTestNarrative()

	midnight := OnboardingAnswers{TriggerTiming: TimingMidnight}
	if got := g.Greeting(ArchetypeQuiet, midnight); got != greetingMidnightQuiet {
		t.Fatalf("midnight+quiet greeting = %q, want override", got)
	}
	if got := g.Greeting(ArchetypeHealing, midnight); !contains(greetings[ArchetypeHealing], got) {
		t.Fatalf("midnight+healing greeting %q not from healing pool", got)
	}

	stressed := OnboardingAnswers{TriggerTiming: TimingStressed}
	if got := g.Greeting(ArchetypeEmpathy, stressed); got != greetingStressEmpathy {
		t.Fatalf("stressed+empathy greeting = %q, want override", got)
	}
}

func TestTraitsCappedAtFour(t *testing.T) {
	g := newTestNarrative()
	// Every conditional trait applies here, yet the cap keeps the base four:
	// the base list already fills the cap, so appends fall off the end.
	answers := OnboardingAnswers{
		TriggerTiming:        TimingMidnight,
		CompanionStyle:       StyleUnderstand,
		EmotionExpression:    ExpressSuppress,
		PreferredPersonality: ArchetypeQuiet,
	}
	for _, arch := range archetypePriority {
		traits := g.Traits(arch, answers)
		if len(traits) != maxTraits {
			t.Fatalf("%s traits = %d, want %d", arch, len(traits), maxTraits)
		}
		if !reflect.DeepEqual(traits, baseTraits[arch]) {
			t.Fatalf("%s traits = %v, want base list %v", arch, traits, baseTraits[arch])
		}
	}
}

func TestTraitsStayWithinArchetype(t *testing.T) {
	g := newTestNarrative()
	answers := OnboardingAnswers{
		TriggerTiming:        TimingAfterWork,
		CompanionStyle:       StyleChat,
		EmotionExpression:    ExpressOpenly,
		PreferredPersonality: ArchetypeHealing,
	}
	traits := g.Traits(ArchetypeHealing, answers)
	for _, tr := range traits {
		if !contains(baseTraits[ArchetypeHealing], tr) {
			t.Fatalf("healing trait %q not from healing base list", tr)
		}
	}
}

func TestNarrativeDeterministicWithPinnedSource(t *testing.T) {
	answers := OnboardingAnswers{
		TriggerTiming:        TimingEmpty,
		CompanionStyle:       StyleChat,
		EmotionExpression:    ExpressOpenly,
		PreferredPersonality: ArchetypeHealing,
	}
	a := NewNarrativeGenerator(rand.New(rand.NewSource(42)))
	b := NewNarrativeGenerator(rand.New(rand.NewSource(42)))
	if a.Reason(ArchetypeHealing, answers) != b.Reason(ArchetypeHealing, answers) {
		t.Fatal("same seed produced different reasons")
	}
	if a.Greeting(ArchetypeHealing, answers) != b.Greeting(ArchetypeHealing, answers) {
		t.Fatal("same seed produced different greetings")
	}
}

func TestMatchScoreText(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{95, "超高契合"},
		{80, "超高契合"},
		{79, "高度匹配"},
		{60, "高度匹配"},
		{59, "适合你"},
		{40, "适合你"},
		{39, "还不错"},
		{0, "还不错"},
	}
	for _, tc := range cases {
		if got := MatchScoreText(tc.score); got != tc.want {
			t.Errorf("MatchScoreText(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
