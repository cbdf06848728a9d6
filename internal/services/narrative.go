package services

import "math/rand"

// matchReasons are the per-archetype candidate pools for the match reason.
var matchReasons = map[Archetype][]string{
	ArchetypeHealing: {
		"我注意到你需要一个温暖的存在",
		"看起来你的内心需要被柔软地对待",
		"你值得拥有一个会撒娇的小伙伴",
		"我感觉到你渴望被温柔地照顾",
	},
	ArchetypeQuiet: {
		"你好像更需要安静的陪伴",
		"我看见了你对平静的渴望",
		"有时候，不说话就是最好的支持",
		"你需要的，是一份不打扰的守护",
	},
	ArchetypeEmpathy: {
		"我懂那种说不出口的感觉",
		"你不需要假装坚强，真的",
		"有些话，不说也能被理解",
		"我看见了你藏起来的那部分",
	},
}

// greetings are the per-archetype candidate pools for the opening line.
var greetings = map[Archetype][]string{
	ArchetypeHealing: {
		"嘿！我等你好久啦~",
		"终于等到你了，我好想你！",
		"你来啦！我准备好要陪你了！",
		"呜呜，你终于来了，我还以为你不要我了",
	},
	ArchetypeQuiet: {
		"...你好。我在。",
		"嗯，我会一直在的。",
		"你来了。我陪你。",
		"不用说话，我懂。",
	},
	ArchetypeEmpathy: {
		"嗨...看起来你今天也挺累的",
		"又是艰难的一天吧，我懂",
		"我看见你了，那个假装没事的你",
		"累了就歇会儿，不用撑着",
	},
}

// baseTraits are assembled first; conditional traits append after, and the
// final list is cut to four. The order matters: an appended trait can push
// nothing out, it just gets dropped by the cap when the base list is full.
var baseTraits = map[Archetype][]string{
	ArchetypeHealing: {"温暖治愈", "爱撒娇", "话痨属性", "正能量"},
	ArchetypeQuiet:   {"安静陪伴", "稳定可靠", "不多话", "默默守护"},
	ArchetypeEmpathy: {"深度共情", "不评判", "懂你的丧", "情绪容器"},
}

// Fixed override copy. Overrides fire before any pool sampling.
const (
	reasonConfused        = "情绪说不清楚没关系，我陪你慢慢整理"
	reasonSuppressEmpathy = "我感觉到你习惯把情绪藏起来，但在这里，你可以不用假装"
	greetingMidnightQuiet = "深夜了...我陪你。"
	greetingStressEmpathy = "压力很大吧...我懂的，我在这儿"

	traitMindReader    = "读心怪兽"
	traitNightGuardian = "夜晚守护者"
	traitSafeHollow    = "安全的树洞"
)

// maxTraits caps the trait list.
const maxTraits = 4

// NarrativeGenerator produces the match reason, trait tags and greeting for
// a selected archetype. Pool sampling goes through the injected random
// source so tests can pin the choice.
type NarrativeGenerator struct {
	rng *rand.Rand
}

func NewNarrativeGenerator(rng *rand.Rand) *NarrativeGenerator {
	return &NarrativeGenerator{rng: rng}
}

func (g *NarrativeGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

// Reason returns the match reason. The confused override beats everything,
// the suppress override applies to empathy only, otherwise a pool sample.
func (g *NarrativeGenerator) Reason(arch Archetype, answers OnboardingAnswers) string {
	if answers.EmotionExpression == ExpressConfused {
		return reasonConfused
	}
	if answers.EmotionExpression == ExpressSuppress && arch == ArchetypeEmpathy {
		return reasonSuppressEmpathy
	}
	return g.pick(matchReasons[arch])
}

// Traits builds the trait tags: base list first, conditional appends, then
// the cap. Traits never cross archetypes.
func (g *NarrativeGenerator) Traits(arch Archetype, answers OnboardingAnswers) []string {
	traits := append([]string(nil), baseTraits[arch]...)
	if answers.CompanionStyle == StyleUnderstand && arch == ArchetypeEmpathy {
		traits = append(traits, traitMindReader)
	}
	if answers.TriggerTiming == TimingMidnight && arch == ArchetypeQuiet {
		traits = append(traits, traitNightGuardian)
	}
	if answers.EmotionExpression == ExpressSuppress {
		traits = append(traits, traitSafeHollow)
	}
	if len(traits) > maxTraits {
		traits = traits[:maxTraits]
	}
	return traits
}

// Greeting returns the opening line, with the two timing-specific overrides
// taking precedence over the pool.
func (g *NarrativeGenerator) Greeting(arch Archetype, answers OnboardingAnswers) string {
	if answers.TriggerTiming == TimingMidnight && arch == ArchetypeQuiet {
		return greetingMidnightQuiet
	}
	if answers.TriggerTiming == TimingStressed && arch == ArchetypeEmpathy {
		return greetingStressEmpathy
	}
	return g.pick(greetings[arch])
}

// MatchScoreText maps a confidence percentage to its display tier.
func MatchScoreText(score int) string {
	switch {
	case score >= 80:
		return "超高契合"
	case score >= 60:
		return "高度匹配"
	case score >= 40:
		return "适合你"
	default:
		return "还不错"
	}
}
