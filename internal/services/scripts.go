package services

// Canned session content. The core consumes these tables as static data;
// the presentation layer owns visuals and everything else.

// ArchetypeConfig carries the fixed per-archetype presentation defaults the
// onboarding flow needs (name fallback and the emoji avatar).
type ArchetypeConfig struct {
	Archetype   Archetype `json:"archetype"`
	DefaultName string    `json:"default_name"`
	Personality string    `json:"personality"`
	Emoji       string    `json:"emoji"`
	Color       string    `json:"color"`
}

var ArchetypeConfigs = map[Archetype]ArchetypeConfig{
	ArchetypeHealing: {
		Archetype:   ArchetypeHealing,
		DefaultName: "糯糯",
		Personality: "软萌、爱撒娇、话多一点",
		Emoji:       "🌸",
		Color:       "#FFCAD4",
	},
	ArchetypeQuiet: {
		Archetype:   ArchetypeQuiet,
		DefaultName: "默默",
		Personality: "话少、安静陪着、偶尔说一句",
		Emoji:       "☁️",
		Color:       "#A5C9E8",
	},
	ArchetypeEmpathy: {
		Archetype:   ArchetypeEmpathy,
		DefaultName: "丧丧",
		Personality: "有点丧、但很懂你、不评判",
		Emoji:       "💜",
		Color:       "#C5A8E8",
	},
}

// HourBucket is the time-of-day key for opening scripts.
type HourBucket string

const (
	BucketLateNight HourBucket = "lateNight"
	BucketMorning   HourBucket = "morning"
	BucketAfternoon HourBucket = "afternoon"
	BucketEvening   HourBucket = "evening"
)

// BucketForHour maps an hour of day onto its script bucket.
func BucketForHour(hour int) HourBucket {
	switch {
	case hour >= 22 || hour < 6:
		return BucketLateNight
	case hour < 12:
		return BucketMorning
	case hour < 18:
		return BucketAfternoon
	default:
		return BucketEvening
	}
}

// BucketLabel is the display name of a bucket, used on the guard card.
var BucketLabel = map[HourBucket]string{
	BucketLateNight: "深夜",
	BucketMorning:   "早晨",
	BucketAfternoon: "午后",
	BucketEvening:   "傍晚",
}

// openingScripts are the 3-line openers keyed by time of day.
var openingScripts = map[HourBucket][]string{
	BucketLateNight: {
		"这么晚了...你来了。",
		"现在不需要想清楚发生了什么。",
		"我在，就在这儿。",
	},
	BucketMorning: {
		"早上好，你来了。",
		"一早就不太好受吧。",
		"没关系，我们慢慢来。",
	},
	BucketAfternoon: {
		"你来了。",
		"午后这种时候，挺容易难受的。",
		"我在听。",
	},
	BucketEvening: {
		"晚上了，今天辛苦了。",
		"现在不需要想清楚发生了什么。",
		"我陪你待一会儿。",
	},
}

// InterventionOption is one of the fixed choices offered after the opener.
type InterventionOption string

const (
	OptionUnderstand InterventionOption = "understand"
	OptionQuiet      InterventionOption = "quietCompany"
	OptionDistract   InterventionOption = "distract"
	OptionGoal       InterventionOption = "goalReminder"
)

// interventionBranch is the canned dialogue a chosen option plays, plus the
// presentation-only mood label.
type interventionBranch struct {
	UserLine  string
	MoodLabel string
	Lines     []string
}

var interventionBranches = map[InterventionOption]interventionBranch{
	OptionUnderstand: {
		UserLine:  "帮我弄清楚这种感觉",
		MoodLabel: "listening",
		Lines: []string{
			"嗯，我在。是很想吃，还是有一点想？",
			"这种时候，真的挺难的。",
			"很多人都会在这种时刻想靠吃缓一下。这不是你的问题。",
		},
	},
	OptionQuiet: {
		UserLine:  "就安静陪着我",
		MoodLabel: "company",
		Lines: []string{
			"好。",
			"......",
			"不用做什么，我陪你。",
		},
	},
	OptionDistract: {
		UserLine:  "帮我转移注意力",
		MoodLabel: "chat",
		Lines: []string{
			"那我们聊点别的。你现在在哪？",
			"嗯。谢谢你告诉我。",
			"不如我们一起数到10？",
		},
	},
	OptionGoal: {
		UserLine:  "提醒我为什么要坚持",
		MoodLabel: "serious",
		Lines: []string{
			"想想上次你成功抵抗冲动的时候...",
			"你比你想象的更强大。",
			"这种感觉会过去的，相信我。",
		},
	},
}

// ValidOption reports whether id names a defined intervention option.
func ValidOption(id InterventionOption) bool {
	_, ok := interventionBranches[id]
	return ok
}

// waitingLines are appended at the waiting-phase checkpoints, in order.
var waitingLines = []string{
	"我们就一起待一会儿，好吗？",
	"不用撑着，就这样待着。",
	"快过去了，你做得很好。",
	"你刚刚陪了我一小会儿。今天的蛋糕，要给我吗？",
}

// MonsterDailyPhrases is the low-key daily companion pool per archetype.
var MonsterDailyPhrases = map[Archetype][]string{
	ArchetypeHealing: {"...", "嗯", "在呢", "......", "一起", "慢慢来", "没关系的"},
	ArchetypeQuiet:   {"...", "......", "在", "嗯", "......", "......"},
	ArchetypeEmpathy: {"...", "懂的", "嗯", "......", "在这儿", "......"},
}

// ComfortPhrases are shown when a session is abandoned.
var ComfortPhrases = []string{
	"没关系，我们明天再试",
	"很多人都会这样，这很正常",
	"你已经很努力了",
	"下次我们一起再试试",
	"每一次尝试都是进步",
}

// cannedReplies back the local dialogue provider's free-text replies.
var cannedReplies = []string{
	"我听到你了...",
	"这种感觉会过去的，相信我。",
	"你比你想象的更强大。",
	"不如我们一起数到10？",
	"想想上次你成功抵抗冲动的时候...",
	"你现在在哪里？能换个环境吗？",
	"喝杯水吧，慢慢来。",
}

// defaultReflection is the pause-mechanic prompt when no provider answers.
const defaultReflection = "此刻，你在想什么？"
