package models

import "time"

// Companion is the matched monster identity a device keeps. One per device;
// destroyed only by an explicit reset.
type Companion struct {
	ID          string
	Archetype   string // healing | quiet | empathy
	Name        string
	MatchScore  int // winning share of the total score, 0..100
	MatchReason string
	Traits      []string // at most 4 tags
	Greeting    string
	CreatedAt   time.Time
}

// RewardState tracks the cake economy and the once-per-day task flags.
type RewardState struct {
	CakeCount            int
	SOSSuccessCount      int
	DailyMindfulnessDone bool
	DailyLighthouseDone  bool
	LastResetDate        string // YYYY-MM-DD, flags reset when the date moves
	TotalDays            int
}

// SOSSession is one transient urge-intervention run. Never persisted.
type SOSSession struct {
	ID         string
	Phase      string // opening | optionSelect | branchDialogue | waiting | resolution
	Bucket     string // lateNight | morning | afternoon | evening
	Option     string
	StartedAt  time.Time
	ResolvedAt time.Time
}

// MoodEntry is one mood-journal record.
type MoodEntry struct {
	ID        string
	Mood      string // happy | calm | down | anxious | angry | tired
	Note      string
	CreatedAt time.Time
}
