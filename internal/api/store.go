package api

import (
	"sync"
	"time"
)

// Profile is the persisted companion record. A device owns at most one.
type Profile struct {
	Archetype            string    `json:"archetype"`
	Name                 string    `json:"name"`
	MatchScore           int       `json:"match_score,omitempty"`
	MatchReason          string    `json:"match_reason,omitempty"`
	Traits               []string  `json:"traits,omitempty"`
	Greeting             string    `json:"greeting,omitempty"`
	CakeCount            int       `json:"cake_count"`
	SOSSuccessCount      int       `json:"sos_success_count"`
	DailyMindfulnessDone bool      `json:"daily_mindfulness_done"`
	DailyLighthouseDone  bool      `json:"daily_lighthouse_done"`
	LastResetDate        string    `json:"last_reset_date"`
	TotalDays            int       `json:"total_days"`
	CreatedAt            time.Time `json:"created_at"`
}

// MoodRecord is one stored mood-journal entry.
type MoodRecord struct {
	ID        string    `json:"id"`
	Mood      string    `json:"mood"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type memoryStore struct {
	mu      sync.RWMutex
	profile *Profile
	moods   []*MoodRecord
}

// NewMemoryStore returns a volatile in-process store. The default when no
// sqlite path is configured.
func NewMemoryStore() Store {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{moods: []*MoodRecord{}}
}

func (s *memoryStore) PutProfile(p *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *p
	s.profile = &copy
}

func (s *memoryStore) GetProfile() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	copy := *s.profile
	return &copy
}

func (s *memoryStore) DeleteProfile() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.profile != nil
	s.profile = nil
	return had
}

func (s *memoryStore) AddMood(m *MoodRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *m
	s.moods = append(s.moods, &copy)
}

func (s *memoryStore) ListMoods() []*MoodRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*MoodRecord(nil), s.moods...)
}

func (s *memoryStore) ClearMoods() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.moods)
	s.moods = []*MoodRecord{}
	return n
}
