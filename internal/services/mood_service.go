package services

import "time"

// MoodStore is the persistence slice for the mood journal.
type MoodStore interface {
	AddMoodEntry(e *MoodEntry) error
	ListMoodEntries() ([]*MoodEntry, error)
}

var validMoods = map[string]struct{}{
	"happy": {}, "calm": {}, "down": {}, "anxious": {}, "angry": {}, "tired": {},
}

// MoodService records the mood journal. Entries live in the device store
// and are wiped by a full profile reset.
type MoodService struct {
	store MoodStore
	now   func() time.Time
}

func NewMoodService(store MoodStore) *MoodService {
	return &MoodService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (s *MoodService) AddEntry(mood, note string) (*MoodEntry, error) {
	if _, ok := validMoods[mood]; !ok {
		return nil, NewInvalidError("unknown mood")
	}
	entry := &MoodEntry{
		ID:        shortID(10),
		Mood:      mood,
		Note:      note,
		CreatedAt: s.now(),
	}
	if err := s.store.AddMoodEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *MoodService) ListEntries() ([]*MoodEntry, error) {
	return s.store.ListMoodEntries()
}
