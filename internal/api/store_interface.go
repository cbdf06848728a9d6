package api

// Store is the persistence surface the router wires the services to. The
// sqlite-backed implementation lives in internal/db; this package's memory
// store is the zero-config default.
type Store interface {
	PutProfile(p *Profile)
	GetProfile() *Profile
	DeleteProfile() bool

	AddMood(m *MoodRecord)
	ListMoods() []*MoodRecord
	ClearMoods() int
}

var _ Store = (*memoryStore)(nil)
