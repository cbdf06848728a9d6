package api

import "github.com/FlowingHeartEggTart/Monster/internal/services"

// profileStoreAdapter bridges the api Store to the persistence slices the
// services consume. It carries both the profile and the mood journal since
// the two share one device store.
type profileStoreAdapter struct {
	store Store
}

func newProfileStoreAdapter(store Store) *profileStoreAdapter {
	return &profileStoreAdapter{store: store}
}

func (a *profileStoreAdapter) GetProfile() (*services.CompanionProfile, error) {
	return convertAPIProfile(a.store.GetProfile()), nil
}

func (a *profileStoreAdapter) PutProfile(p *services.CompanionProfile) error {
	if p == nil {
		return services.NewInvalidError("profile required")
	}
	a.store.PutProfile(convertServiceProfile(p))
	return nil
}

func (a *profileStoreAdapter) DeleteProfile() error {
	a.store.DeleteProfile()
	return nil
}

func (a *profileStoreAdapter) ClearMoodEntries() error {
	a.store.ClearMoods()
	return nil
}

func (a *profileStoreAdapter) AddMoodEntry(e *services.MoodEntry) error {
	if e == nil {
		return services.NewInvalidError("entry required")
	}
	a.store.AddMood(&MoodRecord{ID: e.ID, Mood: e.Mood, Note: e.Note, CreatedAt: e.CreatedAt})
	return nil
}

func (a *profileStoreAdapter) ListMoodEntries() ([]*services.MoodEntry, error) {
	records := a.store.ListMoods()
	out := make([]*services.MoodEntry, 0, len(records))
	for _, m := range records {
		out = append(out, &services.MoodEntry{ID: m.ID, Mood: m.Mood, Note: m.Note, CreatedAt: m.CreatedAt})
	}
	return out, nil
}

func convertServiceProfile(p *services.CompanionProfile) *Profile {
	if p == nil {
		return nil
	}
	return &Profile{
		Archetype:            string(p.Archetype),
		Name:                 p.Name,
		MatchScore:           p.MatchScore,
		MatchReason:          p.MatchReason,
		Traits:               p.Traits,
		Greeting:             p.Greeting,
		CakeCount:            p.CakeCount,
		SOSSuccessCount:      p.SOSSuccessCount,
		DailyMindfulnessDone: p.DailyMindfulnessDone,
		DailyLighthouseDone:  p.DailyLighthouseDone,
		LastResetDate:        p.LastResetDate,
		TotalDays:            p.TotalDays,
		CreatedAt:            p.CreatedAt,
	}
}

func convertAPIProfile(p *Profile) *services.CompanionProfile {
	if p == nil {
		return nil
	}
	return &services.CompanionProfile{
		Archetype:            services.Archetype(p.Archetype),
		Name:                 p.Name,
		MatchScore:           p.MatchScore,
		MatchReason:          p.MatchReason,
		Traits:               p.Traits,
		Greeting:             p.Greeting,
		CakeCount:            p.CakeCount,
		SOSSuccessCount:      p.SOSSuccessCount,
		DailyMindfulnessDone: p.DailyMindfulnessDone,
		DailyLighthouseDone:  p.DailyLighthouseDone,
		LastResetDate:        p.LastResetDate,
		TotalDays:            p.TotalDays,
		CreatedAt:            p.CreatedAt,
	}
}

var _ services.ProfileStore = (*profileStoreAdapter)(nil)
var _ services.MoodStore = (*profileStoreAdapter)(nil)
