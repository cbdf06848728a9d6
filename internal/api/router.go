package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/FlowingHeartEggTart/Monster/internal/services"
)

// Router wires the companion services behind the HTTP surface. The session,
// pause and breathe services register themselves as reset hooks so a profile
// reset tears down every running timer in one action.
type Router struct {
	store    Store
	profiles *services.ProfileService
	match    *services.MatchService
	sessions *services.SessionService
	pause    *services.PauseService
	breathe  *services.BreatheService
	moods    *services.MoodService
}

// NewRouter builds the full service graph over the given store. provider
// supplies session dialogue and may be nil, which means canned scripts only;
// reflection supplies the post-pause prompt and may also be nil.
func NewRouter(store Store, provider services.DialogueProvider, reflection services.ReflectionSource) (*Router, error) {
	scripts := services.NewScriptProvider(nil)
	if provider == nil {
		provider = scripts
	}
	if reflection == nil {
		reflection = scripts
	}
	scheduler := services.NewScheduler()

	adapter := newProfileStoreAdapter(store)
	profiles := services.NewProfileService(adapter, nil)
	if err := profiles.Load(); err != nil {
		return nil, err
	}
	sessions := services.NewSessionService(services.DefaultSessionConfig(), provider, profiles, scheduler, nil)
	pause := services.NewPauseService(scheduler, nil, services.NoopHaptics{}, reflection)
	breathe := services.NewBreatheService(scheduler, profiles)
	profiles.RegisterResetHook(sessions.CancelAll)
	profiles.RegisterResetHook(pause.Reset)
	profiles.RegisterResetHook(breathe.Stop)

	return &Router{
		store:    store,
		profiles: profiles,
		match:    services.NewMatchService(profiles, nil),
		sessions: sessions,
		pause:    pause,
		breathe:  breathe,
		moods:    services.NewMoodService(adapter),
	}, nil
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/match", rt.handleMatch)                         // POST
	mux.HandleFunc("/api/onboarding/complete", rt.handleOnboarding)      // POST
	mux.HandleFunc("/api/archetypes", rt.handleArchetypes)               // GET
	mux.HandleFunc("/api/profile", rt.handleProfile)                     // GET
	mux.HandleFunc("/api/profile/phrase", rt.handleDailyPhrase)          // GET
	mux.HandleFunc("/api/profile/spend", rt.handleSpend)                 // POST
	mux.HandleFunc("/api/profile/reset", rt.handleReset)                 // POST
	mux.HandleFunc("/api/tasks/", rt.handleTaskScoped)                   // POST /api/tasks/{id}/complete
	mux.HandleFunc("/api/session/options", rt.handleSessionOptions)      // GET
	mux.HandleFunc("/api/session/start", rt.handleSessionStart)          // POST
	mux.HandleFunc("/api/session/", rt.handleSessionScoped)              // GET/POST /api/session/{id}[/...]
	mux.HandleFunc("/api/pause/activate", rt.handlePauseActivate)        // POST
	mux.HandleFunc("/api/pause/reset", rt.handlePauseReset)              // POST
	mux.HandleFunc("/api/pause", rt.handlePauseState)                    // GET
	mux.HandleFunc("/api/breathe/start", rt.handleBreatheStart)          // POST
	mux.HandleFunc("/api/breathe/stop", rt.handleBreatheStop)            // POST
	mux.HandleFunc("/api/breathe", rt.handleBreatheState)                // GET
	mux.HandleFunc("/api/moods", rt.handleMoods)                         // GET, POST
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps service error codes onto HTTP statuses. Anything that is
// not a ServiceError is an internal failure.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if se, ok := services.AsServiceError(err); ok {
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict, services.ErrorInsufficient:
			status = http.StatusConflict
		case services.ErrorUnavailable:
			status = http.StatusServiceUnavailable
		}
	}
	http.Error(w, err.Error(), status)
}

// POST /api/match — score the onboarding answers without persisting anything
func (rt *Router) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var answers services.OnboardingAnswers
	if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := rt.match.Match(answers)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"result":           result,
		"match_score_text": services.MatchScoreText(result.MatchScore),
		"config":           services.ArchetypeConfigs[result.Archetype],
	})
}

// POST /api/onboarding/complete — { answers: {...}, name?: string }
func (rt *Router) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Answers services.OnboardingAnswers `json:"answers"`
		Name    string                     `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	profile, err := rt.match.CompleteOnboarding(req.Answers, strings.TrimSpace(req.Name))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, profile)
}

// GET /api/archetypes
func (rt *Router) handleArchetypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, services.ArchetypeConfigs)
}

// GET /api/profile
func (rt *Router) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	profile := rt.profiles.Get()
	if profile == nil {
		http.Error(w, "no companion profile", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"profile":          profile,
		"match_score_text": services.MatchScoreText(profile.MatchScore),
		"config":           services.ArchetypeConfigs[profile.Archetype],
	})
}

// GET /api/profile/phrase
func (rt *Router) handleDailyPhrase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	phrase, err := rt.profiles.DailyPhrase()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"phrase": phrase})
}

// POST /api/profile/spend — { amount: int }
func (rt *Router) handleSpend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := rt.profiles.SpendCakes(req.Amount); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "cake_count": rt.profiles.Get().CakeCount})
}

// POST /api/profile/reset — destroys the profile and all dependent state
func (rt *Router) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := rt.profiles.Reset(); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

// POST /api/tasks/{id}/complete
func (rt *Router) handleTaskScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "complete" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	credited, err := rt.profiles.GrantDailyTask(services.TaskID(parts[0]))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"credited": credited, "cake_count": rt.profiles.Get().CakeCount})
}

// GET /api/session/options
func (rt *Router) handleSessionOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, rt.sessions.Options())
}

// POST /api/session/start
func (rt *Router) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, err := rt.sessions.Start(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, sess)
}

// /api/session/{id}            GET   — snapshot
// /api/session/{id}/choose     POST  — { option: string }
// /api/session/{id}/waiting    GET   — remaining seconds
// /api/session/{id}/resolve    POST  — { destination: string }
// /api/session/{id}/cancel     POST
func (rt *Router) handleSessionScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/session/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		sess, err := rt.sessions.Get(id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, sess)
		return
	}
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}

	switch parts[1] {
	case "waiting":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		remaining, err := rt.sessions.WaitingRemaining(id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, map[string]any{"remaining_seconds": int(remaining / time.Second)})
	case "choose":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Option string `json:"option"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sess, err := rt.sessions.Choose(id, services.InterventionOption(req.Option))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, sess)
	case "resolve":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Destination string `json:"destination"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		card, err := rt.sessions.Resolve(id, services.Destination(req.Destination))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, card)
	case "cancel":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := rt.sessions.Cancel(id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	default:
		http.NotFound(w, r)
	}
}

// POST /api/pause/activate
func (rt *Router) handlePauseActivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rt.pause.Activate()
	rt.writePauseState(w)
}

// GET /api/pause
func (rt *Router) handlePauseState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rt.writePauseState(w)
}

// POST /api/pause/reset
func (rt *Router) handlePauseReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rt.pause.Reset()
	rt.writePauseState(w)
}

func (rt *Router) writePauseState(w http.ResponseWriter) {
	state, remaining, prompt := rt.pause.State()
	writeJSON(w, map[string]any{
		"state":             state,
		"remaining_seconds": int(remaining / time.Second),
		"prompt":            prompt,
	})
}

// POST /api/breathe/start — { mode: string }
func (rt *Router) handleBreatheStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := rt.breathe.Start(services.BreathMode(req.Mode)); err != nil {
		writeErr(w, err)
		return
	}
	rt.writeBreatheState(w)
}

// POST /api/breathe/stop
func (rt *Router) handleBreatheStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rt.breathe.Stop()
	rt.writeBreatheState(w)
}

// GET /api/breathe
func (rt *Router) handleBreatheState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rt.writeBreatheState(w)
}

func (rt *Router) writeBreatheState(w http.ResponseWriter) {
	mode, phase, cycle := rt.breathe.State()
	writeJSON(w, map[string]any{"mode": mode, "phase": phase, "cycle": cycle})
}

// GET /api/moods | POST /api/moods — { mood: string, note?: string }
func (rt *Router) handleMoods(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := rt.moods.ListEntries()
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, entries)
	case http.MethodPost:
		var req struct {
			Mood string `json:"mood"`
			Note string `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		entry, err := rt.moods.AddEntry(req.Mood, req.Note)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, entry)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
