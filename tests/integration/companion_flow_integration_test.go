//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("MONSTER_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

func doPost(t *testing.T, client *http.Client, url string, body any, out any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body for %s: %v", url, err)
		}
	}
	resp, err := client.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		t.Fatalf("POST %s: status %d: %s", url, resp.StatusCode, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %s response %q: %v", url, raw, err)
		}
	}
}

func doGet(t *testing.T, client *http.Client, url string, out any) int {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if out != nil && resp.StatusCode < 300 {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %s response %q: %v", url, raw, err)
		}
	}
	return resp.StatusCode
}

// Exercises the full companion journey against a running server: onboarding,
// daily task, a complete SOS session through to its reward, and reset.
func TestCompanionJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	var health struct {
		OK bool `json:"ok"`
	}
	if code := doGet(t, client, base+"/health", &health); code != http.StatusOK || !health.OK {
		t.Fatalf("health check failed: %d %+v", code, health)
	}

	// Start from a clean slate; the server may hold earlier state.
	doPost(t, client, base+"/api/profile/reset", nil, nil)

	answers := map[string]string{
		"trigger_timing":        "stressed",
		"companion_style":       "understand",
		"preferred_personality": "empathy",
		"emotion_expression":    "suppress",
	}
	var profile struct {
		Archetype  string `json:"archetype"`
		Name       string `json:"name"`
		MatchScore int    `json:"match_score"`
	}
	doPost(t, client, base+"/api/onboarding/complete", map[string]any{"answers": answers}, &profile)
	if profile.Archetype != "empathy" {
		t.Fatalf("archetype = %q, want empathy", profile.Archetype)
	}
	if profile.Name == "" || profile.MatchScore <= 0 {
		t.Fatalf("profile = %+v", profile)
	}

	var task struct {
		Credited  bool `json:"credited"`
		CakeCount int  `json:"cake_count"`
	}
	doPost(t, client, base+"/api/tasks/mindfulness/complete", nil, &task)
	if !task.Credited || task.CakeCount != 1 {
		t.Fatalf("daily task = %+v", task)
	}
	doPost(t, client, base+"/api/tasks/mindfulness/complete", nil, &task)
	if task.Credited {
		t.Fatalf("daily task credited twice: %+v", task)
	}

	var sess struct {
		ID    string `json:"id"`
		Phase string `json:"phase"`
	}
	doPost(t, client, base+"/api/session/start", nil, &sess)
	if sess.ID == "" || sess.Phase != "opening" {
		t.Fatalf("session start = %+v", sess)
	}

	waitForPhase(t, client, base, sess.ID, "optionSelect", 20*time.Second)
	doPost(t, client, base+"/api/session/"+sess.ID+"/choose", map[string]string{"option": "understand"}, &sess)
	if sess.Phase != "branchDialogue" {
		t.Fatalf("phase after choose = %q", sess.Phase)
	}

	waitForPhase(t, client, base, sess.ID, "waiting", 20*time.Second)
	var waiting struct {
		RemainingSeconds int `json:"remaining_seconds"`
	}
	doGet(t, client, base+"/api/session/"+sess.ID+"/waiting", &waiting)
	if waiting.RemainingSeconds <= 0 || waiting.RemainingSeconds > 60 {
		t.Fatalf("waiting remaining = %d", waiting.RemainingSeconds)
	}

	waitForPhase(t, client, base, sess.ID, "resolution", 90*time.Second)
	var card struct {
		Date         string `json:"date"`
		SuccessCount int    `json:"success_count"`
		Quote        string `json:"quote"`
	}
	doPost(t, client, base+"/api/session/"+sess.ID+"/resolve", map[string]string{"destination": "home"}, &card)
	if card.SuccessCount != 1 || card.Quote == "" || card.Date == "" {
		t.Fatalf("guard card = %+v", card)
	}

	var fetched struct {
		Profile struct {
			CakeCount       int `json:"cake_count"`
			SOSSuccessCount int `json:"sos_success_count"`
		} `json:"profile"`
	}
	doGet(t, client, base+"/api/profile", &fetched)
	if fetched.Profile.CakeCount != 2 || fetched.Profile.SOSSuccessCount != 1 {
		t.Fatalf("profile counters = %+v", fetched.Profile)
	}

	doPost(t, client, base+"/api/profile/reset", nil, nil)
	if code := doGet(t, client, base+"/api/profile", nil); code != http.StatusNotFound {
		t.Fatalf("profile after reset = %d, want 404", code)
	}
}

func waitForPhase(t *testing.T, client *http.Client, base, sessionID, phase string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var sess struct {
			Phase string `json:"phase"`
		}
		if code := doGet(t, client, base+"/api/session/"+sessionID, &sess); code != http.StatusOK {
			t.Fatalf("session poll status %d", code)
		}
		if sess.Phase == phase {
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("session never reached phase %s within %v", phase, timeout)
}
