package services

import (
	"context"
	"math/rand"
	"testing"
	"time"
)

// 23:00 puts every fixture session in the late-night script bucket.
func newSessionFixture(t *testing.T) (*fakeScheduler, *stubLedger, *SessionService) {
	t.Helper()
	fs := newFakeScheduler(time.Date(2026, 1, 2, 23, 0, 0, 0, time.UTC))
	ledger := &stubLedger{}
	provider := NewScriptProvider(rand.New(rand.NewSource(1)))
	svc := NewSessionService(DefaultSessionConfig(), provider, ledger, fs, fs.Now)
	return fs, ledger, svc
}

func monsterLines(transcript []TranscriptLine) []string {
	var out []string
	for _, line := range transcript {
		if line.Speaker == SpeakerMonster {
			out = append(out, line.Text)
		}
	}
	return out
}

func TestSessionFullFlow(t *testing.T) {
	fs, ledger, svc := newSessionFixture(t)

	sess, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.Phase != PhaseOpening {
		t.Fatalf("phase = %s, want opening", sess.Phase)
	}
	if sess.Bucket != BucketLateNight {
		t.Fatalf("bucket = %s, want lateNight", sess.Bucket)
	}
	if len(sess.Transcript) != 0 {
		t.Fatalf("transcript starts with %d lines, want 0", len(sess.Transcript))
	}

	// Opening lines land at 2s, 4s, 6s; the last one flips the phase.
	fs.Advance(4 * time.Second)
	mid, _ := svc.Get(sess.ID)
	if len(mid.Transcript) != 2 || mid.Phase != PhaseOpening {
		t.Fatalf("mid-opening: %d lines, phase %s", len(mid.Transcript), mid.Phase)
	}
	fs.Advance(2 * time.Second)
	opened, _ := svc.Get(sess.ID)
	if opened.Phase != PhaseOptionSelect {
		t.Fatalf("phase after opener = %s, want optionSelect", opened.Phase)
	}
	if got := monsterLines(opened.Transcript); len(got) != 3 || got[0] != openingScripts[BucketLateNight][0] {
		t.Fatalf("opening transcript = %v", got)
	}

	chosen, err := svc.Choose(sess.ID, OptionUnderstand)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if chosen.Phase != PhaseBranchDialogue {
		t.Fatalf("phase after choose = %s, want branchDialogue", chosen.Phase)
	}
	last := chosen.Transcript[len(chosen.Transcript)-1]
	if last.Speaker != SpeakerUser || last.Text != interventionBranches[OptionUnderstand].UserLine {
		t.Fatalf("user line = %+v", last)
	}
	if chosen.MoodLabel != "listening" {
		t.Fatalf("mood label = %q, want listening", chosen.MoodLabel)
	}

	// Branch lines land at 2s, 4s, 6s, then waiting begins.
	fs.Advance(6 * time.Second)
	waiting, _ := svc.Get(sess.ID)
	if waiting.Phase != PhaseWaiting {
		t.Fatalf("phase after branch = %s, want waiting", waiting.Phase)
	}
	if remaining, _ := svc.WaitingRemaining(sess.ID); remaining != 60*time.Second {
		t.Fatalf("waiting remaining = %v, want 60s", remaining)
	}

	// Checkpoints at 15s, 30s, 45s, 60s of the waiting window.
	fs.Advance(15 * time.Second)
	cp, _ := svc.Get(sess.ID)
	if got := monsterLines(cp.Transcript); got[len(got)-1] != waitingLines[0] {
		t.Fatalf("first checkpoint line = %q, want %q", got[len(got)-1], waitingLines[0])
	}
	if remaining, _ := svc.WaitingRemaining(sess.ID); remaining != 45*time.Second {
		t.Fatalf("waiting remaining = %v, want 45s", remaining)
	}

	fs.Advance(45 * time.Second)
	done, _ := svc.Get(sess.ID)
	if done.Phase != PhaseResolution {
		t.Fatalf("phase after waiting = %s, want resolution", done.Phase)
	}
	got := monsterLines(done.Transcript)
	if len(got) != 3+3+4 {
		t.Fatalf("monster lines = %d, want 10: %v", len(got), got)
	}
	for i, want := range waitingLines {
		if got[6+i] != want {
			t.Fatalf("checkpoint %d = %q, want %q", i, got[6+i], want)
		}
	}

	card, err := svc.Resolve(sess.ID, DestinationHome)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ledger.sessionRewards != 1 {
		t.Fatalf("session rewards = %d, want 1", ledger.sessionRewards)
	}
	if card.Date != "2026.01.02" {
		t.Fatalf("card date = %q", card.Date)
	}
	if card.TimeOfDay != BucketLabel[BucketLateNight] {
		t.Fatalf("card time of day = %q", card.TimeOfDay)
	}
	if card.SuccessCount != 1 {
		t.Fatalf("card success count = %d, want 1", card.SuccessCount)
	}

	if _, err := svc.Get(sess.ID); err == nil {
		t.Fatal("resolved session still retrievable")
	}
	if _, err := svc.Resolve(sess.ID, DestinationHome); err == nil {
		t.Fatal("second resolve succeeded")
	}
	if ledger.sessionRewards != 1 {
		t.Fatalf("reward granted %d times, want exactly 1", ledger.sessionRewards)
	}
}

func TestSessionChooseGuards(t *testing.T) {
	fs, _, svc := newSessionFixture(t)
	sess, _ := svc.Start(context.Background())

	if _, err := svc.Choose(sess.ID, InterventionOption("binge")); err == nil {
		t.Fatal("unknown option accepted")
	} else if se, _ := AsServiceError(err); se.Code != ErrorInvalid {
		t.Fatalf("unknown option error = %v, want invalid", err)
	}

	// Still in opening, options are not on the table yet.
	if _, err := svc.Choose(sess.ID, OptionQuiet); err == nil {
		t.Fatal("choose during opening accepted")
	} else if se, _ := AsServiceError(err); se.Code != ErrorConflict {
		t.Fatalf("early choose error = %v, want conflict", err)
	}

	fs.Advance(6 * time.Second)
	if _, err := svc.Choose(sess.ID, OptionQuiet); err != nil {
		t.Fatalf("Choose in optionSelect: %v", err)
	}
	// Choosing twice is a phase violation, not a re-branch.
	if _, err := svc.Choose(sess.ID, OptionDistract); err == nil {
		t.Fatal("second choose accepted")
	}
}

func TestSessionResolveRequiresResolutionPhase(t *testing.T) {
	fs, ledger, svc := newSessionFixture(t)
	sess, _ := svc.Start(context.Background())
	fs.Advance(6 * time.Second)
	svc.Choose(sess.ID, OptionGoal)
	fs.Advance(6 * time.Second)

	// Mid-waiting: not resolvable yet.
	fs.Advance(30 * time.Second)
	if _, err := svc.Resolve(sess.ID, DestinationCommunity); err == nil {
		t.Fatal("resolve during waiting accepted")
	}
	if _, err := svc.Resolve(sess.ID, Destination("bed")); err == nil {
		t.Fatal("unknown destination accepted")
	}
	if ledger.sessionRewards != 0 {
		t.Fatalf("rewards granted before resolution: %d", ledger.sessionRewards)
	}

	fs.Advance(30 * time.Second)
	if _, err := svc.Resolve(sess.ID, DestinationCommunity); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ledger.sessionRewards != 1 {
		t.Fatalf("rewards = %d, want 1", ledger.sessionRewards)
	}
}

func TestSessionCancelDuringWaiting(t *testing.T) {
	fs, ledger, svc := newSessionFixture(t)
	sess, _ := svc.Start(context.Background())
	fs.Advance(6 * time.Second)
	svc.Choose(sess.ID, OptionQuiet)
	fs.Advance(6 * time.Second)

	// Two of four checkpoints in, then bail out.
	fs.Advance(30 * time.Second)
	internal := svc.sessions[sess.ID]
	snapshot, _ := svc.Get(sess.ID)
	if got := monsterLines(snapshot.Transcript); got[len(got)-1] != waitingLines[1] {
		t.Fatalf("last line before cancel = %q, want %q", got[len(got)-1], waitingLines[1])
	}
	if err := svc.Cancel(sess.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	linesAtCancel := len(internal.Transcript)

	fs.Advance(120 * time.Second)
	if len(internal.Transcript) != linesAtCancel {
		t.Fatal("transcript grew after cancel")
	}
	if internal.Phase == PhaseResolution {
		t.Fatal("cancelled session reached resolution")
	}
	if ledger.sessionRewards != 0 {
		t.Fatalf("cancelled session granted %d rewards", ledger.sessionRewards)
	}
	if _, err := svc.Get(sess.ID); err == nil {
		t.Fatal("cancelled session still retrievable")
	}
	if remaining, err := svc.WaitingRemaining(sess.ID); err == nil {
		t.Fatalf("cancelled session still reports remaining %v", remaining)
	}
}

func TestSessionCancelDuringOptionSelect(t *testing.T) {
	fs, ledger, svc := newSessionFixture(t)
	sess, _ := svc.Start(context.Background())
	fs.Advance(6 * time.Second)
	if err := svc.Cancel(sess.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	fs.Advance(5 * time.Minute)
	if ledger.sessionRewards != 0 {
		t.Fatal("abandoned session was rewarded")
	}
}

func TestSessionStartSupersedesPrevious(t *testing.T) {
	fs, ledger, svc := newSessionFixture(t)
	first, _ := svc.Start(context.Background())
	fs.Advance(6 * time.Second)
	svc.Choose(first.ID, OptionDistract)
	internalFirst := svc.sessions[first.ID]

	second, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if _, err := svc.Get(first.ID); err == nil {
		t.Fatal("superseded session still retrievable")
	}
	frozen := len(internalFirst.Transcript)

	// The first session's timers must not leak into the second's run.
	fs.Advance(5 * time.Minute)
	if len(internalFirst.Transcript) != frozen {
		t.Fatal("superseded session's transcript grew")
	}
	got, _ := svc.Get(second.ID)
	if got.Phase != PhaseOptionSelect {
		t.Fatalf("second session phase = %s, want optionSelect", got.Phase)
	}
	if ledger.sessionRewards != 0 {
		t.Fatal("superseding granted a reward")
	}
}

func TestSessionCancelAll(t *testing.T) {
	fs, ledger, svc := newSessionFixture(t)
	sess, _ := svc.Start(context.Background())
	fs.Advance(6 * time.Second)
	svc.Choose(sess.ID, OptionUnderstand)
	svc.CancelAll()
	fs.Advance(5 * time.Minute)
	if _, err := svc.Get(sess.ID); err == nil {
		t.Fatal("session survived CancelAll")
	}
	if ledger.sessionRewards != 0 {
		t.Fatal("CancelAll granted a reward")
	}
}

func TestSessionStartWithFallbackProvider(t *testing.T) {
	fs := newFakeScheduler(time.Date(2026, 1, 2, 23, 0, 0, 0, time.UTC))
	remote := &failingProvider{}
	provider := WithFallback(remote, NewScriptProvider(rand.New(rand.NewSource(1))))
	svc := NewSessionService(DefaultSessionConfig(), provider, &stubLedger{}, fs, fs.Now)

	sess, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("Start with failing primary: %v", err)
	}
	if remote.calls == 0 {
		t.Fatal("primary provider was never tried")
	}
	fs.Advance(6 * time.Second)
	got, _ := svc.Get(sess.ID)
	if lines := monsterLines(got.Transcript); len(lines) != len(openingScripts[BucketLateNight]) {
		t.Fatalf("fallback opener = %v", lines)
	}
}

func TestSessionOptionsFixedOrder(t *testing.T) {
	_, _, svc := newSessionFixture(t)
	options := svc.Options()
	if len(options) != len(sessionOptionOrder) {
		t.Fatalf("options = %d, want %d", len(options), len(sessionOptionOrder))
	}
	for i, id := range sessionOptionOrder {
		if options[i].ID != id {
			t.Fatalf("option %d = %s, want %s", i, options[i].ID, id)
		}
		if options[i].Label == "" {
			t.Fatalf("option %s has no label", id)
		}
	}
}
