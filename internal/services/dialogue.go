package services

import (
	"context"
	"math/rand"
	"time"
)

// DialogueLine is one line of intervention dialogue plus the reveal delay
// the presentation layer should honor before showing the next line.
type DialogueLine struct {
	Text  string        `json:"text"`
	Delay time.Duration `json:"delay"`
}

// DialogueProvider is the abstract source of intervention-session dialogue.
// The session machine works correctly against the pure-local canned
// implementation; a remote-backed one is optional and must never be required.
type DialogueProvider interface {
	// OpeningLines starts a session and returns the opener script.
	OpeningLines(ctx context.Context, bucket HourBucket) ([]DialogueLine, error)
	// Reply continues the dialogue given free-text user input.
	Reply(ctx context.Context, userText string) ([]DialogueLine, error)
}

// defaultLineDelay is the fixed per-line reveal delay for canned scripts.
const defaultLineDelay = 2 * time.Second

// ScriptProvider serves the canned local scripts. It has no failure modes.
type ScriptProvider struct {
	rng *rand.Rand
}

func NewScriptProvider(rng *rand.Rand) *ScriptProvider {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ScriptProvider{rng: rng}
}

func (p *ScriptProvider) OpeningLines(_ context.Context, bucket HourBucket) ([]DialogueLine, error) {
	script, ok := openingScripts[bucket]
	if !ok {
		script = openingScripts[BucketEvening]
	}
	out := make([]DialogueLine, 0, len(script))
	for _, text := range script {
		out = append(out, DialogueLine{Text: text, Delay: defaultLineDelay})
	}
	return out, nil
}

func (p *ScriptProvider) Reply(_ context.Context, _ string) ([]DialogueLine, error) {
	text := cannedReplies[p.rng.Intn(len(cannedReplies))]
	return []DialogueLine{{Text: text, Delay: defaultLineDelay}}, nil
}

// Reflection returns the post-pause prompt.
func (p *ScriptProvider) Reflection(_ context.Context) (string, error) {
	return defaultReflection, nil
}

// fallbackProvider is the two-tier strategy: try the primary, serve the
// local tier on any error. Callers never learn which tier answered.
type fallbackProvider struct {
	primary DialogueProvider
	local   DialogueProvider
}

// WithFallback wraps primary so that every failure silently degrades to
// local. A nil primary short-circuits to local.
func WithFallback(primary, local DialogueProvider) DialogueProvider {
	if primary == nil {
		return local
	}
	return &fallbackProvider{primary: primary, local: local}
}

func (f *fallbackProvider) OpeningLines(ctx context.Context, bucket HourBucket) ([]DialogueLine, error) {
	if lines, err := f.primary.OpeningLines(ctx, bucket); err == nil && len(lines) > 0 {
		return lines, nil
	}
	return f.local.OpeningLines(ctx, bucket)
}

func (f *fallbackProvider) Reply(ctx context.Context, userText string) ([]DialogueLine, error) {
	if lines, err := f.primary.Reply(ctx, userText); err == nil && len(lines) > 0 {
		return lines, nil
	}
	return f.local.Reply(ctx, userText)
}
