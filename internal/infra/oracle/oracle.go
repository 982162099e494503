// Package oracle abstracts the decision brain of a character. The live
// deployment plugs a language model behind these interfaces; the bundled
// rule provider keeps villagers functional without one, and every caller
// must tolerate the idle fallback.
package oracle

import (
	"context"
	"sync"

	"github.com/aldealabs/aldea/internal/platform/metrics"
)

// Decision is what a character chooses to do next.
type Decision struct {
	Action    string `json:"action"`           // "use_object", "move", "idle"
	Target    string `json:"target,omitempty"` // object id or position
	Rationale string `json:"rationale,omitempty"`
}

// Situation is everything the oracle sees when deciding.
type Situation struct {
	Name      string             `json:"name"`
	Needs     map[string]float64 `json:"needs"`
	Urgent    []string           `json:"urgent"`
	TimeOfDay float64            `json:"time_of_day"`
	Weather   string             `json:"weather"`
	Activity  string             `json:"activity,omitempty"` // current activity kind, if busy
}

// Oracle decides the next action for a character.
type Oracle interface {
	Decide(ctx context.Context, s Situation) (Decision, error)
}

// Knowledge is a character's long-term memory store.
type Knowledge interface {
	Remember(ctx context.Context, who, fact string) error
	Recall(ctx context.Context, who string, limit int) ([]string, error)
}

// Speech is the voice pipeline. The live deployment synthesizes audio;
// NullSpeech keeps characters mute but functional.
type Speech interface {
	Speak(ctx context.Context, who, text string) error
}

// NullSpeech discards everything.
type NullSpeech struct{}

func (NullSpeech) Speak(context.Context, string, string) error { return nil }

// Idle is the universal fallback decision.
func Idle() Decision {
	return Decision{Action: "idle", Rationale: "nothing pressing"}
}

// needTargets maps an urgent need to the object that relieves it.
var needTargets = map[string]string{
	"energy":  "bed",
	"hunger":  "fridge",
	"bladder": "toilet",
	"hygiene": "shower",
	"fun":     "tv",
	"social":  "phone",
}

// needPriority breaks ties between urgent needs. Bladder and energy first;
// a villager asleep on their feet helps nobody.
var needPriority = []string{"bladder", "energy", "hunger", "hygiene", "fun", "social"}

// RuleOracle is the scripted provider: it targets the object relieving the
// most pressing urgent need, sleeps at night, and otherwise idles.
type RuleOracle struct{}

func NewRuleOracle() *RuleOracle { return &RuleOracle{} }

func (o *RuleOracle) Decide(_ context.Context, s Situation) (Decision, error) {
	// Finish what was started.
	if s.Activity != "" {
		return Decision{Action: "continue", Rationale: "busy with " + s.Activity}, nil
	}

	urgent := make(map[string]bool, len(s.Urgent))
	for _, n := range s.Urgent {
		urgent[n] = true
	}
	for _, need := range needPriority {
		if !urgent[need] {
			continue
		}
		if target, ok := needTargets[need]; ok {
			return Decision{
				Action:    "use_object",
				Target:    target,
				Rationale: need + " is urgent",
			}, nil
		}
	}

	if s.TimeOfDay >= 22 || s.TimeOfDay < 6 {
		return Decision{Action: "use_object", Target: "bed", Rationale: "it is late"}, nil
	}
	return Idle(), nil
}

// WithFallback wraps an oracle so a failing provider degrades to idle
// instead of stalling the character loop.
type WithFallback struct {
	inner Oracle
}

func NewWithFallback(inner Oracle) *WithFallback {
	return &WithFallback{inner: inner}
}

func (w *WithFallback) Decide(ctx context.Context, s Situation) (Decision, error) {
	d, err := w.inner.Decide(ctx, s)
	if err != nil {
		metrics.Get().RecordOracleCall(true)
		return Idle(), nil
	}
	metrics.Get().RecordOracleCall(false)
	return d, nil
}

// MemoryKnowledge is the in-process Knowledge store: newest facts first,
// capped per character.
type MemoryKnowledge struct {
	mu    sync.Mutex
	facts map[string][]string
	cap   int
}

func NewMemoryKnowledge(capPerCharacter int) *MemoryKnowledge {
	if capPerCharacter <= 0 {
		capPerCharacter = 100
	}
	return &MemoryKnowledge{
		facts: make(map[string][]string),
		cap:   capPerCharacter,
	}
}

func (m *MemoryKnowledge) Remember(_ context.Context, who, fact string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	facts := append([]string{fact}, m.facts[who]...)
	if len(facts) > m.cap {
		facts = facts[:m.cap]
	}
	m.facts[who] = facts
	return nil
}

func (m *MemoryKnowledge) Recall(_ context.Context, who string, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	facts := m.facts[who]
	if limit <= 0 || limit > len(facts) {
		limit = len(facts)
	}
	out := make([]string, limit)
	copy(out, facts[:limit])
	return out, nil
}
