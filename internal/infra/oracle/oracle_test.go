package oracle

import (
	"context"
	"errors"
	"testing"
)

func TestRuleOracleTargetsUrgentNeed(t *testing.T) {
	o := NewRuleOracle()
	d, err := o.Decide(context.Background(), Situation{
		Name:      "Alex",
		Urgent:    []string{"hunger"},
		TimeOfDay: 12,
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.Action != "use_object" || d.Target != "fridge" {
		t.Errorf("decision: %+v", d)
	}
}

func TestRuleOraclePriorityOrder(t *testing.T) {
	o := NewRuleOracle()
	d, _ := o.Decide(context.Background(), Situation{
		Urgent:    []string{"fun", "bladder", "hunger"},
		TimeOfDay: 12,
	})
	if d.Target != "toilet" {
		t.Errorf("bladder must win: %+v", d)
	}
}

func TestRuleOracleSleepsAtNight(t *testing.T) {
	o := NewRuleOracle()
	d, _ := o.Decide(context.Background(), Situation{TimeOfDay: 23})
	if d.Target != "bed" {
		t.Errorf("late night decision: %+v", d)
	}
	d, _ = o.Decide(context.Background(), Situation{TimeOfDay: 12})
	if d.Action != "idle" {
		t.Errorf("daytime with no urgent needs must idle: %+v", d)
	}
}

func TestRuleOracleContinuesActivity(t *testing.T) {
	o := NewRuleOracle()
	d, _ := o.Decide(context.Background(), Situation{
		Urgent:   []string{"hunger"},
		Activity: "sleeping",
	})
	if d.Action != "continue" {
		t.Errorf("busy character must continue: %+v", d)
	}
}

type failingOracle struct{}

func (failingOracle) Decide(context.Context, Situation) (Decision, error) {
	return Decision{}, errors.New("provider down")
}

func TestFallbackDegradesToIdle(t *testing.T) {
	o := NewWithFallback(failingOracle{})
	d, err := o.Decide(context.Background(), Situation{Urgent: []string{"hunger"}})
	if err != nil {
		t.Fatal("fallback must swallow provider errors")
	}
	if d.Action != "idle" {
		t.Errorf("failed provider must yield idle: %+v", d)
	}
}

func TestMemoryKnowledgeRecallOrder(t *testing.T) {
	k := NewMemoryKnowledge(3)
	ctx := context.Background()
	for _, f := range []string{"one", "two", "three", "four"} {
		if err := k.Remember(ctx, "Alex", f); err != nil {
			t.Fatal(err)
		}
	}
	facts, err := k.Recall(ctx, "Alex", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 3 {
		t.Fatalf("cap not applied: %v", facts)
	}
	if facts[0] != "four" {
		t.Errorf("newest fact first: %v", facts)
	}
	two, _ := k.Recall(ctx, "Alex", 2)
	if len(two) != 2 {
		t.Errorf("limit: %v", two)
	}
	none, _ := k.Recall(ctx, "Sam", 5)
	if len(none) != 0 {
		t.Errorf("unknown character: %v", none)
	}
}
