// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package refresh

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEvaluatorCoversFullKeyUniverse(t *testing.T) {
	h := newTestHarness()

	candidates, err := h.sched.evaluator.Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(candidates) != 15 {
		t.Fatalf("got %d candidates, want 15", len(candidates))
	}

	// Nothing is populated, so every candidate is stale at its class weight
	// and the highest-weight class (calendar) sorts first.
	for _, c := range candidates {
		if c.Priority == 0 {
			t.Errorf("%s: priority 0, want class weight for missing entry", c.Key)
		}
		if !c.Missing() {
			t.Errorf("%s: expected missing marker", c.Key)
		}
	}
	if candidates[0].Priority != 3 {
		t.Errorf("first candidate priority = %d, want 3", candidates[0].Priority)
	}
}

func TestEvaluatorFreshEntriesGetPriorityZero(t *testing.T) {
	h := newTestHarness()
	h.seedAllFresh()

	candidates, err := h.sched.evaluator.Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	for _, c := range candidates {
		if c.Priority != 0 {
			t.Errorf("%s: priority = %d, want 0 for fresh entry", c.Key, c.Priority)
		}
	}
}

func TestEvaluatorPriorityBeatsAge(t *testing.T) {
	h := newTestHarness()
	h.seedAllFresh()

	// Top-10 is 10x its TTL overdue; the calendar is barely past its own
	// 6h TTL. The calendar still wins: weight 3 beats weight 1 regardless
	// of relative age.
	h.store.seed("top10-netflix", h.now, 10*30*time.Minute)
	h.store.seed(KeyCalendarTV, h.now, 6*time.Hour+time.Second)

	candidates, err := h.sched.evaluator.Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if candidates[0].Key != KeyCalendarTV {
		t.Errorf("first candidate = %s, want %s", candidates[0].Key, KeyCalendarTV)
	}
	if candidates[1].Key != "top10-netflix" {
		t.Errorf("second candidate = %s, want top10-netflix", candidates[1].Key)
	}
}

func TestEvaluatorAgeBreaksTiesWithinPriority(t *testing.T) {
	h := newTestHarness()
	h.seedAllFresh()

	h.store.seed("top10-netflix", h.now, 45*time.Minute)
	h.store.seed("top10-prime", h.now, 60*time.Minute)

	candidates, err := h.sched.evaluator.Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if candidates[0].Key != "top10-prime" {
		t.Errorf("first candidate = %s, want top10-prime (most overdue)", candidates[0].Key)
	}
}

func TestEvaluatorMissingBeatsMerelyStale(t *testing.T) {
	h := newTestHarness()
	h.seedAllFresh()

	h.store.seed("top10-prime", h.now, 60*time.Minute)
	delete(h.store.entries, "top10-netflix") // never populated

	candidates, err := h.sched.evaluator.Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if candidates[0].Key != "top10-netflix" {
		t.Errorf("first candidate = %s, want never-populated top10-netflix", candidates[0].Key)
	}
}

func TestEvaluatorStoreReadFailureIsFatal(t *testing.T) {
	h := newTestHarness()
	h.store.metaErr = errors.New("disk exploded")

	if _, err := h.sched.evaluator.Evaluate(context.Background()); err == nil {
		t.Error("expected error when cache metadata is unreadable")
	}
}
