// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package refresh

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/proscenium/internal/rankings"
)

func TestRunOnceAllFresh(t *testing.T) {
	h := newTestHarness()
	h.seedAllFresh()

	result, err := h.sched.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if result.Processed != "" {
		t.Errorf("processed = %q, want none", result.Processed)
	}
	if len(result.Updates) != 1 || result.Updates[0] != "All caches fresh" {
		t.Errorf("updates = %v", result.Updates)
	}
	if result.NextKey != NoneKey {
		t.Errorf("nextKey = %q, want %q", result.NextKey, NoneKey)
	}
	if len(h.store.puts) != 0 {
		t.Errorf("store writes = %v, want none", h.store.puts)
	}
	if result.UpdateID == "" {
		t.Error("missing update id")
	}
}

func TestRunOnceRefreshesExactlyOneClassInstance(t *testing.T) {
	h := newTestHarness()
	h.seedAllFresh()

	// Two different classes stale at once.
	h.store.seed("top10-netflix", h.now, 45*time.Minute)
	h.store.seed("top10-prime", h.now, 40*time.Minute)
	h.rankings.overall = &rankings.QuickOverall{
		Providers: map[string][]rankings.RankedEntry{
			"netflix": {{ID: 1, MediaType: "movie", Rank: 1}},
			"prime":   {{ID: 2, MediaType: "movie", Rank: 1}},
		},
	}
	h.content.addMovie(1, "A")
	h.content.addMovie(2, "B")

	result, err := h.sched.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if result.Processed != "top10-netflix" {
		t.Errorf("processed = %q, want top10-netflix", result.Processed)
	}
	if len(h.store.puts) != 1 || h.store.puts[0] != "top10-netflix" {
		t.Errorf("store writes = %v, want exactly [top10-netflix]", h.store.puts)
	}
	// The other stale key is previewed, not refreshed.
	if result.NextKey != "top10-prime" {
		t.Errorf("nextKey = %q, want top10-prime", result.NextKey)
	}
}

func TestRunOnceStaleTop10BeatsFreshCalendar(t *testing.T) {
	h := newTestHarness()
	h.seedAllFresh()

	// top10-netflix 45min old (TTL 30min) is stale; calendar-tv 30min old
	// (TTL 6h) is not. The calendar's higher weight is irrelevant while it
	// is fresh.
	h.store.seed("top10-netflix", h.now, 45*time.Minute)
	h.store.seed(KeyCalendarTV, h.now, 30*time.Minute)
	h.rankings.overall = &rankings.QuickOverall{
		Providers: map[string][]rankings.RankedEntry{
			"netflix": {{ID: 1, MediaType: "movie", Rank: 1}},
		},
	}
	h.content.addMovie(1, "A")

	result, err := h.sched.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if result.Processed != "top10-netflix" {
		t.Errorf("processed = %q, want top10-netflix", result.Processed)
	}
}

func TestRunOnceDowngradesRefresherFailure(t *testing.T) {
	h := newTestHarness()
	h.seedAllFresh()
	h.store.seed("top10-netflix", h.now, 45*time.Minute)
	h.rankings.overallErr = errors.New("rankings down")

	result, err := h.sched.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce should not propagate refresher errors, got %v", err)
	}

	if result.Processed != "top10-netflix" {
		t.Errorf("processed = %q", result.Processed)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "top10-netflix") {
		t.Errorf("errors = %v, want one entry keyed by candidate", result.Errors)
	}
	if len(h.store.puts) != 0 {
		t.Errorf("store writes = %v, want none after fetch failure", h.store.puts)
	}
}

func TestRunOnceEvaluatorFailurePropagates(t *testing.T) {
	h := newTestHarness()
	h.store.metaErr = errors.New("metadata unreadable")

	result, err := h.sched.RunOnce(context.Background())
	if err == nil {
		t.Error("expected evaluator read failure to abort the invocation")
	}
	// The failed invocation still identifies itself so the trigger response
	// can carry its updateId.
	if result == nil {
		t.Fatal("expected a result alongside the evaluator failure")
	}
	if result.UpdateID == "" {
		t.Error("failed invocation result has no update id")
	}
}

func TestRunOnceCoSchedulesCalendarGroup(t *testing.T) {
	h := newTestHarness()
	h.seedAllFresh()
	h.store.seed(KeyCalendarTV, h.now, 7*time.Hour)
	h.rankings.calendar = []rankings.CalendarEntry{
		{IDs: rankings.ExternalIDs{Catalog: 1}, MediaType: "movie", AirDate: "2026-08-30"},
	}
	h.content.addMovie(1, "Upcoming")

	result, err := h.sched.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if result.Processed != KeyCalendarTV {
		t.Errorf("processed = %q, want %s", result.Processed, KeyCalendarTV)
	}
	// One upstream fetch feeds all three calendar keys.
	want := []string{KeyCalendarMovies, KeyCalendarTV, KeyCalendarOverall}
	if len(h.store.puts) != len(want) {
		t.Fatalf("store writes = %v, want %v", h.store.puts, want)
	}
	for i, key := range want {
		if h.store.puts[i] != key {
			t.Errorf("write %d = %s, want %s", i, h.store.puts[i], key)
		}
	}
}

func TestRunOnceReportsElapsedAndSummaries(t *testing.T) {
	h := newTestHarness()
	h.seedAllFresh()
	h.store.seed("top10-hbo", h.now, time.Hour)
	h.rankings.overall = &rankings.QuickOverall{
		Providers: map[string][]rankings.RankedEntry{
			"hbo": {{ID: 1, MediaType: "movie", Rank: 1}, {ID: 2, MediaType: "movie", Rank: 2}},
		},
	}
	h.content.addMovie(1, "A")
	h.content.addMovie(2, "B")

	result, err := h.sched.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if len(result.Updates) != 1 || result.Updates[0] != "top10-hbo: 2 items" {
		t.Errorf("updates = %v", result.Updates)
	}
	if result.Elapsed < 0 {
		t.Errorf("elapsed = %v", result.Elapsed)
	}
}
