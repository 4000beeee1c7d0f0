package domain

import (
	"testing"
	"time"
)

func TestDefaultProbability(t *testing.T) {
	want := map[Stage]int{
		StageDiscovery:   10,
		StageProposal:    30,
		StageNegotiation: 50,
		StageContract:    80,
		StageClosedWon:   100,
		StageClosedLost:  0,
	}
	for stage, p := range want {
		if got := DefaultProbability(stage); got != p {
			t.Fatalf("expected %d for %s, got %d", p, stage, got)
		}
	}
	if got := DefaultProbability(Stage("archived")); got != 0 {
		t.Fatalf("expected 0 for unknown stage, got %d", got)
	}
}

func TestParseStage(t *testing.T) {
	if s, ok := ParseStage(" Closed_Won "); !ok || s != StageClosedWon {
		t.Fatalf("expected closed_won, got %q (%v)", s, ok)
	}
	if _, ok := ParseStage("won"); ok {
		t.Fatalf("expected unknown stage to be rejected")
	}
}

func TestApplyStageChange_ClosedWonStampsBothDates(t *testing.T) {
	now := time.Date(2026, 5, 4, 17, 45, 0, 0, time.UTC)

	change := ApplyStageChange(StageClosedWon, nil, now)

	if change.Probability != 100 {
		t.Fatalf("expected probability 100, got %d", change.Probability)
	}
	if change.ClosedAt == nil || !change.ClosedAt.Equal(now) {
		t.Fatalf("expected closed_at %v, got %v", now, change.ClosedAt)
	}
	wantDay := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	if change.ActualCloseDate == nil || !change.ActualCloseDate.Equal(wantDay) {
		t.Fatalf("expected actual close date %v, got %v", wantDay, change.ActualCloseDate)
	}
}

func TestApplyStageChange_ClosedLostStampsOnlyClosedAt(t *testing.T) {
	now := time.Now()

	change := ApplyStageChange(StageClosedLost, nil, now)

	if change.ClosedAt == nil {
		t.Fatalf("expected closed_at to be stamped")
	}
	if change.ActualCloseDate != nil {
		t.Fatalf("expected no actual close date, got %v", change.ActualCloseDate)
	}
	if change.Probability != 0 {
		t.Fatalf("expected probability 0, got %d", change.Probability)
	}
}

func TestApplyStageChange_ExplicitProbabilityWins(t *testing.T) {
	explicit := 65

	change := ApplyStageChange(StageNegotiation, &explicit, time.Now())

	if change.Probability != 65 {
		t.Fatalf("expected explicit probability 65, got %d", change.Probability)
	}
	if change.ClosedAt != nil || change.ActualCloseDate != nil {
		t.Fatalf("expected open stage to leave close stamps empty")
	}
}

func TestActualHours_SumsCurrentLogs(t *testing.T) {
	logs := []WorkLog{{Hours: 2.5}, {Hours: 4}, {Hours: 0.25, Billable: true}}
	if got := ActualHours(logs); got != 6.75 {
		t.Fatalf("expected 6.75, got %v", got)
	}

	// Deleting a log and recomputing drops its hours.
	if got := ActualHours(logs[:2]); got != 6.5 {
		t.Fatalf("expected 6.5 after removal, got %v", got)
	}
	if got := ActualHours(nil); got != 0 {
		t.Fatalf("expected 0 for no logs, got %v", got)
	}
}

func TestSummarizeHours(t *testing.T) {
	s := SummarizeHours([]WorkLog{
		{Hours: 3, Billable: true},
		{Hours: 1.5, Billable: false},
		{Hours: 2, Billable: true},
	})
	if s.TotalHours != 6.5 || s.BillableHours != 5 || s.NonBillableHours != 1.5 || s.Entries != 3 {
		t.Fatalf("unexpected summary %+v", s)
	}
}
