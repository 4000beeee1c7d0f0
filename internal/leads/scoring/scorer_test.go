package scoring

import (
	"math"
	"strings"
	"testing"
	"time"

	"smart_crm_backend/internal/leads/domain"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_MaximumFavourableInputsScoreHundred(t *testing.T) {
	in := Input{
		BusinessSize:    ptr(domain.BusinessSizeMedium),
		EstimatedBudget: ptr(45000.0),
		Source:          ptr(domain.SourceReferral),
		InterestLevel:   ptr(10),
		AIReadiness:     ptr(10),
		LastContactDate: ptr(fixedNow.Add(-48 * time.Hour)),
	}

	result := Score(in, fixedNow)

	if result.Total != 100 {
		t.Fatalf("expected total 100, got %.2f", result.Total)
	}
	if result.Banner != BannerHot {
		t.Fatalf("expected banner %q, got %q", BannerHot, result.Banner)
	}
}

func TestScore_MixedLeadMatchesWorkedExample(t *testing.T) {
	in := Input{
		BusinessSize:    ptr(domain.BusinessSizeMedium),
		EstimatedBudget: ptr(20000.0),
		Source:          ptr(domain.SourceWebsite),
		InterestLevel:   ptr(8),
		AIReadiness:     ptr(6),
		LastContactDate: ptr(fixedNow.AddDate(0, 0, -5)),
	}

	result := Score(in, fixedNow)
	b := result.Breakdown

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"business size", b.BusinessSize.Score, 20},
		{"budget", b.Budget.Score, 20},
		{"source", b.Source.Score, 12},
		{"interest", b.Interest.Score, 12},
		{"ai readiness", b.AIReadiness.Score, 9},
		{"recency", b.Recency.Score, 10},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Fatalf("expected %s part %.1f, got %.4f", c.name, c.want, c.got)
		}
	}

	if result.Total != 83 {
		t.Fatalf("expected total 83.00, got %.2f", result.Total)
	}
	if result.Banner != BannerHot {
		t.Fatalf("expected banner %q, got %q", BannerHot, result.Banner)
	}
	if !strings.HasPrefix(result.Explanation, BannerHot+"\n\nScore breakdown (83.0/100):\n") {
		t.Fatalf("unexpected explanation header: %q", result.Explanation)
	}
	if !strings.Contains(result.Explanation, "• Interest: high interest (8/10) - ready to move forward (12.0/15)") {
		t.Fatalf("expected interest bullet in explanation, got %q", result.Explanation)
	}
	if !strings.Contains(result.Explanation, "• AI readiness: moderate AI readiness (6/10) - needs preparation (9.0/15)") {
		t.Fatalf("expected AI readiness bullet in explanation, got %q", result.Explanation)
	}
}

func TestScore_AllAbsentUsesDefaultsWithoutPanicking(t *testing.T) {
	result := Score(Input{}, fixedNow)

	// Source and recency carry non-zero floors for missing data.
	if result.Total != unknownSourceScore+2 {
		t.Fatalf("expected total %.2f, got %.2f", unknownSourceScore+2, result.Total)
	}
	if result.Banner != BannerVeryCold {
		t.Fatalf("expected banner %q, got %q", BannerVeryCold, result.Banner)
	}

	lines := strings.Split(result.Explanation, "\n")
	bullets := 0
	for _, line := range lines {
		if !strings.HasPrefix(line, "• ") {
			continue
		}
		bullets++
		if !strings.Contains(line, "unknown") && !strings.Contains(line, "absent") {
			t.Fatalf("expected missing datum to be noted, got %q", line)
		}
	}
	if bullets != 6 {
		t.Fatalf("expected 6 breakdown lines, got %d", bullets)
	}
}

func TestScore_IsDeterministicForFixedClock(t *testing.T) {
	in := Input{
		BusinessSize:    ptr(domain.BusinessSizeSmall),
		EstimatedBudget: ptr(7000.0),
		InterestLevel:   ptr(3),
		LastContactDate: ptr(fixedNow.AddDate(0, 0, -20)),
	}

	first := Score(in, fixedNow)
	second := Score(in, fixedNow)

	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestScore_MonotonicInBudget(t *testing.T) {
	budgets := []float64{-100, 0, 4999, 5000, 14999, 15000, 29999, 30000, 250000}
	prev := -1.0
	for _, budget := range budgets {
		in := Input{
			BusinessSize:  ptr(domain.BusinessSizeSmall),
			Source:        ptr(domain.SourceEvent),
			InterestLevel: ptr(5),
			AIReadiness:   ptr(5),
		}
		in.EstimatedBudget = ptr(budget)

		total := Score(in, fixedNow).Total
		if total < prev {
			t.Fatalf("expected non-decreasing score at budget %.0f, got %.2f after %.2f", budget, total, prev)
		}
		prev = total
	}
}

func TestBannerFor_Thresholds(t *testing.T) {
	tests := []struct {
		total float64
		want  string
	}{
		{100, BannerHot},
		{70, BannerHot},
		{69.99, BannerWarm},
		{50, BannerWarm},
		{49.99, BannerCold},
		{30, BannerCold},
		{29.99, BannerVeryCold},
		{0, BannerVeryCold},
	}
	for _, tt := range tests {
		if got := BannerFor(tt.total); got != tt.want {
			t.Fatalf("expected banner %q for %.2f, got %q", tt.want, tt.total, got)
		}
	}
}

func TestShouldScoreOnCreate(t *testing.T) {
	if ShouldScoreOnCreate(Input{InterestLevel: ptr(5)}) {
		t.Fatalf("expected no scoring without AI readiness")
	}
	if ShouldScoreOnCreate(Input{AIReadiness: ptr(5)}) {
		t.Fatalf("expected no scoring without interest level")
	}
	if !ShouldScoreOnCreate(Input{InterestLevel: ptr(5), AIReadiness: ptr(5)}) {
		t.Fatalf("expected scoring when both ratings are present")
	}
}

func TestScoringFieldsChanged(t *testing.T) {
	if ScoringFieldsChanged([]string{"notes", "status", "last_contact_date"}) {
		t.Fatalf("expected non-scoring fields to be ignored")
	}
	for _, f := range []string{FieldInterestLevel, FieldAIReadiness, FieldBusinessSize, FieldEstimatedBudget, FieldSource} {
		if !ScoringFieldsChanged([]string{"notes", f}) {
			t.Fatalf("expected %s to trigger a re-score", f)
		}
	}
}
