package scoring

import (
	"strings"
	"testing"
	"time"

	"smart_crm_backend/internal/leads/domain"
)

func TestBusinessSizeScore(t *testing.T) {
	tests := []struct {
		size *domain.BusinessSize
		want float64
	}{
		{nil, 0},
		{ptr(domain.BusinessSizeMicro), 8},
		{ptr(domain.BusinessSizeSmall), 15},
		{ptr(domain.BusinessSizeMedium), 20},
		{ptr(domain.BusinessSize("enterprise")), 0},
	}
	for _, tt := range tests {
		got := BusinessSizeScore(tt.size)
		if got.Score != tt.want {
			t.Fatalf("expected %.0f, got %.0f (%s)", tt.want, got.Score, got.Explanation)
		}
		if got.Max != MaxBusinessSize {
			t.Fatalf("expected max %.0f, got %.0f", MaxBusinessSize, got.Max)
		}
	}
}

func TestBudgetScore_Tiers(t *testing.T) {
	tests := []struct {
		budget *float64
		want   float64
	}{
		{nil, 0},
		{ptr(-50.0), 5},
		{ptr(0.0), 5},
		{ptr(4999.99), 5},
		{ptr(5000.0), 12},
		{ptr(15000.0), 20},
		{ptr(29999.0), 20},
		{ptr(30000.0), 25},
		{ptr(1e7), 25},
	}
	for _, tt := range tests {
		got := BudgetScore(tt.budget)
		if got.Score != tt.want {
			t.Fatalf("expected %.0f, got %.0f (%s)", tt.want, got.Score, got.Explanation)
		}
	}
}

func TestBudgetScore_ExplanationGroupsThousands(t *testing.T) {
	got := BudgetScore(ptr(45000.0))
	if !strings.Contains(got.Explanation, "45,000") {
		t.Fatalf("expected grouped amount in explanation, got %q", got.Explanation)
	}
}

func TestSourceScore(t *testing.T) {
	tests := []struct {
		source *domain.LeadSource
		want   float64
	}{
		{nil, 3},
		{ptr(domain.LeadSource("")), 3},
		{ptr(domain.LeadSource("tiktok")), 3},
		{ptr(domain.SourceOther), 3},
		{ptr(domain.SourceColdOutreach), 4},
		{ptr(domain.SourceFacebook), 6},
		{ptr(domain.SourceGoogleAds), 8},
		{ptr(domain.SourceEvent), 10},
		{ptr(domain.SourceLinkedIn), 10},
		{ptr(domain.SourceWebsite), 12},
		{ptr(domain.SourceReferral), 15},
	}
	for _, tt := range tests {
		got := SourceScore(tt.source)
		if got.Score != tt.want {
			t.Fatalf("expected %.0f, got %.0f (%s)", tt.want, got.Score, got.Explanation)
		}
	}
}

func TestLinearScales_ClampOutOfRangeInput(t *testing.T) {
	if got := InterestScore(ptr(14)); got.Score != MaxInterest {
		t.Fatalf("expected clamped interest %.0f, got %.2f", MaxInterest, got.Score)
	}
	if got := AIReadinessScore(ptr(-3)); got.Score != 0 {
		t.Fatalf("expected clamped readiness 0, got %.2f", got.Score)
	}
	if got := InterestScore(nil); got.Score != 0 || !strings.Contains(got.Explanation, "unknown") {
		t.Fatalf("expected absent interest to score 0 with note, got %+v", got)
	}
}

func TestRecencyScore_Buckets(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		name string
		ago  time.Duration
		want float64
	}{
		{"today", 0, 10},
		{"future", -3 * day, 10},
		{"seven days", 7 * day, 10},
		{"eight days", 8 * day, 7},
		{"fourteen days", 14 * day, 7},
		{"fifteen days", 15 * day, 4},
		{"thirty days", 30 * day, 4},
		{"thirty one days", 31 * day, 2},
		{"a year", 365 * day, 2},
	}
	for _, tt := range tests {
		contact := fixedNow.Add(-tt.ago)
		got := RecencyScore(&contact, fixedNow)
		if got.Score != tt.want {
			t.Fatalf("%s: expected %.0f, got %.0f", tt.name, tt.want, got.Score)
		}
	}

	if got := RecencyScore(nil, fixedNow); got.Score != 2 {
		t.Fatalf("expected absent recency 2, got %.0f", got.Score)
	}
}

func TestRecencyScoreFromString(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"2026-03-12", 10},
		{"2026-03-05T09:30:00Z", 7},
		{"2026-02-20T09:30:00.123456", 4},
		{"2025-12-01 08:00:00", 2},
		{"", 2},
		{"last tuesday", 2},
	}
	for _, tt := range tests {
		got := RecencyScoreFromString(tt.raw, fixedNow)
		if got.Score != tt.want {
			t.Fatalf("expected %.0f for %q, got %.0f (%s)", tt.want, tt.raw, got.Score, got.Explanation)
		}
	}

	if got := RecencyScoreFromString("not-a-date", fixedNow); !strings.Contains(got.Explanation, "cannot compute") {
		t.Fatalf("expected fallback explanation, got %q", got.Explanation)
	}
}
