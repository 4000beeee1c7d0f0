package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"smart_crm_backend/internal/leads/domain"
)

// Banner thresholds on the total score.
const (
	hotThreshold      = 70.0
	warmThreshold     = 50.0
	coldThreshold     = 30.0
	BannerHot         = "hot, high priority"
	BannerWarm        = "moderately hot"
	BannerCold        = "cold, needs work"
	BannerVeryCold    = "very cold, low priority"
	explanationHeader = "Score breakdown (%.1f/100):"
)

// Input carries the six scoring attributes of a lead. Nil means absent.
type Input struct {
	BusinessSize    *domain.BusinessSize
	EstimatedBudget *float64
	Source          *domain.LeadSource
	InterestLevel   *int
	AIReadiness     *int
	LastContactDate *time.Time
	// LastContactRaw is an unparsed contact date, used only when
	// LastContactDate is nil.
	LastContactRaw string
}

// InputFromLead extracts the scoring attributes of a stored lead.
func InputFromLead(lead domain.Lead) Input {
	return Input{
		BusinessSize:    lead.BusinessSize,
		EstimatedBudget: lead.EstimatedBudget,
		Source:          lead.Source,
		InterestLevel:   lead.InterestLevel,
		AIReadiness:     lead.AIReadinessScore,
		LastContactDate: lead.LastContactDate,
	}
}

// Breakdown holds every factor's part, keyed by factor.
type Breakdown struct {
	BusinessSize Part `json:"business_size"`
	Budget       Part `json:"budget"`
	Source       Part `json:"source"`
	Interest     Part `json:"interest"`
	AIReadiness  Part `json:"ai_readiness"`
	Recency      Part `json:"recency"`
}

// Result is the outcome of scoring one lead.
type Result struct {
	Total       float64   `json:"total"`
	Banner      string    `json:"banner"`
	Breakdown   Breakdown `json:"breakdown"`
	Explanation string    `json:"explanation"`
}

// Score computes the 0-100 lead score. Output depends only on in and now.
func Score(in Input, now time.Time) Result {
	b := Breakdown{
		BusinessSize: BusinessSizeScore(in.BusinessSize),
		Budget:       BudgetScore(in.EstimatedBudget),
		Source:       SourceScore(in.Source),
		Interest:     InterestScore(in.InterestLevel),
		AIReadiness:  AIReadinessScore(in.AIReadiness),
		Recency:      recencyPart(in, now),
	}

	sum := b.BusinessSize.Score + b.Budget.Score + b.Source.Score +
		b.Interest.Score + b.AIReadiness.Score + b.Recency.Score
	total := round2(sum)
	banner := BannerFor(total)

	return Result{
		Total:       total,
		Banner:      banner,
		Breakdown:   b,
		Explanation: formatExplanation(banner, total, b),
	}
}

func recencyPart(in Input, now time.Time) Part {
	if in.LastContactDate == nil && strings.TrimSpace(in.LastContactRaw) != "" {
		return RecencyScoreFromString(in.LastContactRaw, now)
	}
	return RecencyScore(in.LastContactDate, now)
}

// BannerFor returns the qualitative label for a total score.
func BannerFor(total float64) string {
	switch {
	case total >= hotThreshold:
		return BannerHot
	case total >= warmThreshold:
		return BannerWarm
	case total >= coldThreshold:
		return BannerCold
	default:
		return BannerVeryCold
	}
}

func formatExplanation(banner string, total float64, b Breakdown) string {
	lines := []string{
		banner,
		"",
		fmt.Sprintf(explanationHeader, total),
		bullet("Business size", b.BusinessSize, "%.0f"),
		bullet("Budget", b.Budget, "%.0f"),
		bullet("Source", b.Source, "%.0f"),
		bullet("Interest", b.Interest, "%.1f"),
		bullet("AI readiness", b.AIReadiness, "%.1f"),
		bullet("Recency", b.Recency, "%.0f"),
	}
	return strings.Join(lines, "\n")
}

func bullet(label string, p Part, valueFormat string) string {
	value := fmt.Sprintf(valueFormat, p.Score)
	return fmt.Sprintf("• %s: %s (%s/%.0f)", label, p.Explanation, value, p.Max)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ShouldScoreOnCreate reports whether a new lead carries enough data to be
// scored synchronously.
func ShouldScoreOnCreate(in Input) bool {
	return in.InterestLevel != nil && in.AIReadiness != nil
}

// Field names whose change invalidates a stored score.
const (
	FieldInterestLevel   = "interest_level"
	FieldAIReadiness     = "ai_readiness_score"
	FieldBusinessSize    = "business_size"
	FieldEstimatedBudget = "estimated_budget"
	FieldSource          = "source"
)

var scoringFields = map[string]struct{}{
	FieldInterestLevel:   {},
	FieldAIReadiness:     {},
	FieldBusinessSize:    {},
	FieldEstimatedBudget: {},
	FieldSource:          {},
}

// ScoringFieldsChanged reports whether an update touching the named fields
// requires the score to be recomputed.
func ScoringFieldsChanged(fields []string) bool {
	for _, f := range fields {
		if _, ok := scoringFields[f]; ok {
			return true
		}
	}
	return false
}
