package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"smart_crm_backend/internal/leads/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Maximum contribution of each factor. They sum to 100.
const (
	MaxBusinessSize = 20.0
	MaxBudget       = 25.0
	MaxSource       = 15.0
	MaxInterest     = 15.0
	MaxAIReadiness  = 15.0
	MaxRecency      = 10.0
)

// Part is one factor's contribution to the total score.
type Part struct {
	Score       float64 `json:"score"`
	Max         float64 `json:"max"`
	Explanation string  `json:"explanation"`
}

var businessSizeScores = map[domain.BusinessSize]float64{
	domain.BusinessSizeMicro:  8,
	domain.BusinessSizeSmall:  15,
	domain.BusinessSizeMedium: 20,
}

type budgetTier struct {
	min   float64
	score float64
	label string
}

// Highest matching tier wins; ordered from the top down.
var budgetTiers = []budgetTier{
	{min: 30000, score: 25, label: "high budget (%s) - excellent potential"},
	{min: 15000, score: 20, label: "medium-high budget (%s) - good potential"},
	{min: 5000, score: 12, label: "medium budget (%s) - fair potential"},
	{min: 0, score: 5, label: "low budget (%s) - limited potential"},
}

type sourceEntry struct {
	score float64
	label string
}

var sourceScores = map[domain.LeadSource]sourceEntry{
	domain.SourceReferral:     {15, "referral - most trusted source"},
	domain.SourceWebsite:      {12, "website - active interest"},
	domain.SourceLinkedIn:     {10, "LinkedIn - professional source"},
	domain.SourceEvent:        {10, "event - met in person"},
	domain.SourceGoogleAds:    {8, "Google - self-initiated search"},
	domain.SourceFacebook:     {6, "Facebook - social network"},
	domain.SourceColdOutreach: {4, "cold outreach - interest must be built"},
	domain.SourceOther:        {3, "other source"},
}

const unknownSourceScore = 3.0

var budgetPrinter = message.NewPrinter(language.English)

// BusinessSizeScore scores company headcount. Unknown or absent sizes score 0.
func BusinessSizeScore(size *domain.BusinessSize) Part {
	part := Part{Max: MaxBusinessSize}
	if size == nil {
		part.Explanation = "business size unknown"
		return part
	}

	part.Score = businessSizeScores[*size]
	switch *size {
	case domain.BusinessSizeMedium:
		part.Explanation = "medium business (21-50 employees) - high potential"
	case domain.BusinessSizeSmall:
		part.Explanation = "small business (6-20 employees) - good potential"
	case domain.BusinessSizeMicro:
		part.Explanation = "micro business (1-5 employees) - limited potential"
	default:
		part.Explanation = "business size unknown"
	}
	return part
}

// BudgetScore scores the estimated budget against fixed tiers.
// Negative amounts fall through to the lowest tier.
func BudgetScore(budget *float64) Part {
	part := Part{Max: MaxBudget}
	if budget == nil || math.IsNaN(*budget) {
		part.Explanation = "budget unknown"
		return part
	}

	amount := budgetPrinter.Sprintf("₪%.0f", *budget)
	for _, tier := range budgetTiers {
		if *budget >= tier.min {
			part.Score = tier.score
			part.Explanation = fmt.Sprintf(tier.label, amount)
			return part
		}
	}

	lowest := budgetTiers[len(budgetTiers)-1]
	part.Score = lowest.score
	part.Explanation = fmt.Sprintf(lowest.label, amount)
	return part
}

// SourceScore scores the acquisition channel. Absent or unrecognised channels
// get the "other" score.
func SourceScore(source *domain.LeadSource) Part {
	part := Part{Max: MaxSource, Score: unknownSourceScore}
	if source == nil || *source == "" {
		part.Explanation = "source unknown"
		return part
	}
	entry, ok := sourceScores[*source]
	if !ok {
		part.Explanation = "source unknown"
		return part
	}
	part.Score = entry.score
	part.Explanation = entry.label
	return part
}

// InterestScore scales a 1-10 interest level linearly onto 0-15.
func InterestScore(level *int) Part {
	part := Part{Max: MaxInterest}
	if level == nil {
		part.Explanation = "interest level unknown"
		return part
	}

	v := clampLevel(*level)
	part.Score = linear(v, MaxInterest)
	switch {
	case v >= 8:
		part.Explanation = fmt.Sprintf("high interest (%d/10) - ready to move forward", v)
	case v >= 5:
		part.Explanation = fmt.Sprintf("moderate interest (%d/10) - needs nurturing", v)
	default:
		part.Explanation = fmt.Sprintf("low interest (%d/10) - interest must be built", v)
	}
	return part
}

// AIReadinessScore scales a 1-10 AI readiness rating linearly onto 0-15.
func AIReadinessScore(readiness *int) Part {
	part := Part{Max: MaxAIReadiness}
	if readiness == nil {
		part.Explanation = "AI readiness unknown"
		return part
	}

	v := clampLevel(*readiness)
	part.Score = linear(v, MaxAIReadiness)
	switch {
	case v >= 8:
		part.Explanation = fmt.Sprintf("high AI readiness (%d/10) - fit for implementation", v)
	case v >= 5:
		part.Explanation = fmt.Sprintf("moderate AI readiness (%d/10) - needs preparation", v)
	default:
		part.Explanation = fmt.Sprintf("low AI readiness (%d/10) - needs education", v)
	}
	return part
}

// RecencyScore buckets the days elapsed since the last contact.
// Contacts dated in the future count as recent.
func RecencyScore(lastContact *time.Time, now time.Time) Part {
	part := Part{Max: MaxRecency}
	if lastContact == nil || lastContact.IsZero() {
		part.Score = 2
		part.Explanation = "no contact history (absent)"
		return part
	}

	days := int(now.Sub(*lastContact).Hours() / 24)
	switch {
	case days <= 7:
		part.Score = 10
		part.Explanation = fmt.Sprintf("last contact %d days ago - current", days)
	case days <= 14:
		part.Score = 7
		part.Explanation = fmt.Sprintf("last contact %d days ago - fairly current", days)
	case days <= 30:
		part.Score = 4
		part.Explanation = fmt.Sprintf("last contact %d days ago - needs follow-up", days)
	default:
		part.Score = 2
		part.Explanation = fmt.Sprintf("last contact %d days ago - needs re-engagement", days)
	}
	return part
}

// RecencyScoreFromString parses an ISO-8601 date or timestamp and scores it.
// Unparsable input lands in the coldest bucket instead of failing.
func RecencyScoreFromString(raw string, now time.Time) Part {
	if strings.TrimSpace(raw) == "" {
		return RecencyScore(nil, now)
	}
	t, ok := ParseContactDate(raw)
	if !ok {
		return Part{Max: MaxRecency, Score: 2, Explanation: "cannot compute time since last contact"}
	}
	return RecencyScore(&t, now)
}

var contactDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseContactDate accepts the ISO-8601 shapes the store and clients emit.
// Zone-less values are read as UTC.
func ParseContactDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range contactDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func clampLevel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func linear(v int, max float64) float64 {
	return float64(v) / 10 * max
}
