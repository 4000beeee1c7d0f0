package aggregate

import (
	"math"
	"time"

	dealdomain "smart_crm_backend/internal/deals/domain"
)

// RevenueSummary is realised revenue from won deals.
type RevenueSummary struct {
	TotalRevenue    float64 `json:"total_revenue"`
	DealCount       int     `json:"deal_count"`
	AverageDealSize float64 `json:"average_deal_size"`
}

// SummarizeRevenue totals closed_won deals whose actual close date falls in
// the period. When the period has any bound, won deals without a close date
// are skipped.
func SummarizeRevenue(deals []dealdomain.Deal, period Period) RevenueSummary {
	var s RevenueSummary
	for _, d := range deals {
		if d.Stage != dealdomain.StageClosedWon {
			continue
		}
		if !period.ContainsPtr(d.ActualCloseDate) {
			continue
		}
		s.TotalRevenue += d.Value
		s.DealCount++
	}
	s.AverageDealSize = ratio(s.TotalRevenue, float64(s.DealCount))
	return s
}

// MonthRevenue is one point of the revenue chart.
type MonthRevenue struct {
	Month      string  `json:"month"`
	MonthShort string  `json:"month_short"`
	Revenue    float64 `json:"actual_revenue"`
	DealCount  int     `json:"deal_count"`
}

// RevenueByMonth returns won revenue for the last n calendar months ending
// with now's month, oldest first.
func RevenueByMonth(deals []dealdomain.Deal, now time.Time, n int) []MonthRevenue {
	if n <= 0 {
		return []MonthRevenue{}
	}
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]MonthRevenue, 0, n)
	for i := n - 1; i >= 0; i-- {
		month := current.AddDate(0, -i, 0)
		rev := SummarizeRevenue(deals, CalendarMonth(month))
		out = append(out, MonthRevenue{
			Month:      month.Format("January 2006"),
			MonthShort: month.Format("Jan"),
			Revenue:    rev.TotalRevenue,
			DealCount:  rev.DealCount,
		})
	}
	return out
}

// ratio divides with a zero-denominator guard.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
