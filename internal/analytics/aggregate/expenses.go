package aggregate

import (
	expensedomain "smart_crm_backend/internal/expenses/domain"
)

// ExpenseSummary totals spend by category and by type label.
type ExpenseSummary struct {
	Fixed    float64            `json:"fixed"`
	Variable float64            `json:"variable"`
	Total    float64            `json:"total"`
	ByType   map[string]float64 `json:"by_type"`
	Count    int                `json:"count"`

	// Expenses whose category was missing or unknown and were counted as
	// variable.
	DefaultedToVariable int `json:"defaulted_to_variable"`
}

// SummarizeExpenses totals the expenses dated within the period.
func SummarizeExpenses(expenses []expensedomain.Expense, period Period) ExpenseSummary {
	s := ExpenseSummary{ByType: map[string]float64{}}
	for _, e := range expenses {
		if !period.Contains(e.Date) {
			continue
		}
		s.Count++
		s.Total += e.Amount
		s.ByType[e.TypeLabel()] += e.Amount

		switch e.Category {
		case expensedomain.CategoryFixed:
			s.Fixed += e.Amount
		case expensedomain.CategoryVariable:
			s.Variable += e.Amount
		default:
			s.Variable += e.Amount
			s.DefaultedToVariable++
		}
	}
	return s
}
