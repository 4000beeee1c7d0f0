package aggregate

import (
	userdomain "smart_crm_backend/internal/auth/domain"
	dealdomain "smart_crm_backend/internal/deals/domain"
	expensedomain "smart_crm_backend/internal/expenses/domain"

	"github.com/google/uuid"
)

// ProfitabilityInput is the snapshot a profitability report is computed over.
type ProfitabilityInput struct {
	Period     Period
	Deals      []dealdomain.Deal
	Expenses   []expensedomain.Expense
	Users      []userdomain.User
	LogsByUser map[uuid.UUID][]dealdomain.WorkLog
}

// CostBreakdown splits total cost into its sources.
type CostBreakdown struct {
	Fixed    float64            `json:"fixed"`
	Variable float64            `json:"variable"`
	Labor    float64            `json:"labor"`
	Total    float64            `json:"total"`
	ByType   map[string]float64 `json:"by_type"`
}

// Profit is revenue minus cost.
type Profit struct {
	Net           float64 `json:"net"`
	MarginPercent float64 `json:"margin_percent"`
}

// Profitability is the period report.
type Profitability struct {
	Period   Period         `json:"period"`
	Revenue  RevenueSummary `json:"revenue"`
	Costs    CostBreakdown  `json:"costs"`
	Labor    LaborSummary   `json:"labor"`
	Profit   Profit         `json:"profit"`
	Warnings []string       `json:"warnings,omitempty"`
}

// ComputeProfitability composes revenue, expense and labor totals into net
// profit and margin. The margin is 0 when there is no revenue.
func ComputeProfitability(in ProfitabilityInput) Profitability {
	revenue := SummarizeRevenue(in.Deals, in.Period)
	expenses := SummarizeExpenses(in.Expenses, in.Period)
	labor := SummarizeLabor(in.Users, in.LogsByUser, in.Period)

	totalCost := expenses.Total + labor.TotalCost
	net := revenue.TotalRevenue - totalCost

	return Profitability{
		Period:  in.Period,
		Revenue: revenue,
		Costs: CostBreakdown{
			Fixed:    expenses.Fixed,
			Variable: expenses.Variable,
			Labor:    labor.TotalCost,
			Total:    totalCost,
			ByType:   expenses.ByType,
		},
		Labor: labor,
		Profit: Profit{
			Net:           net,
			MarginPercent: round(ratio(net, revenue.TotalRevenue)*100, 2),
		},
	}
}
