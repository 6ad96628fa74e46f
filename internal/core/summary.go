package core

// CategoryTotal represents an amount aggregated by category name.
type CategoryTotal struct {
	Name  string
	Total Money
}

// MonthOverview is a compact spending summary for one user's month.
type MonthOverview struct {
	MonthStart  Date
	TodaySpent  Money
	MonthSpent  Money
	TotalBudget Money
	Remaining   Money
	UsedPercent float64
	TopCats     []CategoryTotal
	Recent      []Expense
}

// BudgetStatus captures how a month's spending compares to its budget.
type BudgetStatus struct {
	TotalBudget Money
	Spent       Money
	Remaining   Money
	UsedPercent float64
}

// ComputeBudgetStatus derives remainder and percentage-used from the month's
// total budget and spend. A zero budget yields 0 percent, not a division error.
func ComputeBudgetStatus(totalBudget, spent Money) BudgetStatus {
	st := BudgetStatus{
		TotalBudget: totalBudget,
		Spent:       spent,
		Remaining:   Money{Cents: totalBudget.Cents - spent.Cents},
	}
	if totalBudget.Cents > 0 {
		st.UsedPercent = float64(spent.Cents) * 100 / float64(totalBudget.Cents)
	}
	return st
}
