package http

import (
	"time"

	"tally/internal/core"
)

// View types shape the JSON the API returns. Amounts carry both raw cents
// and the formatted decimal so clients never re-derive money formatting.

type moneyView struct {
	Cents   int64  `json:"cents"`
	Decimal string `json:"decimal"`
}

func money(m core.Money) moneyView {
	return moneyView{Cents: m.Cents, Decimal: m.String()}
}

type expenseView struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Amount     moneyView `json:"amount"`
	CategoryID *int64    `json:"category_id"`
	Category   string    `json:"category,omitempty"`
	Date       string    `json:"date"`
	Note       string    `json:"note,omitempty"`
	Status     string    `json:"status"`
}

func expenseToView(e core.Expense) expenseView {
	return expenseView{
		ID:         e.ID,
		Title:      e.Title,
		Amount:     money(e.Amount),
		CategoryID: e.CategoryID,
		Category:   e.CategoryName,
		Date:       e.Date.ISO(),
		Note:       e.Note,
		Status:     string(e.Status),
	}
}

func expensesToView(expenses []core.Expense) []expenseView {
	out := make([]expenseView, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseToView(e))
	}
	return out
}

type categoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

func categoryToView(c core.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Icon: c.Icon}
}

type recurringView struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Amount     moneyView `json:"amount"`
	CategoryID *int64    `json:"category_id"`
	Category   string    `json:"category,omitempty"`
	Cycle      string    `json:"cycle"`
	NextDate   string    `json:"next_date"`
}

func recurringToView(re core.RecurringExpense) recurringView {
	return recurringView{
		ID:         re.ID,
		Title:      re.Title,
		Amount:     money(re.Amount),
		CategoryID: re.CategoryID,
		Category:   re.CategoryName,
		Cycle:      re.Cycle,
		NextDate:   re.NextDate.ISO(),
	}
}

type budgetView struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	Category   string    `json:"category,omitempty"`
	Amount     moneyView `json:"amount"`
	Month      string    `json:"month"`
}

func budgetToView(b core.Budget) budgetView {
	return budgetView{
		ID:         b.ID,
		CategoryID: b.CategoryID,
		Category:   b.CategoryName,
		Amount:     money(b.Amount),
		Month:      b.Month.ISO(),
	}
}

type goalView struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Target   moneyView `json:"target"`
	Progress moneyView `json:"progress"`
	Deadline string    `json:"deadline"`
}

func goalToView(g core.Goal) goalView {
	return goalView{
		ID:       g.ID,
		Title:    g.Title,
		Target:   money(g.Target),
		Progress: money(g.Progress),
		Deadline: g.Deadline.ISO(),
	}
}

type notificationView struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}

func notificationToView(n core.Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		Message:   n.Message,
		Icon:      n.Icon,
		CreatedAt: n.CreatedAt,
		IsRead:    n.IsRead,
	}
}

type categoryTotalView struct {
	Name  string    `json:"name"`
	Total moneyView `json:"total"`
}

type overviewView struct {
	Month       string              `json:"month"`
	TodaySpent  moneyView           `json:"today_spent"`
	MonthSpent  moneyView           `json:"month_spent"`
	TotalBudget moneyView           `json:"total_budget"`
	Remaining   moneyView           `json:"remaining"`
	UsedPercent float64             `json:"used_percent"`
	TopCats     []categoryTotalView `json:"top_categories"`
	Recent      []expenseView       `json:"recent_expenses"`
}

func overviewToView(ov core.MonthOverview) overviewView {
	v := overviewView{
		Month:       ov.MonthStart.ISO(),
		TodaySpent:  money(ov.TodaySpent),
		MonthSpent:  money(ov.MonthSpent),
		TotalBudget: money(ov.TotalBudget),
		Remaining:   money(ov.Remaining),
		UsedPercent: ov.UsedPercent,
		TopCats:     make([]categoryTotalView, 0, len(ov.TopCats)),
		Recent:      expensesToView(ov.Recent),
	}
	for _, c := range ov.TopCats {
		v.TopCats = append(v.TopCats, categoryTotalView{Name: c.Name, Total: money(c.Total)})
	}
	return v
}
