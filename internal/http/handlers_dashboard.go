package http

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"tally/internal/core"
)

const (
	topCategoryLimit   = 5
	recentExpenseLimit = 10
)

// handleDashboard serves the month overview: today's and the month's spend,
// the budget position, and the top categories. Aggregates are fetched in
// parallel and memoized per user and day.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner := userID(r)
	now := time.Now()
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())

	key := userCachePrefix(owner) + "overview:" + today.ISO()
	if ov, ok := s.overviewCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Overview cache hit", "user_id", owner)
		respondJSON(w, http.StatusOK, overviewToView(ov))
		return
	}

	ov, err := s.buildOverview(r, owner, today)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	s.overviewCache.Set(key, ov)
	respondJSON(w, http.StatusOK, overviewToView(ov))
}

func (s *Server) buildOverview(r *http.Request, owner int64, today core.Date) (core.MonthOverview, error) {
	month := today.MonthStart()
	ov := core.MonthOverview{MonthStart: month}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		spent, err := s.repo.DailySpend(ctx, owner, today)
		if err == nil {
			ov.TodaySpent = spent
		}
		return err
	})
	g.Go(func() error {
		spent, err := s.repo.MonthlySpend(ctx, owner, month)
		if err == nil {
			ov.MonthSpent = spent
		}
		return err
	})
	g.Go(func() error {
		budget, err := s.repo.TotalBudget(ctx, owner, month)
		if err == nil {
			ov.TotalBudget = budget
		}
		return err
	})
	g.Go(func() error {
		top, err := s.repo.TopCategories(ctx, owner, month, topCategoryLimit)
		if err == nil {
			ov.TopCats = top
		}
		return err
	})
	g.Go(func() error {
		recent, err := s.repo.RecentExpenses(ctx, owner, recentExpenseLimit)
		if err == nil {
			ov.Recent = recent
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return core.MonthOverview{}, err
	}

	st := core.ComputeBudgetStatus(ov.TotalBudget, ov.MonthSpent)
	ov.Remaining = st.Remaining
	ov.UsedPercent = st.UsedPercent
	return ov, nil
}

// handleReport serves the spending report for an arbitrary month.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month")
		return
	}
	s.serveMonthReport(w, r, month)
}

// handleMonthlyOverview is the current-month report.
func (s *Server) handleMonthlyOverview(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	s.serveMonthReport(w, r, core.NewDate(now.Year(), int(now.Month()), 1))
}

func (s *Server) serveMonthReport(w http.ResponseWriter, r *http.Request, month core.Date) {
	owner := userID(r)

	var (
		spent  core.Money
		budget core.Money
		top    []core.CategoryTotal
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		spent, err = s.repo.MonthlySpend(ctx, owner, month)
		return err
	})
	g.Go(func() error {
		var err error
		budget, err = s.repo.TotalBudget(ctx, owner, month)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = s.repo.TopCategories(ctx, owner, month, topCategoryLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		respondStorageError(w, r, err)
		return
	}

	st := core.ComputeBudgetStatus(budget, spent)
	out := struct {
		Month       string              `json:"month"`
		Spent       moneyView           `json:"spent"`
		TotalBudget moneyView           `json:"total_budget"`
		Remaining   moneyView           `json:"remaining"`
		UsedPercent float64             `json:"used_percent"`
		Categories  []categoryTotalView `json:"categories"`
	}{
		Month:       month.ISO(),
		Spent:       money(spent),
		TotalBudget: money(budget),
		Remaining:   money(st.Remaining),
		UsedPercent: st.UsedPercent,
		Categories:  make([]categoryTotalView, 0, len(top)),
	}
	for _, c := range top {
		out.Categories = append(out.Categories, categoryTotalView{Name: c.Name, Total: money(c.Total)})
	}
	respondJSON(w, http.StatusOK, out)
}
