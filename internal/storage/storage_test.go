package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tally/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *Repository, username string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), username, username+"@example.com", "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func addExpense(t *testing.T, repo *Repository, ownerID int64, title string, cents int64, date core.Date, status core.ExpenseStatus, catID *int64) core.Expense {
	t.Helper()
	e, err := repo.CreateExpense(context.Background(), ownerID, core.Expense{
		CategoryID: catID,
		Title:      title,
		Amount:     core.Money{Cents: cents},
		Date:       date,
		Status:     status,
	})
	if err != nil {
		t.Fatalf("create expense %s: %v", title, err)
	}
	return e
}

func TestCreateUserDuplicates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, "alice", "alice@example.com", "h"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := repo.CreateUser(ctx, "alice", "other@example.com", "h"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate username: got %v, want ErrAlreadyExists", err)
	}
	if _, err := repo.CreateUser(ctx, "bob", "alice@example.com", "h"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate email: got %v, want ErrAlreadyExists", err)
	}
}

func TestProfileLazyCreate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")

	p, err := repo.ProfileFor(ctx, u.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Role != "User" || p.Currency != "€" {
		t.Fatalf("unexpected defaults: %+v", p)
	}

	if err := repo.UpdateProfileCurrency(ctx, u.ID, "$"); err != nil {
		t.Fatalf("update currency: %v", err)
	}
	p, err = repo.ProfileFor(ctx, u.ID)
	if err != nil {
		t.Fatalf("profile reload: %v", err)
	}
	if p.Currency != "$" {
		t.Fatalf("currency = %q, want $", p.Currency)
	}
}

func TestOwnershipScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := newTestUser(t, repo, "alice")
	mallory := newTestUser(t, repo, "mallory")

	e := addExpense(t, repo, alice.ID, "Coffee", 450, core.NewDate(2024, 6, 1), core.StatusPaid, nil)

	if _, err := repo.ExpenseByID(ctx, mallory.ID, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user read: got %v, want ErrNotFound", err)
	}
	if err := repo.UpdateExpense(ctx, mallory.ID, e); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user update: got %v, want ErrNotFound", err)
	}
	if err := repo.DeleteExpense(ctx, mallory.ID, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user delete: got %v, want ErrNotFound", err)
	}
	list, err := repo.ListExpenses(ctx, mallory.ID, ExpenseFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("cross-user list leaked %d rows", len(list))
	}

	// Alice still sees her row.
	if _, err := repo.ExpenseByID(ctx, alice.ID, e.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
}

func TestExpenseCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	cat, err := repo.CreateCategory(ctx, u.ID, core.Category{Name: "Food", Icon: "🍔"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	e := addExpense(t, repo, u.ID, "Lunch", 1250, core.NewDate(2024, 6, 2), core.StatusPaid, &cat.ID)

	got, err := repo.ExpenseByID(ctx, u.ID, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CategoryName != "Food" || got.Amount.Cents != 1250 || got.Date.ISO() != "2024-06-02" {
		t.Fatalf("unexpected expense: %+v", got)
	}

	got.Title = "Team lunch"
	got.Status = core.StatusPending
	if err := repo.UpdateExpense(ctx, u.ID, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = repo.ExpenseByID(ctx, u.ID, e.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Title != "Team lunch" || got.Status != core.StatusPending {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := repo.DeleteExpense(ctx, u.ID, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteExpense(ctx, u.ID, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestListExpensesFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	food, _ := repo.CreateCategory(ctx, u.ID, core.Category{Name: "Food"})
	travel, _ := repo.CreateCategory(ctx, u.ID, core.Category{Name: "Travel"})

	addExpense(t, repo, u.ID, "Coffee", 450, core.NewDate(2024, 6, 1), core.StatusPaid, &food.ID)
	addExpense(t, repo, u.ID, "Train ticket", 2300, core.NewDate(2024, 6, 3), core.StatusPending, &travel.ID)
	addExpense(t, repo, u.ID, "Groceries", 8999, core.NewDate(2024, 6, 5), core.StatusPaid, &food.ID)

	t.Run("no filter orders by date desc", func(t *testing.T) {
		list, err := repo.ListExpenses(ctx, u.ID, ExpenseFilter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 3 || list[0].Title != "Groceries" || list[2].Title != "Coffee" {
			t.Fatalf("unexpected order: %+v", titles(list))
		}
	})

	t.Run("search by title substring", func(t *testing.T) {
		list, err := repo.ListExpenses(ctx, u.ID, ExpenseFilter{Search: "offe"})
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].Title != "Coffee" {
			t.Fatalf("unexpected result: %+v", titles(list))
		}
	})

	t.Run("search by amount string", func(t *testing.T) {
		list, err := repo.ListExpenses(ctx, u.ID, ExpenseFilter{Search: "23.00"})
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].Title != "Train ticket" {
			t.Fatalf("unexpected result: %+v", titles(list))
		}
	})

	t.Run("search by category name", func(t *testing.T) {
		list, err := repo.ListExpenses(ctx, u.ID, ExpenseFilter{Search: "Trav"})
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].Title != "Train ticket" {
			t.Fatalf("unexpected result: %+v", titles(list))
		}
	})

	t.Run("search by date substring", func(t *testing.T) {
		list, err := repo.ListExpenses(ctx, u.ID, ExpenseFilter{Search: "2024-06-05"})
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].Title != "Groceries" {
			t.Fatalf("unexpected result: %+v", titles(list))
		}
	})

	t.Run("category filter", func(t *testing.T) {
		list, err := repo.ListExpenses(ctx, u.ID, ExpenseFilter{CategoryID: food.ID})
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 2 {
			t.Fatalf("want 2 food expenses, got %d", len(list))
		}
	})

	t.Run("status filter", func(t *testing.T) {
		list, err := repo.ListExpenses(ctx, u.ID, ExpenseFilter{Status: core.StatusPending})
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].Title != "Train ticket" {
			t.Fatalf("unexpected result: %+v", titles(list))
		}
	})

	t.Run("like metacharacters match literally", func(t *testing.T) {
		addExpense(t, repo, u.ID, "100% juice", 300, core.NewDate(2024, 6, 6), core.StatusPaid, nil)
		list, err := repo.ListExpenses(ctx, u.ID, ExpenseFilter{Search: "100%"})
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].Title != "100% juice" {
			t.Fatalf("unexpected result: %+v", titles(list))
		}
	})
}

func TestAggregationEmptyIsZero(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")

	daily, err := repo.DailySpend(ctx, u.ID, core.NewDate(2024, 6, 1))
	if err != nil {
		t.Fatal(err)
	}
	monthly, err := repo.MonthlySpend(ctx, u.ID, core.NewDate(2024, 6, 1))
	if err != nil {
		t.Fatal(err)
	}
	if daily.Cents != 0 || monthly.Cents != 0 {
		t.Fatalf("empty sums: daily=%d monthly=%d, want 0", daily.Cents, monthly.Cents)
	}
}

func TestMonthlySpendScenario(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")

	addExpense(t, repo, u.ID, "Coffee", 450, core.NewDate(2024, 6, 1), core.StatusPaid, nil)

	spent, err := repo.MonthlySpend(ctx, u.ID, core.NewDate(2024, 6, 1))
	if err != nil {
		t.Fatal(err)
	}
	if spent.Cents != 450 {
		t.Fatalf("monthly spend = %d, want 450", spent.Cents)
	}
}

func TestSpendFiltersStatusAndOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := newTestUser(t, repo, "alice")
	bob := newTestUser(t, repo, "bob")
	day := core.NewDate(2024, 6, 10)

	addExpense(t, repo, alice.ID, "Paid", 1000, day, core.StatusPaid, nil)
	addExpense(t, repo, alice.ID, "Pending", 2000, day, core.StatusPending, nil)
	addExpense(t, repo, bob.ID, "Bob's", 5000, day, core.StatusPaid, nil)

	daily, err := repo.DailySpend(ctx, alice.ID, day)
	if err != nil {
		t.Fatal(err)
	}
	if daily.Cents != 1000 {
		t.Fatalf("daily spend = %d, want 1000 (PAID only, alice only)", daily.Cents)
	}
}

func TestTopCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	food, _ := repo.CreateCategory(ctx, u.ID, core.Category{Name: "Food"})
	travel, _ := repo.CreateCategory(ctx, u.ID, core.Category{Name: "Travel"})
	month := core.NewDate(2024, 6, 1)

	addExpense(t, repo, u.ID, "Lunch", 3000, core.NewDate(2024, 6, 2), core.StatusPaid, &food.ID)
	addExpense(t, repo, u.ID, "Dinner", 4000, core.NewDate(2024, 6, 3), core.StatusPaid, &food.ID)
	addExpense(t, repo, u.ID, "Train", 2500, core.NewDate(2024, 6, 4), core.StatusPaid, &travel.ID)
	addExpense(t, repo, u.ID, "Misc", 100, core.NewDate(2024, 6, 5), core.StatusPaid, nil)
	addExpense(t, repo, u.ID, "Old", 99999, core.NewDate(2024, 5, 20), core.StatusPaid, &food.ID)
	addExpense(t, repo, u.ID, "Planned trip", 88888, core.NewDate(2024, 6, 6), core.StatusPending, &travel.ID)

	totals, err := repo.TopCategories(ctx, u.ID, month, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 3 {
		t.Fatalf("want 3 groups, got %d: %+v", len(totals), totals)
	}
	if totals[0].Name != "Food" || totals[0].Total.Cents != 7000 {
		t.Fatalf("top group = %+v, want Food/7000", totals[0])
	}
	if totals[1].Name != "Travel" || totals[1].Total.Cents != 2500 {
		t.Fatalf("second group = %+v, want Travel/2500 (PENDING rows excluded)", totals[1])
	}
	if totals[2].Name != "" || totals[2].Total.Cents != 100 {
		t.Fatalf("uncategorized group = %+v", totals[2])
	}
	for i := 1; i < len(totals); i++ {
		if totals[i].Total.Cents > totals[i-1].Total.Cents {
			t.Fatal("totals not sorted descending")
		}
	}

	limited, err := repo.TopCategories(ctx, u.ID, month, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].Name != "Food" {
		t.Fatalf("limit=1 got %+v", limited)
	}
}

func TestCategoryDeleteSetsNull(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	cat, _ := repo.CreateCategory(ctx, u.ID, core.Category{Name: "Food"})

	e := addExpense(t, repo, u.ID, "Lunch", 1000, core.NewDate(2024, 6, 2), core.StatusPaid, &cat.ID)
	re, err := repo.CreateRecurringExpense(ctx, u.ID, core.RecurringExpense{
		CategoryID: &cat.ID,
		Title:      "Meal plan",
		Amount:     core.Money{Cents: 5000},
		NextDate:   core.NewDate(2024, 7, 1),
	})
	if err != nil {
		t.Fatalf("create recurring: %v", err)
	}

	if err := repo.DeleteCategory(ctx, u.ID, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	gotE, err := repo.ExpenseByID(ctx, u.ID, e.ID)
	if err != nil {
		t.Fatalf("expense survived? %v", err)
	}
	if gotE.CategoryID != nil || gotE.CategoryName != "" {
		t.Fatalf("expense category not nulled: %+v", gotE)
	}

	gotRE, err := repo.RecurringExpenseByID(ctx, u.ID, re.ID)
	if err != nil {
		t.Fatalf("recurring survived? %v", err)
	}
	if gotRE.CategoryID != nil {
		t.Fatalf("recurring category not nulled: %+v", gotRE)
	}
}

func TestSetBudgetUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	food, _ := repo.CreateCategory(ctx, u.ID, core.Category{Name: "Food"})
	travel, _ := repo.CreateCategory(ctx, u.ID, core.Category{Name: "Travel"})
	month := core.NewDate(2024, 6, 1)

	created, err := repo.SetBudget(ctx, u.ID, food.ID, core.Money{Cents: 30000}, month)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("first call should create")
	}

	// Second call in the same month updates the existing row even though it
	// names a different category.
	created, err = repo.SetBudget(ctx, u.ID, travel.ID, core.Money{Cents: 40000}, month)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Fatal("second call should update, not create")
	}

	budgets, err := repo.ListBudgets(ctx, u.ID, month)
	if err != nil {
		t.Fatal(err)
	}
	if len(budgets) != 1 {
		t.Fatalf("want exactly one budget row, got %d", len(budgets))
	}
	if budgets[0].CategoryID != travel.ID || budgets[0].Amount.Cents != 40000 {
		t.Fatalf("row not updated: %+v", budgets[0])
	}
}

func TestTotalBudgetFiltersMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	food, _ := repo.CreateCategory(ctx, u.ID, core.Category{Name: "Food"})
	june := core.NewDate(2024, 6, 1)
	july := core.NewDate(2024, 7, 1)

	if _, err := repo.CreateBudget(ctx, u.ID, core.Budget{CategoryID: food.ID, Amount: core.Money{Cents: 30000}, Month: june}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateBudget(ctx, u.ID, core.Budget{CategoryID: food.ID, Amount: core.Money{Cents: 99999}, Month: july}); err != nil {
		t.Fatal(err)
	}

	total, err := repo.TotalBudget(ctx, u.ID, june)
	if err != nil {
		t.Fatal(err)
	}
	if total.Cents != 30000 {
		t.Fatalf("june total = %d, want 30000", total.Cents)
	}
}

func TestNotificationToggleTwiceRestores(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")

	n, err := repo.CreateNotification(ctx, u.ID, "Budget exceeded", "⚠️")
	if err != nil {
		t.Fatal(err)
	}
	if n.IsRead {
		t.Fatal("new notification should be unread")
	}

	for i := 0; i < 2; i++ {
		if err := repo.ToggleNotificationRead(ctx, u.ID, n.ID); err != nil {
			t.Fatalf("toggle %d: %v", i+1, err)
		}
	}
	notes, err := repo.ListNotifications(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].IsRead {
		t.Fatalf("double toggle should restore unread: %+v", notes)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")

	for i := 0; i < 3; i++ {
		if _, err := repo.CreateNotification(ctx, u.ID, "msg", ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.MarkAllNotificationsRead(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	unread, err := repo.UnreadNotificationCount(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if unread != 0 {
		t.Fatalf("unread = %d, want 0", unread)
	}
}

func TestExportLogAppendOnly(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")

	if _, err := repo.LogExport(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.LogExport(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	logs, err := repo.ListExportLogs(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 {
		t.Fatalf("want 2 export logs, got %d", len(logs))
	}
}

func TestDueRecurringExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")

	due, err := repo.CreateRecurringExpense(ctx, u.ID, core.RecurringExpense{
		Title: "Rent", Amount: core.Money{Cents: 80000}, Cycle: core.CycleMonthly, NextDate: core.NewDate(2024, 6, 1),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateRecurringExpense(ctx, u.ID, core.RecurringExpense{
		Title: "Insurance", Amount: core.Money{Cents: 12000}, Cycle: core.CycleYearly, NextDate: core.NewDate(2025, 1, 1),
	}); err != nil {
		t.Fatal(err)
	}

	hits, err := repo.DueRecurringExpenses(ctx, core.NewDate(2024, 6, 15))
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != due.ID {
		t.Fatalf("due templates = %+v", hits)
	}

	if err := repo.AdvanceRecurringNextDate(ctx, due.ID, core.NewDate(2024, 7, 1)); err != nil {
		t.Fatal(err)
	}
	hits, err = repo.DueRecurringExpenses(ctx, core.NewDate(2024, 6, 15))
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Fatalf("advanced template still due: %+v", hits)
	}
}

func titles(list []core.Expense) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Title
	}
	return out
}
