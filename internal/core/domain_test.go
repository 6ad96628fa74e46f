package core

import (
	"strings"
	"testing"
)

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Title:  "Coffee",
		Amount: Money{Cents: 450},
		Date:   NewDate(2024, 6, 1),
		Status: StatusPaid,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Expense)
	}{
		{"empty title", func(e *Expense) { e.Title = "   " }},
		{"title too long", func(e *Expense) { e.Title = strings.Repeat("x", 101) }},
		{"zero amount", func(e *Expense) { e.Amount = Money{} }},
		{"negative amount", func(e *Expense) { e.Amount = Money{Cents: -100} }},
		{"zero date", func(e *Expense) { e.Date = Date{} }},
		{"bad status", func(e *Expense) { e.Status = "MAYBE" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := valid
			tc.mutate(&e)
			if err := e.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "Food"}).Validate(); err != nil {
		t.Fatalf("valid category rejected: %v", err)
	}
	if err := (Category{Name: ""}).Validate(); err == nil {
		t.Fatal("empty name should be rejected")
	}
	if err := (Category{Name: strings.Repeat("x", 51)}).Validate(); err == nil {
		t.Fatal("overlong name should be rejected")
	}
}

func TestRecurringExpenseValidate(t *testing.T) {
	valid := RecurringExpense{
		Title:    "Rent",
		Amount:   Money{Cents: 80000},
		Cycle:    CycleMonthly,
		NextDate: NewDate(2024, 7, 1),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid recurring expense rejected: %v", err)
	}

	re := valid
	re.NextDate = Date{}
	if err := re.Validate(); err == nil {
		t.Fatal("zero next date should be rejected")
	}
}

func TestBudgetValidate(t *testing.T) {
	valid := Budget{CategoryID: 1, Amount: Money{Cents: 30000}, Month: NewDate(2024, 6, 1)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}
	b := valid
	b.CategoryID = 0
	if err := b.Validate(); err == nil {
		t.Fatal("budget without category should be rejected")
	}
}

func TestGoalValidate(t *testing.T) {
	valid := Goal{Title: "Vacation", Target: Money{Cents: 100000}, Deadline: NewDate(2025, 1, 1)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid goal rejected: %v", err)
	}
	g := valid
	g.Progress = Money{Cents: -1}
	if err := g.Validate(); err == nil {
		t.Fatal("negative progress should be rejected")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if d.ISO() != "2024-06-01" {
		t.Fatalf("ISO round trip got %q", d.ISO())
	}
	if _, err := ParseDate("06/01/2024"); err == nil {
		t.Fatal("non-ISO format should be rejected")
	}
}

func TestMonthStart(t *testing.T) {
	d := NewDate(2024, 6, 17)
	if got := d.MonthStart().ISO(); got != "2024-06-01" {
		t.Fatalf("MonthStart got %q", got)
	}
}
