// This file holds the form-to-entity parsing shared by the mutating
// handlers: sanitization, amount and date parsing, and id extraction.
package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tally/internal/core"
)

var errBadID = errors.New("invalid id")

// pathID extracts the {id} path segment as a positive integer.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline, and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseAmount reads a decimal amount form value into Money.
func parseAmount(form url.Values, field string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(form.Get(field))
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// parseDateField reads an ISO date form value, defaulting to today when the
// field is absent.
func parseDateField(form url.Values, field string, defaultToday bool) (core.Date, error) {
	v := strings.TrimSpace(form.Get(field))
	if v == "" && defaultToday {
		now := time.Now()
		return core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}
	return core.ParseDate(v)
}

// parseOptionalID reads an optional numeric form value, returning nil when
// the field is empty or zero.
func parseOptionalID(form url.Values, field string) (*int64, error) {
	v := strings.TrimSpace(form.Get(field))
	if v == "" || v == "0" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, errBadID
	}
	return &id, nil
}

func parseExpenseForm(form url.Values) (core.Expense, error) {
	amount, err := parseAmount(form, "amount")
	if err != nil {
		return core.Expense{}, err
	}
	date, err := parseDateField(form, "date", true)
	if err != nil {
		return core.Expense{}, err
	}
	categoryID, err := parseOptionalID(form, "category_id")
	if err != nil {
		return core.Expense{}, err
	}

	status := core.StatusPaid
	if v := strings.TrimSpace(form.Get("status")); v != "" {
		status = core.ExpenseStatus(strings.ToUpper(v))
	}

	e := core.Expense{
		Title:      sanitizeInput(form.Get("title")),
		Amount:     amount,
		CategoryID: categoryID,
		Date:       date,
		Note:       sanitizeInput(form.Get("note")),
		Status:     status,
	}
	return e, e.Validate()
}

func parseRecurringForm(form url.Values) (core.RecurringExpense, error) {
	amount, err := parseAmount(form, "amount")
	if err != nil {
		return core.RecurringExpense{}, err
	}
	next, err := parseDateField(form, "next_date", true)
	if err != nil {
		return core.RecurringExpense{}, err
	}
	categoryID, err := parseOptionalID(form, "category_id")
	if err != nil {
		return core.RecurringExpense{}, err
	}

	re := core.RecurringExpense{
		Title:      sanitizeInput(form.Get("title")),
		Amount:     amount,
		CategoryID: categoryID,
		Cycle:      sanitizeInput(form.Get("cycle")),
		NextDate:   next,
	}
	return re, re.Validate()
}

func parseGoalForm(form url.Values) (core.Goal, error) {
	target, err := parseAmount(form, "target")
	if err != nil {
		return core.Goal{}, err
	}
	deadline, err := parseDateField(form, "deadline", false)
	if err != nil {
		return core.Goal{}, err
	}

	progress := core.Money{}
	if v := strings.TrimSpace(form.Get("progress")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return core.Goal{}, err
		}
		progress = core.Money{Cents: cents}
	}

	g := core.Goal{
		Title:    sanitizeInput(form.Get("title")),
		Target:   target,
		Progress: progress,
		Deadline: deadline,
	}
	return g, g.Validate()
}

// parseMonth reads a YYYY-MM or YYYY-MM-DD month value, normalized to the
// first of the month. Empty means the current month.
func parseMonth(v string) (core.Date, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		now := time.Now()
		return core.NewDate(now.Year(), int(now.Month()), 1), nil
	}
	if len(v) == 7 {
		v += "-01"
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, err
	}
	return d.MonthStart(), nil
}
