package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPaid    ExpenseStatus = "PAID"
	StatusPending ExpenseStatus = "PENDING"
)

// Well-known recurrence cycles. Cycle is free text in the store; only these
// values are materialized by the recurring worker.
const (
	CycleDaily   = "Daily"
	CycleWeekly  = "Weekly"
	CycleMonthly = "Monthly"
	CycleYearly  = "Yearly"
)

type (
	ExpenseStatus string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Profile is the 1:1 companion record of a User, created lazily.
	Profile struct {
		UserID   int64
		Role     string
		Currency string
	}

	Category struct {
		ID      int64
		OwnerID int64
		Name    string
		Icon    string
	}

	Expense struct {
		ID         int64
		OwnerID    int64
		CategoryID *int64
		// CategoryName is populated on reads via join; empty when the
		// category was deleted or never set.
		CategoryName string
		Title        string
		Amount       Money
		Date         Date
		Note         string
		Status       ExpenseStatus
	}

	RecurringExpense struct {
		ID           int64
		OwnerID      int64
		CategoryID   *int64
		CategoryName string
		Title        string
		Amount       Money
		Cycle        string
		NextDate     Date
	}

	Budget struct {
		ID           int64
		OwnerID      int64
		CategoryID   int64
		CategoryName string
		Amount       Money
		// Month is the first day of the budget month.
		Month Date
	}

	Goal struct {
		ID       int64
		OwnerID  int64
		Title    string
		Target   Money
		Progress Money
		Deadline Date
	}

	Notification struct {
		ID        int64
		OwnerID   int64
		Message   string
		Icon      string
		CreatedAt time.Time
		IsRead    bool
	}

	ExportLog struct {
		ID         int64
		OwnerID    int64
		ExportedAt time.Time
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyTitle    = errors.New("empty title")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidStatus = errors.New("invalid status")
)

// ParseDate parses an ISO YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ISO renders the date as YYYY-MM-DD, the format used in the store.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// MonthStart returns the first day of the date's month.
func (d Date) MonthStart() Date {
	y, m, _ := d.Date()
	return Date{Time: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)}
}

func (s ExpenseStatus) Validate() error {
	switch s {
	case StatusPaid, StatusPending:
		return nil
	}
	return ErrInvalidStatus
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > 100 {
		return errors.New("title too long (max 100 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return e.Status.Validate()
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 50 {
		return errors.New("name too long (max 50 characters)")
	}
	return nil
}

func (re RecurringExpense) Validate() error {
	if len(strings.TrimSpace(re.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(re.Title) > 100 {
		return errors.New("title too long (max 100 characters)")
	}
	if err := re.Amount.Validate(); err != nil {
		return err
	}
	if err := re.NextDate.Validate(); err != nil {
		return errors.New("invalid next date: " + err.Error())
	}
	return nil
}

func (b Budget) Validate() error {
	if b.CategoryID == 0 {
		return errors.New("budget requires a category")
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	return b.Month.Validate()
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(g.Title) > 100 {
		return errors.New("title too long (max 100 characters)")
	}
	if err := g.Target.Validate(); err != nil {
		return err
	}
	if g.Progress.Cents < 0 {
		return ErrInvalidAmount
	}
	return g.Deadline.Validate()
}
