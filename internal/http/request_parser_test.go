package http

import (
	"net/url"
	"testing"
	"time"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"keeps interior spaces", "a b c", "a b c"},
		{"strips control chars", "a\x00b\x07c", "abc"},
		{"keeps newline and tab", "a\tb\nc", "a\tb\nc"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeInput(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name, in, want string
		wantErr        bool
	}{
		{"full date normalized", "2025-03-15", "2025-03-01", false},
		{"year-month shorthand", "2025-03", "2025-03-01", false},
		{"first of month", "2025-03-01", "2025-03-01", false},
		{"garbage", "March 2025", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMonth(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.ISO() != tt.want {
				t.Errorf("got %s, want %s", got.ISO(), tt.want)
			}
		})
	}

	now := time.Now()
	got, err := parseMonth("")
	if err != nil {
		t.Fatalf("empty month: %v", err)
	}
	if got.Year() != now.Year() || got.Month() != now.Month() || got.Day() != 1 {
		t.Errorf("empty month = %s, want first of current month", got.ISO())
	}
}

func TestParseExpenseForm(t *testing.T) {
	form := url.Values{
		"title":       {"  Coffee  "},
		"amount":      {"4,50"},
		"date":        {"2025-03-10"},
		"category_id": {"3"},
		"note":        {"morning"},
		"status":      {"pending"},
	}
	e, err := parseExpenseForm(form)
	if err != nil {
		t.Fatalf("parseExpenseForm: %v", err)
	}
	if e.Title != "Coffee" {
		t.Errorf("title = %q", e.Title)
	}
	if e.Amount.Cents != 450 {
		t.Errorf("cents = %d", e.Amount.Cents)
	}
	if e.CategoryID == nil || *e.CategoryID != 3 {
		t.Errorf("category id = %v", e.CategoryID)
	}
	if e.Date.ISO() != "2025-03-10" {
		t.Errorf("date = %s", e.Date.ISO())
	}
	if string(e.Status) != "PENDING" {
		t.Errorf("status = %s", e.Status)
	}
}

func TestParseExpenseFormDefaults(t *testing.T) {
	e, err := parseExpenseForm(url.Values{
		"title":  {"Coffee"},
		"amount": {"4.50"},
	})
	if err != nil {
		t.Fatalf("parseExpenseForm: %v", err)
	}
	now := time.Now()
	if e.Date.ISO() != now.Format("2006-01-02") {
		t.Errorf("date = %s, want today", e.Date.ISO())
	}
	if e.Status != "PAID" {
		t.Errorf("status = %s, want PAID", e.Status)
	}
	if e.CategoryID != nil {
		t.Errorf("category id = %v, want nil", e.CategoryID)
	}
}

func TestParseOptionalID(t *testing.T) {
	tests := []struct {
		name, in string
		want     *int64
		wantErr  bool
	}{
		{"empty is nil", "", nil, false},
		{"zero is nil", "0", nil, false},
		{"valid", "7", ptr(int64(7)), false},
		{"negative", "-1", nil, true},
		{"garbage", "abc", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOptionalID(url.Values{"id": {tt.in}}, "id")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("got %d, want %d", *got, *tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
