package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event kinds carried on the notification queue.
const (
	KindBudgetAlert     = "budget_alert"
	KindExportCompleted = "export_completed"
)

// Event is the envelope for every notification message. Payload fields are
// flattened; unused ones stay zero for the other kind.
type Event struct {
	Kind      string    `json:"kind"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`

	// budget_alert
	Month       string `json:"month,omitempty"` // YYYY-MM-DD month start
	SpentCents  int64  `json:"spent_cents,omitempty"`
	BudgetCents int64  `json:"budget_cents,omitempty"`

	// export_completed
	Rows int `json:"rows,omitempty"`
}

// NewBudgetAlert creates an event for a month whose spend exceeded its budget.
func NewBudgetAlert(userID int64, month string, spentCents, budgetCents int64) *Event {
	return &Event{
		Kind:        KindBudgetAlert,
		UserID:      userID,
		Timestamp:   time.Now(),
		Month:       month,
		SpentCents:  spentCents,
		BudgetCents: budgetCents,
	}
}

// NewExportCompleted creates an event for a finished CSV export.
func NewExportCompleted(userID int64, rows int) *Event {
	return &Event{
		Kind:      KindExportCompleted,
		UserID:    userID,
		Timestamp: time.Now(),
		Rows:      rows,
	}
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON creates an event from JSON bytes
func EventFromJSON(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.Kind == "" || ev.UserID == 0 {
		return nil, fmt.Errorf("malformed event: kind=%q user_id=%d", ev.Kind, ev.UserID)
	}
	return &ev, nil
}
