package amqp

import "testing"

func TestEventJSONRoundTrip(t *testing.T) {
	ev := NewBudgetAlert(7, "2024-06-01", 12000, 10000)
	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := EventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != KindBudgetAlert || got.UserID != 7 || got.Month != "2024-06-01" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.SpentCents != 12000 || got.BudgetCents != 10000 {
		t.Fatalf("unexpected amounts: %+v", got)
	}
}

func TestEventFromJSONMalformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"missing kind", `{"user_id": 1}`},
		{"missing user", `{"kind": "budget_alert"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := EventFromJSON([]byte(tc.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
