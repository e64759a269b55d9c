package inventory

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var baseTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
	seq int
}

func (c *fakeClock) env() Env {
	return Env{
		Now: func() time.Time { return c.now },
		NewID: func() string {
			c.seq++
			return fmt.Sprintf("id-%03d", c.seq)
		},
		NewSKU: func() string { return "SKU-TEST" },
	}
}

func newClock() *fakeClock { return &fakeClock{now: baseTime} }

func intPtr(v int) *int { return &v }

func dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("decimal %q: %v", v, err)
	}
	return d
}

func decPtr(t *testing.T, v string) *decimal.Decimal {
	d := dec(t, v)
	return &d
}

// seedItem registers one item through CreateItem and returns the new state.
func seedItem(t *testing.T, s State, env Env, name string, qty, threshold int, price string) (State, Item) {
	t.Helper()
	next, item, _ := CreateItem(s, Draft{
		Name:         name,
		Quantity:     intPtr(qty),
		MinThreshold: intPtr(threshold),
		Price:        decPtr(t, price),
		Category:     "Gaming",
	}, env)
	return next, item
}
