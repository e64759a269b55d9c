package inventory

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Flow aggregates stock movement over a time window.
type Flow struct {
	Inflow  int `json:"inflow"`
	Outflow int `json:"outflow"`
}

// LowStock returns the items with quantity <= minThreshold, in input order.
func LowStock(items []Item) []Item {
	out := make([]Item, 0)
	for _, it := range items {
		if it.Critical() {
			out = append(out, it)
		}
	}
	return out
}

// TotalValue sums price × quantity over items.
func TotalValue(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.StockValue())
	}
	return total
}

// WindowedFlow sums positive deltas into Inflow and negative deltas into
// Outflow for entries at or after windowStart. Zero deltas count for neither.
func WindowedFlow(logs []LogEntry, windowStart time.Time) Flow {
	var f Flow
	for _, entry := range logs {
		if entry.Timestamp.Before(windowStart) {
			continue
		}
		switch {
		case entry.Delta > 0:
			f.Inflow += entry.Delta
		case entry.Delta < 0:
			f.Outflow += -entry.Delta
		}
	}
	return f
}

// CategoryTotals groups stock value by the raw category string.
func CategoryTotals(items []Item) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, it := range items {
		current, ok := totals[it.Category]
		if !ok {
			current = decimal.Zero
		}
		totals[it.Category] = current.Add(it.StockValue())
	}
	return totals
}

// ItemLogs returns the entries recorded for itemID, preserving newest-first order.
func ItemLogs(logs []LogEntry, itemID string) []LogEntry {
	out := make([]LogEntry, 0)
	for _, entry := range logs {
		if entry.ItemID == itemID {
			out = append(out, entry)
		}
	}
	return out
}

// Recency restricts results to recently updated items.
type Recency string

const (
	RecencyAny   Recency = "any"
	RecencyToday Recency = "today"
	RecencyWeek  Recency = "week"
	RecencyMonth Recency = "month"
)

// Window returns the maximum age for r; zero means unbounded.
func (r Recency) Window() (time.Duration, error) {
	day := 24 * time.Hour
	switch r {
	case "", RecencyAny:
		return 0, nil
	case RecencyToday:
		return day, nil
	case RecencyWeek:
		return 7 * day, nil
	case RecencyMonth:
		return 30 * day, nil
	}
	return 0, fmt.Errorf("inventory: unknown recency %q", string(r))
}

// Criteria is the predicate set used by Filter. Zero values match everything.
type Criteria struct {
	Term       string
	Categories []string
	MaxPrice   *decimal.Decimal
	Recency    Recency
}

// Search applies the free-text predicate alone.
func Search(items []Item, term string) []Item {
	return Filter(items, Criteria{Term: term}, time.Time{})
}

// Filter returns the items matching every predicate in c, in input order.
// An unknown Recency matches nothing.
func Filter(items []Item, c Criteria, now time.Time) []Item {
	term := strings.ToLower(c.Term)
	window, err := c.Recency.Window()
	out := make([]Item, 0, len(items))
	if err != nil {
		return out
	}
	for _, it := range items {
		if term != "" && !matchesTerm(it, term) {
			continue
		}
		if len(c.Categories) > 0 && !slices.Contains(c.Categories, it.Category) {
			continue
		}
		if c.MaxPrice != nil && it.Price.GreaterThan(*c.MaxPrice) {
			continue
		}
		if window > 0 && now.Sub(it.LastUpdated) > window {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesTerm(it Item, lowered string) bool {
	return strings.Contains(strings.ToLower(it.Name), lowered) ||
		strings.Contains(strings.ToLower(it.SKU), lowered) ||
		(it.SerialNumber != "" && strings.Contains(strings.ToLower(it.SerialNumber), lowered))
}

// LastSync returns the timestamp of the newest marketplace sync entry. logs
// are newest first.
func LastSync(logs []LogEntry) (time.Time, bool) {
	for _, l := range logs {
		if l.ItemID == SyncItemID {
			return l.Timestamp, true
		}
	}
	return time.Time{}, false
}
