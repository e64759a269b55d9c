package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kord-engine/kord/internal/inventory"
)

var hundred = decimal.NewFromInt(100)

// CategoryRow is one line of the category value roll-up.
type CategoryRow struct {
	Category string          `json:"category"`
	Items    int             `json:"items"`
	Units    int             `json:"units"`
	Value    decimal.Decimal `json:"value"`
	ValueZar decimal.Decimal `json:"valueZar"`
	Share    decimal.Decimal `json:"share"`
	Display  string          `json:"display"`
}

// Report is the category roll-up with the headline audit figures.
type Report struct {
	Categories      []CategoryRow   `json:"categories"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	TelemetryEvents int             `json:"telemetryEvents"`
	RiskFactor      int             `json:"riskFactor"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}

// CategoryReport resolves the category roll-up using cache-aware lookups.
func (s *Service) CategoryReport(ctx context.Context) (Report, error) {
	key, err := s.cache.BuildKey(ctx, keyCategoryReport())
	if err != nil {
		return Report{}, err
	}
	var out Report
	err = s.cache.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
		snap := s.source.Snapshot()
		return BuildReport(snap, s.now()), nil
	})
	if err != nil {
		return Report{}, err
	}
	return out, nil
}

// BuildReport computes the roll-up from snap. Rows are ordered by value
// descending, then by category name.
func BuildReport(snap inventory.State, now time.Time) Report {
	totals := inventory.CategoryTotals(snap.Items)
	counts := make(map[string]int, len(totals))
	units := make(map[string]int, len(totals))
	for _, it := range snap.Items {
		counts[it.Category]++
		units[it.Category] += it.Quantity
	}

	total := inventory.TotalValue(snap.Items)
	rows := make([]CategoryRow, 0, len(totals))
	for category, value := range totals {
		share := decimal.Zero
		if total.IsPositive() {
			share = value.Mul(hundred).Div(total).Round(2)
		}
		rows = append(rows, CategoryRow{
			Category: category,
			Items:    counts[category],
			Units:    units[category],
			Value:    value,
			ValueZar: inventory.PriceZar(value),
			Share:    share,
			Display:  FormatUSD(value),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Value.Cmp(rows[j].Value); c != 0 {
			return c > 0
		}
		return rows[i].Category < rows[j].Category
	})

	return Report{
		Categories:      rows,
		TotalValue:      total,
		TelemetryEvents: len(snap.Logs),
		RiskFactor:      len(inventory.LowStock(snap.Items)),
		GeneratedAt:     now,
	}
}
