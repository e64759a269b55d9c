package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/kord-engine/kord/internal/inventory"
)

const (
	flowWindow      = 24 * time.Hour
	recentLogsLimit = 12
)

// Dashboard contains the headline indicators for the inventory.
type Dashboard struct {
	TotalItems        int                  `json:"totalItems"`
	TotalUnits        int                  `json:"totalUnits"`
	TotalValue        decimal.Decimal      `json:"totalValue"`
	TotalValueZar     decimal.Decimal      `json:"totalValueZar"`
	TotalValueDisplay string               `json:"totalValueDisplay"`
	TotalZarDisplay   string               `json:"totalValueZarDisplay"`
	LowStockCount     int                  `json:"lowStockCount"`
	LowStock          []inventory.Item     `json:"lowStock"`
	Flow              inventory.Flow       `json:"flow24h"`
	LastSync          *time.Time           `json:"lastSync,omitempty"`
	RecentLogs        []inventory.LogEntry `json:"recentLogs"`
	GeneratedAt       time.Time            `json:"generatedAt"`
}

// Dashboard resolves the dashboard using cache-aware lookups.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	key, err := s.cache.BuildKey(ctx, keyDashboard())
	if err != nil {
		return Dashboard{}, err
	}
	var out Dashboard
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.buildDashboard(ctx)
	})
	if err != nil {
		return Dashboard{}, err
	}
	return out, nil
}

func (s *Service) buildDashboard(ctx context.Context) (Dashboard, error) {
	snap := s.source.Snapshot()
	now := s.now()
	d := Dashboard{GeneratedAt: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.TotalItems = len(snap.Items)
		for _, it := range snap.Items {
			d.TotalUnits += it.Quantity
		}
		d.TotalValue = inventory.TotalValue(snap.Items)
		d.TotalValueZar = inventory.PriceZar(d.TotalValue)
		d.TotalValueDisplay = FormatUSD(d.TotalValue)
		d.TotalZarDisplay = FormatZAR(d.TotalValueZar)
		d.LowStock = inventory.LowStock(snap.Items)
		d.LowStockCount = len(d.LowStock)
		return nil
	})
	g.Go(func() error {
		d.Flow = inventory.WindowedFlow(snap.Logs, now.Add(-flowWindow))
		recent := snap.Logs
		if len(recent) > recentLogsLimit {
			recent = recent[:recentLogsLimit]
		}
		d.RecentLogs = append([]inventory.LogEntry{}, recent...)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.sync != nil {
			if at, ok := s.sync.LastSync(); ok {
				d.LastSync = &at
				return nil
			}
		}
		if at, ok := inventory.LastSync(snap.Logs); ok {
			d.LastSync = &at
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}
