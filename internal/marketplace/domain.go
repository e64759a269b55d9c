// Package marketplace runs the simulated marketplace synchronization and
// summarises per-item marketplace listings.
package marketplace

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kord-engine/kord/internal/inventory"
	"github.com/kord-engine/kord/internal/platform/gate"
)

// SyncMetadata is written on the log entry of every completed sync.
const SyncMetadata = "Global synchronization with Takealot, Amazon, and eBay complete."

// ErrSyncInProgress rejects a sync trigger while another sync is running.
var ErrSyncInProgress = fmt.Errorf("marketplace: sync in progress: %w", gate.ErrBusy)

// Platform is one connected sales channel.
type Platform struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// Platforms lists the channels covered by a sync.
var Platforms = []Platform{
	{ID: "takealot", Name: "Takealot", Region: "ZA"},
	{ID: "amazon", Name: "Amazon", Region: "Global"},
	{ID: "ebay", Name: "eBay", Region: "Global"},
	{ID: "shein", Name: "Shein", Region: "Global"},
}

// PlatformSummary aggregates the listings of one platform.
type PlatformSummary struct {
	Platform      string          `json:"platform"`
	Listings      int             `json:"listings"`
	Active        int             `json:"active"`
	Sales24h      int             `json:"sales24h"`
	PendingOrders int             `json:"pendingOrders"`
	ListedValue   decimal.Decimal `json:"listedValue"`
}

// Board groups the items that carry marketplace listings by platform, ordered
// by platform name. Items without a listing are skipped.
func Board(items []inventory.Item) []PlatformSummary {
	byPlatform := make(map[string]*PlatformSummary)
	for _, it := range items {
		listing := it.Marketplace
		if listing == nil || listing.Platform == "" {
			continue
		}
		sum, ok := byPlatform[listing.Platform]
		if !ok {
			sum = &PlatformSummary{Platform: listing.Platform, ListedValue: decimal.Zero}
			byPlatform[listing.Platform] = sum
		}
		sum.Listings++
		if listing.Status == "Active" {
			sum.Active++
		}
		sum.Sales24h += listing.Sales24h
		sum.PendingOrders += listing.PendingOrders
		sum.ListedValue = sum.ListedValue.Add(listing.CurrentPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	out := make([]PlatformSummary, 0, len(byPlatform))
	for _, sum := range byPlatform {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out
}
