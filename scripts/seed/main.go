package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kord-engine/kord/internal/app"
	"github.com/kord-engine/kord/internal/inventory"
	"github.com/kord-engine/kord/internal/marketplace"
)

type seedItem struct {
	name         string
	sku          string
	category     string
	quantity     int
	minThreshold int
	price        string
	manufacturer string
	fields       []inventory.CustomField
	listing      *inventory.MarketplaceListing
	movements    []int
}

var catalogue = []seedItem{
	{
		name: "MacBook Pro 14", sku: "CMP-1001", category: "Computers & Tablets",
		quantity: 6, minThreshold: 5, price: "1999.00", manufacturer: "Apple",
		fields:    []inventory.CustomField{{Label: "CPU Type", Value: "M3 Pro"}, {Label: "RAM", Value: "18GB"}},
		listing:   listing("takealot", "TKL-88231", "2149.00", 3, 1),
		movements: []int{4, -2},
	},
	{
		name: "Galaxy S24", sku: "PHN-2040", category: "Cellphones & Wearables",
		quantity: 14, minThreshold: 8, price: "799.00", manufacturer: "Samsung",
		listing:   listing("amazon", "AMZ-B0CS", "829.00", 7, 2),
		movements: []int{-5},
	},
	{
		name: "Bravia 55 OLED", sku: "TV-5500", category: "TV, Audio & Video",
		quantity: 2, minThreshold: 3, price: "1399.99", manufacturer: "Sony",
	},
	{
		name: "EOS R6 Mark II", sku: "CAM-0601", category: "Cameras",
		quantity: 1, minThreshold: 2, price: "2499.00", manufacturer: "Canon",
		listing: listing("ebay", "EBY-55102", "2399.00", 0, 1),
	},
	{
		name: "PlayStation 5 Slim", sku: "GAM-5001", category: "Gaming",
		quantity: 25, minThreshold: 10, price: "499.00", manufacturer: "Sony",
		fields:    []inventory.CustomField{{Label: "Region Code", Value: "ZA"}},
		listing:   listing("takealot", "TKL-90012", "529.00", 12, 4),
		movements: []int{10, -8, -3},
	},
	{
		name: "Niacinamide Serum", sku: "BTY-0031", category: "Beauty",
		quantity: 40, minThreshold: 15, price: "12.50",
		listing: listing("shein", "SHN-7781", "14.00", 22, 0),
	},
	{
		name: "Espresso Machine", sku: "HMK-3020", category: "Home & Kitchen",
		quantity: 5, minThreshold: 5, price: "349.00", manufacturer: "Breville",
	},
	{
		name: "Stage Piano", sku: "MUS-0088", category: "Musical Instruments",
		quantity: 3, minThreshold: 3, price: "899.00", manufacturer: "Roland",
		fields: []inventory.CustomField{{Label: "Condition", Value: "New"}},
	},
}

func listing(platform, id, price string, sales, pending int) *inventory.MarketplaceListing {
	return &inventory.MarketplaceListing{
		Platform:      platform,
		ListingID:     id,
		CurrentPrice:  decimal.RequireFromString(price),
		Sales24h:      sales,
		PendingOrders: pending,
		Status:        "Active",
	}
}

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open backend: %v", err)
	}
	defer backend.Close()

	store := inventory.NewStore(backend.KV, logger, inventory.StoreConfig{})
	if err := store.Load(ctx); err != nil {
		log.Fatalf("load store: %v", err)
	}
	if n := len(store.Items()); n > 0 && os.Getenv("SEED_FORCE") != "1" {
		fmt.Printf("store already holds %d items, set SEED_FORCE=1 to append\n", n)
		return
	}

	fmt.Println("→ Seeding items...")
	listings := make(map[string]*inventory.MarketplaceListing)
	for _, s := range catalogue {
		qty, minimum := s.quantity, s.minThreshold
		price := decimal.RequireFromString(s.price)
		item, _ := store.CreateItem(ctx, inventory.Draft{
			Name:         s.name,
			SKU:          s.sku,
			Quantity:     &qty,
			MinThreshold: &minimum,
			Price:        &price,
			Category:     s.category,
			Manufacturer: s.manufacturer,
			CustomFields: s.fields,
		})
		if s.listing != nil {
			listings[item.ID] = s.listing
		}

		for _, delta := range s.movements {
			mode, amount := inventory.AdjustIn, delta
			if delta < 0 {
				mode, amount = inventory.AdjustOut, -delta
			}
			if _, _, err := store.AdjustQuantity(ctx, item.ID, mode, amount); err != nil {
				log.Fatalf("adjust %s: %v", s.sku, err)
			}
		}
	}

	fmt.Println("→ Attaching marketplace listings...")
	items := store.Items()
	for i := range items {
		if l, ok := listings[items[i].ID]; ok {
			items[i].Marketplace = l
		}
	}
	if _, err := store.BulkReplace(ctx, items); err != nil {
		log.Fatalf("attach listings: %v", err)
	}
	store.RecordSync(ctx, marketplace.SyncMetadata)
	if err := store.PersistErr(); err != nil {
		log.Fatalf("save seeded state: %v", err)
	}

	fmt.Printf("✓ Seeded %d items on %s backend at %s\n", len(catalogue), cfg.StoreBackend, time.Now().Format(time.RFC3339))
}
