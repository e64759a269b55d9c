package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultItemName     = "Unnamed Item"
	defaultCategory     = "General"
	defaultMinThreshold = 5

	// SyncItemID and SyncItemName label marketplace synchronization entries,
	// which do not belong to a single item.
	SyncItemID   = "global"
	SyncItemName = "Marketplace Ecosystem"
)

// Env supplies the clock and identity generators stamped onto new records.
type Env struct {
	Now    func() time.Time
	NewID  func() string
	NewSKU func() string
}

// DefaultEnv uses wall-clock UTC time, random UUIDs and SKU-<n> placeholders.
func DefaultEnv() Env {
	return Env{
		Now:    func() time.Time { return time.Now().UTC() },
		NewID:  uuid.NewString,
		NewSKU: func() string { return fmt.Sprintf("SKU-%d", rand.IntN(10000)) },
	}
}

// PriceZar derives the display price from the base price.
func PriceZar(price decimal.Decimal) decimal.Decimal {
	return price.Mul(USDToZARRate)
}

// FindItem returns the index of the item with id, or -1.
func FindItem(items []Item, id string) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
}

// CreateItem appends a new Available item built from d and prepends one
// CREATE entry with delta = quantity. It never fails.
func CreateItem(s State, d Draft, env Env) (State, Item, LogEntry) {
	now := env.Now()
	item := Item{
		ID:             env.NewID(),
		Name:           d.Name,
		SKU:            d.SKU,
		SerialNumber:   d.SerialNumber,
		WarrantyExpiry: d.WarrantyExpiry,
		MinThreshold:   defaultMinThreshold,
		Category:       d.Category,
		LastUpdated:    now,
		Status:         StatusAvailable,
		Images:         []string{},
		CustomFields:   []CustomField{},
		Manufacturer:   d.Manufacturer,
		ProjectLink:    d.ProjectLink,
		Attachments:    []Attachment{},
		Tags:           slices.Clone(d.Tags),
	}
	if item.Name == "" {
		item.Name = defaultItemName
	}
	if item.SKU == "" {
		item.SKU = env.NewSKU()
	}
	if item.Category == "" {
		item.Category = defaultCategory
	}
	if d.Quantity != nil {
		item.Quantity = *d.Quantity
	}
	if d.MinThreshold != nil {
		item.MinThreshold = *d.MinThreshold
	}
	if d.Price != nil {
		item.Price = *d.Price
	}
	if len(d.CustomFields) > 0 {
		item.CustomFields = slices.Clone(d.CustomFields)
	}
	item.PriceZar = PriceZar(item.Price)

	entry := LogEntry{
		ID:        env.NewID(),
		ItemID:    item.ID,
		ItemName:  item.Name,
		Type:      LogTypeCreate,
		Delta:     item.Quantity,
		Value:     item.StockValue(),
		Timestamp: now,
		Metadata:  "Initial Registration",
	}

	next := State{
		Items: append(slices.Clone(s.Items), item),
		Logs:  prepend(s.Logs, entry),
	}
	return next, item, entry
}

// AdjustQuantity moves amount units in or out of an item. OUT larger than the
// on-hand quantity is rejected with ErrInsufficientStock and s is returned
// untouched.
func AdjustQuantity(s State, itemID string, mode AdjustMode, amount int, env Env) (State, LogEntry, error) {
	if mode != AdjustIn && mode != AdjustOut {
		return s, LogEntry{}, ErrInvalidMode
	}
	if amount <= 0 {
		return s, LogEntry{}, ErrInvalidAmount
	}
	idx := FindItem(s.Items, itemID)
	if idx < 0 {
		return s, LogEntry{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	current := s.Items[idx]
	if mode == AdjustOut && amount > current.Quantity {
		return s, LogEntry{}, fmt.Errorf("%w: requested %d, on hand %d", ErrInsufficientStock, amount, current.Quantity)
	}

	now := env.Now()
	delta := amount
	logType := LogTypeIn
	meta := fmt.Sprintf("Manual inventory addition (+%d units).", amount)
	if mode == AdjustOut {
		delta = -amount
		logType = LogTypeOut
		meta = fmt.Sprintf("Manual inventory depletion (-%d units).", amount)
	}

	items := slices.Clone(s.Items)
	items[idx].Quantity += delta
	items[idx].LastUpdated = now

	entry := LogEntry{
		ID:        env.NewID(),
		ItemID:    current.ID,
		ItemName:  current.Name,
		Type:      logType,
		Delta:     delta,
		Value:     current.Price.Mul(decimal.NewFromInt(int64(amount))),
		Timestamp: now,
		Metadata:  meta,
	}
	return State{Items: items, Logs: prepend(s.Logs, entry)}, entry, nil
}

// ChangeStatus moves an item to status. Every transition is legal, including
// one to the current status, and every call is logged.
func ChangeStatus(s State, itemID string, status Status, env Env) (State, LogEntry, error) {
	if !status.Valid() {
		return s, LogEntry{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	idx := FindItem(s.Items, itemID)
	if idx < 0 {
		return s, LogEntry{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	current := s.Items[idx]
	now := env.Now()

	items := slices.Clone(s.Items)
	items[idx].Status = status
	items[idx].LastUpdated = now

	entry := LogEntry{
		ID:        env.NewID(),
		ItemID:    current.ID,
		ItemName:  current.Name,
		Type:      LogTypeStatusChange,
		Delta:     0,
		Value:     decimal.Zero,
		Timestamp: now,
		Metadata:  fmt.Sprintf("Operational status transition: %s → %s.", current.Status, status),
	}
	return State{Items: items, Logs: prepend(s.Logs, entry)}, entry, nil
}

// BulkReplace overwrites the item collection with replacement. PriceZar is
// recomputed for every row and rows whose content changed get a fresh
// LastUpdated. No log entries are written.
//
// TODO: decide with product whether spreadsheet edits should emit ADJUST
// entries; today they bypass the activity log entirely.
func BulkReplace(s State, replacement []Item, env Env) (State, error) {
	seen := make(map[string]struct{}, len(replacement))
	for i, it := range replacement {
		if err := validateRow(it); err != nil {
			return s, fmt.Errorf("%w: row %d: %v", ErrInvalidItem, i, err)
		}
		if _, dup := seen[it.ID]; dup {
			return s, fmt.Errorf("%w: row %d: duplicate id %s", ErrInvalidItem, i, it.ID)
		}
		seen[it.ID] = struct{}{}
	}

	now := env.Now()
	items := make([]Item, len(replacement))
	for i, it := range replacement {
		it.PriceZar = PriceZar(it.Price)
		if prev := FindItem(s.Items, it.ID); prev < 0 || !sameContent(s.Items[prev], it) {
			it.LastUpdated = now
		} else {
			it.LastUpdated = s.Items[prev].LastUpdated
		}
		items[i] = it
	}
	return State{Items: items, Logs: s.Logs}, nil
}

// RecordSync prepends the log entry written when a marketplace
// synchronization completes.
func RecordSync(s State, metadata string, env Env) (State, LogEntry) {
	entry := LogEntry{
		ID:        env.NewID(),
		ItemID:    SyncItemID,
		ItemName:  SyncItemName,
		Type:      LogTypeAdjust,
		Delta:     0,
		Value:     decimal.Zero,
		Timestamp: env.Now(),
		Metadata:  metadata,
	}
	return State{Items: s.Items, Logs: prepend(s.Logs, entry)}, entry
}

func validateRow(it Item) error {
	switch {
	case it.ID == "":
		return fmt.Errorf("id required")
	case it.Quantity < 0:
		return fmt.Errorf("quantity must be >= 0")
	case it.MinThreshold < 0:
		return fmt.Errorf("minThreshold must be >= 0")
	case it.Price.IsNegative():
		return fmt.Errorf("price must be >= 0")
	case !it.Status.Valid():
		return fmt.Errorf("unknown status %q", it.Status)
	}
	return nil
}

// sameContent compares two items ignoring the derived and bookkeeping fields.
func sameContent(a, b Item) bool {
	a.LastUpdated, b.LastUpdated = time.Time{}, time.Time{}
	a.PriceZar, b.PriceZar = decimal.Zero, decimal.Zero
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ra, rb)
}

func prepend(logs []LogEntry, entry LogEntry) []LogEntry {
	out := make([]LogEntry, 0, len(logs)+1)
	out = append(out, entry)
	return append(out, logs...)
}
