package inventory

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kord-engine/kord/internal/platform/httpx"
)

// USDToZARRate converts the base (USD) unit price into the ZAR display price.
var USDToZARRate = decimal.RequireFromString("16.22")

// Status is the lifecycle state of an item.
type Status string

const (
	// StatusAvailable marks stock that can be sold or issued.
	StatusAvailable Status = "Available"
	// StatusToRepair marks stock waiting for repair.
	StatusToRepair Status = "To Repair"
	// StatusInUse marks stock in internal use.
	StatusInUse Status = "In Use"
	// StatusSold marks stock that left the business.
	StatusSold Status = "Sold"
)

// Statuses lists every valid Status. Any status may move to any other.
var Statuses = []Status{StatusAvailable, StatusToRepair, StatusInUse, StatusSold}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// LogType enumerates activity log entry kinds.
type LogType string

const (
	LogTypeCreate          LogType = "CREATE"
	LogTypeIn              LogType = "IN"
	LogTypeOut             LogType = "OUT"
	LogTypeAdjust          LogType = "ADJUST"
	LogTypeStatusChange    LogType = "STATUS_CHANGE"
	LogTypeSale            LogType = "SALE"
	LogTypeDelete          LogType = "DELETE"
	LogTypeMarketplaceSale LogType = "MARKETPLACE_SALE"
)

// AdjustMode selects the direction of a quantity adjustment.
type AdjustMode string

const (
	// AdjustIn adds stock.
	AdjustIn AdjustMode = "IN"
	// AdjustOut removes stock.
	AdjustOut AdjustMode = "OUT"
)

// CustomField is a free-form label/value pair attached to an item.
type CustomField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AttachmentType enumerates attachment kinds.
type AttachmentType string

const (
	AttachmentPDF   AttachmentType = "PDF"
	AttachmentImage AttachmentType = "IMAGE"
	AttachmentLink  AttachmentType = "LINK"
)

// Attachment links a document to an item.
type Attachment struct {
	Name string         `json:"name"`
	URL  string         `json:"url"`
	Type AttachmentType `json:"type"`
}

// MarketplaceListing carries per-item marketplace figures shown on the
// marketplace board.
type MarketplaceListing struct {
	Platform      string          `json:"platform"`
	ListingID     string          `json:"listingId"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	Sales24h      int             `json:"sales24h"`
	PendingOrders int             `json:"pendingOrders"`
	Status        string          `json:"status"`
}

// Item is one tracked inventory lot.
type Item struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	SKU            string              `json:"sku"`
	SerialNumber   string              `json:"serialNumber,omitempty"`
	WarrantyExpiry string              `json:"warrantyExpiry,omitempty"`
	Quantity       int                 `json:"quantity"`
	MinThreshold   int                 `json:"minThreshold"`
	Price          decimal.Decimal     `json:"price"`
	PriceZar       decimal.Decimal     `json:"priceZar"`
	Category       string              `json:"category"`
	LastUpdated    time.Time           `json:"lastUpdated"`
	TotalSold      int                 `json:"totalSold"`
	Status         Status              `json:"status"`
	Images         []string            `json:"images"`
	CustomFields   []CustomField       `json:"customFields"`
	Manufacturer   string              `json:"manufacturer,omitempty"`
	ProjectLink    string              `json:"projectLink,omitempty"`
	Attachments    []Attachment        `json:"attachments"`
	Marketplace    *MarketplaceListing `json:"marketplace,omitempty"`
	Tags           []string            `json:"tags,omitempty"`
}

// Critical reports whether the item is at or below its restock threshold.
func (i Item) Critical() bool {
	return i.Quantity <= i.MinThreshold
}

// StockValue is price × quantity in the base currency.
func (i Item) StockValue() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// LogEntry is an immutable record of one state transition.
type LogEntry struct {
	ID        string          `json:"id"`
	ItemID    string          `json:"itemId"`
	ItemName  string          `json:"itemName"`
	Type      LogType         `json:"type"`
	Delta     int             `json:"delta"`
	Value     decimal.Decimal `json:"value"`
	Timestamp time.Time       `json:"timestamp"`
	Metadata  string          `json:"metadata,omitempty"`
}

// Draft carries caller supplied fields for a new item. Nil pointers and empty
// strings fall back to defaults.
type Draft struct {
	Name           string
	SKU            string
	SerialNumber   string
	WarrantyExpiry string
	Quantity       *int
	MinThreshold   *int
	Price          *decimal.Decimal
	Category       string
	Manufacturer   string
	ProjectLink    string
	Tags           []string
	CustomFields   []CustomField
}

// State is the pair of collections owned by the Store. Logs are newest-first.
type State struct {
	Items []Item
	Logs  []LogEntry
}

// ErrItemNotFound indicates an unknown item id.
var ErrItemNotFound = fmt.Errorf("inventory: item %w", httpx.ErrNotFound)

// ErrInsufficientStock rejects an OUT adjustment larger than on-hand quantity.
var ErrInsufficientStock = fmt.Errorf("inventory: insufficient stock: %w", httpx.ErrConflict)

// ErrInvalidAmount rejects non-positive adjustment amounts.
var ErrInvalidAmount = fmt.Errorf("inventory: amount must be a positive integer: %w", httpx.ErrValidation)

// ErrInvalidMode rejects adjustment modes other than IN and OUT.
var ErrInvalidMode = fmt.Errorf("inventory: mode must be IN or OUT: %w", httpx.ErrValidation)

// ErrInvalidStatus rejects statuses outside the closed enumeration.
var ErrInvalidStatus = fmt.Errorf("inventory: unknown status: %w", httpx.ErrValidation)

// ErrInvalidItem rejects bulk rows that break item invariants.
var ErrInvalidItem = fmt.Errorf("inventory: invalid item: %w", httpx.ErrValidation)

// ErrPersist wraps a failed write of the collections to the KV.
var ErrPersist = errors.New("inventory: persist state")

// ErrMalformedState indicates a stored blob that could not be decoded.
var ErrMalformedState = errors.New("inventory: malformed stored state")
