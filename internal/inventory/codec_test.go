package inventory

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeStatePreservesCollections(t *testing.T) {
	clock := newClock()
	s, item := seedItem(t, State{}, clock.env(), "Synth", 2, 1, "799.99")
	s, _, err := AdjustQuantity(s, item.ID, AdjustOut, 1, clock.env())
	require.NoError(t, err)

	blobs, err := EncodeState(s)
	require.NoError(t, err)
	require.Contains(t, blobs, ItemsKey)
	require.Contains(t, blobs, LogsKey)

	got, err := DecodeState(blobs)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Len(t, got.Logs, 2)

	require.Equal(t, item.ID, got.Items[0].ID)
	require.Equal(t, 1, got.Items[0].Quantity)
	require.True(t, got.Items[0].Price.Equal(s.Items[0].Price))
	require.True(t, got.Items[0].PriceZar.Equal(s.Items[0].PriceZar))
	require.True(t, got.Items[0].LastUpdated.Equal(s.Items[0].LastUpdated))
	require.Equal(t, s.Logs[0].Type, got.Logs[0].Type)
	require.Equal(t, s.Logs[0].Delta, got.Logs[0].Delta)
	require.True(t, got.Logs[0].Value.Equal(s.Logs[0].Value))
}

func TestEncodeDecodeStateKeepsEveryItemField(t *testing.T) {
	updated := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	item := Item{
		ID:             "item-1",
		Name:           "Fender Telecaster",
		SKU:            "GTR-0042",
		SerialNumber:   "US21001234",
		WarrantyExpiry: "2028-01-31",
		Quantity:       3,
		MinThreshold:   1,
		Price:          decimal.RequireFromString("1299.99"),
		PriceZar:       decimal.RequireFromString("21085.84"),
		Category:       "Musical Instruments",
		LastUpdated:    updated,
		TotalSold:      7,
		Status:         StatusToRepair,
		Images:         []string{"https://img.example/tele-front.jpg", "https://img.example/tele-back.jpg"},
		CustomFields:   []CustomField{{Label: "Body", Value: "Ash"}, {Label: "Neck", Value: "Maple"}},
		Manufacturer:   "Fender",
		ProjectLink:    "https://projects.example/tele",
		Attachments: []Attachment{
			{Name: "invoice.pdf", URL: "https://docs.example/invoice.pdf", Type: AttachmentPDF},
			{Name: "spec sheet", URL: "https://docs.example/spec", Type: AttachmentLink},
		},
		Marketplace: &MarketplaceListing{
			Platform:      "Takealot",
			ListingID:     "TAL-9981",
			CurrentPrice:  decimal.RequireFromString("1349.00"),
			Sales24h:      2,
			PendingOrders: 1,
			Status:        "ACTIVE",
		},
		Tags: []string{"vintage", "guitar"},
	}
	entry := LogEntry{
		ID:        "log-1",
		ItemID:    item.ID,
		ItemName:  item.Name,
		Type:      LogTypeCreate,
		Delta:     3,
		Value:     decimal.RequireFromString("3899.97"),
		Timestamp: updated,
		Metadata:  "Initial Registration",
	}
	want := State{Items: []Item{item}, Logs: []LogEntry{entry}}

	blobs, err := EncodeState(want)
	require.NoError(t, err)
	got, err := DecodeState(blobs)
	require.NoError(t, err)

	again, err := EncodeState(got)
	require.NoError(t, err)
	require.JSONEq(t, string(blobs[ItemsKey]), string(again[ItemsKey]))
	require.JSONEq(t, string(blobs[LogsKey]), string(again[LogsKey]))

	require.Len(t, got.Items, 1)
	g := got.Items[0]
	require.True(t, g.Price.Equal(item.Price))
	require.True(t, g.PriceZar.Equal(item.PriceZar))
	require.True(t, g.LastUpdated.Equal(item.LastUpdated))
	require.NotNil(t, g.Marketplace)
	require.True(t, g.Marketplace.CurrentPrice.Equal(item.Marketplace.CurrentPrice))

	g.Price, g.PriceZar, g.LastUpdated = item.Price, item.PriceZar, item.LastUpdated
	listing := *g.Marketplace
	listing.CurrentPrice = item.Marketplace.CurrentPrice
	g.Marketplace = &listing
	require.Equal(t, item, g)

	require.Len(t, got.Logs, 1)
	l := got.Logs[0]
	require.True(t, l.Value.Equal(entry.Value))
	require.True(t, l.Timestamp.Equal(entry.Timestamp))
	l.Value, l.Timestamp = entry.Value, entry.Timestamp
	require.Equal(t, entry, l)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(blobs[ItemsKey], &raw))
	require.Equal(t, "US21001234", raw[0]["serialNumber"])
}

func TestEncodeStateWritesEmptyArrays(t *testing.T) {
	blobs, err := EncodeState(State{})
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(blobs[ItemsKey]))
	require.JSONEq(t, `[]`, string(blobs[LogsKey]))
}

func TestDecodeStateMissingKeysYieldEmpty(t *testing.T) {
	got, err := DecodeState(nil)
	require.NoError(t, err)
	require.NotNil(t, got.Items)
	require.NotNil(t, got.Logs)
	require.Empty(t, got.Items)
	require.Empty(t, got.Logs)
}

func TestDecodeStateMalformedBlobResetsOnlyThatCollection(t *testing.T) {
	blobs := map[string][]byte{
		ItemsKey: []byte(`{not json`),
		LogsKey:  []byte(`[{"id":"l1","itemId":"x","type":"IN","delta":2,"value":"4","timestamp":"2026-03-14T09:30:00Z"}]`),
	}
	got, err := DecodeState(blobs)
	require.ErrorIs(t, err, ErrMalformedState)
	require.Empty(t, got.Items)
	require.Len(t, got.Logs, 1)
	require.Equal(t, "l1", got.Logs[0].ID)
}
