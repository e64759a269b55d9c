package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kord-engine/kord/internal/analytics"
	"github.com/kord-engine/kord/internal/inventory"
)

func TestWriteCategoryCSV(t *testing.T) {
	report := analytics.Report{
		Categories: []analytics.CategoryRow{
			{Category: "Gaming", Items: 2, Units: 7, Value: decimal.NewFromInt(1500), ValueZar: decimal.NewFromInt(24330), Share: decimal.NewFromInt(75)},
			{Category: "Cameras", Items: 1, Units: 1, Value: decimal.NewFromInt(500), ValueZar: decimal.NewFromInt(8110), Share: decimal.NewFromInt(25)},
		},
		TotalValue:      decimal.NewFromInt(2000),
		TelemetryEvents: 9,
		RiskFactor:      1,
	}
	buf := &bytes.Buffer{}
	require.NoError(t, WriteCategoryCSV(buf, report))

	body := buf.String()
	require.True(t, strings.HasSuffix(body, "# Total: $2,000.00 | Events: 9 | Risk: 1\n"), body)

	csvPart := strings.SplitN(body, "# Total", 2)[0]
	records, err := csv.NewReader(strings.NewReader(csvPart)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []string{"Gaming", "2", "7", "1500.00", "24330.00", "75.00"}, records[1])
}

func TestWriteLogCSV(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	logs := []inventory.LogEntry{
		{ID: "l2", ItemID: "i1", ItemName: "Lens, 50mm", Type: inventory.LogTypeOut, Delta: -2, Value: decimal.NewFromInt(40), Timestamp: ts, Metadata: "Manual inventory depletion (-2 units)."},
		{ID: "l1", ItemID: "i1", ItemName: "Lens, 50mm", Type: inventory.LogTypeCreate, Delta: 5, Value: decimal.NewFromInt(100), Timestamp: ts.Add(-time.Hour)},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, WriteLogCSV(buf, logs))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "2026-03-14T09:30:00Z", records[1][0])
	require.Equal(t, "Lens, 50mm", records[1][3])
	require.Equal(t, "-2", records[1][5])
	require.Equal(t, "40.00", records[1][6])
	require.Equal(t, "CREATE", records[2][4])
}
