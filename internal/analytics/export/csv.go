// Package export renders analytics views as CSV.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/kord-engine/kord/internal/analytics"
	"github.com/kord-engine/kord/internal/inventory"
)

// WriteCategoryCSV serialises the category roll-up. A trailing comment line
// carries the formatted total.
func WriteCategoryCSV(w io.Writer, report analytics.Report) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Category", "Items", "Units", "Value (USD)", "Value (ZAR)", "Share %"}); err != nil {
		return err
	}
	for _, row := range report.Categories {
		if err := writer.Write([]string{
			row.Category,
			strconv.Itoa(row.Items),
			strconv.Itoa(row.Units),
			row.Value.StringFixed(2),
			row.ValueZar.StringFixed(2),
			row.Share.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "# Total: "+analytics.FormatUSD(report.TotalValue)+
		" | Events: "+strconv.Itoa(report.TelemetryEvents)+
		" | Risk: "+strconv.Itoa(report.RiskFactor)+"\n")
	return err
}

// WriteLogCSV emits the activity log, newest first.
func WriteLogCSV(w io.Writer, logs []inventory.LogEntry) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Timestamp", "ID", "Item ID", "Item Name", "Type", "Delta", "Value", "Metadata"}); err != nil {
		return err
	}
	for _, entry := range logs {
		if err := writer.Write([]string{
			entry.Timestamp.UTC().Format(time.RFC3339),
			entry.ID,
			entry.ItemID,
			entry.ItemName,
			string(entry.Type),
			strconv.Itoa(entry.Delta),
			entry.Value.StringFixed(2),
			entry.Metadata,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
