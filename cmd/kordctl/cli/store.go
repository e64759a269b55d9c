package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/kord-engine/kord/internal/analytics"
	"github.com/kord-engine/kord/internal/analytics/export"
	"github.com/kord-engine/kord/internal/inventory"
	"github.com/kord-engine/kord/jobs"
)

// StoreCLI runs offline maintenance against a store backend.
type StoreCLI struct {
	store *inventory.Store
	now   func() time.Time
}

// NewStoreCLI loads the persisted state behind kv.
func NewStoreCLI(ctx context.Context, kv inventory.KV, logger *slog.Logger) (*StoreCLI, error) {
	store := inventory.NewStore(kv, logger, inventory.StoreConfig{})
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	return &StoreCLI{store: store, now: func() time.Time { return time.Now().UTC() }}, nil
}

// ExportOptions selects what the export command writes.
type ExportOptions struct {
	// What is one of items, logs or categories.
	What   string
	Format string
	Stdout io.Writer
	Stderr io.Writer
}

// ExportCommand writes the selected collection and returns the exit code.
func (c *StoreCLI) ExportCommand(opts ExportOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Format == "" {
		opts.Format = "json"
	}
	if opts.Format != "json" && opts.Format != "csv" {
		_, _ = fmt.Fprintf(opts.Stderr, "export: unknown format %q (expected json or csv)\n", opts.Format)
		return 1
	}

	snap := c.store.Snapshot()
	var err error
	switch opts.What {
	case "items":
		if opts.Format == "csv" {
			_, _ = fmt.Fprintln(opts.Stderr, "export: items are only exported as json")
			return 1
		}
		err = writeJSON(opts.Stdout, snap.Items)
	case "logs":
		if opts.Format == "csv" {
			err = export.WriteLogCSV(opts.Stdout, snap.Logs)
		} else {
			err = writeJSON(opts.Stdout, snap.Logs)
		}
	case "categories":
		report := analytics.BuildReport(snap, c.now())
		if opts.Format == "csv" {
			err = export.WriteCategoryCSV(opts.Stdout, report)
		} else {
			err = writeJSON(opts.Stdout, report)
		}
	default:
		_, _ = fmt.Fprintf(opts.Stderr, "export: unknown collection %q (expected items, logs or categories)\n", opts.What)
		return 1
	}
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "export: %v\n", err)
		return 1
	}
	return 0
}

// ImportCommand replaces the item collection with the JSON array read from r.
func (c *StoreCLI) ImportCommand(ctx context.Context, r io.Reader, stdout, stderr io.Writer) int {
	var items []inventory.Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		_, _ = fmt.Fprintf(stderr, "import: decode items: %v\n", err)
		return 1
	}
	replaced, err := c.store.BulkReplace(ctx, items)
	if err == nil {
		err = c.store.PersistErr()
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "import: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "imported %d items\n", len(replaced))
	return 0
}

// DigestCommand computes the stock digest inline and prints it as JSON.
func (c *StoreCLI) DigestCommand(ctx context.Context, window time.Duration, stdout, stderr io.Writer) int {
	job := jobs.NewStockDigestJob(c.store, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	digest, err := job.Run(ctx, window)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "digest: %v\n", err)
		return 1
	}
	if err := writeJSON(stdout, digest); err != nil {
		_, _ = fmt.Fprintf(stderr, "digest: %v\n", err)
		return 1
	}
	if len(digest.LowStock) > 0 {
		return 10
	}
	return 0
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
