package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kord-engine/kord/cmd/kordctl/cli"
	"github.com/kord-engine/kord/internal/app"
)

const usage = `Usage: kordctl <command> [flags]

Commands:
  export -what items|logs|categories [-format json|csv]
  import -file <items.json>
  digest [-window 24h]
  jobs trigger <task type>
  jobs stats

Configuration is read from the environment (see STORE_BACKEND, REDIS_ADDR).
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	switch args[0] {
	case "jobs":
		return runJobs(ctx, cfg, args[1:], stdout, stderr)
	case "export", "import", "digest":
	case "-h", "-help", "--help", "help":
		_, _ = fmt.Fprint(stdout, usage)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "open backend: %v\n", err)
		return 1
	}
	defer backend.Close()
	storeCLI, err := cli.NewStoreCLI(ctx, backend.KV, logger)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}

	fs := flag.NewFlagSet("kordctl "+args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	switch args[0] {
	case "export":
		what := fs.String("what", "items", "collection to export")
		format := fs.String("format", "json", "output format")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		return storeCLI.ExportCommand(cli.ExportOptions{What: *what, Format: *format, Stdout: stdout, Stderr: stderr})
	case "import":
		file := fs.String("file", "", "JSON array of items")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *file == "" {
			_, _ = fmt.Fprintln(stderr, "import: -file is required")
			return 2
		}
		f, err := os.Open(*file)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "import: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()
		return storeCLI.ImportCommand(ctx, f, stdout, stderr)
	default:
		window := fs.Duration("window", 24*time.Hour, "flow window")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		return storeCLI.DigestCommand(ctx, *window, stdout, stderr)
	}
}

func runJobs(ctx context.Context, cfg *app.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}
	jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
	defer func() { _ = jobsCLI.Close() }()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			_, _ = fmt.Fprintln(stderr, "jobs trigger: task type required")
			return 2
		}
		info, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "jobs trigger: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(stdout, "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
		return 0
	case "stats":
		stats, err := jobsCLI.InspectQueue()
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "jobs stats: %v\n", err)
			return 1
		}
		_ = json.NewEncoder(stdout).Encode(stats)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "jobs: unknown subcommand %q\n", args[0])
		return 2
	}
}
