package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/JonMunkholm/ParkingImport/internal/apply"
	"github.com/JonMunkholm/ParkingImport/internal/clock"
	"github.com/JonMunkholm/ParkingImport/internal/config"
	"github.com/JonMunkholm/ParkingImport/internal/core"
	"github.com/JonMunkholm/ParkingImport/internal/logging"
	"github.com/JonMunkholm/ParkingImport/internal/output"
	"github.com/JonMunkholm/ParkingImport/internal/reference"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.LoadUnvalidated()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Flags override the environment
	if err := applyFlags(cfg, os.Args[1:]); err != nil {
		slog.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithRunID(ctx, uuid.NewString())

	if err := run(ctx, cfg, clock.SystemClock{}); err != nil {
		logging.FromContext(ctx).Error("import failed", "error", err, "hint", core.FormatUserError(err))
		stop()
		os.Exit(1)
	}
}

// applyFlags layers command-line flags over the environment configuration.
func applyFlags(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("importer", flag.ContinueOnError)
	in := fs.String("in", cfg.Import.SourcePath, "legacy export to convert (IMPORT_SOURCE_PATH)")
	out := fs.String("out", cfg.Import.OutputPath, "SQL script to write (IMPORT_OUTPUT_PATH)")
	refs := fs.String("references", cfg.Import.ReferenceFile, "YAML reference tables (IMPORT_REFERENCE_FILE)")
	doApply := fs.Bool("apply", cfg.Database.ApplyEnabled, "execute the script against DATABASE_URL (APPLY_ENABLED)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg.Import.SourcePath = *in
	cfg.Import.OutputPath = *out
	cfg.Import.ReferenceFile = *refs
	cfg.Database.ApplyEnabled = *doApply
	return nil
}

// run performs one conversion: read, convert, write, and optionally apply.
func run(ctx context.Context, cfg *config.Config, clk clock.Clock) error {
	log := logging.WithFields(ctx, "source", cfg.Import.SourcePath)
	start := time.Now()

	tables := reference.Default()
	if cfg.Import.ReferenceFile != "" {
		loaded, err := reference.Load(cfg.Import.ReferenceFile)
		if err != nil {
			return err
		}
		tables = loaded
		log.Info("reference tables loaded", "file", cfg.Import.ReferenceFile)
	}

	loc, err := cfg.Import.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone: %w", err)
	}

	f, err := os.Open(cfg.Import.SourcePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	src := core.NewCountingReader(f, size)

	log.Info("conversion started", "bytes", size)

	result, err := core.NewConverter(core.Options{
		Tables:   tables,
		Clock:    clk,
		Location: loc,
		Encoding: cfg.Import.SourceEncoding,
	}).Run(ctx, src)
	if err != nil {
		return err
	}

	for _, d := range result.Diagnostics.Items() {
		log.Debug("row fallback", "line", d.Line, "code", string(d.Code), "field", d.Field, "value", d.Value)
	}
	if result.Diagnostics.Len() > 0 {
		log.Info("rows used fallbacks",
			"count", result.Diagnostics.Len(),
			"summary", result.Diagnostics.Summary(),
		)
	}

	if err := output.WriteScript(cfg.Import.OutputPath, result.Script(), cfg.Import.AtomicWrite); err != nil {
		return err
	}

	log.Info("SQL generated successfully",
		"output", cfg.Import.OutputPath,
		"rows", result.Stats.Rows,
		"records", result.Stats.Records,
		"new_subscribers", result.Stats.NewSubscribers,
		"bytes_read", src.BytesRead,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if !cfg.Database.ApplyEnabled {
		return nil
	}
	return applyScript(ctx, cfg, result.Statements)
}

// applyScript executes stmts against the configured database.
func applyScript(ctx context.Context, cfg *config.Config, stmts []string) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Database.ApplyTimeout)
	defer cancel()

	a, err := apply.New(ctx, strings.ToLower(cfg.Database.Driver), cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect for apply: %w", err)
	}
	defer a.Close()

	if _, err := a.Apply(ctx, stmts); err != nil {
		return fmt.Errorf("apply script: %w", err)
	}
	return nil
}
