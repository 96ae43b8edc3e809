// Command atlaspack packs sprite images into texture atlas pages.
//
// Usage:
//
//	atlaspack [flags] [input ...]
//
// Every image below the inputs (directories or files) is packed into
// square pages. The pages are written as page-N.png next to an atlas.toml
// manifest giving each sprite's page, pixel rectangle and UVs. With -watch
// the inputs are re-packed as they change.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/weebcore/atlas"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "atlaspack:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("atlaspack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "TOML configuration file")
		size       = fs.Int("size", 0, "page size in pixels, rounded up to a power of two")
		out        = fs.String("out", "", "output directory")
		watch      = fs.Bool("watch", false, "re-pack inputs when they change")
		verbose    = fs.Bool("v", false, "verbose logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := newLogger(stderr, *verbose)
	atlas.SetLogger(logger)
	defer atlas.SetLogger(nil)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *size > 0 {
		cfg.PageSize = *size
	}
	if *out != "" {
		cfg.Output = *out
	}
	cfg.Inputs = append(cfg.Inputs, fs.Args()...)

	b, err := newBuilder(cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	if err := b.scan(); err != nil {
		if !*watch {
			return err
		}
		logger.Warn("initial scan incomplete", "error", err)
	}
	if err := b.export(); err != nil {
		return err
	}

	if *watch {
		return b.watch(ctx)
	}
	return nil
}

// newLogger returns a slog logger writing through charmbracelet/log.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "atlaspack",
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return slog.New(l)
}
