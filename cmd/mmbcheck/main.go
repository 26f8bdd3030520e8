package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/mmbverify"
	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/internal/config"
	"github.com/wippyai/mmbverify/mmb"
	"github.com/wippyai/mmbverify/verifier"
)

var (
	okStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#90EE90"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))
)

func main() {
	var (
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		allowSorry  = flag.Bool("sorry", false, "Accept the sorry proof command")
		logLevel    = flag.String("log-level", "", "Log level (overrides MMBCHECK_LOG_LEVEL)")
		logFormat   = flag.String("log-format", "", "Log format: console or json (overrides MMBCHECK_LOG_FORMAT)")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: mmbcheck [-sorry] [-log-level L] [-log-format F] <file.mmb>")
		fmt.Fprintln(os.Stderr, "       mmbcheck -i <file.mmb>  (interactive mode)")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if *allowSorry {
		cfg.AllowSorry = true
	}

	path := flag.Arg(0)
	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", errors.InvalidInput(errors.PhaseConfig, "interactive mode needs a terminal"))
			os.Exit(1)
		}
		if err := runInteractive(path, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(path, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	verifier.SetLogger(log)

	opts := verifier.DefaultOptions()
	opts.AllowSorry = cfg.AllowSorry

	start := time.Now()
	outline, err := mmbverify.CheckFile(ctx, path, opts)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}

	printSummary(path, outline, time.Since(start), term.IsTerminal(int(os.Stdout.Fd())))
	return nil
}

func load(path string) (*mmb.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	f, err := mmb.Open(data)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func printSummary(path string, o *verifier.Outline, elapsed time.Duration, color bool) {
	render := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	fmt.Printf("%s %s\n", render(okStyle, "verified"), path)
	fmt.Printf("  %s %d\n", render(labelStyle, "sorts:   "), o.NumSorts())
	fmt.Printf("  %s %d\n", render(labelStyle, "terms:   "), o.NumTerms())
	fmt.Printf("  %s %d\n", render(labelStyle, "theorems:"), o.NumThms())
	fmt.Printf("  %s %s\n", render(labelStyle, "time:    "), elapsed.Round(time.Microsecond))
}
