package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/billed/internal/dom"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// rootConfig holds the flags shared by every subcommand
type rootConfig struct {
	api        string
	session    string
	modalWidth int
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	var cfg rootConfig
	rootFlags := ff.NewFlagSet("billed")
	rootFlags.StringVar(&cfg.api, 0, "api", "http://localhost:5678", "Bill store base URL")
	rootFlags.StringVar(&cfg.session, 0, "session", "billed-session.db", "Local storage database path")
	rootFlags.IntVar(&cfg.modalWidth, 0, "modal-width", dom.DefaultWidth, "Rendered width of the receipt modal in pixels")
	_ = rootFlags.BoolLong("version", "Show version information")

	root := &ff.Command{
		Name:      "billed",
		Usage:     "billed [FLAGS] <SUBCOMMAND> ...",
		ShortHelp: "employee expense reports",
		Flags:     rootFlags,
		Subcommands: []*ff.Command{
			serveCommand(rootFlags),
			loginCommand(rootFlags, &cfg),
			billsCommand(rootFlags, &cfg),
			receiptCommand(rootFlags, &cfg),
			newBillCommand(rootFlags, &cfg),
		},
		Exec: func(ctx context.Context, args []string) error {
			return ff.ErrHelp
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Parse(os.Args[1:], ff.WithEnvVarPrefix("BILLED")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root.GetSelected()))
		if errors.Is(err, ff.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := root.Run(ctx); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root.GetSelected()))
			os.Exit(0)
		}
		slog.Error("Command failed", "command", root.GetSelected().Name, "error", err)
		os.Exit(1)
	}
}
