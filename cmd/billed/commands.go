package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/peterbourgon/ff/v4"

	"github.com/zombor/billed/internal/billstore"
	"github.com/zombor/billed/internal/dom"
	"github.com/zombor/billed/internal/routes"
	"github.com/zombor/billed/internal/session"
)

// errNotSignedIn is returned by page commands run before login
var errNotSignedIn = errors.New("not signed in: run billed login first")

func serveCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("serve").SetParent(parent)
	var (
		port        = fs.IntLong("port", 5678, "HTTP server port")
		dbPath      = fs.StringLong("db", "billed.db", "Database file path")
		storagePath = fs.StringLong("storage", "./receipts", "Receipt storage directory path")
		publicURL   = fs.StringLong("public-url", "", "Base URL clients use to fetch receipts (default http://localhost:<port>)")
	)

	return &ff.Command{
		Name:      "serve",
		Usage:     "billed serve [FLAGS]",
		ShortHelp: "run a development bill store",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			slog.Info("Initializing database...")
			db, err := billstore.NewBoltDB(*dbPath)
			if err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			defer db.Close()

			slog.Info("Initializing storage...")
			files, err := billstore.NewDiskStorage(*storagePath)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}

			addr := fmt.Sprintf(":%d", *port)
			base := *publicURL
			if base == "" {
				base = fmt.Sprintf("http://localhost%s", addr)
			}
			server := billstore.NewServer(billstore.NewService(db, files, base))

			errs := make(chan error, 1)
			go func() {
				errs <- server.Start(addr)
			}()
			slog.Info("Server started", "address", base)

			select {
			case err := <-errs:
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
				slog.Info("Shutting down...")
				return nil
			}
		},
	}
}

func loginCommand(parent *ff.FlagSet, cfg *rootConfig) *ff.Command {
	fs := ff.NewFlagSet("login").SetParent(parent)
	var (
		email = fs.StringLong("email", "", "Employee email")
		token = fs.StringLong("token", "", "Bearer token sent to the bill store (optional)")
	)

	return &ff.Command{
		Name:      "login",
		Usage:     "billed login --email EMAIL [--token TOKEN]",
		ShortHelp: "sign in as an employee",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if *email == "" {
				return errors.New("--email is required")
			}

			storage, err := session.NewBoltStorage(cfg.session)
			if err != nil {
				return fmt.Errorf("opening local storage: %w", err)
			}
			defer storage.Close()

			if err := storage.Clear(); err != nil {
				return fmt.Errorf("clearing local storage: %w", err)
			}
			if err := session.SignIn(storage, session.User{Type: session.TypeEmployee, Email: *email}); err != nil {
				return err
			}
			if *token != "" {
				if err := storage.SetItem(session.TokenKey, *token); err != nil {
					return fmt.Errorf("storing token: %w", err)
				}
			}
			slog.Info("Signed in", "email", *email)
			return nil
		},
	}
}

// openSignedIn opens the session and fails when nobody is signed in
func openSignedIn(cfg *rootConfig) (*app, error) {
	a, err := openApp(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := session.FromStorage(a.storage)(); err != nil {
		a.Close()
		if errors.Is(err, session.ErrNoUser) {
			return nil, errNotSignedIn
		}
		return nil, err
	}
	return a, nil
}

// showBills displays the bill list, or returns the message of the error page
func showBills(ctx context.Context, a *app) error {
	a.router.Navigate(ctx, routes.Bills)
	if msg, ok := a.errorMessage(); ok {
		return errors.New(msg)
	}
	return nil
}

func billsCommand(parent *ff.FlagSet, cfg *rootConfig) *ff.Command {
	fs := ff.NewFlagSet("bills").SetParent(parent)

	return &ff.Command{
		Name:      "bills",
		Usage:     "billed bills",
		ShortHelp: "list my expense reports, newest first",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			a, err := openSignedIn(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := showBills(ctx, a); err != nil {
				return err
			}
			return printBills(os.Stdout, a.doc)
		},
	}
}

func printBills(out io.Writer, doc *dom.Document) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTYPE\tNOM\tDATE\tMONTANT\tSTATUT")
	for i, row := range doc.AllByTestID("bill-row") {
		cells := row.AllByTag("td")
		if len(cells) < 5 {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1,
			strings.TrimSpace(cells[0].Text()),
			strings.TrimSpace(cells[1].Text()),
			strings.TrimSpace(cells[2].Text()),
			strings.TrimSpace(cells[3].Text()),
			strings.TrimSpace(cells[4].Text()),
		)
	}
	return w.Flush()
}

func receiptCommand(parent *ff.FlagSet, cfg *rootConfig) *ff.Command {
	fs := ff.NewFlagSet("receipt").SetParent(parent)

	return &ff.Command{
		Name:      "receipt",
		Usage:     "billed receipt <ROW>",
		ShortHelp: "show the receipt of a listed bill",
		LongHelp:  "ROW is the number printed by billed bills.",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			n, err := parseRow(args)
			if err != nil {
				return err
			}

			a, err := openSignedIn(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := showBills(ctx, a); err != nil {
				return err
			}
			return a.showReceipt(ctx, n, os.Stdout)
		},
	}
}

// parseRow reads the one-based row number argument of the receipt command
func parseRow(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one row number")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid row number %q", args[0])
	}
	return n, nil
}

// showReceipt clicks the receipt control of row n of the displayed list and
// prints what the modal shows
func (a *app) showReceipt(ctx context.Context, n int, out io.Writer) error {
	icons := a.doc.AllByTestID("icon-eye")
	if n > len(icons) {
		return fmt.Errorf("row %d not found, %d bills listed", n, len(icons))
	}
	if err := a.doc.Click(ctx, icons[n-1]); err != nil {
		return err
	}

	modal := a.doc.ByID("modaleFile")
	if modal == nil || !modal.Shown() {
		return errors.New("receipt modal did not open")
	}
	body := modal.ByClass("modal-body")
	if img := body.ByTag("img"); img != nil {
		fmt.Fprintf(out, "%s (width %s)\n", img.Attr("src"), img.Attr("width"))
		return nil
	}
	fmt.Fprintln(out, strings.TrimSpace(body.Text()))
	return nil
}

func newBillCommand(parent *ff.FlagSet, cfg *rootConfig) *ff.Command {
	fs := ff.NewFlagSet("new").SetParent(parent)
	var (
		expenseType = fs.StringLong("type", "Transports", "Expense type")
		name        = fs.StringLong("name", "", "Expense name")
		date        = fs.StringLong("date", "", "Expense date (YYYY-MM-DD)")
		amount      = fs.StringLong("amount", "", "Amount including taxes")
		vat         = fs.StringLong("vat", "", "VAT amount")
		pct         = fs.StringLong("pct", "20", "VAT percentage")
		commentary  = fs.StringLong("commentary", "", "Commentary")
		file        = fs.StringLong("file", "", "Receipt image (jpg, jpeg or png)")
	)

	return &ff.Command{
		Name:      "new",
		Usage:     "billed new --file PATH [FLAGS]",
		ShortHelp: "send a new expense report",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if *file == "" {
				return errors.New("--file is required")
			}
			data, err := os.ReadFile(*file)
			if err != nil {
				return fmt.Errorf("reading receipt: %w", err)
			}

			a, err := openSignedIn(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			a.router.Navigate(ctx, routes.NewBill)
			doc := a.doc
			fields := map[string]string{
				"expense-type": *expenseType,
				"expense-name": *name,
				"datepicker":   *date,
				"amount":       *amount,
				"vat":          *vat,
				"pct":          *pct,
				"commentary":   *commentary,
			}
			for testID, value := range fields {
				el := doc.ByTestID(testID)
				if el == nil {
					return fmt.Errorf("form field %s not found", testID)
				}
				if err := doc.Change(ctx, el, value); err != nil {
					return err
				}
			}

			receipt := dom.File{
				Name:        filepath.Base(*file),
				ContentType: contentType(*file, data),
				Data:        data,
			}
			if err := doc.Upload(ctx, doc.ByTestID("file"), receipt); err != nil {
				return fmt.Errorf("uploading receipt: %w", err)
			}
			if alerts := doc.Alerts(); len(alerts) > 0 {
				return errors.New(alerts[len(alerts)-1])
			}

			if err := doc.Submit(ctx, doc.ByTestID("form-new-bill")); err != nil {
				return fmt.Errorf("submitting bill: %w", err)
			}
			if a.router.Current() != routes.Bills {
				return fmt.Errorf("bill not submitted, still on %s", a.router.Current())
			}
			if msg, ok := a.errorMessage(); ok {
				return errors.New(msg)
			}
			slog.Info("Bill sent", "name", *name)
			return printBills(os.Stdout, doc)
		},
	}
}

func contentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
