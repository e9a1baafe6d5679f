package controller

import (
	"context"
	"log/slog"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/dom"
	"github.com/zombor/billed/internal/routes"
	"github.com/zombor/billed/internal/session"
)

const (
	formTestID      = "form-new-bill"
	fileInputTestID = "file"
	defaultVATPct   = 20
)

// State is the position of the new bill form in its upload then submit protocol
type State int

const (
	StateEmpty State = iota
	StateFileValidating
	StateFileRejected
	StateFileUploading
	StateFileReady
	StateSubmitting
	StateSubmitted
	StateSubmitError
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFileValidating:
		return "file-validating"
	case StateFileRejected:
		return "file-rejected"
	case StateFileUploading:
		return "file-uploading"
	case StateFileReady:
		return "file-ready"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateSubmitError:
		return "submit-error"
	default:
		return "unknown"
	}
}

// Draft is the bill allocated by the store when the receipt was uploaded
type Draft struct {
	FileURL  string
	FileName string
	BillID   string
}

// NewBill drives the new bill form. Submitting is a two-step protocol: the
// receipt upload creates a draft, the form submit completes it. Nothing rolls the
// draft back when the second step fails.
type NewBill struct {
	doc         *dom.Document
	navigate    routes.NavigateFunc
	store       bill.Store
	currentUser session.CurrentUserProvider

	state State
	draft Draft
}

// NewNewBill attaches the form handlers
func NewNewBill(deps Deps) *NewBill {
	n := &NewBill{
		doc:         deps.Document,
		navigate:    deps.Navigate,
		store:       deps.Store,
		currentUser: deps.currentUser(),
	}
	if n.doc == nil {
		return n
	}

	if form := n.doc.ByTestID(formTestID); form != nil {
		form.AddEventListener(dom.EventChange, func(ctx context.Context, ev *dom.Event) error {
			if ev.Target.TestID() != fileInputTestID {
				return nil
			}
			return n.HandleFileChange(ctx, ev.Target)
		})
		form.AddEventListener(dom.EventSubmit, func(ctx context.Context, ev *dom.Event) error {
			return n.HandleSubmit(ctx, form)
		})
	}
	session.NewLogout(n.doc, deps.LocalStorage, deps.Navigate)
	return n
}

// State returns the current protocol state
func (n *NewBill) State() State {
	return n.state
}

// Draft returns the uploaded receipt details
func (n *NewBill) Draft() Draft {
	return n.draft
}

// HandleFileChange validates the selected receipt and uploads it. A file with the
// wrong extension is alerted and cleared without calling the store. Upload errors
// are returned unchanged.
func (n *NewBill) HandleFileChange(ctx context.Context, input *dom.Element) error {
	files := input.Files()
	if len(files) == 0 {
		return nil
	}
	file := files[0]
	fileName := receiptName(input.Value(), file.Name)

	// A new selection replaces whatever receipt was uploaded before.
	n.state = StateFileValidating
	n.draft = Draft{}
	if !bill.AllowedFile(fileName) {
		n.state = StateFileRejected
		slog.Info("Rejected receipt file", "filename", fileName)
		n.doc.Alert(bill.InvalidFileMessage)
		input.SetValue("")
		n.state = StateEmpty
		return nil
	}

	if n.store == nil {
		n.state = StateEmpty
		return bill.ErrNoStore
	}
	user, err := n.currentUser()
	if err != nil {
		n.state = StateEmpty
		return err
	}

	n.state = StateFileUploading
	created, err := n.store.Bills().Create(ctx, bill.Upload{
		FileName:    fileName,
		ContentType: file.ContentType,
		Data:        file.Data,
		Email:       user.Email,
	})
	if err != nil {
		slog.Error("Error uploading receipt", "filename", fileName, "error", err)
		n.state = StateEmpty
		return err
	}

	n.draft = Draft{
		FileURL:  created.FileURL,
		FileName: fileName,
		BillID:   created.Key,
	}
	n.state = StateFileReady
	return nil
}

// HandleSubmit completes the draft with the form fields and returns to the bill
// list. The bill is always sent as pending. Store errors are returned unchanged.
func (n *NewBill) HandleSubmit(ctx context.Context, form *dom.Element) error {
	if n.store == nil {
		return bill.ErrNoStore
	}
	user, err := n.currentUser()
	if err != nil {
		return err
	}
	if n.state != StateFileReady {
		// Submitting without an uploaded receipt is let through; the store decides.
		slog.Warn("Submitting bill without an uploaded receipt", "state", n.state)
	}

	b := bill.Bill{
		Email:      user.Email,
		Type:       fieldValue(form, "expense-type"),
		Name:       fieldValue(form, "expense-name"),
		Amount:     parseAmount(fieldValue(form, "amount")),
		Date:       fieldValue(form, "datepicker"),
		VAT:        fieldValue(form, "vat"),
		Pct:        parsePct(fieldValue(form, "pct")),
		Commentary: fieldValue(form, "commentary"),
		FileURL:    n.draft.FileURL,
		FileName:   n.draft.FileName,
		Status:     bill.StatusPending,
	}

	n.state = StateSubmitting
	if _, err := n.store.Bills().Update(ctx, n.draft.BillID, b); err != nil {
		slog.Error("Error submitting bill", "id", n.draft.BillID, "error", err)
		n.state = StateSubmitError
		return err
	}

	n.state = StateSubmitted
	if n.navigate != nil {
		n.navigate(ctx, routes.Bills)
	}
	return nil
}

// receiptName returns the file name from the input value, which browsers
// prefix with a fake path, falling back to the selected file's name
func receiptName(value, fallback string) string {
	value = strings.ReplaceAll(value, `\`, "/")
	if name := path.Base(value); value != "" && name != "/" && name != "." {
		return name
	}
	return fallback
}

func fieldValue(form *dom.Element, testID string) string {
	if el := form.ByTestID(testID); el != nil {
		return el.Value()
	}
	return ""
}

func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		slog.Warn("Unreadable amount", "amount", s, "error", err)
		return decimal.Zero
	}
	return amount
}

// leadingInt matches the integer a percentage field starts with, so "12abc" reads as 12
var leadingInt = regexp.MustCompile(`^\s*([+-]?\d+)`)

func parsePct(s string) string {
	pct := 0
	if m := leadingInt.FindStringSubmatch(s); m != nil {
		pct, _ = strconv.Atoi(m[1])
	}
	if pct == 0 {
		pct = defaultVATPct
	}
	return strconv.Itoa(pct)
}
