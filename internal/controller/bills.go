package controller

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/dom"
	"github.com/zombor/billed/internal/routes"
	"github.com/zombor/billed/internal/session"
)

const (
	newBillButtonTestID = "btn-new-bill"
	viewReceiptTestID   = "icon-eye"
	receiptURLAttr      = "data-bill-url"
	receiptModalID      = "modaleFile"
	modalBodyClass      = "modal-body"
)

// Bills drives the bill list page
type Bills struct {
	doc      *dom.Document
	navigate routes.NavigateFunc
	store    bill.Store
}

// NewBills attaches the list page handlers. Clicks are handled by a single
// listener on the body, so rows rendered after construction are covered too.
func NewBills(deps Deps) *Bills {
	b := &Bills{
		doc:      deps.Document,
		navigate: deps.Navigate,
		store:    deps.Store,
	}
	if b.doc != nil {
		b.doc.Body().AddEventListener(dom.EventClick, b.handleClick)
		session.NewLogout(b.doc, deps.LocalStorage, deps.Navigate)
	}
	return b
}

func (b *Bills) handleClick(ctx context.Context, ev *dom.Event) error {
	if ev.Target.Closest(newBillButtonTestID) != nil {
		b.HandleClickNewBill(ctx)
		return nil
	}
	if icon := ev.Target.Closest(viewReceiptTestID); icon != nil {
		b.ViewReceipt(icon)
	}
	return nil
}

// HandleClickNewBill opens the new bill form
func (b *Bills) HandleClickNewBill(ctx context.Context) {
	if b.navigate != nil {
		b.navigate(ctx, routes.NewBill)
	}
}

// ViewReceipt shows the receipt referenced by the control in the receipt modal,
// or an error message when the URL cannot be displayed
func (b *Bills) ViewReceipt(control *dom.Element) {
	modal := b.doc.ByID(receiptModalID)
	if modal == nil {
		slog.Warn("Receipt modal missing from page")
		return
	}
	body := modal.ByClass(modalBodyClass)
	if body == nil {
		slog.Warn("Receipt modal has no body")
		return
	}

	url := control.Attr(receiptURLAttr)
	var markup string
	if verdict := bill.CheckReceiptURL(url); verdict.Valid() {
		markup = fmt.Sprintf(
			`<div style="text-align: center;" class="bill-proof-container"><img width="%d" src="%s" alt="Bill" /></div>`,
			modal.Width()/2, html.EscapeString(url),
		)
	} else {
		slog.Info("Refusing to display receipt", "url", url, "reason", verdict)
		markup = fmt.Sprintf(`<p style="color: red;">%s</p>`, html.EscapeString(bill.InvalidReceiptMessage))
	}

	if err := body.SetInnerHTML(markup); err != nil {
		slog.Error("Failed to render receipt modal", "error", err)
		return
	}
	modal.Show()
}

// FetchAndFormatBills lists the bills from the store and projects them for display,
// keeping the store's order. Without a store it returns nothing. A bill whose date
// cannot be formatted keeps its raw date. Store errors are returned unchanged.
func (b *Bills) FetchAndFormatBills(ctx context.Context) ([]bill.Row, error) {
	if b.store == nil {
		return nil, nil
	}

	bills, err := b.store.Bills().List(ctx)
	if err != nil {
		slog.Error("Error listing bills", "error", err)
		return nil, err
	}

	rows := make([]bill.Row, 0, len(bills))
	for _, raw := range bills {
		rows = append(rows, formatRow(raw))
	}
	slog.Debug("Formatted bills", "count", len(rows))
	return rows, nil
}

func formatRow(b bill.Bill) bill.Row {
	row := bill.Row{
		Bill:   b,
		Date:   b.Date,
		Status: bill.FormatStatus(b.Status),
	}
	date, err := bill.FormatDate(b.Date)
	if err != nil {
		slog.Warn("Keeping unformatted bill date", "id", b.ID, "date", b.Date, "error", err)
		return row
	}
	row.Date = date
	return row
}
