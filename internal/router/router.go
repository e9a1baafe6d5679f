// Package router renders pages into the document and attaches their controllers.
package router

import (
	"context"
	"log/slog"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/controller"
	"github.com/zombor/billed/internal/dom"
	"github.com/zombor/billed/internal/routes"
	"github.com/zombor/billed/internal/session"
	"github.com/zombor/billed/internal/views"
)

// Router owns the document of a single-user session
type Router struct {
	doc     *dom.Document
	store   bill.Store
	storage session.Storage

	current string
	bills   *controller.Bills
	newBill *controller.NewBill
}

// New creates a Router rendering into doc
func New(doc *dom.Document, store bill.Store, storage session.Storage) *Router {
	return &Router{
		doc:     doc,
		store:   store,
		storage: storage,
	}
}

// Current returns the path of the page on display
func (r *Router) Current() string {
	return r.current
}

// BillsController returns the controller of the bill list page, if displayed
func (r *Router) BillsController() *controller.Bills {
	return r.bills
}

// NewBillController returns the controller of the new bill page, if displayed
func (r *Router) NewBillController() *controller.NewBill {
	return r.newBill
}

// Navigate replaces the page with the page at path. Errors are rendered in the
// error page rather than returned.
func (r *Router) Navigate(ctx context.Context, path string) {
	r.current = path
	r.bills, r.newBill = nil, nil

	switch path {
	case routes.Bills:
		r.showBills(ctx)
	case routes.NewBill:
		r.show(views.NewBill())
		r.newBill = controller.NewNewBill(r.deps())
	case routes.Login:
		r.show(views.Login())
	default:
		slog.Warn("Unknown page", "path", path)
		r.show(views.Error("Page introuvable"))
	}
}

func (r *Router) showBills(ctx context.Context) {
	r.show(views.Bills(views.BillsData{Loading: true}))
	rows, err := controller.NewBills(r.deps()).FetchAndFormatBills(ctx)
	if r.current != routes.Bills {
		return
	}
	if err != nil {
		r.show(views.Error(err.Error()))
		return
	}
	r.show(views.Bills(views.BillsData{Rows: rows}))
	r.bills = controller.NewBills(r.deps())
}

func (r *Router) show(markup string, err error) {
	if err != nil {
		slog.Error("Failed to render page", "path", r.current, "error", err)
		return
	}
	if err := r.doc.SetBody(markup); err != nil {
		slog.Error("Failed to display page", "path", r.current, "error", err)
	}
}

func (r *Router) deps() controller.Deps {
	return controller.Deps{
		Document:     r.doc,
		Navigate:     r.Navigate,
		Store:        r.store,
		LocalStorage: r.storage,
	}
}
