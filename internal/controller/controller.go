// Package controller holds the logic attached to the employee pages: the bill
// list and the new bill form.
package controller

import (
	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/dom"
	"github.com/zombor/billed/internal/routes"
	"github.com/zombor/billed/internal/session"
)

// Deps are the collaborators handed to a page controller when its page is rendered
type Deps struct {
	Document     *dom.Document
	Navigate     routes.NavigateFunc
	Store        bill.Store // nil on display-only pages
	LocalStorage session.Storage

	// CurrentUser defaults to reading the "user" item of LocalStorage
	CurrentUser session.CurrentUserProvider
}

func (d Deps) currentUser() session.CurrentUserProvider {
	if d.CurrentUser != nil {
		return d.CurrentUser
	}
	return session.FromStorage(d.LocalStorage)
}
