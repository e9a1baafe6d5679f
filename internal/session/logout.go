package session

import (
	"context"
	"log/slog"

	"github.com/zombor/billed/internal/dom"
	"github.com/zombor/billed/internal/routes"
)

const disconnectTestID = "layout-disconnect"

// Logout signs the user out when the layout's disconnect control is clicked
type Logout struct {
	storage  Storage
	navigate routes.NavigateFunc
}

// NewLogout wires the disconnect control of doc
func NewLogout(doc *dom.Document, storage Storage, navigate routes.NavigateFunc) *Logout {
	l := &Logout{storage: storage, navigate: navigate}
	doc.Body().AddEventListener(dom.EventClick, func(ctx context.Context, ev *dom.Event) error {
		if ev.Target.Closest(disconnectTestID) == nil {
			return nil
		}
		return l.HandleClick(ctx)
	})
	return l
}

// HandleClick clears the session and returns to the login page
func (l *Logout) HandleClick(ctx context.Context) error {
	if l.storage != nil {
		if err := l.storage.Clear(); err != nil {
			slog.Error("Failed to clear session", "error", err)
			return err
		}
	}
	if l.navigate != nil {
		l.navigate(ctx, routes.Login)
	}
	return nil
}
