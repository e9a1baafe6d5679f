package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/zombor/billed/internal/dom"
	"github.com/zombor/billed/internal/router"
	"github.com/zombor/billed/internal/session"
	"github.com/zombor/billed/internal/store"
)

// app is one employee session against the bill store
type app struct {
	storage session.Storage
	closer  io.Closer
	doc     *dom.Document
	router  *router.Router
}

func openApp(cfg *rootConfig) (*app, error) {
	storage, err := session.NewBoltStorage(cfg.session)
	if err != nil {
		return nil, fmt.Errorf("opening local storage: %w", err)
	}
	a := newApp(storage, cfg.api, cfg.modalWidth)
	a.closer = storage
	return a, nil
}

func newApp(storage session.Storage, api string, modalWidth int) *app {
	doc := dom.New()
	doc.SetWidth(modalWidth)
	doc.OnAlert(func(message string) {
		slog.Warn("Alert", "message", message)
	})

	return &app{
		storage: storage,
		doc:     doc,
		router:  router.New(doc, store.NewClient(api, storage), storage),
	}
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// errorMessage returns the text of the error page, if it is displayed
func (a *app) errorMessage() (string, bool) {
	el := a.doc.ByTestID("error-message")
	if el == nil {
		return "", false
	}
	return el.Text(), true
}
