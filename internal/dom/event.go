package dom

import (
	"context"

	"golang.org/x/net/html"
)

const (
	EventClick  = "click"
	EventChange = "change"
	EventSubmit = "submit"
)

// Event is dispatched to listeners from its target up to the document root
type Event struct {
	Type   string
	Target *Element

	stopped bool
}

// StopPropagation prevents listeners on ancestors from running
func (ev *Event) StopPropagation() {
	ev.stopped = true
}

// Listener handles an event. A returned error stops propagation and is handed
// back to whoever dispatched the event.
type Listener func(ctx context.Context, ev *Event) error

// Dispatch runs the listeners of ev.Target and then those of its ancestors.
// Propagation ends when a listener replaces the page content.
func (d *Document) Dispatch(ctx context.Context, ev *Event) error {
	if ev.Target == nil {
		return nil
	}
	var chain []*html.Node
	for n := ev.Target.node; n != nil; n = n.Parent {
		chain = append(chain, n)
	}

	page := d.page
	for _, n := range chain {
		listeners := append([]Listener(nil), d.listeners[n][ev.Type]...)
		for _, fn := range listeners {
			if err := fn(ctx, ev); err != nil {
				return err
			}
			if d.page != page {
				return nil
			}
		}
		if ev.stopped || d.page != page {
			return nil
		}
	}
	return nil
}
