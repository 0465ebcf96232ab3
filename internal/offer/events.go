package offer

import "github.com/angelmondragon/pixfunnel-backend/internal/pricing"

type EventKind string

const (
	EventLoaded               EventKind = "loaded"
	EventBumpsChanged         EventKind = "bumps_changed"
	EventShippingChanged      EventKind = "shipping_changed"
	EventPaymentMethodChanged EventKind = "payment_method_changed"
)

// Event is emitted after every state change with the recomputed summary.
type Event struct {
	Kind        EventKind
	Selection   pricing.Selection
	Summary     pricing.Summary
	AllSelected bool
}

// Observer receives offer state changes.
type Observer interface {
	OnOfferChange(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnOfferChange(e Event) { f(e) }
