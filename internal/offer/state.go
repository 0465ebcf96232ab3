package offer

import (
	"github.com/angelmondragon/pixfunnel-backend/internal/pricing"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
)

// NotConfiguredTitle is rendered instead of the product name when no base product is active.
const NotConfiguredTitle = "Oferta não configurada"

const (
	SelectAllLabel   = "Selecionar todos"
	DeselectAllLabel = "Desmarcar todos"
)

// State owns the loaded offer, the buyer's selection and the derived summary.
// Every command recomputes the summary synchronously and notifies observers.
// A State belongs to one session and is not safe for concurrent use.
type State struct {
	policy    pricing.Policy
	offer     pricing.Offer
	selection pricing.Selection
	summary   pricing.Summary
	observers []Observer
}

// New returns an empty state priced with policy.
func New(policy pricing.Policy) *State {
	s := &State{policy: policy, selection: pricing.NewSelection()}
	s.summary = pricing.Compute(s.offer, s.selection, s.policy)
	return s
}

// Subscribe registers an observer for every subsequent change.
func (s *State) Subscribe(o Observer) {
	if o != nil {
		s.observers = append(s.observers, o)
	}
}

// Load replaces the catalog. Bump selections are reset; the shipping selection is kept
// when its id survives the reload and otherwise falls back to the first option.
func (s *State) Load(o pricing.Offer) {
	previousShipping := s.selection.ShippingID
	method := s.selection.PaymentMethod

	s.offer = o
	s.selection = pricing.NewSelection()
	s.selection.PaymentMethod = method

	if _, ok := o.ShippingOption(previousShipping); ok {
		s.selection.ShippingID = previousShipping
	} else if len(o.Shipping) > 0 {
		s.selection.ShippingID = o.Shipping[0].ID
	}

	s.recompute(EventLoaded)
}

// ToggleBump flips one bump.
func (s *State) ToggleBump(id string) error {
	if s.selection.HasBump(id) {
		return s.RemoveBump(id)
	}
	return s.AddBump(id)
}

// AddBump selects a bump. Unknown ids are rejected and leave the state untouched.
func (s *State) AddBump(id string) error {
	if _, ok := s.offer.Bump(id); !ok {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown bump %q", id)
	}
	if s.selection.HasBump(id) {
		return nil
	}
	s.selection.BumpIDs[id] = true
	s.recompute(EventBumpsChanged)
	return nil
}

// RemoveBump deselects a bump. Unknown ids are rejected.
func (s *State) RemoveBump(id string) error {
	if _, ok := s.offer.Bump(id); !ok {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown bump %q", id)
	}
	if !s.selection.HasBump(id) {
		return nil
	}
	delete(s.selection.BumpIDs, id)
	s.recompute(EventBumpsChanged)
	return nil
}

// SelectAll turns every bump on or off in one transition.
func (s *State) SelectAll(on bool) {
	next := map[string]bool{}
	if on {
		for _, b := range s.offer.Bumps {
			next[b.ID] = true
		}
	}
	s.selection.BumpIDs = next
	s.recompute(EventBumpsChanged)
}

// SelectShipping picks a shipping option. Ids not in the current list are rejected
// and the previous selection is retained.
func (s *State) SelectShipping(id string) error {
	if _, ok := s.offer.ShippingOption(id); !ok {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown shipping option %q", id)
	}
	if s.selection.ShippingID == id {
		return nil
	}
	s.selection.ShippingID = id
	s.recompute(EventShippingChanged)
	return nil
}

// SetPaymentMethod switches the payment rail. Card is recorded but not operable.
func (s *State) SetPaymentMethod(m enums.PaymentMethod) error {
	if !m.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown payment method %q", m)
	}
	if s.selection.PaymentMethod == m {
		return nil
	}
	s.selection.PaymentMethod = m
	s.recompute(EventPaymentMethodChanged)
	return nil
}

// Offer returns the loaded catalog.
func (s *State) Offer() pricing.Offer { return s.offer }

// Selection returns a copy of the current selection.
func (s *State) Selection() pricing.Selection { return s.selection.Clone() }

// Summary returns the latest computed summary.
func (s *State) Summary() pricing.Summary { return s.summary }

// Policy returns the pricing policy in force.
func (s *State) Policy() pricing.Policy { return s.policy }

// Configured reports whether a base product was loaded.
func (s *State) Configured() bool { return s.offer.Base != nil }

// Title is the storefront heading for the loaded offer.
func (s *State) Title() string {
	if s.offer.Base == nil {
		return NotConfiguredTitle
	}
	return s.offer.Base.Name
}

// AllSelected is true only when there is at least one bump and every bump is selected.
func (s *State) AllSelected() bool {
	if len(s.offer.Bumps) == 0 {
		return false
	}
	for _, b := range s.offer.Bumps {
		if !s.selection.HasBump(b.ID) {
			return false
		}
	}
	return true
}

// SelectAllLabel is the caption of the select-all toggle for the current selection.
func (s *State) SelectAllLabel() string {
	if s.AllSelected() {
		return DeselectAllLabel
	}
	return SelectAllLabel
}

// Operable reports whether the chosen payment method can be charged today.
func (s *State) Operable() bool {
	return s.selection.PaymentMethod == enums.PaymentMethodPix
}

// SelectedShipping returns the chosen shipping option, if any.
func (s *State) SelectedShipping() (pricing.ShippingOption, bool) {
	if s.selection.ShippingID == "" {
		return pricing.ShippingOption{}, false
	}
	return s.offer.ShippingOption(s.selection.ShippingID)
}

func (s *State) recompute(kind EventKind) {
	s.summary = pricing.Compute(s.offer, s.selection, s.policy)
	evt := Event{Kind: kind, Selection: s.selection.Clone(), Summary: s.summary, AllSelected: s.AllSelected()}
	for _, o := range s.observers {
		o.OnOfferChange(evt)
	}
}
