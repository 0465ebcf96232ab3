package funnel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pixfunnel-backend/internal/address"
	"github.com/angelmondragon/pixfunnel-backend/internal/checkout"
	"github.com/angelmondragon/pixfunnel-backend/internal/offer"
	"github.com/angelmondragon/pixfunnel-backend/internal/pricing"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/logger"
	"github.com/angelmondragon/pixfunnel-backend/pkg/pixgateway"
	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

type charger interface {
	CreateCharge(ctx context.Context, req pixgateway.ChargeRequest) (*pixgateway.ChargeResult, error)
}

type chargeMetrics interface {
	ObserveCharge(attempt, outcome string, took time.Duration)
	IncSubmission(outcome string)
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Policy   pricing.Policy
	Lookup   address.Service
	Charger  charger
	Address  address.Options
	Checkout checkout.Options
	Metrics  chargeMetrics
	Logger   *logger.Logger
}

// Session is one storefront visit: the offer state, the address section and the
// submission pipeline. It is built per request and never shared.
type Session struct {
	Offer    *offer.State
	Address  *address.Controller
	Checkout *checkout.Pipeline
	Copy     *checkout.CopyNotice
}

// NewSession wires a fresh session.
func NewSession(ctx context.Context, deps Deps) (*Session, error) {
	if deps.Charger == nil {
		return nil, fmt.Errorf("pix charger required")
	}
	opts := []checkout.PipelineOption{checkout.WithLogger(deps.Logger)}
	if deps.Metrics != nil {
		opts = append(opts, checkout.WithMetrics(deps.Metrics))
	}
	pipeline, err := checkout.NewPipeline(deps.Charger, deps.Checkout, opts...)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Offer:    offer.New(deps.Policy),
		Address:  address.NewController(deps.Lookup, deps.Address),
		Checkout: pipeline,
		Copy:     checkout.NewCopyNotice(nil),
	}
	if deps.Logger != nil {
		logg := deps.Logger
		s.Offer.Subscribe(offer.ObserverFunc(func(e offer.Event) {
			logg.Debug(logg.WithFields(ctx, map[string]any{
				"event":       string(e.Kind),
				"total_cents": e.Summary.TotalCents,
			}), "funnel.offer.changed")
		}))
		s.Checkout.Subscribe(checkout.ObserverFunc(func(e checkout.Event) {
			logg.Debug(logg.WithFields(ctx, map[string]any{
				"status":  string(e.Status),
				"attempt": e.Attempt,
			}), "funnel.checkout.changed")
		}))
	}
	return s, nil
}

// Input is a storefront form as posted by the browser.
type Input struct {
	BumpIDs       []string
	ShippingID    string
	PaymentMethod string
	Customer      checkout.Customer
	Address       types.Address
	Attribution   types.Attribution
}

// Select loads offer and applies the buyer's choices. Unknown ids are rejected.
func (s *Session) Select(o pricing.Offer, in Input) error {
	s.Offer.Load(o)

	if raw := strings.TrimSpace(in.PaymentMethod); raw != "" {
		method, err := enums.ParsePaymentMethod(strings.ToLower(raw))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
		}
		if err := s.Offer.SetPaymentMethod(method); err != nil {
			return err
		}
	}
	for _, id := range in.BumpIDs {
		if err := s.Offer.AddBump(strings.TrimSpace(id)); err != nil {
			return err
		}
	}
	if id := strings.TrimSpace(in.ShippingID); id != "" {
		if err := s.Offer.SelectShipping(id); err != nil {
			return err
		}
	}
	return nil
}

// Quote prices the buyer's choices.
func (s *Session) Quote(o pricing.Offer, in Input) (pricing.Summary, error) {
	if err := s.Select(o, in); err != nil {
		return pricing.Summary{}, err
	}
	return s.Offer.Summary(), nil
}

// FillAddress drives the address section the way the form does: contact first, then
// the CEP blur, then whatever fields remain editable.
func (s *Session) FillAddress(ctx context.Context, c checkout.Customer, addr types.Address) address.Snapshot {
	s.Address.SetContact(c.Name, c.Email, c.Cellphone)
	if !s.Address.Snapshot().Status.Open() {
		return s.Address.Snapshot()
	}

	if strings.TrimSpace(addr.CEP) != "" {
		s.Address.InputCEP(addr.CEP)
		s.Address.Blur(ctx)
	} else {
		s.Address.OpenManually()
	}

	fields := map[string]string{
		address.FieldStreet:       addr.Street,
		address.FieldNumber:       addr.Number,
		address.FieldComplement:   addr.Complement,
		address.FieldNeighborhood: addr.Neighborhood,
		address.FieldCity:         addr.City,
		address.FieldState:        addr.State,
		address.FieldCountry:      addr.Country,
	}
	for _, name := range fieldOrder {
		value := strings.TrimSpace(fields[name])
		if value == "" {
			continue
		}
		// read-only fields keep the looked-up value
		_ = s.Address.SetField(name, value)
	}
	return s.Address.Snapshot()
}

var fieldOrder = []string{
	address.FieldStreet,
	address.FieldNumber,
	address.FieldComplement,
	address.FieldNeighborhood,
	address.FieldCity,
	address.FieldState,
	address.FieldCountry,
}

// Submit replays a full storefront submission and creates the pix charge.
func (s *Session) Submit(ctx context.Context, o pricing.Offer, in Input) (*checkout.Result, error) {
	if err := s.Select(o, in); err != nil {
		return nil, err
	}
	snap := s.FillAddress(ctx, in.Customer, in.Address)
	return s.Checkout.Submit(ctx, checkout.Submission{
		Offer:       s.Offer.Offer(),
		Selection:   s.Offer.Selection(),
		Policy:      s.Offer.Policy(),
		Customer:    in.Customer,
		Address:     snap,
		Attribution: in.Attribution,
	})
}

// Stage is how far the buyer got, for cart tracking.
func Stage(in Input) enums.CartStage {
	c := in.Customer
	switch {
	case strings.TrimSpace(in.Address.Street) != "" || address.ValidCEP(in.Address.CEP):
		if strings.TrimSpace(c.TaxID) != "" {
			return enums.CartStagePayment
		}
		return enums.CartStageAddress
	case strings.TrimSpace(c.Name) != "" || strings.TrimSpace(c.Email) != "" || strings.TrimSpace(c.Cellphone) != "":
		return enums.CartStageContact
	default:
		return enums.CartStageOffer
	}
}
