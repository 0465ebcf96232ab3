package checkout

import (
	"strings"

	"github.com/angelmondragon/pixfunnel-backend/internal/address"
	"github.com/angelmondragon/pixfunnel-backend/internal/pricing"
	"github.com/angelmondragon/pixfunnel-backend/pkg/pixgateway"
	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

// Customer is the contact block of the checkout form. EmailConfirmation is nil when the
// form has no confirmation field.
type Customer struct {
	Name              string
	Email             string
	EmailConfirmation *string
	Cellphone         string
	TaxID             string
}

// Submission is everything the pipeline reads at submit time.
type Submission struct {
	Offer       pricing.Offer
	Selection   pricing.Selection
	Policy      pricing.Policy
	Customer    Customer
	Address     address.Snapshot
	Attribution types.Attribution
}

// Summary prices the submission with its own policy.
func (s Submission) Summary() pricing.Summary {
	return pricing.Compute(s.Offer, s.Selection, s.Policy)
}

// BuildChargeRequest assembles the gateway payload. description overrides the base
// product name when set.
func BuildChargeRequest(sub Submission, description string) pixgateway.ChargeRequest {
	summary := sub.Summary()

	if strings.TrimSpace(description) == "" && sub.Offer.Base != nil {
		description = sub.Offer.Base.Name
	}

	var addr *types.Address
	if a := sub.Address.Address; !a.IsZero() {
		a.CEP = address.FormatCEP(a.CEP)
		if strings.TrimSpace(a.Country) == "" {
			a.Country = address.DefaultCountry
		}
		addr = &a
	}

	utm := sub.Attribution.UTM
	if utm == nil {
		utm = map[string]string{}
	}

	req := pixgateway.ChargeRequest{
		Amount:      summary.TotalCents,
		Description: description,
		Customer: types.Customer{
			Name:      strings.TrimSpace(sub.Customer.Name),
			Email:     strings.TrimSpace(sub.Customer.Email),
			Cellphone: strings.TrimSpace(sub.Customer.Cellphone),
			TaxID:     strings.TrimSpace(sub.Customer.TaxID),
			Address:   addr,
		},
		Tracking:  pixgateway.Tracking{UTM: utm, Src: sub.Attribution.Src},
		Address:   addr,
		FBP:       sub.Attribution.FBP,
		FBC:       sub.Attribution.FBC,
		UserAgent: sub.Attribution.UserAgent,
	}

	if sub.Policy.ShippingEnabled() {
		if opt, ok := sub.Offer.ShippingOption(sub.Selection.ShippingID); ok {
			req.Shipping = &pixgateway.Shipping{ID: opt.ID, Name: opt.Name, PriceCents: opt.PriceCents}
		}
	}
	return req
}
