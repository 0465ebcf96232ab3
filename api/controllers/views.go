package controllers

import (
	"github.com/angelmondragon/pixfunnel-backend/internal/offer"
	"github.com/angelmondragon/pixfunnel-backend/internal/pricing"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

type policyView struct {
	Mode         enums.CheckoutMode `json:"mode"`
	DiscountRate string             `json:"discount_rate"`
}

type offerView struct {
	Configured bool                     `json:"configured"`
	Title      string                   `json:"title"`
	Base       *pricing.Product         `json:"base"`
	Bumps      []pricing.Product        `json:"bumps"`
	Upsells    []pricing.Product        `json:"upsells"`
	Shipping   []pricing.ShippingOption `json:"shipping"`
	Policy     policyView               `json:"policy"`
}

func newOfferView(o pricing.Offer, policy pricing.Policy) offerView {
	title := offer.NotConfiguredTitle
	if o.Base != nil {
		title = o.Base.Name
	}
	return offerView{
		Configured: o.Base != nil,
		Title:      title,
		Base:       o.Base,
		Bumps:      nonNil(o.Bumps),
		Upsells:    nonNil(o.Upsells),
		Shipping:   nonNil(o.Shipping),
		Policy: policyView{
			Mode:         policy.Mode,
			DiscountRate: policy.DiscountRate.String(),
		},
	}
}

type summaryView struct {
	pricing.Summary
	ItemCountLabel  string `json:"item_count_label"`
	SubtotalDisplay string `json:"subtotal_display"`
	DiscountDisplay string `json:"discount_display"`
	ShippingDisplay string `json:"shipping_display"`
	TotalDisplay    string `json:"total_display"`
}

func newSummaryView(s pricing.Summary) summaryView {
	if s.LineItems == nil {
		s.LineItems = []pricing.LineItem{}
	}
	return summaryView{
		Summary:         s,
		ItemCountLabel:  pricing.ItemCountLabel(s.ProductCount()),
		SubtotalDisplay: pricing.FormatBRL(s.SubtotalCents),
		DiscountDisplay: pricing.FormatBRL(s.DiscountCents),
		ShippingDisplay: pricing.FormatBRL(s.ShippingCents),
		TotalDisplay:    pricing.FormatBRL(s.TotalCents),
	}
}

type quoteResponse struct {
	Title          string      `json:"title"`
	Summary        summaryView `json:"summary"`
	AllSelected    bool        `json:"all_selected"`
	SelectAllLabel string      `json:"select_all_label"`
	Stage          string      `json:"stage"`
}

type pixResponse struct {
	types.PixCharge
	OrderID   string      `json:"order_id,omitempty"`
	Summary   summaryView `json:"summary"`
	CopyLabel string      `json:"copy_label"`
	Attempts  int         `json:"attempts"`
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
