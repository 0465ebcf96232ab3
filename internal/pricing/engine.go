package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

// LineKind tags a summary row.
type LineKind string

const (
	LineBase     LineKind = "base"
	LineBump     LineKind = "bump"
	LineShipping LineKind = "shipping"
)

// LineItem is one priced row of the order summary.
type LineItem struct {
	Kind       LineKind `json:"kind"`
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	PriceCents int      `json:"price_cents"`
}

// Summary is the derived order summary. The zero value is the empty summary.
type Summary struct {
	SubtotalCents int        `json:"subtotal_cents"`
	DiscountCents int        `json:"discount_cents"`
	ShippingCents int        `json:"shipping_cents"`
	TotalCents    int        `json:"total_cents"`
	LineItems     []LineItem `json:"line_items"`
}

// Compute derives the summary for selection over offer. It is pure: same inputs, same output.
//
// Bumps are listed in catalog order, and unknown bump or shipping ids contribute nothing.
func Compute(offer Offer, selection Selection, policy Policy) Summary {
	if offer.Base == nil {
		return Summary{LineItems: []LineItem{}}
	}

	base := *offer.Base
	lines := []LineItem{{Kind: LineBase, ID: base.ID, Label: base.Name, PriceCents: base.PriceCents}}
	subtotal := base.PriceCents

	for _, bump := range offer.Bumps {
		if !selection.HasBump(bump.ID) {
			continue
		}
		subtotal += bump.PriceCents
		lines = append(lines, LineItem{Kind: LineBump, ID: bump.ID, Label: bump.Name, PriceCents: bump.PriceCents})
	}

	discount := 0
	if policy.discountApplies(selection.PaymentMethod) {
		discount = Discount(subtotal, policy.DiscountRate)
	}

	shipping := 0
	if policy.ShippingEnabled() && selection.ShippingID != "" {
		if opt, ok := offer.ShippingOption(selection.ShippingID); ok {
			shipping = opt.PriceCents
			lines = append(lines, LineItem{Kind: LineShipping, ID: opt.ID, Label: opt.Name, PriceCents: opt.PriceCents})
		}
	}

	total := subtotal - discount + shipping
	if total < 0 {
		total = 0
	}

	return Summary{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		ShippingCents: shipping,
		TotalCents:    total,
		LineItems:     lines,
	}
}

// Discount returns floor(subtotal × rate) in cents.
func Discount(subtotalCents int, rate decimal.Decimal) int {
	if subtotalCents <= 0 || !rate.IsPositive() {
		return 0
	}
	return int(decimal.NewFromInt(int64(subtotalCents)).Mul(rate).Floor().IntPart())
}

// ProductCount is the number of product rows (base and bumps), shipping excluded.
func (s Summary) ProductCount() int {
	n := 0
	for _, l := range s.LineItems {
		if l.Kind != LineShipping {
			n++
		}
	}
	return n
}

// Snapshot converts the summary into its persisted form.
func (s Summary) Snapshot(paymentMethod string) types.OrderSummary {
	lines := make([]types.SummaryLine, 0, len(s.LineItems))
	for _, l := range s.LineItems {
		lines = append(lines, types.SummaryLine{Kind: string(l.Kind), ProductID: l.ID, Label: l.Label, PriceCents: l.PriceCents})
	}
	return types.OrderSummary{
		PaymentMethod: paymentMethod,
		SubtotalCents: s.SubtotalCents,
		DiscountCents: s.DiscountCents,
		ShippingCents: s.ShippingCents,
		TotalCents:    s.TotalCents,
		Lines:         lines,
	}
}
