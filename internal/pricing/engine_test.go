package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pixfunnel-backend/pkg/config"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
)

func intPtr(v int) *int { return &v }

func sampleOffer() Offer {
	return Offer{
		Base: &Product{ID: "base-1", Name: "Kit Essencial", PriceCents: 1990, Type: enums.ProductTypeBase, Active: true},
		Bumps: []Product{
			{ID: "bump-a", Name: "Guia Rápido", PriceCents: 990, Type: enums.ProductTypeBump, Active: true},
			{ID: "bump-b", Name: "Planner", PriceCents: 1490, Type: enums.ProductTypeBump, Active: true},
		},
		Shipping: []ShippingOption{
			{ID: "pac", Name: "PAC", PriceCents: 1500},
			{ID: "sedex", Name: "SEDEX", PriceCents: 2800},
		},
	}
}

func selectionWith(ids ...string) Selection {
	sel := NewSelection()
	for _, id := range ids {
		sel.BumpIDs[id] = true
	}
	return sel
}

func TestComputePixDiscountExample(t *testing.T) {
	summary := Compute(sampleOffer(), selectionWith("bump-a"), DefaultPolicy())

	require.Equal(t, 2980, summary.SubtotalCents)
	require.Equal(t, 447, summary.DiscountCents)
	require.Equal(t, 0, summary.ShippingCents)
	require.Equal(t, 2533, summary.TotalCents)
	require.Len(t, summary.LineItems, 2)
	require.Equal(t, LineBase, summary.LineItems[0].Kind)
	require.Equal(t, "Guia Rápido", summary.LineItems[1].Label)
}

func TestComputeCardHasNoDiscount(t *testing.T) {
	sel := selectionWith("bump-a")
	sel.PaymentMethod = enums.PaymentMethodCard

	summary := Compute(sampleOffer(), sel, DefaultPolicy())
	require.Equal(t, 0, summary.DiscountCents)
	require.Equal(t, 2980, summary.TotalCents)
}

func TestComputeNoBaseIsEmpty(t *testing.T) {
	offer := sampleOffer()
	offer.Base = nil

	summary := Compute(offer, selectionWith("bump-a"), DefaultPolicy())
	require.Equal(t, 0, summary.SubtotalCents)
	require.Equal(t, 0, summary.TotalCents)
	require.Empty(t, summary.LineItems)
	require.Equal(t, 0, summary.ProductCount())
}

func TestComputeBumpsFollowCatalogOrder(t *testing.T) {
	summary := Compute(sampleOffer(), selectionWith("bump-b", "bump-a", "ghost"), DefaultPolicy())

	require.Equal(t, []string{"base-1", "bump-a", "bump-b"}, []string{
		summary.LineItems[0].ID, summary.LineItems[1].ID, summary.LineItems[2].ID,
	})
	require.Equal(t, 1990+990+1490, summary.SubtotalCents)
}

func TestComputeShippingMode(t *testing.T) {
	policy := DefaultPolicy()
	policy.Mode = enums.CheckoutModeShipping

	sel := selectionWith("bump-a")
	sel.ShippingID = "sedex"

	summary := Compute(sampleOffer(), sel, policy)
	require.Equal(t, 0, summary.DiscountCents)
	require.Equal(t, 2800, summary.ShippingCents)
	require.Equal(t, 2980+2800, summary.TotalCents)
	require.Equal(t, LineShipping, summary.LineItems[len(summary.LineItems)-1].Kind)
	require.Equal(t, 2, summary.ProductCount())
}

func TestComputeShippingIgnoredInDiscountMode(t *testing.T) {
	sel := NewSelection()
	sel.ShippingID = "pac"

	summary := Compute(sampleOffer(), sel, DefaultPolicy())
	require.Equal(t, 0, summary.ShippingCents)
	require.Len(t, summary.LineItems, 1)
}

func TestComputeCombinedModeAppliesBothTerms(t *testing.T) {
	policy := DefaultPolicy()
	policy.Mode = enums.CheckoutModeCombined

	sel := NewSelection()
	sel.ShippingID = "pac"

	summary := Compute(sampleOffer(), sel, policy)
	require.Equal(t, 298, summary.DiscountCents)
	require.Equal(t, 1500, summary.ShippingCents)
	require.Equal(t, 1990-298+1500, summary.TotalCents)
}

func TestComputeUnknownShippingContributesNothing(t *testing.T) {
	policy := DefaultPolicy()
	policy.Mode = enums.CheckoutModeShipping
	sel := NewSelection()
	sel.ShippingID = "drone"

	summary := Compute(sampleOffer(), sel, policy)
	require.Equal(t, 0, summary.ShippingCents)
}

func TestComputeTotalNeverNegative(t *testing.T) {
	policy := DefaultPolicy()
	policy.DiscountRate = decimal.NewFromInt(1)

	summary := Compute(sampleOffer(), NewSelection(), policy)
	require.Equal(t, 1990, summary.DiscountCents)
	require.Equal(t, 0, summary.TotalCents)
}

func TestDiscountFloors(t *testing.T) {
	require.Equal(t, 447, Discount(2980, DefaultDiscountRate))
	require.Equal(t, 0, Discount(6, DefaultDiscountRate))
	require.Equal(t, 1, Discount(7, DefaultDiscountRate))
	require.Equal(t, 0, Discount(1000, decimal.Zero))
}

func TestProductMarkdown(t *testing.T) {
	p := Product{PriceCents: 1990, ComparePriceCents: intPtr(3990)}
	compare, ok := p.Markdown()
	require.True(t, ok)
	require.Equal(t, 3990, compare)

	p.ComparePriceCents = intPtr(1990)
	_, ok = p.Markdown()
	require.False(t, ok)

	p.ComparePriceCents = nil
	_, ok = p.Markdown()
	require.False(t, ok)
}

func TestPolicyFromConfig(t *testing.T) {
	policy, err := PolicyFromConfig(config.CheckoutConfig{Mode: "Combined", PixDiscountRate: "0.10"})
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutModeCombined, policy.Mode)
	require.True(t, policy.DiscountRate.Equal(decimal.RequireFromString("0.1")))
	require.True(t, policy.DiscountEnabled())
	require.True(t, policy.ShippingEnabled())

	_, err = PolicyFromConfig(config.CheckoutConfig{Mode: "discount", PixDiscountRate: "1.5"})
	require.Error(t, err)

	_, err = PolicyFromConfig(config.CheckoutConfig{Mode: "half-off"})
	require.Error(t, err)

	policy, err = PolicyFromConfig(config.CheckoutConfig{})
	require.NoError(t, err)
	require.Equal(t, DefaultPolicy().Mode, policy.Mode)
}

func TestSnapshotCopiesLines(t *testing.T) {
	summary := Compute(sampleOffer(), selectionWith("bump-a"), DefaultPolicy())
	snap := summary.Snapshot("pix")

	require.Equal(t, "pix", snap.PaymentMethod)
	require.Equal(t, 2533, snap.TotalCents)
	require.Len(t, snap.Lines, 2)
	require.Equal(t, "bump-a", snap.Lines[1].ProductID)
}

func TestSelectionCloneIsIndependent(t *testing.T) {
	sel := selectionWith("bump-a")
	clone := sel.Clone()
	clone.BumpIDs["bump-b"] = true

	require.False(t, sel.HasBump("bump-b"))
	require.True(t, clone.HasBump("bump-a"))
}
