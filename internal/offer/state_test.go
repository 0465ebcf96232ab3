package offer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pixfunnel-backend/internal/pricing"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
)

func sampleOffer() pricing.Offer {
	return pricing.Offer{
		Base: &pricing.Product{ID: "base-1", Name: "Kit Essencial", PriceCents: 1990},
		Bumps: []pricing.Product{
			{ID: "bump-a", Name: "Guia", PriceCents: 990},
			{ID: "bump-b", Name: "Planner", PriceCents: 1490},
		},
		Shipping: []pricing.ShippingOption{
			{ID: "pac", Name: "PAC", PriceCents: 1500},
			{ID: "sedex", Name: "SEDEX", PriceCents: 2800},
		},
	}
}

type recorder struct{ events []Event }

func (r *recorder) OnOfferChange(e Event) { r.events = append(r.events, e) }

func newLoaded(t *testing.T) (*State, *recorder) {
	t.Helper()
	s := New(pricing.DefaultPolicy())
	rec := &recorder{}
	s.Subscribe(rec)
	s.Load(sampleOffer())
	return s, rec
}

func TestLoadSelectsFirstShippingAndNotifies(t *testing.T) {
	s, rec := newLoaded(t)

	require.True(t, s.Configured())
	require.Equal(t, "Kit Essencial", s.Title())
	require.Equal(t, "pac", s.Selection().ShippingID)
	require.Len(t, rec.events, 1)
	require.Equal(t, EventLoaded, rec.events[0].Kind)
	require.Equal(t, 1990-298, rec.events[0].Summary.TotalCents)
}

func TestReloadKeepsSurvivingShippingOrFallsBack(t *testing.T) {
	s, _ := newLoaded(t)
	require.NoError(t, s.SelectShipping("sedex"))

	s.Load(sampleOffer())
	require.Equal(t, "sedex", s.Selection().ShippingID)

	reduced := sampleOffer()
	reduced.Shipping = reduced.Shipping[:1]
	s.Load(reduced)
	require.Equal(t, "pac", s.Selection().ShippingID)

	none := sampleOffer()
	none.Shipping = nil
	s.Load(none)
	require.Empty(t, s.Selection().ShippingID)
	_, ok := s.SelectedShipping()
	require.False(t, ok)
}

func TestAddRemoveToggleRecompute(t *testing.T) {
	s, rec := newLoaded(t)

	require.NoError(t, s.AddBump("bump-a"))
	require.Equal(t, 2980, s.Summary().SubtotalCents)
	require.Equal(t, 2533, s.Summary().TotalCents)

	require.NoError(t, s.ToggleBump("bump-b"))
	require.Equal(t, 2980+1490, s.Summary().SubtotalCents)

	require.NoError(t, s.ToggleBump("bump-b"))
	require.NoError(t, s.RemoveBump("bump-a"))
	require.Equal(t, 1990, s.Summary().SubtotalCents)
	require.Len(t, rec.events, 5)
}

func TestUnknownBumpRejected(t *testing.T) {
	s, rec := newLoaded(t)

	err := s.AddBump("ghost")
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	require.Error(t, s.RemoveBump("ghost"))
	require.Error(t, s.ToggleBump("ghost"))
	require.Empty(t, s.Selection().BumpIDs)
	require.Len(t, rec.events, 1)
}

func TestUnknownShippingKeepsPriorSelection(t *testing.T) {
	s, _ := newLoaded(t)
	require.NoError(t, s.SelectShipping("sedex"))

	err := s.SelectShipping("drone")
	require.Error(t, err)
	require.Equal(t, "sedex", s.Selection().ShippingID)
}

func TestSelectAllIsAtomicAndIdempotent(t *testing.T) {
	s, rec := newLoaded(t)

	s.SelectAll(true)
	first := s.Selection()
	require.Len(t, rec.events, 2)
	require.True(t, rec.events[1].AllSelected)

	s.SelectAll(true)
	require.Equal(t, first, s.Selection())
	require.True(t, s.AllSelected())
	require.Equal(t, DeselectAllLabel, s.SelectAllLabel())

	s.SelectAll(false)
	require.Empty(t, s.Selection().BumpIDs)
	require.False(t, s.AllSelected())
	require.Equal(t, SelectAllLabel, s.SelectAllLabel())
}

func TestAllSelectedTracksIndividualToggles(t *testing.T) {
	s, _ := newLoaded(t)
	require.NoError(t, s.AddBump("bump-a"))
	require.False(t, s.AllSelected())
	require.NoError(t, s.AddBump("bump-b"))
	require.True(t, s.AllSelected())
}

func TestAllSelectedFalseWithoutBumps(t *testing.T) {
	s := New(pricing.DefaultPolicy())
	o := sampleOffer()
	o.Bumps = nil
	s.Load(o)
	s.SelectAll(true)
	require.False(t, s.AllSelected())
}

func TestPaymentMethod(t *testing.T) {
	s, _ := newLoaded(t)
	require.True(t, s.Operable())

	require.NoError(t, s.SetPaymentMethod(enums.PaymentMethodCard))
	require.False(t, s.Operable())
	require.Equal(t, 0, s.Summary().DiscountCents)

	require.Error(t, s.SetPaymentMethod("boleto"))
	require.Equal(t, enums.PaymentMethodCard, s.Selection().PaymentMethod)
}

func TestNotConfiguredOffer(t *testing.T) {
	s := New(pricing.DefaultPolicy())
	s.Load(pricing.Offer{})
	require.False(t, s.Configured())
	require.Equal(t, NotConfiguredTitle, s.Title())
	require.Equal(t, 0, s.Summary().TotalCents)
}

func TestSelectionSnapshotIsDetached(t *testing.T) {
	s, _ := newLoaded(t)
	sel := s.Selection()
	sel.BumpIDs["bump-a"] = true
	require.False(t, s.Selection().HasBump("bump-a"))
}

func TestObserverFunc(t *testing.T) {
	s := New(pricing.DefaultPolicy())
	var kinds []EventKind
	s.Subscribe(ObserverFunc(func(e Event) { kinds = append(kinds, e.Kind) }))
	s.Load(sampleOffer())
	require.NoError(t, s.SelectShipping("sedex"))
	require.Equal(t, []EventKind{EventLoaded, EventShippingChanged}, kinds)
}
