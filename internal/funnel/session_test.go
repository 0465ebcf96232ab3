package funnel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pixfunnel-backend/internal/address"
	"github.com/angelmondragon/pixfunnel-backend/internal/checkout"
	"github.com/angelmondragon/pixfunnel-backend/internal/pricing"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/logger"
	"github.com/angelmondragon/pixfunnel-backend/pkg/pixgateway"
	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

type stubLookup struct {
	result address.Result
	err    error
}

func (s stubLookup) Lookup(ctx context.Context, cep string) (address.Result, error) {
	return s.result, s.err
}

type stubCharger struct {
	requests []pixgateway.ChargeRequest
}

func (s *stubCharger) CreateCharge(ctx context.Context, req pixgateway.ChargeRequest) (*pixgateway.ChargeResult, error) {
	s.requests = append(s.requests, req)
	return &pixgateway.ChargeResult{PixQRCode: "https://qr.example/1.png", PixCode: "000201PIX"}, nil
}

func testOffer() pricing.Offer {
	return pricing.Offer{
		Base:  &pricing.Product{ID: "base", Name: "Livro", PriceCents: 1990, Type: enums.ProductTypeBase, Active: true},
		Bumps: []pricing.Product{{ID: "bump-1", Name: "Marcador", PriceCents: 990, Type: enums.ProductTypeBump, Active: true}},
	}
}

func testInput() Input {
	return Input{
		BumpIDs:       []string{"bump-1"},
		PaymentMethod: "pix",
		Customer: checkout.Customer{
			Name:      "Ana Souza",
			Email:     "ana@example.com",
			Cellphone: "11999999999",
			TaxID:     "12345678900",
		},
		Address: types.Address{CEP: "01310-100", Street: "Rua Falsa", Number: "1000", City: "São Paulo", State: "SP"},
	}
}

func newSession(t *testing.T, lookup address.Service, charger *stubCharger) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), Deps{
		Policy:  pricing.DefaultPolicy(),
		Lookup:  lookup,
		Charger: charger,
		Address: address.DefaultOptions(),
		Logger:  logger.Nop(),
	})
	require.NoError(t, err)
	return s
}

func TestNewSessionRequiresCharger(t *testing.T) {
	_, err := NewSession(context.Background(), Deps{})
	require.Error(t, err)
}

func TestQuoteAppliesSelections(t *testing.T) {
	s := newSession(t, stubLookup{}, &stubCharger{})
	summary, err := s.Quote(testOffer(), testInput())
	require.NoError(t, err)
	require.Equal(t, 2980, summary.SubtotalCents)
	require.Equal(t, 447, summary.DiscountCents)
	require.Equal(t, 2533, summary.TotalCents)
}

func TestQuoteRejectsUnknownBump(t *testing.T) {
	s := newSession(t, stubLookup{}, &stubCharger{})
	in := testInput()
	in.BumpIDs = []string{"ghost"}
	_, err := s.Quote(testOffer(), in)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestQuoteCardHasNoDiscount(t *testing.T) {
	s := newSession(t, stubLookup{}, &stubCharger{})
	in := testInput()
	in.PaymentMethod = "CARD"
	summary, err := s.Quote(testOffer(), in)
	require.NoError(t, err)
	require.Equal(t, 0, summary.DiscountCents)
	require.False(t, s.Offer.Operable())
}

func TestSubmitUsesLookedUpAddress(t *testing.T) {
	lookup := stubLookup{result: address.Result{CEP: "01310100", Street: "Avenida Paulista", Neighborhood: "Bela Vista", City: "São Paulo", State: "SP"}}
	charger := &stubCharger{}
	s := newSession(t, lookup, charger)

	res, err := s.Submit(context.Background(), testOffer(), testInput())
	require.NoError(t, err)
	require.Equal(t, "000201PIX", res.Charge.Code)
	require.Len(t, charger.requests, 1)

	req := charger.requests[0]
	require.Equal(t, 2533, req.Amount)
	require.Equal(t, "Avenida Paulista", req.Address.Street)
	require.Equal(t, "1000", req.Address.Number)
	require.Equal(t, "Brasil", req.Address.Country)
}

func TestSubmitFallsBackToTypedAddress(t *testing.T) {
	lookup := stubLookup{err: pkgerrors.New(pkgerrors.CodeDependency, "viacep down")}
	charger := &stubCharger{}
	s := newSession(t, lookup, charger)

	_, err := s.Submit(context.Background(), testOffer(), testInput())
	require.NoError(t, err)
	require.Equal(t, "Rua Falsa", charger.requests[0].Address.Street)
	require.Equal(t, address.StatusOpenManual, s.Address.Snapshot().Status)
}

func TestSubmitRejectsMalformedCEP(t *testing.T) {
	for _, cep := range []string{"0131", ""} {
		charger := &stubCharger{}
		s := newSession(t, stubLookup{}, charger)
		in := testInput()
		in.Address.CEP = cep

		_, err := s.Submit(context.Background(), testOffer(), in)
		require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "cep %q", cep)
		require.Equal(t, address.MessageCEPRequired, pkgerrors.As(err).Message())
		require.Empty(t, charger.requests)
	}
}

func TestSubmitWithoutContactIsRejected(t *testing.T) {
	charger := &stubCharger{}
	s := newSession(t, stubLookup{}, charger)
	in := testInput()
	in.Customer.Cellphone = ""

	_, err := s.Submit(context.Background(), testOffer(), in)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	require.Empty(t, charger.requests)
}

func TestStage(t *testing.T) {
	require.Equal(t, enums.CartStageOffer, Stage(Input{}))
	require.Equal(t, enums.CartStageContact, Stage(Input{Customer: checkout.Customer{Email: "a@b.c"}}))

	in := testInput()
	in.Customer.TaxID = ""
	require.Equal(t, enums.CartStageAddress, Stage(in))
	require.Equal(t, enums.CartStagePayment, Stage(testInput()))
}
