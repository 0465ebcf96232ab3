package checkout

import (
	"github.com/angelmondragon/pixfunnel-backend/internal/address"
	"github.com/angelmondragon/pixfunnel-backend/internal/pricing"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

func strPtr(v string) *string { return &v }

func testOffer() pricing.Offer {
	return pricing.Offer{
		Base: &pricing.Product{ID: "base", Name: "Livro", PriceCents: 1990, Type: enums.ProductTypeBase, Active: true},
		Bumps: []pricing.Product{
			{ID: "bump-1", Name: "Marcador", PriceCents: 990, Type: enums.ProductTypeBump, Active: true},
			{ID: "bump-2", Name: "Ebook", PriceCents: 1490, Type: enums.ProductTypeBump, Active: true, Sort: 1},
		},
	}
}

func testAddress() address.Snapshot {
	return address.Snapshot{
		Status: address.StatusOpenAutoFilled,
		CEP:    "01310100",
		Address: types.Address{
			CEP:          "01310-100",
			Street:       "Avenida Paulista",
			Number:       "1000",
			Neighborhood: "Bela Vista",
			City:         "São Paulo",
			State:        "SP",
			Country:      "Brasil",
		},
		ReadOnly: true,
	}
}

func validSubmission() Submission {
	selection := pricing.NewSelection()
	selection.BumpIDs["bump-1"] = true
	return Submission{
		Offer:     testOffer(),
		Selection: selection,
		Policy:    pricing.DefaultPolicy(),
		Customer: Customer{
			Name:      "Ana Souza",
			Email:     "ana@example.com",
			Cellphone: "11999999999",
			TaxID:     "12345678900",
		},
		Address: testAddress(),
		Attribution: types.Attribution{
			UTM:       map[string]string{"utm_source": "facebook"},
			Src:       "https://loja.example.com/checkout?utm_source=facebook",
			FBP:       "fb.1.123",
			UserAgent: "test-agent",
		},
	}
}
