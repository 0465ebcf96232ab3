package pricing

import (
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
)

// Product is a catalog entry as seen by the checkout.
type Product struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	PriceCents        int               `json:"price_cents"`
	ComparePriceCents *int              `json:"compare_price_cents"`
	ImageURL          string            `json:"image_url"`
	Type              enums.ProductType `json:"type"`
	Active            bool              `json:"active"`
	Sort              int               `json:"sort"`
}

// Markdown returns the compare-at price when it is a real markdown (strictly above the price).
func (p Product) Markdown() (int, bool) {
	if p.ComparePriceCents == nil || *p.ComparePriceCents <= p.PriceCents {
		return 0, false
	}
	return *p.ComparePriceCents, true
}

// ShippingOption is one selectable delivery method.
type ShippingOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int    `json:"price_cents"`
}

// Offer is the catalog loaded once per checkout session.
type Offer struct {
	Base     *Product         `json:"base"`
	Bumps    []Product        `json:"bumps"`
	Upsells  []Product        `json:"upsells"`
	Shipping []ShippingOption `json:"shipping"`
}

// Bump finds a bump by id.
func (o Offer) Bump(id string) (Product, bool) {
	for _, b := range o.Bumps {
		if b.ID == id {
			return b, true
		}
	}
	return Product{}, false
}

// ShippingOption finds a shipping option by id.
func (o Offer) ShippingOption(id string) (ShippingOption, bool) {
	for _, s := range o.Shipping {
		if s.ID == id {
			return s, true
		}
	}
	return ShippingOption{}, false
}

// Selection is the buyer's current choice over an Offer.
type Selection struct {
	BumpIDs       map[string]bool
	ShippingID    string
	PaymentMethod enums.PaymentMethod
}

// NewSelection returns an empty pix selection.
func NewSelection() Selection {
	return Selection{BumpIDs: map[string]bool{}, PaymentMethod: enums.PaymentMethodPix}
}

// Clone deep-copies the bump set.
func (s Selection) Clone() Selection {
	out := s
	out.BumpIDs = make(map[string]bool, len(s.BumpIDs))
	for id, on := range s.BumpIDs {
		if on {
			out.BumpIDs[id] = true
		}
	}
	return out
}

// HasBump reports whether id is selected.
func (s Selection) HasBump(id string) bool {
	return s.BumpIDs[id]
}
