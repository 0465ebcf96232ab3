package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pixfunnel-backend/internal/pricing"
	"github.com/angelmondragon/pixfunnel-backend/pkg/db/models"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
)

// OptionalCents accepts a number, a numeric string, null or "" (the last two meaning absent).
type OptionalCents struct {
	Value *int
}

func (o *OptionalCents) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		o.Value = nil
		return nil
	}
	var raw any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		n := int(v)
		o.Value = &n
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			o.Value = nil
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid cents value %q", v)
		}
		o.Value = &n
	default:
		return fmt.Errorf("invalid cents value %s", string(trimmed))
	}
	return nil
}

func (o OptionalCents) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// ItemInput is the admin create/update payload. Missing optional fields take the
// storefront defaults: empty description and image, price and sort 0, active true.
type ItemInput struct {
	Type              string        `json:"type"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	PriceCents        *int          `json:"price_cents"`
	ComparePriceCents OptionalCents `json:"compare_price_cents"`
	Active            *bool         `json:"active"`
	Sort              *int          `json:"sort"`
	ImageURL          string        `json:"image_url"`
}

// Normalize applies defaults and checks the required fields.
func (in ItemInput) Normalize() (models.Product, error) {
	name := strings.TrimSpace(in.Name)
	rawType := strings.ToLower(strings.TrimSpace(in.Type))
	if rawType == "" || name == "" {
		return models.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "Missing type or name")
	}
	productType, err := enums.ParseProductType(rawType)
	if err != nil {
		return models.Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item type")
	}

	product := models.Product{
		Type:              productType,
		Name:              name,
		Description:       in.Description,
		ComparePriceCents: in.ComparePriceCents.Value,
		Active:            true,
		ImageURL:          strings.TrimSpace(in.ImageURL),
	}
	if in.PriceCents != nil {
		product.PriceCents = *in.PriceCents
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	if in.Sort != nil {
		product.Sort = *in.Sort
	}

	if product.PriceCents < 0 {
		return models.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be non-negative")
	}
	if product.ComparePriceCents != nil && *product.ComparePriceCents < 0 {
		return models.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "compare_price_cents must be non-negative")
	}
	return product, nil
}

// Item is the admin view of a product.
type Item struct {
	ID                uuid.UUID         `json:"id"`
	Type              enums.ProductType `json:"type"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	PriceCents        int               `json:"price_cents"`
	ComparePriceCents *int              `json:"compare_price_cents"`
	Active            bool              `json:"active"`
	Sort              int               `json:"sort"`
	ImageURL          string            `json:"image_url"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ItemFromModel maps a stored product to its admin view.
func ItemFromModel(p models.Product) Item {
	return Item{
		ID:                p.ID,
		Type:              p.Type,
		Name:              p.Name,
		Description:       p.Description,
		PriceCents:        p.PriceCents,
		ComparePriceCents: p.ComparePriceCents,
		Active:            p.Active,
		Sort:              p.Sort,
		ImageURL:          p.ImageURL,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToPricingProduct maps a stored product into the checkout's catalog view.
func ToPricingProduct(p models.Product) pricing.Product {
	return pricing.Product{
		ID:                p.ID.String(),
		Name:              p.Name,
		Description:       p.Description,
		PriceCents:        p.PriceCents,
		ComparePriceCents: p.ComparePriceCents,
		ImageURL:          p.ImageURL,
		Type:              p.Type,
		Active:            p.Active,
		Sort:              p.Sort,
	}
}

// ToShippingOption maps a shipping-type product into a selectable option.
func ToShippingOption(p models.Product) pricing.ShippingOption {
	return pricing.ShippingOption{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
	}
}
