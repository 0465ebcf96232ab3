package enums

import "fmt"

// ProductType places a catalog item in the funnel.
type ProductType string

const (
	ProductTypeBase     ProductType = "base"
	ProductTypeBump     ProductType = "bump"
	ProductTypeUpsell   ProductType = "upsell"
	ProductTypeShipping ProductType = "shipping"
)

var validProductTypes = []ProductType{
	ProductTypeBase,
	ProductTypeBump,
	ProductTypeUpsell,
	ProductTypeShipping,
}

// String implements fmt.Stringer.
func (p ProductType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductType.
func (p ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductType converts raw input into a ProductType.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}
