package enums

import "fmt"

// CheckoutMode selects which second summary line the pricing engine applies.
type CheckoutMode string

const (
	CheckoutModeDiscount CheckoutMode = "discount"
	CheckoutModeShipping CheckoutMode = "shipping"
	CheckoutModeCombined CheckoutMode = "combined"
)

var validCheckoutModes = []CheckoutMode{
	CheckoutModeDiscount,
	CheckoutModeShipping,
	CheckoutModeCombined,
}

// String implements fmt.Stringer.
func (c CheckoutMode) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutMode.
func (c CheckoutMode) IsValid() bool {
	for _, candidate := range validCheckoutModes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckoutMode converts raw input into a CheckoutMode.
func ParseCheckoutMode(value string) (CheckoutMode, error) {
	for _, candidate := range validCheckoutModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout mode %q", value)
}
