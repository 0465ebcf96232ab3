package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pixfunnel-backend/pkg/config"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
)

// DefaultDiscountRate is the pix discount applied in discount mode.
var DefaultDiscountRate = decimal.RequireFromString("0.15")

// Policy decides which of the discount and shipping terms enter the total.
type Policy struct {
	Mode            enums.CheckoutMode
	DiscountRate    decimal.Decimal
	DiscountMethods []enums.PaymentMethod
}

// DefaultPolicy is discount mode, 15% off for pix.
func DefaultPolicy() Policy {
	return Policy{
		Mode:            enums.CheckoutModeDiscount,
		DiscountRate:    DefaultDiscountRate,
		DiscountMethods: []enums.PaymentMethod{enums.PaymentMethodPix},
	}
}

// PolicyFromConfig builds a policy from the checkout env settings.
func PolicyFromConfig(cfg config.CheckoutConfig) (Policy, error) {
	policy := DefaultPolicy()

	if raw := strings.ToLower(strings.TrimSpace(cfg.Mode)); raw != "" {
		mode, err := enums.ParseCheckoutMode(raw)
		if err != nil {
			return Policy{}, err
		}
		policy.Mode = mode
	}

	if raw := strings.TrimSpace(cfg.PixDiscountRate); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return Policy{}, fmt.Errorf("invalid pix discount rate %q: %w", raw, err)
		}
		policy.DiscountRate = rate
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

// Validate checks the mode and that the rate lies in [0, 1].
func (p Policy) Validate() error {
	if !p.Mode.IsValid() {
		return fmt.Errorf("invalid checkout mode %q", p.Mode)
	}
	if p.DiscountRate.IsNegative() || p.DiscountRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("discount rate %s must be between 0 and 1", p.DiscountRate)
	}
	return nil
}

// DiscountEnabled reports whether the mode carries the discount term.
func (p Policy) DiscountEnabled() bool {
	return p.Mode == enums.CheckoutModeDiscount || p.Mode == enums.CheckoutModeCombined
}

// ShippingEnabled reports whether the mode carries the shipping term.
func (p Policy) ShippingEnabled() bool {
	return p.Mode == enums.CheckoutModeShipping || p.Mode == enums.CheckoutModeCombined
}

func (p Policy) discountApplies(method enums.PaymentMethod) bool {
	if !p.DiscountEnabled() {
		return false
	}
	for _, m := range p.DiscountMethods {
		if m == method {
			return true
		}
	}
	return false
}
