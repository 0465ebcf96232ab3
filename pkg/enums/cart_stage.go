package enums

import "fmt"

// CartStage records how far a visitor got in the funnel.
type CartStage string

const (
	CartStageOffer        CartStage = "offer"
	CartStageContact      CartStage = "contact"
	CartStageAddress      CartStage = "address"
	CartStagePayment      CartStage = "payment"
	CartStagePixGenerated CartStage = "pix_generated"
)

var validCartStages = []CartStage{
	CartStageOffer,
	CartStageContact,
	CartStageAddress,
	CartStagePayment,
	CartStagePixGenerated,
}

// String implements fmt.Stringer.
func (c CartStage) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartStage.
func (c CartStage) IsValid() bool {
	for _, candidate := range validCartStages {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartStage converts raw input into a CartStage.
func ParseCartStage(value string) (CartStage, error) {
	for _, candidate := range validCartStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart stage %q", value)
}
