package address

import "strings"

// CEPLength is the number of digits in a Brazilian postal code.
const CEPLength = 8

const (
	MessageInvalidCEP   = "Informe um CEP com 8 dígitos."
	MessageCEPNotFound  = "Não foi possível localizar o CEP informado."
	MessageIncomplete   = "Não encontramos o endereço completo. Preencha os campos manualmente."
	MessageCEPRequired  = "Preencha um CEP válido para continuar."
	DefaultCountry      = "Brasil"
	formattedCEPLength  = CEPLength + 1
	formattedCEPDivider = 5
)

// NormalizeCEP keeps only the digits of raw, capped at 8.
func NormalizeCEP(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == CEPLength {
				break
			}
		}
	}
	return b.String()
}

// FormatCEP renders the normalized digits with a hyphen after the fifth digit.
func FormatCEP(raw string) string {
	digits := NormalizeCEP(raw)
	if len(digits) <= formattedCEPDivider {
		return digits
	}
	return digits[:formattedCEPDivider] + "-" + digits[formattedCEPDivider:]
}

// ValidCEP reports whether raw normalizes to exactly 8 digits.
func ValidCEP(raw string) bool {
	return len(NormalizeCEP(raw)) == CEPLength
}
