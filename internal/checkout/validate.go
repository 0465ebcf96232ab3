package checkout

import (
	"strings"

	"go.uber.org/multierr"

	"github.com/angelmondragon/pixfunnel-backend/internal/address"
	"github.com/angelmondragon/pixfunnel-backend/internal/offer"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
)

const (
	MessageContactRequired  = "Preencha nome, e-mail e celular para continuar."
	MessageEmailMismatch    = "Os e-mails informados não conferem."
	MessageAddressLocked    = "Preencha seus dados de contato para liberar o endereço."
	MessageAddressRequired  = "Preencha rua, número, cidade e estado para continuar."
	MessageShippingRequired = "Selecione uma opção de frete."
	MessageMethodDisabled   = "Pagamento disponível apenas via Pix."
)

// Validate checks a submission without touching the network. Every violation is
// collected; the returned error is CodeValidation with the first violation as its
// message and the full list under details.
func Validate(sub Submission) error {
	var errs error
	fail := func(msg string) {
		errs = multierr.Append(errs, pkgerrors.New(pkgerrors.CodeValidation, msg))
	}

	if sub.Offer.Base == nil {
		fail(offer.NotConfiguredTitle)
	}

	c := sub.Customer
	if blank(c.Name) || blank(c.Email) || blank(c.Cellphone) {
		fail(MessageContactRequired)
	}
	if c.EmailConfirmation != nil && !strings.EqualFold(strings.TrimSpace(*c.EmailConfirmation), strings.TrimSpace(c.Email)) {
		fail(MessageEmailMismatch)
	}

	addr := sub.Address.Address
	if sub.Policy.ShippingEnabled() {
		switch {
		case !sub.Address.Status.Open():
			fail(MessageAddressLocked)
		case !address.ValidCEP(addr.CEP):
			fail(address.MessageCEPRequired)
		case blank(addr.Street) || blank(addr.City) || blank(addr.State) || blank(addr.Number):
			fail(MessageAddressRequired)
		}
	} else if !address.ValidCEP(addr.CEP) || blank(addr.Street) || blank(addr.City) || blank(addr.State) {
		fail(address.MessageCEPRequired)
	}

	if len(sub.Offer.Shipping) > 0 {
		if _, ok := sub.Offer.ShippingOption(sub.Selection.ShippingID); !ok {
			fail(MessageShippingRequired)
		}
	}

	if sub.Selection.PaymentMethod != enums.PaymentMethodPix {
		fail(MessageMethodDisabled)
	}

	if errs == nil {
		return nil
	}
	all := multierr.Errors(errs)
	messages := make([]string, 0, len(all))
	for _, err := range all {
		messages = append(messages, pkgerrors.As(err).Message())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, messages[0]).
		WithDetails(map[string]any{"errors": messages})
}

func blank(v string) bool {
	return strings.TrimSpace(v) == ""
}
