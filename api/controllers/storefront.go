package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pixfunnel-backend/api/middleware"
	"github.com/angelmondragon/pixfunnel-backend/api/responses"
	"github.com/angelmondragon/pixfunnel-backend/api/validators"
	"github.com/angelmondragon/pixfunnel-backend/internal/address"
	"github.com/angelmondragon/pixfunnel-backend/internal/catalog"
	"github.com/angelmondragon/pixfunnel-backend/internal/checkout"
	"github.com/angelmondragon/pixfunnel-backend/internal/funnel"
	"github.com/angelmondragon/pixfunnel-backend/internal/pricing"
	"github.com/angelmondragon/pixfunnel-backend/internal/sales"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/logger"
	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

const (
	attributionMaxLen = 512
	fbpCookie         = "_fbp"
	fbcCookie         = "_fbc"
)

// Storefront bundles the collaborators behind the public checkout endpoints.
type Storefront struct {
	Catalog catalog.Service
	Sales   sales.Service
	Funnel  funnel.Deps
	Logger  *logger.Logger
}

type customerForm struct {
	Name              string  `json:"name" validate:"max=200"`
	Email             string  `json:"email" validate:"max=200"`
	EmailConfirmation *string `json:"email_confirmation,omitempty" validate:"omitempty,max=200"`
	Cellphone         string  `json:"cellphone" validate:"max=40"`
	TaxID             string  `json:"tax_id" validate:"max=32"`
}

type checkoutForm struct {
	BumpIDs       []string          `json:"bump_ids" validate:"max=50,dive,max=64"`
	ShippingID    string            `json:"shipping_id" validate:"max=64"`
	PaymentMethod string            `json:"payment_method" validate:"max=16"`
	Customer      customerForm      `json:"customer"`
	Address       types.Address     `json:"address"`
	UTM           map[string]string `json:"utm,omitempty"`
	Src           string            `json:"src,omitempty"`
	FBP           string            `json:"fbp,omitempty"`
	FBC           string            `json:"fbc,omitempty"`
}

func (f checkoutForm) input(r *http.Request) funnel.Input {
	return funnel.Input{
		BumpIDs:       f.BumpIDs,
		ShippingID:    f.ShippingID,
		PaymentMethod: f.PaymentMethod,
		Customer: checkout.Customer{
			Name:              f.Customer.Name,
			Email:             f.Customer.Email,
			EmailConfirmation: f.Customer.EmailConfirmation,
			Cellphone:         f.Customer.Cellphone,
			TaxID:             f.Customer.TaxID,
		},
		Address:     f.Address,
		Attribution: f.attribution(r),
	}
}

// attribution merges the form's tracking with the request's utm_* query, src and Meta cookies.
// Query values win over the body.
func (f checkoutForm) attribution(r *http.Request) types.Attribution {
	utm := map[string]string{}
	for key, value := range f.UTM {
		name := strings.ToLower(strings.TrimSpace(key))
		if !strings.HasPrefix(name, "utm_") {
			continue
		}
		if v := validators.SanitizeString(value, attributionMaxLen); v != "" {
			utm[name] = v
		}
	}
	for key, value := range validators.UTMParams(r, attributionMaxLen) {
		utm[key] = value
	}

	src := validators.SanitizeString(r.URL.Query().Get("src"), attributionMaxLen)
	if src == "" {
		src = validators.SanitizeString(f.Src, attributionMaxLen)
	}

	return types.Attribution{
		UTM:       utm,
		Src:       src,
		FBP:       cookieOr(r, fbpCookie, f.FBP),
		FBC:       cookieOr(r, fbcCookie, f.FBC),
		UserAgent: validators.SanitizeString(r.UserAgent(), attributionMaxLen),
	}
}

func cookieOr(r *http.Request, name, fallback string) string {
	if c, err := r.Cookie(name); err == nil {
		if v := validators.SanitizeString(c.Value, attributionMaxLen); v != "" {
			return v
		}
	}
	return validators.SanitizeString(fallback, attributionMaxLen)
}

func trackedCustomer(c checkout.Customer, addr types.Address) types.Customer {
	out := types.Customer{
		Name:      strings.TrimSpace(c.Name),
		Email:     strings.TrimSpace(c.Email),
		Cellphone: strings.TrimSpace(c.Cellphone),
		TaxID:     strings.TrimSpace(c.TaxID),
	}
	if !addr.IsZero() {
		a := addr
		out.Address = &a
	}
	return out
}

// PublicOffer serves the storefront offer. A catalog that cannot be loaded renders
// as the not-configured offer instead of failing the page.
func PublicOffer(svc catalog.Service, policy pricing.Policy, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		o, err := svc.Offer(r.Context())
		if err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "offer.load.failed")
			}
			o = pricing.Offer{}
		}
		responses.WriteSuccess(w, newOfferView(o, policy))
	}
}

// PublicCEP proxies a postal code lookup.
func PublicCEP(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		result, err := svc.Lookup(r.Context(), chi.URLParam(r, "cep"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"cep":          address.FormatCEP(result.CEP),
			"street":       result.Street,
			"neighborhood": result.Neighborhood,
			"city":         result.City,
			"state":        result.State,
			"complete":     result.Complete(),
		})
	}
}

// PublicQuote prices the posted selection and records the visit against the cart key.
func PublicQuote(sf Storefront) http.HandlerFunc {
	logg := sf.Logger
	return func(w http.ResponseWriter, r *http.Request) {
		if sf.Catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var form checkoutForm
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		in := form.input(r)

		o, err := sf.Catalog.Offer(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := funnel.NewSession(r.Context(), sf.Funnel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "start session"))
			return
		}
		summary, err := sess.Quote(o, in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stage := funnel.Stage(in)
		sf.track(r, in, sess, stage)

		responses.WriteSuccess(w, quoteResponse{
			Title:          sess.Offer.Title(),
			Summary:        newSummaryView(summary),
			AllSelected:    sess.Offer.AllSelected(),
			SelectAllLabel: sess.Offer.SelectAllLabel(),
			Stage:          stage.String(),
		})
	}
}

// PublicCreatePix runs the checkout pipeline server-side and records the order.
func PublicCreatePix(sf Storefront) http.HandlerFunc {
	logg := sf.Logger
	return func(w http.ResponseWriter, r *http.Request) {
		if sf.Catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var form checkoutForm
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		in := form.input(r)

		o, err := sf.Catalog.Offer(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := funnel.NewSession(r.Context(), sf.Funnel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "start session"))
			return
		}

		result, err := sess.Submit(r.Context(), o, in)
		sf.track(r, in, sess, funnel.Stage(in))
		if err != nil {
			switch {
			case pkgerrors.Is(err, pkgerrors.CodePaymentFailed), pkgerrors.Is(err, pkgerrors.CodeDependency):
				// the buyer sees the same message the form shows
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodePaymentFailed, err, sess.Checkout.Message()))
			default:
				responses.WriteError(r.Context(), logg, w, err)
			}
			return
		}

		resp := pixResponse{
			PixCharge: result.Charge,
			Summary:   newSummaryView(sess.Offer.Summary()),
			CopyLabel: sess.Copy.Label(),
			Attempts:  result.Attempts,
		}
		if order := sf.recordOrder(r, in, result); order != "" {
			resp.OrderID = order
		}
		responses.WriteSuccess(w, resp)
	}
}

func (sf Storefront) track(r *http.Request, in funnel.Input, sess *funnel.Session, stage enums.CartStage) {
	cartKey := middleware.CartKeyFromContext(r.Context())
	if sf.Sales == nil || cartKey == "" {
		return
	}
	method := sess.Offer.Selection().PaymentMethod.String()
	err := sf.Sales.TrackCart(r.Context(), sales.CartUpdate{
		CartKey:     cartKey,
		Customer:    trackedCustomer(in.Customer, in.Address),
		Summary:     sess.Offer.Summary().Snapshot(method),
		Attribution: in.Attribution,
		Stage:       stage,
	})
	if err != nil && sf.Logger != nil {
		sf.Logger.Error(r.Context(), "cart.track.failed", err)
	}
}

// recordOrder is best effort: the charge already exists, so a storage failure is logged
// and the pix code is still returned.
func (sf Storefront) recordOrder(r *http.Request, in funnel.Input, result *checkout.Result) string {
	cartKey := middleware.CartKeyFromContext(r.Context())
	if sf.Sales == nil || cartKey == "" || result == nil {
		return ""
	}
	order, err := sf.Sales.RecordOrder(r.Context(), sales.OrderInput{
		CartKey:           cartKey,
		Customer:          result.Request.Customer,
		Summary:           result.Summary,
		Attribution:       in.Attribution,
		Pix:               result.Charge,
		UsedFallbackTaxID: result.UsedFallbackTaxID,
	})
	if err != nil {
		if sf.Logger != nil {
			sf.Logger.Error(r.Context(), "order.record.failed", err)
		}
		return ""
	}
	return order.ID.String()
}
