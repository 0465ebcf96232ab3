package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/pixfunnel-backend/api/responses"
	"github.com/angelmondragon/pixfunnel-backend/api/validators"
	"github.com/angelmondragon/pixfunnel-backend/internal/sales"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/logger"
	"github.com/angelmondragon/pixfunnel-backend/pkg/pagination"
)

const (
	defaultTimelineDays = 30
	maxTimelineDays     = 180
	maxPageLimit        = 200
)

// pageParams reads ?limit= and ?cursor=; a missing limit leaves the page size to the service.
func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, maxPageLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Limit: limit, Cursor: strings.TrimSpace(r.URL.Query().Get("cursor"))}, nil
}

func salesUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
}

// AdminListCarts returns a page of carts, most recently seen first, with their stats.
func AdminListCarts(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			salesUnavailable(w, r, logg)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListCarts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminGetCart(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			salesUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cart, err := svc.GetCart(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// AdminListOrders returns a page of orders, newest first, with their stats.
func AdminListOrders(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			salesUnavailable(w, r, logg)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListOrders(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminAnalyticsSummary(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			salesUnavailable(w, r, logg)
			return
		}
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// AdminAnalyticsTimeline buckets activity per day; ?days= defaults to 30.
func AdminAnalyticsTimeline(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			salesUnavailable(w, r, logg)
			return
		}
		days, err := validators.ParseQueryInt(r, "days", defaultTimelineDays, 1, maxTimelineDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		points, err := svc.Timeline(r.Context(), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"days": days, "points": points})
	}
}
