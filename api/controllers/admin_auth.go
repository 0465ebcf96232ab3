package controllers

import (
	"net/http"

	"github.com/angelmondragon/pixfunnel-backend/api/responses"
	"github.com/angelmondragon/pixfunnel-backend/api/validators"
	"github.com/angelmondragon/pixfunnel-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/logger"
)

// AdminLogin exchanges the panel password for a bearer token.
func AdminLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
