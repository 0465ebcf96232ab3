package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/pixfunnel-backend/api/responses"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/logger"
)

const submitLockScope = "create_pix"

type lockStore interface {
	LockKey(scope, id string) string
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// SubmitLock lets one charge creation run per cart key at a time across instances.
// Requests without a cart key pass through.
func SubmitLock(store lockStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || ttl <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			cartKey := CartKeyFromContext(ctx)
			if cartKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := store.LockKey(submitLockScope, cartKey)
			token, ok, err := store.AcquireLock(ctx, key, ttl)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire submit lock"))
				return
			}
			if !ok {
				if logg != nil {
					logg.Warn(ctx, "checkout.submit.locked")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "submission already in progress"))
				return
			}
			defer func() {
				// the request context may already be canceled
				if err := store.ReleaseLock(context.WithoutCancel(ctx), key, token); err != nil {
					logError(ctx, logg, "release submit lock", err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
