package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pixfunnel-backend/pkg/logger"
)

const (
	// CartKeyHeader lets the storefront pin a visit to a cart explicitly.
	CartKeyHeader = "X-Cart-Key"
	// CartKeyCookie carries the cart key between storefront requests.
	CartKeyCookie = "pf_cart"

	cartKeyMaxLen    = 64
	cartCookieMaxAge = 30 * 24 * time.Hour
)

// CartKey resolves the visitor's cart key from the header or cookie, minting one when
// absent, and echoes it back so the storefront can reuse it.
func CartKey(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cartKeyFromRequest(r)
			if key == "" {
				key = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CartKeyCookie,
					Value:    key,
					Path:     "/",
					MaxAge:   int(cartCookieMaxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(CartKeyHeader, key)

			ctx := WithCartKey(r.Context(), key)
			if logg != nil {
				ctx = logg.WithCartKey(ctx, key)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func cartKeyFromRequest(r *http.Request) string {
	if key := sanitizeCartKey(r.Header.Get(CartKeyHeader)); key != "" {
		return key
	}
	if cookie, err := r.Cookie(CartKeyCookie); err == nil {
		return sanitizeCartKey(cookie.Value)
	}
	return ""
}

func sanitizeCartKey(raw string) string {
	return sanitizeToken(raw, cartKeyMaxLen)
}

// sanitizeToken returns raw trimmed when it is at most maxLen of [A-Za-z0-9-_], else "".
func sanitizeToken(raw string, maxLen int) string {
	key := strings.TrimSpace(raw)
	if key == "" || len(key) > maxLen {
		return ""
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ""
		}
	}
	return key
}
