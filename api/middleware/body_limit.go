package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/angelmondragon/pixfunnel-backend/api/validators"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
)

// BodyLimit caps every request body at validators.MaxBodyBytes before any
// middleware buffers it.
func BodyLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, validators.MaxBodyBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bufferBody reads the whole body and puts a fresh reader back on r.
func bufferBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, validators.MaxBodyBytes+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body too large")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request")
	}
	if len(body) > validators.MaxBodyBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body too large")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
