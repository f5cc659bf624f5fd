package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Saadasw/BookOrderBackend/api/responses"
	pkgerrors "github.com/Saadasw/BookOrderBackend/pkg/errors"
	"github.com/Saadasw/BookOrderBackend/pkg/logger"
)

// SessionPhoneResolver maps a bearer session token to the phone number it was
// issued for. Expired tokens must resolve to nothing.
type SessionPhoneResolver interface {
	PhoneForToken(ctx context.Context, token string) (string, error)
}

// SessionAuth validates a bearer session token and seeds the request context
// with the session's phone number. The token proves phone ownership; whether
// the session was already used for PIN verification is irrelevant here.
func SessionAuth(resolver SessionPhoneResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			phone, err := resolver.PhoneForToken(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithSessionPhone(r.Context(), phone)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
