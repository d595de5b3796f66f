package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// CallerInfoHeader carries an opaque, caller-supplied identity string. It is
// logged for attribution but never validated or used for authorization.
const CallerInfoHeader = "User-Info"

// callerInfoKey is the context key for the caller identity.
type callerInfoKey struct{}

// CallerInfo extracts the User-Info header, stores it in the request context
// and logs it alongside the request ID when present.
func CallerInfo(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := strings.TrimSpace(r.Header.Get(CallerInfoHeader))
			if caller == "" {
				next.ServeHTTP(w, r)
				return
			}

			log.Debug().
				Str("request_id", GetRequestID(r.Context())).
				Str("caller", caller).
				Msg("caller identified")

			ctx := context.WithValue(r.Context(), callerInfoKey{}, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCallerInfo retrieves the caller identity from the context, or "".
func GetCallerInfo(ctx context.Context) string {
	if caller, ok := ctx.Value(callerInfoKey{}).(string); ok {
		return caller
	}
	return ""
}
