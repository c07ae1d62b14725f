package httpx

import (
	"crypto/subtle"
	"net/http"

	"github.com/aussiebroadwan/invitebot/pkg/slogx"
)

type Middleware func(http.Handler) http.Handler

// Chain wraps h with mws so that the first middleware is the outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequireHeaderSecret rejects requests whose header does not carry secret.
// An empty secret disables the check.
func RequireHeaderSecret(header, secret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get(header)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				slogx.FromContext(r.Context()).Warn("rejected request with bad secret header",
					"header", header,
				)
				WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error:            "unauthorized",
					ErrorDescription: "invalid secret token",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
