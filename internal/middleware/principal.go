package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Condfire/petadot/internal/auth"
	"github.com/Condfire/petadot/internal/domain"
)

// TokenVerifier resolves a bearer token to a principal.
type TokenVerifier interface {
	Principal(token string) (domain.Principal, error)
}

// NewPrincipalHandler reads an optional "Authorization: Bearer" header and
// stores the principal it names in the request context. Requests without the
// header continue anonymously; a header with a bad token is rejected with 401
// so a client never silently loses its identity.
func NewPrincipalHandler(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "malformed authorization header")
				return
			}

			p, err := v.Principal(strings.TrimSpace(token))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

// writeError writes the API's standard error envelope. Handlers have their
// own copy; middleware cannot import the handler package.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
