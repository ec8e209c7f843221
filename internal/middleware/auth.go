package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/niangamadou888/bookish-beacon-blog/internal/model"
)

type contextKey string

const identityKey contextKey = "identity"

const (
	msgNoToken      = "Authorization denied, no token provided"
	msgInvalidToken = "Token is not valid"
)

// TokenValidator verifies a bearer token and returns the identity it carries.
type TokenValidator interface {
	Validate(token string) (model.Identity, error)
}

// JWTAuth returns middleware that validates a Bearer token from the Authorization header.
func JWTAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || token == "" {
				writeJSONError(w, http.StatusUnauthorized, msgNoToken)
				return
			}

			id, err := tokens.Validate(token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the authenticated identity from the request context.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok && id.ID != ""
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
