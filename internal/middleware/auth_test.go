package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/niangamadou888/bookish-beacon-blog/internal/crypto"
	"github.com/niangamadou888/bookish-beacon-blog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoIdentity(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		require.True(t, ok, "identity missing from context")
		json.NewEncoder(w).Encode(id)
	})
}

func TestJWTAuth(t *testing.T) {
	tokens := crypto.NewTokenService("test-secret", time.Hour)
	valid, err := tokens.Generate(model.Identity{ID: "u1", Name: "Ada"})
	require.NoError(t, err)
	foreign, err := crypto.NewTokenService("other-secret", time.Hour).Generate(model.Identity{ID: "u1", Name: "Ada"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantMsg: msgNoToken},
		{name: "no bearer prefix", header: valid, wantStatus: http.StatusUnauthorized, wantMsg: msgNoToken},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized, wantMsg: msgNoToken},
		{name: "empty bearer", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantMsg: msgNoToken},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantMsg: msgInvalidToken},
		{name: "foreign signature", header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized, wantMsg: msgInvalidToken},
		{name: "valid", header: "Bearer " + valid, wantStatus: http.StatusOK},
	}

	h := JWTAuth(tokens)(echoIdentity(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				var body map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tt.wantMsg, body["message"])
				return
			}
			var id model.Identity
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&id))
			assert.Equal(t, model.Identity{ID: "u1", Name: "Ada"}, id)
		})
	}
}

func TestIdentityFromContextEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := IdentityFromContext(req.Context())
	assert.False(t, ok)

	_, ok = IdentityFromContext(WithIdentity(req.Context(), model.Identity{}))
	assert.False(t, ok)
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS("*")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	assert.True(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
