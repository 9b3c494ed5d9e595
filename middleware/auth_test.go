package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-shop/models"
	"go-shop/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(a *Auth) http.Handler {
	return a.AuthMiddleware(a.AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(claims.Username))
	})))
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	h := protected(NewAuth(tokens))

	admin, err := tokens.Generate("1", "root", models.RoleAdmin)
	require.NoError(t, err)
	customer, err := tokens.Generate("2", "alice", models.RoleCustomer)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"customer", "Bearer " + customer, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "root", rec.Body.String())
			}
		})
	}
}
