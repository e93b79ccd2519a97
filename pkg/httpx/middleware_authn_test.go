package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ithesk/qraxer/pkg/httpx"
	"github.com/ithesk/qraxer/pkg/jwtx"
)

func TestAuthnMiddleware(t *testing.T) {
	secret := []byte(strings.Repeat("s", jwtx.MinSecretLength))
	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	verifier := jwtx.NewVerifierHS256(secret, "qraxer", 0)

	now := time.Now().UTC()
	valid, err := signer.Sign(jwtx.NewAccessClaims("7", "tech", "Tech", "qraxer", time.Hour, now))
	require.NoError(t, err)
	expired, err := signer.Sign(jwtx.NewAccessClaims("7", "tech", "Tech", "qraxer", time.Minute, now.Add(-time.Hour)))
	require.NoError(t, err)
	noSubject, err := signer.Sign(jwtx.NewAccessClaims("", "tech", "Tech", "qraxer", time.Hour, now))
	require.NoError(t, err)

	var gotUser string
	var gotClaims jwtx.Claims
	h := httpx.AuthnMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httpx.UserID(r.Context())
		gotClaims, _ = httpx.ClaimsFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
		desc   string
	}{
		{"valid token", "Bearer " + valid, http.StatusNoContent, ""},
		{"missing header", "", http.StatusUnauthorized, "missing bearer token"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "missing bearer token"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "token expired"},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, "token verification failed"},
		{"no subject", "Bearer " + noSubject, http.StatusUnauthorized, "token has no subject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusUnauthorized {
				require.Equal(t, "7", gotUser)
				require.Equal(t, "tech", gotClaims.Username)
				return
			}

			require.Empty(t, gotUser)
			require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
			var body httpx.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			require.Equal(t, "invalid_token", body.Error)
			require.Equal(t, tt.desc, body.ErrorDescription)
		})
	}
}
