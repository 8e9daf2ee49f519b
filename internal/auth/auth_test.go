package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(a *Authenticator, guard func(http.HandlerFunc) http.HandlerFunc) http.Handler {
	return a.Middleware(guard(func(w http.ResponseWriter, r *http.Request) {
		p, _ := FromContext(r.Context())
		w.Write([]byte(p.UserID))
	}))
}

func TestRequireAdmin(t *testing.T) {
	a := NewAuthenticator("secret")
	adminToken, err := a.Issue(Principal{UserID: "u-admin", Role: RoleAdmin}, time.Hour)
	require.NoError(t, err)
	customerToken, err := a.Issue(Principal{UserID: "u-1", Email: "a@b.c"}, time.Hour)
	require.NoError(t, err)
	expired, err := a.Issue(Principal{UserID: "u-1", Role: RoleAdmin}, -time.Minute)
	require.NoError(t, err)
	foreign, err := NewAuthenticator("other").Issue(Principal{UserID: "u-1", Role: RoleAdmin}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "admin", header: "Bearer " + adminToken, wantCode: http.StatusOK},
		{name: "customer", header: "Bearer " + customerToken, wantCode: http.StatusForbidden},
		{name: "anonymous", header: "", wantCode: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantCode: http.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + foreign, wantCode: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", wantCode: http.StatusUnauthorized},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if testCase.header != "" {
				req.Header.Set("Authorization", testCase.header)
			}
			recorder := httptest.NewRecorder()
			protected(a, RequireAdmin).ServeHTTP(recorder, req)
			assert.Equal(t, testCase.wantCode, recorder.Code)
		})
	}
}

func TestRequireUser_DefaultsRoleToCustomer(t *testing.T) {
	a := NewAuthenticator("secret")
	token, err := a.Issue(Principal{UserID: "u-7", Email: "x@y.z", Name: "Abebe"}, time.Hour)
	require.NoError(t, err)

	p, err := a.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, p.Role)
	assert.Equal(t, "Abebe", p.Name)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	protected(a, RequireUser).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "u-7", recorder.Body.String())
}

func TestEmptySecretVerifiesNothing(t *testing.T) {
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role:             RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "intruder", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("changeme"))
	require.NoError(t, err)

	for _, secret := range []string{"", "changeme-is-not-ours"} {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		rec := httptest.NewRecorder()
		protected(NewAuthenticator(secret), RequireAdmin).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "secret %q", secret)
	}
}
