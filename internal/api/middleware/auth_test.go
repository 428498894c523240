package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

func testAuthConfig() *AuthConfig {
	return &AuthConfig{
		Enabled:      true,
		ClientID:     "app",
		ClientSecret: "secret",
		JWTSecret:    "jwt-secret",
	}
}

// identityHandler answers 200 and captures the identity seen by the handler.
func identityHandler(seen **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_Disabled(t *testing.T) {
	cfg := &AuthConfig{Enabled: false, ClientID: "app"}

	var seen *Identity
	handler := Auth(cfg)(identityHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "app", seen.ClientID)
}

func TestAuth_ValidBasicCredentials(t *testing.T) {
	var seen *Identity
	handler := Auth(testAuthConfig())(identityHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("app", "secret")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "app", seen.ClientID)
	assert.Empty(t, seen.AuthenticationID)
}

func TestAuth_InvalidBasicCredentials(t *testing.T) {
	var seen *Identity
	handler := Auth(testAuthConfig())(identityHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("app", "wrong")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, seen)

	var payload client.DefaultError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, http.StatusUnauthorized, payload.Status)
	assert.Equal(t, "Bad credentials", payload.Message)
}

func TestAuth_MissingAuthorization(t *testing.T) {
	var seen *Identity
	handler := Auth(testAuthConfig())(identityHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
}

func TestAuth_InvalidHeaderFormat(t *testing.T) {
	var seen *Identity
	handler := Auth(testAuthConfig())(identityHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ValidBearerToken(t *testing.T) {
	cfg := testAuthConfig()

	token, expiresAt, err := SignToken(cfg.JWTSecret, "app", "auth-1", "tenant-1", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	var seen *Identity
	handler := Auth(cfg)(identityHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "app", seen.ClientID)
	assert.Equal(t, "auth-1", seen.AuthenticationID)
	assert.Equal(t, "tenant-1", seen.TenantID)
}

func TestAuth_ExpiredToken(t *testing.T) {
	cfg := testAuthConfig()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "app",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	var seen *Identity
	handler := Auth(cfg)(identityHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, seen)
}

func TestAuth_TokenSignedWithOtherSecret(t *testing.T) {
	token, _, err := SignToken("another-secret", "app", "auth-1", "", time.Hour)
	require.NoError(t, err)

	var seen *Identity
	handler := Auth(testAuthConfig())(identityHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetIdentity_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, GetIdentity(req.Context()))
}
