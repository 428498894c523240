package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kuflow/kuflow-sdk-go/internal/api/response"
)

type contextKey string

const (
	IdentityContextKey contextKey = "identity"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	JWTSecret    string
}

// Claims are carried by ENGINE_TOKEN bearer tokens.
type Claims struct {
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Identity describes the caller of a request.
type Identity struct {
	ClientID string
	// AuthenticationID is set when the caller used a bearer token.
	AuthenticationID string
	TenantID         string
}

// SignToken mints an HS256 token for an authentication.
func SignToken(secret, clientID, authenticationID, tenantID string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        authenticationID,
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Auth accepts either HTTP basic credentials matching the configured client
// or a bearer token issued by SignToken.
func Auth(cfg *AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				ctx := context.WithValue(r.Context(), IdentityContextKey, &Identity{ClientID: cfg.ClientID})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if username, password, ok := r.BasicAuth(); ok {
				if !equal(username, cfg.ClientID) || !equal(password, cfg.ClientSecret) {
					response.Error(w, http.StatusUnauthorized, "Bad credentials")
					return
				}
				ctx := context.WithValue(r.Context(), IdentityContextKey, &Identity{ClientID: username})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				w.Header().Set("WWW-Authenticate", `Basic realm="kuflow"`)
				response.Error(w, http.StatusUnauthorized, "Full authentication is required to access this resource")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				response.Error(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(cfg.JWTSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

			if err != nil || !token.Valid {
				response.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), IdentityContextKey, &Identity{
				ClientID:         claims.Subject,
				AuthenticationID: claims.ID,
				TenantID:         claims.TenantID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the caller from context
func GetIdentity(ctx context.Context) *Identity {
	identity, ok := ctx.Value(IdentityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
