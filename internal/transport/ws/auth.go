package ws

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	dErrors "verifybridge/pkg/domain-errors"
)

const hostAudience = "verifybridge-host"

// HostClaims identify an attaching host.
type HostClaims struct {
	HostID string `json:"host_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 host tokens.
type TokenVerifier struct {
	signingKey []byte
}

func NewTokenVerifier(signingKey string) *TokenVerifier {
	return &TokenVerifier{signingKey: []byte(signingKey)}
}

func (v *TokenVerifier) Verify(tokenString string) (*HostClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &HostClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	}, jwt.WithAudience(hostAudience), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "host token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid host token")
	}

	claims, ok := parsed.Claims.(*HostClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid host token claims")
	}
	return claims, nil
}

// tokenFromRequest reads a bearer token from the Authorization header, or from
// the access_token query parameter for browser hosts that cannot set headers
// on a WebSocket handshake.
func tokenFromRequest(r *http.Request) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return r.URL.Query().Get("access_token")
}
