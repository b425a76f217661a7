package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

var errMissingSecret = errors.New("jwt secret not configured")

// Claims is the payload of locally issued tokens.
type Claims struct {
	Email      string `json:"email,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Name       string `json:"name,omitempty"`
	Picture    string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies and issues HS256 tokens.
type JWTVerifier struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTVerifier builds a JWTVerifier. An empty secret falls back to
// "dev-secret" outside production and is an error in production.
func NewJWTVerifier(secret, env string) (*JWTVerifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		if env == "production" {
			return nil, fmt.Errorf("%w: JWT_SECRET required in production", errMissingSecret)
		}
		secret = "dev-secret"
	}
	return &JWTVerifier{secret: []byte(secret), ttl: defaultTokenTTL, now: time.Now}, nil
}

// SignToken signs an access token for id.
func (v *JWTVerifier) SignToken(id Identity) (string, error) {
	if strings.TrimSpace(id.ID) == "" {
		return "", errors.New("sub is required")
	}
	now := v.now().UTC()
	claims := Claims{
		Email:      id.Email,
		GivenName:  id.GivenName,
		FamilyName: id.FamilyName,
		Name:       id.DisplayName(),
		Picture:    id.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify implements Verifier.
func (v *JWTVerifier) Verify(_ context.Context, rawToken string) (Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	given, family := claims.GivenName, claims.FamilyName
	if given == "" && family == "" {
		given, family = splitName(claims.Name)
	}
	return Identity{
		ID:         claims.Subject,
		GivenName:  given,
		FamilyName: family,
		Email:      claims.Email,
		Picture:    claims.Picture,
	}, nil
}
