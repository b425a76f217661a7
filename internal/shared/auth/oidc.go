package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// IDToken is the part of *oidc.IDToken the verifier needs.
type IDToken interface {
	Claims(v interface{}) error
}

type idTokenVerifier interface {
	Verify(ctx context.Context, raw string) (IDToken, error)
}

type providerVerifier struct {
	v *oidc.IDTokenVerifier
}

func (p providerVerifier) Verify(ctx context.Context, raw string) (IDToken, error) {
	tok, err := p.v.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// OIDCVerifier resolves identities from ID tokens issued by an external
// OpenID Connect provider.
type OIDCVerifier struct {
	verifier idTokenVerifier
}

type oidcClaims struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Name       string `json:"name"`
	Picture    string `json:"picture"`
}

// NewOIDCVerifier discovers the provider at issuer.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}
	return &OIDCVerifier{
		verifier: providerVerifier{v: provider.Verifier(&oidc.Config{ClientID: clientID})},
	}, nil
}

// Verify implements Verifier.
func (o *OIDCVerifier) Verify(ctx context.Context, rawToken string) (Identity, error) {
	tok, err := o.verifier.Verify(ctx, rawToken)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	var c oidcClaims
	if err := tok.Claims(&c); err != nil || c.Sub == "" {
		return Identity{}, ErrInvalidToken
	}
	given, family := c.GivenName, c.FamilyName
	if given == "" && family == "" {
		given, family = splitName(c.Name)
	}
	return Identity{
		ID:         c.Sub,
		GivenName:  given,
		FamilyName: family,
		Email:      c.Email,
		Picture:    c.Picture,
	}, nil
}
