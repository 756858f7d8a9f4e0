// Package auth turns bearer tokens into domain principals. Login and session
// management live elsewhere; this package only issues and verifies the
// HS256 tokens that carry a principal id and role.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Condfire/petadot/internal/domain"
)

// ErrInvalidToken is returned for any token that fails signature, expiry, or
// claim checks. Callers map it to domain.ErrUnauthenticated.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload: the principal id in sub plus its role.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates tokens signed with a shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier constructs a Verifier for secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Principal parses token and returns the principal it names.
func (v *Verifier) Principal(token string) (domain.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return domain.Principal{}, fmt.Errorf("auth.Verifier.Principal: %w", ErrInvalidToken)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return domain.Principal{}, fmt.Errorf("auth.Verifier.Principal: %w: bad subject", ErrInvalidToken)
	}
	switch claims.Role {
	case domain.RoleUser, domain.RoleAdmin:
	default:
		return domain.Principal{}, fmt.Errorf("auth.Verifier.Principal: %w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	return domain.Principal{ID: id, Role: claims.Role}, nil
}

// Issuer signs tokens with the same shared secret. It backs the slugctl
// token command and tests.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer constructs an Issuer for secret.
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), now: time.Now}
}

// Issue returns a signed token for p that expires after ttl.
func (i *Issuer) Issue(p domain.Principal, ttl time.Duration) (string, error) {
	if p.ID == uuid.Nil {
		return "", fmt.Errorf("auth.Issuer.Issue: %w: principal id is required", domain.ErrValidation)
	}
	now := i.now()
	claims := Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Issuer.Issue: %w", err)
	}
	return signed, nil
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}
