package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Condfire/petadot/internal/auth"
	"github.com/Condfire/petadot/internal/domain"
)

const secret = "test-secret"

func TestIssueAndVerify(t *testing.T) {
	want := domain.Principal{ID: uuid.New(), Role: domain.RoleAdmin}

	token, err := auth.NewIssuer(secret).Issue(want, time.Hour)
	require.NoError(t, err)

	got, err := auth.NewVerifier(secret).Principal(token)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVerify_Rejects(t *testing.T) {
	id := uuid.New()
	sign := func(claims jwt.Claims, method jwt.SigningMethod, key any) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: sign(auth.Claims{Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{Subject: id.String(), ExpiresAt: future}}, jwt.SigningMethodHS256, []byte("other"))},
		{name: "expired", token: sign(auth.Claims{Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{Subject: id.String(), ExpiresAt: past}}, jwt.SigningMethodHS256, []byte(secret))},
		{name: "no expiry", token: sign(auth.Claims{Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()}}, jwt.SigningMethodHS256, []byte(secret))},
		{name: "other hmac size", token: sign(auth.Claims{Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{Subject: id.String(), ExpiresAt: future}}, jwt.SigningMethodHS512, []byte(secret))},
		{name: "subject not a uuid", token: sign(auth.Claims{Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: future}}, jwt.SigningMethodHS256, []byte(secret))},
		{name: "unknown role", token: sign(auth.Claims{Role: "root", RegisteredClaims: jwt.RegisteredClaims{Subject: id.String(), ExpiresAt: future}}, jwt.SigningMethodHS256, []byte(secret))},
	}

	v := auth.NewVerifier(secret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Principal(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestIssue_RequiresID(t *testing.T) {
	_, err := auth.NewIssuer(secret).Issue(domain.Principal{Role: domain.RoleUser}, time.Hour)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := auth.PrincipalFrom(context.Background())
	assert.False(t, ok)

	p := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}
	got, ok := auth.PrincipalFrom(auth.WithPrincipal(context.Background(), p))

	assert.True(t, ok)
	assert.Equal(t, p, got)
}
