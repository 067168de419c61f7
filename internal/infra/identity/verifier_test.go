//go:build !integration

package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/config"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/logging"
)

const testSecret = "id-secret"

func newTestVerifier(dev bool) *Verifier {
	v := NewVerifier(config.AuthConfig{
		IdentitySecret:   testSecret,
		IdentityIssuer:   "https://auth.example",
		IdentityAudience: "betiq",
	}, dev, logging.Nop())
	v.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return v
}

func sign(t *testing.T, claims IDClaims, secret string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func validClaims() IDClaims {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return IDClaims{
		Email: "Fan@Example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://auth.example",
			Audience:  jwt.ClaimStrings{"betiq"},
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestVerifier_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token yields lower-cased email", func(t *testing.T) {
		sub, err := newTestVerifier(false).Verify(ctx, sign(t, validClaims(), testSecret))
		require.NoError(t, err)
		assert.Equal(t, "fan@example.com", sub)
	})

	t.Run("rejections", func(t *testing.T) {
		expired := validClaims()
		expired.ExpiresAt = jwt.NewNumericDate(time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC))
		wrongIss := validClaims()
		wrongIss.Issuer = "https://evil.example"
		wrongAud := validClaims()
		wrongAud.Audience = jwt.ClaimStrings{"other"}
		noEmail := validClaims()
		noEmail.Email = ""
		unverified := validClaims()
		f := false
		unverified.EmailVerified = &f

		cases := map[string]string{
			"empty":        "",
			"garbage":      "not-a-token",
			"bad secret":   sign(t, validClaims(), "other-secret"),
			"expired":      sign(t, expired, testSecret),
			"wrong issuer": sign(t, wrongIss, testSecret),
			"wrong aud":    sign(t, wrongAud, testSecret),
			"no email":     sign(t, noEmail, testSecret),
			"unverified":   sign(t, unverified, testSecret),
			"plain email":  "fan@example.com",
		}
		v := newTestVerifier(false)
		for name, tok := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := v.Verify(ctx, tok)
				assert.ErrorIs(t, err, domain.ErrUnauthenticated)
			})
		}
	})

	t.Run("dev mode accepts a bare email", func(t *testing.T) {
		sub, err := newTestVerifier(true).Verify(ctx, " Dev@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, "dev@example.com", sub)
	})

	t.Run("dev mode still verifies real tokens", func(t *testing.T) {
		_, err := newTestVerifier(true).Verify(ctx, sign(t, validClaims(), "other-secret"))
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}
