package devserver

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sace/internal/guard"
	"sace/internal/model"
)

func TestTokenIssuer(t *testing.T) {
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", time.Hour)
	issuer.now = func() time.Time { return now }

	user := model.User{ID: 7, Email: "ana@uni.edu", Role: model.RoleInstructor}
	token, err := issuer.Issue(user)
	require.NoError(t, err)

	t.Run("Verify", func(t *testing.T) {
		claims, err := issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "ana@uni.edu", claims.Subject)
		assert.Equal(t, "INSTRUCTOR", claims.Role)
		assert.Equal(t, int64(7), claims.UserID)
		assert.True(t, now.Add(time.Hour).Equal(claims.ExpiresAt.Time))
	})

	t.Run("ReadableByGuard", func(t *testing.T) {
		g := guard.New(guard.WithClock(func() time.Time { return now }))
		access := g.CheckRole(token, model.RoleInstructor)
		assert.True(t, access.IsAuthenticated)
		assert.True(t, access.HasRole)
		assert.Equal(t, "ana@uni.edu", access.UserID)
	})

	t.Run("Expired", func(t *testing.T) {
		later := NewTokenIssuer("secret", time.Hour)
		later.now = func() time.Time { return now.Add(2 * time.Hour) }
		_, err := later.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenIssuer("other", time.Hour)
		other.now = issuer.now
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongAlgorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "x@uni.edu",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Verify(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := issuer.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func googleToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unverified"))
	require.NoError(t, err)
	return token
}

func TestGoogleTokenDecoder(t *testing.T) {
	ctx := context.Background()

	t.Run("Decodes", func(t *testing.T) {
		d := NewGoogleTokenDecoder("")
		id, err := d.Verify(ctx, googleToken(t, jwt.MapClaims{
			"sub": "1234", "email": "g@uni.edu", "name": "Grace Hopper", "picture": "https://img/p.png",
		}))
		require.NoError(t, err)
		assert.Equal(t, GoogleIdentity{Subject: "1234", Email: "g@uni.edu", Name: "Grace Hopper", Picture: "https://img/p.png"}, id)
	})

	t.Run("MissingEmail", func(t *testing.T) {
		_, err := NewGoogleTokenDecoder("").Verify(ctx, googleToken(t, jwt.MapClaims{"sub": "1234"}))
		assert.Error(t, err)
	})

	t.Run("Audience", func(t *testing.T) {
		d := NewGoogleTokenDecoder("client-1")
		_, err := d.Verify(ctx, googleToken(t, jwt.MapClaims{"sub": "1", "email": "g@uni.edu", "aud": "client-2"}))
		assert.Error(t, err)

		_, err = d.Verify(ctx, googleToken(t, jwt.MapClaims{"sub": "1", "email": "g@uni.edu", "aud": "client-1"}))
		assert.NoError(t, err)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := NewGoogleTokenDecoder("").Verify(ctx, "a.b")
		assert.Error(t, err)
	})
}
