package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/types"
)

func TestJWTVerifierRoundTrip(t *testing.T) {
	v := NewJWTVerifier("secret")
	token, err := v.GenerateToken("user-1", time.Hour)
	require.NoError(t, err)

	uid, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}

func TestJWTVerifierRejects(t *testing.T) {
	v := NewJWTVerifier("secret")
	other := NewJWTVerifier("other")

	expired, err := v.GenerateToken("user-1", -time.Minute)
	require.NoError(t, err)
	wrongKey, err := other.GenerateToken("user-1", time.Hour)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("secret"))
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "user-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":    "not-a-token",
		"expired":    expired,
		"wrong key":  wrongKey,
		"no subject": noSubject,
		"hs512":      hs512,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), token)
			assert.ErrorIs(t, err, types.ErrUnauthorized)
		})
	}
}

func TestGenerateTokenRequiresUID(t *testing.T) {
	_, err := NewJWTVerifier("secret").GenerateToken("", time.Hour)
	assert.Error(t, err)
}
