package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("secret", 10*time.Hour)
	issued := time.Date(2024, 5, 1, 8, 30, 15, 500, time.UTC)
	svc.SetClock(fixedClock(issued))

	token, claims, err := svc.Issue("budi@example.com", "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, issued.Truncate(time.Second), claims.IssuedAt)
	assert.Equal(t, claims.IssuedAt.Add(10*time.Hour), claims.ExpiresAt)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", got.Email)
	assert.Equal(t, "user-1", got.UserID)
	assert.True(t, got.ExpiresAt.Equal(claims.ExpiresAt))
	assert.Equal(t, 10*time.Hour, got.ExpiresAt.Sub(got.IssuedAt))
}

func TestTokenService_EmbedsEmailAndUserClaims(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, _, err := svc.Issue("siti@example.com", "user-2")
	require.NoError(t, err)

	parsed := jwtv5.MapClaims{}
	_, _, err = jwtv5.NewParser().ParseUnverified(token, parsed)
	require.NoError(t, err)

	assert.Equal(t, "siti@example.com", parsed["email"])
	assert.Equal(t, "user-2", parsed["user"])
	assert.Contains(t, parsed, "iat")
	assert.Contains(t, parsed, "exp")
}

func TestTokenService_Verify_Missing(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	_, err := svc.Verify("")
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestTokenService_Verify_Expired(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	issued := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.SetClock(fixedClock(issued))

	token, _, err := svc.Issue("budi@example.com", "user-1")
	require.NoError(t, err)

	svc.SetClock(fixedClock(issued.Add(time.Hour + time.Second)))
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_Verify_WrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, _, err := issuer.Issue("budi@example.com", "user-1")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Verify_Malformed(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	_, err := svc.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Verify_RejectsOtherAlgorithms(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS512, jwtv5.MapClaims{
		"email": "budi@example.com",
		"user":  "user-1",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Verify_RequiresExpiration(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"email": "budi@example.com",
		"user":  "user-1",
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.True(t, errors.Is(err, ErrTokenInvalid))
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := NewBcryptHasher(4)

	hash, err := h.Hash("rahasia123")
	require.NoError(t, err)
	assert.NotEqual(t, "rahasia123", hash)

	ok, err := h.Compare(hash, "rahasia123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "salah")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	h := NewBcryptHasher(99)
	assert.Equal(t, 10, h.cost)
}

func TestBcryptHasher_Compare_MalformedHash(t *testing.T) {
	h := NewBcryptHasher(4)

	ok, err := h.Compare("not-a-bcrypt-hash", "password")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestBcryptHasher_MultibyteLimitIsBytes(t *testing.T) {
	h := NewBcryptHasher(4)

	_, err := h.Hash(strings.Repeat("é", 36))
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("é", 40))
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}
