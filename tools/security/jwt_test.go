package security

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))
	id := Identity{Subject: "idp|alice", Handle: "alice", AvatarURL: "http://a/1.png"}

	token, hash, exp, err := Generate(opts, id)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, HashToken(token), hash)
	assert.True(t, exp.After(time.Now()))

	got, err := Verify(opts, token)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, _, err := Generate(DefaultOptions([]byte("secret-a")), Identity{Subject: "s"})
	require.NoError(t, err)

	_, err = Verify(DefaultOptions([]byte("secret-b")), token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	opts := DefaultOptions([]byte("s3"))
	claims := jwtlib.MapClaims{
		"sub": "s",
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(opts.Secret)
	require.NoError(t, err)

	_, err = Verify(opts, token)
	assert.Error(t, err)
}

func TestGenerateRejectsUnknownAlg(t *testing.T) {
	opts := DefaultOptions([]byte("s"))
	opts.Alg = "RS256"
	_, _, _, err := Generate(opts, Identity{Subject: "s"})
	assert.Error(t, err)
}
