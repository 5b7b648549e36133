package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	p := NewProvider("secret-a", time.Hour)

	token, err := p.Sign(42)
	require.NoError(t, err)

	userID, err := p.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := NewProvider("secret-a", time.Hour).Sign(42)
	require.NoError(t, err)

	_, err = NewProvider("secret-b", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	p := NewProvider("secret-a", time.Hour)

	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := p.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestParse_Expired(t *testing.T) {
	p := NewProvider("secret-a", -time.Minute)

	token, err := p.Sign(42)
	require.NoError(t, err)

	_, err = p.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
