package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong horse", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("long enough"))
	assert.Error(t, ValidatePassword(strings.Repeat("a", 73)))
}

func TestTokenRoundTrip(t *testing.T) {
	s := NewTokenService("secret", time.Hour)
	raw, err := s.Issue(42)
	require.NoError(t, err)

	id, err := s.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	raw, err := NewTokenService("one", time.Hour).Issue(1)
	require.NoError(t, err)

	_, err = NewTokenService("two", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpires(t *testing.T) {
	s := NewTokenService("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return issued }
	raw, err := s.Issue(1)
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	_, err := NewTokenService("secret", 0).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	tok := &oauth2.Token{AccessToken: "abc", RefreshToken: "def", TokenType: "Bearer"}
	require.NoError(t, SaveToken(path, tok))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := TokenFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.AccessToken)
	assert.Equal(t, "def", got.RefreshToken)
}

func TestGmailClientMissingFiles(t *testing.T) {
	_, err := GmailClient(t.Context(), filepath.Join(t.TempDir(), "nope.json"), "token.json")
	assert.Error(t, err)
}
