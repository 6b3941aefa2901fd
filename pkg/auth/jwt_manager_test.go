package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.Generate("user-1")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	other := NewJWTManager("other", time.Hour)

	token, err := other.Generate("user-1")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Error(t, err)
}

func TestExpiry(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.Generate("user-1")
	require.NoError(t, err)

	exp, err := m.Expiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)
}

func TestExtractTokenFromHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer abc")

	token, err := ExtractTokenFromHeader(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	r.Header.Set("Authorization", "abc")
	_, err = ExtractTokenFromHeader(r)
	assert.Error(t, err)
}

func TestExtractTokenFromRequestPrefersQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws?access_token=query-token", nil)
	r.Header.Set("Authorization", "Bearer header-token")

	token, err := ExtractTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "query-token", token)

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	token, err = ExtractTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "header-token", token)

	r = httptest.NewRequest("GET", "/ws", nil)
	_, err = ExtractTokenFromRequest(r)
	assert.Error(t, err)
}
