package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTokenService() *TokenService {
	return &TokenService{
		JWTSecret:     []byte("test_jwt_secret"),
		RefreshSecret: []byte("test_refresh_secret"),
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	ts := newTokenService()

	raw, err := ts.SignAccessToken("jon_doe")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := ts.ParseAccessToken(raw)
	require.NoError(t, err)
	require.Equal(t, "jon_doe", claims.Subject)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	ts := newTokenService()

	raw, err := ts.SignRefreshToken("jon_doe")
	require.NoError(t, err)

	claims, err := ts.ParseRefreshToken(raw)
	require.NoError(t, err)
	require.Equal(t, "jon_doe", claims.Subject)
	require.Equal(t, "refresh", claims.Typ)
	require.NotEmpty(t, claims.ID)
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	ts := newTokenService()

	access, err := ts.SignAccessToken("jon_doe")
	require.NoError(t, err)

	_, err = ts.ParseRefreshToken(access)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	ts := newTokenService()

	refresh, err := ts.SignRefreshToken("jon_doe")
	require.NoError(t, err)

	_, err = ts.ParseAccessToken(refresh)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	ts := newTokenService()
	other := &TokenService{
		JWTSecret:     []byte("other_secret"),
		RefreshSecret: []byte("other_refresh"),
	}

	access, err := ts.SignAccessToken("jon_doe")
	require.NoError(t, err)

	_, err = other.ParseAccessToken(access)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageToken(t *testing.T) {
	ts := newTokenService()

	_, err := ts.ParseAccessToken("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = ts.ParseRefreshToken("")
	require.ErrorIs(t, err, ErrInvalidToken)
}
