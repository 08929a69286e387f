package crypto

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockassist/platform/internal/domain/models"
	"github.com/stockassist/platform/pkg/constants"
	"github.com/stockassist/platform/pkg/errors"
)

func testKey(t *testing.T, fill byte) *SigningKey {
	t.Helper()
	raw := make([]byte, 48)
	for i := range raw {
		raw[i] = fill + byte(i)
	}
	key, err := LoadSigningKey(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	return key
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func stripBearer(t *testing.T, token string) string {
	t.Helper()
	require.True(t, strings.HasPrefix(token, constants.BearerPrefix))
	return strings.TrimPrefix(token, constants.BearerPrefix)
}

func TestJWTCodec_AccessTokenRoundTrip(t *testing.T) {
	codec := NewJWTCodec(testKey(t, 1))

	tests := []struct {
		name     string
		identity models.Principal
	}{
		{"single authority", models.Principal{Username: "alice", Authorities: []string{"ROLE_USER"}}},
		{"several authorities", models.Principal{Username: "bob", Authorities: []string{"ROLE_USER", "ROLE_ADMIN", "REPORT_WRITE"}}},
		{"no authorities", models.Principal{Username: "carol", Authorities: []string{}}},
		{"unicode username", models.Principal{Username: "김철수", Authorities: []string{"ROLE_USER"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issued, err := codec.CreateAccessToken(tt.identity)
			require.NoError(t, err)

			claims, err := codec.ParseAndValidate(stripBearer(t, issued.Token))
			require.NoError(t, err)

			assert.Equal(t, tt.identity.Username, claims.Username)
			assert.Equal(t, tt.identity.Authorities, claims.Authorities)
			assert.Equal(t, constants.AccessTokenSubject, claims.Subject)
			assert.True(t, claims.IsAccessToken())
			assert.True(t, issued.Claims.ExpiresAt.Equal(claims.ExpiresAt))
			assert.Equal(t, constants.AccessTokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt))
			assert.False(t, codec.IsExpired(claims))
		})
	}
}

func TestJWTCodec_AccessTokenClaimsOnTheWire(t *testing.T) {
	key := testKey(t, 1)
	codec := NewJWTCodec(key)

	issued, err := codec.CreateAccessToken(models.Principal{Username: "alice", Authorities: []string{"ROLE_USER", "ROLE_ADMIN"}})
	require.NoError(t, err)

	parsed, err := jwt.Parse(stripBearer(t, issued.Token), func(token *jwt.Token) (interface{}, error) {
		return key.Bytes(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "HS256", parsed.Method.Alg())

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, "ROLE_USER,ROLE_ADMIN", claims["authorities"])
	assert.Equal(t, "AccessToken", claims["sub"])
	assert.Contains(t, claims, "iat")
	assert.Contains(t, claims, "exp")
}

func TestJWTCodec_RefreshToken(t *testing.T) {
	codec := NewJWTCodec(testKey(t, 1))

	issued, err := codec.CreateRefreshToken()
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(issued.Token, constants.BearerPrefix))

	claims, err := codec.ParseAndValidate(issued.Token)
	require.NoError(t, err)
	assert.Empty(t, claims.Username)
	assert.Empty(t, claims.Authorities)
	assert.Empty(t, claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.IsRefreshToken())
	assert.Equal(t, constants.RefreshTokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt))

	other, err := codec.CreateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, other.Claims.ID)
}

func TestJWTCodec_ParseAndValidate_Failures(t *testing.T) {
	key := testKey(t, 1)
	codec := NewJWTCodec(key)
	past := NewJWTCodec(key, WithClock(fixedClock(time.Now().Add(-2*time.Hour))))
	foreign := NewJWTCodec(testKey(t, 100))

	expired, err := past.CreateAccessToken(models.Principal{Username: "alice"})
	require.NoError(t, err)
	expiredRefresh, err := NewJWTCodec(key, WithClock(fixedClock(time.Now().Add(-8*24*time.Hour)))).CreateRefreshToken()
	require.NoError(t, err)
	foreignToken, err := foreign.CreateAccessToken(models.Principal{Username: "alice"})
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString(key.Bytes())
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "alice",
	}).SignedString(key.Bytes())
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty token", "", errors.ErrMalformedToken},
		{"not a jwt", "invalid.token.string", errors.ErrMalformedToken},
		{"two segments", "abc.def", errors.ErrMalformedToken},
		{"still prefixed", "Bearer " + stripBearer(t, expired.Token), errors.ErrMalformedToken},
		{"expired access token", stripBearer(t, expired.Token), errors.ErrTokenExpired},
		{"expired refresh token", expiredRefresh.Token, errors.ErrTokenExpired},
		{"signed with another key", stripBearer(t, foreignToken.Token), errors.ErrInvalidToken},
		{"unexpected algorithm", hs512, errors.ErrInvalidToken},
		{"alg none", unsigned, errors.ErrInvalidToken},
		{"missing exp", noExp, errors.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.ParseAndValidate(tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.IsTokenError(err))
		})
	}
}

func TestJWTCodec_TamperedToken(t *testing.T) {
	codec := NewJWTCodec(testKey(t, 1))
	issued, err := codec.CreateAccessToken(models.Principal{Username: "alice", Authorities: []string{"ROLE_USER"}})
	require.NoError(t, err)
	token := stripBearer(t, issued.Token)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	flip := func(s string, i int) string {
		b := []byte(s)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		return string(b)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"payload byte", parts[0] + "." + flip(parts[1], len(parts[1])/2) + "." + parts[2]},
		{"header byte", flip(parts[0], 2) + "." + parts[1] + "." + parts[2]},
		{"signature byte", parts[0] + "." + parts[1] + "." + flip(parts[2], 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotEqual(t, token, tt.token)
			_, err := codec.ParseAndValidate(tt.token)
			require.Error(t, err)
			assert.True(t, errors.IsTokenError(err))
		})
	}
}

func TestJWTCodec_ExpiryBoundary(t *testing.T) {
	key := testKey(t, 1)
	issuedAt := time.Now().Truncate(time.Second)

	issued, err := NewJWTCodec(key, WithClock(fixedClock(issuedAt))).CreateAccessToken(models.Principal{Username: "alice"})
	require.NoError(t, err)
	token := stripBearer(t, issued.Token)
	expiresAt := issuedAt.Add(constants.AccessTokenTTL)

	justBefore := NewJWTCodec(key, WithClock(fixedClock(expiresAt.Add(-time.Second))))
	claims, err := justBefore.ParseAndValidate(token)
	require.NoError(t, err)
	assert.False(t, justBefore.IsExpired(claims))

	atExpiry := NewJWTCodec(key, WithClock(fixedClock(expiresAt)))
	_, err = atExpiry.ParseAndValidate(token)
	assert.ErrorIs(t, err, errors.ErrTokenExpired)
	assert.True(t, atExpiry.IsExpired(claims))
}
