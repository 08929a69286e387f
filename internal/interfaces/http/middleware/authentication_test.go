package middleware

import (
	"encoding/base64"
	goerrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockassist/platform/internal/domain/models"
	repomocks "github.com/stockassist/platform/internal/domain/repository/mocks"
	"github.com/stockassist/platform/internal/domain/service"
	"github.com/stockassist/platform/internal/infrastructure/crypto"
	"github.com/stockassist/platform/pkg/constants"
	"github.com/stockassist/platform/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type filterFixture struct {
	codec  *crypto.JWTCodec
	key    *crypto.SigningKey
	users  *repomocks.MockUserRepository
	engine *gin.Engine

	reached   bool
	principal *models.Principal
}

func newFilterFixture(t *testing.T, whitelist []models.WhitelistEntry) *filterFixture {
	t.Helper()
	key, err := crypto.LoadSigningKey(base64.StdEncoding.EncodeToString([]byte("an-hs256-secret-that-is-long-enough!!")))
	require.NoError(t, err)

	f := &filterFixture{
		key:   key,
		codec: crypto.NewJWTCodec(key),
		users: new(repomocks.MockUserRepository),
	}

	log := logger.NewNoopLogger()
	resolver := service.NewPrincipalResolver(f.codec, f.users, nil, log)

	f.engine = gin.New()
	f.engine.Use(Authenticate(service.NewWhitelistMatcher(whitelist), resolver, nil, log))
	f.engine.Any("/*path", func(c *gin.Context) {
		f.reached = true
		if p, ok := GetPrincipal(c); ok {
			f.principal = &p
		}
		c.Status(http.StatusOK)
	})
	return f
}

func (f *filterFixture) do(method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set(constants.HeaderAuthorization, authorization)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *filterFixture) accessToken(t *testing.T, codec *crypto.JWTCodec, username string, authorities ...string) string {
	t.Helper()
	issued, err := codec.CreateAccessToken(models.Principal{Username: username, Authorities: authorities})
	require.NoError(t, err)
	return issued.Token
}

func TestAuthenticate_ValidTokenInstallsPrincipal(t *testing.T) {
	f := newFilterFixture(t, nil)
	f.users.On("FindWithProfileByUsername", mock.Anything, "alice").
		Return(&models.User{Username: "alice", AuthorityList: "ROLE_USER,ROLE_ANALYST"}, nil)

	token := f.accessToken(t, f.codec, "alice", "ROLE_USER", "ROLE_ANALYST")
	w := f.do(http.MethodGet, "/api/reports/42", token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.reached)
	require.NotNil(t, f.principal)
	assert.Equal(t, "alice", f.principal.Username)
	assert.Equal(t, []string{"ROLE_USER", "ROLE_ANALYST"}, f.principal.Authorities)
	f.users.AssertExpectations(t)
}

func TestAuthenticate_ExpiredTokenContinuesAnonymously(t *testing.T) {
	f := newFilterFixture(t, nil)
	past := crypto.NewJWTCodec(f.key, crypto.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }))

	w := f.do(http.MethodGet, "/api/reports/42", f.accessToken(t, past, "alice", "ROLE_USER"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.reached)
	assert.Nil(t, f.principal)
	f.users.AssertNotCalled(t, "FindWithProfileByUsername", mock.Anything, mock.Anything)
}

func TestAuthenticate_TamperedTokenContinuesAnonymously(t *testing.T) {
	f := newFilterFixture(t, nil)
	token := []byte(f.accessToken(t, f.codec, "alice", "ROLE_USER"))
	// flip a character inside the payload
	i := len(constants.BearerPrefix) + 40
	if token[i] == 'A' {
		token[i] = 'B'
	} else {
		token[i] = 'A'
	}

	w := f.do(http.MethodGet, "/api/reports/42", string(token))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.reached)
	assert.Nil(t, f.principal)
	f.users.AssertNotCalled(t, "FindWithProfileByUsername", mock.Anything, mock.Anything)
}

func TestAuthenticate_WrongSchemeIsAnonymous(t *testing.T) {
	f := newFilterFixture(t, nil)
	token := f.accessToken(t, f.codec, "alice")

	w := f.do(http.MethodGet, "/api/reports/42", "Token "+token[len(constants.BearerPrefix):])

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, f.principal)
}

func TestAuthenticate_UnknownUserIsAnonymous(t *testing.T) {
	f := newFilterFixture(t, nil)
	f.users.On("FindWithProfileByUsername", mock.Anything, "ghost").Return(nil, nil)

	w := f.do(http.MethodGet, "/api/reports/42", f.accessToken(t, f.codec, "ghost", "ROLE_USER"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.reached)
	assert.Nil(t, f.principal)
}

func TestAuthenticate_WhitelistedRequestSkipsLookup(t *testing.T) {
	f := newFilterFixture(t, []models.WhitelistEntry{
		{Method: "GET", Pattern: "/"},
		{Method: "GET", Pattern: "/api/reports"},
	})

	w := f.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.reached)
	assert.Nil(t, f.principal)

	// even a valid token is ignored on a whitelisted route
	f.reached = false
	w = f.do(http.MethodGet, "/api/reports", f.accessToken(t, f.codec, "alice", "ROLE_USER"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.reached)
	assert.Nil(t, f.principal)

	f.users.AssertNotCalled(t, "FindWithProfileByUsername", mock.Anything, mock.Anything)
}

func TestAuthenticate_WhitelistIsMethodSpecific(t *testing.T) {
	f := newFilterFixture(t, []models.WhitelistEntry{{Method: "GET", Pattern: "/api/reports"}})
	f.users.On("FindWithProfileByUsername", mock.Anything, "alice").
		Return(&models.User{Username: "alice", AuthorityList: "ROLE_USER"}, nil)

	w := f.do(http.MethodPost, "/api/reports", f.accessToken(t, f.codec, "alice", "ROLE_USER"))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.principal)
	assert.Equal(t, "alice", f.principal.Username)
	f.users.AssertNumberOfCalls(t, "FindWithProfileByUsername", 1)
}

func TestAuthenticate_StoreUnavailableIsNotMasked(t *testing.T) {
	f := newFilterFixture(t, nil)
	f.users.On("FindWithProfileByUsername", mock.Anything, "alice").Return(nil, goerrors.New("connection refused"))

	w := f.do(http.MethodGet, "/api/reports/42", f.accessToken(t, f.codec, "alice", "ROLE_USER"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, f.reached)
	assert.Contains(t, w.Body.String(), "store_unavailable")
}

func TestAuthenticate_DownstreamFailurePropagates(t *testing.T) {
	key, err := crypto.LoadSigningKey(base64.StdEncoding.EncodeToString([]byte("an-hs256-secret-that-is-long-enough!!")))
	require.NoError(t, err)
	log := logger.NewNoopLogger()
	resolver := service.NewPrincipalResolver(crypto.NewJWTCodec(key), new(repomocks.MockUserRepository), nil, log)

	engine := gin.New()
	engine.Use(Authenticate(service.NewWhitelistMatcher(nil), resolver, nil, log))
	engine.GET("/boom", func(c *gin.Context) { c.AbortWithStatus(http.StatusTeapot) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
