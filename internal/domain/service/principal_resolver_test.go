package service

import (
	"context"
	goerrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockassist/platform/internal/domain/models"
	repomocks "github.com/stockassist/platform/internal/domain/repository/mocks"
	"github.com/stockassist/platform/internal/domain/service/mocks"
	"github.com/stockassist/platform/pkg/constants"
	"github.com/stockassist/platform/pkg/errors"
	"github.com/stockassist/platform/pkg/logger"
)

type recordingMetrics struct {
	outcomes []constants.AuthOutcome
	lookups  int
}

func (m *recordingMetrics) RecordAuthOutcome(o constants.AuthOutcome) { m.outcomes = append(m.outcomes, o) }
func (m *recordingMetrics) ObserveUserLookup(time.Duration)           { m.lookups++ }
func (m *recordingMetrics) RecordTokenIssued(constants.TokenKind)     {}

func bearerHeader(token string) http.Header {
	h := http.Header{}
	h.Set(constants.HeaderAuthorization, constants.BearerPrefix+token)
	return h
}

func accessClaims(username string) *models.Claims {
	now := time.Now()
	return &models.Claims{
		Subject:     constants.AccessTokenSubject,
		Username:    username,
		Authorities: []string{"ROLE_USER"},
		IssuedAt:    now,
		ExpiresAt:   now.Add(constants.AccessTokenTTL),
	}
}

func TestPrincipalResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	alice := &models.User{Username: "alice", AuthorityList: "ROLE_USER,ROLE_ANALYST"}

	tests := []struct {
		name        string
		header      http.Header
		setup       func(codec *mocks.MockTokenCodec, users *repomocks.MockUserRepository)
		want        *models.Principal
		wantErr     error
		wantOutcome constants.AuthOutcome
	}{
		{
			name:        "no authorization header",
			header:      http.Header{},
			setup:       func(*mocks.MockTokenCodec, *repomocks.MockUserRepository) {},
			wantOutcome: constants.AuthOutcomeAnonymous,
		},
		{
			name: "wrong scheme",
			header: http.Header{
				constants.HeaderAuthorization: []string{"Basic dXNlcjpwYXNz"},
			},
			setup:       func(*mocks.MockTokenCodec, *repomocks.MockUserRepository) {},
			wantOutcome: constants.AuthOutcomeAnonymous,
		},
		{
			name:   "malformed token",
			header: bearerHeader("garbage"),
			setup: func(codec *mocks.MockTokenCodec, _ *repomocks.MockUserRepository) {
				codec.On("ParseAndValidate", "garbage").Return(nil, errors.ErrMalformedToken)
			},
			wantOutcome: constants.AuthOutcomeMalformed,
		},
		{
			name:   "bad signature",
			header: bearerHeader("tampered"),
			setup: func(codec *mocks.MockTokenCodec, _ *repomocks.MockUserRepository) {
				codec.On("ParseAndValidate", "tampered").Return(nil, errors.ErrInvalidToken)
			},
			wantOutcome: constants.AuthOutcomeInvalid,
		},
		{
			name:   "expired token",
			header: bearerHeader("old"),
			setup: func(codec *mocks.MockTokenCodec, _ *repomocks.MockUserRepository) {
				codec.On("ParseAndValidate", "old").Return(nil, errors.ErrTokenExpired)
			},
			wantOutcome: constants.AuthOutcomeExpired,
		},
		{
			name:   "codec reports expiry after parse",
			header: bearerHeader("edge"),
			setup: func(codec *mocks.MockTokenCodec, _ *repomocks.MockUserRepository) {
				claims := accessClaims("alice")
				codec.On("ParseAndValidate", "edge").Return(claims, nil)
				codec.On("IsExpired", claims).Return(true)
			},
			wantOutcome: constants.AuthOutcomeExpired,
		},
		{
			name:   "refresh token has no username",
			header: bearerHeader("refresh"),
			setup: func(codec *mocks.MockTokenCodec, _ *repomocks.MockUserRepository) {
				claims := &models.Claims{ID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}
				codec.On("ParseAndValidate", "refresh").Return(claims, nil)
				codec.On("IsExpired", claims).Return(false)
			},
			wantOutcome: constants.AuthOutcomeMalformed,
		},
		{
			name:   "unknown user",
			header: bearerHeader("ghost"),
			setup: func(codec *mocks.MockTokenCodec, users *repomocks.MockUserRepository) {
				claims := accessClaims("ghost")
				codec.On("ParseAndValidate", "ghost").Return(claims, nil)
				codec.On("IsExpired", claims).Return(false)
				users.On("FindWithProfileByUsername", ctx, "ghost").Return(nil, errors.ErrUnknownUser)
			},
			wantOutcome: constants.AuthOutcomeUnknownUser,
		},
		{
			name:   "store unavailable propagates",
			header: bearerHeader("valid"),
			setup: func(codec *mocks.MockTokenCodec, users *repomocks.MockUserRepository) {
				claims := accessClaims("alice")
				codec.On("ParseAndValidate", "valid").Return(claims, nil)
				codec.On("IsExpired", claims).Return(false)
				users.On("FindWithProfileByUsername", ctx, "alice").Return(nil, goerrors.New("connection refused"))
			},
			wantErr:     errors.ErrStoreUnavailable,
			wantOutcome: constants.AuthOutcomeStoreError,
		},
		{
			name:   "valid token for existing user",
			header: bearerHeader("valid"),
			setup: func(codec *mocks.MockTokenCodec, users *repomocks.MockUserRepository) {
				claims := accessClaims("alice")
				codec.On("ParseAndValidate", "valid").Return(claims, nil)
				codec.On("IsExpired", claims).Return(false)
				users.On("FindWithProfileByUsername", ctx, "alice").Return(alice, nil)
			},
			want:        &models.Principal{Username: "alice", Authorities: []string{"ROLE_USER", "ROLE_ANALYST"}},
			wantOutcome: constants.AuthOutcomeAuthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := new(mocks.MockTokenCodec)
			users := new(repomocks.MockUserRepository)
			metrics := &recordingMetrics{}
			tt.setup(codec, users)

			resolver := NewPrincipalResolver(codec, users, metrics, logger.NewNoopLogger())
			got, err := resolver.Resolve(ctx, tt.header)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			require.NotEmpty(t, metrics.outcomes)
			assert.Equal(t, tt.wantOutcome, metrics.outcomes[len(metrics.outcomes)-1])
			codec.AssertExpectations(t)
			users.AssertExpectations(t)
		})
	}
}

func TestPrincipalResolver_NoLookupWithoutToken(t *testing.T) {
	codec := new(mocks.MockTokenCodec)
	users := new(repomocks.MockUserRepository)
	resolver := NewPrincipalResolver(codec, users, nil, logger.NewNoopLogger())

	got, err := resolver.Resolve(context.Background(), http.Header{})

	assert.NoError(t, err)
	assert.Nil(t, got)
	codec.AssertNotCalled(t, "ParseAndValidate", mock.Anything)
	users.AssertNotCalled(t, "FindWithProfileByUsername", mock.Anything, mock.Anything)
}
