package crypto

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stockassist/platform/internal/domain/models"
	"github.com/stockassist/platform/internal/domain/service"
	"github.com/stockassist/platform/pkg/constants"
	"github.com/stockassist/platform/pkg/errors"
	"github.com/stockassist/platform/pkg/utils"
)

var signingMethod = jwt.SigningMethodHS256

// tokenClaims is the wire form shared by access and refresh tokens.
type tokenClaims struct {
	Username    string `json:"username,omitempty"`
	Authorities string `json:"authorities,omitempty"`
	jwt.RegisteredClaims
}

// JWTCodec implements service.TokenCodec with HS256 over the process key.
type JWTCodec struct {
	key        *SigningKey
	now        func() time.Time
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// Option customizes a JWTCodec.
type Option func(*JWTCodec)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *JWTCodec) { c.now = now }
}

// NewJWTCodec creates a codec over key.
func NewJWTCodec(key *SigningKey, opts ...Option) *JWTCodec {
	c := &JWTCodec{
		key:        key,
		now:        time.Now,
		accessTTL:  constants.AccessTokenTTL,
		refreshTTL: constants.RefreshTokenTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ service.TokenCodec = (*JWTCodec)(nil)

// CreateAccessToken signs an access token for identity.
func (c *JWTCodec) CreateAccessToken(identity models.Principal) (*models.IssuedToken, error) {
	now := c.now()
	claims := tokenClaims{
		Username:    identity.Username,
		Authorities: utils.JoinAuthorities(identity.Authorities),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   constants.AccessTokenSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}

	signed, err := c.sign(claims)
	if err != nil {
		return nil, err
	}
	return &models.IssuedToken{Token: utils.WithBearer(signed), Claims: toModel(&claims)}, nil
}

// CreateRefreshToken signs a refresh token. It carries a jti so the session
// store can track it, but no identity.
func (c *JWTCodec) CreateRefreshToken() (*models.IssuedToken, error) {
	now := c.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
	}

	signed, err := c.sign(claims)
	if err != nil {
		return nil, err
	}
	return &models.IssuedToken{Token: signed, Claims: toModel(&claims)}, nil
}

// ParseAndValidate verifies tokenString and returns its claims.
func (c *JWTCodec) ParseAndValidate(tokenString string) (*models.Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &tokenClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.key.Bytes(), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, errors.ErrMalformedToken.WithError(err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, errors.ErrTokenExpired.WithError(err)
		default:
			return nil, errors.ErrInvalidToken.WithError(err)
		}
	}
	if !token.Valid {
		return nil, errors.ErrInvalidToken
	}

	model := toModel(claims)
	if c.IsExpired(model) {
		return nil, errors.ErrTokenExpired
	}
	return model, nil
}

// IsExpired reports whether claims expire at or before the codec's now.
func (c *JWTCodec) IsExpired(claims *models.Claims) bool {
	return claims.IsExpiredAt(c.now())
}

func (c *JWTCodec) sign(claims tokenClaims) (string, error) {
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(c.key.Bytes())
	if err != nil {
		return "", errors.ErrInternal.WithMessage("failed to sign token").WithError(err)
	}
	return signed, nil
}

func toModel(claims *tokenClaims) *models.Claims {
	m := &models.Claims{
		ID:          claims.ID,
		Subject:     claims.Subject,
		Username:    claims.Username,
		Authorities: utils.SplitAuthorities(claims.Authorities),
	}
	if claims.IssuedAt != nil {
		m.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		m.ExpiresAt = claims.ExpiresAt.Time
	}
	return m
}
