package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/identity-service/internal/core/domain"
)

const (
	DefaultTokenTTL    = time.Hour
	DefaultTokenIssuer = "identity-service"
)

var ErrEmptySecret = errors.New("jwt secret must not be empty")

// accessClaims is the JWT payload: username and role next to the registered
// claims, with the user id in "sub".
type accessClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuer implements ports.TokenIssuer with HS256 tokens.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// IssuerOption customises a JWTIssuer.
type IssuerOption func(*JWTIssuer)

// WithTTL sets how long issued tokens stay valid.
func WithTTL(ttl time.Duration) IssuerOption {
	return func(i *JWTIssuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithIssuer sets the "iss" claim written and required on verify.
func WithIssuer(issuer string) IssuerOption {
	return func(i *JWTIssuer) {
		if issuer != "" {
			i.issuer = issuer
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *JWTIssuer) { i.now = now }
}

func NewJWTIssuer(secret string, opts ...IssuerOption) (*JWTIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	i := &JWTIssuer{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		issuer: DefaultTokenIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Sign stamps iat, exp and a random jti on claims and signs them.
func (i *JWTIssuer) Sign(claims domain.Claims) (string, error) {
	now := i.now()
	payload := accessClaims{
		Username: claims.Username,
		Role:     string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(claims.SubjectID, 10),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	return t.SignedString(i.secret)
}

// Verify checks the signature, algorithm, issuer and expiry. It reports false
// instead of returning an error so callers treat every failure the same way.
func (i *JWTIssuer) Verify(token string) (*domain.Claims, bool) {
	if token == "" {
		return nil, false
	}

	var payload accessClaims
	parsed, err := jwt.ParseWithClaims(token, &payload, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, false
	}

	role := domain.Role(payload.Role)
	if !role.Valid() || payload.Username == "" {
		return nil, false
	}
	id, err := strconv.ParseInt(payload.Subject, 10, 64)
	if err != nil {
		return nil, false
	}

	claims := &domain.Claims{
		Username:  payload.Username,
		SubjectID: id,
		Role:      role,
		TokenID:   payload.ID,
	}
	if payload.IssuedAt != nil {
		claims.IssuedAt = payload.IssuedAt.Time
	}
	if payload.ExpiresAt != nil {
		claims.ExpiresAt = payload.ExpiresAt.Time
	}
	return claims, true
}
