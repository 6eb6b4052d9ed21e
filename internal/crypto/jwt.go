package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer   = "tasklist"
	audience = "tasklist-api"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims represents the JWT claims for task list API sessions.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenIssuer signs and parses HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// IssuerOption configures a TokenIssuer.
type IssuerOption func(*TokenIssuer)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) { i.now = now }
}

// NewTokenIssuer creates a TokenIssuer whose tokens live for ttl.
func NewTokenIssuer(secret string, ttl time.Duration, opts ...IssuerOption) *TokenIssuer {
	i := &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Now returns the issuer's current time.
func (i *TokenIssuer) Now() time.Time { return i.now() }

// Issue creates a signed token for the given user with a fresh token id.
func (i *TokenIssuer) Issue(userID string) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies the signature first and the claims second. A token that is
// well formed and correctly signed but past its expiry returns its claims
// together with ErrTokenExpired; any other failure is ErrInvalidToken.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrInvalidToken
	}

	validator := jwt.NewValidator(
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err := validator.Validate(claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) &&
			!errors.Is(err, jwt.ErrTokenInvalidIssuer) &&
			!errors.Is(err, jwt.ErrTokenInvalidAudience) {
			return claims, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" || claims.ID == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
