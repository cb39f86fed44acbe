package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenValidity is the fixed lifetime of an issued bearer token.
const TokenValidity = 24 * time.Hour

// ErrInvalidToken is returned for any token that fails verification: bad
// signature, unexpected algorithm, malformed claims or expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the caller bound to a request by a verified token.
type Identity struct {
	ClientID uint
	Email    string
	Role     string
}

// Claims is the JWT payload. The short field names match what existing
// clients of the API already decode.
type Claims struct {
	ClientID uint   `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"clientType"`
	jwt.RegisteredClaims
}

// Identity returns the identity carried by the claims.
func (c *Claims) Identity() Identity {
	return Identity{ClientID: c.ClientID, Email: c.Email, Role: c.Role}
}

// Tokens is the issue/verify capability the gateway and sessions depend on.
type Tokens interface {
	Issue(clientID uint, email, role string) (string, *Claims, error)
	Verify(token string) (*Claims, error)
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

type TokenOption func(*TokenIssuer)

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(t *TokenIssuer) { t.now = now }
}

func NewTokenIssuer(secret string, opts ...TokenOption) *TokenIssuer {
	t := &TokenIssuer{secret: []byte(secret), now: time.Now}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Issue signs a token for the client valid for TokenValidity.
func (t *TokenIssuer) Issue(clientID uint, email, role string) (string, *Claims, error) {
	now := t.now()
	claims := &Claims{
		ClientID: clientID,
		Email:    email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(clientID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature and expiry and returns the token claims.
func (t *TokenIssuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid || claims.ClientID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
