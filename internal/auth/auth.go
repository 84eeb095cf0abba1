package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avstrong/campusnest/internal/rental"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("empty signing secret")
)

type Claims struct {
	UserID string      `json:"userId"`
	Role   rental.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 bearer tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (i *Issuer) Issue(userID string, role rental.Role) (string, error) {
	now := i.now()

	//nolint:exhaustruct
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token for %s: %w", userID, err)
	}

	return signed, nil
}

func (i *Issuer) Parse(token string) (rental.Principal, error) {
	claims := &Claims{} //nolint:exhaustruct

	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return rental.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.UserID == "" {
		return rental.Principal{}, ErrInvalidToken
	}

	if claims.Role != rental.RoleStudent && claims.Role != rental.RoleOwner {
		return rental.Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	return rental.Principal{UserID: claims.UserID, Role: claims.Role}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}

	return strings.TrimSpace(token), true
}
