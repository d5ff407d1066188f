package identity

import (
	"errors"
	"fmt"
	"time"

	"spacebook/pkg/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the requester's role next to the registered subject claim.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

func (t *TokenIssuer) Sign(requester model.Requester, ttl time.Duration) (string, error) {
	now := t.now()
	claims := &Claims{
		Role: requester.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  requester.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) Verify(tok string) (model.Requester, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tok, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return model.Requester{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return model.Requester{}, ErrInvalidToken
	}

	role := claims.Role
	if role != model.RoleAdmin {
		role = model.RoleUser
	}
	return model.Requester{ID: claims.Subject, Role: role}, nil
}
