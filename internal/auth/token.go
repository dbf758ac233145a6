package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/storefront-service/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) Issue(u *model.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *TokenManager) Verify(tokenString string) (*UserContext, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || roleRank[claims.Role] == 0 {
		return nil, ErrInvalidToken
	}

	return &UserContext{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

var roleRank = map[string]int{
	model.RoleUser:       1,
	model.RoleAdmin:      2,
	model.RoleSuperAdmin: 3,
}

// HasRole reports whether role ranks at least as high as required.
func HasRole(role, required string) bool {
	r, ok := roleRank[role]
	return ok && r >= roleRank[required]
}

func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}
