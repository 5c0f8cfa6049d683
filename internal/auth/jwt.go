package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Issuer is set on every admin token.
const Issuer = "model-catalog"

// AdminClaims are the claims of an admin token
type AdminClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasPermission reports whether any of the claimed roles grants required
func (c *AdminClaims) HasPermission(required Role) bool {
	for _, role := range c.Roles {
		if Role(role).HasPermission(required) {
			return true
		}
	}
	return false
}

// GenerateAdminJWT signs an admin token for subject with HS256
func GenerateAdminJWT(secret []byte, subject string, roles []Role, ttl time.Duration) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, errors.New("JWT secret is empty")
	}
	if subject == "" {
		return "", time.Time{}, errors.New("subject is required")
	}
	if len(roles) == 0 {
		return "", time.Time{}, errors.New("at least one role is required")
	}

	claimed := make([]string, 0, len(roles))
	for _, role := range roles {
		if !role.IsValid() {
			return "", time.Time{}, fmt.Errorf("invalid role %q", role)
		}
		claimed = append(claimed, role.String())
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := AdminClaims{
		Roles: claimed,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateAdminJWT verifies signature, algorithm, expiry and issuer
func ValidateAdminJWT(tokenString string, secret []byte) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.VerifyIssuer(Issuer, true) {
		return nil, errors.New("unexpected token issuer")
	}
	return claims, nil
}
