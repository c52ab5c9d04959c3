package utils

import (
	"errors"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

// PrincipalClaims are the JWT claims the API accepts. Subject is the user ID.
type PrincipalClaims struct {
	jwt.RegisteredClaims
	OrganizationID string `json:"org_id"`
	Role           string `json:"role"`
}

// Principal converts the claims into the domain principal.
func (c *PrincipalClaims) Principal() domain.Principal {
	return domain.Principal{
		UserID:         c.Subject,
		OrganizationID: c.OrganizationID,
		Role:           domain.PrincipalRole(c.Role),
	}
}

// GenerateJWT generates a new JWT token for the given principal.
func GenerateJWT(p domain.Principal, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := PrincipalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
		OrganizationID: p.OrganizationID,
		Role:           string(p.Role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAndValidateJWT parses a JWT token string, validates its signature and standard claims.
func ParseAndValidateJWT(tokenString string, secretKey string) (*PrincipalClaims, error) {
	claims := &PrincipalClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Subject == "" {
		return nil, errors.New("subject missing from token")
	}
	return claims, nil
}
