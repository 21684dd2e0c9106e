package utils

import (
	"errors"
	"os"

	"github.com/golang-jwt/jwt/v4"
)

// IdentityClaims are the claims this service reads from tokens issued by
// the external identity provider. The service only verifies; it never
// issues tokens.
type IdentityClaims struct {
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

var jwtSecret = []byte(getEnvDefault("JWT_SECRET", "your-secret-key"))

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ValidateToken verifies an identity-provider bearer token and returns its
// claims.
func ValidateToken(tokenString string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing subject")
	}
	return claims, nil
}
