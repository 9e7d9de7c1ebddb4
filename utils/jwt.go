package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// Identity is the caller extracted from a bearer token.
type Identity struct {
	UserID string
	Role   string
}

// GenerateToken creates a signed HS256 token. Tokens are issued by the identity
// service; this helper exists for local tooling and tests.
func GenerateToken(secret []byte, subject, role string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(secret []byte, tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
}

// ExtractIdentity returns the subject and role claims of a valid token.
func ExtractIdentity(secret []byte, tokenString string) (Identity, error) {
	token, err := ValidateToken(secret, tokenString)
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}, errors.New("token does not contain a valid 'sub' claim")
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return Identity{}, errors.New("token does not contain a valid 'role' claim")
	}
	return Identity{UserID: sub, Role: role}, nil
}
