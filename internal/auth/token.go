package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that cannot identify an actor.
var ErrInvalidToken = errors.New("invalid or expired token")

// Tokens signs and verifies HS256 bearer tokens carrying the actor.
type Tokens struct {
	secret []byte
}

// NewTokens creates a Tokens using secret for HMAC signing.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

// Issue signs a token for actor valid for ttl.
func (t *Tokens) Issue(actor Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  actor.EmployeeID,
		"name": actor.Name,
		"role": string(actor.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies tokenString and returns the actor it names.
func (t *Tokens) Parse(tokenString string) (Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, ErrInvalidToken
	}
	// numeric claims decode as float64
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return Actor{}, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	name, _ := claims["name"].(string)
	return Actor{EmployeeID: int64(sub), Name: name, Role: Role(role)}, nil
}
