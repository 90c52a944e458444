package shoppingapi

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenAudience is the audience every API token is issued for.
const TokenAudience = "/api/"

const tokenTTL = 5 * time.Minute

// Key is an API key in its "id:hexsecret" form.
type Key struct {
	ID     string
	Secret []byte
}

// ParseKey splits an "id:hexsecret" API key.
func ParseKey(raw string) (Key, error) {
	keyParts := strings.Split(raw, ":")
	if len(keyParts) != 2 || keyParts[0] == "" {
		return Key{}, fmt.Errorf("invalid api key format: expected id:secret")
	}

	secret, err := hex.DecodeString(keyParts[1])
	if err != nil {
		return Key{}, fmt.Errorf("failed to decode secret hex: %w", err)
	}
	if len(secret) == 0 {
		return Key{}, errors.New("invalid api key format: empty secret")
	}
	return Key{ID: keyParts[0], Secret: secret}, nil
}

// NewToken signs a short-lived token for the API.
func NewToken(key Key, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
		"aud": TokenAudience,
	})
	token.Header["kid"] = key.ID

	return token.SignedString(key.Secret)
}

// VerifyToken checks that raw was signed by key and is still valid.
func VerifyToken(raw string, key Key) error {
	_, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid != key.ID {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		return key.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	return nil
}
