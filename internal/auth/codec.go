package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"restaurantservice/internal/service"
)

// SigningMethod is the only algorithm accepted for API tokens.
var SigningMethod = jwt.SigningMethodHS256

// Claims is the payload of an API token. It carries no expiry.
type Claims struct {
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

// TokenCodec encodes and verifies API tokens signed with a shared secret.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a codec with the given secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Encode signs a token embedding both identifiers.
func (c *TokenCodec) Encode(userID, tokenID uuid.UUID) (string, error) {
	claims := &Claims{
		UserID:  userID.String(),
		TokenID: tokenID.String(),
	}
	signed, err := jwt.NewWithClaims(SigningMethod, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and returns the embedded identifiers.
// Every failure is reported as service.ErrInvalidToken.
func (c *TokenCodec) Decode(token string) (userID, tokenID uuid.UUID, err error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{SigningMethod.Alg()}))
	if err != nil || !parsed.Valid {
		return uuid.Nil, uuid.Nil, service.ErrInvalidToken
	}

	if claims.UserID == "" || claims.TokenID == "" {
		return uuid.Nil, uuid.Nil, service.ErrInvalidToken
	}
	if userID, err = uuid.Parse(claims.UserID); err != nil {
		return uuid.Nil, uuid.Nil, service.ErrInvalidToken
	}
	if tokenID, err = uuid.Parse(claims.TokenID); err != nil {
		return uuid.Nil, uuid.Nil, service.ErrInvalidToken
	}
	return userID, tokenID, nil
}
