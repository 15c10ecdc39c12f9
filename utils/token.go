package utils

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every ingest-token failure mode. Callers respond
// with a generic authorization failure and keep the underlying cause in
// server logs only.
var ErrInvalidToken = errors.New("invalid ingest token")

type projectClaims struct {
	ProjectID string `json:"projectId"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies the per-project ingest access token: an
// HS256 JWT whose payload carries the project id and nothing else.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{secret: secret}
}

// Issue mints an access token for the given project. The token carries no
// expiry claim; issued tokens stay valid until the signing secret rotates.
func (c *TokenCodec) Issue(projectID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &projectClaims{ProjectID: projectID})
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign ingest token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature and returns the embedded project id. The
// signing method is pinned to HMAC; a token signed with any other
// algorithm fails verification regardless of its signature.
func (c *TokenCodec) Verify(tokenString string) (string, error) {
	claims := &projectClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.ProjectID == "" {
		return "", ErrInvalidToken
	}

	return claims.ProjectID, nil
}
