package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token's signature does not match the
// process secret or its payload cannot be decoded.
var ErrInvalidToken = errors.New("invalid token")

// Claims binds a token to the id of the user it was issued for. Tokens carry
// no expiry and there is no server-side revocation state: validity is purely
// a function of the signature.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the bearer tokens used by every
// authenticated route.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue signs a token whose subject is the given user id.
func (s *TokenService) Issue(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: userID})
	return token.SignedString(s.secret)
}

// Verify returns the user id embedded in the token. It does NOT check that
// the user still exists; callers resolve the id against the store themselves.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.ID, nil
}
