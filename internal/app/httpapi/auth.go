package httpapi

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errWrongPassword = errors.New("wrong password")

const tokenTTL = 24 * time.Hour

// authenticator gates the admin login and issues session tokens. No other
// route verifies the token; the password check is the only gate, as in the
// deployed frontend.
type authenticator struct {
	password string
	secret   []byte
}

func newAuthenticator(password, secret string) *authenticator {
	return &authenticator{password: password, secret: []byte(secret)}
}

type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// login returns a signed token when the password matches.
func (a *authenticator) login(password string) (string, error) {
	if password != a.password {
		return "", errWrongPassword
	}

	now := time.Now()
	claims := adminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}
