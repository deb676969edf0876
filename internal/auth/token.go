package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
)

const issuer = "supportbot"

// Credentials are the configured admin login
type Credentials struct {
	Username string
	Password string
}

// TokenManager issues and validates admin bearer tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	admin  Credentials
	now    func() time.Time
}

// NewTokenManager creates a token manager signing with an HMAC secret
func NewTokenManager(secret string, ttl time.Duration, admin Credentials) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		admin:  admin,
		now:    time.Now,
	}
}

// Token is a signed bearer token and its expiry
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login checks the admin credentials in constant time and issues a token
func (m *TokenManager) Login(username, password string) (*Token, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.admin.Password)) == 1
	if !userOK || !passOK || m.admin.Username == "" {
		return nil, ErrInvalidCredentials
	}
	return m.Issue(username)
}

// Issue signs a token for the given subject
func (m *TokenManager) Issue(subject string) (*Token, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &Token{Token: signed, ExpiresAt: expiresAt.UTC().Truncate(time.Second)}, nil
}

// Validate verifies the signature and expiry and returns the subject
func (m *TokenManager) Validate(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
