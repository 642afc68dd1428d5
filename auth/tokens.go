package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenConfig holds signing secrets and lifetimes for both token kinds.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// GenerateAccessToken signs a short-lived token carrying the user's identity.
func (c TokenConfig) GenerateAccessToken(u *User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       u.ID,
		"username":  u.Username,
		"email":     u.Email,
		"full_name": u.FullName,
		"typ":       tokenTypeAccess,
		"exp":       now.Add(c.AccessTTL).Unix(),
		"iat":       now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.AccessSecret))
}

// GenerateRefreshToken signs a long-lived token. Each call yields a distinct
// token, so rotation always invalidates the previous one.
func (c TokenConfig) GenerateRefreshToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": uuid.NewString(),
		"typ": tokenTypeRefresh,
		"exp": now.Add(c.RefreshTTL).Unix(),
		"iat": now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.RefreshSecret))
}

// ParseAccessToken validates an access token and returns its subject.
func (c TokenConfig) ParseAccessToken(tokenStr string) (string, error) {
	return parseToken(tokenStr, c.AccessSecret, tokenTypeAccess)
}

// ParseRefreshToken validates a refresh token and returns its subject.
func (c TokenConfig) ParseRefreshToken(tokenStr string) (string, error) {
	return parseToken(tokenStr, c.RefreshSecret, tokenTypeRefresh)
}

func parseToken(tokenStr, secret, wantType string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	if typ, _ := claims["typ"].(string); typ != wantType {
		return "", errors.New("wrong token type")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing subject")
	}
	return sub, nil
}

// hashToken is what gets stored for a refresh token.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func tokenMatches(token, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(hashToken(token)), []byte(storedHash)) == 1
}
