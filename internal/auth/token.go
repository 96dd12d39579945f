package auth

import (
	"errors"
	"fmt"
	"time"

	"gks/record-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	BranchCode string `json:"branch_code,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 bearer token for the user. Subject is the
// user id; role and branch ride along so the middleware can gate without
// a second lookup.
func IssueToken(secret string, user models.User, ttl time.Duration) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, fmt.Errorf("jwt secret is empty")
	}
	if user.UserID == "" {
		return "", time.Time{}, fmt.Errorf("user id is empty")
	}
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}

	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		Username:   user.Username,
		Role:       user.Role,
		BranchCode: user.BranchCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyToken parses and validates a signed token. Tampering, a wrong
// signing method, and expiry all fail closed with ErrInvalidToken.
func VerifyToken(secret, token string) (Claims, error) {
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || parsed == nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
