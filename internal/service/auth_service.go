package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"linktrace-go/internal/apperrors"
)

// SessionCookieName 看板会话 cookie 名
const SessionCookieName = "linktrace_session"

// SessionTTL 会话有效期
const SessionTTL = 24 * time.Hour

// AuthService 看板登录：单账号 + bcrypt 口令 + JWT 会话 cookie
type AuthService struct {
	username     string
	passwordHash []byte
	jwtSecret    []byte
}

func NewAuthService() *AuthService {
	return &AuthService{
		username:     viper.GetString("auth.username"),
		passwordHash: []byte(viper.GetString("auth.password_hash")),
		jwtSecret:    []byte(viper.GetString("auth.jwt_secret")),
	}
}

// Login 校验账号口令，通过后签发会话 token
func (s *AuthService) Login(username, password string) (string, error) {
	if username != s.username {
		return "", apperrors.WithCode(401, apperrors.KindInvalidRequest, "error.login_failed")
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", apperrors.WithCode(401, apperrors.KindInvalidRequest, "error.login_failed")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// VerifySession 校验会话 token
func (s *AuthService) VerifySession(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid session token")
	}
	return nil
}
