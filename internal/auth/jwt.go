// Package auth handles manager account authentication: bcrypt password
// checks, JWT issuance and the middleware gating manager-only routes.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wbs/internal/model"
	"wbs/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const userIDKey contextKey = "userID"
const roleKey contextKey = "role"

// ErrInvalidLogin is returned for both unknown usernames and wrong
// passwords so login failures do not leak which accounts exist.
var ErrInvalidLogin = errors.New("username atau password salah")

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SecretKey string
	TokenTTL  time.Duration
}

// NewJWTConfig creates a new JWT config
func NewJWTConfig(secretKey string) *JWTConfig {
	if secretKey == "" {
		secretKey = "default-secret-key-change-in-production" // Default for development
	}
	return &JWTConfig{SecretKey: secretKey, TokenTTL: 24 * time.Hour}
}

// Login verifies a manager's credentials and issues a signed token.
func (c *JWTConfig) Login(ctx context.Context, s store.Store, username, password string) (string, *model.User, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, ErrInvalidLogin
	}
	if !user.IsActive {
		return "", nil, ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidLogin
	}

	_ = s.TouchLastLogin(ctx, user.ID)

	token, err := c.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs a token for an authenticated manager account.
func (c *JWTConfig) IssueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(c.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.SecretKey))
}

// HashPassword produces a bcrypt hash for account creation.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Middleware rejects requests without a valid bearer token. Manager
// routes are never open: there is no anonymous fallback.
func (c *JWTConfig) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		userID, role, err := c.ParseToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		if role != "" {
			ctx = context.WithValue(ctx, roleKey, role)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ParseToken verifies a signed token and returns the manager ID and role.
func (c *JWTConfig) ParseToken(tokenString string) (int64, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(c.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return 0, "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, "", errors.New("invalid token claims")
	}
	role, _ := claims["role"].(string)
	return userID, role, nil
}

// GetUserID extracts the authenticated manager's ID from context
func GetUserID(ctx context.Context) int64 {
	if userID, ok := ctx.Value(userIDKey).(int64); ok {
		return userID
	}
	return 0
}

// GetRole extracts the authenticated manager's role from context
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}
