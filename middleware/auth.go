package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Banyel3/iayos-sub011/config"
	"github.com/Banyel3/iayos-sub011/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims for a gateway session
type Claims struct {
	AccountID   string `json:"account_id"`
	Email       string `json:"email"`
	ProfileType string `json:"profile_type"`
	jwt.RegisteredClaims
}

// GenerateToken generates a new session token for an authenticated account
func GenerateToken(accountID, email, profileType string, cfg *config.AuthConfig) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(cfg.TokenExpireHours) * time.Hour)

	claims := Claims{
		AccountID:   accountID,
		Email:       email,
		ProfileType: profileType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// AuthMiddleware validates the session token and populates account info.
// Failures respond with a fixed message and a login redirect target before
// any backend work happens; token parse errors are never echoed.
func AuthMiddleware(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access denied. Please log in.", "redirect": "/login"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access denied. Please log in.", "redirect": "/login"})
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session", "redirect": "/login"})
			c.Abort()
			return
		}

		// Store account info in context
		c.Set("account_id", claims.AccountID)
		c.Set("email", claims.Email)
		c.Set("profile_type", claims.ProfileType)

		ctx := context.WithValue(c.Request.Context(), logger.AccountIDKey, claims.AccountID)
		ctx = context.WithValue(ctx, logger.ProfileTypeKey, claims.ProfileType)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetAccountID gets the authenticated account id from context
func GetAccountID(c *gin.Context) string {
	if accountID, exists := c.Get("account_id"); exists {
		return accountID.(string)
	}
	return ""
}

// GetEmail gets the authenticated email from context
func GetEmail(c *gin.Context) string {
	if email, exists := c.Get("email"); exists {
		return email.(string)
	}
	return ""
}

// GetProfileType gets the profile type from context
func GetProfileType(c *gin.Context) string {
	if profileType, exists := c.Get("profile_type"); exists {
		return profileType.(string)
	}
	return ""
}
