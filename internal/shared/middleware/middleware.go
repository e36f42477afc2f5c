package middleware

import (
	"net/http"
	"strings"

	"cinerama/internal/shared/config"
	"cinerama/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Context keys set by the identity middlewares
const (
	ContextCustomerID = "customer_id"
	ContextUserRole   = "user_role"
)

// JWTAuth creates a JWT authentication middleware that rejects
// requests without a valid access token
func JWTAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearerToken(c, cfg)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or missing access token", nil, nil)
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalIdentity extracts the caller identity when a valid token is
// present and lets the request through either way. Seat holds accept
// anonymous callers, so this is the middleware on the reservation flow:
// an authenticated customer becomes the holder reference, an anonymous
// one holds with no reference.
func OptionalIdentity(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearerToken(c, cfg); ok {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

// RequireAdmin checks that the authenticated user carries the ADMIN role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextUserRole)
		if !exists || role != "ADMIN" {
			response.RespondJSON(c, "error", http.StatusForbidden, "admin role required", nil, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CustomerIDFromContext returns the authenticated customer id, if any.
// The second return is false for anonymous requests.
func CustomerIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(ContextCustomerID)
	if !exists {
		return uuid.Nil, false
	}
	idStr, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseBearerToken(c *gin.Context, cfg *config.Config) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return nil, false
	}
	return claims, true
}

func setIdentity(c *gin.Context, claims jwt.MapClaims) {
	if userID, ok := claims["user_id"].(string); ok {
		c.Set(ContextCustomerID, userID)
	}
	if role, ok := claims["role"].(string); ok {
		c.Set(ContextUserRole, role)
	}
}
