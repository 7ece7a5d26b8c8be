package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/edustack/quiz-service/internal/config"
	"github.com/edustack/quiz-service/internal/models"
)

const (
	contextUserIDKey   = "user_id"
	contextUserRoleKey = "user_role"
)

// JWTAuthMiddleware verifies bearer tokens issued by the identity service.
// The service trusts the token's claims; it holds no user records of its own.
type JWTAuthMiddleware struct {
	config config.JWTConfig
}

func NewJWTAuthMiddleware(cfg config.JWTConfig) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{config: cfg}
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (m *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing or malformed authorization header",
			})
			return
		}

		claims, err := m.parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired token",
			})
			return
		}

		c.Set(contextUserIDKey, claims.Subject)
		c.Set(contextUserRoleKey, models.UserRole(claims.Role))
		c.Next()
	}
}

func (m *JWTAuthMiddleware) parseToken(raw string) (*tokenClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(m.config.Secret), nil
	}, options...)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

// RequireRoleMiddleware allows only the listed roles past.
func (m *JWTAuthMiddleware) RequireRoleMiddleware(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetUserRole(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient permissions",
		})
	}
}

// GetUserID returns the authenticated user's ID from the gin context.
func GetUserID(c *gin.Context) string {
	if v, exists := c.Get(contextUserIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetUserRole returns the authenticated user's role from the gin context.
func GetUserRole(c *gin.Context) models.UserRole {
	if v, exists := c.Get(contextUserRoleKey); exists {
		if role, ok := v.(models.UserRole); ok {
			return role
		}
	}
	return ""
}
