package middleware

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"campus_shuttle/internal/domain"
)

// jwtSecret resolves the signing key at call time, after the .env file has
// been loaded, rather than at package init when JWT_SECRET may not be set yet.
func jwtSecret() []byte {
	if val := os.Getenv("JWT_SECRET"); val != "" {
		return []byte(val)
	}
	return []byte("supersecret") // fallback
}

func GenerateToken(userID uint, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// authenticate validates the bearer token and stashes its claims on the
// context. On failure it aborts with 401 and returns false. It never
// advances the handler chain, so callers can gate further before c.Next().
func authenticate(c *gin.Context) bool {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
		return false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		return false
	}
	c.Set("user_id", claims["user_id"])
	c.Set("role", claims["role"])
	return true
}

// RequireAuth ensures a valid JWT is present and stashes its claims.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c) {
			return
		}
		c.Next()
	}
}

// RequireAuthWithRole ensures the JWT is valid and the user has a specific role.
func RequireAuthWithRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c) {
			return
		}

		roleIfc, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role not found in token"})
			return
		}
		if role, ok := roleIfc.(string); !ok || role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Next()
	}
}

// CurrentActor rebuilds the request's actor from the stashed claims. Only
// valid after RequireAuth has run.
func CurrentActor(c *gin.Context) domain.Actor {
	actor := domain.Actor{}
	if id, ok := c.Get("user_id"); ok {
		if f, ok := id.(float64); ok {
			actor.UserID = uint(f)
		}
	}
	if role, ok := c.Get("role"); ok {
		if s, ok := role.(string); ok {
			actor.Role = s
		}
	}
	return actor
}
