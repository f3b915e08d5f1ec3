package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthGuard validates a bearer token and, when roles are given, requires
// the token's role claim to match one of them. Parent-facing routes use
// UserAuth instead, which also resolves the userId claim.
func AuthGuard(secret string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		parts := strings.Split(raw, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		role, _ := claims["role"].(string)
		if len(allowedRoles) > 0 {
			match := false
			for _, allowed := range allowedRoles {
				if role == allowed {
					match = true
					break
				}
			}
			if !match {
				log.Printf("[AUTH] [ERROR] role %q not allowed for this route", role)
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// AdminAuth guards the back-office API group.
func AdminAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret, "admin")
}
