package middleware

import (
	"net/http"
	"strings"

	"go-restaurant-ops/helpers"

	"github.com/gin-gonic/gin"
)

// Context keys set for authenticated requests.
const (
	KeyUID          = "uid"
	KeyEmail        = "email"
	KeyRole         = "role"
	KeyRestaurantID = "restaurant_id"
)

// Authentication rejects requests without a valid access token.
func Authentication(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientToken := tokenFromRequest(c.Request)
		if clientToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
			return
		}
		claims, err := helpers.ValidateToken(secret, clientToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthentication identifies the caller when a valid token is present
// and lets anonymous requests through.
func OptionalAuthentication(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if clientToken := tokenFromRequest(c.Request); clientToken != "" {
			if claims, err := helpers.ValidateToken(secret, clientToken); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *helpers.SignedDetails) {
	c.Set(KeyEmail, claims.Email)
	c.Set(KeyUID, claims.Uid)
	c.Set(KeyRole, claims.User_role)
	c.Set(KeyRestaurantID, claims.Restaurant_id)
}

// tokenFromRequest reads the token header, falling back to a bearer token.
func tokenFromRequest(r *http.Request) string {
	if token := r.Header.Get("token"); token != "" {
		return token
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
