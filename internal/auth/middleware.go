package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// CookieAuth enforces a valid session token in the `token` cookie.
// A missing cookie yields 401, a token that fails verification 403.
func CookieAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(CookieName)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
			return
		}
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden access"})
			return
		}
		c.Set(principalKey, claims)
		c.Next()
	}
}

// Principal returns the authenticated caller identity set by CookieAuth.
func Principal(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}
