package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the http-only cookie carrying the session token.
const CookieName = "token"

func sessionCookie(value string, maxAge time.Duration, production bool) *http.Cookie {
	sameSite := http.SameSiteStrictMode
	if production {
		// Cross-site frontends need SameSite=None, which browsers only
		// accept together with Secure.
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   production,
		SameSite: sameSite,
	}
}

// SetSessionCookie attaches a freshly issued token to the response.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, production bool) {
	http.SetCookie(c.Writer, sessionCookie(token, ttl, production))
}

// ClearSessionCookie expires the session cookie. It does not require the
// presented token to be valid.
func ClearSessionCookie(c *gin.Context, production bool) {
	http.SetCookie(c.Writer, sessionCookie("", -time.Second, production))
}
