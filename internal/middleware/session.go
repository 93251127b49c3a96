package middleware

import (
	"net/http"

	"github.com/dfryer1193/postfeed/feed/application"
	"github.com/dfryer1193/postfeed/feed/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	SessionCookie = "sessionId"
	identityKey   = "identity"
	// one year
	sessionMaxAge = 365 * 24 * 60 * 60
)

// Session resolves the browser's identity from its session cookie, issuing a
// new token when the cookie is missing or malformed.
func Session(authorDomain string) gin.HandlerFunc {
	return func(c *gin.Context) {
		stored, _ := c.Cookie(SessionCookie)

		identity, created, err := application.Bootstrap(stored, authorDomain)
		if err != nil {
			log.Error().Err(err).Msg("Failed to bootstrap session")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, identity.SessionID, sessionMaxAge, "/", "", c.Request.TLS != nil, true)
			log.Debug().Str("sessionID", identity.SessionID).Msg("Issued new session")
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the identity set by Session.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}
