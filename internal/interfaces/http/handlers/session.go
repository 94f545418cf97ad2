// internal/interfaces/http/handlers/session.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-core/internal/pkg/identifier"
)

// SessionCookie issues the anonymous session id that keys guest carts
type SessionCookie struct {
	name   string
	maxAge int
	secure bool
}

// NewSessionCookie creates the cookie helper
func NewSessionCookie(name string, ttl time.Duration, secure bool) *SessionCookie {
	return &SessionCookie{
		name:   name,
		maxAge: int(ttl.Seconds()),
		secure: secure,
	}
}

// Get returns the session id sent by the client
func (s *SessionCookie) Get(c *gin.Context) (string, bool) {
	sessionID, err := c.Cookie(s.name)
	if err != nil || sessionID == "" {
		return "", false
	}
	return sessionID, true
}

// GetOrCreate returns the client's session id, issuing a new one if needed
func (s *SessionCookie) GetOrCreate(c *gin.Context) string {
	if sessionID, ok := s.Get(c); ok {
		return sessionID
	}

	sessionID := identifier.NewUUID()
	c.SetCookie(s.name, sessionID, s.maxAge, "/", "", s.secure, true)
	return sessionID
}

// Clear expires the session cookie
func (s *SessionCookie) Clear(c *gin.Context) {
	c.SetCookie(s.name, "", -1, "/", "", s.secure, true)
}
