package mw

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// EntryHeader carries the board's shared entry password.
	EntryHeader = "X-Access-Password"
	// AdminHeader carries the administrator password.
	AdminHeader = "X-Admin-Password"

	sessionKey = "session"
)

// Session is the per-request access state established by the gates.
type Session struct {
	Entered bool
	Admin   bool
}

// SessionFrom returns the session stored on the request, or the zero Session.
func SessionFrom(c *gin.Context) Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(Session); ok {
			return s
		}
	}
	return Session{}
}

// EntryGate admits requests carrying the entry password.
func EntryGate(secret string) gin.HandlerFunc {
	return gate(secret, EntryHeader, func(s *Session) { s.Entered = true })
}

// AdminGate admits requests carrying the administrator password.
func AdminGate(secret string) gin.HandlerFunc {
	return gate(secret, AdminHeader, func(s *Session) { s.Admin = true })
}

// gate compares the header against a static secret. An empty secret leaves the gate open.
func gate(secret, header string, grant func(*Session)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader(header)), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
			return
		}
		s := SessionFrom(c)
		grant(&s)
		c.Set(sessionKey, s)
		c.Next()
	}
}
