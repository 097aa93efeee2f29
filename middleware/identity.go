package middleware

import (
	"net/http"

	"github.com/agromarket/backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// UserIDKey holds the authenticated user's uuid in the gin context.
	UserIDKey = "user_id"
	// SessionIDKey holds the anonymous session id in the gin context.
	SessionIDKey = "session_id"

	sessionCookie = "session_id"
)

// Identity resolves who the request belongs to. Authentication itself is
// handled upstream; a trusted X-User-ID header identifies logged-in users.
// Anonymous requests get a session id from header, cookie, or a freshly
// issued cookie, which keys their session cart.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("X-User-ID"); raw != "" {
			if userID, err := uuid.Parse(raw); err == nil {
				c.Set(UserIDKey, userID)
				c.Next()
				return
			}
		}

		sessionID := c.GetHeader("X-Session-ID")
		if sessionID == "" {
			sessionID, _ = c.Cookie(sessionCookie)
		}
		if sessionID == "" {
			sessionID = uuid.New().String()
			c.SetCookie(sessionCookie, sessionID, 7*24*3600, "/", "", false, true)
		}
		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// RequireUser aborts with 401 unless the request is authenticated.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's id, if any.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := val.(uuid.UUID)
	return userID, ok
}

// CartOwner derives the cart owner from the request identity.
func CartOwner(c *gin.Context) models.CartOwner {
	if userID, ok := GetUserID(c); ok {
		return models.UserOwner(userID)
	}
	sessionID := c.GetString(SessionIDKey)
	return models.SessionOwner(sessionID)
}
