package session

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/feature/auth/domain/entity"
)

// currentUserKey is the gin context key holding the logged-in user.
const currentUserKey = "currentUser"

// UserLoader re-fetches a user by ID. The session stores only the opaque
// ID, so every request sees fresh credential fields.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// LoadUser resolves the session's user ID into a full user and stores it
// in the gin context. Anonymous requests pass through untouched; a session
// whose user no longer resolves is treated as anonymous.
func (m *Manager) LoadUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := m.UserID(c); ok {
			if user, err := users.FindByID(c.Request.Context(), id); err == nil {
				c.Set(currentUserKey, user)
			}
		}
		c.Next()
	}
}

// RequireAuth redirects anonymous requests to the login page.
func (m *Manager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			_ = m.SetFlash(c, FlashError, "Please log in first")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the logged-in user placed by LoadUser.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*entity.User)
	return user, ok
}
