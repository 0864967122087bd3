// Package session implements the server-side session manager.
//
// A session is an opaque 64-character hex ID held by the client in a
// cookie, keyed to a JSON record in Redis with a TTL. The record carries
// only the user ID, never credential fields; fresh user data is re-fetched
// on demand by the middleware. The record also holds the one-shot flash
// notice shown after a redirect.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Flash categories shown with a notice.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notice attached to the next rendered response.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// record is the JSON shape persisted in Redis. An empty UserID marks an
// anonymous session (flash-only).
type record struct {
	UserID    string    `json:"user_id,omitempty"`
	Flash     *Flash    `json:"flash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager issues and destroys sessions keyed by a client-held cookie.
type Manager struct {
	rdb        *redis.Client
	prefix     string
	cookieName string
	ttl        time.Duration
}

// NewManager creates a Manager. If prefix is empty it uses "session".
func NewManager(rdb *redis.Client, prefix, cookieName string, ttl time.Duration) *Manager {
	if prefix == "" {
		prefix = "session"
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{
		rdb:        rdb,
		prefix:     prefix,
		cookieName: cookieName,
		ttl:        ttl,
	}
}

// sessionKey returns the Redis key for a session.
func (m *Manager) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", m.prefix, id)
}

// newSessionID returns a fresh 64-character hex ID from crypto/rand.
func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// SetUser marks the session authenticated as userID, creating a session
// (and cookie) if none exists. Only the opaque user ID is stored. The
// session ID is rotated on authentication so a cookie issued before login
// never identifies a logged-in session; a pending flash carries over.
func (m *Manager) SetUser(c *gin.Context, userID string) error {
	id, rec, err := m.load(c)
	if err != nil {
		return err
	}
	fresh, err := newSessionID()
	if err != nil {
		return err
	}
	// Best effort: a leftover pre-auth record only ever holds a flash.
	_ = m.rdb.Del(c.Request.Context(), m.sessionKey(id)).Err()

	rec.UserID = userID
	return m.save(c, fresh, rec)
}

// UserID returns the authenticated user's ID for the current session.
// It returns false for anonymous sessions and missing cookies.
func (m *Manager) UserID(c *gin.Context) (string, bool) {
	id, err := c.Cookie(m.cookieName)
	if err != nil || id == "" {
		return "", false
	}
	rec, err := m.get(c.Request.Context(), id)
	if err != nil || rec.UserID == "" {
		return "", false
	}
	return rec.UserID, true
}

// Destroy removes the current session and expires the cookie.
// It is idempotent: destroying a missing session is a no-op.
func (m *Manager) Destroy(c *gin.Context) error {
	id, err := c.Cookie(m.cookieName)
	if err != nil || id == "" {
		return nil
	}
	c.SetCookie(m.cookieName, "", -1, "/", "", false, true)
	if err := m.rdb.Del(c.Request.Context(), m.sessionKey(id)).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// SetFlash attaches a one-shot notice to the current session, creating an
// anonymous session if none exists (so a notice survives logout).
func (m *Manager) SetFlash(c *gin.Context, category, message string) error {
	id, rec, err := m.load(c)
	if err != nil {
		return err
	}
	rec.Flash = &Flash{Category: category, Message: message}
	return m.save(c, id, rec)
}

// PopFlash returns the pending notice and clears it, so it cannot outlive
// the next successful render. It returns nil when there is none.
func (m *Manager) PopFlash(c *gin.Context) *Flash {
	id, err := c.Cookie(m.cookieName)
	if err != nil || id == "" {
		return nil
	}
	rec, err := m.get(c.Request.Context(), id)
	if err != nil || rec.Flash == nil {
		return nil
	}
	flash := rec.Flash
	rec.Flash = nil
	// Best effort: failing to clear must not block the render.
	_ = m.save(c, id, rec)
	return flash
}

// load returns the current session record, creating a fresh anonymous one
// when the client has none. The cookie is (re)issued on the next save.
func (m *Manager) load(c *gin.Context) (string, *record, error) {
	if id, err := c.Cookie(m.cookieName); err == nil && id != "" {
		if rec, err := m.get(c.Request.Context(), id); err == nil {
			return id, rec, nil
		}
		// Stale cookie pointing at an expired record: reissue below.
	}

	id, err := newSessionID()
	if err != nil {
		return "", nil, err
	}
	return id, &record{CreatedAt: time.Now()}, nil
}

func (m *Manager) get(ctx context.Context, id string) (*record, error) {
	data, err := m.rdb.Get(ctx, m.sessionKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &rec, nil
}

func (m *Manager) save(c *gin.Context, id string, rec *record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := m.rdb.Set(c.Request.Context(), m.sessionKey(id), data, m.ttl).Err(); err != nil {
		return err
	}
	c.SetCookie(m.cookieName, id, int(m.ttl.Seconds()), "/", "", false, true)
	return nil
}
