package sessions

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the session cookie set on the administrator's browser.
const CookieName = "indica.sid"

// Manager binds Store entries to browsers through a signed cookie.
type Manager struct {
	Store  Store
	TTL    time.Duration
	Secure bool
	secret []byte
	now    func() time.Time
}

// NewManager constructs a Manager. Cookie values are signed with secret.
func NewManager(store Store, secret string, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		Store:  store,
		TTL:    ttl,
		Secure: secure,
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Current returns the session carried by the request. ok is false when the
// cookie is absent, tampered with, or points at no live session.
func (m *Manager) Current(c *gin.Context) (Session, bool) {
	id, ok := m.sessionID(c)
	if !ok {
		return Session{}, false
	}
	s, err := m.Store.Get(c.Request.Context(), id)
	if err != nil {
		return Session{}, false
	}
	return s, true
}

// Authenticate starts a fresh authenticated session for username. Any session
// the browser already carried is discarded so its id cannot be reused.
func (m *Manager) Authenticate(c *gin.Context, username string) error {
	if oldID, ok := m.sessionID(c); ok {
		_ = m.Store.Destroy(c.Request.Context(), oldID)
	}

	id, err := newSessionID()
	if err != nil {
		return err
	}
	now := m.now().UTC()
	s := Session{
		Authenticated: true,
		Username:      username,
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.TTL),
	}
	if err := m.Store.Set(c.Request.Context(), id, s); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	m.writeCookie(c, m.sign(id), int(m.TTL/time.Second))
	return nil
}

// Destroy ends the browser's session and expires its cookie.
func (m *Manager) Destroy(c *gin.Context) error {
	var err error
	if id, ok := m.sessionID(c); ok {
		err = m.Store.Destroy(c.Request.Context(), id)
	}
	m.writeCookie(c, "", -1)
	return err
}

func (m *Manager) sessionID(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		return "", false
	}
	return m.verify(raw)
}

// writeCookie sets the session cookie. Secure deployments serve the admin UI
// from another origin, which needs SameSite=None.
func (m *Manager) writeCookie(c *gin.Context, value string, maxAge int) {
	if m.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(CookieName, value, maxAge, "/", "", m.Secure, true)
}

func (m *Manager) sign(id string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(id))
	return id + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *Manager) verify(value string) (string, bool) {
	id, _, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(value), []byte(m.sign(id))) {
		return "", false
	}
	return id, true
}

func newSessionID() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
