// Package session is the single owner of the signed-in identity. Pages and the
// role guard read it; only successful authentication writes it.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/pgxstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"leavedesk/internal/auth"
	"leavedesk/internal/platform/config"
	"leavedesk/internal/platform/crypto"
)

const (
	keyUserID    = "user_id"
	keyEmail     = "email"
	keyRole      = "role"
	keyFirstName = "first_name"
	keyToken     = "token"
	keyFlash     = "flash"
	keyFlashKind = "flash_kind"
)

// Identity is what a successful login stores.
type Identity struct {
	UserID    string
	Email     string
	Role      auth.Role
	FirstName string
	// Token is the backend credential, sent on API calls made for this user.
	Token string
}

func (i Identity) User() auth.UserContext {
	return auth.UserContext{UserID: i.UserID, Email: i.Email, Role: i.Role, FirstName: i.FirstName}
}

type Manager struct {
	*scs.SessionManager
	// Sealer encrypts the backend token before it is written to the store.
	Sealer *crypto.Sealer
}

// New configures cookies from cfg and picks the store: Redis when REDIS_URL is
// set, otherwise the sessions table in Postgres. A nil pool with no Redis URL
// falls back to an in-memory store.
func New(cfg config.Config, pool *pgxpool.Pool) (*Manager, error) {
	sealer, err := crypto.New(cfg.SessionEncryptionKey)
	if err != nil {
		return nil, err
	}
	sm := scs.New()
	sm.Lifetime = cfg.SessionLifetime
	sm.Cookie.Name = cfg.SessionCookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !cfg.IsDevelopment()

	switch {
	case strings.TrimSpace(cfg.RedisURL) != "":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		sm.Store = goredisstore.New(redis.NewClient(opts))
	case pool != nil:
		sm.Store = pgxstore.New(pool)
	default:
		sm.Store = memstore.New()
	}
	return &Manager{SessionManager: sm, Sealer: sealer}, nil
}

// NewMemory is an in-memory manager for tests and single-process development.
func NewMemory() *Manager {
	sm := scs.New()
	sm.Store = memstore.New()
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return &Manager{SessionManager: sm}
}

// Login renews the session token before storing the identity.
func (m *Manager) Login(ctx context.Context, id Identity) error {
	if err := m.RenewToken(ctx); err != nil {
		return err
	}
	token, err := m.Sealer.Seal(id.Token)
	if err != nil {
		return err
	}
	m.Put(ctx, keyUserID, id.UserID)
	m.Put(ctx, keyEmail, id.Email)
	m.Put(ctx, keyRole, string(id.Role))
	m.Put(ctx, keyFirstName, id.FirstName)
	m.Put(ctx, keyToken, token)
	return nil
}

func (m *Manager) Logout(ctx context.Context) error {
	return m.Destroy(ctx)
}

// Identity returns the stored identity; ok is false when nobody is signed in
// or the stored role is not one we know.
func (m *Manager) Identity(ctx context.Context) (Identity, bool) {
	id := Identity{
		UserID:    m.GetString(ctx, keyUserID),
		Email:     m.GetString(ctx, keyEmail),
		Role:      auth.Role(m.GetString(ctx, keyRole)),
		FirstName: m.GetString(ctx, keyFirstName),
	}
	if id.UserID == "" || !id.Role.Valid() {
		return Identity{}, false
	}
	token, err := m.Sealer.Open(m.GetString(ctx, keyToken))
	if err != nil {
		return Identity{}, false
	}
	id.Token = token
	return id, true
}

// Role is the raw stored role, which may be empty or unknown.
func (m *Manager) Role(ctx context.Context) auth.Role {
	return auth.Role(m.GetString(ctx, keyRole))
}

func (m *Manager) FirstName(ctx context.Context) string {
	if name := m.GetString(ctx, keyFirstName); name != "" {
		return name
	}
	return "User"
}

func (m *Manager) Flash(ctx context.Context, kind, message string) {
	m.Put(ctx, keyFlashKind, kind)
	m.Put(ctx, keyFlash, message)
}

func (m *Manager) PopFlash(ctx context.Context) (kind, message string) {
	return m.PopString(ctx, keyFlashKind), m.PopString(ctx, keyFlash)
}

// Key scopes a de-duplication key to the current session and the submitted
// values, so only identical submissions from the same browser coalesce.
func (m *Manager) Key(ctx context.Context, form string, values ...string) string {
	h := sha256.New()
	h.Write([]byte(m.Token(ctx)))
	for _, v := range values {
		h.Write([]byte{0})
		h.Write([]byte(v))
	}
	return form + ":" + hex.EncodeToString(h.Sum(nil))
}
