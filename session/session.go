// session/session.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playvault/server/models"
)

// Session is one logged-in identity, keyed by its opaque access token.
// The token carries no meaning beyond the lookup.
type Session struct {
	Token      string    `json:"token"`
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	DOB        string    `json:"dob"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// User returns the summary embedded in the session.
func (s *Session) User() models.UserSummary {
	return models.UserSummary{
		ID:       s.UserID,
		Name:     s.Name,
		Username: s.Username,
		DOB:      s.DOB,
	}
}

// Store persists sessions outside process memory so logins survive
// restarts. Implementations set their own expiry matching the manager TTL.
type Store interface {
	Save(ctx context.Context, sess *Session) error
	Load(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// Manager keeps active sessions in memory with write-through to an
// optional Store.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
	store    Store
	ttl      time.Duration
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		ttl:      ttl,
	}
}

// Create issues a fresh token for the user and registers the session.
func (m *Manager) Create(ctx context.Context, user models.UserSummary) (*Session, error) {
	now := time.Now()
	sess := &Session{
		Token:      uuid.New().String(),
		UserID:     user.ID,
		Name:       user.Name,
		Username:   user.Username,
		DOB:        user.DOB,
		CreatedAt:  now,
		LastActive: now,
	}

	if m.store != nil {
		if err := m.store.Save(ctx, sess); err != nil {
			return nil, err
		}
	}

	m.mutex.Lock()
	m.sessions[sess.Token] = sess
	m.mutex.Unlock()
	return sess, nil
}

// Get resolves a token, falling back to the store for sessions created
// before the last restart. Expired sessions are purged on access. The
// returned session is a snapshot; concurrent requests with the same
// token never share mutable state.
func (m *Manager) Get(ctx context.Context, token string) (*Session, bool) {
	m.mutex.Lock()
	sess, exists := m.sessions[token]
	if !exists {
		m.mutex.Unlock()
		if m.store == nil {
			return nil, false
		}
		loaded, err := m.store.Load(ctx, token)
		if err != nil || loaded == nil {
			return nil, false
		}
		m.mutex.Lock()
		if cached, ok := m.sessions[token]; ok {
			sess = cached
		} else {
			m.sessions[token] = loaded
			sess = loaded
		}
	}

	if m.ttl > 0 && time.Since(sess.LastActive) > m.ttl {
		delete(m.sessions, token)
		m.mutex.Unlock()
		if m.store != nil {
			_ = m.store.Delete(ctx, token)
		}
		return nil, false
	}

	sess.LastActive = time.Now()
	copied := *sess
	m.mutex.Unlock()
	return &copied, true
}

// Remove invalidates a token everywhere. Logout is just this.
func (m *Manager) Remove(ctx context.Context, token string) {
	m.mutex.Lock()
	delete(m.sessions, token)
	m.mutex.Unlock()

	if m.store != nil {
		_ = m.store.Delete(ctx, token)
	}
}

// GetByUserID returns every live session belonging to one user.
func (m *Manager) GetByUserID(userID int64) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, sess := range m.sessions {
		if sess.UserID == userID {
			result = append(result, sess)
		}
	}
	return result
}

// ActiveCount reports the number of in-memory sessions, for metrics.
func (m *Manager) ActiveCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
