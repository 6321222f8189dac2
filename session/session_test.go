package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/playvault/server/models"
)

// mockStore records calls and serves loads from a plain map.
type mockStore struct {
	saved   map[string]*Session
	deletes []string
}

func newMockStore() *mockStore {
	return &mockStore{saved: make(map[string]*Session)}
}

func (s *mockStore) Save(_ context.Context, sess *Session) error {
	copied := *sess
	s.saved[sess.Token] = &copied
	return nil
}

func (s *mockStore) Load(_ context.Context, token string) (*Session, error) {
	sess, ok := s.saved[token]
	if !ok {
		return nil, nil
	}
	copied := *sess
	return &copied, nil
}

func (s *mockStore) Delete(_ context.Context, token string) error {
	s.deletes = append(s.deletes, token)
	delete(s.saved, token)
	return nil
}

var testUser = models.UserSummary{ID: 7, Name: "Minh Nguyễn", Username: "minh", DOB: "2000-01-15"}

func TestCreateAndGet(t *testing.T) {
	m := NewManager(nil, time.Hour)

	sess, err := m.Create(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("Create returned empty token")
	}

	got, ok := m.Get(context.Background(), sess.Token)
	if !ok {
		t.Fatal("Get did not find the session")
	}
	if got.UserID != 7 || got.Username != "minh" {
		t.Errorf("unexpected session: %+v", got)
	}
	if got.User() != testUser {
		t.Errorf("User() = %+v, want %+v", got.User(), testUser)
	}
}

func TestGetUnknownToken(t *testing.T) {
	m := NewManager(nil, time.Hour)

	if _, ok := m.Get(context.Background(), "no-such-token"); ok {
		t.Error("Get returned a session for an unknown token")
	}
}

func TestRemove(t *testing.T) {
	store := newMockStore()
	m := NewManager(store, time.Hour)

	sess, err := m.Create(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	m.Remove(context.Background(), sess.Token)
	if _, ok := m.Get(context.Background(), sess.Token); ok {
		t.Error("session still resolvable after Remove")
	}
	if len(store.deletes) != 1 || store.deletes[0] != sess.Token {
		t.Errorf("store deletes = %v, want [%s]", store.deletes, sess.Token)
	}
}

func TestStoreFallbackAcrossManagers(t *testing.T) {
	store := newMockStore()
	first := NewManager(store, time.Hour)

	sess, err := first.Create(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A fresh manager simulates a process restart. The token must still
	// resolve through the store.
	second := NewManager(store, time.Hour)
	got, ok := second.Get(context.Background(), sess.Token)
	if !ok {
		t.Fatal("restarted manager did not recover the session from the store")
	}
	if got.UserID != testUser.ID {
		t.Errorf("recovered session user = %d, want %d", got.UserID, testUser.ID)
	}
	if second.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1 after store fallback", second.ActiveCount())
	}
}

func TestExpiredSessionPurged(t *testing.T) {
	store := newMockStore()
	m := NewManager(store, time.Hour)

	sess, err := m.Create(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	m.mutex.Lock()
	m.sessions[sess.Token].LastActive = time.Now().Add(-2 * time.Hour)
	m.mutex.Unlock()

	if _, ok := m.Get(context.Background(), sess.Token); ok {
		t.Fatal("expired session was still returned")
	}
	if m.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d, want 0 after expiry purge", m.ActiveCount())
	}
	if len(store.deletes) != 1 {
		t.Errorf("expired session was not deleted from the store: %v", store.deletes)
	}
}

func TestGetRefreshesLastActive(t *testing.T) {
	m := NewManager(nil, time.Hour)

	sess, err := m.Create(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	m.mutex.Lock()
	m.sessions[sess.Token].LastActive = time.Now().Add(-30 * time.Minute)
	m.mutex.Unlock()

	got, _ := m.Get(context.Background(), sess.Token)
	if time.Since(got.LastActive) > time.Second {
		t.Error("Get did not refresh LastActive")
	}
}

func TestConcurrentGetsSameToken(t *testing.T) {
	m := NewManager(nil, time.Hour)

	sess, err := m.Create(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Concurrent requests carrying the same token all refresh LastActive.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, ok := m.Get(context.Background(), sess.Token); !ok {
					t.Errorf("Get lost a live session")
					return
				}
			}
		}()
	}
	wg.Wait()

	if m.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1", m.ActiveCount())
	}
}

func TestGetByUserID(t *testing.T) {
	m := NewManager(nil, time.Hour)

	// Two sessions for user 7, one for user 8.
	if _, err := m.Create(context.Background(), testUser); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := m.Create(context.Background(), testUser); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	other := models.UserSummary{ID: 8, Name: "Lan", Username: "lan"}
	if _, err := m.Create(context.Background(), other); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if got := m.GetByUserID(7); len(got) != 2 {
		t.Errorf("GetByUserID(7) returned %d sessions, want 2", len(got))
	}
	if got := m.GetByUserID(9); len(got) != 0 {
		t.Errorf("GetByUserID(9) returned %d sessions, want 0", len(got))
	}
	if m.ActiveCount() != 3 {
		t.Errorf("ActiveCount = %d, want 3", m.ActiveCount())
	}
}
