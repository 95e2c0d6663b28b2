package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// SessionManager holds browser sessions in memory, keyed by token.
// Sessions roll: a lookup past the halfway point of the TTL renews the
// session, so active users stay logged in while idle sessions expire.
type SessionManager struct {
	mu           sync.Mutex
	ttl          time.Duration
	sessions     map[string]*session
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type session struct {
	username  string
	expiresAt time.Time
}

// NewSessionManager creates a manager and starts its periodic cleanup.
func NewSessionManager(ttl time.Duration) *SessionManager {
	m := &SessionManager{
		ttl:         ttl,
		sessions:    make(map[string]*session),
		stopCleanup: make(chan struct{}),
	}
	go m.startCleanup()
	return m
}

// Create issues a new session token for the given username.
func (m *SessionManager) Create(username string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = &session{username: username, expiresAt: time.Now().Add(m.ttl)}
	return token, nil
}

// Lookup resolves a token to its username, renewing the session when it
// is in the second half of its lifetime.
func (m *SessionManager) Lookup(token string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return "", false
	}
	now := time.Now()
	if now.After(s.expiresAt) {
		delete(m.sessions, token)
		return "", false
	}
	if s.expiresAt.Sub(now) < m.ttl/2 {
		s.expiresAt = now.Add(m.ttl)
	}
	return s.username, true
}

// Delete removes a session, e.g. on logout.
func (m *SessionManager) Delete(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// DeleteUser removes every session of a username, used after a password
// reset.
func (m *SessionManager) DeleteUser(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, s := range m.sessions {
		if s.username == username {
			delete(m.sessions, token)
		}
	}
}

// Close stops the cleanup goroutine.
func (m *SessionManager) Close() {
	m.shutdownOnce.Do(func() {
		close(m.stopCleanup)
	})
}

func (m *SessionManager) startCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanExpired()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *SessionManager) cleanExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for token, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, token)
		}
	}
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
