// Package token issues and verifies anti double-submit tokens. A token is
// saved per session and action before a form is rendered; the "token"
// directive then writes it into a hidden input, and the handler receiving the
// submission verifies and consumes it.
package token

import (
	"crypto/subtle"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// None is returned by issuers when no token was saved for an action.
const None = "none"

// DefaultFieldName is the submission field carrying the token.
const DefaultFieldName = "_token"

var (
	// ErrNoToken is returned by Verify when nothing was saved for the action.
	ErrNoToken = errors.New("token: no token saved")
	// ErrMismatch is returned by Verify when the submitted token differs.
	ErrMismatch = errors.New("token: token mismatch")
)

// Issuer returns the pre-issued token for an action identity, or None.
type Issuer interface {
	TokenFor(action string) string
}

// IssuerFunc adapts a function to Issuer.
type IssuerFunc func(action string) string

// TokenFor implements Issuer.
func (fn IssuerFunc) TokenFor(action string) string {
	return fn(action)
}

// Store persists per-session token maps keyed by action.
type Store interface {
	Load(session string) map[string]string
	Save(session string, tokens map[string]string)
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore overrides the default in-memory store.
func WithStore(store Store) Option {
	return func(m *Manager) {
		if store != nil {
			m.store = store
		}
	}
}

// WithGenerator overrides token generation.
func WithGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.generate = fn
		}
	}
}

// Manager saves, looks up and verifies tokens.
type Manager struct {
	mu       sync.Mutex
	store    Store
	generate func() string
}

// NewManager constructs a Manager backed by a MemoryStore unless configured
// otherwise.
func NewManager(options ...Option) *Manager {
	m := &Manager{
		store:    NewMemoryStore(),
		generate: func() string { return uuid.NewString() },
	}
	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Save issues a fresh token for action, replacing any previous one.
func (m *Manager) Save(session, action string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	tokens := cloneTokens(m.store.Load(session))
	value := m.generate()
	tokens[strings.TrimSpace(action)] = value
	m.store.Save(session, tokens)
	return value
}

// Verify checks submitted against the saved token and consumes it on success.
func (m *Manager) Verify(session, action, submitted string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	action = strings.TrimSpace(action)
	tokens := cloneTokens(m.store.Load(session))
	saved, ok := tokens[action]
	if !ok {
		return ErrNoToken
	}
	if subtle.ConstantTimeCompare([]byte(saved), []byte(submitted)) != 1 {
		return ErrMismatch
	}
	delete(tokens, action)
	m.store.Save(session, tokens)
	return nil
}

// Issuer binds the manager to a session for use during a render.
func (m *Manager) Issuer(session string) Issuer {
	return IssuerFunc(func(action string) string {
		m.mu.Lock()
		defer m.mu.Unlock()
		if value, ok := m.store.Load(session)[strings.TrimSpace(action)]; ok && value != "" {
			return value
		}
		return None
	})
}

// MemoryStore keeps tokens in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]map[string]string)}
}

// Load implements Store.
func (s *MemoryStore) Load(session string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTokens(s.sessions[session])
}

// Save implements Store.
func (s *MemoryStore) Save(session string, tokens map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(tokens) == 0 {
		delete(s.sessions, session)
		return
	}
	s.sessions[session] = cloneTokens(tokens)
}

func cloneTokens(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
