package sessions

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/buildwithgo/lungo/addons/cache"
)

// Session holds the data bound to one session ID.
// T is the type of data stored in the session.
type Session[T any] struct {
	ID    string
	Data  T
	store Store[T]
	isNew bool
}

// IsNew reports whether the session was freshly minted rather than loaded
// from the store.
func (s *Session[T]) IsNew() bool {
	return s.isNew
}

// Get retrieves a value when T is map[string]interface{}. For typed
// sessions, use Data directly.
func (s *Session[T]) Get(key string) interface{} {
	if m, ok := any(s.Data).(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// Set stores a value when T is map[string]interface{}, initializing the
// map on first use. It is a no-op for typed sessions.
func (s *Session[T]) Set(key string, value interface{}) {
	m, ok := any(s.Data).(map[string]interface{})
	if !ok && any(s.Data) != nil {
		return
	}
	if m == nil {
		m = make(map[string]interface{})
		if _, ok := any(m).(T); !ok {
			return
		}
	}
	m[key] = value
	s.Data = any(m).(T)
}

// Save persists the session to its store.
func (s *Session[T]) Save() error {
	return s.store.Save(s)
}

// Store loads, saves and deletes sessions.
type Store[T any] interface {
	Get(id string) (*Session[T], error)
	Save(session *Session[T]) error
	Delete(id string) error
	NewSession() *Session[T]
	CookieConfig() (name string, ttl time.Duration)
}

// Provider is an alias kept for readability at call sites that configure
// the middleware.
type Provider[T any] interface {
	Store[T]
}

// Manager is the default Store, persisting session data through a
// cache.Cache backend.
type Manager[T any] struct {
	cookieName string
	ttl        time.Duration
	cache      cache.Cache
}

// New creates a manager with map[string]interface{} data, the most common
// shape for untyped session use.
func New(cache cache.Cache, cookieName string, ttl time.Duration) *Manager[map[string]interface{}] {
	return NewManager[map[string]interface{}](cache, cookieName, ttl)
}

// NewManager creates a manager for an arbitrary data type.
func NewManager[T any](cache cache.Cache, cookieName string, ttl time.Duration) *Manager[T] {
	return &Manager[T]{
		cache:      cache,
		cookieName: cookieName,
		ttl:        ttl,
	}
}

// CookieConfig returns the cookie name and lifetime used by the middleware.
func (m *Manager[T]) CookieConfig() (string, time.Duration) {
	return m.cookieName, m.ttl
}

// Get loads the session for an ID, or mints a fresh one when the ID is
// unknown or the cached value has the wrong type.
func (m *Manager[T]) Get(id string) (*Session[T], error) {
	val, ok := m.cache.Get(id)
	if !ok {
		return m.NewSession(), nil
	}

	data, ok := val.(T)
	if !ok {
		return m.NewSession(), nil
	}

	return &Session[T]{
		ID:    id,
		Data:  data,
		store: m,
	}, nil
}

// Save persists the session data under its ID.
func (m *Manager[T]) Save(s *Session[T]) error {
	m.cache.Set(s.ID, s.Data, m.ttl)
	return nil
}

// Delete removes the session from the backend.
func (m *Manager[T]) Delete(id string) error {
	m.cache.Delete(id)
	return nil
}

// NewSession mints a session with a random URL-safe ID and zero-value data.
func (m *Manager[T]) NewSession() *Session[T] {
	var data T
	return &Session[T]{
		ID:    newSessionID(),
		Data:  data,
		store: m,
		isNew: true,
	}
}

func newSessionID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms; a broken
		// entropy source must not silently yield guessable IDs.
		panic("sessions: reading random session id: " + err.Error())
	}
	return base64.URLEncoding.EncodeToString(b)
}
