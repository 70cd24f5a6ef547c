package linkkit

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SessionStore hands imported profiles to the frontend under server-generated
// session identifiers.
type SessionStore interface {
	// Create stores the profile and returns a fresh session identifier.
	Create(ctx context.Context, profile Profile) (string, error)
	// Get returns the profile stored under the session identifier.
	Get(ctx context.Context, sessionID string) (Profile, error)
}

// MemorySessionStore is an in-memory store. Entries live until process exit;
// the frontend is expected to fetch each session shortly after the redirect.
type MemorySessionStore struct {
	mutex    sync.Mutex
	profiles map[string]Profile
}

// NewMemorySessionStore creates an empty session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{profiles: make(map[string]Profile)}
}

// Create stores the profile under a freshly generated identifier.
func (store *MemorySessionStore) Create(ctx context.Context, profile Profile) (string, error) {
	sessionID := uuid.NewString()
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.profiles[sessionID] = profile.clone()
	return sessionID, nil
}

// Get looks up the profile for a session identifier.
func (store *MemorySessionStore) Get(ctx context.Context, sessionID string) (Profile, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	profile, ok := store.profiles[sessionID]
	if !ok {
		return Profile{}, ErrSessionNotFound
	}
	return profile.clone(), nil
}
