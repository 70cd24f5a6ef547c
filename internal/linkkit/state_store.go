package linkkit

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// FlowStateStore issues one-time state tokens binding a pending authorization
// to the template it was requested for.
type FlowStateStore interface {
	// Issue creates a new state token covering templateID with the configured TTL.
	Issue(ctx context.Context, templateID string) (string, error)
	// Redeem validates and invalidates an issued state token, returning the
	// template identifier it was bound to.
	Redeem(ctx context.Context, state string) (string, error)
}

type pendingAuthorization struct {
	templateID string
	expiresAt  time.Time
}

type memoryFlowStateStore struct {
	mutex     sync.Mutex
	entries   map[string]pendingAuthorization
	ttl       time.Duration
	now       func() time.Time
	tokenSize int
}

// NewMemoryFlowStateStore constructs an in-memory FlowStateStore with the provided TTL.
func NewMemoryFlowStateStore(ttl time.Duration) FlowStateStore {
	return &memoryFlowStateStore{
		entries:   make(map[string]pendingAuthorization),
		ttl:       ttl,
		now:       func() time.Time { return activeClock().Now() },
		tokenSize: 32,
	}
}

func (store *memoryFlowStateStore) Issue(ctx context.Context, templateID string) (string, error) {
	if templateID == "" {
		return "", ErrEmptyTemplateID
	}
	state, err := store.randomState()
	if err != nil {
		return "", err
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.purgeExpiredLocked()
	store.entries[state] = pendingAuthorization{
		templateID: templateID,
		expiresAt:  store.now().Add(store.ttl),
	}
	return state, nil
}

func (store *memoryFlowStateStore) Redeem(ctx context.Context, state string) (string, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	entry, ok := store.entries[state]
	if !ok {
		store.purgeExpiredLocked()
		return "", ErrStateNotFound
	}
	delete(store.entries, state)
	if store.now().After(entry.expiresAt) {
		store.purgeExpiredLocked()
		return "", ErrStateExpired
	}
	store.purgeExpiredLocked()
	return entry.templateID, nil
}

func (store *memoryFlowStateStore) purgeExpiredLocked() {
	if len(store.entries) == 0 {
		return
	}
	now := store.now()
	for state, entry := range store.entries {
		if now.After(entry.expiresAt) {
			delete(store.entries, state)
		}
	}
}

func (store *memoryFlowStateStore) randomState() (string, error) {
	buffer := make([]byte, store.tokenSize)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}
