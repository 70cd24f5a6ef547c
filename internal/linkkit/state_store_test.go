package linkkit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryFlowStateStoreIssueAndRedeem(t *testing.T) {
	t.Parallel()
	store := NewMemoryFlowStateStore(2 * time.Minute).(*memoryFlowStateStore)
	store.now = func() time.Time { return time.Unix(1000, 0) }

	state, err := store.Issue(context.Background(), "resume-classic")
	if err != nil {
		t.Fatalf("issue state: %v", err)
	}
	if state == "" {
		t.Fatalf("expected state token")
	}

	templateID, err := store.Redeem(context.Background(), state)
	if err != nil {
		t.Fatalf("redeem state: %v", err)
	}
	if templateID != "resume-classic" {
		t.Fatalf("expected bound template, got %q", templateID)
	}

	if _, err := store.Redeem(context.Background(), state); err != ErrStateNotFound {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
}

func TestMemoryFlowStateStoreRejectsEmptyTemplateID(t *testing.T) {
	t.Parallel()
	store := NewMemoryFlowStateStore(time.Minute)

	if _, err := store.Issue(context.Background(), ""); err != ErrEmptyTemplateID {
		t.Fatalf("expected ErrEmptyTemplateID, got %v", err)
	}
}

func TestMemoryFlowStateStoreExpiry(t *testing.T) {
	t.Parallel()
	store := NewMemoryFlowStateStore(time.Minute).(*memoryFlowStateStore)
	current := time.Unix(1000, 0)
	store.now = func() time.Time { return current }

	state, err := store.Issue(context.Background(), "resume-classic")
	if err != nil {
		t.Fatalf("issue state: %v", err)
	}

	current = current.Add(2 * time.Minute)

	if _, err := store.Redeem(context.Background(), state); err != ErrStateExpired {
		t.Fatalf("expected ErrStateExpired, got %v", err)
	}

	if _, err := store.Redeem(context.Background(), state); err != ErrStateNotFound {
		t.Fatalf("expected ErrStateNotFound after expiry, got %v", err)
	}
}

func TestMemoryFlowStateStoreUnknownState(t *testing.T) {
	t.Parallel()
	store := NewMemoryFlowStateStore(time.Minute)

	if _, err := store.Redeem(context.Background(), "never-issued"); err != ErrStateNotFound {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
}

func TestMemoryFlowStateStoreIndependentTokens(t *testing.T) {
	t.Parallel()
	store := NewMemoryFlowStateStore(time.Minute).(*memoryFlowStateStore)
	store.now = func() time.Time { return time.Unix(1000, 0) }

	first, err := store.Issue(context.Background(), "resume-classic")
	if err != nil {
		t.Fatalf("issue first state: %v", err)
	}
	second, err := store.Issue(context.Background(), "resume-modern")
	if err != nil {
		t.Fatalf("issue second state: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct state tokens")
	}

	templateID, err := store.Redeem(context.Background(), second)
	if err != nil {
		t.Fatalf("redeem second state: %v", err)
	}
	if templateID != "resume-modern" {
		t.Fatalf("expected second template, got %q", templateID)
	}

	templateID, err = store.Redeem(context.Background(), first)
	if err != nil {
		t.Fatalf("redeem first state: %v", err)
	}
	if templateID != "resume-classic" {
		t.Fatalf("expected first template, got %q", templateID)
	}
}
