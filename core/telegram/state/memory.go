package state

import (
	"context"
	"sync"
)

type memoryTracker struct {
	mu    sync.RWMutex
	convs map[int64]Conversation
}

// NewMemoryTracker constructs an in-memory Tracker for tests and single-process deployments.
func NewMemoryTracker() Tracker {
	return &memoryTracker{
		convs: make(map[int64]Conversation),
	}
}

// Get returns the conversation for a user, or an idle one if none exists.
func (m *memoryTracker) Get(_ context.Context, userID int64) (Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if conv, ok := m.convs[userID]; ok {
		return conv, nil
	}
	return idle(), nil
}

// Set replaces the conversation for a user.
func (m *memoryTracker) Set(_ context.Context, userID int64, conv Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conv.State == "" {
		conv.State = StateIdle
	}
	m.convs[userID] = conv
	return nil
}

// Clear removes the conversation for a user.
func (m *memoryTracker) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.convs, userID)
	return nil
}
