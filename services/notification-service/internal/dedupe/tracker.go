// Package dedupe keeps, per recipient, the last booking status that
// recipient has been notified about.
package dedupe

import (
	"context"
	"sync"
)

// Tracker records a status and reports the one it replaced ("" when none).
type Tracker interface {
	Swap(ctx context.Context, audience, userID, bookingID, status string) (string, error)
	Clear(ctx context.Context, userID string, audiences ...string) error
}

func key(audience, userID string) string {
	return "notify:seen:" + audience + ":" + userID
}

// Memory is the fallback Tracker when Redis is not configured. State is
// lost on restart.
type Memory struct {
	mu   sync.Mutex
	seen map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{seen: map[string]map[string]string{}}
}

func (m *Memory) Swap(_ context.Context, audience, userID, bookingID, status string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(audience, userID)
	h, ok := m.seen[k]
	if !ok {
		h = map[string]string{}
		m.seen[k] = h
	}
	prev := h[bookingID]
	h[bookingID] = status
	return prev, nil
}

func (m *Memory) Clear(_ context.Context, userID string, audiences ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range audiences {
		delete(m.seen, key(a, userID))
	}
	return nil
}
