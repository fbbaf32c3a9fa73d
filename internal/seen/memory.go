package seen

import (
	"context"
	"sync"
)

// Memory is an in-process Store for tests and single-instance deployments.
// Its contents are lost on restart.
type Memory struct {
	mu    sync.RWMutex
	marks map[string]struct{}
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{marks: make(map[string]struct{})}
}

func memKey(subject, flag string) string { return subject + "\x00" + flag }

// Seen implements Store.
func (m *Memory) Seen(_ context.Context, subject, flag string) (bool, error) {
	if err := check(subject, flag); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.marks[memKey(subject, flag)]
	return ok, nil
}

// MarkSeen implements Store.
func (m *Memory) MarkSeen(_ context.Context, subject, flag string) error {
	if err := check(subject, flag); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marks[memKey(subject, flag)] = struct{}{}
	return nil
}
