package will

import (
	"context"
	"sync"

	"github.com/AlexZinkM/will-wallet/internal/model"
)

// Manager keeps the one active session used by the HTTP surface
type Manager struct {
	providers Providers
	opts      Options

	mu      sync.Mutex
	current *Session
}

// NewManager creates a manager without an active session
func NewManager(p Providers, opts Options) *Manager {
	return &Manager{providers: p, opts: opts}
}

// Join replaces the active session with one joined at address
func (m *Manager) Join(ctx context.Context, address string) (API, error) {
	s, err := Join(ctx, m.providers, address, m.opts)
	if err != nil {
		return nil, err
	}
	m.swap(s)
	return s, nil
}

// Deploy replaces the active session with a freshly deployed contract
func (m *Manager) Deploy(ctx context.Context, initialOwner string) (API, error) {
	s, err := Deploy(ctx, m.providers, model.PrivateState{}, initialOwner, m.opts)
	if err != nil {
		return nil, err
	}
	m.swap(s)
	return s, nil
}

// Current returns the active session
func (m *Manager) Current() (API, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, false
	}
	return m.current, true
}

func (m *Manager) swap(s *Session) {
	m.mu.Lock()
	prev := m.current
	m.current = s
	m.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}

// Close closes the active session
func (m *Manager) Close() error {
	m.mu.Lock()
	prev := m.current
	m.current = nil
	m.mu.Unlock()
	if prev != nil {
		return prev.Close()
	}
	return nil
}
