package prompts

import (
	"sync"

	"github.com/agentic-etl/etl-backend/pkg/service"
)

// ModeState holds the current prompt-assembly mode. It is read on every
// conversation start and written by the mode-switch endpoint.
type ModeState struct {
	mu   sync.RWMutex
	mode service.Mode
}

func NewModeState(initial service.Mode) *ModeState {
	return &ModeState{
		mode: initial,
	}
}

func (m *ModeState) Current() service.Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.mode
}

// Set returns the previous mode along with whether the mode changed.
func (m *ModeState) Set(mode service.Mode) (service.Mode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.mode
	m.mode = mode

	return previous, previous != mode
}
