package automation

import "sync"

// Mode is the runtime browser-mode switch. Manual-2FA mode forces a
// visible browser window so a human can complete a checkpoint; it is
// flipped through the admin API, not the environment.
type Mode struct {
	mu        sync.Mutex
	headless  bool
	manual2FA bool
}

func NewMode(headless, manual2FA bool) *Mode {
	return &Mode{headless: headless, manual2FA: manual2FA}
}

// Headless reports the effective headless setting. Manual-2FA wins.
func (m *Mode) Headless() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.headless && !m.manual2FA
}

func (m *Mode) Manual2FA() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.manual2FA
}

func (m *Mode) SetManual2FA(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manual2FA = enabled
}
