package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeManual2FAForcesVisibleBrowser(t *testing.T) {
	m := NewMode(true, false)
	assert.True(t, m.Headless())

	m.SetManual2FA(true)
	assert.False(t, m.Headless(), "manual 2FA needs a window a human can see")
	assert.True(t, m.Manual2FA())

	m.SetManual2FA(false)
	assert.True(t, m.Headless())
}

func TestModeHeadlessOffStaysOff(t *testing.T) {
	m := NewMode(false, false)
	assert.False(t, m.Headless())
	m.SetManual2FA(true)
	assert.False(t, m.Headless())
}
