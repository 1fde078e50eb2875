package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePage struct {
	requestedPaths []string
	fullPage       bool
	err            error
}

func (f *fakePage) Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error) {
	for _, opt := range options {
		if opt.Path != nil {
			f.requestedPaths = append(f.requestedPaths, *opt.Path)
		}
		if opt.FullPage != nil {
			f.fullPage = *opt.FullPage
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte{}, nil
}

func TestCaptureWritesTimestampedPNGUnderDir(t *testing.T) {
	dir := t.TempDir()
	dbg := NewScreenShotDebugger(dir)
	page := &fakePage{}

	err := dbg.CaptureAndLog(page, "login_failure", "capturing")
	require.NoError(t, err)
	require.Len(t, page.requestedPaths, 1)

	target := page.requestedPaths[0]
	assert.Equal(t, dir, filepath.Dir(target))
	assert.True(t, strings.HasPrefix(filepath.Base(target), "login_failure_"))
	assert.True(t, strings.HasSuffix(target, ".png"))
	assert.True(t, page.fullPage, "captures are full page")
}

func TestCapturePropagatesScreenshotError(t *testing.T) {
	dbg := NewScreenShotDebugger(t.TempDir())
	page := &fakePage{err: fmt.Errorf("target closed")}

	err := dbg.CaptureAndLog(page, "login_failure", "capturing")
	assert.Error(t, err)
}
