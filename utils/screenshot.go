package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Screenshotter is the page surface a capture needs. playwright.Page
// satisfies it; tests substitute fakes.
type Screenshotter interface {
	Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error)
}

// ScreenShotDebugger drops timestamped full-page captures into one
// directory so a failed login or posting pass can be inspected after
// the fact.
type ScreenShotDebugger struct {
	outputDir string
}

func NewScreenShotDebugger(dir string) *ScreenShotDebugger {
	if dir == "" {
		dir = filepath.Join("logs", "screenshots")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("⚠️ Could not create screenshot dir %s: %v", dir, err)
	}
	return &ScreenShotDebugger{outputDir: dir}
}

// CaptureAndLog writes <name>_<timestamp>.png under the output dir. A
// capture failure is logged and returned but never interrupts the pass.
func (s *ScreenShotDebugger) CaptureAndLog(page Screenshotter, name, message string) error {
	filename := fmt.Sprintf("%s_%s.png", name, time.Now().Format("2006-01-02_15-04-05"))
	target := filepath.Join(s.outputDir, filename)
	log.Printf("📸 %s", message)

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(target),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		log.Printf("⚠️ Failed to capture screenshot: %v", err)
		return err
	}

	log.Printf("   Screenshot saved: %s", target)
	return nil
}
