package browser

import (
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// fingerprintScript masks the usual automation markers before any page
// script runs. The values are deliberately boring mid-range hardware so
// the profile stays consistent from run to run.
const fingerprintScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
delete navigator.__proto__.webdriver;
Object.defineProperty(navigator, 'platform', { get: () => 'iPhone' });
Object.defineProperty(navigator, 'hardwareConcurrency', { get: () => 8 });
Object.defineProperty(navigator, 'deviceMemory', { get: () => 8 });
Object.defineProperty(navigator, 'plugins', {
	get: () => [
		{ name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
		{ name: 'Native Client', filename: 'internal-nacl-plugin', description: 'Native Client' },
	],
});
`

// ApplyFingerprint installs the anti-fingerprinting overrides on a page.
// Must run before the first navigation.
func ApplyFingerprint(page playwright.Page) error {
	return page.AddInitScript(playwright.Script{
		Content: playwright.String(fingerprintScript),
	})
}

// HumanPause waits for a random duration between min and max milliseconds
func HumanPause(min, max int) {
	if min >= max {
		time.Sleep(time.Duration(min) * time.Millisecond)
		return
	}
	duration := time.Duration(rand.Intn(max-min)+min) * time.Millisecond
	time.Sleep(duration)
}

// MouseJiggle simulates random mouse movements to prevent idle detection
func MouseJiggle(page playwright.Page) {
	x := float64(rand.Intn(800) + 100)
	y := float64(rand.Intn(600) + 100)

	page.Mouse().Move(x, y)
	HumanPause(100, 300)
}

// SmoothScroll simulates human scrolling behavior
func SmoothScroll(page playwright.Page) {
	// Scroll down a bit
	page.Mouse().Wheel(0, 500)
	HumanPause(500, 1000)

	// Scroll up a tiny bit (human-like correction)
	page.Mouse().Wheel(0, -200)
	HumanPause(500, 800)

	// Scroll to bottom to trigger lazy loading
	page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
}
