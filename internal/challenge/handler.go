// Checkpoint / two-factor challenge handling.
//
// Facebook interrupts an automated login with a verification page in
// unpredictable shapes. The handler walks a fixed sequence of best-effort
// bypass strategies over one page; each strategy may fail freely and the
// next one runs anyway. The handler itself never returns an error - it
// answers "resolved or not" and leaves the decision to the caller.

package challenge

import (
	"log"
	"strings"
	"time"
)

// DOMDriver is the page surface the handler drives. The playwright
// implementation lives in driver.go; tests substitute fakes.
type DOMDriver interface {
	Content() (string, error)
	CurrentURL() string
	Navigate(url string) error
	CheckFirstVisible(selectors []string) (string, bool)
	ClickFirstVisible(selectors []string) (string, bool)
	HasVisible(selector string) bool
	LoggedInQuorum() bool
	HasSession() bool
	Pause(min, max int)
}

// Notifier receives operator-facing events. May be nil.
type Notifier interface {
	ChallengeWaiting(url string)
}

var challengeMarkers = []string{"checkpoint", "two_factor"}

// IsChallengePage reports whether rendered page content looks like a
// checkpoint or two-factor interstitial.
func IsChallengePage(content string) bool {
	for _, marker := range challengeMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

// Selectors are the affordances each strategy probes for. The lists are
// data: they chase a third-party UI and are expected to rot.
type Selectors struct {
	TrustDevice   []string
	AutoDismiss   []string
	AlternatePath []string
	CodeInput     string
	EscapeURL     string
}

func DefaultSelectors() Selectors {
	return Selectors{
		TrustDevice: []string{
			`input[name="remember_browser"]`,
			`input[type="checkbox"][value="1"]`,
			`label:has-text("Remember this browser")`,
			`label:has-text("Save device")`,
		},
		AutoDismiss: []string{
			`button[name="__CONFIRM__"]`,
			`#checkpointSubmitButton`,
			`button:has-text("Continue")`,
			`button:has-text("Skip")`,
			`button:has-text("Not now")`,
			`a:has-text("Skip")`,
			`[role="button"]:has-text("Continue")`,
			`[role="button"]:has-text("Skip")`,
			`button[type="submit"]`,
			`input[type="submit"]`,
		},
		AlternatePath: []string{
			`a:has-text("Try another way")`,
			`button:has-text("Try another way")`,
			`a:has-text("Use another method")`,
		},
		CodeInput: `input[name="approvals_code"], input[placeholder*="code" i], input[type="text"][maxlength="8"]`,
		EscapeURL: "https://www.facebook.com/",
	}
}

// Config tunes the bounded manual wait. The upstream deployment used
// between 5 and 10 minutes depending on the variant, so both knobs are
// runtime configuration rather than constants.
type Config struct {
	WaitInterval time.Duration
	WaitAttempts int
	GuardTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		WaitInterval: 10 * time.Second,
		WaitAttempts: 30,
		GuardTimeout: 2 * time.Minute,
	}
}

type Handler struct {
	cfg       Config
	selectors Selectors
	guard     *Guard
	notifier  Notifier
}

func NewHandler(cfg Config, guard *Guard, notifier Notifier) *Handler {
	if cfg.WaitInterval <= 0 {
		cfg.WaitInterval = DefaultConfig().WaitInterval
	}
	if cfg.WaitAttempts <= 0 {
		cfg.WaitAttempts = DefaultConfig().WaitAttempts
	}
	if cfg.GuardTimeout <= 0 {
		cfg.GuardTimeout = DefaultConfig().GuardTimeout
	}
	if guard == nil {
		guard = NewGuard()
	}
	return &Handler{
		cfg:       cfg,
		selectors: DefaultSelectors(),
		guard:     guard,
		notifier:  notifier,
	}
}

// WithSelectors swaps the affordance lists without touching the state
// machine.
func (h *Handler) WithSelectors(s Selectors) *Handler {
	h.selectors = s
	return h
}

// Resolve runs the bypass sequence on a page already identified as a
// challenge. Returns whether the session looks resolved afterwards;
// never panics or errors out.
func (h *Handler) Resolve(drv DOMDriver) bool {
	if !h.guard.TryAcquire() {
		log.Println("⏳ Another run is already handling a challenge, waiting for it...")
		h.guard.WaitForCompletion(h.cfg.GuardTimeout, time.Second)
		//the other run may have fixed the session for us
		return drv.HasSession() || drv.LoggedInQuorum()
	}
	defer h.guard.Release()

	log.Println("🤖 Attempting automatic challenge handling...")
	drv.Pause(3000, 5000)

	h.trustDevice(drv)

	if h.autoDismiss(drv) {
		log.Println("✅ Challenge dismissed automatically")
		return true
	}

	if h.alternatePath(drv) {
		log.Println("✅ Challenge resolved via alternate method")
		return true
	}

	if h.forcedNavigation(drv) {
		log.Println("✅ Escaped challenge by direct navigation")
		return true
	}

	if drv.HasVisible(h.selectors.CodeInput) {
		//A verification code prompt is a hard stop. Guessing codes is
		//off the table; a human has to type it.
		log.Println("🔐 Verification code input detected, human required")
	}

	return h.manualWait(drv)
}

// trustDevice checks any "remember this browser" control it can find so
// future logins challenge less often. Purely opportunistic.
func (h *Handler) trustDevice(drv DOMDriver) {
	if name, ok := drv.CheckFirstVisible(h.selectors.TrustDevice); ok {
		log.Printf("🔐 Enabled trust-device control: %s", name)
		drv.Pause(1000, 2000)
	}
}

// autoDismiss clicks through the prioritized Continue/Skip affordances,
// re-running the quorum vote after every click.
func (h *Handler) autoDismiss(drv DOMDriver) bool {
	for _, sel := range h.selectors.AutoDismiss {
		name, ok := drv.ClickFirstVisible([]string{sel})
		if !ok {
			continue
		}
		log.Printf("🎯 Clicked challenge affordance: %s", name)
		drv.Pause(2000, 3000)

		if drv.LoggedInQuorum() {
			return true
		}
	}
	return false
}

// alternatePath asks for a different verification method, then retries
// the dismiss pass once.
func (h *Handler) alternatePath(drv DOMDriver) bool {
	name, ok := drv.ClickFirstVisible(h.selectors.AlternatePath)
	if !ok {
		return false
	}
	log.Printf("🔀 Switched verification method via: %s", name)
	drv.Pause(2000, 3000)
	return h.autoDismiss(drv)
}

// forcedNavigation jumps straight to an authenticated-only URL; if the
// challenge does not pull the page back, it was already satisfied.
func (h *Handler) forcedNavigation(drv DOMDriver) bool {
	if err := drv.Navigate(h.selectors.EscapeURL); err != nil {
		return false
	}
	drv.Pause(2000, 3000)

	url := drv.CurrentURL()
	for _, marker := range challengeMarkers {
		if strings.Contains(url, marker) {
			return false
		}
	}
	if strings.Contains(url, "login") {
		return false
	}
	return drv.LoggedInQuorum() || drv.HasSession()
}

// manualWait polls for a human to complete the challenge in the visible
// browser window. Timing out is not fatal: the caller continues with
// whatever session state was achieved.
func (h *Handler) manualWait(drv DOMDriver) bool {
	log.Println("🔧 Waiting for manual challenge completion in the browser window...")
	if h.notifier != nil {
		h.notifier.ChallengeWaiting(drv.CurrentURL())
	}

	interval := int(h.cfg.WaitInterval / time.Millisecond)
	perMinute := int(time.Minute / h.cfg.WaitInterval)
	if perMinute <= 0 {
		perMinute = 1
	}

	for i := 0; i < h.cfg.WaitAttempts; i++ {
		drv.Pause(interval, interval)

		if drv.HasSession() || drv.LoggedInQuorum() {
			log.Println("✅ Challenge completed, continuing...")
			return true
		}

		if i > 0 && i%perMinute == 0 {
			log.Printf("⏳ Still waiting for challenge completion... %d minutes elapsed", i/perMinute)
		}
	}

	log.Println("⚠️ Manual wait timed out, continuing with best-effort session state")
	return false
}
