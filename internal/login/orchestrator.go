// Login orchestration over one browser context.
//
// EnsureLoggedIn is idempotent and called before every posting or
// monitoring action. The cookie fast path avoids exposing the account to
// a challenge at all; everything below it is fallback.

package login

import (
	"fmt"
	"log"

	"go-fbauto-automation/internal/challenge"
	"go-fbauto-automation/internal/session"
)

const (
	desktopHome  = "https://www.facebook.com/"
	mobileHome   = "https://m.facebook.com/"
	mobileLogin  = "https://m.facebook.com/login/"
	desktopLogin = "https://www.facebook.com/login"
)

// Selectors for the login form. Mobile and desktop variants are folded
// into one comma list each; the first visible match wins.
var loginSelectors = struct {
	Email    []string
	Password []string
	Submit   []string
}{
	Email:    []string{`input#email`, `input[name="email"]`, `input[type="email"]`},
	Password: []string{`input#pass`, `input[name="pass"]`, `input[type="password"]`},
	Submit: []string{
		`button[name="login"]`,
		`button[type="submit"]`,
		`[data-testid="royal_login_button"]`,
	},
}

// Credentials identify one automated account. Supplied from config,
// never persisted.
type Credentials struct {
	AccountID string
	Email     string
	Password  string
}

// Driver extends the challenge page surface with the login-specific
// operations. The playwright implementation is in driver.go.
type Driver interface {
	challenge.DOMDriver
	// NavigateAndSettle applies the environment-sensitive wait strategy:
	// production favors domcontentloaded plus a tolerant network-idle
	// wait, elsewhere a plain full-load wait.
	NavigateAndSettle(url string, production bool) error
	FillFirst(selectors []string, value string) bool
	PressEnter()
	ClearCookies()
	ApplyFingerprint() error
}

// CookieStore is the jar persistence the orchestrator needs.
type CookieStore interface {
	Save(ctx session.CookieContext, accountID string) error
	Load(ctx session.CookieContext, accountID string) bool
}

// Resolver handles a detected challenge.
type Resolver interface {
	Resolve(drv challenge.DOMDriver) bool
}

type Orchestrator struct {
	store      CookieStore
	challenges Resolver
	production bool
}

func NewOrchestrator(store CookieStore, challenges Resolver, production bool) *Orchestrator {
	return &Orchestrator{store: store, challenges: challenges, production: production}
}

// EnsureLoggedIn leaves the context authenticated and the jar refreshed,
// or reports failure after the cookie path, a fresh login and challenge
// handling have all been exhausted. Navigation timeouts along the way
// select fallback paths instead of propagating. The boolean mirrors the
// error: (true, nil) on success, (false, err) otherwise.
func (o *Orchestrator) EnsureLoggedIn(drv Driver, cctx session.CookieContext, creds Credentials) (bool, error) {
	log.Printf("🔑 Ensuring login for: %s", creds.AccountID)

	if err := drv.ApplyFingerprint(); err != nil {
		log.Printf("⚠️ Could not install fingerprint overrides: %v", err)
	}

	if o.store.Load(cctx, creds.AccountID) {
		ok, landed := o.tryCookiePath(drv, cctx, creds)
		if ok {
			return true, nil
		}
		if landed {
			//cookies navigated fine but did not authenticate: distrust them
			log.Println("⚠️ Cookies expired or invalid, falling back to fresh login...")
			drv.ClearCookies()
		}
	}

	o.freshLogin(drv, cctx, creds)

	return o.finalValidation(drv, cctx, creds)
}

// tryCookiePath returns (authenticated, navigationSucceeded).
func (o *Orchestrator) tryCookiePath(drv Driver, cctx session.CookieContext, creds Credentials) (bool, bool) {
	if err := drv.NavigateAndSettle(desktopHome, o.production); err != nil {
		log.Printf("❌ Navigation error on cookie path: %v", err)
		return false, false
	}

	if drv.LoggedInQuorum() {
		log.Println("✅ Already logged in via cookies")
		o.saveCookies(cctx, creds)
		return true, true
	}

	//DOM heuristics can be stale right after navigation; the explicit
	//cookie-name test gets the final word
	if drv.HasSession() {
		log.Println("✅ Session cookies present, trusting them")
		o.saveCookies(cctx, creds)
		return true, true
	}

	return false, true
}

func (o *Orchestrator) freshLogin(drv Driver, cctx session.CookieContext, creds Credentials) {
	log.Println("🔐 Proceeding with fresh login...")

	//the mobile login page is the lower-friction path
	if err := drv.NavigateAndSettle(mobileLogin, false); err != nil {
		log.Printf("⚠️ Mobile login navigation failed: %v", err)
		if err := drv.Navigate(desktopLogin); err != nil {
			log.Printf("❌ Desktop login navigation failed too: %v", err)
			return
		}
	}
	drv.Pause(2000, 3000)

	//a redirect may have attached a live session before the form renders
	if drv.HasSession() {
		log.Println("✅ Session already active, no login form needed")
		o.saveCookies(cctx, creds)
		return
	}

	if !drv.FillFirst(loginSelectors.Email, creds.Email) {
		log.Println("⚠️ Could not locate email field")
	}
	drv.Pause(800, 1200)
	if !drv.FillFirst(loginSelectors.Password, creds.Password) {
		log.Println("⚠️ Could not locate password field")
	}
	drv.Pause(800, 1200)

	if _, ok := drv.ClickFirstVisible(loginSelectors.Submit); !ok {
		log.Println("⌨️ Login button not found, trying Enter key...")
		drv.PressEnter()
	}
	drv.Pause(4000, 4000)

	content, err := drv.Content()
	if err == nil && challenge.IsChallengePage(content) {
		log.Println("⚠️ Challenge detected, attempting resolution...")
		resolved := o.challenges.Resolve(drv)
		if !resolved {
			log.Println("⚠️ Challenge not confirmed resolved, re-validating anyway")
		}
	}
}

// finalValidation re-navigates to the landing page, desktop then mobile,
// and recomputes the quorum. Cookies are persisted best-effort either way.
func (o *Orchestrator) finalValidation(drv Driver, cctx session.CookieContext, creds Credentials) (bool, error) {
	for _, url := range []string{desktopHome, mobileHome} {
		if err := drv.NavigateAndSettle(url, o.production); err != nil {
			log.Printf("⚠️ Validation navigation error: %v", err)
			continue
		}

		if drv.LoggedInQuorum() || drv.HasSession() {
			log.Println("✅ Login successful")
			o.saveCookies(cctx, creds)
			return true, nil
		}
	}

	//keep whatever partial state exists for the next attempt
	o.saveCookies(cctx, creds)
	return false, fmt.Errorf("login session not established for %s", creds.AccountID)
}

func (o *Orchestrator) saveCookies(cctx session.CookieContext, creds Credentials) {
	if err := o.store.Save(cctx, creds.AccountID); err != nil {
		log.Printf("⚠️ Cookie refresh failed: %v", err)
	}
}
