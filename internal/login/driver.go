package login

import (
	"log"

	"go-fbauto-automation/internal/browser"
	"go-fbauto-automation/internal/challenge"
	"go-fbauto-automation/internal/session"

	"github.com/playwright-community/playwright-go"
)

// PageDriver is the playwright-backed Driver. It embeds the challenge
// page driver so one value serves both the orchestrator and the handler.
type PageDriver struct {
	*challenge.PageDriver
	page playwright.Page
	bctx playwright.BrowserContext
}

func NewPageDriver(page playwright.Page, bctx playwright.BrowserContext, validator *session.Validator) *PageDriver {
	return &PageDriver{
		PageDriver: challenge.NewPageDriver(page, bctx, validator),
		page:       page,
		bctx:       bctx,
	}
}

func (d *PageDriver) NavigateAndSettle(url string, production bool) error {
	if production {
		//conservative sequence: content loaded, then settle, tolerating a
		//network-idle timeout on a page that chats forever
		if _, err := d.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(60000),
		}); err != nil {
			return err
		}
		browser.HumanPause(3000, 5000)
		if err := d.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State:   playwright.LoadStateNetworkidle,
			Timeout: playwright.Float(30000),
		}); err != nil {
			log.Println("⚠️ Network idle timeout, continuing anyway...")
		}
	} else {
		if _, err := d.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateLoad,
			Timeout:   playwright.Float(30000),
		}); err != nil {
			return err
		}
	}
	d.page.WaitForTimeout(2000)
	return nil
}

func (d *PageDriver) FillFirst(selectors []string, value string) bool {
	for _, sel := range selectors {
		loc := d.page.Locator(sel).First()
		if err := loc.Fill(value, playwright.LocatorFillOptions{
			Timeout: playwright.Float(10000),
		}); err != nil {
			continue
		}
		return true
	}
	return false
}

func (d *PageDriver) PressEnter() {
	if err := d.page.Keyboard().Press("Enter"); err != nil {
		log.Printf("⚠️ Enter key press failed: %v", err)
	}
}

func (d *PageDriver) ClearCookies() {
	if err := d.bctx.ClearCookies(); err != nil {
		log.Printf("⚠️ Failed to clear cookies: %v", err)
	}
}

func (d *PageDriver) ApplyFingerprint() error {
	return browser.ApplyFingerprint(d.page)
}
