package challenge

import (
	"go-fbauto-automation/internal/browser"
	"go-fbauto-automation/internal/session"

	"github.com/playwright-community/playwright-go"
)

// PageDriver adapts a live playwright page to the DOMDriver surface.
type PageDriver struct {
	page      playwright.Page
	bctx      session.CookieContext
	validator *session.Validator
}

func NewPageDriver(page playwright.Page, bctx session.CookieContext, validator *session.Validator) *PageDriver {
	if validator == nil {
		validator = session.NewValidator()
	}
	return &PageDriver{page: page, bctx: bctx, validator: validator}
}

func (d *PageDriver) Content() (string, error) {
	return d.page.Content()
}

func (d *PageDriver) CurrentURL() string {
	return d.page.URL()
}

func (d *PageDriver) Navigate(url string) error {
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	})
	return err
}

// CheckFirstVisible checks the first visible control among selectors.
// Returns the selector that matched.
func (d *PageDriver) CheckFirstVisible(selectors []string) (string, bool) {
	for _, sel := range selectors {
		loc := d.page.Locator(sel).First()
		visible, err := loc.IsVisible()
		if err != nil || !visible {
			continue
		}
		if err := loc.Check(playwright.LocatorCheckOptions{
			Timeout: playwright.Float(2000),
		}); err != nil {
			continue
		}
		return sel, true
	}
	return "", false
}

// ClickFirstVisible clicks the first visible element among selectors.
func (d *PageDriver) ClickFirstVisible(selectors []string) (string, bool) {
	for _, sel := range selectors {
		loc := d.page.Locator(sel).First()
		visible, err := loc.IsVisible()
		if err != nil || !visible {
			continue
		}
		if err := loc.Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(2000),
		}); err != nil {
			continue
		}
		return sel, true
	}
	return "", false
}

func (d *PageDriver) HasVisible(selector string) bool {
	visible, err := d.page.Locator(selector).First().IsVisible()
	return err == nil && visible
}

func (d *PageDriver) LoggedInQuorum() bool {
	return d.validator.IsLoggedInByDOM(d.page)
}

func (d *PageDriver) HasSession() bool {
	return session.HasSession(d.bctx)
}

func (d *PageDriver) Pause(min, max int) {
	browser.HumanPause(min, max)
}

// Page exposes the underlying playwright page for callers that need the
// full API after login completes.
func (d *PageDriver) Page() playwright.Page {
	return d.page
}
