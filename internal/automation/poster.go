package automation

import (
	"fmt"
	"log"

	"go-fbauto-automation/internal/browser"

	"github.com/playwright-community/playwright-go"
)

// Composer affordances. Selector lists are data chasing a third-party
// UI; ordered most-specific first.
var posterSelectors = struct {
	ComposerTrigger []string
	ComposerBox     []string
	SubmitButton    []string
}{
	ComposerTrigger: []string{
		`[role="button"]:has-text("Write something")`,
		`[role="button"]:has-text("What's on your mind")`,
		`div[role="button"]:has-text("Create a public post")`,
	},
	ComposerBox: []string{
		`div[role="dialog"] div[role="textbox"][contenteditable="true"]`,
		`div[role="textbox"][contenteditable="true"]`,
	},
	SubmitButton: []string{
		`div[role="dialog"] div[aria-label="Post"][role="button"]`,
		`div[aria-label="Post"][role="button"]`,
		`button:has-text("Post")`,
	},
}

// PostToGroup publishes one message into one group and tries to recover
// the resulting post URL. Returns an error only when the post could not
// be submitted at all; a missing post URL is not a failure.
func PostToGroup(page playwright.Page, groupURL, message string) (string, error) {
	log.Printf("🏢 Opening group: %s", groupURL)
	if _, err := page.Goto(groupURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(45000),
	}); err != nil {
		return "", fmt.Errorf("failed to open group: %w", err)
	}

	browser.HumanPause(2000, 4000)
	browser.MouseJiggle(page)
	browser.SmoothScroll(page)

	if !clickFirst(page, posterSelectors.ComposerTrigger, 5000) {
		return "", fmt.Errorf("composer not found in group %s", groupURL)
	}
	browser.HumanPause(1500, 2500)

	filled := false
	for _, sel := range posterSelectors.ComposerBox {
		loc := page.Locator(sel).First()
		if err := loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}); err != nil {
			continue
		}
		//contenteditable boxes take keyboard input more reliably than Fill
		if err := page.Keyboard().Type(message); err != nil {
			continue
		}
		filled = true
		break
	}
	if !filled {
		return "", fmt.Errorf("composer textbox not found in group %s", groupURL)
	}

	browser.HumanPause(1500, 3000)

	if !clickFirst(page, posterSelectors.SubmitButton, 5000) {
		return "", fmt.Errorf("post button not found in group %s", groupURL)
	}

	//give the feed a moment to render the new post
	browser.HumanPause(4000, 6000)

	postURL := discoverPostURL(page)
	if postURL != "" {
		log.Printf("🔗 Posted: %s", postURL)
	} else {
		log.Println("⚠️ Post submitted but permalink not found")
	}
	return postURL, nil
}

func clickFirst(page playwright.Page, selectors []string, timeoutMs float64) bool {
	for _, sel := range selectors {
		loc := page.Locator(sel).First()
		visible, err := loc.IsVisible()
		if err != nil || !visible {
			continue
		}
		if err := loc.Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(timeoutMs),
		}); err != nil {
			continue
		}
		return true
	}
	return false
}

// discoverPostURL scrapes the newest permalink anchor out of the feed.
func discoverPostURL(page playwright.Page) string {
	res, err := page.Evaluate(`(() => {
		const a = document.querySelector('a[href*="/groups/"][href*="/posts/"], a[href*="/permalink/"]');
		return a ? a.href.split('?')[0] : '';
	})()`)
	if err != nil {
		return ""
	}
	if url, ok := res.(string); ok {
		return url
	}
	return ""
}
