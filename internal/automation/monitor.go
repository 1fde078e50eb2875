package automation

import (
	"fmt"
	"log"

	"go-fbauto-automation/internal/browser"

	"github.com/playwright-community/playwright-go"
)

// CommentHit is one comment that matched the interest keywords.
type CommentHit struct {
	Author string
	Text   string
}

var monitorSelectors = struct {
	ReplyButton []string
	ReplyBox    []string
}{
	ReplyButton: []string{
		`li div[role="button"]:has-text("Reply")`,
		`div[role="button"]:has-text("Reply")`,
	},
	ReplyBox: []string{
		`div[contenteditable="true"][role="textbox"]`,
	},
}

// ScanPostComments opens a post and returns the comments that read like
// job inquiries.
func ScanPostComments(page playwright.Page, postURL string) ([]CommentHit, error) {
	if _, err := page.Goto(postURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(45000),
	}); err != nil {
		return nil, fmt.Errorf("failed to open post: %w", err)
	}

	browser.HumanPause(2000, 4000)
	browser.SmoothScroll(page)

	//pull author/text pairs out of the comment articles in one pass
	res, err := page.Evaluate(`(() => {
		const out = [];
		for (const node of document.querySelectorAll('div[role="article"]')) {
			const label = node.getAttribute('aria-label') || '';
			if (!label.toLowerCase().startsWith('comment')) continue;
			const textEl = node.querySelector('div[dir="auto"], span[dir="auto"]');
			const authorEl = node.querySelector('a[role="link"] span');
			out.push({
				author: authorEl ? authorEl.textContent : '',
				text: textEl ? textEl.textContent : '',
			});
		}
		return out;
	})()`)
	if err != nil {
		return nil, fmt.Errorf("failed to extract comments: %w", err)
	}

	var hits []CommentHit
	items, ok := res.([]interface{})
	if !ok {
		return hits, nil
	}
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		author, _ := m["author"].(string)
		text, _ := m["text"].(string)
		if text == "" || !IsInterested(text) {
			continue
		}
		hits = append(hits, CommentHit{Author: author, Text: text})
	}
	return hits, nil
}

// ReplyWithLink posts one reply pointing the commenter at Messenger.
// Best-effort: the reply UI changes often, so a failure only logs.
func ReplyWithLink(page playwright.Page, messengerLink string) bool {
	if messengerLink == "" {
		return false
	}
	if !clickFirst(page, monitorSelectors.ReplyButton, 3000) {
		log.Println("⚠️ Reply button not found, skipping reply")
		return false
	}
	browser.HumanPause(1000, 2000)

	for _, sel := range monitorSelectors.ReplyBox {
		loc := page.Locator(sel).First()
		if err := loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(3000)}); err != nil {
			continue
		}
		reply := fmt.Sprintf("Thanks for your interest! Message us here to apply: %s", messengerLink)
		if err := page.Keyboard().Type(reply); err != nil {
			continue
		}
		if err := page.Keyboard().Press("Enter"); err != nil {
			continue
		}
		return true
	}
	log.Println("⚠️ Reply textbox not found, skipping reply")
	return false
}
