package session

import (
	"fmt"
	"strings"
)

const (
	userCookieName   = "c_user"
	secretCookieName = "xs"

	// DefaultQuorum is the minimum count of positive DOM indicators
	// required before a page is trusted as logged in. Any single
	// indicator is unreliable against a UI that changes under us.
	DefaultQuorum = 3
)

// HasSession reports whether the context carries both required session
// cookies with non-empty values. Fails closed: any error reads as "no
// session", never as a failure of the caller.
func HasSession(ctx CookieContext) bool {
	cookies, err := ctx.Cookies()
	if err != nil {
		return false
	}

	var hasUser, hasSecret bool
	for _, c := range cookies {
		if !strings.Contains(c.Domain, cookieDomain) {
			continue
		}
		switch c.Name {
		case userCookieName:
			hasUser = c.Value != ""
		case secretCookieName:
			hasSecret = c.Value != ""
		}
	}
	return hasUser && hasSecret
}

// Indicator is one logged-in heuristic: a JS expression evaluated in the
// page that is truthy when the signal holds. The set is data, the quorum
// vote is the contract.
type Indicator struct {
	Name string
	Expr string
}

// DefaultIndicators mirror the signals the desktop and mobile landing
// pages expose when a session is active.
func DefaultIndicators() []Indicator {
	return []Indicator{
		{"composer", `!!document.querySelector('[data-testid="react-composer-post-button"]')`},
		{"account-menu", `!!document.querySelector('[aria-label*="Account"]')`},
		{"blue-bar", `!!document.querySelector('[data-testid="blue_bar"]')`},
		{"main-feed", `!!document.querySelector('div[role="main"]')`},
		{"no-email-field", `!document.querySelector('#email')`},
		{"no-email-input", `!document.querySelector('input[name="email"]')`},
	}
}

// Evaluator runs a JS expression in the page. playwright.Page satisfies it.
type Evaluator interface {
	Evaluate(expression string, arg ...interface{}) (interface{}, error)
}

// Validator decides logged-in state from a quorum vote over DOM indicators.
type Validator struct {
	indicators []Indicator
	quorum     int
}

func NewValidator() *Validator {
	return &Validator{indicators: DefaultIndicators(), quorum: DefaultQuorum}
}

// NewValidatorWith allows a swapped indicator set without touching the
// voting mechanism.
func NewValidatorWith(indicators []Indicator, quorum int) *Validator {
	if quorum <= 0 {
		quorum = DefaultQuorum
	}
	return &Validator{indicators: indicators, quorum: quorum}
}

// quorumExpr builds one expression counting the indicators that hold, so
// the whole vote costs a single page round-trip.
func (v *Validator) quorumExpr() string {
	exprs := make([]string, len(v.indicators))
	for i, ind := range v.indicators {
		exprs[i] = "(" + ind.Expr + ")"
	}
	return fmt.Sprintf("[%s].filter(Boolean).length", strings.Join(exprs, ","))
}

// IsLoggedInByDOM reports whether at least quorum indicators hold on the
// current page. Evaluation errors read as not logged in.
func (v *Validator) IsLoggedInByDOM(page Evaluator) bool {
	res, err := page.Evaluate(v.quorumExpr())
	if err != nil {
		return false
	}
	return toInt(res) >= v.quorum
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
