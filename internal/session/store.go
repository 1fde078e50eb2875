package session

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

const cookieDomain = "facebook.com"

// CookieContext is the slice of playwright.BrowserContext the session
// layer needs. Narrow on purpose: tests substitute fakes.
type CookieContext interface {
	Cookies(urls ...string) ([]playwright.Cookie, error)
	AddCookies(cookies []playwright.OptionalCookie) error
	ClearCookies(options ...playwright.BrowserContextClearCookiesOptions) error
}

// Cookie is the stored-jar representation of a browser cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

func (c Cookie) toOptional() playwright.OptionalCookie {
	oc := playwright.OptionalCookie{
		Name:   c.Name,
		Value:  c.Value,
		Domain: playwright.String(c.Domain),
		Path:   playwright.String(c.Path),
	}

	if c.Expires > 0 {
		oc.Expires = playwright.Float(c.Expires)
	}
	if c.HTTPOnly {
		oc.HttpOnly = playwright.Bool(true)
	}
	if c.Secure {
		oc.Secure = playwright.Bool(true)
	}

	//Anything outside the three legal values is coerced to None, the most
	//permissive legal policy.
	switch c.SameSite {
	case "Lax":
		oc.SameSite = playwright.SameSiteAttributeLax
	case "Strict":
		oc.SameSite = playwright.SameSiteAttributeStrict
	default:
		oc.SameSite = playwright.SameSiteAttributeNone
	}

	return oc
}

// Store persists one cookie jar file per account under dir.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// JarPath returns the jar file for an account, with the identifier made
// filesystem safe.
func (s *Store) JarPath(accountID string) string {
	safe := strings.NewReplacer("@", "_", ".", "_").Replace(accountID)
	return filepath.Join(s.dir, safe+".json")
}

// Save reads the live context cookies, keeps the facebook.com ones and
// writes them wholesale. A read that yields zero relevant cookies is a
// no-op so a failed navigation can never blank out a good jar.
func (s *Store) Save(ctx CookieContext, accountID string) error {
	cookies, err := ctx.Cookies()
	if err != nil {
		log.Printf("⚠️ Failed to read cookies for %s: %v", accountID, err)
		return err
	}

	jar := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		if !strings.Contains(c.Domain, cookieDomain) {
			continue
		}
		stored := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			stored.SameSite = string(*c.SameSite)
		}
		jar = append(jar, stored)
	}

	if len(jar) == 0 {
		log.Printf("⚠️ No %s cookies to save for %s, keeping existing jar", cookieDomain, accountID)
		return nil
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		log.Printf("⚠️ Failed to create cookie directory: %v", err)
		return err
	}

	data, err := json.MarshalIndent(jar, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.JarPath(accountID), data, 0600); err != nil {
		log.Printf("⚠️ Failed to write cookie jar for %s: %v", accountID, err)
		return err
	}

	log.Printf("🍪 Saved %d cookies for %s", len(jar), accountID)
	return nil
}

// Load installs the stored jar into a context. Fails soft: an absent,
// unreadable or fully expired jar returns false and leaves the context
// untouched, downgrading the caller to the fresh-login path.
func (s *Store) Load(ctx CookieContext, accountID string) bool {
	data, err := os.ReadFile(s.JarPath(accountID))
	if err != nil {
		return false
	}

	var jar []Cookie
	if err := json.Unmarshal(data, &jar); err != nil {
		log.Printf("⚠️ Corrupt cookie jar for %s: %v", accountID, err)
		return false
	}

	now := float64(time.Now().Unix())
	valid := make([]playwright.OptionalCookie, 0, len(jar))
	for _, c := range jar {
		if c.Expires > 0 && c.Expires <= now {
			continue
		}
		valid = append(valid, c.toOptional())
	}

	if len(valid) == 0 {
		return false
	}

	if err := ctx.AddCookies(valid); err != nil {
		log.Printf("⚠️ Failed to apply cookies for %s: %v", accountID, err)
		return false
	}

	log.Printf("🍪 Applied %d valid cookies for %s", len(valid), accountID)
	return true
}
