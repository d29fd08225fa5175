package netutil

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"coursarr/internal/utils/logging"

	"github.com/browserutils/kooky"
	// Use all browsers for Kooky:
	_ "github.com/browserutils/kooky/browser/all"
)

// ImportBrowserCookies loads valid browser cookies for the base domain of
// rawURL into the session jar. browserName narrows the source browser when
// set (e.g. "firefox"). Missing cookies are not an error; platform
// implementations call this during Authenticate before falling back to a
// credential login.
func (s *Session) ImportBrowserCookies(rawURL, browserName string) error {
	domain, err := baseDomain(rawURL)
	if err != nil {
		return fmt.Errorf("error extracting base domain in cookie grab: %w", err)
	}

	var kookieCookies []*kooky.Cookie
	if browserName != "" {
		kookieCookies = readCookiesFromBrowser(browserName, domain)
	} else {
		kookieCookies = kooky.ReadCookies(kooky.Valid, kooky.Domain(domain))
	}

	if len(kookieCookies) == 0 {
		logging.I("No browser cookies found for %s", domain)
		return nil
	}

	logging.I("Found %d browser cookies for %s", len(kookieCookies), domain)
	return s.SetCookies(rawURL, convertToHTTPCookies(kookieCookies))
}

// readCookiesFromBrowser reads cookies for domain from the stores of one
// named browser only.
func readCookiesFromBrowser(browserName, domain string) []*kooky.Cookie {
	var out []*kooky.Cookie
	for _, store := range kooky.FindAllCookieStores() {
		if !strings.EqualFold(store.Browser(), browserName) {
			continue
		}

		cookies, err := store.ReadCookies(kooky.Valid, kooky.Domain(domain))
		if err != nil {
			logging.D(2, "Failed reading cookies from %s: %v", store.Browser(), err)
			continue
		}
		out = append(out, cookies...)
	}
	return out
}

// convertToHTTPCookies converts kooky cookies to http.Cookie format.
func convertToHTTPCookies(kookyCookies []*kooky.Cookie) []*http.Cookie {
	httpCookies := make([]*http.Cookie, len(kookyCookies))
	for i, c := range kookyCookies {
		httpCookies[i] = &http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Path:   c.Path,
			Domain: c.Domain,
			Secure: c.Secure,
		}
	}
	return httpCookies
}

// baseDomain extracts the registrable domain of a URL.
func baseDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	host := u.Hostname()
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", fmt.Errorf("no host in URL %q", rawURL)
	}
	return host, nil
}
