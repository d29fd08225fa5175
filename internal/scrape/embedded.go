// Package scrape pulls embedded media URLs out of lesson description HTML.
package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"coursarr/internal/utils/logging"

	"github.com/PuerkitoBio/goquery"
)

// rawURLRe catches absolute URLs sitting in text nodes or unparsed markup.
var rawURLRe = regexp.MustCompile(`https?://[^\s"'<>\\]+`)

// ExtractEmbeddedURLs returns every embedded media or link URL found in the
// description HTML, in document order, deduplicated.
func ExtractEmbeddedURLs(html string) []string {
	var found []string
	seen := make(map[string]bool)

	add := func(raw string) {
		u := normalizeURL(raw)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		found = append(found, u)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logging.D(2, "Failed parsing description HTML: %v", err)
	} else {
		doc.Find("iframe[src], video[src], source[src], embed[src]").Each(func(_ int, s *goquery.Selection) {
			if src, ok := s.Attr("src"); ok {
				add(src)
			}
		})
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok {
				add(href)
			}
		})
	}

	for _, m := range rawURLRe.FindAllString(html, -1) {
		add(m)
	}
	return found
}

// FilterBlacklisted drops URLs whose host matches a blacklisted domain or
// one of its subdomains.
func FilterBlacklisted(urls, blacklist []string) []string {
	if len(blacklist) == 0 {
		return urls
	}

	var kept []string
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())

		blocked := false
		for _, domain := range blacklist {
			domain = strings.ToLower(strings.TrimSpace(domain))
			if domain == "" {
				continue
			}
			if host == domain || strings.HasSuffix(host, "."+domain) {
				blocked = true
				break
			}
		}
		if !blocked {
			kept = append(kept, raw)
		}
	}
	return kept
}

// normalizeURL resolves protocol-relative refs and rejects non-fetchable
// schemes. Returns "" for anything unusable.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "" || strings.HasPrefix(raw, "#"):
		return ""
	case strings.HasPrefix(raw, "//"):
		raw = "https:" + raw
	}

	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "data:") {
		return ""
	}
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return ""
	}

	raw = strings.TrimRight(raw, ").,;")
	return raw
}
