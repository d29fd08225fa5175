// Package downloads implements plain-stream fetchers and the encrypted
// track grab used by the decryption pipeline.
package downloads

import (
	"regexp"

	"coursarr/internal/contracts"
)

// DirectFileRe matches URLs pointing at a plain file rather than a
// streaming manifest.
var DirectFileRe = regexp.MustCompile(`(?i)\.(mp4|m4a|m4v|mp3|webm|mov|pdf|zip|png|jpe?g|gif|vtt|srt)(\?.*)?$`)

// registration binds a URL pattern to a fetcher.
type registration struct {
	pattern *regexp.Regexp
	fetcher contracts.Fetcher
}

// Registry maps video URLs to fetchers. Patterns are consulted in
// registration order; the fallback handles everything unmatched.
type Registry struct {
	entries  []registration
	fallback contracts.Fetcher
}

// NewRegistry returns a registry with the given fallback fetcher.
func NewRegistry(fallback contracts.Fetcher) *Registry {
	return &Registry{fallback: fallback}
}

// Register binds a compiled URL pattern to a fetcher.
func (r *Registry) Register(pattern *regexp.Regexp, f contracts.Fetcher) {
	r.entries = append(r.entries, registration{pattern: pattern, fetcher: f})
}

// FetcherFor returns the first fetcher whose pattern matches url, or the
// fallback.
func (r *Registry) FetcherFor(url string) contracts.Fetcher {
	for _, e := range r.entries {
		if e.pattern.MatchString(url) {
			return e.fetcher
		}
	}
	return r.fallback
}
