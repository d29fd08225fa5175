// Package netutil provides the authenticated HTTP session shared by the
// manifest, license and stream fetch paths.
package netutil

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"coursarr/internal/models"

	"golang.org/x/net/publicsuffix"
)

// Session is an authenticated HTTP channel. Headers are applied to every
// request; cookies live in the jar.
type Session struct {
	Client  *http.Client
	Headers map[string]string

	// timeout is the default deadline applied to requests whose context
	// carries none. Slow operation classes (license exchanges) pass their
	// own deadline instead.
	timeout time.Duration
}

// NewSession creates a session with a public-suffix-aware cookie jar.
func NewSession(timeout time.Duration) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	return &Session{
		Client:  &http.Client{Jar: jar},
		Headers: make(map[string]string),
		timeout: timeout,
	}, nil
}

// SetHeader sets a header applied to every request on this session.
func (s *Session) SetHeader(key, value string) {
	s.Headers[key] = value
}

// Do sends req with the session headers applied.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	for k, v := range s.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return s.Client.Do(req)
}

// Get issues an authenticated GET.
func (s *Session) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	ctx, cancel := s.requestDeadline(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	return s.send(req, cancel)
}

// Post issues an authenticated POST with the given body and extra headers.
// Extra headers override session headers for this request only.
func (s *Session) Post(ctx context.Context, rawURL string, body io.Reader, extraHeaders map[string]string) (*http.Response, error) {
	ctx, cancel := s.requestDeadline(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, body)
	if err != nil {
		cancel()
		return nil, err
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}
	return s.send(req, cancel)
}

// requestDeadline applies the session default timeout unless the caller set
// its own deadline already.
func (s *Session) requestDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// send dispatches the request and ties the deadline's cancel to the response
// body so the timeout covers the body read too.
func (s *Session) send(req *http.Request, cancel context.CancelFunc) (*http.Response, error) {
	resp, err := s.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// SetCookies stores cookies into the jar for the given URL.
func (s *Session) SetCookies(rawURL string, cookies []*http.Cookie) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if s.Client.Jar != nil {
		s.Client.Jar.SetCookies(u, cookies)
	}
	return nil
}

// RequestContext snapshots the headers and the cookies visible for rawURL,
// for persistence into the checkpoint.
func (s *Session) RequestContext(rawURL string) *models.RequestContext {
	rc := &models.RequestContext{
		Headers: make(map[string]string, len(s.Headers)),
		Cookies: make(map[string]string),
	}
	for k, v := range s.Headers {
		rc.Headers[k] = v
	}

	if u, err := url.Parse(rawURL); err == nil && s.Client.Jar != nil {
		for _, c := range s.Client.Jar.Cookies(u) {
			rc.Cookies[c.Name] = c.Value
		}
	}
	return rc
}
