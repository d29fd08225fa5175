package netutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSessionHeadersAppliedToEveryRequest(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	s, err := NewSession(5 * time.Second)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.SetHeader("Authorization", "Bearer tok")
	s.SetHeader("X-Client", "session-default")

	resp, err := s.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if got.Get("Authorization") != "Bearer tok" {
		t.Fatalf("session header not applied: %v", got)
	}
	if got.Get("X-Client") != "session-default" {
		t.Fatalf("session header not applied: %v", got)
	}
}

func TestSessionPostExtraHeadersOverride(t *testing.T) {
	var got http.Header
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		body, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	s, err := NewSession(5 * time.Second)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.SetHeader("X-Client", "session-default")

	resp, err := s.Post(context.Background(), srv.URL, nil, map[string]string{
		"X-Client":     "request-override",
		"Content-Type": "application/octet-stream",
	})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	resp.Body.Close()

	if got.Get("X-Client") != "request-override" {
		t.Fatalf("extra header did not override session header: %v", got)
	}
	if got.Get("Content-Type") != "application/octet-stream" {
		t.Fatalf("content type not forwarded: %v", got)
	}
	if len(body) != 0 {
		t.Fatalf("unexpected request body %q", body)
	}
}

func TestSessionDefaultTimeoutCancelsSlowRequests(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	s, err := NewSession(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if _, err := s.Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected timeout error from slow server")
	}
}

func TestSessionCallerDeadlineWinsOverDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(30 * time.Millisecond)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	// The session default would have killed this request. The caller's
	// longer deadline takes precedence.
	s, err := NewSession(5 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := s.Get(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Get with caller deadline: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("body read: %v", err)
	}
	if string(data) != "ok" {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestRequestContextSnapshotsHeadersAndCookies(t *testing.T) {
	s, err := NewSession(time.Second)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.SetHeader("Authorization", "Bearer tok")

	if err := s.SetCookies("https://platform.test/courses", []*http.Cookie{
		{Name: "sid", Value: "abc123", Path: "/"},
	}); err != nil {
		t.Fatalf("SetCookies: %v", err)
	}

	rc := s.RequestContext("https://platform.test/courses")
	if rc.Headers["Authorization"] != "Bearer tok" {
		t.Fatalf("header missing from snapshot: %+v", rc.Headers)
	}
	if rc.Cookies["sid"] != "abc123" {
		t.Fatalf("cookie missing from snapshot: %+v", rc.Cookies)
	}

	// Snapshot is a copy, mutating it leaves the session alone.
	rc.Headers["Authorization"] = "tampered"
	if s.Headers["Authorization"] != "Bearer tok" {
		t.Fatal("snapshot mutation leaked into session")
	}
}
