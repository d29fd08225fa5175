package drm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"coursarr/internal/domain/errs"
	"coursarr/internal/models"
	"coursarr/internal/netutil"
)

// fakeCDM returns a canned challenge and keys without real cryptography.
type fakeCDM struct {
	keys []models.KIDKey
}

func (f *fakeCDM) Challenge(pssh []byte) ([]byte, func([]byte) ([]models.KIDKey, error), error) {
	if len(pssh) == 0 {
		return nil, nil, errors.New("empty protection header")
	}
	parse := func(license []byte) ([]models.KIDKey, error) {
		return f.keys, nil
	}
	return []byte("challenge-bytes"), parse, nil
}

func testSession(t *testing.T) *netutil.Session {
	t.Helper()
	s, err := netutil.NewSession(5 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// TestFetchKeysInlineHeader checks the happy path with an inline header.
func TestFetchKeysInlineHeader(t *testing.T) {
	pssh := base64.StdEncoding.EncodeToString([]byte("fake-box"))

	var licenseCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manifest.mpd":
			fmt.Fprintf(w, `<MPD><cenc:pssh>%s</cenc:pssh></MPD>`, pssh)
		case "/license":
			licenseCalls.Add(1)
			if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
				t.Errorf("unexpected content type %q", ct)
			}
			if r.Header.Get("X-Auth") != "tok" {
				t.Errorf("license headers not forwarded")
			}
			w.Write([]byte("license-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	want := []models.KIDKey{{KID: "aabb", Key: "ccdd"}}
	client := NewClient(testSession(t), &fakeCDM{keys: want})

	result, err := client.FetchKeys(context.Background(),
		srv.URL+"/manifest.mpd", srv.URL+"/license", map[string]string{"X-Auth": "tok"})
	if err != nil {
		t.Fatalf("FetchKeys failed: %v", err)
	}
	if result.PSSH != pssh {
		t.Fatalf("expected header %q, got %q", pssh, result.PSSH)
	}
	if len(result.Keys) != 1 || result.Keys[0] != want[0] {
		t.Fatalf("unexpected keys: %+v", result.Keys)
	}
	if licenseCalls.Load() != 1 {
		t.Fatalf("expected 1 license request, got %d", licenseCalls.Load())
	}
}

// TestFetchKeysNilCDM checks that a missing CDM fails before any request.
func TestFetchKeysNilCDM(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	client := NewClient(testSession(t), nil)
	_, err := client.FetchKeys(context.Background(), srv.URL+"/m.mpd", srv.URL+"/l", nil)
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got: %v", err)
	}
	if requests.Load() != 0 {
		t.Fatalf("expected zero network traffic, got %d requests", requests.Load())
	}
}

// TestFetchKeysNoHeaderAnywhere checks the ErrNoKeysAvailable path when
// neither the manifest nor a segment yields a protection header.
func TestFetchKeysNoHeaderAnywhere(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<MPD>clean manifest</MPD>`)
	}))
	defer srv.Close()

	client := NewClient(testSession(t), &fakeCDM{})
	_, err := client.FetchKeys(context.Background(), srv.URL+"/m.mpd", srv.URL+"/l", nil)
	if !errors.Is(err, errs.ErrNoKeysAvailable) {
		t.Fatalf("expected ErrNoKeysAvailable, got: %v", err)
	}
}

// TestFetchKeysLicenseRejected checks the non-200 license response edge.
func TestFetchKeysLicenseRejected(t *testing.T) {
	pssh := base64.StdEncoding.EncodeToString([]byte("fake-box"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/manifest.mpd" {
			fmt.Fprintf(w, `<MPD><cenc:pssh>%s</cenc:pssh></MPD>`, pssh)
			return
		}
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(testSession(t), &fakeCDM{keys: []models.KIDKey{{KID: "a", Key: "b"}}})
	_, err := client.FetchKeys(context.Background(), srv.URL+"/manifest.mpd", srv.URL+"/license", nil)
	if !errors.Is(err, errs.ErrLicenseRejected) {
		t.Fatalf("expected ErrLicenseRejected, got: %v", err)
	}
}

// TestFetchKeysEmptyLicense checks that a license with zero content keys is
// permanent.
func TestFetchKeysEmptyLicense(t *testing.T) {
	pssh := base64.StdEncoding.EncodeToString([]byte("fake-box"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/manifest.mpd" {
			fmt.Fprintf(w, `<MPD><cenc:pssh>%s</cenc:pssh></MPD>`, pssh)
			return
		}
		w.Write([]byte("license-bytes"))
	}))
	defer srv.Close()

	client := NewClient(testSession(t), &fakeCDM{keys: nil})
	_, err := client.FetchKeys(context.Background(), srv.URL+"/manifest.mpd", srv.URL+"/license", nil)
	if !errors.Is(err, errs.ErrNoKeysAvailable) {
		t.Fatalf("expected ErrNoKeysAvailable, got: %v", err)
	}
}

// TestFetchKeysSegmentFallback checks the initialization segment fallback
// when the manifest has no inline header.
func TestFetchKeysSegmentFallback(t *testing.T) {
	box := buildPSSHBox(t, []byte("payload"))
	segment := append([]byte("ftyp-padding"), box...)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manifest.mpd":
			fmt.Fprint(w, `<MPD><Representation id="v1"/><SegmentTemplate initialization="seg/$RepresentationID$-init.mp4"/></MPD>`)
		case "/seg/v1-init.mp4":
			w.Write(segment)
		case "/license":
			w.Write([]byte("license-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	want := []models.KIDKey{{KID: "1122", Key: "3344"}}
	client := NewClient(testSession(t), &fakeCDM{keys: want})

	result, err := client.FetchKeys(context.Background(), srv.URL+"/manifest.mpd", srv.URL+"/license", nil)
	if err != nil {
		t.Fatalf("FetchKeys failed: %v", err)
	}
	if result.PSSH != base64.StdEncoding.EncodeToString(box) {
		t.Fatalf("fallback extracted wrong box")
	}
	if len(result.Keys) != 1 {
		t.Fatalf("unexpected keys: %+v", result.Keys)
	}
}
