package drm

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"coursarr/internal/contracts"
	"coursarr/internal/domain/errs"
	"coursarr/internal/models"
	"coursarr/internal/netutil"
	"coursarr/internal/utils/logging"
)

// Client exchanges a manifest's protection header for content keys.
type Client struct {
	session *netutil.Session
	cdm     contracts.CDM

	// Timeout bounds a single license exchange. License servers can be much
	// slower than ordinary content hosts, so this is set separately from the
	// session timeout. Zero leaves the session timeout in charge.
	Timeout time.Duration
}

// NewClient builds a license client over an authenticated session. The CDM
// is loaded lazily per settings at FetchKeys time by the caller-provided
// loader when cdm is nil.
func NewClient(session *netutil.Session, cdm contracts.CDM) *Client {
	return &Client{session: session, cdm: cdm}
}

// FetchKeys resolves the decryption keys for one protected video. The CDM
// must already be loaded; a nil CDM is a configuration error raised before
// any network traffic.
func (c *Client) FetchKeys(ctx context.Context, manifestURL, licenseURL string, headers map[string]string) (*models.LicenseResult, error) {
	if c.cdm == nil {
		return nil, fmt.Errorf("%w: no CDM device loaded", errs.ErrConfiguration)
	}

	manifest, err := c.fetchManifest(ctx, manifestURL)
	if err != nil {
		return nil, err
	}

	pssh := inlinePSSH(manifest)
	if pssh == "" {
		logging.D(1, "No inline protection header, falling back to initialization segment")
		pssh, err = c.psshFromManifestSegment(ctx, manifest, manifestURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrNoKeysAvailable, err)
		}
	}

	psshRaw, err := base64.StdEncoding.DecodeString(pssh)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed protection header: %v", errs.ErrNoKeysAvailable, err)
	}

	challenge, parse, err := c.cdm.Challenge(psshRaw)
	if err != nil {
		return nil, fmt.Errorf("failed building license challenge: %w", err)
	}

	license, err := c.requestLicense(ctx, licenseURL, challenge, headers)
	if err != nil {
		return nil, err
	}

	keys, err := parse(license)
	if err != nil {
		return nil, fmt.Errorf("failed parsing license: %w", err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: license contained no content keys", errs.ErrNoKeysAvailable)
	}

	logging.D(1, "License yielded %d content key(s)", len(keys))
	return &models.LicenseResult{PSSH: pssh, Keys: keys}, nil
}

func (c *Client) fetchManifest(ctx context.Context, manifestURL string) (string, error) {
	resp, err := c.session.Get(ctx, manifestURL)
	if err != nil {
		return "", errs.Network("manifest fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errs.Network("manifest fetch", fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Network("manifest read", err)
	}
	return string(body), nil
}

// psshFromManifestSegment downloads the initialization segment the manifest
// points at and scans it for the protection box.
func (c *Client) psshFromManifestSegment(ctx context.Context, manifest, manifestURL string) (string, error) {
	segURL := initSegmentURL(manifest, manifestURL)
	if segURL == "" {
		return "", fmt.Errorf("manifest declares no protection header and no initialization segment")
	}

	resp, err := c.session.Get(ctx, segURL)
	if err != nil {
		return "", fmt.Errorf("initialization segment fetch: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("initialization segment fetch: status %d", resp.StatusCode)
	}

	segment, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("initialization segment read: %v", err)
	}
	return psshFromInitSegment(segment)
}

func (c *Client) requestLicense(ctx context.Context, licenseURL string, challenge []byte, headers map[string]string) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	extra := map[string]string{"Content-Type": "application/octet-stream"}
	for k, v := range headers {
		extra[k] = v
	}

	resp, err := c.session.Post(ctx, licenseURL, bytes.NewReader(challenge), extra)
	if err != nil {
		return nil, errs.Network("license request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", errs.ErrLicenseRejected, resp.StatusCode, string(body))
	}

	license, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Network("license read", err)
	}
	return license, nil
}
