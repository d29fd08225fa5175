// Package drm extracts protection headers from manifests and exchanges them
// for content keys at the provider's license endpoint.
package drm

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"coursarr/internal/domain/consts"
)

// inlinePSSHRe matches a namespaced or plain <pssh> element in a manifest.
var inlinePSSHRe = regexp.MustCompile(`(?is)<(?:[a-zA-Z0-9]+:)?pssh[^>]*>(.*?)</(?:[a-zA-Z0-9]+:)?pssh>`)

var (
	initializationRe  = regexp.MustCompile(`initialization="([^"]+)"`)
	representationRe  = regexp.MustCompile(`<Representation[^>]*\bid="([^"]+)"`)
	baseURLRe         = regexp.MustCompile(`(?s)<BaseURL>\s*([^<]+?)\s*</BaseURL>`)
	representationSub = "$RepresentationID$"
)

// inlinePSSH returns the base64 protection header embedded in the manifest,
// or "" when the manifest carries none.
func inlinePSSH(manifest string) string {
	m := inlinePSSHRe.FindStringSubmatch(manifest)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// initSegmentURL resolves the initialization segment URL declared in the
// manifest, relative to the manifest's own URL. Returns "" when the manifest
// declares none.
func initSegmentURL(manifest, manifestURL string) string {
	m := initializationRe.FindStringSubmatch(manifest)
	if m == nil {
		return ""
	}
	segPath := strings.ReplaceAll(m[1], "&amp;", "&")

	if strings.Contains(segPath, representationSub) {
		rep := representationRe.FindStringSubmatch(manifest)
		if rep == nil {
			return ""
		}
		segPath = strings.ReplaceAll(segPath, representationSub, rep[1])
	}

	if b := baseURLRe.FindStringSubmatch(manifest); b != nil {
		base := strings.ReplaceAll(b[1], "&amp;", "&")
		if resolved := resolveRef(base, segPath); resolved != "" {
			segPath = resolved
		}
	}

	resolved := resolveRef(manifestURL, segPath)
	if resolved == "" {
		return segPath
	}
	return resolved
}

// resolveRef resolves ref against base, preserving the query string of
// absolute refs. Returns "" on parse failure.
func resolveRef(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}

// psshFromInitSegment locates the protection header box containing the
// Widevine system id inside a raw initialization segment and returns it
// base64-encoded. The system id sits 32 bytes into the box: 4 size, 4
// fourcc, 4 version/flags, then the id, but the scan anchors on the id
// itself and walks back 12 bytes to the box start.
func psshFromInitSegment(segment []byte) (string, error) {
	idx := bytes.Index(segment, consts.WidevineSystemID)
	if idx < 0 {
		return "", fmt.Errorf("no widevine system id in initialization segment")
	}

	boxStart := idx - 12
	if boxStart < 0 {
		return "", fmt.Errorf("protection box start out of bounds")
	}
	if fourcc := string(segment[boxStart+4 : boxStart+8]); fourcc != consts.PSSHBoxMarker {
		return "", fmt.Errorf("expected %q box, found %q", consts.PSSHBoxMarker, fourcc)
	}

	boxSize := int(binary.BigEndian.Uint32(segment[boxStart : boxStart+4]))
	if boxSize <= 0 || boxStart+boxSize > len(segment) {
		return "", fmt.Errorf("protection box size %d exceeds segment length %d", boxSize, len(segment))
	}

	return base64.StdEncoding.EncodeToString(segment[boxStart : boxStart+boxSize]), nil
}
