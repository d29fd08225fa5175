package drm

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"coursarr/internal/domain/consts"
	"coursarr/internal/domain/errs"
	"coursarr/internal/models"
	"coursarr/internal/utils/logging"

	widevine "github.com/iyear/gowidevine"
	wvpb "github.com/iyear/gowidevine/widevinepb"
)

// Widevine wraps a provisioned device. It implements contracts.CDM.
type Widevine struct {
	cdm *widevine.CDM
}

// NewCDM loads a device/key file and returns a challenge builder around it.
// devicePath may name the file directly or a directory holding one; all
// failures are configuration errors.
func NewCDM(devicePath string) (*Widevine, error) {
	path, err := resolveDeviceFile(devicePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading device file %q: %v", errs.ErrConfiguration, path, err)
	}

	device, err := widevine.NewDevice(widevine.FromWVD(bytes.NewReader(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing device file %q: %v", errs.ErrConfiguration, path, err)
	}

	logging.D(1, "Loaded CDM device from %s", path)
	return &Widevine{cdm: widevine.NewCDM(device)}, nil
}

// Challenge builds a license challenge for the protection header and returns
// a parser that extracts content keys from the license response.
func (m *Widevine) Challenge(pssh []byte) ([]byte, func([]byte) ([]models.KIDKey, error), error) {
	header, err := widevine.NewPSSH(pssh)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid protection header: %w", err)
	}

	challenge, parseLicense, err := m.cdm.GetLicenseChallenge(header, wvpb.LicenseType_STREAMING, false)
	if err != nil {
		return nil, nil, err
	}

	parse := func(license []byte) ([]models.KIDKey, error) {
		keys, err := parseLicense(license)
		if err != nil {
			return nil, err
		}

		var out []models.KIDKey
		for _, k := range keys {
			if k.Type != wvpb.License_KeyContainer_CONTENT {
				continue
			}
			out = append(out, models.KIDKey{
				KID: hex.EncodeToString(k.ID),
				Key: hex.EncodeToString(k.Key),
			})
		}
		return out, nil
	}
	return challenge, parse, nil
}

// resolveDeviceFile accepts a .wvd file path or a directory and returns the
// device file to load. With multiple candidates in a directory the first in
// sorted order wins.
func resolveDeviceFile(devicePath string) (string, error) {
	if devicePath == "" {
		return "", fmt.Errorf("no CDM device path configured")
	}

	info, err := os.Stat(devicePath)
	if err != nil {
		return "", fmt.Errorf("CDM device path %q: %v", devicePath, err)
	}
	if !info.IsDir() {
		return devicePath, nil
	}

	matches, err := filepath.Glob(filepath.Join(devicePath, "*"+consts.CDMDeviceExt))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no %s device file in %q", consts.CDMDeviceExt, devicePath)
	}
	sort.Strings(matches)
	return matches[0], nil
}
