package models

import "time"

// Settings is the read-only configuration view handed to download components.
type Settings struct {
	DownloadDir string

	// Download behaviour.
	VideoQuality          string
	MaxConcurrentFrags    int
	RetryAttempts         int
	RetryDelaySeconds     int
	KeepAudioOnly         bool
	DownloadSubtitles     bool
	DownloadEmbedded      bool
	EmbedDomainBlacklist  []string
	AllowedAttachmentExts []string
	LessonAccessDelaySecs int
	HTTPTimeoutSecs       int
	LicenseTimeoutSecs    int
	CookieSource          string

	// External tools.
	CDMDevicePath   string
	DecryptToolPath string
	RemuxToolPath   string
	YtDlpPath       string
}

// RetryDelay returns the configured fixed delay between attempts.
func (s *Settings) RetryDelay() time.Duration {
	if s.RetryDelaySeconds <= 0 {
		return 0
	}
	return time.Duration(s.RetryDelaySeconds) * time.Second
}

// LessonAccessDelay returns the configured pause between lessons.
func (s *Settings) LessonAccessDelay() time.Duration {
	if s.LessonAccessDelaySecs <= 0 {
		return 0
	}
	return time.Duration(s.LessonAccessDelaySecs) * time.Second
}

// HTTPTimeout returns the timeout for ordinary HTTP operations.
func (s *Settings) HTTPTimeout() time.Duration {
	if s.HTTPTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.HTTPTimeoutSecs) * time.Second
}

// LicenseTimeout returns the (longer) timeout for license/key exchanges.
func (s *Settings) LicenseTimeout() time.Duration {
	if s.LicenseTimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.LicenseTimeoutSecs) * time.Second
}
