package keys

// Terminal keys
const (
	DownloadDir   = "download-dir"
	PlatformName  = "platform"
	SelectionFile = "selection-file"
	ConfigFile    = "config-file"
	CookieSource  = "cookie-source"
)

// Download behaviour
const (
	VideoQuality        = "video-quality"
	ConcurrentFragments = "concurrent-fragments"
	RetryAttempts       = "retry-attempts"
	RetryDelaySeconds   = "retry-delay"
	KeepAudioOnly       = "audio-only"
	DownloadSubtitles   = "subtitles"
	DownloadEmbedded    = "download-embedded"
	EmbedBlacklist      = "embed-blacklist"
	AttachmentExts      = "attachment-exts"
	LessonAccessDelay   = "lesson-delay"
	HTTPTimeout         = "http-timeout"
	LicenseTimeout      = "license-timeout"
)

// External tools
const (
	CDMDevicePath = "cdm-path"
	DecryptTool   = "decrypt-tool"
	RemuxTool     = "remux-tool"
	YtDlpTool     = "ytdlp-tool"
)

// Logging
const (
	DebugLevel = "debug-level"
)

// Primary program
const (
	Execute = "execute"
)
