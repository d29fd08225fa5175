// Package command holds argument constants for the external tools coursarr shells out to.
package command

// yt-dlp
const (
	YTDLP              = "yt-dlp"
	Output             = "-o"
	Format             = "-f"
	NoPlaylist         = "--no-playlist"
	Retries            = "--retries"
	ConcurrentFrags    = "--concurrent-fragments"
	AddHeader          = "--add-header"
	RestrictFilenames  = "--restrict-filenames"
	Quiet              = "--quiet"
	NoWarnings         = "--no-warnings"
	AllowUnplayable    = "--allow-unplayable-formats"
	ExtractAudio       = "-x"
	AudioFormat        = "--audio-format"
	AudioFormatMP3     = "mp3"
	WriteSubs          = "--write-subs"
	SubLangs           = "--sub-langs"
	SubLangsAll        = "all"
	FilenameSyntax     = ".%(ext)s"
	EncryptedTrackTmpl = "track.encrypted.%(ext)s"
	BestVideoAndAudio  = "bestvideo+bestaudio"
	BestAudio          = "bestaudio/best"
)

// Decrypt tool (mp4decrypt-compatible)
const (
	Mp4Decrypt = "mp4decrypt"
	DecryptKey = "--key"
)

// Remux tool (ffmpeg-compatible)
const (
	FFmpeg          = "ffmpeg"
	Overwrite       = "-y"
	Input           = "-i"
	Codec           = "-c"
	StreamCopy      = "copy"
	MergedContainer = "merged.mp4"
)
