package downloads

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"coursarr/internal/domain/command"
	"coursarr/internal/domain/errs"
	"coursarr/internal/models"
	"coursarr/internal/netutil"
	"coursarr/internal/utils/logging"
)

// YtDlpFetcher downloads streaming-manifest videos by shelling out to the
// downloader tool with the session's headers attached.
type YtDlpFetcher struct {
	Tool     string
	Settings *models.Settings
}

// NewYtDlpFetcher resolves the downloader binary, failing fast when missing.
func NewYtDlpFetcher(s *models.Settings) (*YtDlpFetcher, error) {
	tool := s.YtDlpPath
	if tool == "" {
		tool = command.YTDLP
	}
	path, err := exec.LookPath(tool)
	if err != nil {
		return nil, fmt.Errorf("%w: downloader tool %q not found", errs.ErrConfiguration, tool)
	}
	return &YtDlpFetcher{Tool: path, Settings: s}, nil
}

// Fetch downloads url to destPath (extension appended by the tool) and
// returns the media file the tool wrote.
func (f *YtDlpFetcher) Fetch(ctx context.Context, url string, session *netutil.Session, destPath string) (string, error) {
	args := f.buildArgs(url, session, destPath)

	logging.D(2, "Running downloader: %s %s", f.Tool, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, f.Tool, args...)

	if output, err := cmd.CombinedOutput(); err != nil {
		return "", errs.Subprocess(command.YTDLP, tail(string(output)), err)
	}
	return locateOutput(destPath)
}

// locateOutput finds the media file the tool wrote for destPath. The tool
// picks the extension itself, and subtitle sidecars may sit alongside.
func locateOutput(destPath string) (string, error) {
	dir, base := filepath.Split(destPath)
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, base+".") {
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".part", ".vtt", ".srt":
			continue
		}
		return filepath.Join(dir, name), nil
	}
	return "", fmt.Errorf("downloader reported success but wrote nothing at %s.*", destPath)
}

func (f *YtDlpFetcher) buildArgs(url string, session *netutil.Session, destPath string) []string {
	s := f.Settings

	args := []string{
		command.Output, destPath + command.FilenameSyntax,
		command.NoPlaylist,
		command.NoWarnings,
	}

	if s.KeepAudioOnly {
		args = append(args,
			command.ExtractAudio,
			command.AudioFormat, command.AudioFormatMP3,
			command.Format, command.BestAudio,
		)
	} else if s.VideoQuality != "" {
		args = append(args, command.Format, s.VideoQuality)
	}

	if s.MaxConcurrentFrags > 0 {
		args = append(args, command.ConcurrentFrags, strconv.Itoa(s.MaxConcurrentFrags))
	}
	if s.RetryAttempts > 0 {
		args = append(args, command.Retries, strconv.Itoa(s.RetryAttempts))
	}
	if s.DownloadSubtitles {
		args = append(args, command.WriteSubs, command.SubLangs, command.SubLangsAll)
	}

	args = append(args, headerArgs(session)...)
	return append(args, url)
}

// headerArgs converts session headers into --add-header flags in sorted
// order so invocations are reproducible.
func headerArgs(session *netutil.Session) []string {
	if session == nil || len(session.Headers) == 0 {
		return nil
	}

	keys := make([]string, 0, len(session.Headers))
	for k := range session.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, command.AddHeader, k+":"+session.Headers[k])
	}
	return args
}

// tail trims subprocess output to its last few lines, which is where the
// downloader reports its error.
func tail(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
