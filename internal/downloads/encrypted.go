package downloads

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"coursarr/internal/domain/command"
	"coursarr/internal/domain/errs"
	"coursarr/internal/models"
	"coursarr/internal/netutil"
	"coursarr/internal/utils/logging"
)

// FetchEncryptedTracks downloads the still-encrypted audio and video tracks
// of a protected manifest into dir and returns their paths. Tracks stay
// separate so the decrypt tool can process each with its own key.
func FetchEncryptedTracks(ctx context.Context, ytdlpPath string, manifestURL string, session *netutil.Session, dir string, s *models.Settings) ([]string, error) {
	tool := ytdlpPath
	if tool == "" {
		tool = command.YTDLP
	}
	path, err := exec.LookPath(tool)
	if err != nil {
		return nil, fmt.Errorf("%w: downloader tool %q not found", errs.ErrConfiguration, tool)
	}

	args := []string{
		command.AllowUnplayable,
		command.Format, command.BestVideoAndAudio,
		command.Output, filepath.Join(dir, command.EncryptedTrackTmpl),
		command.NoPlaylist,
		command.NoWarnings,
	}
	if s.MaxConcurrentFrags > 0 {
		args = append(args, command.ConcurrentFrags, strconv.Itoa(s.MaxConcurrentFrags))
	}
	args = append(args, headerArgs(session)...)
	args = append(args, manifestURL)

	logging.D(2, "Fetching encrypted tracks: %s %s", path, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, path, args...)

	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, errs.Subprocess(command.YTDLP, tail(string(output)), err)
	}

	tracks, err := collectTracks(dir)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("downloader produced no encrypted tracks in %q", dir)
	}
	return tracks, nil
}

// collectTracks lists the fully downloaded encrypted track files in dir,
// ignoring in-progress fragments.
func collectTracks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan track directory %q: %w", dir, err)
	}

	var tracks []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.Contains(name, ".encrypted.") || strings.HasSuffix(name, ".part") {
			continue
		}
		tracks = append(tracks, filepath.Join(dir, name))
	}
	return tracks, nil
}
