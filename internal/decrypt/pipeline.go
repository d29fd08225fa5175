// Package decrypt runs the external decrypt-and-merge pipeline over encrypted
// track files.
package decrypt

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"coursarr/internal/domain/command"
	"coursarr/internal/domain/errs"
	"coursarr/internal/models"
	"coursarr/internal/utils/fs"
	"coursarr/internal/utils/logging"

	"github.com/google/uuid"
)

// Workspace is a per-video temp directory. Everything inside it is discarded
// on Close; only the merged output leaves it.
type Workspace struct {
	Dir string
}

// NewWorkspace creates a uniquely named temp directory for one video.
func NewWorkspace() (*Workspace, error) {
	dir := filepath.Join(os.TempDir(), "coursarr-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create decrypt workspace: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Close removes the workspace and everything in it.
func (w *Workspace) Close() {
	if err := os.RemoveAll(w.Dir); err != nil {
		logging.D(2, "Failed removing workspace %q: %v", w.Dir, err)
	}
}

// Pipeline decrypts downloaded tracks and merges them into one container.
type Pipeline struct {
	DecryptTool string
	RemuxTool   string
}

// New resolves the external tool paths up front so a missing binary fails
// before any download work.
func New(s *models.Settings) (*Pipeline, error) {
	decryptTool := s.DecryptToolPath
	if decryptTool == "" {
		decryptTool = command.Mp4Decrypt
	}
	remuxTool := s.RemuxToolPath
	if remuxTool == "" {
		remuxTool = command.FFmpeg
	}

	decryptPath, err := exec.LookPath(decryptTool)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt tool %q not found", errs.ErrConfiguration, decryptTool)
	}
	remuxPath, err := exec.LookPath(remuxTool)
	if err != nil {
		return nil, fmt.Errorf("%w: remux tool %q not found", errs.ErrConfiguration, remuxTool)
	}

	return &Pipeline{DecryptTool: decryptPath, RemuxTool: remuxPath}, nil
}

// Run decrypts every track with the full key set, merges the results with a
// stream copy, and moves the merged file to destPath. The workspace keeps
// all intermediates; destPath is only written on full success.
func (p *Pipeline) Run(ctx context.Context, ws *Workspace, tracks []string, keys []models.KIDKey, destPath string) error {
	if len(tracks) == 0 {
		return fmt.Errorf("no encrypted tracks to decrypt")
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w: no keys for decryption", errs.ErrNoKeysAvailable)
	}

	decrypted := make([]string, 0, len(tracks))
	for _, track := range tracks {
		out, err := p.decryptTrack(ctx, ws, track, keys)
		if err != nil {
			return err
		}
		decrypted = append(decrypted, out)
	}

	merged, err := p.merge(ctx, ws, decrypted)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	if err := fs.AtomicMove(merged, destPath); err != nil {
		return fmt.Errorf("failed moving merged output to %q: %w", destPath, err)
	}

	logging.S(1, "Decrypted and merged %d track(s) into %s", len(tracks), destPath)
	return nil
}

// decryptTrack runs the decrypt tool on one track, passing every key. The
// tool picks the one matching the track's key id.
func (p *Pipeline) decryptTrack(ctx context.Context, ws *Workspace, track string, keys []models.KIDKey) (string, error) {
	out := filepath.Join(ws.Dir, "decrypted."+filepath.Base(track))

	args := make([]string, 0, len(keys)*2+2)
	for _, k := range keys {
		args = append(args, command.DecryptKey, k.Arg())
	}
	args = append(args, track, out)

	logging.D(2, "Running decrypt tool on %s", filepath.Base(track))
	cmd := exec.CommandContext(ctx, p.DecryptTool, args...)
	cmd.Dir = ws.Dir

	if output, err := cmd.CombinedOutput(); err != nil {
		return "", errs.Subprocess(filepath.Base(p.DecryptTool), strings.TrimSpace(string(output)), err)
	}
	return out, nil
}

// merge stream-copies the decrypted tracks into a single mp4 container.
func (p *Pipeline) merge(ctx context.Context, ws *Workspace, tracks []string) (string, error) {
	merged := filepath.Join(ws.Dir, command.MergedContainer)

	args := []string{command.Overwrite}
	for _, t := range tracks {
		args = append(args, command.Input, t)
	}
	args = append(args, command.Codec, command.StreamCopy, merged)

	logging.D(2, "Merging %d decrypted track(s)", len(tracks))
	cmd := exec.CommandContext(ctx, p.RemuxTool, args...)
	cmd.Dir = ws.Dir

	if output, err := cmd.CombinedOutput(); err != nil {
		return "", errs.Subprocess(filepath.Base(p.RemuxTool), strings.TrimSpace(string(output)), err)
	}
	return merged, nil
}
