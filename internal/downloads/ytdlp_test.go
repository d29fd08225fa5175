package downloads

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coursarr/internal/models"
	"coursarr/internal/netutil"
)

// TestBuildArgs checks the downloader invocation shape.
func TestBuildArgs(t *testing.T) {
	f := &YtDlpFetcher{
		Tool: "yt-dlp",
		Settings: &models.Settings{
			VideoQuality:       "bestvideo[height<=720]+bestaudio",
			MaxConcurrentFrags: 8,
			RetryAttempts:      2,
			DownloadSubtitles:  true,
		},
	}

	session := &netutil.Session{Headers: map[string]string{
		"Referer":       "https://course.example.com",
		"Authorization": "Bearer tok",
	}}

	args := f.buildArgs("https://cdn.example.com/m.mpd", session, "/tmp/out/Video 1")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-o /tmp/out/Video 1.%(ext)s",
		"-f bestvideo[height<=720]+bestaudio",
		"--concurrent-fragments 8",
		"--retries 2",
		"--write-subs --sub-langs all",
		"--no-playlist",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q:\n%s", want, joined)
		}
	}

	// Headers render sorted so invocations are reproducible.
	authIdx := strings.Index(joined, "Authorization:")
	refIdx := strings.Index(joined, "Referer:")
	if authIdx < 0 || refIdx < 0 || authIdx > refIdx {
		t.Fatalf("expected sorted --add-header flags:\n%s", joined)
	}

	// URL comes last.
	if args[len(args)-1] != "https://cdn.example.com/m.mpd" {
		t.Fatalf("expected URL as final arg, got %q", args[len(args)-1])
	}
}

// TestBuildArgsAudioOnly checks the audio extraction mode.
func TestBuildArgsAudioOnly(t *testing.T) {
	f := &YtDlpFetcher{
		Tool:     "yt-dlp",
		Settings: &models.Settings{KeepAudioOnly: true, VideoQuality: "ignored"},
	}

	joined := strings.Join(f.buildArgs("https://x/m.mpd", nil, "/tmp/a"), " ")
	if !strings.Contains(joined, "-x --audio-format mp3") {
		t.Fatalf("expected audio extraction flags:\n%s", joined)
	}
	if !strings.Contains(joined, "-f bestaudio/best") {
		t.Fatalf("expected audio format selector:\n%s", joined)
	}
	if strings.Contains(joined, "ignored") {
		t.Fatalf("video quality must not apply in audio mode:\n%s", joined)
	}
}

// TestLocateOutput checks the written-media lookup skips sidecars and
// in-progress fragments, and fails when the tool wrote nothing.
func TestLocateOutput(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "Clip One")
	for _, name := range []string{
		"Clip One.en.vtt",
		"Clip One.mp4",
		"Clip One.mp4.part",
		"Clip One Extra.mp4",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := locateOutput(base)
	if err != nil {
		t.Fatalf("locateOutput: %v", err)
	}
	if got != base+".mp4" {
		t.Fatalf("located %q, expected the media file", got)
	}

	if _, err := locateOutput(filepath.Join(dir, "Nothing Here")); err == nil {
		t.Fatal("expected error when no output exists")
	}
}

// TestFetchReturnsWrittenPath runs a stand-in downloader that honors -o and
// checks Fetch reports the file it produced.
func TestFetchReturnsWrittenPath(t *testing.T) {
	dir := t.TempDir()

	tool := filepath.Join(dir, "fake-ytdlp")
	script := `#!/bin/sh
out=""
prev=""
for a in "$@"; do
	if [ "$prev" = "-o" ]; then out="$a"; fi
	prev="$a"
done
out=$(printf '%s' "$out" | sed 's/\.%(ext)s$/.mkv/')
echo media-bytes > "$out"
`
	if err := os.WriteFile(tool, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	f := &YtDlpFetcher{Tool: tool, Settings: &models.Settings{}}
	destBase := filepath.Join(dir, "Lesson Video")

	written, err := f.Fetch(context.Background(), "https://cdn.example.com/m.mpd", nil, destBase)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if written != destBase+".mkv" {
		t.Fatalf("reported %q, expected the tool's output file", written)
	}
	if _, err := os.Stat(written); err != nil {
		t.Fatalf("reported path missing on disk: %v", err)
	}
}

// TestCollectTracks checks in-progress fragments and foreign files are
// ignored.
func TestCollectTracks(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"track.encrypted.mp4",
		"track.encrypted.m4a",
		"track.encrypted.mp4.part",
		"unrelated.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tracks, err := collectTracks(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %v", tracks)
	}
	for _, track := range tracks {
		if strings.HasSuffix(track, ".part") || strings.HasSuffix(track, ".txt") {
			t.Fatalf("collected unwanted file %q", track)
		}
	}
}

// TestTail checks subprocess output trimming.
func TestTail(t *testing.T) {
	long := "l1\nl2\nl3\nl4\nl5\nl6\nl7"
	got := tail(long)
	if strings.Contains(got, "l1") || !strings.Contains(got, "l7") {
		t.Fatalf("expected last lines only, got %q", got)
	}
	if got := tail("single"); got != "single" {
		t.Fatalf("short output altered: %q", got)
	}
}
