package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"coursarr/internal/app"
	"coursarr/internal/cfg"
	"coursarr/internal/contracts"
	"coursarr/internal/database"
	"coursarr/internal/domain/keys"
	"coursarr/internal/downloads"
	"coursarr/internal/models"
	"coursarr/internal/netutil"
	"coursarr/internal/platform"
	"coursarr/internal/repo"
	"coursarr/internal/resume"
	"coursarr/internal/utils/logging"

	"github.com/spf13/viper"
)

var startTime time.Time

// platforms holds the provider implementations compiled into this build.
// Providers register themselves here from their own packages.
var platforms = platform.NewRegistry()

func init() {
	startTime = time.Now()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ledgerPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()

	historyStore := repo.GetHistoryStore(db)

	if err := cfg.InitCommands(ctx, historyStore); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if !viper.GetBool(keys.Execute) {
		return // Exit early if not meant to execute
	}

	settings := cfg.GetSettings()
	if err := os.MkdirAll(settings.DownloadDir, 0755); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to create download directory:", err)
		os.Exit(1)
	}

	if err := logging.SetupLogging(settings.DownloadDir); err != nil {
		fmt.Printf("\n\nNotice: Log file was not created\nReason: %s\n\n", err)
	}
	defer logging.CloseLogging()

	logging.I("coursarr started at: %v", startTime.Format("2006-01-02 15:04:05.00 MST"))

	if err := run(ctx, settings, historyStore); err != nil {
		logging.E("%v", err)
		os.Exit(1)
	}

	endTime := time.Now()
	logging.I("coursarr finished at: %v", endTime.Format("2006-01-02 15:04:05.00 MST"))
	logging.I("Time elapsed: %.2f seconds", endTime.Sub(startTime).Seconds())
}

// run executes one download run for the configured platform.
func run(ctx context.Context, settings *models.Settings, historyStore contracts.HistoryStore) error {
	platformName := viper.GetString(keys.PlatformName)
	if platformName == "" {
		return fmt.Errorf("no platform set, use --%s (registered: %v)", keys.PlatformName, platforms.Names())
	}

	session, err := netutil.NewSession(settings.HTTPTimeout())
	if err != nil {
		return fmt.Errorf("failed to create HTTP session: %w", err)
	}

	prov, err := platforms.New(platformName, session, settings)
	if err != nil {
		return err
	}

	store := resume.NewStore(settings.DownloadDir)
	prior := store.Load(platformName)

	// A resumed run re-applies the request headers captured at checkpoint
	// time before the provider re-authenticates.
	if prior != nil && prior.Request != nil {
		for k, v := range prior.Request.Headers {
			session.SetHeader(k, v)
		}
	}

	if err := prov.Authenticate(ctx, nil); err != nil {
		return fmt.Errorf("authentication with %s failed: %w", platformName, err)
	}

	selection, selectedCourses, err := resolveSelection(ctx, prov, prior)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(settings)
	if err != nil {
		return err
	}

	orch := app.New(platformName, prov, settings, store, historyStore, registry)

	done := make(chan error, 1)
	go func() {
		done <- orch.Run(ctx, selection, selectedCourses, prior)
	}()

	for ev := range orch.Events() {
		switch ev.Type {
		case models.EventProgress:
			logging.I("Progress: %d%%", ev.Percent)
		case models.EventError:
			logging.E("%s: %v", ev.Message, ev.Err)
		default:
			logging.I("%s", ev.Message)
		}
	}
	return <-done
}

// resolveSelection loads the selection: a resumed run reuses the snapshot in
// the checkpoint, a fresh one needs a selection file or a full course fetch.
func resolveSelection(ctx context.Context, prov contracts.Platform, prior *models.ResumeState) (models.Selection, []map[string]any, error) {
	if prior != nil {
		return prior.Selection, prior.SelectedCourses, nil
	}

	if path := viper.GetString(keys.SelectionFile); path != "" {
		selection, err := cfg.LoadSelectionFile(path)
		if err != nil {
			return nil, nil, err
		}
		return selection, nil, nil
	}

	// No explicit selection: take every course the account can access.
	courses, err := prov.FetchCourses(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed fetching course list: %w", err)
	}
	selection, err := prov.FetchCourseContent(ctx, courses)
	if err != nil {
		return nil, nil, fmt.Errorf("failed fetching course content: %w", err)
	}
	return selection, courses, nil
}

// buildRegistry wires the plain-stream fetchers. The downloader tool handles
// everything by default; direct file links go straight over HTTP.
func buildRegistry(settings *models.Settings) (*downloads.Registry, error) {
	ytdlp, err := downloads.NewYtDlpFetcher(settings)
	if err != nil {
		return nil, err
	}

	registry := downloads.NewRegistry(ytdlp)
	registry.Register(downloads.DirectFileRe, &downloads.HTTPFetcher{})
	return registry, nil
}

// ledgerPath places the history database under the user's home directory.
func ledgerPath() string {
	const (
		cDir  = ".coursarr"
		cFile = "coursarr.db"
	)

	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, cDir, cFile)
}
