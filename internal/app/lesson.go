package app

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"coursarr/internal/decrypt"
	"coursarr/internal/domain/consts"
	"coursarr/internal/downloads"
	"coursarr/internal/drm"
	"coursarr/internal/models"
	"coursarr/internal/planner"
	"coursarr/internal/scrape"
	"coursarr/internal/utils/fs"
	"coursarr/internal/utils/logging"
)

// handleDescription writes the lesson body to disk and, when enabled, pulls
// down media embedded in HTML bodies.
func (o *Orchestrator) handleDescription(ctx context.Context, state *models.ResumeState, item *planner.Item, entry *models.LessonEntry, content *models.LessonContent, lessonDir string) {
	if entry.Description || content.Description == nil {
		return
	}

	name := consts.DescriptionHTMLFile
	if content.Description.IsPlainText() {
		name = consts.DescriptionTxtFile
	}
	destPath := filepath.Join(lessonDir, name)

	err := fs.WriteFileAtomic(destPath, []byte(content.Description.Text), 0644)
	if err == nil && o.settings.DownloadEmbedded && !content.Description.IsPlainText() {
		o.downloadEmbedded(ctx, content.Description.Text, lessonDir)
	}

	o.finishItem(ctx, state, item, consts.CategoryDescription, "", name, destPath, "", err)
}

// downloadEmbedded fetches media referenced inside a description body.
// Embed failures never fail the description itself.
func (o *Orchestrator) downloadEmbedded(ctx context.Context, html, lessonDir string) {
	urls := scrape.FilterBlacklisted(scrape.ExtractEmbeddedURLs(html), o.settings.EmbedDomainBlacklist)
	for i, u := range urls {
		destBase := filepath.Join(lessonDir, fmt.Sprintf("Embedded %d", i+1))

		fetcher := o.registry.FetcherFor(u)
		err := o.retry.Run(ctx, "embedded media fetch", func() error {
			_, ferr := fetcher.Fetch(ctx, u, o.platform.Session(), destBase)
			return ferr
		})
		if err != nil {
			logging.W("Embedded media %s failed: %v", u, err)
			o.emit(models.LogEvent("Embedded media failed: " + u))
		}
	}
}

// handleVideos downloads every not-yet-done video, dispatching protected
// ones through the license/decryption pipeline.
func (o *Orchestrator) handleVideos(ctx context.Context, state *models.ResumeState, item *planner.Item, entry *models.LessonEntry, content *models.LessonContent, lessonDir string) {
	for i, video := range content.Videos {
		key := video.Key(i + 1)
		if entry.Videos[key] {
			continue
		}

		title := video.Title
		if title == "" {
			title = fmt.Sprintf("Video %d", i+1)
		}
		base := fs.TruncateComponent(fs.SanitizePathComponent(title), consts.MaxFileNameLen)
		destBase := filepath.Join(lessonDir, base)

		var err error
		var destPath string
		if video.RequiresDRM {
			destPath = destBase + ".mp4"
			err = o.downloadProtectedVideo(ctx, video, destPath)
		} else {
			fetcher := o.registry.FetcherFor(video.URL)
			err = o.retry.Run(ctx, "video fetch", func() error {
				written, ferr := fetcher.Fetch(ctx, video.URL, o.platform.Session(), destBase)
				if ferr != nil {
					return ferr
				}
				destPath = written
				return nil
			})
		}

		o.finishItem(ctx, state, item, consts.CategoryVideos, key, title, destPath, video.PublishedAt, err)
	}
}

// downloadProtectedVideo runs the full DRM flow for one video: load the CDM,
// exchange the license, grab the encrypted tracks, decrypt and merge.
func (o *Orchestrator) downloadProtectedVideo(ctx context.Context, video *models.VideoItem, destPath string) error {
	cdm, err := o.loadCDM()
	if err != nil {
		return err
	}
	pipeline, err := o.loadPipeline()
	if err != nil {
		return err
	}

	client := drm.NewClient(o.platform.Session(), cdm)
	client.Timeout = o.settings.LicenseTimeout()

	var result *models.LicenseResult
	err = o.retry.Run(ctx, "license exchange", func() error {
		r, err := client.FetchKeys(ctx, video.ManifestURL, video.LicenseURL, video.LicenseHeaders)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return err
	}

	ws, err := decrypt.NewWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	var tracks []string
	err = o.retry.Run(ctx, "encrypted track fetch", func() error {
		t, err := downloads.FetchEncryptedTracks(ctx, o.settings.YtDlpPath, video.ManifestURL, o.platform.Session(), ws.Dir, o.settings)
		if err != nil {
			return err
		}
		tracks = t
		return nil
	})
	if err != nil {
		return err
	}

	return pipeline.Run(ctx, ws, tracks, result.Keys, destPath)
}

// handleAttachments downloads every not-yet-done attachment. Extensions
// outside the allow list are marked done without a download.
func (o *Orchestrator) handleAttachments(ctx context.Context, state *models.ResumeState, item *planner.Item, entry *models.LessonEntry, content *models.LessonContent, lessonDir string) {
	for i, att := range content.Attachments {
		key := att.Key(i + 1)
		if entry.Attachments[key] {
			continue
		}

		name := attachmentName(att, i+1)

		if !o.extensionAllowed(name) {
			logging.D(1, "Attachment %s filtered by extension", name)
			o.finishItem(ctx, state, item, consts.CategoryAttachments, key, name, "", att.PublishedAt, nil)
			continue
		}

		destPath := filepath.Join(lessonDir, name)
		err := o.retry.Run(ctx, "attachment fetch", func() error {
			return o.platform.DownloadAttachment(ctx, att, destPath, item.Course.Slug, item.CourseID, item.Module.ID)
		})

		o.finishItem(ctx, state, item, consts.CategoryAttachments, key, name, destPath, att.PublishedAt, err)
	}
}

// handleAuxiliaryURLs writes the extra links file when the lesson has links
// not yet persisted.
func (o *Orchestrator) handleAuxiliaryURLs(ctx context.Context, state *models.ResumeState, item *planner.Item, entry *models.LessonEntry, content *models.LessonContent, lessonDir string) {
	if entry.AuxiliaryURLs || len(content.AuxiliaryURLs) == 0 {
		return
	}

	var b strings.Builder
	for i, link := range content.AuxiliaryURLs {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, link.Label(), link.URL)
	}

	destPath := filepath.Join(lessonDir, consts.AuxiliaryLinksFile)
	err := fs.WriteFileAtomic(destPath, []byte(b.String()), 0644)

	o.finishItem(ctx, state, item, consts.CategoryAuxiliaryURLs, "", consts.AuxiliaryLinksFile, destPath, "", err)
}

// finishItem marks the leaf in the checkpoint, records the ledger row and
// accounts the failure.
func (o *Orchestrator) finishItem(ctx context.Context, state *models.ResumeState, item *planner.Item, category, itemKey, title, destPath, publishedAt string, itemErr error) {
	success := itemErr == nil
	if !success {
		o.failures++
		logging.E("%s item %q failed: %v", category, title, itemErr)
		o.emit(models.ErrorEvent(fmt.Sprintf("Failed %s: %s", category, title), itemErr))
	}

	if err := o.store.MarkStatus(state, o.platformName, item.CourseID, item.ModuleKey, item.LessonKey, category, itemKey, success); err != nil {
		logging.E("Failed persisting checkpoint for %s %q: %v", category, title, err)
	}

	if o.history == nil {
		return
	}
	rec := &models.HistoryRecord{
		Platform:    o.platformName,
		CourseID:    item.CourseID,
		ModuleKey:   item.ModuleKey,
		LessonKey:   item.LessonKey,
		Category:    category,
		ItemKey:     itemKey,
		Title:       title,
		Path:        destPath,
		Success:     success,
		PublishedAt: models.ParseProviderTime(publishedAt),
	}
	if err := o.history.RecordOutcome(ctx, rec); err != nil {
		logging.W("Failed recording history for %s %q: %v", category, title, err)
	}
}

// extensionAllowed applies the attachment extension allow list. An empty
// list allows everything.
func (o *Orchestrator) extensionAllowed(name string) bool {
	if len(o.settings.AllowedAttachmentExts) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, allowed := range o.settings.AllowedAttachmentExts {
		if ext == strings.ToLower(strings.TrimPrefix(strings.TrimSpace(allowed), ".")) {
			return true
		}
	}
	return false
}

// attachmentName derives a safe on-disk file name for an attachment.
func attachmentName(att *models.Attachment, index int) string {
	name := att.Filename
	if name == "" {
		if u, err := url.Parse(att.URL); err == nil {
			name = path.Base(u.Path)
		}
	}
	if name == "" || name == "." || name == "/" {
		name = fmt.Sprintf("Attachment %d", index)
	}
	return fs.TruncateFilenamePreserveExt(fs.SanitizePathComponent(name), consts.MaxFileNameLen)
}
