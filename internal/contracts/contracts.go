// Package contracts defines interfaces that decouple the orchestrator from
// platform implementations, storage and the CDM.
package contracts

import (
	"context"
	"database/sql"

	"coursarr/internal/models"
	"coursarr/internal/netutil"
)

// Platform is the capability set a content provider must implement. The
// orchestrator never subclasses or inspects it; login flows and site
// scraping are entirely the implementation's concern.
type Platform interface {
	Authenticate(ctx context.Context, credentials map[string]string) error
	FetchCourses(ctx context.Context) ([]map[string]any, error)
	FetchCourseContent(ctx context.Context, courses []map[string]any) (models.Selection, error)
	FetchLessonDetails(ctx context.Context, lesson *models.LessonSelection, courseSlug, courseID, moduleID string) (*models.LessonContent, error)
	DownloadAttachment(ctx context.Context, attachment *models.Attachment, path string, courseSlug, courseID, moduleID string) error
	Session() *netutil.Session
}

// Fetcher downloads one plain (non-DRM) stream or file. destPath may be
// extensionless; the fetcher decides the final extension and returns the
// path it actually wrote.
type Fetcher interface {
	Fetch(ctx context.Context, url string, session *netutil.Session, destPath string) (string, error)
}

// CDM converts a protection header into a license challenge and the license
// response into content keys. The cryptography is the implementation's
// concern; only content-type keys are returned.
type CDM interface {
	Challenge(pssh []byte) (challenge []byte, parse func(license []byte) ([]models.KIDKey, error), err error)
}

// HistoryStore records leaf-item outcomes in the download history ledger.
type HistoryStore interface {
	GetDB() *sql.DB

	RecordOutcome(ctx context.Context, rec *models.HistoryRecord) error
	ListSuccesses(ctx context.Context, platform string) ([]*models.HistoryRecord, error)
}
