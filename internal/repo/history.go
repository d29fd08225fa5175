// Package repo implements sqlite-backed stores over the ledger database.
package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coursarr/internal/domain/consts"
	"coursarr/internal/models"
	"coursarr/internal/utils/logging"

	"github.com/Masterminds/squirrel"
)

// HistoryStore holds a pointer to the sql.DB.
type HistoryStore struct {
	DB *sql.DB
}

// GetHistoryStore returns a history store instance with injected database.
func GetHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{
		DB: db,
	}
}

// GetDB returns the database.
func (hs *HistoryStore) GetDB() *sql.DB {
	return hs.DB
}

// RecordOutcome upserts the outcome row for one leaf item. The task identity
// tuple is unique, so a retried item overwrites its previous row.
func (hs *HistoryStore) RecordOutcome(ctx context.Context, rec *models.HistoryRecord) error {
	tx, err := hs.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.E("Panic rollback failed for item %q: %v", rec.ItemKey, rbErr)
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.E("Error rolling back outcome for item %q (original error: %v): %v", rec.ItemKey, err, rbErr)
			}
		}
	}()

	now := time.Now()

	var published any
	if !rec.PublishedAt.IsZero() {
		published = rec.PublishedAt
	}

	query := squirrel.
		Insert(consts.DBHistory).
		Columns(
			consts.QHistPlatform,
			consts.QHistCourseID,
			consts.QHistModuleKey,
			consts.QHistLessonKey,
			consts.QHistCategory,
			consts.QHistItemKey,
			consts.QHistTitle,
			consts.QHistPath,
			consts.QHistSuccess,
			consts.QHistPublished,
			consts.QHistCreatedAt,
			consts.QHistUpdatedAt,
		).
		Values(
			rec.Platform,
			rec.CourseID,
			rec.ModuleKey,
			rec.LessonKey,
			rec.Category,
			rec.ItemKey,
			rec.Title,
			rec.Path,
			rec.Success,
			published,
			now,
			now,
		).
		Suffix(`ON CONFLICT(platform, course_id, module_key, lesson_key, category, item_key)
            DO UPDATE SET title = excluded.title,
                          path = excluded.path,
                          success = excluded.success,
                          published_at = excluded.published_at,
                          updated_at = excluded.updated_at`).
		RunWith(tx)

	if _, err = query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to record outcome for item %q: %w", rec.ItemKey, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListSuccesses returns every successful outcome row for a platform.
func (hs *HistoryStore) ListSuccesses(ctx context.Context, platform string) ([]*models.HistoryRecord, error) {
	query := squirrel.
		Select(
			consts.QHistID,
			consts.QHistPlatform,
			consts.QHistCourseID,
			consts.QHistModuleKey,
			consts.QHistLessonKey,
			consts.QHistCategory,
			consts.QHistItemKey,
			consts.QHistTitle,
			consts.QHistPath,
			consts.QHistSuccess,
		).
		From(consts.DBHistory).
		Where(squirrel.Eq{
			consts.QHistPlatform: platform,
			consts.QHistSuccess:  true,
		}).
		OrderBy(consts.QHistID).
		RunWith(hs.DB)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query download history: %w", err)
	}
	defer rows.Close()

	var records []*models.HistoryRecord
	for rows.Next() {
		var (
			rec   models.HistoryRecord
			title sql.NullString
			path  sql.NullString
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Platform,
			&rec.CourseID,
			&rec.ModuleKey,
			&rec.LessonKey,
			&rec.Category,
			&rec.ItemKey,
			&title,
			&path,
			&rec.Success,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		rec.Title = title.String
		rec.Path = path.String
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating history rows: %w", err)
	}

	return records, nil
}
