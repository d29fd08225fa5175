package database

import (
	"database/sql"
	"fmt"
)

// initHistoryTable initializes the download history table
func initHistoryTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS download_history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        platform TEXT NOT NULL,
        course_id TEXT NOT NULL,
        module_key TEXT NOT NULL,
        lesson_key TEXT NOT NULL,
        category TEXT NOT NULL,
        item_key TEXT NOT NULL,
        title TEXT,
        path TEXT,
        success INTEGER DEFAULT 0,
        published_at TIMESTAMP,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        UNIQUE(platform, course_id, module_key, lesson_key, category, item_key)
    );
    CREATE INDEX IF NOT EXISTS idx_history_platform ON download_history(platform);
    CREATE INDEX IF NOT EXISTS idx_history_course ON download_history(course_id);
    CREATE INDEX IF NOT EXISTS idx_history_success ON download_history(success);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create download history table: %w", err)
	}
	return nil
}
