package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dfryer1193/postfeed/feed/domain"
	"github.com/dfryer1193/postfeed/shared/db"
)

var _ domain.BookmarkRepository = (*SQLiteBookmarkRepository)(nil)

// SQLiteBookmarkRepository stores each session's bookmark list as ordered rows.
type SQLiteBookmarkRepository struct {
	db *sql.DB
}

func NewBookmarkRepository(sqlDB *sql.DB) *SQLiteBookmarkRepository {
	return &SQLiteBookmarkRepository{
		db: sqlDB,
	}
}

const selectBookmarksQuery = `
	SELECT post_id
	FROM bookmarks
	WHERE session_id = ?
	ORDER BY position ASC
`

// GetBookmarks returns the session's bookmarked post ids in the order they were saved.
func (r *SQLiteBookmarkRepository) GetBookmarks(ctx context.Context, sessionID string) ([]string, error) {
	executor := db.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, selectBookmarksQuery, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookmarks: %w", err)
	}

	return ids, nil
}

// SaveBookmarks replaces the session's whole list. Duplicates keep their first position.
func (r *SQLiteBookmarkRepository) SaveBookmarks(ctx context.Context, sessionID string, postIDs []string) error {
	if sessionID == "" {
		return fmt.Errorf("session id cannot be empty")
	}

	now := time.Now().UTC()
	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)

		if _, err := executor.ExecContext(txCtx, "DELETE FROM bookmarks WHERE session_id = ?", sessionID); err != nil {
			return fmt.Errorf("failed to clear bookmarks: %w", err)
		}

		for position, postID := range postIDs {
			_, err := executor.ExecContext(txCtx, `
				INSERT INTO bookmarks (session_id, post_id, position, created_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(session_id, post_id) DO NOTHING
			`, sessionID, postID, position, now)
			if err != nil {
				return fmt.Errorf("failed to insert bookmark %s: %w", postID, err)
			}
		}

		return nil
	})
}
