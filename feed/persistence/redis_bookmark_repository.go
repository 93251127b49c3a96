package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/postfeed/feed/domain"
	"github.com/go-redis/redis/v8"
)

var _ domain.BookmarkRepository = (*RedisBookmarkRepository)(nil)

const bookmarkKeyPrefix = "bookmarks:"

// RedisBookmarkRepository keeps each session's bookmark list as a JSON array
// under bookmarks:<session>. A zero ttl keeps keys forever.
type RedisBookmarkRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBookmarkRepository(client *redis.Client, ttl time.Duration) *RedisBookmarkRepository {
	return &RedisBookmarkRepository{
		client: client,
		ttl:    ttl,
	}
}

func bookmarkKey(sessionID string) string {
	return bookmarkKeyPrefix + sessionID
}

func (r *RedisBookmarkRepository) GetBookmarks(ctx context.Context, sessionID string) ([]string, error) {
	raw, err := r.client.Get(ctx, bookmarkKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode bookmarks: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (r *RedisBookmarkRepository) SaveBookmarks(ctx context.Context, sessionID string, postIDs []string) error {
	if sessionID == "" {
		return fmt.Errorf("session id cannot be empty")
	}
	if postIDs == nil {
		postIDs = []string{}
	}

	raw, err := json.Marshal(postIDs)
	if err != nil {
		return fmt.Errorf("failed to encode bookmarks: %w", err)
	}

	if err := r.client.Set(ctx, bookmarkKey(sessionID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write bookmarks: %w", err)
	}
	return nil
}
