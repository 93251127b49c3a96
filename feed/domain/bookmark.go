package domain

import (
	"context"
	"slices"
)

// Bookmarks is an insertion-ordered set of bookmarked post IDs.
type Bookmarks struct {
	ids []string
}

func NewBookmarks(ids []string) Bookmarks {
	var b Bookmarks
	for _, id := range ids {
		if id != "" && !b.Contains(id) {
			b.ids = append(b.ids, id)
		}
	}
	return b
}

func (b *Bookmarks) Contains(postID string) bool {
	return slices.Contains(b.ids, postID)
}

// Toggle flips membership of postID and reports whether it is now bookmarked.
func (b *Bookmarks) Toggle(postID string) bool {
	if i := slices.Index(b.ids, postID); i >= 0 {
		b.ids = slices.Delete(b.ids, i, i+1)
		return false
	}
	b.ids = append(b.ids, postID)
	return true
}

// IDs returns a copy of the bookmarked IDs in insertion order.
func (b *Bookmarks) IDs() []string {
	return slices.Clone(b.ids)
}

func (b *Bookmarks) Len() int {
	return len(b.ids)
}

// BookmarkRepository persists the bookmark list of a session.
// The list is local to this service and never sent to the posts API.
type BookmarkRepository interface {
	GetBookmarks(ctx context.Context, sessionID string) ([]string, error)
	SaveBookmarks(ctx context.Context, sessionID string, postIDs []string) error
}
