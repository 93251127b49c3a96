package domain

import (
	"context"
	"time"
)

// Comment is a markdown comment on a post. Comments are immutable once created.
type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}

type CommentRepository interface {
	// ListComments returns the comments of a post and the count reported by the API.
	ListComments(ctx context.Context, postID string) ([]*Comment, int, error)
	CreateComment(ctx context.Context, postID, content, authorID string) (*Comment, error)
}
