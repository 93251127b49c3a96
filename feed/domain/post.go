package domain

import (
	"context"
	"errors"
	"slices"
	"time"
)

// ErrNotFound is returned by repositories when the posts API has no such post.
var ErrNotFound = errors.New("not found")

// Post represents a post owned by the posts API.
// Likes holds the author IDs of everyone who liked the post and is never nil.
type Post struct {
	ID        string
	AuthorID  string
	Title     string
	Content   string
	CreatedAt time.Time
	Likes     []string
}

// LikedBy reports whether authorID is in the post's like list.
func (p *Post) LikedBy(authorID string) bool {
	return slices.Contains(p.Likes, authorID)
}

// PostView is a post with the counts shown in the feed.
// It is rebuilt on every feed load and never persisted.
type PostView struct {
	Post
	LikeCount    int
	CommentCount int
}

// PostDetail is the state behind the post detail page.
type PostDetail struct {
	Post         Post
	LikeCount    int
	Liked        bool
	Comments     []Comment
	CommentCount int
}

type PostRepository interface {
	ListPosts(ctx context.Context) ([]*Post, error)
	// GetPost returns the post and the like count reported by the API.
	GetPost(ctx context.Context, id string) (*Post, int, error)
	CreatePost(ctx context.Context, title, content, authorID string) (*Post, error)
	LikePost(ctx context.Context, postID, authorID string) error
	UnlikePost(ctx context.Context, postID, authorID string) error
}
