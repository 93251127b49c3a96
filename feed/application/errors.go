package application

import "errors"

var (
	// ErrInvalidPost is returned when a post is submitted without a title or body.
	ErrInvalidPost = errors.New("title and content are required")
	// ErrEmptyComment is returned when a comment is submitted without content.
	ErrEmptyComment = errors.New("comment content is required")
	// ErrLikeInProgress is returned when a like toggle for the same post is still outstanding.
	ErrLikeInProgress = errors.New("like toggle already in progress")
	// ErrLikeFailed wraps the remote error of a like toggle that did not reach the API.
	ErrLikeFailed = errors.New("like toggle failed")
	// ErrPostNotFound is returned when a post is not in the session state or could not be fetched.
	ErrPostNotFound = errors.New("post not found")
)
