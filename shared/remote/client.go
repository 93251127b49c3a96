package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dfryer1193/postfeed/api"
	"github.com/dfryer1193/postfeed/feed/domain"
)

var (
	_ domain.PostRepository    = (*Client)(nil)
	_ domain.CommentRepository = (*Client)(nil)
)

const maxErrorBody = 512

// APIError is returned when the posts API answers with a non-2xx status.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("posts api: %s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return nil
}

// Client talks to the posts API. It implements domain.PostRepository and
// domain.CommentRepository.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the API rooted at baseURL.
// A nil httpClient gets a default client with the given timeout.
func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ListPosts fetches every post.
func (c *Client) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	op := "listing posts"
	var resp api.PostList
	if err := c.do(ctx, op, http.MethodGet, "/posts/all", nil, nil, &resp); err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, 0, len(resp.Posts))
	for i := range resp.Posts {
		posts = append(posts, postToDomain(&resp.Posts[i]))
	}
	return posts, nil
}

// GetPost fetches a single post. The like count falls back to the length of
// the like list when the API omits it.
func (c *Client) GetPost(ctx context.Context, id string) (*domain.Post, int, error) {
	op := fmt.Sprintf("getting post %s", id)
	var resp api.PostWithLikes
	if err := c.do(ctx, op, http.MethodGet, "/posts/get", url.Values{"postID": {id}}, nil, &resp); err != nil {
		return nil, 0, err
	}

	post := postToDomain(&resp.Post)
	likeCount := len(post.Likes)
	if resp.LikeCount != nil {
		likeCount = *resp.LikeCount
	}
	return post, likeCount, nil
}

// CreatePost creates a post authored by authorID and returns the stored post.
func (c *Client) CreatePost(ctx context.Context, title, content, authorID string) (*domain.Post, error) {
	op := "creating post"
	body := api.PostProto{Title: title, Content: content, UserID: authorID}
	var created api.Post
	if err := c.do(ctx, op, http.MethodPost, "/posts", nil, body, &created); err != nil {
		return nil, err
	}
	return postToDomain(&created), nil
}

// LikePost adds authorID to the post's likes.
func (c *Client) LikePost(ctx context.Context, postID, authorID string) error {
	op := fmt.Sprintf("liking post %s", postID)
	return c.do(ctx, op, http.MethodPost, "/posts/like", nil, api.LikeProto{PostID: postID, UserID: authorID}, nil)
}

// UnlikePost removes authorID from the post's likes.
func (c *Client) UnlikePost(ctx context.Context, postID, authorID string) error {
	op := fmt.Sprintf("unliking post %s", postID)
	return c.do(ctx, op, http.MethodPost, "/posts/unlike", nil, api.LikeProto{PostID: postID, UserID: authorID}, nil)
}

// ListComments fetches the comments of a post.
func (c *Client) ListComments(ctx context.Context, postID string) ([]*domain.Comment, int, error) {
	op := fmt.Sprintf("listing comments for post %s", postID)
	var resp api.CommentList
	if err := c.do(ctx, op, http.MethodGet, "/comments/get", url.Values{"postID": {postID}}, nil, &resp); err != nil {
		return nil, 0, err
	}

	comments := make([]*domain.Comment, 0, len(resp.Comments))
	for i := range resp.Comments {
		comments = append(comments, commentToDomain(&resp.Comments[i]))
	}
	return comments, resp.CommentCount, nil
}

// CreateComment adds a comment to a post and returns the stored comment.
func (c *Client) CreateComment(ctx context.Context, postID, content, authorID string) (*domain.Comment, error) {
	op := fmt.Sprintf("creating comment on post %s", postID)
	body := api.CommentProto{PostID: postID, Content: content, UserID: authorID}
	var created api.Comment
	if err := c.do(ctx, op, http.MethodPost, "/comments", nil, body, &created); err != nil {
		return nil, err
	}
	return commentToDomain(&created), nil
}

// do performs one round trip. A nil out discards the response body.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("posts api: %s failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("posts api: %s failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return handleAPIError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return handleAPIError(op, &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		})
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("posts api: %s failed to decode response: %w", op, err)
	}
	return nil
}

// handleAPIError keeps APIErrors as they are and wraps transport errors with the operation.
func handleAPIError(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return fmt.Errorf("posts api: %s failed: %w", op, err)
}

func postToDomain(p *api.Post) *domain.Post {
	likes := p.Likes
	if likes == nil {
		likes = []string{}
	}
	return &domain.Post{
		ID:        p.ID,
		AuthorID:  p.UserID,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: time.Unix(p.CreatedAt, 0).UTC(),
		Likes:     likes,
	}
}

func commentToDomain(c *api.Comment) *domain.Comment {
	return &domain.Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.UserID,
		Content:   c.Content,
		CreatedAt: time.Unix(c.CreatedAt, 0).UTC(),
	}
}
