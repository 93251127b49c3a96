package application

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dfryer1193/postfeed/feed/domain"
	"github.com/rs/zerolog/log"
)

type DetailService struct {
	posts    domain.PostRepository
	comments domain.CommentRepository
	states   *StateStore
}

func NewDetailService(posts domain.PostRepository, comments domain.CommentRepository, states *StateStore) *DetailService {
	return &DetailService{
		posts:    posts,
		comments: comments,
		states:   states,
	}
}

// LoadPost fetches a post and its comments. If either call fails the whole
// load fails with ErrPostNotFound and nothing is stored.
func (s *DetailService) LoadPost(ctx context.Context, identity domain.Identity, postID string) (domain.PostDetail, error) {
	post, likeCount, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		log.Error().Err(err).Str("postID", postID).Msg("Failed to fetch post")
		return domain.PostDetail{}, fmt.Errorf("%w: %w", ErrPostNotFound, err)
	}

	comments, commentCount, err := s.comments.ListComments(ctx, postID)
	if err != nil {
		log.Error().Err(err).Str("postID", postID).Msg("Failed to fetch comments")
		return domain.PostDetail{}, fmt.Errorf("%w: %w", ErrPostNotFound, err)
	}

	detail := &domain.PostDetail{
		Post:         *post,
		LikeCount:    likeCount,
		Liked:        post.LikedBy(identity.AuthorID()),
		Comments:     make([]domain.Comment, 0, len(comments)),
		CommentCount: commentCount,
	}
	for _, c := range comments {
		detail.Comments = append(detail.Comments, *c)
	}

	st := s.states.Get(ctx, identity)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.details[postID] = detail
	return copyDetail(detail), nil
}

// Detail returns the loaded detail of postID and whether a like toggle on it
// is in flight.
func (s *DetailService) Detail(ctx context.Context, identity domain.Identity, postID string) (domain.PostDetail, bool, error) {
	st := s.states.Get(ctx, identity)
	st.mu.Lock()
	defer st.mu.Unlock()

	detail, ok := st.details[postID]
	if !ok {
		return domain.PostDetail{}, false, ErrPostNotFound
	}
	_, pending := st.inflight[postID]
	return copyDetail(detail), pending, nil
}

// ToggleLike flips the session's like on a loaded post detail. It shares the
// in-flight guard with the feed and reconciles the same way on failure.
func (s *DetailService) ToggleLike(ctx context.Context, identity domain.Identity, postID string) (domain.PostDetail, error) {
	st := s.states.Get(ctx, identity)
	authorID := identity.AuthorID()

	st.mu.Lock()
	detail, ok := st.details[postID]
	if !ok {
		st.mu.Unlock()
		return domain.PostDetail{}, ErrPostNotFound
	}
	if !st.beginLike(postID) {
		current := copyDetail(detail)
		st.mu.Unlock()
		return current, ErrLikeInProgress
	}
	wasLiked := detail.Liked
	detail.Post.Likes = toggledLikes(detail.Post.Likes, authorID, !wasLiked)
	detail.Liked = !wasLiked
	if wasLiked {
		detail.LikeCount--
	} else {
		detail.LikeCount++
	}
	st.mu.Unlock()

	remoteErr := sendLike(ctx, s.posts, postID, authorID, wasLiked)

	var fresh *domain.Post
	var freshCount int
	if remoteErr != nil {
		log.Error().Err(remoteErr).Str("postID", postID).Bool("wasLiked", wasLiked).Msg("Failed to toggle like")
		var err error
		fresh, freshCount, err = s.posts.GetPost(ctx, postID)
		if err != nil {
			log.Warn().Err(err).Str("postID", postID).Msg("Failed to re-fetch post after like failure")
		}
	}

	st.mu.Lock()
	st.endLike(postID)
	var result domain.PostDetail
	if detail, ok = st.details[postID]; ok {
		if fresh != nil {
			detail.Post.Likes = fresh.Likes
			detail.LikeCount = freshCount
			detail.Liked = fresh.LikedBy(authorID)
		}
		result = copyDetail(detail)
	}
	st.mu.Unlock()

	if remoteErr != nil {
		return result, fmt.Errorf("%w: %w", ErrLikeFailed, remoteErr)
	}
	return result, nil
}

// AddComment submits a comment and, once the API has stored it, appends it to
// the loaded thread and bumps the comment count. It returns the stored comment
// and the new count.
func (s *DetailService) AddComment(ctx context.Context, identity domain.Identity, postID, content string) (domain.Comment, int, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Comment{}, 0, ErrEmptyComment
	}

	comment, err := s.comments.CreateComment(ctx, postID, content, identity.AuthorID())
	if err != nil {
		log.Error().Err(err).Str("postID", postID).Str("session", identity.SessionID).Msg("Failed to add comment")
		return domain.Comment{}, 0, fmt.Errorf("failed to add comment: %w", err)
	}

	st := s.states.Get(ctx, identity)
	st.mu.Lock()
	defer st.mu.Unlock()

	count := 0
	if detail, ok := st.details[postID]; ok {
		detail.Comments = append(slices.Clone(detail.Comments), *comment)
		detail.CommentCount++
		count = detail.CommentCount
	}
	return *comment, count, nil
}

func copyDetail(d *domain.PostDetail) domain.PostDetail {
	out := *d
	out.Comments = slices.Clone(d.Comments)
	return out
}
