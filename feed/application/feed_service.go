package application

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dfryer1193/postfeed/feed/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultCountConcurrency = 8

// FeedSnapshot is a copy of a session's feed, safe to render without locks.
type FeedSnapshot struct {
	Posts      []domain.PostView
	Bookmarked map[string]bool
	// Pending holds the posts with a like toggle in flight.
	Pending map[string]bool
}

type FeedService struct {
	posts     domain.PostRepository
	comments  domain.CommentRepository
	bookmarks domain.BookmarkRepository
	states    *StateStore

	countConcurrency int
}

func NewFeedService(posts domain.PostRepository, comments domain.CommentRepository, bookmarks domain.BookmarkRepository, states *StateStore) *FeedService {
	return &FeedService{
		posts:            posts,
		comments:         comments,
		bookmarks:        bookmarks,
		states:           states,
		countConcurrency: defaultCountConcurrency,
	}
}

// LoadFeed fetches every post and its comment count, then replaces the
// session's feed with them, newest first and bookmarked posts on top.
// If the post list cannot be fetched the feed is left empty.
func (s *FeedService) LoadFeed(ctx context.Context, identity domain.Identity) (FeedSnapshot, error) {
	st := s.states.Get(ctx, identity)

	views, err := s.fetchFeed(ctx)
	if err != nil {
		log.Error().Err(err).Str("session", identity.SessionID).Msg("Failed to load feed")
		st.mu.Lock()
		st.posts = nil
		snap := st.snapshot()
		st.mu.Unlock()
		return snap, fmt.Errorf("failed to load feed: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.posts = ArrangeFeed(views, &st.bookmarks)
	return st.snapshot(), nil
}

// Snapshot returns the session's feed as last loaded or mutated.
func (s *FeedService) Snapshot(ctx context.Context, identity domain.Identity) FeedSnapshot {
	st := s.states.Get(ctx, identity)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snapshot()
}

func (s *FeedService) fetchFeed(ctx context.Context) ([]*domain.PostView, error) {
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*domain.PostView, len(posts))
	var g errgroup.Group
	g.SetLimit(s.countConcurrency)
	for i, p := range posts {
		g.Go(func() error {
			views[i] = &domain.PostView{
				Post:         *p,
				LikeCount:    len(p.Likes),
				CommentCount: s.commentCount(ctx, p.ID),
			}
			return nil
		})
	}
	// count lookups never fail the feed
	_ = g.Wait()

	return views, nil
}

// commentCount returns zero when the lookup fails.
func (s *FeedService) commentCount(ctx context.Context, postID string) int {
	_, count, err := s.comments.ListComments(ctx, postID)
	if err != nil {
		log.Warn().Err(err).Str("postID", postID).Msg("Failed to fetch comment count")
		return 0
	}
	return count
}

// ArrangeFeed orders posts by creation time descending and moves bookmarked
// posts ahead of the rest, keeping the relative order inside both groups.
func ArrangeFeed(views []*domain.PostView, bookmarks *domain.Bookmarks) []*domain.PostView {
	sorted := slices.Clone(views)
	slices.SortStableFunc(sorted, func(a, b *domain.PostView) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	arranged := make([]*domain.PostView, 0, len(sorted))
	var rest []*domain.PostView
	for _, v := range sorted {
		if bookmarks.Contains(v.ID) {
			arranged = append(arranged, v)
		} else {
			rest = append(rest, v)
		}
	}
	return append(arranged, rest...)
}

// CreatePost validates and submits a new post. On success the returned post is
// put at the top of the session's feed. Nothing is inserted before the API
// confirms the post.
func (s *FeedService) CreatePost(ctx context.Context, identity domain.Identity, title, content string) (domain.PostView, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return domain.PostView{}, ErrInvalidPost
	}

	post, err := s.posts.CreatePost(ctx, title, content, identity.AuthorID())
	if err != nil {
		log.Error().Err(err).Str("session", identity.SessionID).Msg("Failed to create post")
		return domain.PostView{}, fmt.Errorf("failed to create post: %w", err)
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}

	view := &domain.PostView{Post: *post}

	st := s.states.Get(ctx, identity)
	st.mu.Lock()
	st.posts = append([]*domain.PostView{view}, st.posts...)
	st.mu.Unlock()

	return *view, nil
}

// ToggleLike flips the session's like on a feed post. The local state changes
// immediately; if the API call fails the post's likes are re-fetched and the
// authoritative list replaces the optimistic one.
func (s *FeedService) ToggleLike(ctx context.Context, identity domain.Identity, postID string) (domain.PostView, error) {
	st := s.states.Get(ctx, identity)
	authorID := identity.AuthorID()

	st.mu.Lock()
	view := st.findPost(postID)
	if view == nil {
		st.mu.Unlock()
		return domain.PostView{}, ErrPostNotFound
	}
	if !st.beginLike(postID) {
		current := *view
		st.mu.Unlock()
		return current, ErrLikeInProgress
	}
	wasLiked := view.LikedBy(authorID)
	view.Likes = toggledLikes(view.Likes, authorID, !wasLiked)
	if wasLiked {
		view.LikeCount--
	} else {
		view.LikeCount++
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
	var result domain.PostView
	// the feed may have been reloaded while the call was in flight
	if view = st.findPost(postID); view != nil {
		if fresh != nil {
			view.Likes = fresh.Likes
			view.LikeCount = freshCount
		}
		result = *view
	}
	st.mu.Unlock()

	if remoteErr != nil {
		return result, fmt.Errorf("%w: %w", ErrLikeFailed, remoteErr)
	}
	return result, nil
}

// ToggleBookmark flips a post's membership in the session's bookmark set and
// stores the new set. The feed order is left alone until the next load.
func (s *FeedService) ToggleBookmark(ctx context.Context, identity domain.Identity, postID string) (bool, error) {
	st := s.states.Get(ctx, identity)

	st.saveMu.Lock()
	defer st.saveMu.Unlock()

	st.mu.Lock()
	bookmarked := st.bookmarks.Toggle(postID)
	ids := st.bookmarks.IDs()
	st.mu.Unlock()

	if err := s.bookmarks.SaveBookmarks(ctx, identity.SessionID, ids); err != nil {
		log.Error().Err(err).Str("session", identity.SessionID).Str("postID", postID).Msg("Failed to save bookmarks")
		return bookmarked, fmt.Errorf("failed to save bookmarks: %w", err)
	}
	return bookmarked, nil
}

// snapshot copies the feed. Callers must hold st.mu.
func (st *FeedState) snapshot() FeedSnapshot {
	snap := FeedSnapshot{
		Posts:      make([]domain.PostView, 0, len(st.posts)),
		Bookmarked: make(map[string]bool, st.bookmarks.Len()),
		Pending:    make(map[string]bool, len(st.inflight)),
	}
	for _, p := range st.posts {
		snap.Posts = append(snap.Posts, *p)
	}
	for _, id := range st.bookmarks.IDs() {
		snap.Bookmarked[id] = true
	}
	for id := range st.inflight {
		snap.Pending[id] = true
	}
	return snap
}
