package application

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dfryer1193/postfeed/feed/domain"
	"github.com/rs/zerolog/log"
)

const defaultStateTTL = 30 * time.Minute

// FeedState is the view state of one browser session: the loaded feed, the
// opened post details, the bookmark set and the likes currently in flight.
// Remote calls are never made while mu is held.
type FeedState struct {
	mu       sync.Mutex
	identity domain.Identity

	bookmarks domain.Bookmarks
	// saveMu serialises bookmark writes so the stored list matches the last toggle.
	saveMu sync.Mutex

	posts    []*domain.PostView
	details  map[string]*domain.PostDetail
	inflight map[string]struct{}
	lastSeen time.Time
}

func newFeedState(identity domain.Identity, bookmarks domain.Bookmarks) *FeedState {
	return &FeedState{
		identity:  identity,
		bookmarks: bookmarks,
		details:   make(map[string]*domain.PostDetail),
		inflight:  make(map[string]struct{}),
		lastSeen:  time.Now(),
	}
}

// beginLike marks postID as having a like toggle in flight. It returns false
// when one is already outstanding. Callers must hold mu.
func (st *FeedState) beginLike(postID string) bool {
	if _, busy := st.inflight[postID]; busy {
		return false
	}
	st.inflight[postID] = struct{}{}
	return true
}

// endLike clears the in-flight mark. Callers must hold mu.
func (st *FeedState) endLike(postID string) {
	delete(st.inflight, postID)
}

// findPost returns the feed entry for postID. Callers must hold mu.
func (st *FeedState) findPost(postID string) *domain.PostView {
	for _, p := range st.posts {
		if p.ID == postID {
			return p
		}
	}
	return nil
}

// StateStore keeps one FeedState per session and evicts the ones that have
// been idle for longer than the TTL.
type StateStore struct {
	bookmarks domain.BookmarkRepository
	ttl       time.Duration

	mu     sync.Mutex
	states map[string]*FeedState

	// Store lifecycle context - cancelled when Close() is called
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStateStore creates a StateStore and starts its cleanup goroutine.
func NewStateStore(bookmarks domain.BookmarkRepository, ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &StateStore{
		bookmarks: bookmarks,
		ttl:       ttl,
		states:    make(map[string]*FeedState),
		ctx:       ctx,
		cancel:    cancel,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.cleanupLoop()
	}()

	return s
}

// Close stops the cleanup goroutine.
func (s *StateStore) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

// Get returns the state for identity, creating it on first use. A new state
// starts with the bookmarks stored for the session, or none if they cannot be read.
func (s *StateStore) Get(ctx context.Context, identity domain.Identity) *FeedState {
	s.mu.Lock()
	st, ok := s.states[identity.SessionID]
	if ok {
		st.mu.Lock()
		st.lastSeen = time.Now()
		st.mu.Unlock()
	}
	s.mu.Unlock()
	if ok {
		return st
	}

	ids, err := s.bookmarks.GetBookmarks(ctx, identity.SessionID)
	if err != nil {
		log.Warn().Err(err).Str("session", identity.SessionID).Msg("Failed to load bookmarks, starting with none")
		ids = nil
	}
	fresh := newFeedState(identity, domain.NewBookmarks(ids))

	s.mu.Lock()
	defer s.mu.Unlock()
	// another request for the same session may have won the race
	if existing, ok := s.states[identity.SessionID]; ok {
		return existing
	}
	s.states[identity.SessionID] = fresh
	return fresh
}

// Len returns the number of live session states.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

func (s *StateStore) cleanupLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.evictIdle(now)
		}
	}
}

func (s *StateStore) evictIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, st := range s.states {
		st.mu.Lock()
		idle := now.Sub(st.lastSeen) > s.ttl && len(st.inflight) == 0
		st.mu.Unlock()
		if idle {
			delete(s.states, id)
		}
	}
}

// toggledLikes returns a new like list with authorID added or removed.
// The input slice is never modified so snapshots handed out earlier stay valid.
func toggledLikes(likes []string, authorID string, like bool) []string {
	if like {
		return append(slices.Clone(likes), authorID)
	}
	out := make([]string, 0, len(likes))
	for _, id := range likes {
		if id != authorID {
			out = append(out, id)
		}
	}
	return out
}

// sendLike issues the call that moves the post away from wasLiked.
func sendLike(ctx context.Context, repo domain.PostRepository, postID, authorID string, wasLiked bool) error {
	if wasLiked {
		return repo.UnlikePost(ctx, postID, authorID)
	}
	return repo.LikePost(ctx, postID, authorID)
}
