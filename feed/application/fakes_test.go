package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dfryer1193/postfeed/feed/domain"
)

var errRemote = errors.New("remote unavailable")

// fakeAPI is an in-memory posts API. It implements domain.PostRepository and
// domain.CommentRepository.
type fakeAPI struct {
	mu sync.Mutex

	posts    map[string]*domain.Post
	comments map[string][]*domain.Comment
	nextID   int

	listErr     error
	getErr      error
	createErr   error
	likeErr     error
	commentErr  error
	countErrFor map[string]bool
	// likeCounts overrides the like_count GetPost reports for a post.
	likeCounts  map[string]int

	// likeGate, when set, blocks like/unlike calls until it is closed.
	likeGate    chan struct{}
	likeStarted chan struct{}

	calls map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		posts:       make(map[string]*domain.Post),
		comments:    make(map[string][]*domain.Comment),
		countErrFor: make(map[string]bool),
		likeCounts:  make(map[string]int),
		calls:       make(map[string]int),
	}
}

func (f *fakeAPI) addPost(id string, createdAt int64, likes ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if likes == nil {
		likes = []string{}
	}
	f.posts[id] = &domain.Post{
		ID:        id,
		AuthorID:  "author@itshivam.in",
		Title:     "title " + id,
		Content:   "content " + id,
		CreatedAt: time.Unix(createdAt, 0),
		Likes:     likes,
	}
}

func (f *fakeAPI) addComments(postID string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		f.nextID++
		f.comments[postID] = append(f.comments[postID], &domain.Comment{
			ID:      fmt.Sprintf("c%d", f.nextID),
			PostID:  postID,
			Content: "comment",
		})
	}
}

func (f *fakeAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) serverLikes(postID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.posts[postID].Likes)
}

func (f *fakeAPI) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListPosts"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*domain.Post, 0, len(f.posts))
	for _, p := range f.posts {
		cp := *p
		cp.Likes = slices.Clone(p.Likes)
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeAPI) GetPost(ctx context.Context, id string) (*domain.Post, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetPost"]++
	if f.getErr != nil {
		return nil, 0, f.getErr
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, 0, domain.ErrNotFound
	}
	cp := *p
	cp.Likes = slices.Clone(p.Likes)
	if n, ok := f.likeCounts[id]; ok {
		return &cp, n, nil
	}
	return &cp, len(cp.Likes), nil
}

func (f *fakeAPI) CreatePost(ctx context.Context, title, content, authorID string) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreatePost"]++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	p := &domain.Post{
		ID:        fmt.Sprintf("new%d", f.nextID),
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Unix(10_000, 0),
	}
	f.posts[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeAPI) waitLike() {
	if f.likeStarted != nil {
		f.likeStarted <- struct{}{}
	}
	if f.likeGate != nil {
		<-f.likeGate
	}
}

func (f *fakeAPI) LikePost(ctx context.Context, postID, authorID string) error {
	f.waitLike()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["LikePost"]++
	if f.likeErr != nil {
		return f.likeErr
	}
	p := f.posts[postID]
	if !slices.Contains(p.Likes, authorID) {
		p.Likes = append(p.Likes, authorID)
	}
	return nil
}

func (f *fakeAPI) UnlikePost(ctx context.Context, postID, authorID string) error {
	f.waitLike()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UnlikePost"]++
	if f.likeErr != nil {
		return f.likeErr
	}
	p := f.posts[postID]
	p.Likes = slices.DeleteFunc(p.Likes, func(id string) bool { return id == authorID })
	return nil
}

func (f *fakeAPI) ListComments(ctx context.Context, postID string) ([]*domain.Comment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListComments"]++
	if f.commentErr != nil || f.countErrFor[postID] {
		return nil, 0, errRemote
	}
	cs := f.comments[postID]
	return slices.Clone(cs), len(cs), nil
}

func (f *fakeAPI) CreateComment(ctx context.Context, postID, content, authorID string) (*domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateComment"]++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	c := &domain.Comment{
		ID:        fmt.Sprintf("c%d", f.nextID),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Unix(20_000, 0),
	}
	f.comments[postID] = append(f.comments[postID], c)
	cp := *c
	return &cp, nil
}

type fakeBookmarks struct {
	mu      sync.Mutex
	stored  map[string][]string
	getErr  error
	saveErr error
}

func newFakeBookmarks() *fakeBookmarks {
	return &fakeBookmarks{stored: make(map[string][]string)}
}

func (f *fakeBookmarks) GetBookmarks(ctx context.Context, sessionID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return slices.Clone(f.stored[sessionID]), nil
}

func (f *fakeBookmarks) SaveBookmarks(ctx context.Context, sessionID string, postIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.stored[sessionID] = slices.Clone(postIDs)
	return nil
}

var testIdentity = domain.Identity{SessionID: "abc1234", Domain: "itshivam.in"}

func newTestServices(t interface{ Cleanup(func()) }, api *fakeAPI, bookmarks *fakeBookmarks) (*FeedService, *DetailService) {
	states := NewStateStore(bookmarks, time.Hour)
	t.Cleanup(func() { states.Close() })
	return NewFeedService(api, api, bookmarks, states), NewDetailService(api, api, states)
}
