package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dfryer1193/postfeed/feed/application"
	"github.com/dfryer1193/postfeed/feed/domain"
	"github.com/dfryer1193/postfeed/internal/middleware"
	"github.com/gin-gonic/gin"
)

var errUnavailable = errors.New("posts API unavailable")

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryAPI is an in-memory posts API.
type memoryAPI struct {
	mu       sync.Mutex
	posts    map[string]*domain.Post
	comments map[string][]*domain.Comment
	nextID   int

	failList   bool
	failWrites bool
	failGet    bool
	failLikes  bool
}

func newMemoryAPI() *memoryAPI {
	return &memoryAPI{
		posts:    make(map[string]*domain.Post),
		comments: make(map[string][]*domain.Comment),
	}
}

func (m *memoryAPI) add(id, title, content string, createdAt int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[id] = &domain.Post{
		ID:        id,
		AuthorID:  "zzzzzzz@itshivam.in",
		Title:     title,
		Content:   content,
		CreatedAt: time.Unix(createdAt, 0),
		Likes:     []string{},
	}
}

func (m *memoryAPI) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, errUnavailable
	}
	out := make([]*domain.Post, 0, len(m.posts))
	for _, p := range m.posts {
		cp := *p
		cp.Likes = slices.Clone(p.Likes)
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memoryAPI) GetPost(ctx context.Context, id string) (*domain.Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, 0, errUnavailable
	}
	p, ok := m.posts[id]
	if !ok {
		return nil, 0, domain.ErrNotFound
	}
	cp := *p
	cp.Likes = slices.Clone(p.Likes)
	return &cp, len(cp.Likes), nil
}

func (m *memoryAPI) CreatePost(ctx context.Context, title, content, authorID string) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return nil, errUnavailable
	}
	m.nextID++
	p := &domain.Post{
		ID:        fmt.Sprintf("new%d", m.nextID),
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Unix(50_000, 0),
		Likes:     []string{},
	}
	m.posts[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *memoryAPI) setLike(postID, authorID string, like bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLikes {
		return errUnavailable
	}
	p, ok := m.posts[postID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Likes = slices.DeleteFunc(p.Likes, func(id string) bool { return id == authorID })
	if like {
		p.Likes = append(p.Likes, authorID)
	}
	return nil
}

func (m *memoryAPI) LikePost(ctx context.Context, postID, authorID string) error {
	return m.setLike(postID, authorID, true)
}

func (m *memoryAPI) UnlikePost(ctx context.Context, postID, authorID string) error {
	return m.setLike(postID, authorID, false)
}

func (m *memoryAPI) ListComments(ctx context.Context, postID string) ([]*domain.Comment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs := m.comments[postID]
	return slices.Clone(cs), len(cs), nil
}

func (m *memoryAPI) CreateComment(ctx context.Context, postID, content, authorID string) (*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return nil, errUnavailable
	}
	m.nextID++
	c := &domain.Comment{
		ID:        fmt.Sprintf("c%d", m.nextID),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Unix(60_000, 0),
	}
	m.comments[postID] = append(m.comments[postID], c)
	cp := *c
	return &cp, nil
}

type memoryBookmarks struct {
	mu     sync.Mutex
	stored map[string][]string
}

func (b *memoryBookmarks) GetBookmarks(ctx context.Context, sessionID string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.stored[sessionID]), nil
}

func (b *memoryBookmarks) SaveBookmarks(ctx context.Context, sessionID string, postIDs []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stored[sessionID] = slices.Clone(postIDs)
	return nil
}

const testSession = "abc1234"

type testApp struct {
	api       *memoryAPI
	bookmarks *memoryBookmarks
	router    *gin.Engine
}

func newTestApp(t *testing.T, baseURL string) *testApp {
	t.Helper()
	return newLimitedTestApp(t, baseURL, func(c *gin.Context) { c.Next() })
}

// newLimitedTestApp wraps write routes in limit.
func newLimitedTestApp(t *testing.T, baseURL string, limit gin.HandlerFunc) *testApp {
	t.Helper()
	api := newMemoryAPI()
	bookmarks := &memoryBookmarks{stored: make(map[string][]string)}
	states := application.NewStateStore(bookmarks, time.Hour)
	t.Cleanup(func() { states.Close() })

	handler, err := NewHandler(
		application.NewFeedService(api, api, bookmarks, states),
		application.NewDetailService(api, api, states),
		application.NewMarkdownRenderer(),
		baseURL,
	)
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}

	router := gin.New()
	router.Use(middleware.Session("itshivam.in"))
	handler.Register(router, limit)

	return &testApp{api: api, bookmarks: bookmarks, router: router}
}

// do sends a request as the test session. form may be nil.
func (a *testApp) do(method, target string, form url.Values, asJSON bool) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if asJSON {
		req.Header.Set("Accept", "application/json")
	} else {
		req.Header.Set("Accept", "text/html")
	}
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: testSession})
	return serve(a, req)
}

func serve(a *testApp, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}
