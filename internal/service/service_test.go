package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/UkralStul/posts-service/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder запоминает опубликованные события
type recorder struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, ev domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

// mapCache - кэш в памяти для проверки инвалидации
type mapCache struct {
	mu    sync.Mutex
	posts map[string]*domain.Post
	gets  int
}

func newMapCache() *mapCache {
	return &mapCache{posts: make(map[string]*domain.Post)}
}

func (c *mapCache) Get(_ context.Context, id string) (*domain.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.posts[id], nil
}

func (c *mapCache) Set(_ context.Context, post *domain.Post) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts[post.ID] = post
	return nil
}

func (c *mapCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.posts, id)
	return nil
}

func (c *mapCache) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.posts[id]
	return ok
}

func newTestService(t *testing.T) (*Service, *recorder) {
	t.Helper()
	rec := &recorder{}
	return New(inmemory.New(), Options{Publisher: rec}), rec
}

func mustPost(t *testing.T, svc *Service, userID, title string) *domain.Post {
	t.Helper()
	post, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: userID, Title: title, Content: "body of " + title})
	require.NoError(t, err)
	return post
}

func ptr[T any](v T) *T { return &v }

func TestNew_PageDefaults(t *testing.T) {
	svc := New(inmemory.New(), Options{})
	assert.Equal(t, DefaultPageSize, svc.defaultPageSize)
	assert.Equal(t, MaxPageSize, svc.maxPageSize)

	svc = New(inmemory.New(), Options{DefaultPageSize: 500, MaxPageSize: 50})
	assert.Equal(t, 50, svc.defaultPageSize)
}

func TestPageArgs(t *testing.T) {
	svc := New(inmemory.New(), Options{DefaultPageSize: 10, MaxPageSize: 100})

	tests := []struct {
		name     string
		req      PageRequest
		wantPage int
		wantSize int
	}{
		{"zero value", PageRequest{}, 1, 10},
		{"override", PageRequest{Page: 3, Size: 25}, 3, 25},
		{"negative size ignored", PageRequest{Page: 2, Size: -5}, 2, 10},
		{"negative page", PageRequest{Page: -1}, 1, 10},
		{"clamped", PageRequest{Size: 1000}, 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := svc.pageArgs(tt.req)
			assert.Equal(t, tt.wantPage, args.Page)
			assert.Equal(t, tt.wantSize, args.Size)
		})
	}
}

func TestCreatePost_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    CreatePostInput
		field string
	}{
		{"no user", CreatePostInput{Title: "t", Content: "c"}, "user"},
		{"empty title", CreatePostInput{UserID: "a", Title: "  ", Content: "c"}, "title"},
		{"long title", CreatePostInput{UserID: "a", Title: strings.Repeat("x", 256), Content: "c"}, "title"},
		{"empty content", CreatePostInput{UserID: "a", Title: "t"}, "content"},
		{"bad status", CreatePostInput{UserID: "a", Title: "t", Content: "c", Status: "deleted"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tt.in)
			require.ErrorIs(t, err, domain.ErrValidation)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("unknown tag", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: "a", Title: "t", Content: "c", TagIDs: []string{"missing"}})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestCreatePost_DefaultsAndTags(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, "Golang")
	require.NoError(t, err)

	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: "a", Title: "Hello", Content: "World", TagIDs: []string{tag.ID}})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, post.Status)
	assert.Equal(t, 0, post.Likes)
	require.Len(t, post.Tags, 1)
	assert.Equal(t, "golang", post.Tags[0].Slug)

	published, err := svc.CreatePost(ctx, CreatePostInput{UserID: "a", Title: "P", Content: "c", Status: "published"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, published.Status)
}

func TestUpdatePostStatus_Scenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	post := mustPost(t, svc, "user-a", "Lifecycle")

	_, err := svc.UpdatePostStatus(ctx, post.ID, domain.StatusPublished, "user-b")
	require.ErrorIs(t, err, domain.ErrPermission)

	for _, st := range []domain.Status{domain.StatusPublished, domain.StatusArchived} {
		updated, err := svc.UpdatePostStatus(ctx, post.ID, st, "user-a")
		require.NoError(t, err)
		assert.Equal(t, st, updated.Status)
	}

	_, err = svc.UpdatePostStatus(ctx, post.ID, domain.StatusPublished, "user-a")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, got.Status)

	updated, err := svc.UpdatePostStatus(ctx, post.ID, domain.StatusDraft, "user-a")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, updated.Status)

	_, err = svc.UpdatePostStatus(ctx, "missing", domain.StatusDraft, "user-a")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.UpdatePostStatus(ctx, post.ID, domain.Status("gone"), "user-a")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdatePostStatus_Transitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	post := mustPost(t, svc, "a", "Draft to archived")
	_, err := svc.UpdatePostStatus(ctx, post.ID, domain.StatusArchived, "a")
	require.NoError(t, err)

	// Повтор текущего статуса не является ошибкой, даже для archived
	_, err = svc.UpdatePostStatus(ctx, post.ID, domain.StatusArchived, "a")
	require.NoError(t, err)
}

func TestUpdatePost_UsesTransitionRule(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	post := mustPost(t, svc, "a", "Original")

	_, err := svc.UpdatePost(ctx, post.ID, "a", UpdatePostInput{Status: ptr("archived")})
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, post.ID, "a", UpdatePostInput{Title: ptr("New"), Status: ptr("published")})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title, "rejected update must not apply other fields")

	updated, err := svc.UpdatePost(ctx, post.ID, "a", UpdatePostInput{Title: ptr("New"), Content: ptr("Fresh")})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "Fresh", updated.Content)
	assert.Equal(t, domain.StatusArchived, updated.Status)

	_, err = svc.UpdatePost(ctx, post.ID, "a", UpdatePostInput{Title: ptr("")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.UpdatePost(ctx, post.ID, "a", UpdatePostInput{Status: ptr("")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.UpdatePost(ctx, post.ID, "b", UpdatePostInput{Content: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrPermission)
}

func TestDeletePost(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()
	post := mustPost(t, svc, "a", "Doomed")

	c, err := svc.CreateComment(ctx, "b", post.ID, "hi", nil)
	require.NoError(t, err)
	_, err = svc.CreateLike(ctx, "b", post.ID)
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeletePost(ctx, post.ID, "b"), domain.ErrPermission)
	require.NoError(t, svc.DeletePost(ctx, post.ID, "a"))
	require.ErrorIs(t, svc.DeletePost(ctx, post.ID, "a"), domain.ErrNotFound)

	_, err = svc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetComment(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	likes, err := svc.ListLikes(ctx, "", PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, likes.Total)

	assert.Contains(t, rec.types(), domain.EventPostDeleted)
}

func TestListPosts_SearchWinsOverTag(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, "News")
	require.NoError(t, err)

	tagged, err := svc.CreatePost(ctx, CreatePostInput{UserID: "a", Title: "Tagged", Content: "nothing special", TagIDs: []string{tag.ID}})
	require.NoError(t, err)
	matching := mustPost(t, svc, "a", "Gopher weekly")

	page, err := svc.ListPosts(ctx, PostQuery{Search: "gopher", TagSlug: "news"}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, matching.ID, page.Items[0].ID)

	page, err = svc.ListPosts(ctx, PostQuery{TagSlug: "news"}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, tagged.ID, page.Items[0].ID)

	// Строка из пробелов - это заданный поиск: тег игнорируется, ищется сам пробел
	page, err = svc.ListPosts(ctx, PostQuery{Search: " ", TagSlug: "news"}, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2, "whitespace search still overrides the tag filter")

	page, err = svc.ListPosts(ctx, PostQuery{Search: "   ", TagSlug: "news"}, PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestListPosts_OrderAndPaging(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var posts []*domain.Post
	for i := 0; i < 12; i++ {
		posts = append(posts, mustPost(t, svc, "a", "post"))
	}

	page, err := svc.ListPosts(ctx, PostQuery{}, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 12, page.Total)
	assert.True(t, page.HasNext)
	assert.Equal(t, posts[11].ID, page.Items[0].ID)

	page, err = svc.ListPosts(ctx, PostQuery{}, PageRequest{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.False(t, page.HasNext)

	// Обновление поднимает пост в начало списка
	_, err = svc.UpdatePost(ctx, posts[0].ID, "a", UpdatePostInput{Title: ptr("bumped")})
	require.NoError(t, err)
	page, err = svc.ListPosts(ctx, PostQuery{}, PageRequest{Size: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, posts[0].ID, page.Items[0].ID)

	page, err = svc.ListPosts(ctx, PostQuery{}, PageRequest{Page: 50})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestListRecentPublishedAndByOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	draft := mustPost(t, svc, "a", "draft")
	pub := mustPost(t, svc, "a", "pub")
	_, err := svc.UpdatePostStatus(ctx, pub.ID, domain.StatusPublished, "a")
	require.NoError(t, err)
	other := mustPost(t, svc, "b", "other")

	page, err := svc.ListRecentPublished(ctx, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, pub.ID, page.Items[0].ID)

	page, err = svc.ListByOwner(ctx, "a", PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	ids := []string{page.Items[0].ID, page.Items[1].ID}
	assert.ElementsMatch(t, []string{draft.ID, pub.ID}, ids)
	assert.NotContains(t, ids, other.ID)

	_, err = svc.ListByOwner(ctx, "", PageRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLikes_Scenario(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()
	post := mustPost(t, svc, "owner", "Likeable")

	like, err := svc.CreateLike(ctx, "user-a", post.ID)
	require.NoError(t, err)
	n, err := svc.LikesCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.CreateLike(ctx, "user-a", post.ID)
	require.ErrorIs(t, err, domain.ErrDuplicateLike)
	n, err = svc.LikesCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	liked, err := svc.IsLikedBy(ctx, post.ID, "user-a")
	require.NoError(t, err)
	assert.True(t, liked)

	require.ErrorIs(t, svc.DeleteLike(ctx, like.ID, "user-b"), domain.ErrPermission)
	n, err = svc.LikesCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, svc.DeleteLike(ctx, like.ID, "user-a"))
	n, err = svc.LikesCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.ErrorIs(t, svc.DeleteLike(ctx, like.ID, "user-a"), domain.ErrNotFound)
	_, err = svc.CreateLike(ctx, "user-a", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []domain.EventType{domain.EventLikeCreated, domain.EventLikeDeleted}, rec.types())
}

func TestLikes_ConcurrentCounter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	post := mustPost(t, svc, "owner", "Popular")

	const users = 50
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := "user-" + strings.Repeat("x", i)
			like, err := svc.CreateLike(ctx, user, post.ID)
			if !assert.NoError(t, err) {
				return
			}
			if i%2 == 0 {
				assert.NoError(t, svc.DeleteLike(ctx, like.ID, user))
			}
		}(i)
	}
	wg.Wait()

	n, err := svc.LikesCount(ctx, post.ID)
	require.NoError(t, err)
	likes, err := svc.ListLikes(ctx, post.ID, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, users/2, n)
	assert.Equal(t, likes.Total, n)
}

func TestIsLikedBy_Anonymous(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	post := mustPost(t, svc, "owner", "p")

	liked, err := svc.IsLikedBy(ctx, post.ID, "")
	require.NoError(t, err)
	assert.False(t, liked)

	liked, err = svc.IsLikedBy(ctx, post.ID, "nobody")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestComments_ThreadAndCounts(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()
	post := mustPost(t, svc, "a", "Thread")

	root, err := svc.CreateComment(ctx, "a", post.ID, "root", nil)
	require.NoError(t, err)
	reply, err := svc.CreateComment(ctx, "b", post.ID, "reply", &root.ID)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = svc.CreateComment(ctx, "c", post.ID, "deep", &reply.ID)
		require.NoError(t, err)
	}
	sibling, err := svc.CreateComment(ctx, "a", post.ID, "sibling", ptr(""))
	require.NoError(t, err)
	assert.Nil(t, sibling.ParentID, "empty parent id means root")

	n, err := svc.RepliesCount(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = svc.RepliesCount(ctx, reply.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = svc.RepliesCount(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err = svc.CommentsCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	roots, err := svc.ListRoots(ctx, post.ID, PageRequest{})
	require.NoError(t, err)
	require.Len(t, roots.Items, 2)
	assert.Equal(t, sibling.ID, roots.Items[0].ID)
	assert.Equal(t, root.ID, roots.Items[1].ID)

	replies, err := svc.ListReplies(ctx, root.ID, PageRequest{})
	require.NoError(t, err)
	require.Len(t, replies.Items, 1)
	assert.Equal(t, reply.ID, replies.Items[0].ID)

	_, err = svc.ListRoots(ctx, "", PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.ListRoots(ctx, "missing", PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.ListReplies(ctx, "missing", PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.ErrorIs(t, svc.DeleteComment(ctx, root.ID, "b"), domain.ErrPermission)
	require.NoError(t, svc.DeleteComment(ctx, root.ID, "a"))

	n, err = svc.CommentsCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the sibling survives")
	_, err = svc.GetComment(ctx, sibling.ID)
	assert.NoError(t, err)

	types := rec.types()
	assert.Equal(t, domain.EventCommentDeleted, types[len(types)-1])
	assert.Len(t, types, 6)
}

func TestCreateComment_Errors(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()
	post := mustPost(t, svc, "a", "one")
	other := mustPost(t, svc, "a", "two")

	foreign, err := svc.CreateComment(ctx, "a", other.ID, "elsewhere", nil)
	require.NoError(t, err)

	_, err = svc.CreateComment(ctx, "a", post.ID, "x", &foreign.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidParent)
	_, err = svc.CreateComment(ctx, "a", post.ID, "x", ptr("missing"))
	assert.ErrorIs(t, err, domain.ErrInvalidParent)
	_, err = svc.CreateComment(ctx, "a", "missing", "x", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.CreateComment(ctx, "a", post.ID, "   ", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.CreateComment(ctx, "a", post.ID, strings.Repeat("я", 2001), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateComment(ctx, "a", post.ID, strings.Repeat("я", 2000), nil)
	assert.NoError(t, err)

	assert.Len(t, rec.types(), 2, "failed creates publish nothing")
}

func TestUpdateComment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	post := mustPost(t, svc, "a", "p")
	c, err := svc.CreateComment(ctx, "b", post.ID, "first", nil)
	require.NoError(t, err)

	_, err = svc.UpdateComment(ctx, c.ID, "a", "hijack")
	assert.ErrorIs(t, err, domain.ErrPermission)
	_, err = svc.UpdateComment(ctx, c.ID, "b", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	updated, err := svc.UpdateComment(ctx, c.ID, "b", "second")
	require.NoError(t, err)
	assert.Equal(t, "second", updated.Content)
	assert.Equal(t, post.ID, updated.PostID)
}

func TestTags(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, "  Go Lang  ")
	require.NoError(t, err)
	assert.Equal(t, "Go Lang", tag.Name)
	assert.Equal(t, "go-lang", tag.Slug)

	_, err = svc.CreateTag(ctx, "Go Lang")
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
	_, err = svc.CreateTag(ctx, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.CreateTag(ctx, "Новости")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.CreateTag(ctx, strings.Repeat("t", 51))
	assert.ErrorIs(t, err, domain.ErrValidation)

	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: "a", Title: "t", Content: "c", TagIDs: []string{tag.ID}})
	require.NoError(t, err)
	n, err := svc.PostsCount(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	renamed, err := svc.UpdateTag(ctx, tag.ID, "Golang")
	require.NoError(t, err)
	assert.Equal(t, "golang", renamed.Slug)

	page, err := svc.ListTags(ctx, "LANG", PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	require.NoError(t, svc.DeleteTag(ctx, tag.ID))
	_, err = svc.GetTag(ctx, tag.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestCache_ReadThroughAndInvalidation(t *testing.T) {
	cache := newMapCache()
	svc := New(inmemory.New(), Options{Cache: cache})
	ctx := context.Background()
	post := mustPost(t, svc, "a", "cached")

	_, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, cache.has(post.ID))

	_, err = svc.CreateLike(ctx, "b", post.ID)
	require.NoError(t, err)
	assert.False(t, cache.has(post.ID), "like must invalidate the cached post")

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes)

	_, err = svc.UpdatePostStatus(ctx, post.ID, domain.StatusPublished, "a")
	require.NoError(t, err)
	assert.False(t, cache.has(post.ID))

	_, err = svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeletePost(ctx, post.ID, "a"))
	assert.False(t, cache.has(post.ID))
}

// racyCache выполняет хук один раз между чтением поста из хранилища и записью в кэш
type racyCache struct {
	*mapCache
	once  sync.Once
	onSet func()
}

func (c *racyCache) Set(ctx context.Context, post *domain.Post) error {
	c.once.Do(c.onSet)
	return c.mapCache.Set(ctx, post)
}

func TestGetPost_StaleCacheWriteKeepsLiveLikes(t *testing.T) {
	cache := &racyCache{mapCache: newMapCache()}
	svc := New(inmemory.New(), Options{Cache: cache})
	ctx := context.Background()
	post := mustPost(t, svc, "a", "racy")

	// Лайк фиксируется и инвалидирует кэш уже после того, как GetPost прочитал likes=0
	cache.onSet = func() {
		_, err := svc.CreateLike(ctx, "b", post.ID)
		require.NoError(t, err)
	}
	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Likes)
	require.True(t, cache.has(post.ID), "stale post was written back")

	got, err = svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes)
	n, err := svc.LikesCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.Likes)

	// Запись в кэше не меняется при чтении
	cache.mu.Lock()
	assert.Equal(t, 0, cache.posts[post.ID].Likes)
	cache.mu.Unlock()
}

func TestTags_RenameAndDeleteInvalidateCachedPosts(t *testing.T) {
	cache := newMapCache()
	svc := New(inmemory.New(), Options{Cache: cache})
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, "Go")
	require.NoError(t, err)
	tagged, err := svc.CreatePost(ctx, CreatePostInput{UserID: "a", Title: "t", Content: "c", TagIDs: []string{tag.ID}})
	require.NoError(t, err)
	plain := mustPost(t, svc, "a", "plain")

	for _, id := range []string{tagged.ID, plain.ID} {
		_, err := svc.GetPost(ctx, id)
		require.NoError(t, err)
	}

	_, err = svc.UpdateTag(ctx, tag.ID, "Golang")
	require.NoError(t, err)
	assert.False(t, cache.has(tagged.ID))
	assert.True(t, cache.has(plain.ID), "untagged posts stay cached")

	got, err := svc.GetPost(ctx, tagged.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "Golang", got.Tags[0].Name)
	require.True(t, cache.has(tagged.ID))

	require.NoError(t, svc.DeleteTag(ctx, tag.ID))
	assert.False(t, cache.has(tagged.ID))
	got, err = svc.GetPost(ctx, tagged.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestValidationMessages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		call  func() error
		field string
		msg   string
	}{
		{"missing user", func() error {
			_, err := svc.CreateComment(ctx, "", "p", "hi", nil)
			return err
		}, "user", "user is required"},
		{"blank title", func() error {
			_, err := svc.CreatePost(ctx, CreatePostInput{UserID: "a", Title: " \t", Content: "c"})
			return err
		}, "title", "title cannot be empty"},
		{"long tag", func() error {
			_, err := svc.CreateTag(ctx, strings.Repeat("t", 51))
			return err
		}, "name", "name is longer than 50 characters"},
		{"long comment", func() error {
			_, err := svc.CreateComment(ctx, "a", "p", strings.Repeat("я", 2001), nil)
			return err
		}, "content", "content is longer than 2000 characters"},
		{"patch blank content", func() error {
			_, err := svc.UpdatePost(ctx, "p", "a", UpdatePostInput{Content: ptr("  ")})
			return err
		}, "content", "content cannot be empty"},
		{"patch unknown status", func() error {
			_, err := svc.UpdatePost(ctx, "p", "a", UpdatePostInput{Status: ptr("deleted")})
			return err
		}, "status", `unknown status "deleted", expected one of: draft published archived`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.msg, verr.Msg)
		})
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	rec := &recorder{err: errors.New("broker down")}
	svc := New(inmemory.New(), Options{Publisher: rec})
	ctx := context.Background()
	post := mustPost(t, svc, "a", "p")

	_, err := svc.CreateComment(ctx, "a", post.ID, "still saved", nil)
	require.NoError(t, err)
	n, err := svc.CommentsCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
