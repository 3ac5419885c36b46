// Package storagetest содержит общий набор проверок контракта storage.Storage.
// Каждая реализация хранилища прогоняет его из своего _test.go.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/UkralStul/posts-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory создает пустое хранилище для одного подтеста.
type Factory func(t *testing.T) storage.Storage

var page = storage.PageArgs{Page: 1, Size: 100}

// Run прогоняет все проверки против хранилища, созданного newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Storage)
	}{
		{"Tag_CreateAndDuplicate", testTagCreateAndDuplicate},
		{"Tag_UpdateListDelete", testTagUpdateListDelete},
		{"Tag_PostIDs", testTagPostIDs},
		{"Post_CreateAndGet", testPostCreateAndGet},
		{"Post_UnknownTag", testPostUnknownTag},
		{"Post_StatusLifecycle", testPostStatusLifecycle},
		{"Post_UpdateFields", testPostUpdateFields},
		{"Post_DeleteCascades", testPostDeleteCascades},
		{"Post_ListFilters", testPostListFilters},
		{"Post_ListOrderAndPaging", testPostListOrderAndPaging},
		{"Comment_InvalidParent", testCommentInvalidParent},
		{"Comment_RootsAndReplies", testCommentRootsAndReplies},
		{"Comment_DeleteSubtree", testCommentDeleteSubtree},
		{"Comment_DeleteSubtreeConcurrentReplies", testCommentDeleteSubtreeConcurrentReplies},
		{"Comment_Permissions", testCommentPermissions},
		{"Comment_Counts", testCommentCounts},
		{"Like_Scenario", testLikeScenario},
		{"Like_Permission", testLikePermission},
		{"Like_NotFound", testLikeNotFound},
		{"Like_CounterAndLikedIDs", testLikeCounterAndLikedIDs},
		{"Like_ConcurrentUsers", testLikeConcurrentUsers},
		{"Like_ConcurrentCreateDelete", testLikeConcurrentCreateDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func newPost(t *testing.T, s storage.Storage, userID string, tagIDs ...string) *domain.Post {
	t.Helper()
	post, err := s.CreatePost(context.Background(), &domain.Post{
		UserID:  userID,
		Title:   "Test Post",
		Content: "Content",
		Status:  domain.StatusDraft,
	}, tagIDs)
	require.NoError(t, err)
	return post
}

func newComment(t *testing.T, s storage.Storage, postID string, parentID *string) *domain.Comment {
	t.Helper()
	c, err := s.CreateComment(context.Background(), &domain.Comment{
		PostID:   postID,
		ParentID: parentID,
		UserID:   "user-1",
		Content:  "comment",
	})
	require.NoError(t, err)
	return c
}

func newTag(t *testing.T, s storage.Storage, name, slug string) *domain.Tag {
	t.Helper()
	tag, err := s.CreateTag(context.Background(), &domain.Tag{Name: name, Slug: slug})
	require.NoError(t, err)
	return tag
}

// assertCounter проверяет главный инвариант: post.Likes == число записей Like.
func assertCounter(t *testing.T, s storage.Storage, postID string, want int) {
	t.Helper()
	ctx := context.Background()
	post, err := s.GetPostByID(ctx, postID)
	require.NoError(t, err)
	n, err := s.CountLikesByPostID(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, want, post.Likes)
	assert.Equal(t, n, post.Likes)
}

func ids[T interface{ *domain.Post | *domain.Comment }](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		switch v := any(item).(type) {
		case *domain.Post:
			out[i] = v.ID
		case *domain.Comment:
			out[i] = v.ID
		}
	}
	return out
}

func testTagCreateAndDuplicate(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	tag := newTag(t, s, "Go", "go")
	assert.NotEmpty(t, tag.ID)

	got, err := s.GetTagByID(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "go", got.Slug)

	_, err = s.CreateTag(ctx, &domain.Tag{Name: "Go", Slug: "go-2"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	_, err = s.CreateTag(ctx, &domain.Tag{Name: "GO!", Slug: "go"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	// Имя регистрозависимо
	_, err = s.CreateTag(ctx, &domain.Tag{Name: "go", Slug: "go-lower"})
	assert.NoError(t, err)
}

func testTagUpdateListDelete(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	golang := newTag(t, s, "Golang", "golang")
	rust := newTag(t, s, "Rust", "rust")

	_, err := s.UpdateTag(ctx, rust.ID, "Golang", "golang")
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	updated, err := s.UpdateTag(ctx, rust.ID, "Rustlang", "rustlang")
	require.NoError(t, err)
	assert.Equal(t, "rustlang", updated.Slug)

	tags, total, err := s.ListTags(ctx, "LANG", page)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, tags, 2)

	tags, total, err = s.ListTags(ctx, "rust", page)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, rust.ID, tags[0].ID)

	post := newPost(t, s, "user-1", golang.ID, rust.ID)
	n, err := s.CountPostsByTagID(ctx, golang.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Удаление тега не трогает посты
	require.NoError(t, s.DeleteTag(ctx, golang.ID))
	got, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, rust.ID, got.Tags[0].ID)

	assert.ErrorIs(t, s.DeleteTag(ctx, golang.ID), domain.ErrNotFound)
	_, err = s.GetTagByID(ctx, golang.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testTagPostIDs(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	tag := newTag(t, s, "Go", "go")
	other := newTag(t, s, "Rust", "rust")
	p1 := newPost(t, s, "user-1", tag.ID)
	p2 := newPost(t, s, "user-1", tag.ID, other.ID)
	newPost(t, s, "user-1", other.ID)

	got, err := s.PostIDsByTagID(ctx, tag.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{p1.ID, p2.ID}, got)

	got, err = s.PostIDsByTagID(ctx, "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testPostCreateAndGet(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	tag := newTag(t, s, "Go", "go")
	post := newPost(t, s, "user-1", tag.ID, tag.ID)

	retrieved, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, retrieved.Title)
	assert.Equal(t, "user-1", retrieved.UserID)
	assert.Equal(t, domain.StatusDraft, retrieved.Status)
	assert.Equal(t, 0, retrieved.Likes)
	require.Len(t, retrieved.Tags, 1)
	assert.Equal(t, "go", retrieved.Tags[0].Slug)

	_, err = s.GetPostByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetPostByID(ctx, "non-existent-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testPostUnknownTag(t *testing.T, s storage.Storage) {
	_, err := s.CreatePost(context.Background(), &domain.Post{
		UserID:  "user-1",
		Title:   "t",
		Content: "c",
		Status:  domain.StatusDraft,
	}, []string{"00000000-0000-0000-0000-000000000001"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	posts, total, err := s.ListPosts(context.Background(), storage.PostFilter{}, page)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, posts)
}

func testPostStatusLifecycle(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	post := newPost(t, s, "user-a")

	setStatus := func(userID string, st domain.Status) (*domain.Post, error) {
		return s.UpdatePost(ctx, post.ID, userID, storage.PostUpdate{Status: &st})
	}

	_, err := setStatus("user-b", domain.StatusPublished)
	assert.ErrorIs(t, err, domain.ErrPermission)

	got, err := setStatus("user-a", domain.StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, got.Status)

	got, err = setStatus("user-a", domain.StatusArchived)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, got.Status)

	_, err = setStatus("user-a", domain.StatusPublished)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err = s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, got.Status)

	got, err = setStatus("user-a", domain.StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, got.Status)

	got, err = setStatus("user-a", domain.StatusArchived)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, got.Status)

	_, err = s.UpdatePost(ctx, "00000000-0000-0000-0000-000000000000", "user-a", storage.PostUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testPostUpdateFields(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	a := newTag(t, s, "A", "a")
	b := newTag(t, s, "B", "b")
	post := newPost(t, s, "user-1", a.ID)

	title := "New title"
	tagIDs := []string{b.ID}
	got, err := s.UpdatePost(ctx, post.ID, "user-1", storage.PostUpdate{Title: &title, TagIDs: &tagIDs})
	require.NoError(t, err)
	assert.Equal(t, "New title", got.Title)
	assert.Equal(t, "Content", got.Content)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, b.ID, got.Tags[0].ID)
	assert.False(t, got.UpdatedAt.Before(post.UpdatedAt))

	empty := []string{}
	got, err = s.UpdatePost(ctx, post.ID, "user-1", storage.PostUpdate{TagIDs: &empty})
	require.NoError(t, err)
	assert.Empty(t, got.Tags)

	// Ошибка в тегах не должна применить остальные поля
	other := "Other title"
	bad := []string{"00000000-0000-0000-0000-000000000001"}
	_, err = s.UpdatePost(ctx, post.ID, "user-1", storage.PostUpdate{Title: &other, TagIDs: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
	got, err = s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "New title", got.Title)
}

func testPostDeleteCascades(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	tag := newTag(t, s, "Go", "go")
	post := newPost(t, s, "user-1", tag.ID)
	other := newPost(t, s, "user-1")

	root := newComment(t, s, post.ID, nil)
	newComment(t, s, post.ID, &root.ID)
	keep := newComment(t, s, other.ID, nil)
	like, err := s.CreateLike(ctx, &domain.Like{UserID: "user-2", PostID: post.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeletePost(ctx, post.ID, "user-2"), domain.ErrPermission)
	require.NoError(t, s.DeletePost(ctx, post.ID, "user-1"))

	_, err = s.GetPostByID(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetCommentByID(ctx, root.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetLikeByID(ctx, like.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.GetCommentByID(ctx, keep.ID)
	assert.NoError(t, err)
	_, err = s.GetTagByID(ctx, tag.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.DeletePost(ctx, post.ID, "user-1"), domain.ErrNotFound)
}

func testPostListFilters(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	golang := newTag(t, s, "Go", "go")
	rust := newTag(t, s, "Rust", "rust")

	mk := func(userID, title, content string, status domain.Status, tagIDs ...string) *domain.Post {
		p, err := s.CreatePost(ctx, &domain.Post{UserID: userID, Title: title, Content: content, Status: status}, tagIDs)
		require.NoError(t, err)
		return p
	}
	p1 := mk("user-a", "Learning GO", "channels", domain.StatusPublished, golang.ID)
	p2 := mk("user-b", "Borrow checker", "lifetimes in go-like terms", domain.StatusDraft, rust.ID)
	p3 := mk("user-a", "Cooking", "pasta", domain.StatusPublished, rust.ID)

	posts, total, err := s.ListPosts(ctx, storage.PostFilter{Search: "go"}, page)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.ElementsMatch(t, []string{p1.ID, p2.ID}, ids(posts))

	posts, _, err = s.ListPosts(ctx, storage.PostFilter{TagSlug: "rust"}, page)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{p2.ID, p3.ID}, ids(posts))

	// Поиск важнее тега: тег игнорируется
	posts, _, err = s.ListPosts(ctx, storage.PostFilter{Search: "pasta", TagSlug: "go"}, page)
	require.NoError(t, err)
	assert.Equal(t, []string{p3.ID}, ids(posts))

	posts, total, err = s.ListPosts(ctx, storage.PostFilter{TagSlug: "missing"}, page)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, posts)

	posts, _, err = s.ListPosts(ctx, storage.PostFilter{Status: domain.StatusPublished}, page)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{p1.ID, p3.ID}, ids(posts))

	posts, _, err = s.ListPosts(ctx, storage.PostFilter{UserID: "user-b"}, page)
	require.NoError(t, err)
	assert.Equal(t, []string{p2.ID}, ids(posts))

	// Спецсимволы LIKE ищутся буквально
	posts, _, err = s.ListPosts(ctx, storage.PostFilter{Search: "%"}, page)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func testPostListOrderAndPaging(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	var created []*domain.Post
	for i := 0; i < 5; i++ {
		created = append(created, newPost(t, s, "user-1"))
	}

	// Обновление поднимает пост наверх
	title := "bumped"
	_, err := s.UpdatePost(ctx, created[0].ID, "user-1", storage.PostUpdate{Title: &title})
	require.NoError(t, err)

	firstPage, total, err := s.ListPosts(ctx, storage.PostFilter{}, storage.PageArgs{Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, []string{created[0].ID, created[4].ID}, ids(firstPage))

	lastPage, _, err := s.ListPosts(ctx, storage.PostFilter{}, storage.PageArgs{Page: 3, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{created[1].ID}, ids(lastPage))

	beyond, _, err := s.ListPosts(ctx, storage.PostFilter{}, storage.PageArgs{Page: 4, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func testCommentInvalidParent(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	post := newPost(t, s, "user-1")
	other := newPost(t, s, "user-1")
	foreign := newComment(t, s, other.ID, nil)

	missing := "00000000-0000-0000-0000-000000000000"
	_, err := s.CreateComment(ctx, &domain.Comment{PostID: post.ID, ParentID: &missing, UserID: "u", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidParent)

	_, err = s.CreateComment(ctx, &domain.Comment{PostID: post.ID, ParentID: &foreign.ID, UserID: "u", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidParent)

	_, err = s.CreateComment(ctx, &domain.Comment{PostID: missing, UserID: "u", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	counts, err := s.CountCommentsByPostIDs(ctx, []string{post.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, counts[post.ID])
}

func testCommentRootsAndReplies(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	post := newPost(t, s, "user-1")

	r1 := newComment(t, s, post.ID, nil)
	r2 := newComment(t, s, post.ID, nil)
	c1 := newComment(t, s, post.ID, &r1.ID)
	c2 := newComment(t, s, post.ID, &r1.ID)
	newComment(t, s, post.ID, &c1.ID)

	roots, total, err := s.GetRootComments(ctx, post.ID, page)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{r2.ID, r1.ID}, ids(roots))

	replies, total, err := s.GetCommentsByParentID(ctx, r1.ID, page)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{c2.ID, c1.ID}, ids(replies))
	require.NotNil(t, replies[0].ParentID)
	assert.Equal(t, r1.ID, *replies[0].ParentID)

	second, _, err := s.GetCommentsByParentID(ctx, r1.ID, storage.PageArgs{Page: 2, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{c1.ID}, ids(second))

	all, _, err := s.GetRootComments(ctx, "", page)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	missing := "00000000-0000-0000-0000-000000000000"
	_, _, err = s.GetRootComments(ctx, missing, page)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = s.GetCommentsByParentID(ctx, missing, page)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testCommentDeleteSubtree(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	post := newPost(t, s, "user-1")

	root := newComment(t, s, post.ID, nil)
	sibling := newComment(t, s, post.ID, nil)
	target := newComment(t, s, post.ID, &root.ID)
	keep := newComment(t, s, post.ID, &root.ID)

	// 3 потомка target на разной глубине
	d1 := newComment(t, s, post.ID, &target.ID)
	d2 := newComment(t, s, post.ID, &d1.ID)
	newComment(t, s, post.ID, &d2.ID)

	deleted, n, err := s.DeleteComment(ctx, target.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, target.ID, deleted.ID)
	assert.Equal(t, 4, n)

	counts, err := s.CountCommentsByPostIDs(ctx, []string{post.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, counts[post.ID])

	for _, id := range []string{root.ID, sibling.ID, keep.ID} {
		_, err := s.GetCommentByID(ctx, id)
		assert.NoError(t, err)
	}
	_, err = s.GetCommentByID(ctx, d2.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	replies, total, err := s.GetCommentsByParentID(ctx, root.ID, page)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{keep.ID}, ids(replies))

	// Удаление корня уносит оставшийся ответ
	_, n, err = s.DeleteComment(ctx, root.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	roots, _, err := s.GetRootComments(ctx, post.ID, page)
	require.NoError(t, err)
	assert.Equal(t, []string{sibling.ID}, ids(roots))
}

// Ответы, созданные во время удаления ветки, либо удаляются вместе с ней,
// либо отклоняются как InvalidParent. Сирот остаться не должно.
func testCommentDeleteSubtreeConcurrentReplies(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	post := newPost(t, s, "user-1")
	root := newComment(t, s, post.ID, nil)
	mid := newComment(t, s, post.ID, &root.ID)
	leaf := newComment(t, s, post.ID, &mid.ID)

	const writers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created []string
	)
	wg.Add(writers + 1)
	go func() {
		defer wg.Done()
		_, _, err := s.DeleteComment(ctx, root.ID, "user-1")
		assert.NoError(t, err)
	}()
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			c, err := s.CreateComment(ctx, &domain.Comment{
				PostID:   post.ID,
				ParentID: &leaf.ID,
				UserID:   "user-2",
				Content:  fmt.Sprintf("reply %d", i),
			})
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrInvalidParent)
				return
			}
			mu.Lock()
			created = append(created, c.ID)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	for _, id := range created {
		_, err := s.GetCommentByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, "reply %s survived its parent", id)
	}
	counts, err := s.CountCommentsByPostIDs(ctx, []string{post.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, counts[post.ID])
}

func testCommentPermissions(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	post := newPost(t, s, "user-1")
	c := newComment(t, s, post.ID, nil)

	_, _, err := s.DeleteComment(ctx, c.ID, "user-2")
	assert.ErrorIs(t, err, domain.ErrPermission)
	_, err = s.UpdateComment(ctx, c.ID, "user-2", "hijack")
	assert.ErrorIs(t, err, domain.ErrPermission)

	updated, err := s.UpdateComment(ctx, c.ID, "user-1", "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	got, err := s.GetCommentByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	_, _, err = s.DeleteComment(ctx, "00000000-0000-0000-0000-000000000000", "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testCommentCounts(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	post := newPost(t, s, "user-1")
	empty := newPost(t, s, "user-1")

	// 1 прямой ответ, у которого 2 своих ответа
	root := newComment(t, s, post.ID, nil)
	reply := newComment(t, s, post.ID, &root.ID)
	newComment(t, s, post.ID, &reply.ID)
	newComment(t, s, post.ID, &reply.ID)

	replies, err := s.CountRepliesByParentIDs(ctx, []string{root.ID, reply.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, replies[root.ID])
	assert.Equal(t, 2, replies[reply.ID])

	counts, err := s.CountCommentsByPostIDs(ctx, []string{post.ID, empty.ID})
	require.NoError(t, err)
	assert.Equal(t, 4, counts[post.ID])
	assert.Equal(t, 0, counts[empty.ID])
}

func testLikeScenario(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	post := newPost(t, s, "user-b")
	assertCounter(t, s, post.ID, 0)

	like, err := s.CreateLike(ctx, &domain.Like{UserID: "user-a", PostID: post.ID})
	require.NoError(t, err)
	assertCounter(t, s, post.ID, 1)

	liked, err := s.HasLike(ctx, post.ID, "user-a")
	require.NoError(t, err)
	assert.True(t, liked)

	_, err = s.CreateLike(ctx, &domain.Like{UserID: "user-a", PostID: post.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicateLike)
	assertCounter(t, s, post.ID, 1)

	likes, total, err := s.ListLikes(ctx, post.ID, page)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, like.ID, likes[0].ID)

	_, err = s.DeleteLike(ctx, like.ID, "user-a")
	require.NoError(t, err)
	assertCounter(t, s, post.ID, 0)

	liked, err = s.HasLike(ctx, post.ID, "user-a")
	require.NoError(t, err)
	assert.False(t, liked)

	// Лайк можно поставить заново после удаления
	_, err = s.CreateLike(ctx, &domain.Like{UserID: "user-a", PostID: post.ID})
	require.NoError(t, err)
	assertCounter(t, s, post.ID, 1)
}

func testLikePermission(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	post := newPost(t, s, "user-1")
	like, err := s.CreateLike(ctx, &domain.Like{UserID: "user-a", PostID: post.ID})
	require.NoError(t, err)

	_, err = s.DeleteLike(ctx, like.ID, "user-b")
	assert.ErrorIs(t, err, domain.ErrPermission)
	assertCounter(t, s, post.ID, 1)
}

func testLikeNotFound(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	missing := "00000000-0000-0000-0000-000000000000"

	_, err := s.CreateLike(ctx, &domain.Like{UserID: "user-a", PostID: missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.DeleteLike(ctx, missing, "user-a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetLikeByID(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	liked, err := s.HasLike(ctx, missing, "user-a")
	require.NoError(t, err)
	assert.False(t, liked)
}

func testLikeCounterAndLikedIDs(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	first := newPost(t, s, "owner")
	second := newPost(t, s, "owner")
	third := newPost(t, s, "owner")

	for _, p := range []*domain.Post{first, third} {
		_, err := s.CreateLike(ctx, &domain.Like{UserID: "user-a", PostID: p.ID})
		require.NoError(t, err)
	}
	_, err := s.CreateLike(ctx, &domain.Like{UserID: "user-b", PostID: first.ID})
	require.NoError(t, err)

	n, err := s.GetPostLikes(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = s.GetPostLikes(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	_, err = s.GetPostLikes(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	liked, err := s.LikedPostIDs(ctx, []string{first.ID, second.ID, third.ID, "not-a-post"}, "user-a")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{first.ID: true, third.ID: true}, liked)

	liked, err = s.LikedPostIDs(ctx, []string{first.ID, third.ID}, "")
	require.NoError(t, err)
	assert.Empty(t, liked)
}

func testLikeConcurrentUsers(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	post := newPost(t, s, "owner")

	const users = 20
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i)
			like, err := s.CreateLike(ctx, &domain.Like{UserID: userID, PostID: post.ID})
			if err != nil {
				t.Errorf("create like: %v", err)
				return
			}
			// Каждый второй сразу снимает лайк
			if i%2 == 0 {
				if _, err := s.DeleteLike(ctx, like.ID, userID); err != nil {
					t.Errorf("delete like: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	assertCounter(t, s, post.ID, users/2)
}

func testLikeConcurrentCreateDelete(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	post := newPost(t, s, "owner")

	// Один пользователь одновременно лайкает и снимает лайк много раз
	const rounds = 10
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.CreateLike(ctx, &domain.Like{UserID: "user-a", PostID: post.ID})
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrDuplicateLike)
			}
		}()
		go func() {
			defer wg.Done()
			likes, _, err := s.ListLikes(ctx, post.ID, page)
			if err != nil || len(likes) == 0 {
				return
			}
			_, err = s.DeleteLike(ctx, likes[0].ID, "user-a")
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrNotFound)
			}
		}()
	}
	wg.Wait()

	n, err := s.CountLikesByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, n, 1)
	assertCounter(t, s, post.ID, n)
}
