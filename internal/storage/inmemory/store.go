package inmemory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/UkralStul/posts-service/internal/storage"
	"github.com/google/uuid"
)

// Store реализует интерфейс Storage в памяти.
// Все записи идут под одним мьютексом, поэтому каждая операция атомарна.
// Наружу отдаются только копии, внутренние указатели не утекают.
type Store struct {
	mu    sync.RWMutex
	seq   uint64
	order map[string]uint64 // порядок вставки для разрешения равных меток времени

	tags             map[string]*domain.Tag
	posts            map[string]*domain.Post
	postTags         map[string][]string // map[postID][]tagID
	comments         map[string]*domain.Comment
	commentsByPost   map[string][]string // map[postID][]commentID (только корневые)
	commentsByParent map[string][]string // map[parentID][]commentID
	likes            map[string]*domain.Like
	likesByPost      map[string]map[string]string // map[postID]map[userID]likeID
}

var _ storage.Storage = (*Store)(nil)

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		order:            make(map[string]uint64),
		tags:             make(map[string]*domain.Tag),
		posts:            make(map[string]*domain.Post),
		postTags:         make(map[string][]string),
		comments:         make(map[string]*domain.Comment),
		commentsByPost:   make(map[string][]string),
		commentsByParent: make(map[string][]string),
		likes:            make(map[string]*domain.Like),
		likesByPost:      make(map[string]map[string]string),
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func (s *Store) newID() string {
	id := uuid.NewString()
	s.seq++
	s.order[id] = s.seq
	return id
}

// === Tag Methods ===

func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTagUnique("", tag.Name, tag.Slug); err != nil {
		return nil, err
	}

	t := *tag
	t.ID = s.newID()
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	s.tags[t.ID] = &t

	out := t
	return &out, nil
}

func (s *Store) checkTagUnique(selfID, name, slug string) error {
	for _, t := range s.tags {
		if t.ID == selfID {
			continue
		}
		if t.Name == name {
			return fmt.Errorf("%w: tag name %q", domain.ErrDuplicateName, name)
		}
		if t.Slug == slug {
			return fmt.Errorf("%w: tag slug %q", domain.ErrDuplicateName, slug)
		}
	}
	return nil
}

func (s *Store) GetTagByID(ctx context.Context, id string) (*domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tags[id]
	if !ok {
		return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	out := *t
	return &out, nil
}

func (s *Store) UpdateTag(ctx context.Context, id, name, slug string) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tags[id]
	if !ok {
		return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	if err := s.checkTagUnique(id, name, slug); err != nil {
		return nil, err
	}
	t.Name = name
	t.Slug = slug
	t.UpdatedAt = now()

	out := *t
	return &out, nil
}

func (s *Store) DeleteTag(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[id]; !ok {
		return fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	delete(s.tags, id)
	for postID, tagIDs := range s.postTags {
		s.postTags[postID] = removeID(tagIDs, id)
	}
	return nil
}

func (s *Store) ListTags(ctx context.Context, search string, args storage.PageArgs) ([]*domain.Tag, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(search)
	all := make([]*domain.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		if needle != "" && !strings.Contains(strings.ToLower(t.Name), needle) {
			continue
		}
		out := *t
		all = append(all, &out)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name < all[j].Name
	})
	return paginate(all, args), len(all), nil
}

func (s *Store) CountPostsByTagID(ctx context.Context, tagID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.tags[tagID]; !ok {
		return 0, fmt.Errorf("tag %s: %w", tagID, domain.ErrNotFound)
	}
	n := 0
	for _, tagIDs := range s.postTags {
		if containsID(tagIDs, tagID) {
			n++
		}
	}
	return n, nil
}

func (s *Store) PostIDsByTagID(ctx context.Context, tagID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0)
	for postID, tagIDs := range s.postTags {
		if containsID(tagIDs, tagID) {
			ids = append(ids, postID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post, tagIDs []string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tagIDs, err := s.resolveTags(tagIDs)
	if err != nil {
		return nil, err
	}

	p := *post
	p.ID = s.newID()
	p.Likes = 0
	p.Tags = nil
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	s.posts[p.ID] = &p
	s.postTags[p.ID] = tagIDs

	return s.clonePost(&p), nil
}

// resolveTags проверяет, что все теги существуют, и убирает повторы.
func (s *Store) resolveTags(tagIDs []string) ([]string, error) {
	out := make([]string, 0, len(tagIDs))
	for _, id := range tagIDs {
		if _, ok := s.tags[id]; !ok {
			return nil, &domain.ValidationError{Field: "tags", Msg: fmt.Sprintf("tag %s does not exist", id)}
		}
		if !containsID(out, id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Store) clonePost(p *domain.Post) *domain.Post {
	out := *p
	out.Tags = make([]*domain.Tag, 0, len(s.postTags[p.ID]))
	for _, id := range s.postTags[p.ID] {
		if t, ok := s.tags[id]; ok {
			tc := *t
			out.Tags = append(out.Tags, &tc)
		}
	}
	sort.Slice(out.Tags, func(i, j int) bool {
		return out.Tags[i].Name < out.Tags[j].Name
	})
	return &out
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	return s.clonePost(post), nil
}

func (s *Store) GetPostLikes(ctx context.Context, id string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return 0, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	return post.Likes, nil
}

func (s *Store) UpdatePost(ctx context.Context, id, userID string, upd storage.PostUpdate) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	if post.UserID != userID {
		return nil, fmt.Errorf("post %s: %w", id, domain.ErrPermission)
	}
	if upd.Status != nil {
		if err := domain.CheckTransition(post.Status, *upd.Status); err != nil {
			return nil, err
		}
	}
	var tagIDs []string
	if upd.TagIDs != nil {
		var err error
		if tagIDs, err = s.resolveTags(*upd.TagIDs); err != nil {
			return nil, err
		}
	}

	// Все проверки пройдены, дальше только запись
	if upd.Title != nil {
		post.Title = *upd.Title
	}
	if upd.Content != nil {
		post.Content = *upd.Content
	}
	if upd.Status != nil {
		post.Status = *upd.Status
	}
	if upd.TagIDs != nil {
		s.postTags[id] = tagIDs
	}
	post.UpdatedAt = now()

	return s.clonePost(post), nil
}

func (s *Store) DeletePost(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	if post.UserID != userID {
		return fmt.Errorf("post %s: %w", id, domain.ErrPermission)
	}

	for cID, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cID)
			delete(s.commentsByParent, cID)
			delete(s.order, cID)
		}
	}
	delete(s.commentsByPost, id)

	for _, likeID := range s.likesByPost[id] {
		delete(s.likes, likeID)
		delete(s.order, likeID)
	}
	delete(s.likesByPost, id)

	delete(s.postTags, id)
	delete(s.posts, id)
	delete(s.order, id)
	return nil
}

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter, args storage.PageArgs) ([]*domain.Post, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tagID string
	if filter.Search == "" && filter.TagSlug != "" {
		for _, t := range s.tags {
			if t.Slug == filter.TagSlug {
				tagID = t.ID
				break
			}
		}
		if tagID == "" {
			return []*domain.Post{}, 0, nil
		}
	}
	needle := strings.ToLower(filter.Search)

	all := make([]*domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.UserID != "" && p.UserID != filter.UserID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Content), needle) {
			continue
		}
		if tagID != "" && !containsID(s.postTags[p.ID], tagID) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].UpdatedAt.After(all[j].UpdatedAt)
		}
		return s.order[all[i].ID] > s.order[all[j].ID]
	})

	page := paginate(all, args)
	out := make([]*domain.Post, len(page))
	for i, p := range page {
		out[i] = s.clonePost(p)
	}
	return out, len(all), nil
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Проверка поста
	if _, ok := s.posts[comment.PostID]; !ok {
		return nil, fmt.Errorf("post %s: %w", comment.PostID, domain.ErrNotFound)
	}

	// Проверка родительского комментария: должен существовать и относиться к тому же посту
	if comment.ParentID != nil {
		parent, ok := s.comments[*comment.ParentID]
		if !ok {
			return nil, fmt.Errorf("%w: comment %s does not exist", domain.ErrInvalidParent, *comment.ParentID)
		}
		if parent.PostID != comment.PostID {
			return nil, fmt.Errorf("%w: comment %s belongs to another post", domain.ErrInvalidParent, parent.ID)
		}
	}

	c := *comment
	c.ID = s.newID()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	c.Children = nil
	s.comments[c.ID] = &c

	// Обновление индексов для иерархии
	if c.ParentID == nil {
		s.commentsByPost[c.PostID] = append(s.commentsByPost[c.PostID], c.ID)
	} else {
		s.commentsByParent[*c.ParentID] = append(s.commentsByParent[*c.ParentID], c.ID)
	}

	return cloneComment(&c), nil
}

func cloneComment(c *domain.Comment) *domain.Comment {
	out := *c
	if c.ParentID != nil {
		parentID := *c.ParentID
		out.ParentID = &parentID
	}
	return &out
}

func (s *Store) GetCommentByID(ctx context.Context, id string) (*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	return cloneComment(comment), nil
}

func (s *Store) UpdateComment(ctx context.Context, id, userID, content string) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	if comment.UserID != userID {
		return nil, fmt.Errorf("comment %s: %w", id, domain.ErrPermission)
	}
	comment.Content = content
	comment.UpdatedAt = now()
	return cloneComment(comment), nil
}

func (s *Store) DeleteComment(ctx context.Context, id, userID string) (*domain.Comment, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, 0, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	if comment.UserID != userID {
		return nil, 0, fmt.Errorf("comment %s: %w", id, domain.ErrPermission)
	}

	// Сначала собираем все поддерево обходом со стеком, потом удаляем
	subtree := []string{id}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, childID := range s.commentsByParent[cur] {
			subtree = append(subtree, childID)
			stack = append(stack, childID)
		}
	}

	if comment.ParentID == nil {
		s.commentsByPost[comment.PostID] = removeID(s.commentsByPost[comment.PostID], id)
	} else {
		s.commentsByParent[*comment.ParentID] = removeID(s.commentsByParent[*comment.ParentID], id)
	}
	for _, cID := range subtree {
		delete(s.comments, cID)
		delete(s.commentsByParent, cID)
		delete(s.order, cID)
	}

	return cloneComment(comment), len(subtree), nil
}

// === Pagination Methods ===

func (s *Store) GetRootComments(ctx context.Context, postID string, args storage.PageArgs) ([]*domain.Comment, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	if postID != "" {
		if _, ok := s.posts[postID]; !ok {
			return nil, 0, fmt.Errorf("post %s: %w", postID, domain.ErrNotFound)
		}
		ids = s.commentsByPost[postID]
	} else {
		for _, rootIDs := range s.commentsByPost {
			ids = append(ids, rootIDs...)
		}
	}
	return s.paginateComments(ids, args)
}

func (s *Store) GetCommentsByParentID(ctx context.Context, parentID string, args storage.PageArgs) ([]*domain.Comment, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.comments[parentID]; !ok {
		return nil, 0, fmt.Errorf("comment %s: %w", parentID, domain.ErrNotFound)
	}
	return s.paginateComments(s.commentsByParent[parentID], args)
}

// paginateComments - вспомогательная функция для пагинации, новые комментарии первыми
func (s *Store) paginateComments(ids []string, args storage.PageArgs) ([]*domain.Comment, int, error) {
	all := make([]*domain.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.comments[id]; ok {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return s.order[all[i].ID] > s.order[all[j].ID]
	})

	page := paginate(all, args)
	out := make([]*domain.Comment, len(page))
	for i, c := range page {
		out[i] = cloneComment(c)
	}
	return out, len(all), nil
}

// === Dataloader Methods ===

func (s *Store) CountCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[string]int, len(postIDs))
	for _, id := range postIDs {
		results[id] = 0
	}
	for _, c := range s.comments {
		if _, ok := results[c.PostID]; ok {
			results[c.PostID]++
		}
	}
	return results, nil
}

func (s *Store) CountRepliesByParentIDs(ctx context.Context, parentIDs []string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[string]int, len(parentIDs))
	for _, id := range parentIDs {
		results[id] = len(s.commentsByParent[id])
	}
	return results, nil
}

// === Like Methods ===

func (s *Store) CreateLike(ctx context.Context, like *domain.Like) (*domain.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[like.PostID]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", like.PostID, domain.ErrNotFound)
	}
	byUser := s.likesByPost[like.PostID]
	if _, exists := byUser[like.UserID]; exists {
		return nil, domain.ErrDuplicateLike
	}
	if byUser == nil {
		byUser = make(map[string]string)
		s.likesByPost[like.PostID] = byUser
	}

	l := *like
	l.ID = s.newID()
	l.CreatedAt = now()
	s.likes[l.ID] = &l
	byUser[l.UserID] = l.ID
	post.Likes++

	out := l
	return &out, nil
}

func (s *Store) GetLikeByID(ctx context.Context, id string) (*domain.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	like, ok := s.likes[id]
	if !ok {
		return nil, fmt.Errorf("like %s: %w", id, domain.ErrNotFound)
	}
	out := *like
	return &out, nil
}

func (s *Store) DeleteLike(ctx context.Context, id, userID string) (*domain.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	like, ok := s.likes[id]
	if !ok {
		return nil, fmt.Errorf("like %s: %w", id, domain.ErrNotFound)
	}
	if like.UserID != userID {
		return nil, fmt.Errorf("like %s: %w", id, domain.ErrPermission)
	}

	delete(s.likes, id)
	delete(s.likesByPost[like.PostID], like.UserID)
	delete(s.order, id)
	if post, ok := s.posts[like.PostID]; ok {
		post.Likes--
	}

	out := *like
	return &out, nil
}

func (s *Store) ListLikes(ctx context.Context, postID string, args storage.PageArgs) ([]*domain.Like, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Like, 0)
	for _, l := range s.likes {
		if postID != "" && l.PostID != postID {
			continue
		}
		out := *l
		all = append(all, &out)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return s.order[all[i].ID] > s.order[all[j].ID]
	})
	return paginate(all, args), len(all), nil
}

func (s *Store) HasLike(ctx context.Context, postID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.likesByPost[postID][userID]
	return ok, nil
}

func (s *Store) LikedPostIDs(ctx context.Context, postIDs []string, userID string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	liked := make(map[string]bool, len(postIDs))
	if userID == "" {
		return liked, nil
	}
	for _, id := range postIDs {
		if _, ok := s.likesByPost[id][userID]; ok {
			liked[id] = true
		}
	}
	return liked, nil
}

func (s *Store) CountLikesByPostID(ctx context.Context, postID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.likesByPost[postID]), nil
}

// === helpers ===

func paginate[T any](items []T, args storage.PageArgs) []T {
	start := args.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := len(items)
	if args.Size > 0 && start+args.Size < end {
		end = start + args.Size
	}
	return items[start:end]
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
