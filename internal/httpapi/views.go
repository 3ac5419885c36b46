package httpapi

import (
	"net/http"
	"time"

	"github.com/UkralStul/posts-service/internal/dataloader"
	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/UkralStul/posts-service/internal/service"
)

type tagView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	PostsCount *int      `json:"postsCount,omitempty"`
}

type postView struct {
	ID            string        `json:"id"`
	User          string        `json:"user"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	Status        domain.Status `json:"status"`
	Likes         int           `json:"likes"`
	CommentsCount int           `json:"commentsCount"`
	LikesCount    int           `json:"likesCount"`
	IsLiked       bool          `json:"isLiked"`
	Tags          []tagView     `json:"tags"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type commentView struct {
	*domain.Comment
	RepliesCount int `json:"repliesCount"`
}

func newTagView(t *domain.Tag) tagView {
	return tagView{ID: t.ID, Name: t.Name, Slug: t.Slug, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

func (h *Handler) loaders(r *http.Request) *dataloader.Loaders {
	if l := dataloader.For(r.Context()); l != nil {
		return l
	}
	return dataloader.NewLoaders(h.source)
}

// postViews собирает представления постов. Число комментариев и отметки
// лайков текущего пользователя грузятся батчами, по запросу на страницу.
func (h *Handler) postViews(r *http.Request, posts []*domain.Post) ([]postView, error) {
	ctx := r.Context()
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	loaders := h.loaders(r)
	counts, err := loaders.CommentsCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked, err := loaders.LikedBy(ctx, userID(r), ids)
	if err != nil {
		return nil, err
	}

	views := make([]postView, len(posts))
	for i, p := range posts {
		tags := make([]tagView, len(p.Tags))
		for j, t := range p.Tags {
			tags[j] = newTagView(t)
		}
		views[i] = postView{
			ID:            p.ID,
			User:          p.UserID,
			Title:         p.Title,
			Content:       p.Content,
			Status:        p.Status,
			Likes:         p.Likes,
			CommentsCount: counts[i],
			LikesCount:    p.Likes,
			IsLiked:       liked[i],
			Tags:          tags,
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		}
	}
	return views, nil
}

func (h *Handler) postView(r *http.Request, post *domain.Post) (postView, error) {
	views, err := h.postViews(r, []*domain.Post{post})
	if err != nil {
		return postView{}, err
	}
	return views[0], nil
}

func (h *Handler) commentViews(r *http.Request, comments []*domain.Comment) ([]commentView, error) {
	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	counts, err := h.loaders(r).RepliesCounts(r.Context(), ids)
	if err != nil {
		return nil, err
	}
	views := make([]commentView, len(comments))
	for i, c := range comments {
		views[i] = commentView{Comment: c, RepliesCount: counts[i]}
	}
	return views, nil
}

func (h *Handler) commentView(r *http.Request, c *domain.Comment) (commentView, error) {
	views, err := h.commentViews(r, []*domain.Comment{c})
	if err != nil {
		return commentView{}, err
	}
	return views[0], nil
}

func (h *Handler) tagViewWithCount(r *http.Request, t *domain.Tag) (tagView, error) {
	n, err := h.svc.PostsCount(r.Context(), t.ID)
	if err != nil {
		return tagView{}, err
	}
	v := newTagView(t)
	v.PostsCount = &n
	return v, nil
}

// mapPage переносит метаданные страницы на страницу представлений.
func mapPage[T, V any](p service.Page[T], items []V) service.Page[V] {
	return service.Page[V]{
		Items:    items,
		Total:    p.Total,
		Page:     p.Page,
		PageSize: p.PageSize,
		HasNext:  p.HasNext,
	}
}
