package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/UkralStul/posts-service/internal/storage"
)

// CreatePostInput - поля нового поста. Пустой Status означает draft.
type CreatePostInput struct {
	UserID  string   `json:"user" validate:"required"`
	Title   string   `json:"title" validate:"notblank,max=255"`
	Content string   `json:"content" validate:"notblank"`
	Status  string   `json:"status" validate:"omitempty,oneof=draft published archived"`
	TagIDs  []string `json:"tags"`
}

// UpdatePostInput - частичное обновление, nil поля не меняются.
type UpdatePostInput struct {
	Title   *string   `json:"title" validate:"omitnil,notblank,max=255"`
	Content *string   `json:"content" validate:"omitnil,notblank"`
	Status  *string   `json:"status" validate:"omitnil,notblank,oneof=draft published archived"`
	TagIDs  *[]string `json:"tags"`
}

// PostQuery - фильтр списка постов. Непустой Search, даже из одних пробелов,
// отключает фильтр по TagSlug.
type PostQuery struct {
	Search  string
	TagSlug string
}

func (s *Service) CreatePost(ctx context.Context, in CreatePostInput) (*domain.Post, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	status, err := domain.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		UserID:  in.UserID,
		Title:   in.Title,
		Content: in.Content,
		Status:  status,
	}
	return s.store.CreatePost(ctx, post, in.TagIDs)
}

// GetPost читает пост через кэш, если он подключен.
// Likes при попадании в кэш всегда читается из хранилища.
func (s *Service) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			log.Printf("cache: failed to read post %s: %v", id, err)
		} else if cached != nil {
			likes, err := s.store.GetPostLikes(ctx, id)
			if err != nil {
				return nil, err
			}
			post := *cached
			post.Likes = likes
			return &post, nil
		}
	}

	post, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, post); err != nil {
			log.Printf("cache: failed to store post %s: %v", id, err)
		}
	}
	return post, nil
}

// UpdatePostStatus меняет статус поста. Повтор текущего статуса всегда успешен.
func (s *Service) UpdatePostStatus(ctx context.Context, postID string, status domain.Status, userID string) (*domain.Post, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Msg: "unknown status " + string(status)}
	}
	post, err := s.store.UpdatePost(ctx, postID, userID, storage.PostUpdate{Status: &status})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, postID)
	return post, nil
}

// UpdatePost применяет частичное обновление. Смена статуса проходит то же правило,
// что и в UpdatePostStatus.
func (s *Service) UpdatePost(ctx context.Context, postID, userID string, in UpdatePostInput) (*domain.Post, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	upd := storage.PostUpdate{Title: in.Title, Content: in.Content, TagIDs: in.TagIDs}
	if in.Status != nil {
		status, err := domain.ParseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		upd.Status = &status
	}

	post, err := s.store.UpdatePost(ctx, postID, userID, upd)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, postID)
	return post, nil
}

// DeletePost удаляет пост вместе с комментариями и лайками.
func (s *Service) DeletePost(ctx context.Context, postID, userID string) error {
	if err := s.store.DeletePost(ctx, postID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, postID)
	s.publish(ctx, domain.Event{Type: domain.EventPostDeleted, PostID: postID, UserID: userID})
	return nil
}

// ListPosts возвращает посты, отсортированные по updated_at по убыванию.
func (s *Service) ListPosts(ctx context.Context, q PostQuery, req PageRequest) (Page[*domain.Post], error) {
	var filter storage.PostFilter
	if q.Search != "" {
		filter.Search = q.Search
	} else {
		filter.TagSlug = strings.TrimSpace(q.TagSlug)
	}
	return s.listPosts(ctx, filter, req)
}

func (s *Service) ListRecentPublished(ctx context.Context, req PageRequest) (Page[*domain.Post], error) {
	return s.listPosts(ctx, storage.PostFilter{Status: domain.StatusPublished}, req)
}

// ListByOwner возвращает посты автора в любом статусе.
func (s *Service) ListByOwner(ctx context.Context, userID string, req PageRequest) (Page[*domain.Post], error) {
	if err := requireUser(userID); err != nil {
		return Page[*domain.Post]{}, err
	}
	return s.listPosts(ctx, storage.PostFilter{UserID: userID}, req)
}

func (s *Service) listPosts(ctx context.Context, filter storage.PostFilter, req PageRequest) (Page[*domain.Post], error) {
	args := s.pageArgs(req)
	posts, total, err := s.store.ListPosts(ctx, filter, args)
	if err != nil {
		return Page[*domain.Post]{}, err
	}
	return newPage(posts, total, args), nil
}

// CommentsCount считает все комментарии поста запросом, без кэшированного счетчика.
func (s *Service) CommentsCount(ctx context.Context, postID string) (int, error) {
	counts, err := s.store.CountCommentsByPostIDs(ctx, []string{postID})
	if err != nil {
		return 0, err
	}
	return counts[postID], nil
}

// LikesCount возвращает денормализованный счетчик post.Likes.
func (s *Service) LikesCount(ctx context.Context, postID string) (int, error) {
	return s.store.GetPostLikes(ctx, postID)
}

// IsLikedBy возвращает false для анонимного пользователя и для отсутствующего поста.
func (s *Service) IsLikedBy(ctx context.Context, postID, userID string) (bool, error) {
	if userID == "" || postID == "" {
		return false, nil
	}
	liked, err := s.store.HasLike(ctx, postID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return liked, err
}
