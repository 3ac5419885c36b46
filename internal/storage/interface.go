package storage

import (
	"context"

	"github.com/UkralStul/posts-service/internal/domain"
)

// PageArgs - аргументы для пагинации. Page начинается с 1.
type PageArgs struct {
	Page int
	Size int
}

// Offset возвращает число записей, которые нужно пропустить.
func (a PageArgs) Offset() int {
	if a.Page < 1 {
		return 0
	}
	return (a.Page - 1) * a.Size
}

// PostFilter - фильтр для выборки постов.
// Если заданы и Search, и TagSlug, применяется только Search.
type PostFilter struct {
	Search  string
	TagSlug string
	Status  domain.Status // пусто - любой статус
	UserID  string        // пусто - любой автор
}

// PostUpdate - частичное обновление поста, nil поля не меняются.
type PostUpdate struct {
	Title   *string
	Content *string
	Status  *domain.Status
	TagIDs  *[]string
}

// Storage определяет контракт для хранилищ.
// Методы записи атомарны: либо применяются целиком, либо не применяются вовсе.
type Storage interface {
	CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error)
	GetTagByID(ctx context.Context, id string) (*domain.Tag, error)
	UpdateTag(ctx context.Context, id, name, slug string) (*domain.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	ListTags(ctx context.Context, search string, args PageArgs) ([]*domain.Tag, int, error)
	CountPostsByTagID(ctx context.Context, tagID string) (int, error)
	PostIDsByTagID(ctx context.Context, tagID string) ([]string, error)

	CreatePost(ctx context.Context, post *domain.Post, tagIDs []string) (*domain.Post, error)
	GetPostByID(ctx context.Context, id string) (*domain.Post, error)
	// GetPostLikes читает только счетчик лайков, минуя кэш постов.
	GetPostLikes(ctx context.Context, id string) (int, error)
	// UpdatePost проверяет владельца и правило смены статуса под той же блокировкой, что и запись.
	UpdatePost(ctx context.Context, id, userID string, upd PostUpdate) (*domain.Post, error)
	// DeletePost удаляет пост вместе с его комментариями и лайками. Теги остаются.
	DeletePost(ctx context.Context, id, userID string) error
	ListPosts(ctx context.Context, filter PostFilter, args PageArgs) ([]*domain.Post, int, error)

	CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	GetCommentByID(ctx context.Context, id string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, id, userID, content string) (*domain.Comment, error)
	// DeleteComment удаляет комментарий и все его ответы, возвращает число удаленных записей.
	DeleteComment(ctx context.Context, id, userID string) (*domain.Comment, int, error)

	// Методы для пагинации. Порядок - created_at по убыванию.
	// Пустой postID в GetRootComments означает корневые комментарии всех постов.
	GetRootComments(ctx context.Context, postID string, args PageArgs) ([]*domain.Comment, int, error)
	GetCommentsByParentID(ctx context.Context, parentID string, args PageArgs) ([]*domain.Comment, int, error)

	// Методы для Dataloader'ов
	CountCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error)
	CountRepliesByParentIDs(ctx context.Context, parentIDs []string) (map[string]int, error)

	// CreateLike вставляет лайк и увеличивает post.Likes в одной транзакции.
	CreateLike(ctx context.Context, like *domain.Like) (*domain.Like, error)
	GetLikeByID(ctx context.Context, id string) (*domain.Like, error)
	// DeleteLike удаляет лайк владельца и уменьшает post.Likes в одной транзакции.
	DeleteLike(ctx context.Context, id, userID string) (*domain.Like, error)
	ListLikes(ctx context.Context, postID string, args PageArgs) ([]*domain.Like, int, error)
	HasLike(ctx context.Context, postID, userID string) (bool, error)
	// LikedPostIDs возвращает те из postIDs, которые лайкнул userID.
	LikedPostIDs(ctx context.Context, postIDs []string, userID string) (map[string]bool, error)
	CountLikesByPostID(ctx context.Context, postID string) (int, error)
}
