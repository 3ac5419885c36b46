package dataloader

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("dataloaders")

const wait = time.Millisecond

// Source - источник агрегатов для батч-загрузки. Его реализует storage.Storage.
type Source interface {
	CountCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error)
	CountRepliesByParentIDs(ctx context.Context, parentIDs []string) (map[string]int, error)
	LikedPostIDs(ctx context.Context, postIDs []string, userID string) (map[string]bool, error)
}

// Loaders содержит все дата-лоадеры приложения.
type Loaders struct {
	CommentsCountByPostID   *dataloader.Loader
	RepliesCountByCommentID *dataloader.Loader

	src     Source
	mu      sync.Mutex
	likedBy map[string]*dataloader.Loader // map[userID]loader
}

// NewLoaders создает лоадеры на один запрос. Кэш лоадера живет столько же, сколько запрос.
func NewLoaders(src Source) *Loaders {
	return &Loaders{
		CommentsCountByPostID:   dataloader.NewBatchedLoader(mapBatch(src.CountCommentsByPostIDs), dataloader.WithWait(wait)),
		RepliesCountByCommentID: dataloader.NewBatchedLoader(mapBatch(src.CountRepliesByParentIDs), dataloader.WithWait(wait)),
		src:                     src,
		likedBy:                 make(map[string]*dataloader.Loader),
	}
}

// likedBatch - батч-функция "лайкнул ли userID пост" для одного пользователя.
func likedBatch(src Source, userID string) dataloader.BatchFunc {
	return mapBatch(func(ctx context.Context, ids []string) (map[string]bool, error) {
		return src.LikedPostIDs(ctx, ids, userID)
	})
}

// mapBatch превращает метод хранилища, отвечающий по списку id одним запросом, в батч-функцию.
func mapBatch[V any](fetch func(context.Context, []string) (map[string]V, error)) dataloader.BatchFunc {
	return func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]string, len(keys))
		for i, k := range keys {
			ids[i] = k.String()
		}

		values, err := fetch(ctx, ids)
		results := make([]*dataloader.Result, len(keys))
		if err != nil {
			// В случае ошибки возвращаем ее для всех ключей
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Результат в том же порядке, что и ключи. Отсутствующий id - нулевое значение.
		for i, id := range ids {
			results[i] = &dataloader.Result{Data: values[id]}
		}
		return results
	}
}

// Middleware для внедрения лоадеров в контекст запроса.
func Middleware(src Source, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), key, NewLoaders(src))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// For извлекает лоадеры из контекста. Возвращает nil, если middleware не подключен.
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(key).(*Loaders)
	return loaders
}

// CommentsCounts возвращает число комментариев для каждого поста в порядке postIDs.
// Все ключи ставятся в очередь до ожидания, поэтому уходят одним батчем.
func (l *Loaders) CommentsCounts(ctx context.Context, postIDs []string) ([]int, error) {
	return load[int](ctx, l.CommentsCountByPostID, postIDs)
}

// RepliesCounts возвращает число прямых ответов для каждого комментария.
func (l *Loaders) RepliesCounts(ctx context.Context, commentIDs []string) ([]int, error) {
	return load[int](ctx, l.RepliesCountByCommentID, commentIDs)
}

// LikedBy сообщает для каждого поста, лайкнул ли его userID.
// Для анонимного пользователя хранилище не опрашивается.
func (l *Loaders) LikedBy(ctx context.Context, userID string, postIDs []string) ([]bool, error) {
	if userID == "" {
		return make([]bool, len(postIDs)), nil
	}
	return load[bool](ctx, l.likedLoader(userID), postIDs)
}

func (l *Loaders) likedLoader(userID string) *dataloader.Loader {
	l.mu.Lock()
	defer l.mu.Unlock()
	loader, ok := l.likedBy[userID]
	if !ok {
		loader = dataloader.NewBatchedLoader(likedBatch(l.src, userID), dataloader.WithWait(wait))
		l.likedBy[userID] = loader
	}
	return loader
}

func load[T any](ctx context.Context, loader *dataloader.Loader, ids []string) ([]T, error) {
	thunks := make([]dataloader.Thunk, len(ids))
	for i, id := range ids {
		thunks[i] = loader.Load(ctx, dataloader.StringKey(id))
	}

	out := make([]T, len(ids))
	for i, thunk := range thunks {
		v, err := thunk()
		if err != nil {
			return nil, err
		}
		value, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("dataloader: unexpected value %T for key %s", v, ids[i])
		}
		out[i] = value
	}
	return out, nil
}
