// Package service - операции над постами, комментариями, лайками и тегами,
// которые вызывает транспортный слой. Атомарность обеспечивает storage.Storage,
// сервис отвечает за валидацию входа, размер страниц, кэш и события.
package service

import (
	"context"
	"log"
	"time"

	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/UkralStul/posts-service/internal/events"
	"github.com/UkralStul/posts-service/internal/storage"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PostCache - кэш отдельных постов. Get возвращает nil, nil при промахе.
type PostCache interface {
	Get(ctx context.Context, id string) (*domain.Post, error)
	Set(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id string) error
}

// Options - необязательные зависимости и настройки сервиса.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	Cache           PostCache
	Publisher       events.Publisher
}

type Service struct {
	store           storage.Storage
	cache           PostCache
	publisher       events.Publisher
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

func New(store storage.Storage, opts Options) *Service {
	s := &Service{
		store:           store,
		cache:           opts.Cache,
		publisher:       opts.Publisher,
		defaultPageSize: opts.DefaultPageSize,
		maxPageSize:     opts.MaxPageSize,
		now:             func() time.Time { return time.Now().UTC() },
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.defaultPageSize <= 0 {
		s.defaultPageSize = DefaultPageSize
	}
	if s.maxPageSize <= 0 {
		s.maxPageSize = MaxPageSize
	}
	if s.defaultPageSize > s.maxPageSize {
		s.defaultPageSize = s.maxPageSize
	}
	return s
}

// PageRequest - запрошенная страница. Нулевые поля заменяются значениями по умолчанию.
type PageRequest struct {
	Page int
	Size int
}

// Page - страница результатов.
type Page[T any] struct {
	Items    []T  `json:"results"`
	Total    int  `json:"count"`
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasNext  bool `json:"hasNext"`
}

func (s *Service) pageArgs(req PageRequest) storage.PageArgs {
	args := storage.PageArgs{Page: req.Page, Size: s.defaultPageSize}
	if args.Page < 1 {
		args.Page = 1
	}
	if req.Size > 0 {
		args.Size = req.Size
	}
	if args.Size > s.maxPageSize {
		args.Size = s.maxPageSize
	}
	return args
}

func newPage[T any](items []T, total int, args storage.PageArgs) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Total:    total,
		Page:     args.Page,
		PageSize: args.Size,
		HasNext:  args.Offset()+len(items) < total,
	}
}

// invalidate сбрасывает пост из кэша. Ошибка кэша не ломает запрос.
func (s *Service) invalidate(ctx context.Context, postID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, postID); err != nil {
		log.Printf("cache: failed to invalidate post %s: %v", postID, err)
	}
}

// publish вызывается только после фиксации изменения.
func (s *Service) publish(ctx context.Context, ev domain.Event) {
	ev.At = s.now()
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Printf("events: failed to publish %s for post %s: %v", ev.Type, ev.PostID, err)
	}
}
