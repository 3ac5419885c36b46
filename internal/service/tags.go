package service

import (
	"context"
	"log"
	"strings"

	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/UkralStul/posts-service/internal/slug"
)

func tagSlug(name string) (string, error) {
	sl := slug.Make(name)
	if sl == "" {
		return "", &domain.ValidationError{Field: "name", Msg: "name must contain latin letters or digits"}
	}
	return sl, nil
}

// CreateTag создает тег, slug выводится из имени.
func (s *Service) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if err := checkVar("name", name, tagNameRule); err != nil {
		return nil, err
	}
	sl, err := tagSlug(name)
	if err != nil {
		return nil, err
	}
	return s.store.CreateTag(ctx, &domain.Tag{Name: name, Slug: sl})
}

func (s *Service) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	return s.store.GetTagByID(ctx, id)
}

// UpdateTag переименовывает тег и пересчитывает slug.
// Посты с этим тегом удаляются из кэша.
func (s *Service) UpdateTag(ctx context.Context, id, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if err := checkVar("name", name, tagNameRule); err != nil {
		return nil, err
	}
	sl, err := tagSlug(name)
	if err != nil {
		return nil, err
	}
	tag, err := s.store.UpdateTag(ctx, id, name, sl)
	if err != nil {
		return nil, err
	}
	s.invalidateTagged(ctx, id)
	return tag, nil
}

// DeleteTag отвязывает тег от постов, сами посты остаются.
func (s *Service) DeleteTag(ctx context.Context, id string) error {
	// После удаления связи с постами уже не найти
	postIDs := s.taggedPosts(ctx, id)
	if err := s.store.DeleteTag(ctx, id); err != nil {
		return err
	}
	for _, postID := range postIDs {
		s.invalidate(ctx, postID)
	}
	return nil
}

func (s *Service) invalidateTagged(ctx context.Context, tagID string) {
	for _, postID := range s.taggedPosts(ctx, tagID) {
		s.invalidate(ctx, postID)
	}
}

// taggedPosts возвращает nil без кэша: инвалидировать нечего.
func (s *Service) taggedPosts(ctx context.Context, tagID string) []string {
	if s.cache == nil {
		return nil
	}
	ids, err := s.store.PostIDsByTagID(ctx, tagID)
	if err != nil {
		log.Printf("cache: failed to list posts of tag %s: %v", tagID, err)
		return nil
	}
	return ids
}

func (s *Service) ListTags(ctx context.Context, search string, req PageRequest) (Page[*domain.Tag], error) {
	args := s.pageArgs(req)
	tags, total, err := s.store.ListTags(ctx, strings.TrimSpace(search), args)
	if err != nil {
		return Page[*domain.Tag]{}, err
	}
	return newPage(tags, total, args), nil
}

func (s *Service) PostsCount(ctx context.Context, tagID string) (int, error) {
	return s.store.CountPostsByTagID(ctx, tagID)
}
