package service

import (
	"context"

	"github.com/UkralStul/posts-service/internal/domain"
)

// CreateLike ставит лайк и увеличивает счетчик поста в одной операции хранилища.
func (s *Service) CreateLike(ctx context.Context, userID, postID string) (*domain.Like, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	like, err := s.store.CreateLike(ctx, &domain.Like{UserID: userID, PostID: postID})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, postID)
	s.publish(ctx, domain.Event{
		Type:   domain.EventLikeCreated,
		PostID: postID,
		UserID: userID,
		LikeID: like.ID,
	})
	return like, nil
}

// DeleteLike снимает лайк владельца и уменьшает счетчик поста.
func (s *Service) DeleteLike(ctx context.Context, likeID, userID string) error {
	like, err := s.store.DeleteLike(ctx, likeID, userID)
	if err != nil {
		return err
	}
	s.invalidate(ctx, like.PostID)
	s.publish(ctx, domain.Event{
		Type:   domain.EventLikeDeleted,
		PostID: like.PostID,
		UserID: userID,
		LikeID: like.ID,
	})
	return nil
}

func (s *Service) GetLike(ctx context.Context, id string) (*domain.Like, error) {
	return s.store.GetLikeByID(ctx, id)
}

// ListLikes возвращает лайки поста или всех постов при пустом postID.
func (s *Service) ListLikes(ctx context.Context, postID string, req PageRequest) (Page[*domain.Like], error) {
	args := s.pageArgs(req)
	likes, total, err := s.store.ListLikes(ctx, postID, args)
	if err != nil {
		return Page[*domain.Like]{}, err
	}
	return newPage(likes, total, args), nil
}
