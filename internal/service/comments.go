package service

import (
	"context"
	"fmt"
	"log"

	"github.com/UkralStul/posts-service/internal/domain"
)

// CreateComment создает корневой комментарий или ответ, если задан parentID.
// Родитель должен существовать и относиться к тому же посту.
func (s *Service) CreateComment(ctx context.Context, userID, postID, content string, parentID *string) (*domain.Comment, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := checkVar("content", content, commentContentRule); err != nil {
		return nil, err
	}
	if parentID != nil && *parentID == "" {
		parentID = nil
	}

	comment, err := s.store.CreateComment(ctx, &domain.Comment{
		PostID:   postID,
		ParentID: parentID,
		UserID:   userID,
		Content:  content,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.Event{
		Type:      domain.EventCommentCreated,
		PostID:    comment.PostID,
		UserID:    comment.UserID,
		CommentID: comment.ID,
		Comment:   comment,
	})
	return comment, nil
}

func (s *Service) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	return s.store.GetCommentByID(ctx, id)
}

func (s *Service) UpdateComment(ctx context.Context, id, userID, content string) (*domain.Comment, error) {
	if err := checkVar("content", content, commentContentRule); err != nil {
		return nil, err
	}
	return s.store.UpdateComment(ctx, id, userID, content)
}

// DeleteComment удаляет комментарий вместе со всеми ответами любой глубины.
func (s *Service) DeleteComment(ctx context.Context, id, userID string) error {
	comment, n, err := s.store.DeleteComment(ctx, id, userID)
	if err != nil {
		return err
	}
	if n > 1 {
		log.Printf("comment %s deleted with %d replies", id, n-1)
	}
	s.publish(ctx, domain.Event{
		Type:      domain.EventCommentDeleted,
		PostID:    comment.PostID,
		UserID:    userID,
		CommentID: comment.ID,
	})
	return nil
}

// ListRoots возвращает комментарии без родителя для поста, новые первыми.
func (s *Service) ListRoots(ctx context.Context, postID string, req PageRequest) (Page[*domain.Comment], error) {
	if postID == "" {
		return Page[*domain.Comment]{}, fmt.Errorf("post: %w", domain.ErrNotFound)
	}
	return s.ListComments(ctx, postID, req)
}

// ListComments - как ListRoots, но пустой postID означает все посты.
func (s *Service) ListComments(ctx context.Context, postID string, req PageRequest) (Page[*domain.Comment], error) {
	args := s.pageArgs(req)
	comments, total, err := s.store.GetRootComments(ctx, postID, args)
	if err != nil {
		return Page[*domain.Comment]{}, err
	}
	return newPage(comments, total, args), nil
}

// ListReplies возвращает только прямые ответы на комментарий.
func (s *Service) ListReplies(ctx context.Context, commentID string, req PageRequest) (Page[*domain.Comment], error) {
	args := s.pageArgs(req)
	replies, total, err := s.store.GetCommentsByParentID(ctx, commentID, args)
	if err != nil {
		return Page[*domain.Comment]{}, err
	}
	return newPage(replies, total, args), nil
}

// RepliesCount - число прямых ответов, без учета более глубоких уровней.
func (s *Service) RepliesCount(ctx context.Context, commentID string) (int, error) {
	if _, err := s.store.GetCommentByID(ctx, commentID); err != nil {
		return 0, err
	}
	counts, err := s.store.CountRepliesByParentIDs(ctx, []string{commentID})
	if err != nil {
		return 0, err
	}
	return counts[commentID], nil
}
