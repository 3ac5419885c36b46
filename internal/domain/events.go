package domain

import "time"

type EventType string

const (
	EventCommentCreated EventType = "comment.created"
	EventCommentDeleted EventType = "comment.deleted"
	EventLikeCreated    EventType = "like.created"
	EventLikeDeleted    EventType = "like.deleted"
	EventPostDeleted    EventType = "post.deleted"
)

// Event - уведомление о зафиксированном изменении.
// Comment заполнен только для событий комментариев.
type Event struct {
	Type      EventType `json:"type"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	CommentID string    `json:"commentId,omitempty"`
	LikeID    string    `json:"likeId,omitempty"`
	Comment   *Comment  `json:"comment,omitempty"`
	At        time.Time `json:"at"`
}
