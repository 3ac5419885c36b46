package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrPermission        = errors.New("permission denied")
	ErrDuplicateLike     = errors.New("post already liked by this user")
	ErrDuplicateName     = errors.New("name already taken")
	ErrInvalidParent     = errors.New("invalid parent comment")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
)

// ValidationError описывает некорректное поле входных данных.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
