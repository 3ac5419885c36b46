package domain

import "fmt"

// Status - состояние жизненного цикла поста.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// ParseStatus превращает строку в Status. Пустая строка дает черновик.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "":
		return StatusDraft, nil
	case StatusDraft, StatusPublished, StatusArchived:
		return Status(s), nil
	}
	return "", &ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", s)}
}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// CanTransitionTo - единственное правило смены статуса.
// Из archived можно перейти только в draft, остальные переходы разрешены.
// Повторная установка того же статуса изменением не считается.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	if s == StatusArchived {
		return next == StatusDraft
	}
	return true
}

// CheckTransition возвращает ErrInvalidTransition, если переход from -> to запрещен.
func CheckTransition(from, to Status) error {
	if !to.Valid() {
		return &ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", to)}
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
