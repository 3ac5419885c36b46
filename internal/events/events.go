// Package events доставляет уведомления о зафиксированных изменениях подписчикам.
package events

import (
	"context"
	"errors"

	"github.com/UkralStul/posts-service/internal/domain"
)

// Publisher отправляет событие. Ошибка публикации не откатывает само изменение.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// Multi рассылает событие всем вложенным издателям.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev domain.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop ничего не делает.
type Nop struct{}

func (Nop) Publish(context.Context, domain.Event) error { return nil }
