package events

import (
	"context"
	"sync"

	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/google/uuid"
)

// Hub хранит каналы для подписчиков на события поста.
type Hub struct {
	mu sync.RWMutex
	//          map[postID] map[subscriberID] channel
	subs map[string]map[string]chan domain.Event
}

// NewHub - конструктор для нашего наблюдателя.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[string]chan domain.Event),
	}
}

// Subscribe регистрирует подписчика на события поста.
// Канал закрывается, когда ctx завершен.
func (h *Hub) Subscribe(ctx context.Context, postID string) <-chan domain.Event {
	ch := make(chan domain.Event, 16)
	subID := uuid.NewString()

	h.mu.Lock()
	if h.subs[postID] == nil {
		h.subs[postID] = make(map[string]chan domain.Event)
	}
	h.subs[postID][subID] = ch
	h.mu.Unlock()

	// Горутина для очистки при отключении клиента
	go func() {
		<-ctx.Done()
		h.mu.Lock()
		if postSubs, ok := h.subs[postID]; ok {
			delete(postSubs, subID)
			if len(postSubs) == 0 {
				delete(h.subs, postID)
			}
		}
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Publish не блокируется: медленный подписчик просто пропускает событие.
func (h *Hub) Publish(ctx context.Context, ev domain.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[ev.PostID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribers возвращает число подписчиков поста.
func (h *Hub) Subscribers(postID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[postID])
}
