package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 5 * time.Second
	pingInterval = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// commentFeed отдает по websocket события комментариев поста, пока клиент подключен.
func (h *Handler) commentFeed(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	// Проверяем, существует ли пост, прежде чем подписываться
	if _, err := h.svc.GetPost(r.Context(), postID); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// Подписка до апгрейда, чтобы не потерять события сразу после рукопожатия
	feed := h.hub.Subscribe(ctx, postID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed for post %s: %v", postID, err)
		return
	}
	defer conn.Close()

	// Читаем только для обнаружения закрытия соединения клиентом
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-feed:
			if !ok {
				return
			}
			if ev.Type != domain.EventCommentCreated && ev.Type != domain.EventCommentDeleted {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
