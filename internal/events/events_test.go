package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/UkralStul/posts-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversToPostSubscribers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx, "post-1")
	other := hub.Subscribe(ctx, "post-2")

	ev := domain.Event{Type: domain.EventCommentCreated, PostID: "post-1", CommentID: "c-1"}
	require.NoError(t, hub.Publish(ctx, ev))

	select {
	case got := <-ch:
		assert.Equal(t, "c-1", got.CommentID)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}

	select {
	case <-other:
		t.Fatal("event leaked to another post")
	default:
	}
}

func TestHub_UnsubscribeOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	ch := hub.Subscribe(ctx, "post-1")
	assert.Equal(t, 1, hub.Subscribers("post-1"))

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}
	assert.Equal(t, 0, hub.Subscribers("post-1"))
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Subscribe(ctx, "post-1")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(ctx, domain.Event{PostID: "post-1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, domain.Event) error { return f.err }

func TestMulti_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := hub.Subscribe(ctx, "post-1")

	m := Multi{failingPublisher{err: boom}, hub, Nop{}}
	err := m.Publish(ctx, domain.Event{PostID: "post-1"})
	assert.ErrorIs(t, err, boom)

	// Ошибка одного издателя не мешает остальным
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("hub did not receive event")
	}
}

func TestToPublishing(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := toPublishing(domain.Event{Type: domain.EventLikeCreated, PostID: "p", LikeID: "l", At: at})
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "like.created", msg.Type)
	assert.Equal(t, at, msg.Timestamp)

	var decoded domain.Event
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "l", decoded.LikeID)
}
