// Package cache кэширует отдельные посты в Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisConfig - параметры подключения к Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// PostCache - read-through кэш постов. Запись делает сервис, он же инвалидирует ключ после изменений.
type PostCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPostCache(cfg RedisConfig) (*PostCache, error) {
	options := &redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	}
	// Пароль задаем только если он не пустой
	if cfg.Password != "" {
		options.Password = cfg.Password
	}
	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error connecting to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PostCache{client: client, ttl: ttl}, nil
}

func key(id string) string {
	return fmt.Sprintf("post:%s", id)
}

// Get возвращает nil, nil при промахе.
func (c *PostCache) Get(ctx context.Context, id string) (*domain.Post, error) {
	value, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var post domain.Post
	if err := json.Unmarshal(value, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *PostCache) Set(ctx context.Context, post *domain.Post) error {
	value, err := json.Marshal(post)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(post.ID), value, c.ttl).Err()
}

func (c *PostCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, key(id)).Err()
}

func (c *PostCache) Close() error {
	return c.client.Close()
}
