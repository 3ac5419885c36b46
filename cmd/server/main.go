package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UkralStul/posts-service/config"
	"github.com/UkralStul/posts-service/internal/cache"
	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/UkralStul/posts-service/internal/events"
	"github.com/UkralStul/posts-service/internal/httpapi"
	"github.com/UkralStul/posts-service/internal/service"
	"github.com/UkralStul/posts-service/internal/storage"
	"github.com/UkralStul/posts-service/internal/storage/inmemory"
	"github.com/UkralStul/posts-service/internal/storage/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	storageType := flag.String("storage", "", "Storage type (in-memory or postgres), overrides config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.ApplyLegacyEnv()
	if *storageType != "" {
		cfg.Storage = *storageType
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid -storage flag: %v", err)
		}
	}

	var store storage.Storage

	log.Printf("Starting server with %s storage", cfg.Storage)
	if cfg.Storage == "postgres" {
		pg, err := postgres.New(postgres.Config{
			DSN:             cfg.Database.ConnString(),
			LogLevel:        cfg.Database.LogLevel,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.MaxLifetime,
		})
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pg.Close()
		store = pg
	} else {
		store = inmemory.New()
	}

	opts := service.Options{
		DefaultPageSize: cfg.Pagination.DefaultPageSize,
		MaxPageSize:     cfg.Pagination.MaxPageSize,
	}

	if cfg.Redis.Addr != "" {
		postCache, err := cache.NewPostCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer postCache.Close()
		opts.Cache = postCache
		log.Printf("post cache enabled (%s, ttl %s)", cfg.Redis.Addr, cfg.Redis.TTL)
	}

	hub := events.NewHub()
	publishers := events.Multi{hub}
	if cfg.AMQP.URL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer amqpPub.Close()
		publishers = append(publishers, amqpPub)
		log.Printf("publishing events to exchange %s", cfg.AMQP.Exchange)
	}
	opts.Publisher = publishers

	svc := service.New(store, opts)
	if cfg.Storage == "in-memory" && cfg.Server.Seed {
		// Заполним данными для тестов
		fillWithMockData(svc)
	}

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	httpapi.NewHandler(svc, hub, store).Routes(router)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func fillWithMockData(svc *service.Service) {
	ctx := context.Background()

	// 1. Создаем тег и опубликованный пост с ним.
	tag, err := svc.CreateTag(ctx, "Go")
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create tag: %v", err)
	}
	post, err := svc.CreatePost(ctx, service.CreatePostInput{
		UserID:  "user-1",
		Title:   "Тестовый пост о Go",
		Content: "Это содержимое тестового поста. Здесь мы обсуждаем Go и хранение счетчиков.",
		Status:  string(domain.StatusPublished),
		TagIDs:  []string{tag.ID},
	})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create post: %v", err)
	}

	// 2. Корневой комментарий и ответ на него.
	c1, err := svc.CreateComment(ctx, "user-2", post.ID, "Отличный пост! Очень информативно.", nil)
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create comment 1: %v", err)
	}
	if _, err = svc.CreateComment(ctx, "user-1", post.ID, "Спасибо! Рад, что вам понравилось.", &c1.ID); err != nil {
		log.Fatalf("fillWithMockData: failed to create nested comment: %v", err)
	}

	// 3. Лайк от второго пользователя.
	if _, err = svc.CreateLike(ctx, "user-2", post.ID); err != nil {
		log.Fatalf("fillWithMockData: failed to create like: %v", err)
	}

	// 4. Черновик, который не попадет в список недавних.
	draft, err := svc.CreatePost(ctx, service.CreatePostInput{
		UserID:  "user-admin",
		Title:   "Черновик",
		Content: "Этот пост еще не опубликован.",
	})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create draft: %v", err)
	}

	log.Printf("Mock data filled successfully. Published post ID: %s, draft post ID: %s", post.ID, draft.ID)
}
