// Package config загружает настройки сервиса: yaml файл, затем переменные окружения с префиксом POSTS_.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "POSTS_"

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Storage    string           `koanf:"storage"` // in-memory, postgres
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	AMQP       AMQPConfig       `koanf:"amqp"`
	Pagination PaginationConfig `koanf:"pagination"`
}

type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	Seed         bool          `koanf:"seed"` // заполнить in-memory хранилище тестовыми данными
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	DSN          string        `koanf:"dsn"` // если задан, остальные поля подключения игнорируются
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	User         string        `koanf:"user"`
	Password     string        `koanf:"password"`
	Name         string        `koanf:"name"`
	SSLMode      string        `koanf:"sslmode"`
	LogLevel     string        `koanf:"log_level"` // silent, error, warn, info
	MaxOpenConns int           `koanf:"max_open_conns"`
	MaxIdleConns int           `koanf:"max_idle_conns"`
	MaxLifetime  time.Duration `koanf:"max_lifetime"`
}

// ConnString возвращает DSN для драйвера postgres.
func (c DatabaseConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisConfig - пустой Addr отключает кэш.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

// AMQPConfig - пустой URL отключает публикацию событий.
type AMQPConfig struct {
	URL      string `koanf:"url"`
	Exchange string `koanf:"exchange"`
}

type PaginationConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// Default возвращает значения, которые используются для отсутствующих ключей.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:         "",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Storage: "in-memory",
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "postgres",
			Name:         "posts",
			SSLMode:      "disable",
			LogLevel:     "warn",
			MaxOpenConns: 20,
			MaxIdleConns: 5,
			MaxLifetime:  time.Hour,
		},
		Redis: RedisConfig{
			TTL: time.Minute,
		},
		AMQP: AMQPConfig{
			Exchange: "posts.events",
		},
		Pagination: PaginationConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
	}
}

// Load читает .env (если есть), yaml файл по пути path (если задан) и переменные окружения.
// Переменные окружения перекрывают файл: POSTS_SERVER_PORT -> server.port,
// POSTS_DATABASE_LOG_LEVEL -> database.log_level.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: failed to load .env: %v", err)
	}

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey превращает POSTS_DATABASE_LOG_LEVEL в database.log_level.
// Первый сегмент - секция, остаток - ключ внутри нее.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	section, rest, found := strings.Cut(s, "_")
	if !found {
		return section
	}
	return section + "." + rest
}

func (c *Config) Validate() error {
	switch c.Storage {
	case "in-memory", "postgres":
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage)
	}
	if c.Pagination.DefaultPageSize <= 0 || c.Pagination.MaxPageSize <= 0 {
		return errors.New("page sizes must be positive")
	}
	if c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		return fmt.Errorf("default_page_size %d exceeds max_page_size %d",
			c.Pagination.DefaultPageSize, c.Pagination.MaxPageSize)
	}
	return nil
}

// ApplyLegacyEnv учитывает DATABASE_URL и PORT, если они заданы.
func (c *Config) ApplyLegacyEnv() {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" && c.Database.DSN == "" {
		c.Database.DSN = dsn
	}
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil && port > 0 {
		c.Server.Port = port
	}
}
