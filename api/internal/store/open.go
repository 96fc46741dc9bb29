package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"writing-guru/api/internal/config"
	"writing-guru/api/internal/logger"
)

// Blob: общий интерфейс всех бэкендов.
type Blob interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

// Open builds the backend named by cfg.HistoryBackend. The returned close
// func is never nil.
func Open(ctx context.Context, cfg *config.Config) (Blob, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(cfg.HistoryBackend)) {
	case "", "file":
		logger.Info(ctx, "history backend: file", "dir", cfg.HistoryDir)
		return NewFileBlob(cfg.HistoryDir), noop, nil

	case "memory":
		logger.Warn(ctx, "history backend: memory, drafts are lost on restart")
		return NewMemoryBlob(), noop, nil

	case "postgres", "pg":
		dsn := cfg.DSN()
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, noop, fmt.Errorf("sql.Open: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(1 * time.Hour)

		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pctx); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("db.Ping: %w", err)
		}
		repo := NewBlobRepo(db)
		if err := repo.EnsureSchema(pctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		logger.Info(ctx, "history backend: postgres", "db", config.SafeDSNSummary(dsn))
		return repo, db.Close, nil

	case "redis":
		rb, err := NewRedisBlob(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, "writing-guru:")
		if err != nil {
			return nil, noop, err
		}
		logger.Info(ctx, "history backend: redis", "addr", cfg.RedisAddr)
		return rb, rb.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown HISTORY_BACKEND %q", cfg.HistoryBackend)
}
