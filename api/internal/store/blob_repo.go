package store

import (
	"context"
	"database/sql"
	"errors"
)

// BlobRepo хранит историю целиком, одной строкой на ключ.
// PK: key. Каждая запись полностью перезаписывает value.
type BlobRepo struct{ DB *sql.DB }

func NewBlobRepo(db *sql.DB) *BlobRepo { return &BlobRepo{DB: db} }

// EnsureSchema создаёт таблицу, если её ещё нет.
func (r *BlobRepo) EnsureSchema(ctx context.Context) error {
	const q = `
create table if not exists history_blobs (
  key        text primary key,
  value      bytea not null,
  updated_at timestamptz not null default now()
)`
	_, err := r.DB.ExecContext(ctx, q)
	return err
}

func (r *BlobRepo) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `select value from history_blobs where key = $1`
	var b []byte
	if err := r.DB.QueryRowContext(ctx, q, key).Scan(&b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *BlobRepo) Put(ctx context.Context, key string, value []byte) error {
	const q = `
insert into history_blobs(key, value)
values ($1, $2)
on conflict (key)
do update set value = excluded.value, updated_at = now()`
	_, err := r.DB.ExecContext(ctx, q, key, value)
	return err
}

func (r *BlobRepo) Ping(ctx context.Context) error { return r.DB.PingContext(ctx) }
