package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// FileBlob: по файлу на ключ в каталоге Dir (аналог localStorage браузера).
type FileBlob struct {
	Dir string
}

func NewFileBlob(dir string) *FileBlob { return &FileBlob{Dir: dir} }

// путь безопасен для ключей вида "writing_history:42"
func (f *FileBlob) path(key string) string {
	return filepath.Join(f.Dir, url.PathEscape(key)+".json")
}

func (f *FileBlob) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Put пишет во временный файл и переименовывает, чтобы не оставить полузаписанный блоб.
func (f *FileBlob) Put(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.Dir, ".history-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, f.path(key)); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

func (f *FileBlob) Ping(context.Context) error {
	return os.MkdirAll(f.Dir, 0o755)
}
