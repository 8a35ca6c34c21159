package filesave

import (
	"bibgraph-backend/utils"
	"context"
	"errors"
	"os"
	"path/filepath"
)

type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, utils.WrapErrorf(err, "create dir [%s] fail", dir)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}

func (s *LocalStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", utils.WrapError(err, "create parent dir fail")
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", utils.WrapError(err, "write file fail")
	}
	return p, nil
}

func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, utils.WrapError(ErrFileNotFound, key)
	}
	if err != nil {
		return nil, utils.WrapError(err, "read file fail")
	}
	return data, nil
}
