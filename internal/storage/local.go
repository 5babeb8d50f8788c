package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// LocalStore 将媒体文件保存在本地目录中。
type LocalStore struct {
	root string
}

// NewLocalStore 创建本地存储并确保根目录存在。
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) resolve(key string) (string, error) {
	if !ValidKey(key) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Save 写入文件，先写临时文件再重命名，避免读到半截内容。
func (s *LocalStore) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write media %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close media %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("move media %q: %w", key, err)
	}
	return nil
}

// Open 打开文件用于流式读取。
func (s *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	target, err := s.resolve(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	file, err := os.Open(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ObjectInfo{}, ErrObjectNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("open media %q: %w", key, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, ObjectInfo{}, fmt.Errorf("stat media %q: %w", key, err)
	}
	if stat.IsDir() {
		file.Close()
		return nil, ObjectInfo{}, ErrObjectNotFound
	}

	contentType := mime.TypeByExtension(filepath.Ext(target))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return file, ObjectInfo{
		Key:          key,
		Size:         stat.Size(),
		ContentType:  contentType,
		LastModified: stat.ModTime(),
	}, nil
}

// Delete 删除文件，不存在视为成功（幂等）。
func (s *LocalStore) Delete(_ context.Context, key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove media %q: %w", key, err)
	}
	return nil
}
