package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ErrObjectNotFound 表示媒体对象不存在。
var ErrObjectNotFound = errors.New("media object not found")

// ErrInvalidKey 表示对象 key 不合法（越权路径、过长等）。
var ErrInvalidKey = errors.New("invalid media key")

// ObjectInfo 描述读取到的媒体对象。
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Store 是媒体文件的存储后端，key 为形如 projects/20250101-<uuid>.png 的相对路径。
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// NewObjectKey 生成 <folder>/<yyyymmdd>-<uuid><ext> 形式的唯一 key。
func NewObjectKey(folder, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := fmt.Sprintf("%s-%s%s", now.Format("20060102"), uuid.New().String(), ext)
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

// ValidKey 拒绝空 key、绝对路径、目录穿越以及非法编码。
func ValidKey(key string) bool {
	if key == "" || !utf8.ValidString(key) || len(key) > 255 {
		return false
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") || strings.Contains(key, "//") {
		return false
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return false
		}
	}
	return true
}

// URLPath 把 key 拼接到媒体路由前缀下，返回站内相对路径。
func URLPath(prefix, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	return "/" + strings.Trim(prefix, "/") + "/" + strings.TrimLeft(key, "/")
}
