package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/folio/internal/storage"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedMedia 上传文件的类型或内容不被接受
var ErrUnsupportedMedia = errors.New("unsupported media")

const (
	maxImageBytes    int64 = 5 << 20
	maxDocumentBytes int64 = 10 << 20
)

type mediaKind int

const (
	mediaImage mediaKind = iota
	mediaIcon
	mediaDocument
)

type mediaFolder struct {
	kind       mediaKind
	extensions []string
}

// 每个目录允许的文件类型
var mediaFolders = map[string]mediaFolder{
	"profile":        {kind: mediaImage, extensions: []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}},
	"projects":       {kind: mediaImage, extensions: []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}},
	"education":      {kind: mediaImage, extensions: []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}},
	"certifications": {kind: mediaImage, extensions: []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}},
	"favicon":        {kind: mediaIcon, extensions: []string{".ico", ".png"}},
	"cv":             {kind: mediaDocument, extensions: []string{".pdf", ".doc", ".docx"}},
}

// MediaService 校验并保存上传的媒体文件
type MediaService struct {
	store   storage.Store
	scanner storage.Scanner
	now     func() time.Time
}

// NewMediaService 构造 MediaService；scanner 为 nil 时跳过病毒扫描
func NewMediaService(store storage.Store, scanner storage.Scanner) *MediaService {
	return &MediaService{store: store, scanner: scanner, now: time.Now}
}

// UploadResult 描述保存后的媒体对象
type UploadResult struct {
	Key         string
	ContentType string
	Size        int64
}

// Upload 校验目录、扩展名、大小与文件内容后写入存储
func (s *MediaService) Upload(ctx context.Context, folder, filename string, r io.ReadSeeker, size int64) (*UploadResult, error) {
	folder = strings.ToLower(strings.TrimSpace(folder))
	policy, ok := mediaFolders[folder]
	if !ok {
		return nil, newFieldError("folder", fmt.Sprintf("%q is not a valid upload folder.", folder))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !containsString(policy.extensions, ext) {
		return nil, newFieldError("file", fmt.Sprintf("File extension %q is not allowed.", ext))
	}

	limit := maxImageBytes
	if policy.kind == mediaDocument {
		limit = maxDocumentBytes
	}
	if size <= 0 || size > limit {
		return nil, newFieldError("file", fmt.Sprintf("File size must be between 1 byte and %d MB.", limit>>20))
	}

	if err := verifyContent(policy.kind, ext, r); err != nil {
		return nil, err
	}

	if s.scanner != nil {
		if err := rewind(r); err != nil {
			return nil, err
		}
		if err := s.scanner.Scan(r); err != nil {
			return nil, err
		}
	}

	if err := rewind(r); err != nil {
		return nil, err
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.NewObjectKey(folder, filename, s.now())
	if err := s.store.Save(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	return &UploadResult{Key: key, ContentType: contentType, Size: size}, nil
}

// Open 以流的方式读取媒体对象
func (s *MediaService) Open(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	return s.store.Open(ctx, key)
}

var (
	pdfMagic = []byte("%PDF-")
	icoMagic = []byte{0x00, 0x00, 0x01, 0x00}
)

func verifyContent(kind mediaKind, ext string, r io.ReadSeeker) error {
	if err := rewind(r); err != nil {
		return err
	}

	switch {
	case kind == mediaImage, kind == mediaIcon && ext == ".png":
		if _, _, err := image.DecodeConfig(r); err != nil {
			return fmt.Errorf("%w: file is not a valid image", ErrUnsupportedMedia)
		}
	case kind == mediaIcon:
		if !hasPrefix(r, icoMagic) {
			return fmt.Errorf("%w: file is not a valid icon", ErrUnsupportedMedia)
		}
	case ext == ".pdf":
		if !hasPrefix(r, pdfMagic) {
			return fmt.Errorf("%w: file is not a valid PDF", ErrUnsupportedMedia)
		}
	}
	return nil
}

func hasPrefix(r io.Reader, magic []byte) bool {
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(r, head); err != nil {
		return false
	}
	return bytes.Equal(head, magic)
}

func rewind(r io.Seeker) error {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind upload: %w", err)
	}
	return nil
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
