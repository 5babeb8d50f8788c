package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/dutchcoders/go-clamd"
)

// ErrInfected 表示上传内容被杀毒引擎判定为恶意文件。
var ErrInfected = errors.New("malicious file detected")

// Scanner 在保存前检查上传内容。
type Scanner interface {
	Scan(r io.Reader) error
}

// ClamdScanner 通过 clamd 守护进程扫描上传流。
type ClamdScanner struct {
	addr string
}

// NewClamdScanner 返回指向 addr（如 tcp://127.0.0.1:3310）的扫描器。
func NewClamdScanner(addr string) *ClamdScanner {
	return &ClamdScanner{addr: addr}
}

// Scan 将内容流式发送给 clamd，任一结果非 OK 即视为感染。
func (s *ClamdScanner) Scan(r io.Reader) error {
	client := clamd.NewClamd(s.addr)

	abort := make(chan bool)
	defer close(abort)

	results, err := client.ScanStream(r, abort)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}

	infected := false
	for result := range results {
		if result.Status != clamd.RES_OK {
			infected = true
		}
	}
	if infected {
		return ErrInfected
	}
	return nil
}
