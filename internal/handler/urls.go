package handler

import (
	"net/http"
	"strings"

	"github.com/folio/internal/storage"
	"github.com/gin-gonic/gin"
)

// requestBaseURL 根据当前请求推导站点根地址，优先使用反向代理转发的头部
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	switch proto := strings.ToLower(firstHeaderValue(r.Header.Get("X-Forwarded-Proto"))); {
	case proto == "http" || proto == "https":
		scheme = proto
	case r.TLS != nil:
		scheme = "https"
	}

	host := firstHeaderValue(r.Header.Get("X-Forwarded-Host"))
	if host == "" {
		host = r.Host
	}
	return scheme + "://" + host
}

func firstHeaderValue(raw string) string {
	if index := strings.IndexByte(raw, ','); index >= 0 {
		raw = raw[:index]
	}
	return strings.TrimSpace(raw)
}

// absoluteURL 把站内路径转换为绝对地址；已是绝对地址的原样返回
func absoluteURL(c *gin.Context, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return requestBaseURL(c.Request) + ref
}

// mediaURL 返回媒体 key 的绝对地址，未设置时返回 nil 以便 JSON 输出 null
func (a *API) mediaURL(c *gin.Context, key string) interface{} {
	path := storage.URLPath(a.mediaPath, key)
	if path == "" {
		return nil
	}
	return absoluteURL(c, path)
}
