package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML(), html.WithUnsafe()),
	)
	sanitizer = buildContentSanitizer()
)

const siteContextKey = "__site"

// renderMarkdown 渲染 Markdown，原始 HTML 一律交给 sanitizer 过滤
func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(embedDemoVideos(content)), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}

// siteData 汇总所有页面共用的站点信息，每个请求只查询一次
func (a *API) siteData(c *gin.Context) gin.H {
	if cached, exists := c.Get(siteContextKey); exists {
		if site, ok := cached.(gin.H); ok {
			return site
		}
	}

	site := gin.H{"name": "Portfolio"}
	if info, err := a.profiles.GetPersonalInfo(); err == nil {
		site["name"] = info.Name
		site["favicon_url"] = a.mediaURL(c, info.Favicon)
	}

	if links, err := a.profiles.ListSocialLinks(false); err == nil {
		items := make([]gin.H, 0, len(links))
		for _, link := range links {
			items = append(items, socialLinkPayload(link))
		}
		site["social_links"] = items
	} else {
		c.Error(err)
	}

	_, err := a.cvs.Active()
	site["has_cv"] = err == nil

	c.Set(siteContextKey, site)
	return site
}

func (a *API) renderHTML(c *gin.Context, status int, name string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}
	if _, exists := payload["site"]; !exists {
		payload["site"] = a.siteData(c)
	}
	c.HTML(status, name, payload)
}

func (a *API) renderError(c *gin.Context, status int, message string) {
	a.renderHTML(c, status, "error.html", gin.H{
		"title":   http.StatusText(status),
		"status":  status,
		"message": message,
	})
}
