package handler

import (
	"fmt"
	htmlstd "html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	demoLinePattern = regexp.MustCompile(`^\s*<?(https?://[^\s>]+)>?\s*$`)
	demoSrcPattern  = regexp.MustCompile(`^https://(?:www\.youtube-nocookie\.com/embed/|player\.vimeo\.com/video/)`)
	demoTimePattern = regexp.MustCompile(`(?i)(\d+)(h|m|s)`)
)

// buildContentSanitizer 在 UGC 策略的基础上放行演示视频的 iframe
func buildContentSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("iframe")
	policy.AllowAttrs("class", "data-demo-platform").OnElements("div")
	policy.AllowAttrs("src").Matching(demoSrcPattern).OnElements("iframe")
	policy.AllowAttrs("title", "allow", "allowfullscreen", "frameborder", "loading", "referrerpolicy").OnElements("iframe")
	return policy
}

type demoVideo struct {
	Platform string
	EmbedURL string
}

// embedDemoVideos 把单独成行的 YouTube/Vimeo 链接替换为播放器，代码块内的内容保持原样
func embedDemoVideos(markdown string) string {
	if !strings.Contains(markdown, "http") {
		return markdown
	}

	lines := strings.Split(markdown, "\n")
	fence := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(trimmed, fence):
				fence = ""
			}
			continue
		}
		if fence != "" || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			continue
		}

		match := demoLinePattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		if video, ok := parseDemoVideo(match[1]); ok {
			lines[i] = video.html()
		}
	}
	return strings.Join(lines, "\n")
}

func fenceMarker(line string) string {
	for _, marker := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, marker) {
			return marker
		}
	}
	return ""
}

func parseDemoVideo(raw string) (demoVideo, bool) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return demoVideo{}, false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := strings.Trim(u.Path, "/")

	switch host {
	case "youtu.be", "youtube.com", "m.youtube.com":
		id := ""
		switch {
		case host == "youtu.be":
			id = path
		case path == "watch":
			id = u.Query().Get("v")
		default:
			for _, prefix := range []string{"shorts/", "embed/", "live/"} {
				if strings.HasPrefix(path, prefix) {
					id = strings.TrimPrefix(path, prefix)
				}
			}
		}
		id, _, _ = strings.Cut(id, "/")
		if !validVideoID(id) {
			return demoVideo{}, false
		}
		embed := "https://www.youtube-nocookie.com/embed/" + id + "?rel=0"
		if start := youtubeStart(u.Query()); start > 0 {
			embed += "&start=" + strconv.Itoa(start)
		}
		return demoVideo{Platform: "youtube", EmbedURL: embed}, true
	case "vimeo.com", "player.vimeo.com":
		segments := strings.Split(path, "/")
		id := segments[len(segments)-1]
		if _, err := strconv.ParseUint(id, 10, 64); err != nil {
			return demoVideo{}, false
		}
		return demoVideo{Platform: "vimeo", EmbedURL: "https://player.vimeo.com/video/" + id}, true
	}
	return demoVideo{}, false
}

func validVideoID(id string) bool {
	if id == "" || len(id) > 32 {
		return false
	}
	for _, r := range id {
		if !(r == '-' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// youtubeStart 解析 t=90 或 t=1m30s 形式的起播时间（秒）
func youtubeStart(query url.Values) int {
	value := query.Get("start")
	if value == "" {
		value = query.Get("t")
	}
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return max(seconds, 0)
	}

	total := 0
	for _, match := range demoTimePattern.FindAllStringSubmatch(value, -1) {
		n, _ := strconv.Atoi(match[1])
		switch strings.ToLower(match[2]) {
		case "h":
			total += n * 3600
		case "m":
			total += n * 60
		case "s":
			total += n
		}
	}
	return total
}

func (v demoVideo) html() string {
	return fmt.Sprintf(
		`<div class="demo-video" data-demo-platform="%s"><iframe src="%s" title="Project demo" loading="lazy" allow="encrypted-media; picture-in-picture; fullscreen" allowfullscreen frameborder="0" referrerpolicy="strict-origin-when-cross-origin"></iframe></div>`,
		htmlstd.EscapeString(v.Platform),
		htmlstd.EscapeString(v.EmbedURL),
	)
}
