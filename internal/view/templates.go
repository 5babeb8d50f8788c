package view

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// FuncMap 返回模板中可用的辅助函数。
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"socialIcon": SocialIconSVG,
		"monthYear":  MonthYear,
		"year": func() int {
			return time.Now().Year()
		},
	}
}

// Templates 解析内嵌的页面模板。
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

// MonthYear 把 2006-01-02 格式的日期转换为 "Jan 2006"，无法解析时原样返回。
func MonthYear(value interface{}) string {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case *string:
		if v == nil {
			return ""
		}
		raw = *v
	case nil:
		return ""
	default:
		return ""
	}

	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return raw
	}
	return parsed.Format("Jan 2006")
}

// StaticFS 返回内嵌的静态资源（样式表等）。
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
