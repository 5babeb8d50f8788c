package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/folio/internal/db"
	"github.com/folio/internal/storage"
	"github.com/folio/internal/view"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type handlerEnv struct {
	api    *API
	db     *gorm.DB
	store  *storage.LocalStore
	engine *gin.Engine
}

func newHandlerEnv(t *testing.T, opts Options) handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	api := NewAPI(gdb, store, opts)

	engine := gin.New()
	engine.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	templates, err := view.Templates()
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}
	engine.SetHTMLTemplate(templates)

	return handlerEnv{api: api, db: gdb, store: store, engine: engine}
}

// withSession 在请求前写入已登录的会话
func (e handlerEnv) withSession() {
	e.engine.Use(func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(sessionUserID, uint(1))
		session.Set(sessionUsername, "admin")
		c.Next()
	})
}

func (e handlerEnv) request(method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rr := httptest.NewRecorder()
	e.engine.ServeHTTP(rr, req)
	return rr
}

func (e handlerEnv) getJSON(target string) *httptest.ResponseRecorder {
	return e.request(http.MethodGet, target, nil, nil)
}

func (e handlerEnv) sendJSON(method, target string, payload interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(payload)
	return e.request(method, target, bytes.NewReader(data), map[string]string{"Content-Type": "application/json"})
}

func (e handlerEnv) saveMedia(t *testing.T, key, content string) {
	t.Helper()
	if err := e.store.Save(context.Background(), key, strings.NewReader(content), int64(len(content)), ""); err != nil {
		t.Fatalf("save media %s: %v", key, err)
	}
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func boolPtr(v bool) *bool {
	return &v
}
