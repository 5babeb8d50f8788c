package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/folio/internal/db"
	"github.com/folio/internal/middleware"
	"github.com/folio/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	store  *storage.LocalStore
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	engine, err := SetupRouter(gdb, store, Options{
		SessionSecret:  "test-secret",
		MediaURLPath:   "/media",
		CORSOrigins:    []string{"*"},
		ContactLimiter: limiter,
	})
	if err != nil {
		t.Fatalf("SetupRouter returned error: %v", err)
	}
	return testServer{engine: engine, db: gdb, store: store}
}

func (s testServer) do(method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rr := httptest.NewRecorder()
	s.engine.ServeHTTP(rr, req)
	return rr
}

func (s testServer) login(t *testing.T) string {
	t.Helper()
	if _, err := db.EnsureUser(s.db, "admin", "secret-pass"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	form := url.Values{"username": {"admin"}, "password": {"secret-pass"}}
	rr := s.do(http.MethodPost, "/admin/login", form.Encode(), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
	if rr.Code != http.StatusFound {
		t.Fatalf("expected redirect after login, got %d: %s", rr.Code, rr.Body.String())
	}
	cookie := rr.Header().Get("Set-Cookie")
	if cookie == "" {
		t.Fatal("expected session cookie")
	}
	return strings.SplitN(cookie, ";", 2)[0]
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	if rr := s.do(http.MethodGet, "/ping", "", nil); rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "pong") {
		t.Fatalf("unexpected ping response %d %s", rr.Code, rr.Body.String())
	}

	rr := s.do(http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected healthy database, got %d", rr.Code)
	}
	if rr.Header().Get(middleware.CorrelationIDHeader) == "" {
		t.Fatal("expected correlation id header")
	}
}

func TestAPIOverviewUsesForwardedHost(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(http.MethodGet, "/api", "", map[string]string{
		"X-Forwarded-Proto": "https",
		"X-Forwarded-Host":  "folio.example.com, internal",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body struct {
		Message   string            `json:"message"`
		Endpoints map[string]string `json:"endpoints"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode overview: %v", err)
	}
	if body.Endpoints["projects"] != "https://folio.example.com/api/projects" {
		t.Fatalf("unexpected projects endpoint %q", body.Endpoints["projects"])
	}
}

func TestUnknownRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(http.MethodGet, "/api/nothing", "", nil)
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("expected JSON 404 for api path, got %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}

	rr = s.do(http.MethodGet, "/nothing", "", nil)
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), "Page not found") {
		t.Fatalf("expected HTML 404 page, got %d", rr.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(http.MethodOptions, "/api/contact", "", map[string]string{
		"Origin":                        "https://elsewhere.dev",
		"Access-Control-Request-Method": "POST",
	})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard origin, got %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestAdminAPIRequiresSession(t *testing.T) {
	s := newTestServer(t, nil)

	if rr := s.do(http.MethodGet, "/admin/api/messages", "", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rr.Code)
	}
	if rr := s.do(http.MethodGet, "/admin", "", nil); rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/login" {
		t.Fatalf("expected redirect to login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	cookie := s.login(t)
	rr := s.do(http.MethodPost, "/admin/api/projects", `{"title":"Folio Site","technologies":"Go, Gin"}`, map[string]string{
		"Cookie":       cookie,
		"Content-Type": "application/json",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected project created, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = s.do(http.MethodGet, "/api/projects/folio-site", "", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"tech_list":["Go","Gin"]`) {
		t.Fatalf("expected public project by derived slug, got %d %s", rr.Code, rr.Body.String())
	}

	rr = s.do(http.MethodGet, "/admin", "", map[string]string{"Cookie": cookie})
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "admin") {
		t.Fatalf("expected dashboard, got %d", rr.Code)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newTestServer(t, nil)
	if _, err := db.EnsureUser(s.db, "admin", "secret-pass"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	form := url.Values{"username": {"admin"}, "password": {"wrong"}}
	rr := s.do(http.MethodPost, "/admin/login", form.Encode(), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
	if rr.Code != http.StatusUnauthorized || !strings.Contains(rr.Body.String(), "Invalid username or password") {
		t.Fatalf("expected 401 login page, got %d", rr.Code)
	}
}

func TestContactRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(0.001, 1)
	t.Cleanup(limiter.Stop)
	s := newTestServer(t, limiter)

	body := `{"name":"Ada","email":"ada@example.com","subject":"Hello","message":"Nice site"}`
	headers := map[string]string{"Content-Type": "application/json"}

	if rr := s.do(http.MethodPost, "/api/contact", body, headers); rr.Code != http.StatusCreated {
		t.Fatalf("expected first message accepted, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr := s.do(http.MethodPost, "/api/contact", body, headers); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second message limited, got %d", rr.Code)
	}

	var count int64
	s.db.Model(&db.ContactMessage{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one stored message, got %d", count)
	}
}

func TestMediaServedFromStore(t *testing.T) {
	s := newTestServer(t, nil)

	key := "projects/20250101-sample.png"
	if err := s.store.Save(context.Background(), key, strings.NewReader("png-bytes"), 9, "image/png"); err != nil {
		t.Fatalf("save media: %v", err)
	}

	rr := s.do(http.MethodGet, "/media/"+key, "", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "png-bytes" {
		t.Fatalf("unexpected media response %d %q", rr.Code, rr.Body.String())
	}
	if rr := s.do(http.MethodGet, "/media/projects/missing.png", "", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing media, got %d", rr.Code)
	}
}
