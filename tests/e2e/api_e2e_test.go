package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/folio/internal/db"
	"github.com/folio/internal/middleware"
	"github.com/folio/internal/router"
	"github.com/folio/internal/seed"
	"github.com/folio/internal/storage"
	"github.com/gin-gonic/gin"
)

type e2eSuite struct {
	handler   http.Handler
	public    httpClient
	admin     httpClient
	baseURL   string
	adminUser string
	adminPass string
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler, withJar bool) *localClient {
	var jar http.CookieJar
	if withJar {
		if j, err := cookiejar.New(nil); err == nil {
			jar = j
		}
	}
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

func TestE2E_AllInterfaces(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("public endpoints", suite.testPublicEndpoints)
	t.Run("public pages", suite.testPublicPages)
	suite.login(t)
	t.Run("admin media and projects", suite.testAdminProjectImage)
	t.Run("cv lifecycle", suite.testCVLifecycle)
	t.Run("contact inbox", suite.testContactInbox)
	t.Run("logout", suite.testLogout)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2e-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	data, err := seed.Default()
	if err != nil {
		t.Fatalf("failed to load seed data: %v", err)
	}
	if _, err := seed.NewSeeder(gdb).Apply(data); err != nil {
		t.Fatalf("failed to seed data: %v", err)
	}

	if _, err := db.EnsureUser(gdb, "admin", "e2e-secret"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	limiter := middleware.NewRateLimiter(100, 100)
	t.Cleanup(limiter.Stop)

	engine, err := router.SetupRouter(gdb, store, router.Options{
		SessionSecret:  "test-session-secret",
		MediaURLPath:   "/media",
		CORSOrigins:    []string{"*"},
		ContactLimiter: limiter,
	})
	if err != nil {
		t.Fatalf("failed to build router: %v", err)
	}

	return &e2eSuite{
		handler:   engine,
		public:    newLocalClient(engine, false),
		admin:     newLocalClient(engine, true),
		baseURL:   "http://example.test",
		adminUser: "admin",
		adminPass: "e2e-secret",
	}
}

func (s *e2eSuite) login(t *testing.T) {
	t.Helper()
	form := url.Values{
		"username": {s.adminUser},
		"password": {s.adminPass},
	}
	resp := s.mustRequest(t, s.admin, http.MethodPost, "/admin/login", strings.NewReader(form.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login failed, status %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testPublicEndpoints(t *testing.T) {
	resp := s.mustRequest(t, s.public, http.MethodGet, "/api/personal-info", nil, nil)
	var info map[string]interface{}
	decodeJSON(t, resp, &info)
	if info["name"] != "Fares Essam" {
		t.Fatalf("unexpected personal info %v", info)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/api/social-links", nil, nil)
	var links []map[string]interface{}
	decodeJSON(t, resp, &links)
	if len(links) != 2 || links[0]["platform"] != "github" {
		t.Fatalf("unexpected social links %v", links)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/api/skills/featured", nil, nil)
	var featured []map[string]interface{}
	decodeJSON(t, resp, &featured)
	if len(featured) != 9 || featured[0]["name"] != "React" {
		t.Fatalf("unexpected featured skills %d", len(featured))
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/api/projects", nil, nil)
	var projects []map[string]interface{}
	decodeJSON(t, resp, &projects)
	if len(projects) != 3 || projects[0]["slug"] != "ecommerce-platform" {
		t.Fatalf("unexpected projects %v", projects)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/api/education", nil, nil)
	var education []map[string]interface{}
	decodeJSON(t, resp, &education)
	if len(education) != 1 || education[0]["is_current"] != true {
		t.Fatalf("unexpected education %v", education)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/api/cv", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected no active cv, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/admin/api/projects", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("admin api must require login, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testPublicPages(t *testing.T) {
	for path, want := range map[string]string{
		"/":                          "Fares Essam",
		"/about":                     "Cairo University",
		"/projects":                  "Task Management Dashboard",
		"/projects/social-media-app": "Socket.io",
		"/contact":                   "Send message",
	} {
		resp := s.mustRequest(t, s.public, http.MethodGet, path, nil, nil)
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s expected 200, got %d", path, resp.StatusCode)
		}
		if !strings.Contains(body, want) {
			t.Fatalf("%s expected to contain %q", path, want)
		}
	}

	resp := s.mustRequest(t, s.public, http.MethodGet, "/projects/unknown", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 page for unknown project, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testAdminProjectImage(t *testing.T) {
	resp := s.uploadFile(t, "projects", "cover.png", "image/png", testPNG(t))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload failed: %d %s", resp.StatusCode, readBody(t, resp))
	}
	var uploaded struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	decodeJSON(t, resp, &uploaded)
	if uploaded.URL != s.baseURL+"/media/"+uploaded.Key {
		t.Fatalf("unexpected upload url %q", uploaded.URL)
	}

	resp = s.mustRequest(t, s.admin, http.MethodGet, "/admin/api/projects", nil, nil)
	var projects []struct {
		ID           uint   `json:"id"`
		Slug         string `json:"slug"`
		Title        string `json:"title"`
		Technologies string `json:"technologies"`
	}
	decodeJSON(t, resp, &projects)

	var target uint
	for _, project := range projects {
		if project.Slug == "ecommerce-platform" {
			target = project.ID
		}
	}
	if target == 0 {
		t.Fatal("seeded project missing from admin list")
	}

	resp = s.mustRequestJSON(t, s.admin, http.MethodPut, "/admin/api/projects/"+idStr(target), map[string]interface{}{
		"title":        "E-Commerce Platform",
		"slug":         "ecommerce-platform",
		"technologies": "React, Django",
		"image":        uploaded.Key,
		"is_featured":  true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update project failed: %d %s", resp.StatusCode, readBody(t, resp))
	}
	resp.Body.Close()

	resp = s.mustRequest(t, s.public, http.MethodGet, "/api/projects/ecommerce-platform", nil, nil)
	var detail map[string]interface{}
	decodeJSON(t, resp, &detail)
	if detail["image_url"] != uploaded.URL {
		t.Fatalf("expected image url %q, got %v", uploaded.URL, detail["image_url"])
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/media/"+uploaded.Key, nil, nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("expected media to be served, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	resp.Body.Close()
}

func (s *e2eSuite) testCVLifecycle(t *testing.T) {
	pdf := []byte("%PDF-1.4\n% test resume\n")
	resp := s.uploadFile(t, "cv", "resume.pdf", "application/pdf", pdf)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("cv upload failed: %d %s", resp.StatusCode, readBody(t, resp))
	}
	var uploaded struct {
		Key string `json:"key"`
	}
	decodeJSON(t, resp, &uploaded)

	resp = s.mustRequestJSON(t, s.admin, http.MethodPost, "/admin/api/cvs", map[string]interface{}{
		"file":      uploaded.Key,
		"is_active": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create cv failed: %d %s", resp.StatusCode, readBody(t, resp))
	}
	resp.Body.Close()

	resp = s.mustRequest(t, s.public, http.MethodGet, "/cv/download", nil, nil)
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || body != string(pdf) {
		t.Fatalf("unexpected cv download %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="CV_Fares_Essam.pdf"` {
		t.Fatalf("unexpected content disposition %q", got)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/", nil, nil)
	if !strings.Contains(readBody(t, resp), "Download CV") {
		t.Fatal("expected download link once a cv is active")
	}
}

func (s *e2eSuite) testContactInbox(t *testing.T) {
	resp := s.mustRequestJSON(t, s.public, http.MethodPost, "/api/contact", map[string]interface{}{
		"name":    "Recruiter",
		"email":   "hr@example.com",
		"subject": "Opportunity",
		"message": "Would you like to chat?",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("contact failed: %d %s", resp.StatusCode, readBody(t, resp))
	}
	var ack struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &ack)

	resp = s.mustRequest(t, s.admin, http.MethodGet, "/admin/api/messages?unread=true", nil, nil)
	var inbox struct {
		Unread   int                      `json:"unread"`
		Messages []map[string]interface{} `json:"messages"`
	}
	decodeJSON(t, resp, &inbox)
	if inbox.Unread != 1 || len(inbox.Messages) != 1 {
		t.Fatalf("unexpected inbox %+v", inbox)
	}

	resp = s.mustRequestJSON(t, s.admin, http.MethodPatch, "/admin/api/messages/"+idStr(ack.Data.ID), map[string]interface{}{"is_read": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mark read failed: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = s.mustRequest(t, s.admin, http.MethodGet, "/admin", nil, nil)
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Opportunity") {
		t.Fatalf("expected message on dashboard, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testLogout(t *testing.T) {
	resp := s.mustRequest(t, s.admin, http.MethodGet, "/admin/logout", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect after logout, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.admin, http.MethodGet, "/admin/api/messages", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func (s *e2eSuite) uploadFile(t *testing.T, folder, filename, contentType string, content []byte) *http.Response {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	partHeader.Set("Content-Type", contentType)
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	headers := map[string]string{"Content-Type": writer.FormDataContentType()}
	return s.mustRequest(t, s.admin, http.MethodPost, "/admin/api/uploads?folder="+folder, body, headers)
}

func (s *e2eSuite) mustRequest(t *testing.T, client httpClient, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request %s %s: %v", method, path, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (s *e2eSuite) mustRequestJSON(t *testing.T, client httpClient, method, path string, payload map[string]interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	return s.mustRequest(t, client, method, path, bytes.NewReader(data), headers)
}

func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	body := readBody(t, resp)
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}

func idStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
