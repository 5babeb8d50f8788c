package handler

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/folio/internal/db"
	"github.com/folio/internal/service"
)

func newAdminEnv(t *testing.T) handlerEnv {
	t.Helper()
	env := newHandlerEnv(t, Options{})
	env.withSession()

	api := env.engine.Group("/admin/api", APIAuthRequired())
	api.GET("/personal-info", env.api.AdminGetPersonalInfo)
	api.POST("/personal-info", env.api.AdminCreatePersonalInfo)
	api.PUT("/personal-info", env.api.AdminSavePersonalInfo)
	api.GET("/social-links", env.api.AdminListSocialLinks)
	api.GET("/social-links/platforms", env.api.AdminSocialPlatforms)
	api.POST("/social-links", env.api.AdminCreateSocialLink)
	api.POST("/social-links/reorder", env.api.AdminReorderSocialLinks)
	api.PUT("/skill-categories/:id", env.api.AdminUpdateSkillCategory)
	api.POST("/skill-categories", env.api.AdminCreateSkillCategory)
	api.GET("/projects", env.api.AdminListProjects)
	api.POST("/projects", env.api.AdminCreateProject)
	api.DELETE("/projects/:id", env.api.AdminDeleteProject)
	api.POST("/education", env.api.AdminCreateEducation)
	api.POST("/certifications", env.api.AdminCreateCertification)
	api.POST("/cvs", env.api.AdminCreateCV)
	api.POST("/cvs/:id/activate", env.api.AdminActivateCV)
	api.GET("/messages", env.api.AdminListMessages)
	api.PATCH("/messages/:id", env.api.AdminMarkMessage)
	api.POST("/uploads", env.api.UploadMedia)
	return env
}

func TestLoginFlow(t *testing.T) {
	env := newHandlerEnv(t, Options{})
	env.engine.GET("/admin/login", env.api.ShowLoginPage)
	env.engine.POST("/admin/login", env.api.Login)
	env.engine.GET("/admin", AuthRequired(), env.api.ShowDashboard)

	if _, err := db.EnsureUser(env.db, "admin", "secret-pass"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	if rr := env.getJSON("/admin"); rr.Code != http.StatusFound {
		t.Fatalf("expected redirect without session, got %d", rr.Code)
	}

	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	bad := url.Values{"username": {"admin"}, "password": {"nope"}}
	if rr := env.request(http.MethodPost, "/admin/login", strings.NewReader(bad.Encode()), headers); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rr.Code)
	}

	good := url.Values{"username": {"admin"}, "password": {"secret-pass"}}
	rr := env.request(http.MethodPost, "/admin/login", strings.NewReader(good.Encode()), headers)
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin" {
		t.Fatalf("expected redirect to dashboard, got %d", rr.Code)
	}

	cookie := strings.SplitN(rr.Header().Get("Set-Cookie"), ";", 2)[0]
	dash := env.request(http.MethodGet, "/admin", nil, map[string]string{"Cookie": cookie})
	if dash.Code != http.StatusOK || !strings.Contains(dash.Body.String(), "/admin/api/personal-info") {
		t.Fatalf("expected dashboard with endpoint list, got %d", dash.Code)
	}
}

func TestAPIAuthRequired(t *testing.T) {
	env := newHandlerEnv(t, Options{})
	env.engine.GET("/admin/api/messages", APIAuthRequired(), env.api.AdminListMessages)

	if rr := env.getJSON("/admin/api/messages"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAdminPersonalInfoSingleton(t *testing.T) {
	env := newAdminEnv(t)

	payload := map[string]string{"name": "Fares Essam", "email": "fares@example.com"}
	if rr := env.sendJSON(http.MethodPost, "/admin/api/personal-info", payload); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr := env.sendJSON(http.MethodPost, "/admin/api/personal-info", payload); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second create, got %d", rr.Code)
	}

	payload["title"] = "Engineer"
	rr := env.sendJSON(http.MethodPut, "/admin/api/personal-info", payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on save, got %d", rr.Code)
	}
	var body map[string]interface{}
	decodeJSON(t, rr, &body)
	if body["title"] != "Engineer" {
		t.Fatalf("expected updated title, got %v", body["title"])
	}

	var count int64
	env.db.Model(&db.PersonalInfo{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one personal info row, got %d", count)
	}
}

func TestAdminPersonalInfoValidation(t *testing.T) {
	env := newAdminEnv(t)

	rr := env.sendJSON(http.MethodPut, "/admin/api/personal-info", map[string]string{"email": "broken"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	decodeJSON(t, rr, &body)
	if body.Fields["name"] == "" || body.Fields["email"] == "" {
		t.Fatalf("expected name and email errors, got %v", body.Fields)
	}
}

func TestAdminSocialLinkReorder(t *testing.T) {
	env := newAdminEnv(t)

	var ids []uint
	for _, platform := range []string{"github", "linkedin", "medium"} {
		target := "https://example.com/" + platform
		rr := env.sendJSON(http.MethodPost, "/admin/api/social-links", map[string]interface{}{"platform": platform, "url": target})
		if rr.Code != http.StatusCreated {
			t.Fatalf("create %s: %d %s", platform, rr.Code, rr.Body.String())
		}
		var created struct {
			ID uint `json:"id"`
		}
		decodeJSON(t, rr, &created)
		ids = append(ids, created.ID)
	}

	rr := env.sendJSON(http.MethodPost, "/admin/api/social-links/reorder", map[string]interface{}{"ids": []uint{ids[2], ids[0], ids[1]}})
	if rr.Code != http.StatusOK {
		t.Fatalf("reorder failed: %d %s", rr.Code, rr.Body.String())
	}
	var links []map[string]interface{}
	decodeJSON(t, rr, &links)
	if links[0]["platform"] != "medium" || links[2]["platform"] != "linkedin" {
		t.Fatalf("unexpected order %v", links)
	}
}

func TestAdminSocialPlatforms(t *testing.T) {
	env := newAdminEnv(t)

	rr := env.getJSON("/admin/api/social-links/platforms")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var platforms []map[string]string
	decodeJSON(t, rr, &platforms)
	if len(platforms) != len(db.SocialPlatforms) {
		t.Fatalf("expected %d platforms, got %d", len(db.SocialPlatforms), len(platforms))
	}
	if platforms[0]["key"] != "github" || !strings.Contains(platforms[0]["icon"], "<svg") {
		t.Fatalf("unexpected first platform %v", platforms[0])
	}
}

func TestAdminSkillCategoryInlineReplace(t *testing.T) {
	env := newAdminEnv(t)

	rr := env.sendJSON(http.MethodPost, "/admin/api/skill-categories", map[string]interface{}{
		"name":   "Backend",
		"skills": []map[string]interface{}{{"name": "Go"}, {"name": "Perl"}},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category: %d %s", rr.Code, rr.Body.String())
	}
	var category struct {
		ID     uint `json:"id"`
		Skills []struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"skills"`
	}
	decodeJSON(t, rr, &category)

	rr = env.sendJSON(http.MethodPut, "/admin/api/skill-categories/"+uintString(category.ID), map[string]interface{}{
		"name": "Backend",
		"skills": []map[string]interface{}{
			{"id": category.Skills[0].ID, "name": "Go", "proficiency": 95},
			{"name": "PostgreSQL"},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update category: %d %s", rr.Code, rr.Body.String())
	}

	var names []string
	env.db.Model(&db.Skill{}).Order("sort_order").Pluck("name", &names)
	if strings.Join(names, ",") != "Go,PostgreSQL" {
		t.Fatalf("expected Perl to be replaced, got %v", names)
	}
}

func TestAdminProjectsIncludeInactive(t *testing.T) {
	env := newAdminEnv(t)

	rr := env.sendJSON(http.MethodPost, "/admin/api/projects", map[string]interface{}{"title": "Draft Thing", "is_active": false})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create project: %d %s", rr.Code, rr.Body.String())
	}
	if rr := env.sendJSON(http.MethodPost, "/admin/api/projects", map[string]interface{}{"title": "Other", "slug": "draft-thing"}); rr.Code != http.StatusConflict {
		t.Fatalf("expected slug conflict, got %d", rr.Code)
	}

	var projects []map[string]interface{}
	decodeJSON(t, env.getJSON("/admin/api/projects"), &projects)
	if len(projects) != 1 || projects[0]["slug"] != "draft-thing" {
		t.Fatalf("expected inactive project in admin list, got %v", projects)
	}

	if rr := env.request(http.MethodDelete, "/admin/api/projects/abc", nil, nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rr.Code)
	}
	if rr := env.request(http.MethodDelete, "/admin/api/projects/999", nil, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rr.Code)
	}
}

func TestAdminDatesValidated(t *testing.T) {
	env := newAdminEnv(t)

	rr := env.sendJSON(http.MethodPost, "/admin/api/education", map[string]interface{}{
		"institution": "Cairo University",
		"degree":      "BSc",
		"start_date":  "September 2018",
	})
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "start_date") {
		t.Fatalf("expected start_date error, got %d %s", rr.Code, rr.Body.String())
	}

	rr = env.sendJSON(http.MethodPost, "/admin/api/certifications", map[string]interface{}{
		"name":        "CKA",
		"issuer":      "CNCF",
		"issue_date":  "2023-05-01",
		"expiry_date": "2026-05-01",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create certification: %d %s", rr.Code, rr.Body.String())
	}
	var cert map[string]interface{}
	decodeJSON(t, rr, &cert)
	if cert["expiry_date"] != "2026-05-01" {
		t.Fatalf("unexpected expiry %v", cert["expiry_date"])
	}
}

func TestAdminCVActivation(t *testing.T) {
	env := newAdminEnv(t)

	var ids []uint
	for _, file := range []string{"cv/a.pdf", "cv/b.pdf"} {
		rr := env.sendJSON(http.MethodPost, "/admin/api/cvs", map[string]interface{}{"file": file, "is_active": true})
		if rr.Code != http.StatusCreated {
			t.Fatalf("create cv: %d %s", rr.Code, rr.Body.String())
		}
		var created struct {
			ID uint `json:"id"`
		}
		decodeJSON(t, rr, &created)
		ids = append(ids, created.ID)
	}

	if rr := env.request(http.MethodPost, "/admin/api/cvs/"+uintString(ids[0])+"/activate", nil, nil); rr.Code != http.StatusOK {
		t.Fatalf("activate: %d %s", rr.Code, rr.Body.String())
	}

	var active []db.CV
	env.db.Where("is_active = ?", true).Find(&active)
	if len(active) != 1 || active[0].ID != ids[0] {
		t.Fatalf("expected only first cv active, got %+v", active)
	}
}

func TestAdminMessages(t *testing.T) {
	env := newAdminEnv(t)

	message, err := env.api.contacts.Submit(service.ContactInput{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var list struct {
		Unread   int64                    `json:"unread"`
		Messages []map[string]interface{} `json:"messages"`
	}
	decodeJSON(t, env.getJSON("/admin/api/messages?unread=true"), &list)
	if list.Unread != 1 || len(list.Messages) != 1 {
		t.Fatalf("unexpected unread list %+v", list)
	}

	if rr := env.sendJSON(http.MethodPatch, "/admin/api/messages/"+uintString(message.ID), map[string]interface{}{}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without is_read, got %d", rr.Code)
	}
	rr := env.sendJSON(http.MethodPatch, "/admin/api/messages/"+uintString(message.ID), map[string]interface{}{"is_read": true, "subject": "changed"})
	if rr.Code != http.StatusOK {
		t.Fatalf("mark read: %d %s", rr.Code, rr.Body.String())
	}

	var stored db.ContactMessage
	env.db.First(&stored, message.ID)
	if !stored.IsRead || stored.Subject != "Hi" {
		t.Fatalf("expected only is_read to change, got %+v", stored)
	}
}

func TestUploadMedia(t *testing.T) {
	env := newAdminEnv(t)

	var img bytes.Buffer
	canvas := image.NewRGBA(image.Rect(0, 0, 2, 2))
	canvas.Set(0, 0, color.RGBA{R: 255, A: 255})
	if err := png.Encode(&img, canvas); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	body, contentType := multipartFile(t, "shot.png", img.Bytes())
	rr := env.request(http.MethodPost, "/admin/api/uploads?folder=projects", body, map[string]string{"Content-Type": contentType})
	if rr.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", rr.Code, rr.Body.String())
	}
	var result map[string]interface{}
	decodeJSON(t, rr, &result)
	key, _ := result["key"].(string)
	if !strings.HasPrefix(key, "projects/") || !strings.HasSuffix(key, ".png") {
		t.Fatalf("unexpected key %q", key)
	}
	if result["url"] != "http://example.com/media/"+key {
		t.Fatalf("unexpected url %v", result["url"])
	}

	body, contentType = multipartFile(t, "fake.png", []byte("not an image"))
	if rr := env.request(http.MethodPost, "/admin/api/uploads?folder=projects", body, map[string]string{"Content-Type": contentType}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for fake image, got %d", rr.Code)
	}

	body, contentType = multipartFile(t, "shot.png", img.Bytes())
	if rr := env.request(http.MethodPost, "/admin/api/uploads?folder=secrets", body, map[string]string{"Content-Type": contentType}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown folder, got %d", rr.Code)
	}
}

func multipartFile(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
