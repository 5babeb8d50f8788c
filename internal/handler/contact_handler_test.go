package handler

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/folio/internal/db"
	"github.com/folio/internal/middleware"
)

func TestSubmitContactJSON(t *testing.T) {
	env := newHandlerEnv(t, Options{})
	env.engine.POST("/api/contact", env.api.SubmitContact)

	rr := env.sendJSON(http.MethodPost, "/api/contact", map[string]string{
		"name":    "Ada",
		"email":   "ada@example.com",
		"subject": "Hello",
		"message": "<b>Nice</b> work",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	decodeJSON(t, rr, &body)
	if body.Message != contactThanks {
		t.Fatalf("unexpected acknowledgement %q", body.Message)
	}
	if body.Data["message"] != "Nice work" {
		t.Fatalf("expected sanitized message, got %v", body.Data["message"])
	}
	if _, leaked := body.Data["is_read"]; leaked {
		t.Fatal("acknowledgement must not expose is_read")
	}
}

func TestSubmitContactValidation(t *testing.T) {
	env := newHandlerEnv(t, Options{})
	env.engine.POST("/api/contact", env.api.SubmitContact)

	rr := env.sendJSON(http.MethodPost, "/api/contact", map[string]string{
		"name":    "Ada",
		"email":   "not-an-email",
		"subject": "",
		"message": "Hi",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	decodeJSON(t, rr, &body)
	if body.Fields["email"] == "" || body.Fields["subject"] == "" {
		t.Fatalf("expected email and subject errors, got %v", body.Fields)
	}

	var count int64
	env.db.Model(&db.ContactMessage{}).Count(&count)
	if count != 0 {
		t.Fatalf("invalid submissions must not be stored, got %d", count)
	}
}

func TestContactFormRedirectsWithFlash(t *testing.T) {
	env := newHandlerEnv(t, Options{})
	env.engine.GET("/contact", env.api.ShowContactPage)
	env.engine.POST("/contact", env.api.SubmitContactForm)

	form := url.Values{
		"name":    {"Ada"},
		"email":   {"ada@example.com"},
		"subject": {"Hello"},
		"message": {"Nice site"},
	}
	rr := env.request(http.MethodPost, "/contact", strings.NewReader(form.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/contact" {
		t.Fatalf("expected 303 to /contact, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	cookie := strings.SplitN(rr.Header().Get("Set-Cookie"), ";", 2)[0]
	page := env.request(http.MethodGet, "/contact", nil, map[string]string{"Cookie": cookie})
	if page.Code != http.StatusOK || !strings.Contains(page.Body.String(), "Thank you for your message!") {
		t.Fatalf("expected flash on contact page, got %d", page.Code)
	}
}

func TestContactFormRerendersErrors(t *testing.T) {
	env := newHandlerEnv(t, Options{})
	env.engine.POST("/contact", env.api.SubmitContactForm)

	form := url.Values{"name": {"Ada"}, "email": {"bad"}, "subject": {"Hi"}, "message": {"Body"}}
	rr := env.request(http.MethodPost, "/contact", strings.NewReader(form.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `value="Ada"`) {
		t.Fatal("expected submitted values to be kept")
	}
	if !strings.Contains(rr.Body.String(), "field-error") {
		t.Fatal("expected field errors in form")
	}
}

func TestContactFormRejectsUnreadableBody(t *testing.T) {
	env := newHandlerEnv(t, Options{})
	env.engine.POST("/contact", env.api.SubmitContactForm)

	rr := env.request(http.MethodPost, "/contact", strings.NewReader("--broken\r\nnot a part"), map[string]string{
		"Content-Type": "multipart/form-data; boundary=missing",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "could not be read") {
		t.Fatalf("expected generic error message, got %s", rr.Body.String())
	}

	var count int64
	env.db.Model(&db.ContactMessage{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no stored message, got %d", count)
	}
}

func TestContactFormRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(0.001, 1)
	t.Cleanup(limiter.Stop)
	env := newHandlerEnv(t, Options{ContactLimiter: limiter})
	env.engine.POST("/contact", env.api.SubmitContactForm)

	form := url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "subject": {"Hi"}, "message": {"Body"}}
	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}

	if rr := env.request(http.MethodPost, "/contact", strings.NewReader(form.Encode()), headers); rr.Code != http.StatusSeeOther {
		t.Fatalf("expected first submission accepted, got %d", rr.Code)
	}
	if rr := env.request(http.MethodPost, "/contact", strings.NewReader(form.Encode()), headers); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second submission limited, got %d", rr.Code)
	}
}
