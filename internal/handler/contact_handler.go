package handler

import (
	"errors"
	"net/http"

	"github.com/folio/internal/middleware"
	"github.com/folio/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const contactThanks = "Thank you for your message! I will get back to you soon."

type contactRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

func (r contactRequest) toInput() service.ContactInput {
	return service.ContactInput{
		Name:    r.Name,
		Email:   r.Email,
		Subject: r.Subject,
		Message: r.Message,
	}
}

// SubmitContact 接收公开 API 的联系表单（JSON 或表单编码）
func (a *API) SubmitContact(c *gin.Context) {
	var payload contactRequest
	if err := c.ShouldBind(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	message, err := a.contacts.Submit(payload.toInput())
	if err != nil {
		recordContactResult(err)
		respondServiceError(c, err, "")
		return
	}
	recordContactResult(nil)

	c.JSON(http.StatusCreated, gin.H{
		"message": contactThanks,
		"data":    contactAckPayload(*message),
	})
}

// ShowContactPage 渲染联系页面
func (a *API) ShowContactPage(c *gin.Context) {
	session := sessions.Default(c)
	flashes := session.Flashes()
	if len(flashes) > 0 {
		session.Save()
	}

	var flash interface{}
	if len(flashes) > 0 {
		flash = flashes[0]
	}

	data := gin.H{
		"title":  "Contact",
		"flash":  flash,
		"form":   gin.H{},
		"errors": gin.H{},
	}
	if info, err := a.profiles.GetPersonalInfo(); err == nil {
		data["info"] = a.personalInfoPayload(c, *info)
	}
	a.renderHTML(c, http.StatusOK, "contact.html", data)
}

// SubmitContactForm 处理页面表单提交，成功后重定向回联系页
func (a *API) SubmitContactForm(c *gin.Context) {
	if !a.contactLimiter.Allow(c.ClientIP()) {
		a.renderHTML(c, http.StatusTooManyRequests, "contact.html", gin.H{
			"title":  "Contact",
			"error":  "Too many messages, please try again later.",
			"form":   gin.H{},
			"errors": gin.H{},
		})
		return
	}

	var payload contactRequest
	if err := c.ShouldBind(&payload); err != nil {
		middleware.ContactSubmissions.WithLabelValues("rejected").Inc()
		a.renderHTML(c, http.StatusBadRequest, "contact.html", gin.H{
			"title":  "Contact",
			"error":  "Your message could not be read, please try again.",
			"form":   gin.H{},
			"errors": gin.H{},
		})
		return
	}

	_, err := a.contacts.Submit(payload.toInput())
	recordContactResult(err)

	var verr *service.ValidationError
	switch {
	case err == nil:
		session := sessions.Default(c)
		session.AddFlash(contactThanks)
		if saveErr := session.Save(); saveErr != nil {
			c.Error(saveErr)
		}
		c.Redirect(http.StatusSeeOther, "/contact")
	case errors.As(err, &verr):
		a.renderHTML(c, http.StatusBadRequest, "contact.html", gin.H{
			"title": "Contact",
			"error": "Please correct the errors below.",
			"form": gin.H{
				"name":    payload.Name,
				"email":   payload.Email,
				"subject": payload.Subject,
				"message": payload.Message,
			},
			"errors": verr.Fields,
		})
	default:
		c.Error(err)
		a.renderError(c, http.StatusInternalServerError, "Something went wrong, please try again later.")
	}
}

func recordContactResult(err error) {
	var verr *service.ValidationError
	switch {
	case err == nil:
		middleware.ContactSubmissions.WithLabelValues("accepted").Inc()
	case errors.As(err, &verr):
		middleware.ContactSubmissions.WithLabelValues("rejected").Inc()
	default:
		middleware.ContactSubmissions.WithLabelValues("error").Inc()
	}
}
