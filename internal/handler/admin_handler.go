package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/folio/internal/db"
	"github.com/folio/internal/logger"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	sessionUserID   = "user_id"
	sessionUsername = "username"
	recentMessages  = 5
)

// adminEndpoints 在后台面板列出可用的 JSON 编辑接口
var adminEndpoints = []string{
	"GET|POST|PUT /admin/api/personal-info",
	"GET|POST /admin/api/social-links",
	"PUT|DELETE /admin/api/social-links/:id",
	"POST /admin/api/social-links/reorder",
	"GET /admin/api/social-links/platforms",
	"GET|POST /admin/api/skill-categories",
	"PUT|DELETE /admin/api/skill-categories/:id",
	"GET|POST /admin/api/skills",
	"PUT|DELETE /admin/api/skills/:id",
	"GET|POST /admin/api/projects",
	"GET|PUT|DELETE /admin/api/projects/:id",
	"GET|POST /admin/api/education",
	"PUT|DELETE /admin/api/education/:id",
	"GET|POST /admin/api/certifications",
	"PUT|DELETE /admin/api/certifications/:id",
	"GET|POST /admin/api/cvs",
	"PUT|DELETE /admin/api/cvs/:id",
	"POST /admin/api/cvs/:id/activate",
	"GET /admin/api/messages",
	"GET|PATCH /admin/api/messages/:id",
	"POST /admin/api/uploads?folder=",
}

// ShowLoginPage 渲染登录页面，已登录时直接进入面板
func (a *API) ShowLoginPage(c *gin.Context) {
	if sessions.Default(c).Get(sessionUserID) != nil {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.HTML(http.StatusOK, "admin_login.html", gin.H{})
}

// Login 校验用户名与密码并写入会话
func (a *API) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	var user db.User
	err := a.db.Where("username = ?", username).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.Error(err)
		c.HTML(http.StatusInternalServerError, "admin_login.html", gin.H{"error": "Login is temporarily unavailable."})
		return
	}
	if err != nil || !user.CheckPassword(password) {
		reqLog := logger.FromContext(c)
		reqLog.Warn().Str("username", username).Msg("admin login rejected")
		c.HTML(http.StatusUnauthorized, "admin_login.html", gin.H{"error": "Invalid username or password."})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserID, user.ID)
	session.Set(sessionUsername, user.Username)
	if err := session.Save(); err != nil {
		c.Error(err)
		c.HTML(http.StatusInternalServerError, "admin_login.html", gin.H{"error": "Could not save the session."})
		return
	}

	c.Redirect(http.StatusFound, "/admin")
}

// Logout 清空会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.Error(err)
	}
	c.Redirect(http.StatusFound, "/admin/login")
}

// ShowDashboard 渲染后台主面板：记录数量与最新留言
func (a *API) ShowDashboard(c *gin.Context) {
	stats, err := a.dashboard.Stats()
	if err != nil {
		c.Error(err)
	}

	messages, err := a.contacts.List(false)
	if err != nil {
		c.Error(err)
	}
	if len(messages) > recentMessages {
		messages = messages[:recentMessages]
	}
	items := make([]gin.H, 0, len(messages))
	for _, message := range messages {
		item := contactMessagePayload(message)
		item["created_at"] = message.CreatedAt.Format("2006-01-02 15:04")
		items = append(items, item)
	}

	c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
		"username":  sessions.Default(c).Get(sessionUsername),
		"stats":     stats,
		"messages":  items,
		"endpoints": adminEndpoints,
	})
}

// AuthRequired 保护后台页面，未登录时跳转到登录页
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions.Default(c).Get(sessionUserID) == nil {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// APIAuthRequired 保护后台 JSON 接口，未登录时返回 401
func APIAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions.Default(c).Get(sessionUserID) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}
		c.Next()
	}
}
