package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/folio/internal/handler"
	"github.com/folio/internal/logger"
	"github.com/folio/internal/middleware"
	"github.com/folio/internal/storage"
	"github.com/folio/internal/view"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const sessionName = "folio_session"

// Options 描述构建路由所需的运行参数
type Options struct {
	SessionSecret  string
	MediaURLPath   string
	CVDownloadName string
	CORSOrigins    []string
	TrustedProxies []string
	Scanner        storage.Scanner
	ContactLimiter *middleware.RateLimiter
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, store storage.Store, opts Options) (*gin.Engine, error) {
	r := gin.New()

	// 未配置时不信任任何代理，ClientIP 取连接地址
	var proxies []string
	if len(opts.TrustedProxies) > 0 {
		proxies = opts.TrustedProxies
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	r.Use(
		middleware.CorrelationID(),
		logger.GinLogger(),
		logger.GinRecovery(),
		middleware.Metrics(),
	)

	// 配置会话中间件
	secret := opts.SessionSecret
	if secret == "" {
		secret = "folio-dev-secret"
	}
	cookieStore := cookie.NewStore([]byte(secret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, cookieStore))

	// 模板与静态资源都嵌入在二进制中
	templates, err := view.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(templates)
	r.StaticFS("/static", view.StaticFS())

	api := handler.NewAPI(gdb, store, handler.Options{
		MediaURLPath:   opts.MediaURLPath,
		CVDownloadName: opts.CVDownloadName,
		Scanner:        opts.Scanner,
		ContactLimiter: opts.ContactLimiter,
	})

	r.GET("/ping", handler.Ping)
	r.GET("/healthz", api.HealthCheck)
	r.GET("/metrics", middleware.MetricsHandler())

	// 公开页面
	r.GET("/", api.ShowHome)
	r.GET("/about", api.ShowAbout)
	r.GET("/projects", api.ShowProjects)
	r.GET("/projects/:slug", api.ShowProject)
	r.GET("/contact", api.ShowContactPage)
	r.POST("/contact", api.SubmitContactForm)
	r.GET("/cv/download", api.DownloadCV)
	r.GET(strings.TrimSuffix(api.MediaPath(), "/")+"/*key", api.ServeMedia)

	// 只读 JSON 接口
	public := r.Group("/api")
	public.Use(middleware.CORS(opts.CORSOrigins))
	{
		public.GET("", api.APIOverview)
		public.GET("/personal-info", api.GetPersonalInfo)
		public.GET("/social-links", api.ListSocialLinks)
		public.GET("/skill-categories", api.ListSkillCategories)
		public.GET("/skills", api.ListSkills)
		public.GET("/skills/featured", api.ListFeaturedSkills)
		public.GET("/projects", api.ListProjects)
		public.GET("/projects/:slug", api.GetProject)
		public.GET("/education", api.ListEducation)
		public.GET("/certifications", api.ListCertifications)
		public.GET("/cv", api.GetActiveCV)
		public.GET("/cv/download", api.DownloadCV)
		public.POST("/contact", opts.ContactLimiter.Middleware(), api.SubmitContact)
		public.OPTIONS("/*any", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台页面
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("", api.ShowDashboard)
			auth.GET("/dashboard", api.ShowDashboard)
		}

		// 后台 JSON 接口，未登录返回 401
		adminAPI := admin.Group("/api")
		adminAPI.Use(handler.APIAuthRequired())
		{
			adminAPI.GET("/personal-info", api.AdminGetPersonalInfo)
			adminAPI.POST("/personal-info", api.AdminCreatePersonalInfo)
			adminAPI.PUT("/personal-info", api.AdminSavePersonalInfo)

			adminAPI.GET("/social-links", api.AdminListSocialLinks)
			adminAPI.GET("/social-links/platforms", api.AdminSocialPlatforms)
			adminAPI.POST("/social-links", api.AdminCreateSocialLink)
			adminAPI.POST("/social-links/reorder", api.AdminReorderSocialLinks)
			adminAPI.PUT("/social-links/:id", api.AdminUpdateSocialLink)
			adminAPI.DELETE("/social-links/:id", api.AdminDeleteSocialLink)

			adminAPI.GET("/skill-categories", api.ListSkillCategories)
			adminAPI.POST("/skill-categories", api.AdminCreateSkillCategory)
			adminAPI.PUT("/skill-categories/:id", api.AdminUpdateSkillCategory)
			adminAPI.DELETE("/skill-categories/:id", api.AdminDeleteSkillCategory)

			adminAPI.GET("/skills", api.ListSkills)
			adminAPI.POST("/skills", api.AdminCreateSkill)
			adminAPI.PUT("/skills/:id", api.AdminUpdateSkill)
			adminAPI.DELETE("/skills/:id", api.AdminDeleteSkill)

			adminAPI.GET("/projects", api.AdminListProjects)
			adminAPI.POST("/projects", api.AdminCreateProject)
			adminAPI.GET("/projects/:id", api.AdminGetProject)
			adminAPI.PUT("/projects/:id", api.AdminUpdateProject)
			adminAPI.DELETE("/projects/:id", api.AdminDeleteProject)

			adminAPI.GET("/education", api.ListEducation)
			adminAPI.POST("/education", api.AdminCreateEducation)
			adminAPI.PUT("/education/:id", api.AdminUpdateEducation)
			adminAPI.DELETE("/education/:id", api.AdminDeleteEducation)

			adminAPI.GET("/certifications", api.ListCertifications)
			adminAPI.POST("/certifications", api.AdminCreateCertification)
			adminAPI.PUT("/certifications/:id", api.AdminUpdateCertification)
			adminAPI.DELETE("/certifications/:id", api.AdminDeleteCertification)

			adminAPI.GET("/cvs", api.AdminListCVs)
			adminAPI.POST("/cvs", api.AdminCreateCV)
			adminAPI.PUT("/cvs/:id", api.AdminUpdateCV)
			adminAPI.DELETE("/cvs/:id", api.AdminDeleteCV)
			adminAPI.POST("/cvs/:id/activate", api.AdminActivateCV)

			adminAPI.GET("/messages", api.AdminListMessages)
			adminAPI.GET("/messages/:id", api.AdminGetMessage)
			adminAPI.PATCH("/messages/:id", api.AdminMarkMessage)

			adminAPI.POST("/uploads", api.UploadMedia)
		}
	}

	r.NoRoute(api.NotFound)

	return r, nil
}
