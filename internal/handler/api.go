package handler

import (
	"github.com/folio/internal/middleware"
	"github.com/folio/internal/service"
	"github.com/folio/internal/storage"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db             *gorm.DB
	profiles       *service.ProfileService
	skills         *service.SkillService
	projects       *service.ProjectService
	education      *service.EducationService
	certifications *service.CertificationService
	cvs            *service.CVService
	contacts       *service.ContactService
	media          *service.MediaService
	dashboard      *service.DashboardService
	contactLimiter *middleware.RateLimiter
	mediaPath      string
	cvDownloadName string
}

// Options 配置 handler 的可选行为。
type Options struct {
	MediaURLPath   string
	CVDownloadName string
	Scanner        storage.Scanner
	ContactLimiter *middleware.RateLimiter
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, store storage.Store, opts Options) *API {
	mediaPath := opts.MediaURLPath
	if mediaPath == "" {
		mediaPath = "/media"
	}

	return &API{
		db:             db,
		profiles:       service.NewProfileService(db),
		skills:         service.NewSkillService(db),
		projects:       service.NewProjectService(db),
		education:      service.NewEducationService(db),
		certifications: service.NewCertificationService(db),
		cvs:            service.NewCVService(db),
		contacts:       service.NewContactService(db),
		media:          service.NewMediaService(store, opts.Scanner),
		dashboard:      service.NewDashboardService(db),
		contactLimiter: opts.ContactLimiter,
		mediaPath:      mediaPath,
		cvDownloadName: opts.CVDownloadName,
	}
}

// MediaPath returns the route prefix media files are served under.
func (a *API) MediaPath() string {
	return a.mediaPath
}
