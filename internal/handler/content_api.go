package handler

import (
	"net/http"

	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
)

// APIOverview 返回欢迎信息与公开端点列表
func (a *API) APIOverview(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the portfolio API",
		"endpoints": gin.H{
			"personal_info":    absoluteURL(c, "/api/personal-info"),
			"social_links":     absoluteURL(c, "/api/social-links"),
			"skill_categories": absoluteURL(c, "/api/skill-categories"),
			"skills":           absoluteURL(c, "/api/skills"),
			"featured_skills":  absoluteURL(c, "/api/skills/featured"),
			"projects":         absoluteURL(c, "/api/projects"),
			"education":        absoluteURL(c, "/api/education"),
			"certifications":   absoluteURL(c, "/api/certifications"),
			"cv":               absoluteURL(c, "/api/cv"),
			"cv_download":      absoluteURL(c, "/api/cv/download"),
			"contact":          absoluteURL(c, "/api/contact"),
		},
	})
}

// GetPersonalInfo 返回站点主人的个人信息
func (a *API) GetPersonalInfo(c *gin.Context) {
	info, err := a.profiles.GetPersonalInfo()
	if err != nil {
		respondServiceError(c, err, "Personal information not configured")
		return
	}
	c.JSON(http.StatusOK, a.personalInfoPayload(c, *info))
}

// ListSocialLinks 返回启用的社交链接
func (a *API) ListSocialLinks(c *gin.Context) {
	links, err := a.profiles.ListSocialLinks(false)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}

	items := make([]gin.H, 0, len(links))
	for _, link := range links {
		items = append(items, socialLinkPayload(link))
	}
	c.JSON(http.StatusOK, items)
}

// ListSkillCategories 返回技能分组及其技能
func (a *API) ListSkillCategories(c *gin.Context) {
	categories, err := a.skills.ListCategories()
	if err != nil {
		respondServiceError(c, err, "")
		return
	}

	items := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		items = append(items, skillCategoryPayload(category))
	}
	c.JSON(http.StatusOK, items)
}

// ListSkills 返回平铺的技能列表
func (a *API) ListSkills(c *gin.Context) {
	a.listSkills(c, false)
}

// ListFeaturedSkills 只返回精选技能
func (a *API) ListFeaturedSkills(c *gin.Context) {
	a.listSkills(c, true)
}

func (a *API) listSkills(c *gin.Context, featuredOnly bool) {
	skills, err := a.skills.ListSkills(featuredOnly)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}

	items := make([]gin.H, 0, len(skills))
	for _, skill := range skills {
		items = append(items, skillPayload(skill))
	}
	c.JSON(http.StatusOK, items)
}

// ListProjects 返回启用的项目，?featured=true 只返回精选
func (a *API) ListProjects(c *gin.Context) {
	projects, err := a.projects.List(service.ProjectFilter{FeaturedOnly: queryBool(c, "featured")})
	if err != nil {
		respondServiceError(c, err, "")
		return
	}

	items := make([]gin.H, 0, len(projects))
	for _, project := range projects {
		items = append(items, a.projectPayload(c, project))
	}
	c.JSON(http.StatusOK, items)
}

// GetProject 按 slug 返回项目详情
func (a *API) GetProject(c *gin.Context) {
	project, err := a.projects.GetBySlug(c.Param("slug"))
	if err != nil {
		respondServiceError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusOK, a.projectPayload(c, *project))
}

// ListEducation 返回全部教育经历
func (a *API) ListEducation(c *gin.Context) {
	items, err := a.education.List()
	if err != nil {
		respondServiceError(c, err, "")
		return
	}

	payload := make([]gin.H, 0, len(items))
	for _, item := range items {
		payload = append(payload, a.educationPayload(c, item))
	}
	c.JSON(http.StatusOK, payload)
}

// ListCertifications 返回全部证书
func (a *API) ListCertifications(c *gin.Context) {
	items, err := a.certifications.List()
	if err != nil {
		respondServiceError(c, err, "")
		return
	}

	payload := make([]gin.H, 0, len(items))
	for _, item := range items {
		payload = append(payload, a.certificationPayload(c, item))
	}
	c.JSON(http.StatusOK, payload)
}

// GetActiveCV 返回当前激活简历的元数据
func (a *API) GetActiveCV(c *gin.Context) {
	cv, err := a.cvs.Active()
	if err != nil {
		respondServiceError(c, err, "No active CV found")
		return
	}
	c.JSON(http.StatusOK, a.cvPayload(c, *cv))
}
