package handler

import (
	"errors"
	"net/http"

	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
)

// ShowHome 渲染首页：个人简介、精选技能、精选项目与教育经历
func (a *API) ShowHome(c *gin.Context) {
	data := gin.H{"title": ""}

	if info, err := a.profiles.GetPersonalInfo(); err == nil {
		data["info"] = a.personalInfoPayload(c, *info)
	} else if !errors.Is(err, service.ErrNotFound) {
		c.Error(err)
	}

	if skills, err := a.skills.ListSkills(true); err == nil {
		items := make([]gin.H, 0, len(skills))
		for _, skill := range skills {
			items = append(items, skillPayload(skill))
		}
		data["featuredSkills"] = items
	} else {
		c.Error(err)
	}

	if projects, err := a.projects.List(service.ProjectFilter{FeaturedOnly: true}); err == nil {
		items := make([]gin.H, 0, len(projects))
		for _, project := range projects {
			items = append(items, a.projectPayload(c, project))
		}
		data["featuredProjects"] = items
	} else {
		c.Error(err)
	}

	if education, err := a.education.List(); err == nil {
		items := make([]gin.H, 0, len(education))
		for _, item := range education {
			items = append(items, a.educationPayload(c, item))
		}
		data["education"] = items
	} else {
		c.Error(err)
	}

	a.renderHTML(c, http.StatusOK, "home.html", data)
}

// ShowAbout 渲染关于页：个人介绍、技能分组、教育与证书
func (a *API) ShowAbout(c *gin.Context) {
	data := gin.H{"title": "About"}

	if info, err := a.profiles.GetPersonalInfo(); err == nil {
		data["info"] = a.personalInfoPayload(c, *info)
		source := info.AboutText
		if source == "" {
			source = info.Bio
		}
		if source != "" {
			if rendered, err := renderMarkdown(source); err == nil {
				data["aboutHTML"] = rendered
			} else {
				c.Error(err)
			}
		}
	} else if !errors.Is(err, service.ErrNotFound) {
		c.Error(err)
	}

	if categories, err := a.skills.ListCategories(); err == nil {
		items := make([]gin.H, 0, len(categories))
		for _, category := range categories {
			items = append(items, skillCategoryPayload(category))
		}
		data["categories"] = items
	} else {
		c.Error(err)
	}

	if education, err := a.education.List(); err == nil {
		items := make([]gin.H, 0, len(education))
		for _, item := range education {
			items = append(items, a.educationPayload(c, item))
		}
		data["education"] = items
	} else {
		c.Error(err)
	}

	if certifications, err := a.certifications.List(); err == nil {
		items := make([]gin.H, 0, len(certifications))
		for _, item := range certifications {
			items = append(items, a.certificationPayload(c, item))
		}
		data["certifications"] = items
	} else {
		c.Error(err)
	}

	a.renderHTML(c, http.StatusOK, "about.html", data)
}

// ShowProjects 渲染项目列表页
func (a *API) ShowProjects(c *gin.Context) {
	projects, err := a.projects.List(service.ProjectFilter{FeaturedOnly: queryBool(c, "featured")})
	if err != nil {
		c.Error(err)
		a.renderError(c, http.StatusInternalServerError, "Could not load projects.")
		return
	}

	items := make([]gin.H, 0, len(projects))
	for _, project := range projects {
		items = append(items, a.projectPayload(c, project))
	}
	a.renderHTML(c, http.StatusOK, "projects.html", gin.H{
		"title":    "Projects",
		"projects": items,
	})
}

// ShowProject 渲染项目详情页，未启用或不存在时返回 404
func (a *API) ShowProject(c *gin.Context) {
	project, err := a.projects.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			a.renderError(c, http.StatusNotFound, "Project not found")
			return
		}
		c.Error(err)
		a.renderError(c, http.StatusInternalServerError, "Could not load project.")
		return
	}

	data := gin.H{
		"title":   project.Title,
		"project": a.projectPayload(c, *project),
	}
	if project.Description != "" {
		if rendered, err := renderMarkdown(project.Description); err == nil {
			data["descriptionHTML"] = rendered
		} else {
			c.Error(err)
		}
	}
	a.renderHTML(c, http.StatusOK, "project.html", data)
}

// NotFound 为未知路径返回 404；/api 与 /admin/api 下返回 JSON
func (a *API) NotFound(c *gin.Context) {
	if isJSONPath(c.Request.URL.Path) {
		respondError(c, http.StatusNotFound, "Not found")
		return
	}
	a.renderError(c, http.StatusNotFound, "Page not found")
}

func isJSONPath(path string) bool {
	for _, prefix := range []string{"/api/", "/admin/api/"} {
		if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
			return true
		}
	}
	return path == "/api" || path == "/admin/api"
}
