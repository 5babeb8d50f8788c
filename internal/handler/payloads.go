package handler

import (
	"time"

	"github.com/folio/internal/db"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatOptionalDate(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func (a *API) personalInfoPayload(c *gin.Context, info db.PersonalInfo) gin.H {
	return gin.H{
		"id":                info.ID,
		"name":              info.Name,
		"title":             info.Title,
		"email":             info.Email,
		"phone":             info.Phone,
		"location":          info.Location,
		"bio":               info.Bio,
		"about_text":        info.AboutText,
		"resume_headline":   info.ResumeHeadline,
		"profile_photo":     info.ProfilePhoto,
		"profile_photo_url": a.mediaURL(c, info.ProfilePhoto),
		"favicon":           info.Favicon,
		"favicon_url":       a.mediaURL(c, info.Favicon),
		"updated_at":        info.UpdatedAt,
	}
}

func socialLinkPayload(link db.SocialLink) gin.H {
	iconKey := link.Icon
	if iconKey == "" {
		iconKey = link.Platform
	}
	return gin.H{
		"id":               link.ID,
		"platform":         link.Platform,
		"platform_display": link.PlatformDisplay(),
		"url":              link.URL,
		"icon":             link.Icon,
		"icon_key":         iconKey,
		"order":            link.Order,
		"is_active":        link.IsActive,
	}
}

func skillPayload(skill db.Skill) gin.H {
	payload := gin.H{
		"id":          skill.ID,
		"name":        skill.Name,
		"category":    skill.CategoryID,
		"proficiency": skill.Proficiency,
		"icon":        skill.Icon,
		"color":       skill.Color,
		"order":       skill.Order,
		"is_featured": skill.IsFeatured,
	}
	if skill.Category.ID != 0 {
		payload["category_name"] = skill.Category.Name
	}
	return payload
}

func skillCategoryPayload(category db.SkillCategory) gin.H {
	skills := make([]gin.H, 0, len(category.Skills))
	for _, skill := range category.Skills {
		item := skillPayload(skill)
		item["category_name"] = category.Name
		skills = append(skills, item)
	}
	return gin.H{
		"id":     category.ID,
		"name":   category.Name,
		"icon":   category.Icon,
		"order":  category.Order,
		"skills": skills,
	}
}

func (a *API) projectPayload(c *gin.Context, project db.Project) gin.H {
	return gin.H{
		"id":                project.ID,
		"title":             project.Title,
		"slug":              project.Slug,
		"short_description": project.ShortDescription,
		"description":       project.Description,
		"image":             project.Image,
		"image_url":         a.mediaURL(c, project.Image),
		"technologies":      project.Technologies,
		"tech_list":         project.TechList(),
		"live_url":          project.LiveURL,
		"github_url":        project.GithubURL,
		"is_featured":       project.IsFeatured,
		"is_active":         project.IsActive,
		"order":             project.Order,
		"created_at":        project.CreatedAt,
		"updated_at":        project.UpdatedAt,
	}
}

func (a *API) educationPayload(c *gin.Context, item db.Education) gin.H {
	return gin.H{
		"id":             item.ID,
		"institution":    item.Institution,
		"degree":         item.Degree,
		"field_of_study": item.FieldOfStudy,
		"start_date":     formatDate(item.StartDate),
		"end_date":       formatOptionalDate(item.EndDate),
		"is_current":     item.IsCurrent,
		"description":    item.Description,
		"logo":           item.Logo,
		"logo_url":       a.mediaURL(c, item.Logo),
		"order":          item.Order,
	}
}

func (a *API) certificationPayload(c *gin.Context, item db.Certification) gin.H {
	return gin.H{
		"id":             item.ID,
		"name":           item.Name,
		"issuer":         item.Issuer,
		"issue_date":     formatDate(item.IssueDate),
		"expiry_date":    formatOptionalDate(item.ExpiryDate),
		"credential_id":  item.CredentialID,
		"credential_url": item.CredentialURL,
		"image":          item.Image,
		"image_url":      a.mediaURL(c, item.Image),
		"order":          item.Order,
	}
}

func (a *API) cvPayload(c *gin.Context, cv db.CV) gin.H {
	return gin.H{
		"id":          cv.ID,
		"title":       cv.Title,
		"file":        cv.File,
		"file_url":    a.mediaURL(c, cv.File),
		"is_active":   cv.IsActive,
		"uploaded_at": cv.UploadedAt,
	}
}

func contactMessagePayload(message db.ContactMessage) gin.H {
	return gin.H{
		"id":         message.ID,
		"name":       message.Name,
		"email":      message.Email,
		"subject":    message.Subject,
		"message":    message.Message,
		"is_read":    message.IsRead,
		"created_at": message.CreatedAt,
	}
}

// contactAckPayload 只回显对外字段
func contactAckPayload(message db.ContactMessage) gin.H {
	return gin.H{
		"id":      message.ID,
		"name":    message.Name,
		"email":   message.Email,
		"subject": message.Subject,
		"message": message.Message,
	}
}
