package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/folio/internal/db"
	"github.com/folio/internal/service"
	"github.com/folio/internal/view"
	"github.com/gin-gonic/gin"
)

const invalidJSON = "Request body must be valid JSON."

// dateFields 收集日期字段的解析错误，统一以字段错误返回
type dateFields struct {
	errs map[string]string
}

func (d *dateFields) required(field, raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.fail(field, "This field is required.")
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		d.fail(field, "Enter a valid date (YYYY-MM-DD).")
	}
	return t
}

func (d *dateFields) optional(field string, raw *string) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*raw))
	if err != nil {
		d.fail(field, "Enter a valid date (YYYY-MM-DD).")
		return nil
	}
	return &t
}

func (d *dateFields) fail(field, message string) {
	if d.errs == nil {
		d.errs = map[string]string{}
	}
	d.errs[field] = message
}

func (d *dateFields) err() error {
	if len(d.errs) == 0 {
		return nil
	}
	return &service.ValidationError{Fields: d.errs}
}

type personalInfoRequest struct {
	Name           string `json:"name"`
	Title          string `json:"title"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	AboutText      string `json:"about_text"`
	ResumeHeadline string `json:"resume_headline"`
	ProfilePhoto   string `json:"profile_photo"`
	Favicon        string `json:"favicon"`
}

func (r personalInfoRequest) toInput() service.PersonalInfoInput {
	return service.PersonalInfoInput{
		Name:           r.Name,
		Title:          r.Title,
		Email:          r.Email,
		Phone:          r.Phone,
		Location:       r.Location,
		Bio:            r.Bio,
		AboutText:      r.AboutText,
		ResumeHeadline: r.ResumeHeadline,
		ProfilePhoto:   r.ProfilePhoto,
		Favicon:        r.Favicon,
	}
}

type socialLinkRequest struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
	Order    *int   `json:"order"`
	IsActive *bool  `json:"is_active"`
}

func (r socialLinkRequest) toInput() service.SocialLinkInput {
	return service.SocialLinkInput{
		Platform: r.Platform,
		URL:      r.URL,
		Icon:     r.Icon,
		Order:    r.Order,
		IsActive: r.IsActive,
	}
}

type reorderRequest struct {
	IDs []uint `json:"ids"`
}

type skillRequest struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	CategoryID  uint   `json:"category"`
	Proficiency *int   `json:"proficiency"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Order       *int   `json:"order"`
	IsFeatured  bool   `json:"is_featured"`
}

func (r skillRequest) toInput() service.SkillInput {
	return service.SkillInput{
		ID:          r.ID,
		Name:        r.Name,
		CategoryID:  r.CategoryID,
		Proficiency: r.Proficiency,
		Icon:        r.Icon,
		Color:       r.Color,
		Order:       r.Order,
		IsFeatured:  r.IsFeatured,
	}
}

// skillCategoryRequest 中 skills 缺省表示不改动下属技能
type skillCategoryRequest struct {
	Name   string         `json:"name"`
	Icon   string         `json:"icon"`
	Order  *int           `json:"order"`
	Skills []skillRequest `json:"skills"`
}

func (r skillCategoryRequest) toInput() service.SkillCategoryInput {
	input := service.SkillCategoryInput{Name: r.Name, Icon: r.Icon, Order: r.Order}
	if r.Skills != nil {
		input.Skills = make([]service.SkillInput, 0, len(r.Skills))
		for _, skill := range r.Skills {
			input.Skills = append(input.Skills, skill.toInput())
		}
	}
	return input
}

type projectRequest struct {
	Title            string `json:"title"`
	Slug             string `json:"slug"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	Image            string `json:"image"`
	Technologies     string `json:"technologies"`
	LiveURL          string `json:"live_url"`
	GithubURL        string `json:"github_url"`
	IsFeatured       bool   `json:"is_featured"`
	IsActive         *bool  `json:"is_active"`
	Order            *int   `json:"order"`
}

func (r projectRequest) toInput() service.ProjectInput {
	return service.ProjectInput{
		Title:            r.Title,
		Slug:             r.Slug,
		ShortDescription: r.ShortDescription,
		Description:      r.Description,
		Image:            r.Image,
		Technologies:     r.Technologies,
		LiveURL:          r.LiveURL,
		GithubURL:        r.GithubURL,
		IsFeatured:       r.IsFeatured,
		IsActive:         r.IsActive,
		Order:            r.Order,
	}
}

type educationRequest struct {
	Institution  string  `json:"institution"`
	Degree       string  `json:"degree"`
	FieldOfStudy string  `json:"field_of_study"`
	StartDate    string  `json:"start_date"`
	EndDate      *string `json:"end_date"`
	IsCurrent    bool    `json:"is_current"`
	Description  string  `json:"description"`
	Logo         string  `json:"logo"`
	Order        *int    `json:"order"`
}

func (r educationRequest) toInput() (service.EducationInput, error) {
	var dates dateFields
	input := service.EducationInput{
		Institution:  r.Institution,
		Degree:       r.Degree,
		FieldOfStudy: r.FieldOfStudy,
		StartDate:    dates.required("start_date", r.StartDate),
		EndDate:      dates.optional("end_date", r.EndDate),
		IsCurrent:    r.IsCurrent,
		Description:  r.Description,
		Logo:         r.Logo,
		Order:        r.Order,
	}
	return input, dates.err()
}

type certificationRequest struct {
	Name          string  `json:"name"`
	Issuer        string  `json:"issuer"`
	IssueDate     string  `json:"issue_date"`
	ExpiryDate    *string `json:"expiry_date"`
	CredentialID  string  `json:"credential_id"`
	CredentialURL string  `json:"credential_url"`
	Image         string  `json:"image"`
	Order         *int    `json:"order"`
}

func (r certificationRequest) toInput() (service.CertificationInput, error) {
	var dates dateFields
	input := service.CertificationInput{
		Name:          r.Name,
		Issuer:        r.Issuer,
		IssueDate:     dates.required("issue_date", r.IssueDate),
		ExpiryDate:    dates.optional("expiry_date", r.ExpiryDate),
		CredentialID:  r.CredentialID,
		CredentialURL: r.CredentialURL,
		Image:         r.Image,
		Order:         r.Order,
	}
	return input, dates.err()
}

type cvRequest struct {
	Title    string `json:"title"`
	File     string `json:"file"`
	IsActive bool   `json:"is_active"`
}

func (r cvRequest) toInput() service.CVInput {
	return service.CVInput{Title: r.Title, File: r.File, IsActive: r.IsActive}
}

type messageReadRequest struct {
	IsRead *bool `json:"is_read"`
}

// --- 个人信息 ---

// AdminGetPersonalInfo 返回个人信息
func (a *API) AdminGetPersonalInfo(c *gin.Context) {
	a.GetPersonalInfo(c)
}

// AdminCreatePersonalInfo 创建个人信息；已存在时返回 409
func (a *API) AdminCreatePersonalInfo(c *gin.Context) {
	var req personalInfoRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	info, err := a.profiles.CreatePersonalInfo(req.toInput())
	if err != nil {
		respondServiceError(c, err, "Personal information not configured")
		return
	}
	c.JSON(http.StatusCreated, a.personalInfoPayload(c, *info))
}

// AdminSavePersonalInfo 更新个人信息，不存在时创建
func (a *API) AdminSavePersonalInfo(c *gin.Context) {
	var req personalInfoRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	info, created, err := a.profiles.SavePersonalInfo(req.toInput())
	if err != nil {
		respondServiceError(c, err, "Personal information not configured")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, a.personalInfoPayload(c, *info))
}

// --- 社交链接 ---

// AdminSocialPlatforms 列出可选的平台及图标，供后台编辑器渲染下拉框
func (a *API) AdminSocialPlatforms(c *gin.Context) {
	items := make([]gin.H, 0, len(db.SocialPlatforms))
	for _, platform := range db.SocialPlatforms {
		items = append(items, gin.H{
			"key":   platform.Key,
			"label": platform.Display,
			"icon":  string(view.SocialIconSVG(platform.Key)),
		})
	}
	c.JSON(http.StatusOK, items)
}

// AdminListSocialLinks 返回全部社交链接，包括停用的
func (a *API) AdminListSocialLinks(c *gin.Context) {
	links, err := a.profiles.ListSocialLinks(true)
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

func (a *API) AdminCreateSocialLink(c *gin.Context) {
	var req socialLinkRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	link, err := a.profiles.CreateSocialLink(req.toInput())
	if err != nil {
		respondServiceError(c, err, "Social link not found")
		return
	}
	c.JSON(http.StatusCreated, socialLinkPayload(*link))
}

func (a *API) AdminUpdateSocialLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req socialLinkRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	link, err := a.profiles.UpdateSocialLink(id, req.toInput())
	if err != nil {
		respondServiceError(c, err, "Social link not found")
		return
	}
	c.JSON(http.StatusOK, socialLinkPayload(*link))
}

func (a *API) AdminDeleteSocialLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.profiles.DeleteSocialLink(id); err != nil {
		respondServiceError(c, err, "Social link not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// AdminReorderSocialLinks 按给定 id 顺序重新编号
func (a *API) AdminReorderSocialLinks(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	if err := a.profiles.ReorderSocialLinks(req.IDs); err != nil {
		respondServiceError(c, err, "Social link not found")
		return
	}
	a.AdminListSocialLinks(c)
}

// --- 技能 ---

func (a *API) AdminCreateSkillCategory(c *gin.Context) {
	var req skillCategoryRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	category, err := a.skills.CreateCategory(req.toInput())
	if err != nil {
		respondServiceError(c, err, "Skill category not found")
		return
	}
	c.JSON(http.StatusCreated, skillCategoryPayload(*category))
}

// AdminUpdateSkillCategory 更新分组；请求带 skills 时整体替换下属技能
func (a *API) AdminUpdateSkillCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req skillCategoryRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	category, err := a.skills.UpdateCategory(id, req.toInput())
	if err != nil {
		respondServiceError(c, err, "Skill category not found")
		return
	}
	c.JSON(http.StatusOK, skillCategoryPayload(*category))
}

func (a *API) AdminDeleteSkillCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.skills.DeleteCategory(id); err != nil {
		respondServiceError(c, err, "Skill category not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) AdminCreateSkill(c *gin.Context) {
	var req skillRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	skill, err := a.skills.CreateSkill(req.toInput())
	if err != nil {
		respondServiceError(c, err, "Skill not found")
		return
	}
	c.JSON(http.StatusCreated, skillPayload(*skill))
}

func (a *API) AdminUpdateSkill(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req skillRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	skill, err := a.skills.UpdateSkill(id, req.toInput())
	if err != nil {
		respondServiceError(c, err, "Skill not found")
		return
	}
	c.JSON(http.StatusOK, skillPayload(*skill))
}

func (a *API) AdminDeleteSkill(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.skills.DeleteSkill(id); err != nil {
		respondServiceError(c, err, "Skill not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- 项目 ---

// AdminListProjects 返回全部项目，包括停用的
func (a *API) AdminListProjects(c *gin.Context) {
	projects, err := a.projects.List(service.ProjectFilter{IncludeInactive: true})
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

func (a *API) AdminGetProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	project, err := a.projects.Get(id)
	if err != nil {
		respondServiceError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusOK, a.projectPayload(c, *project))
}

// AdminCreateProject 创建项目，slug 为空时由标题生成
func (a *API) AdminCreateProject(c *gin.Context) {
	var req projectRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	project, err := a.projects.Create(req.toInput())
	if err != nil {
		respondServiceError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusCreated, a.projectPayload(c, *project))
}

func (a *API) AdminUpdateProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req projectRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	project, err := a.projects.Update(id, req.toInput())
	if err != nil {
		respondServiceError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusOK, a.projectPayload(c, *project))
}

func (a *API) AdminDeleteProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.projects.Delete(id); err != nil {
		respondServiceError(c, err, "Project not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- 教育与证书 ---

func (a *API) AdminCreateEducation(c *gin.Context) {
	var req educationRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	item, err := a.education.Create(input)
	if err != nil {
		respondServiceError(c, err, "Education not found")
		return
	}
	c.JSON(http.StatusCreated, a.educationPayload(c, *item))
}

func (a *API) AdminUpdateEducation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req educationRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	item, err := a.education.Update(id, input)
	if err != nil {
		respondServiceError(c, err, "Education not found")
		return
	}
	c.JSON(http.StatusOK, a.educationPayload(c, *item))
}

func (a *API) AdminDeleteEducation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.education.Delete(id); err != nil {
		respondServiceError(c, err, "Education not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) AdminCreateCertification(c *gin.Context) {
	var req certificationRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	item, err := a.certifications.Create(input)
	if err != nil {
		respondServiceError(c, err, "Certification not found")
		return
	}
	c.JSON(http.StatusCreated, a.certificationPayload(c, *item))
}

func (a *API) AdminUpdateCertification(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req certificationRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	item, err := a.certifications.Update(id, input)
	if err != nil {
		respondServiceError(c, err, "Certification not found")
		return
	}
	c.JSON(http.StatusOK, a.certificationPayload(c, *item))
}

func (a *API) AdminDeleteCertification(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.certifications.Delete(id); err != nil {
		respondServiceError(c, err, "Certification not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- 简历 ---

func (a *API) AdminListCVs(c *gin.Context) {
	cvs, err := a.cvs.List()
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	items := make([]gin.H, 0, len(cvs))
	for _, cv := range cvs {
		items = append(items, a.cvPayload(c, cv))
	}
	c.JSON(http.StatusOK, items)
}

func (a *API) AdminCreateCV(c *gin.Context) {
	var req cvRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	cv, err := a.cvs.Create(req.toInput())
	if err != nil {
		respondServiceError(c, err, "CV not found")
		return
	}
	c.JSON(http.StatusCreated, a.cvPayload(c, *cv))
}

func (a *API) AdminUpdateCV(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req cvRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	cv, err := a.cvs.Update(id, req.toInput())
	if err != nil {
		respondServiceError(c, err, "CV not found")
		return
	}
	c.JSON(http.StatusOK, a.cvPayload(c, *cv))
}

// AdminActivateCV 把指定简历设为唯一激活版本
func (a *API) AdminActivateCV(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cv, err := a.cvs.Activate(id)
	if err != nil {
		respondServiceError(c, err, "CV not found")
		return
	}
	c.JSON(http.StatusOK, a.cvPayload(c, *cv))
}

func (a *API) AdminDeleteCV(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.cvs.Delete(id); err != nil {
		respondServiceError(c, err, "CV not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- 留言 ---

// AdminListMessages 返回留言，?unread=true 只看未读
func (a *API) AdminListMessages(c *gin.Context) {
	messages, err := a.contacts.List(queryBool(c, "unread"))
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	unread, err := a.contacts.CountUnread()
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	items := make([]gin.H, 0, len(messages))
	for _, message := range messages {
		items = append(items, contactMessagePayload(message))
	}
	c.JSON(http.StatusOK, gin.H{"unread": unread, "messages": items})
}

func (a *API) AdminGetMessage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	message, err := a.contacts.Get(id)
	if err != nil {
		respondServiceError(c, err, "Message not found")
		return
	}
	c.JSON(http.StatusOK, contactMessagePayload(*message))
}

// AdminMarkMessage 切换留言的已读状态，其余字段不可修改
func (a *API) AdminMarkMessage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req messageReadRequest
	if !bindJSON(c, &req, invalidJSON) {
		return
	}
	if req.IsRead == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid input.",
			"fields": gin.H{"is_read": "This field is required."},
		})
		return
	}
	message, err := a.contacts.MarkRead(id, *req.IsRead)
	if err != nil {
		respondServiceError(c, err, "Message not found")
		return
	}
	c.JSON(http.StatusOK, contactMessagePayload(*message))
}
