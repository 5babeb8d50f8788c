// Package seed 负责导入默认的作品集数据。
// 所有写入按自然键判断是否存在，重复执行不会产生重复记录。
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/folio/internal/db"
	"github.com/folio/internal/logger"
	"github.com/folio/internal/service"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed default.yaml
var defaultData []byte

// Data 描述种子文件的结构
type Data struct {
	PersonalInfo    *PersonalInfo   `yaml:"personal_info"`
	SocialLinks     []SocialLink    `yaml:"social_links"`
	SkillCategories []SkillCategory `yaml:"skill_categories"`
	Projects        []Project       `yaml:"projects"`
	Education       []Education     `yaml:"education"`
	Certifications  []Certification `yaml:"certifications"`
}

type PersonalInfo struct {
	Name           string `yaml:"name"`
	Title          string `yaml:"title"`
	Email          string `yaml:"email"`
	Phone          string `yaml:"phone"`
	Location       string `yaml:"location"`
	Bio            string `yaml:"bio"`
	AboutText      string `yaml:"about_text"`
	ResumeHeadline string `yaml:"resume_headline"`
	ProfilePhoto   string `yaml:"profile_photo"`
	Favicon        string `yaml:"favicon"`
}

type SocialLink struct {
	Platform string `yaml:"platform"`
	URL      string `yaml:"url"`
	Icon     string `yaml:"icon"`
	Order    *int   `yaml:"order"`
}

type SkillCategory struct {
	Name   string  `yaml:"name"`
	Icon   string  `yaml:"icon"`
	Order  *int    `yaml:"order"`
	Skills []Skill `yaml:"skills"`
}

type Skill struct {
	Name        string `yaml:"name"`
	Proficiency *int   `yaml:"proficiency"`
	Icon        string `yaml:"icon"`
	Color       string `yaml:"color"`
	Featured    bool   `yaml:"featured"`
}

type Project struct {
	Title            string `yaml:"title"`
	Slug             string `yaml:"slug"`
	ShortDescription string `yaml:"short_description"`
	Description      string `yaml:"description"`
	Image            string `yaml:"image"`
	Technologies     string `yaml:"technologies"`
	LiveURL          string `yaml:"live_url"`
	GithubURL        string `yaml:"github_url"`
	Featured         bool   `yaml:"featured"`
	Order            *int   `yaml:"order"`
}

type Education struct {
	Institution  string `yaml:"institution"`
	Degree       string `yaml:"degree"`
	FieldOfStudy string `yaml:"field_of_study"`
	StartDate    string `yaml:"start_date"`
	EndDate      string `yaml:"end_date"`
	Current      bool   `yaml:"current"`
	Description  string `yaml:"description"`
	Logo         string `yaml:"logo"`
	Order        *int   `yaml:"order"`
}

type Certification struct {
	Name          string `yaml:"name"`
	Issuer        string `yaml:"issuer"`
	IssueDate     string `yaml:"issue_date"`
	ExpiryDate    string `yaml:"expiry_date"`
	CredentialID  string `yaml:"credential_id"`
	CredentialURL string `yaml:"credential_url"`
	Image         string `yaml:"image"`
	Order         *int   `yaml:"order"`
}

// Report 统计每类记录新建与跳过的数量
type Report struct {
	Created map[string]int
	Skipped map[string]int
}

func newReport() *Report {
	return &Report{Created: map[string]int{}, Skipped: map[string]int{}}
}

func (r *Report) record(kind string, created bool) {
	if created {
		r.Created[kind]++
		return
	}
	r.Skipped[kind]++
}

// Default 返回内置的默认数据
func Default() (*Data, error) {
	return Parse(defaultData)
}

// LoadFile 读取并解析 YAML 种子文件
func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse 解析 YAML 种子数据，未知字段视为错误
func Parse(raw []byte) (*Data, error) {
	var data Data
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &data, nil
}

// Seeder 通过 service 层写入种子数据，沿用同样的校验与排序规则
type Seeder struct {
	db             *gorm.DB
	profiles       *service.ProfileService
	skills         *service.SkillService
	projects       *service.ProjectService
	education      *service.EducationService
	certifications *service.CertificationService
}

// NewSeeder 构造 Seeder
func NewSeeder(gdb *gorm.DB) *Seeder {
	return &Seeder{
		db:             gdb,
		profiles:       service.NewProfileService(gdb),
		skills:         service.NewSkillService(gdb),
		projects:       service.NewProjectService(gdb),
		education:      service.NewEducationService(gdb),
		certifications: service.NewCertificationService(gdb),
	}
}

// Apply 依次写入全部数据，遇到第一个错误即停止
func (s *Seeder) Apply(data *Data) (*Report, error) {
	report := newReport()
	if data == nil {
		return report, nil
	}

	steps := []func(*Data, *Report) error{
		s.applyPersonalInfo,
		s.applySocialLinks,
		s.applySkills,
		s.applyProjects,
		s.applyEducation,
		s.applyCertifications,
	}
	for _, step := range steps {
		if err := step(data, report); err != nil {
			return report, err
		}
	}

	logger.Info().
		Interface("created", report.Created).
		Interface("skipped", report.Skipped).
		Msg("seed data applied")
	return report, nil
}

func (s *Seeder) applyPersonalInfo(data *Data, report *Report) error {
	if data.PersonalInfo == nil {
		return nil
	}
	in := data.PersonalInfo
	_, err := s.profiles.CreatePersonalInfo(service.PersonalInfoInput{
		Name:           in.Name,
		Title:          in.Title,
		Email:          in.Email,
		Phone:          in.Phone,
		Location:       in.Location,
		Bio:            in.Bio,
		AboutText:      in.AboutText,
		ResumeHeadline: in.ResumeHeadline,
		ProfilePhoto:   in.ProfilePhoto,
		Favicon:        in.Favicon,
	})
	switch {
	case err == nil:
		report.record("personal_info", true)
	case errors.Is(err, service.ErrPersonalInfoExists):
		report.record("personal_info", false)
	default:
		return fmt.Errorf("seed personal info: %w", err)
	}
	return nil
}

func (s *Seeder) applySocialLinks(data *Data, report *Report) error {
	for _, link := range data.SocialLinks {
		platform := strings.ToLower(strings.TrimSpace(link.Platform))
		exists, err := s.exists(&db.SocialLink{}, "platform = ?", platform)
		if err != nil {
			return err
		}
		if exists {
			report.record("social_links", false)
			continue
		}
		if _, err := s.profiles.CreateSocialLink(service.SocialLinkInput{
			Platform: platform,
			URL:      link.URL,
			Icon:     link.Icon,
			Order:    link.Order,
		}); err != nil {
			return fmt.Errorf("seed social link %s: %w", platform, err)
		}
		report.record("social_links", true)
	}
	return nil
}

func (s *Seeder) applySkills(data *Data, report *Report) error {
	for _, in := range data.SkillCategories {
		var category db.SkillCategory
		err := s.db.Where("name = ?", strings.TrimSpace(in.Name)).First(&category).Error
		switch {
		case err == nil:
			report.record("skill_categories", false)
		case errors.Is(err, gorm.ErrRecordNotFound):
			created, err := s.skills.CreateCategory(service.SkillCategoryInput{Name: in.Name, Icon: in.Icon, Order: in.Order})
			if err != nil {
				return fmt.Errorf("seed skill category %s: %w", in.Name, err)
			}
			category = *created
			report.record("skill_categories", true)
		default:
			return fmt.Errorf("find skill category %s: %w", in.Name, err)
		}

		for index, skill := range in.Skills {
			exists, err := s.exists(&db.Skill{}, "name = ? AND category_id = ?", strings.TrimSpace(skill.Name), category.ID)
			if err != nil {
				return err
			}
			if exists {
				report.record("skills", false)
				continue
			}
			order := index + 1
			if _, err := s.skills.CreateSkill(service.SkillInput{
				Name:        skill.Name,
				CategoryID:  category.ID,
				Proficiency: skill.Proficiency,
				Icon:        skill.Icon,
				Color:       skill.Color,
				Order:       &order,
				IsFeatured:  skill.Featured,
			}); err != nil {
				return fmt.Errorf("seed skill %s: %w", skill.Name, err)
			}
			report.record("skills", true)
		}
	}
	return nil
}

func (s *Seeder) applyProjects(data *Data, report *Report) error {
	for _, in := range data.Projects {
		slug := strings.TrimSpace(in.Slug)
		if slug == "" {
			slug = service.Slugify(in.Title)
		}
		exists, err := s.exists(&db.Project{}, "slug = ?", slug)
		if err != nil {
			return err
		}
		if exists {
			report.record("projects", false)
			continue
		}
		if _, err := s.projects.Create(service.ProjectInput{
			Title:            in.Title,
			Slug:             slug,
			ShortDescription: in.ShortDescription,
			Description:      in.Description,
			Image:            in.Image,
			Technologies:     in.Technologies,
			LiveURL:          in.LiveURL,
			GithubURL:        in.GithubURL,
			IsFeatured:       in.Featured,
			Order:            in.Order,
		}); err != nil {
			return fmt.Errorf("seed project %s: %w", slug, err)
		}
		report.record("projects", true)
	}
	return nil
}

func (s *Seeder) applyEducation(data *Data, report *Report) error {
	for _, in := range data.Education {
		_, err := s.education.FindByInstitutionDegree(in.Institution, in.Degree)
		if err == nil {
			report.record("education", false)
			continue
		}
		if !errors.Is(err, service.ErrNotFound) {
			return err
		}

		start, err := parseDate(in.StartDate)
		if err != nil {
			return fmt.Errorf("seed education %s: start_date: %w", in.Institution, err)
		}
		end, err := parseOptionalDate(in.EndDate)
		if err != nil {
			return fmt.Errorf("seed education %s: end_date: %w", in.Institution, err)
		}

		if _, err := s.education.Create(service.EducationInput{
			Institution:  in.Institution,
			Degree:       in.Degree,
			FieldOfStudy: in.FieldOfStudy,
			StartDate:    start,
			EndDate:      end,
			IsCurrent:    in.Current,
			Description:  in.Description,
			Logo:         in.Logo,
			Order:        in.Order,
		}); err != nil {
			return fmt.Errorf("seed education %s: %w", in.Institution, err)
		}
		report.record("education", true)
	}
	return nil
}

func (s *Seeder) applyCertifications(data *Data, report *Report) error {
	for _, in := range data.Certifications {
		exists, err := s.exists(&db.Certification{}, "name = ? AND issuer = ?", strings.TrimSpace(in.Name), strings.TrimSpace(in.Issuer))
		if err != nil {
			return err
		}
		if exists {
			report.record("certifications", false)
			continue
		}

		issued, err := parseDate(in.IssueDate)
		if err != nil {
			return fmt.Errorf("seed certification %s: issue_date: %w", in.Name, err)
		}
		expiry, err := parseOptionalDate(in.ExpiryDate)
		if err != nil {
			return fmt.Errorf("seed certification %s: expiry_date: %w", in.Name, err)
		}

		if _, err := s.certifications.Create(service.CertificationInput{
			Name:          in.Name,
			Issuer:        in.Issuer,
			IssueDate:     issued,
			ExpiryDate:    expiry,
			CredentialID:  in.CredentialID,
			CredentialURL: in.CredentialURL,
			Image:         in.Image,
			Order:         in.Order,
		}); err != nil {
			return fmt.Errorf("seed certification %s: %w", in.Name, err)
		}
		report.record("certifications", true)
	}
	return nil
}

func (s *Seeder) exists(model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := s.db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check existing %T: %w", model, err)
	}
	return count > 0, nil
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
