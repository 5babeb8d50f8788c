package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/folio/internal/db"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// ProjectService 管理作品集项目
type ProjectService struct {
	db *gorm.DB
}

// NewProjectService 构造 ProjectService
func NewProjectService(gdb *gorm.DB) *ProjectService {
	return &ProjectService{db: gdb}
}

// ProjectInput 描述项目的可写字段；Slug 为空时由标题生成
type ProjectInput struct {
	Title            string `field:"title" validate:"required,max=200"`
	Slug             string `field:"slug" validate:"max=200"`
	ShortDescription string `field:"short_description" validate:"max=300"`
	Description      string `field:"description"`
	Image            string `field:"image" validate:"max=255"`
	Technologies     string `field:"technologies" validate:"max=500"`
	LiveURL          string `field:"live_url" validate:"omitempty,url,max=255"`
	GithubURL        string `field:"github_url" validate:"omitempty,url,max=255"`
	IsFeatured       bool
	IsActive         *bool
	Order            *int
}

// ProjectFilter 控制项目列表查询
type ProjectFilter struct {
	FeaturedOnly    bool
	IncludeInactive bool
}

const projectOrdering = "is_featured DESC, sort_order ASC, created_at DESC, id DESC"

// List 返回项目列表：默认只含启用项目，按 精选优先、order、最新 排序
func (s *ProjectService) List(filter ProjectFilter) ([]db.Project, error) {
	query := s.db.Model(&db.Project{})
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}

	var projects []db.Project
	if err := query.Order(projectOrdering).Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// GetBySlug 只返回启用状态的项目，未启用视同不存在
func (s *ProjectService) GetBySlug(slug string) (*db.Project, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrProjectNotFound
	}

	var project db.Project
	if err := s.db.Where("slug = ? AND is_active = ?", slug, true).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project by slug: %w", err)
	}
	return &project, nil
}

// Get 根据主键获取项目（后台使用，不过滤启用状态）
func (s *ProjectService) Get(id uint) (*db.Project, error) {
	var project db.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &project, nil
}

// Create 新建项目，slug 冲突时返回 ErrProjectSlugTaken
func (s *ProjectService) Create(input ProjectInput) (*db.Project, error) {
	input, err := s.prepare(input)
	if err != nil {
		return nil, err
	}

	order, err := nextOrder(s.db, &db.Project{}, input.Order)
	if err != nil {
		return nil, fmt.Errorf("resolve project order: %w", err)
	}

	project := db.Project{IsActive: true}
	applyProjectInput(&project, input)
	project.Order = order

	if err := s.db.Create(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProjectSlugTaken
		}
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &project, nil
}

// Update 更新项目
func (s *ProjectService) Update(id uint, input ProjectInput) (*db.Project, error) {
	input, err := s.prepare(input)
	if err != nil {
		return nil, err
	}

	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	applyProjectInput(project, input)

	if err := s.db.Save(project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProjectSlugTaken
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// Delete 物理删除项目，使 slug 可以被重新使用
func (s *ProjectService) Delete(id uint) error {
	result := s.db.Unscoped().Delete(&db.Project{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete project: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *ProjectService) prepare(input ProjectInput) (ProjectInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)
	input.ShortDescription = strings.TrimSpace(input.ShortDescription)
	input.Description = strings.TrimSpace(input.Description)
	input.Image = strings.TrimSpace(input.Image)
	input.Technologies = strings.TrimSpace(input.Technologies)
	input.LiveURL = strings.TrimSpace(input.LiveURL)
	input.GithubURL = strings.TrimSpace(input.GithubURL)

	if err := validateInput(input); err != nil {
		return input, err
	}

	if input.Slug == "" {
		input.Slug = Slugify(input.Title)
	} else if Slugify(input.Slug) != input.Slug {
		return input, newFieldError("slug", "Enter a valid slug consisting of lowercase letters, numbers, underscores or hyphens.")
	}
	if input.Slug == "" {
		return input, newFieldError("slug", "Could not derive a slug from the title.")
	}
	return input, nil
}

func applyProjectInput(project *db.Project, input ProjectInput) {
	project.Title = input.Title
	project.Slug = input.Slug
	project.ShortDescription = input.ShortDescription
	project.Description = input.Description
	project.Image = input.Image
	project.Technologies = input.Technologies
	project.LiveURL = input.LiveURL
	project.GithubURL = input.GithubURL
	project.IsFeatured = input.IsFeatured
	if input.IsActive != nil {
		project.IsActive = *input.IsActive
	}
	if input.Order != nil {
		project.Order = *input.Order
	}
}

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugSeparators   = regexp.MustCompile(`[-\s]+`)
)

// Slugify 把标题转换为 URL 安全的 slug：去除重音、转小写、空白折叠为连字符
func Slugify(value string) string {
	decomposed := norm.NFKD.String(value)
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) || r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}

	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(b.String()), "")
	slug = slugSeparators.ReplaceAllString(strings.TrimSpace(slug), "-")
	return strings.Trim(slug, "-_")
}
