package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/folio/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SkillService 管理技能分组及其下的技能
type SkillService struct {
	db *gorm.DB
}

// NewSkillService 构造 SkillService
func NewSkillService(gdb *gorm.DB) *SkillService {
	return &SkillService{db: gdb}
}

// SkillCategoryInput 描述技能分组的可写字段
// Skills 为 nil 表示不改动下属技能；非 nil 时按列表整体同步
type SkillCategoryInput struct {
	Name   string `field:"name" validate:"required,max=100"`
	Icon   string `field:"icon" validate:"max=50"`
	Order  *int
	Skills []SkillInput `field:"skills" validate:"-"`
}

// SkillInput 描述单个技能的可写字段
// 内联编辑时 ID 非空表示更新已有技能
type SkillInput struct {
	ID          uint
	Name        string `field:"name" validate:"required,max=100"`
	CategoryID  uint   `field:"category"`
	Proficiency *int
	Icon        string `field:"icon" validate:"max=100"`
	Color       string `field:"color" validate:"max=20"`
	Order       *int
	IsFeatured  bool
}

// ListCategories 返回全部分组，分组与技能都按 order 升序
func (s *SkillService) ListCategories() ([]db.SkillCategory, error) {
	var categories []db.SkillCategory
	err := s.db.
		Preload("Skills", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order ASC, id ASC")
		}).
		Order("sort_order ASC, id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list skill categories: %w", err)
	}
	return categories, nil
}

// GetCategory 获取分组及其技能
func (s *SkillService) GetCategory(id uint) (*db.SkillCategory, error) {
	var category db.SkillCategory
	err := s.db.
		Preload("Skills", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order ASC, id ASC")
		}).
		First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkillCategoryNotFound
		}
		return nil, fmt.Errorf("get skill category: %w", err)
	}
	return &category, nil
}

// CreateCategory 新建分组，可同时内联创建技能
func (s *SkillService) CreateCategory(input SkillCategoryInput) (*db.SkillCategory, error) {
	input = input.normalized()
	if err := validateCategoryInput(input); err != nil {
		return nil, err
	}

	var category db.SkillCategory
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := nextOrder(tx, &db.SkillCategory{}, input.Order)
		if err != nil {
			return fmt.Errorf("resolve skill category order: %w", err)
		}

		category = db.SkillCategory{Name: input.Name, Icon: input.Icon, Order: order}
		if err := tx.Omit(clause.Associations).Create(&category).Error; err != nil {
			return fmt.Errorf("create skill category: %w", err)
		}

		if input.Skills != nil {
			return syncCategorySkills(tx, category.ID, input.Skills)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCategory(category.ID)
}

// UpdateCategory 更新分组；Skills 非 nil 时同步内联技能：
// 带 ID 的更新，不带 ID 的新建，未出现在列表中的删除。
func (s *SkillService) UpdateCategory(id uint, input SkillCategoryInput) (*db.SkillCategory, error) {
	input = input.normalized()
	if err := validateCategoryInput(input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var category db.SkillCategory
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSkillCategoryNotFound
			}
			return fmt.Errorf("find skill category: %w", err)
		}

		category.Name = input.Name
		category.Icon = input.Icon
		if input.Order != nil {
			category.Order = *input.Order
		}
		if err := tx.Omit(clause.Associations).Save(&category).Error; err != nil {
			return fmt.Errorf("update skill category: %w", err)
		}

		if input.Skills != nil {
			return syncCategorySkills(tx, category.ID, input.Skills)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCategory(id)
}

// DeleteCategory 删除分组并在同一事务内删除其全部技能
func (s *SkillService) DeleteCategory(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&db.Skill{}).Error; err != nil {
			return fmt.Errorf("delete category skills: %w", err)
		}
		result := tx.Delete(&db.SkillCategory{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete skill category: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrSkillCategoryNotFound
		}
		return nil
	})
}

// ListSkills 返回平铺的技能列表（附带分组），按 (分组 order, 技能 order) 排序
func (s *SkillService) ListSkills(featuredOnly bool) ([]db.Skill, error) {
	query := s.db.Model(&db.Skill{}).
		Joins("JOIN skill_categories ON skill_categories.id = skills.category_id AND skill_categories.deleted_at IS NULL").
		Preload("Category")
	if featuredOnly {
		query = query.Where("skills.is_featured = ?", true)
	}

	var skills []db.Skill
	err := query.
		Order("skill_categories.sort_order ASC, skill_categories.id ASC, skills.sort_order ASC, skills.id ASC").
		Find(&skills).Error
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

// GetSkill 根据主键获取技能
func (s *SkillService) GetSkill(id uint) (*db.Skill, error) {
	var skill db.Skill
	if err := s.db.Preload("Category").First(&skill, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("get skill: %w", err)
	}
	return &skill, nil
}

// CreateSkill 新建技能，熟练度缺省为 75 并限制在 [0,100]
func (s *SkillService) CreateSkill(input SkillInput) (*db.Skill, error) {
	input = input.normalized()
	if err := s.validateSkill(input); err != nil {
		return nil, err
	}

	skill, err := createSkill(s.db, input.CategoryID, input)
	if err != nil {
		return nil, err
	}
	return s.GetSkill(skill.ID)
}

// UpdateSkill 更新技能
func (s *SkillService) UpdateSkill(id uint, input SkillInput) (*db.Skill, error) {
	input = input.normalized()
	if err := s.validateSkill(input); err != nil {
		return nil, err
	}

	var skill db.Skill
	if err := s.db.First(&skill, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("find skill: %w", err)
	}

	skill.CategoryID = input.CategoryID
	applySkillInput(&skill, input)
	if err := s.db.Omit(clause.Associations).Save(&skill).Error; err != nil {
		return nil, fmt.Errorf("update skill: %w", err)
	}
	return s.GetSkill(id)
}

// DeleteSkill 删除技能
func (s *SkillService) DeleteSkill(id uint) error {
	result := s.db.Delete(&db.Skill{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete skill: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSkillNotFound
	}
	return nil
}

func (s *SkillService) validateSkill(input SkillInput) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if input.CategoryID == 0 {
		return newFieldError("category", "This field is required.")
	}

	var count int64
	if err := s.db.Model(&db.SkillCategory{}).Where("id = ?", input.CategoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("check skill category: %w", err)
	}
	if count == 0 {
		return newFieldError("category", "Select a valid choice.")
	}
	return nil
}

func validateCategoryInput(input SkillCategoryInput) error {
	if err := validateInput(input); err != nil {
		return err
	}
	for index, skill := range input.Skills {
		if err := validateInput(skill); err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				fields := make(map[string]string, len(verr.Fields))
				for key, msg := range verr.Fields {
					fields[fmt.Sprintf("skills[%d].%s", index, key)] = msg
				}
				return &ValidationError{Fields: fields}
			}
			return err
		}
	}
	return nil
}

// syncCategorySkills 让分组下的技能与 inputs 一致
func syncCategorySkills(tx *gorm.DB, categoryID uint, inputs []SkillInput) error {
	var existing []db.Skill
	if err := tx.Where("category_id = ?", categoryID).Find(&existing).Error; err != nil {
		return fmt.Errorf("load category skills: %w", err)
	}
	byID := make(map[uint]db.Skill, len(existing))
	for _, skill := range existing {
		byID[skill.ID] = skill
	}

	keep := make(map[uint]bool, len(inputs))
	for index, input := range inputs {
		if input.Order == nil {
			order := index
			input.Order = &order
		}

		if input.ID == 0 {
			created, err := createSkill(tx, categoryID, input)
			if err != nil {
				return err
			}
			keep[created.ID] = true
			continue
		}

		skill, ok := byID[input.ID]
		if !ok {
			return newFieldError(fmt.Sprintf("skills[%d].id", index), "Skill does not belong to this category.")
		}
		applySkillInput(&skill, input)
		if err := tx.Omit(clause.Associations).Save(&skill).Error; err != nil {
			return fmt.Errorf("update inline skill: %w", err)
		}
		keep[skill.ID] = true
	}

	for _, skill := range existing {
		if keep[skill.ID] {
			continue
		}
		if err := tx.Delete(&db.Skill{}, skill.ID).Error; err != nil {
			return fmt.Errorf("delete inline skill: %w", err)
		}
	}
	return nil
}

func createSkill(tx *gorm.DB, categoryID uint, input SkillInput) (*db.Skill, error) {
	order, err := nextOrder(tx.Where("category_id = ?", categoryID), &db.Skill{}, input.Order)
	if err != nil {
		return nil, fmt.Errorf("resolve skill order: %w", err)
	}

	skill := db.Skill{CategoryID: categoryID, Proficiency: db.DefaultSkillProficiency, Color: db.DefaultSkillColor}
	applySkillInput(&skill, input)
	skill.Order = order

	if err := tx.Omit(clause.Associations).Create(&skill).Error; err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	return &skill, nil
}

func applySkillInput(skill *db.Skill, input SkillInput) {
	input = input.normalized()
	skill.Name = input.Name
	skill.Icon = input.Icon
	skill.IsFeatured = input.IsFeatured
	if input.Color != "" {
		skill.Color = input.Color
	}
	if input.Proficiency != nil {
		skill.Proficiency = db.ClampProficiency(*input.Proficiency)
	}
	if input.Order != nil {
		skill.Order = *input.Order
	}
}

func (in SkillCategoryInput) normalized() SkillCategoryInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Icon = strings.TrimSpace(in.Icon)
	return in
}

func (in SkillInput) normalized() SkillInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Icon = strings.TrimSpace(in.Icon)
	in.Color = strings.TrimSpace(in.Color)
	return in
}
