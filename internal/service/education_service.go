package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/folio/internal/db"
	"gorm.io/gorm"
)

// EducationService 管理教育经历
type EducationService struct {
	db *gorm.DB
}

// NewEducationService 构造 EducationService
func NewEducationService(gdb *gorm.DB) *EducationService {
	return &EducationService{db: gdb}
}

// EducationInput 描述教育经历的可写字段
type EducationInput struct {
	Institution  string    `field:"institution" validate:"required,max=200"`
	Degree       string    `field:"degree" validate:"required,max=200"`
	FieldOfStudy string    `field:"field_of_study" validate:"max=200"`
	StartDate    time.Time `field:"start_date" validate:"required"`
	EndDate      *time.Time
	IsCurrent    bool
	Description  string `field:"description"`
	Logo         string `field:"logo" validate:"max=255"`
	Order        *int
}

// List 按 order 升序、开始时间倒序返回全部教育经历
func (s *EducationService) List() ([]db.Education, error) {
	var items []db.Education
	if err := s.db.Order("sort_order ASC, start_date DESC, id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list education: %w", err)
	}
	return items, nil
}

// Get 根据主键获取教育经历
func (s *EducationService) Get(id uint) (*db.Education, error) {
	var item db.Education
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEducationNotFound
		}
		return nil, fmt.Errorf("get education: %w", err)
	}
	return &item, nil
}

// FindByInstitutionDegree 按自然键查找，供种子数据去重使用
func (s *EducationService) FindByInstitutionDegree(institution, degree string) (*db.Education, error) {
	var item db.Education
	err := s.db.Where("institution = ? AND degree = ?", strings.TrimSpace(institution), strings.TrimSpace(degree)).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEducationNotFound
		}
		return nil, fmt.Errorf("find education: %w", err)
	}
	return &item, nil
}

// Create 新建教育经历，未指定排序时追加到末尾
func (s *EducationService) Create(input EducationInput) (*db.Education, error) {
	input = input.normalized()
	if err := validateEducationInput(input); err != nil {
		return nil, err
	}

	order, err := nextOrder(s.db, &db.Education{}, input.Order)
	if err != nil {
		return nil, fmt.Errorf("resolve education order: %w", err)
	}

	item := db.Education{}
	input.apply(&item)
	item.Order = order

	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create education: %w", err)
	}
	return &item, nil
}

// Update 更新教育经历
func (s *EducationService) Update(id uint, input EducationInput) (*db.Education, error) {
	input = input.normalized()
	if err := validateEducationInput(input); err != nil {
		return nil, err
	}

	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	input.apply(item)

	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("update education: %w", err)
	}
	return item, nil
}

// Delete 删除教育经历
func (s *EducationService) Delete(id uint) error {
	result := s.db.Delete(&db.Education{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete education: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEducationNotFound
	}
	return nil
}

func validateEducationInput(input EducationInput) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return newFieldError("end_date", "End date cannot be before the start date.")
	}
	return nil
}

func (in EducationInput) normalized() EducationInput {
	in.Institution = strings.TrimSpace(in.Institution)
	in.Degree = strings.TrimSpace(in.Degree)
	in.FieldOfStudy = strings.TrimSpace(in.FieldOfStudy)
	in.Description = strings.TrimSpace(in.Description)
	in.Logo = strings.TrimSpace(in.Logo)
	return in
}

func (in EducationInput) apply(item *db.Education) {
	item.Institution = in.Institution
	item.Degree = in.Degree
	item.FieldOfStudy = in.FieldOfStudy
	item.StartDate = in.StartDate
	item.EndDate = in.EndDate
	item.IsCurrent = in.IsCurrent
	item.Description = in.Description
	item.Logo = in.Logo
	if in.Order != nil {
		item.Order = *in.Order
	}
}
