package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/folio/internal/db"
	"gorm.io/gorm"
)

// ProfileService 负责维护站点主人的个人信息（单例）与社交链接
// 提供排序、增删改查能力，与 handler 解耦

type ProfileService struct {
	db *gorm.DB
}

// NewProfileService 构造 ProfileService
func NewProfileService(gdb *gorm.DB) *ProfileService {
	return &ProfileService{db: gdb}
}

// PersonalInfoInput 描述个人信息的可写字段
type PersonalInfoInput struct {
	Name           string `field:"name" validate:"required,max=100"`
	Title          string `field:"title" validate:"max=200"`
	Email          string `field:"email" validate:"omitempty,email,max=254"`
	Phone          string `field:"phone" validate:"max=50"`
	Location       string `field:"location" validate:"max=100"`
	Bio            string `field:"bio"`
	AboutText      string `field:"about_text"`
	ResumeHeadline string `field:"resume_headline" validate:"max=300"`
	ProfilePhoto   string `field:"profile_photo" validate:"max=255"`
	Favicon        string `field:"favicon" validate:"max=255"`
}

// SocialLinkInput 描述创建或更新社交链接时可设置的字段
// Order/IsActive 使用指针判断是否显式传入

type SocialLinkInput struct {
	Platform string `field:"platform" validate:"required"`
	URL      string `field:"url" validate:"required,url,max=255"`
	Icon     string `field:"icon" validate:"max=50"`
	Order    *int
	IsActive *bool
}

// GetPersonalInfo 返回唯一的个人信息记录
func (s *ProfileService) GetPersonalInfo() (*db.PersonalInfo, error) {
	var info db.PersonalInfo
	if err := s.db.Where("slot = ?", db.PersonalInfoSlot).First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonalInfoNotFound
		}
		return nil, fmt.Errorf("get personal info: %w", err)
	}
	return &info, nil
}

// CreatePersonalInfo 新建个人信息；已存在时返回 ErrPersonalInfoExists 且不改动原记录。
// 存在性检查与插入在同一事务内完成，唯一索引兜底并发写入。
func (s *ProfileService) CreatePersonalInfo(input PersonalInfoInput) (*db.PersonalInfo, error) {
	input = input.normalized()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	info := db.PersonalInfo{Slot: db.PersonalInfoSlot}
	input.apply(&info)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Unscoped().Model(&db.PersonalInfo{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count personal info: %w", err)
		}
		if count > 0 {
			return ErrPersonalInfoExists
		}
		if err := tx.Create(&info).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPersonalInfoExists
			}
			return fmt.Errorf("create personal info: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// UpdatePersonalInfo 原地更新已存在的个人信息
func (s *ProfileService) UpdatePersonalInfo(input PersonalInfoInput) (*db.PersonalInfo, error) {
	input = input.normalized()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	info, err := s.GetPersonalInfo()
	if err != nil {
		return nil, err
	}
	input.apply(info)

	if err := s.db.Save(info).Error; err != nil {
		return nil, fmt.Errorf("update personal info: %w", err)
	}
	return info, nil
}

// SavePersonalInfo 不存在时创建，存在时更新；created 表示是否新建。
func (s *ProfileService) SavePersonalInfo(input PersonalInfoInput) (*db.PersonalInfo, bool, error) {
	info, err := s.UpdatePersonalInfo(input)
	if err == nil {
		return info, false, nil
	}
	if !errors.Is(err, ErrPersonalInfoNotFound) {
		return nil, false, err
	}

	info, err = s.CreatePersonalInfo(input)
	if errors.Is(err, ErrPersonalInfoExists) {
		// 并发创建时退回到更新
		info, err = s.UpdatePersonalInfo(input)
		return info, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return info, true, nil
}

func (in PersonalInfoInput) normalized() PersonalInfoInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Title = strings.TrimSpace(in.Title)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Location = strings.TrimSpace(in.Location)
	in.Bio = strings.TrimSpace(in.Bio)
	in.AboutText = strings.TrimSpace(in.AboutText)
	in.ResumeHeadline = strings.TrimSpace(in.ResumeHeadline)
	in.ProfilePhoto = strings.TrimSpace(in.ProfilePhoto)
	in.Favicon = strings.TrimSpace(in.Favicon)
	return in
}

func (in PersonalInfoInput) apply(info *db.PersonalInfo) {
	info.Name = in.Name
	info.Title = in.Title
	info.Email = in.Email
	info.Phone = in.Phone
	info.Location = in.Location
	info.Bio = in.Bio
	info.AboutText = in.AboutText
	info.ResumeHeadline = in.ResumeHeadline
	info.ProfilePhoto = in.ProfilePhoto
	info.Favicon = in.Favicon
}

// ListSocialLinks 返回社交链接集合，默认按照排序值升序
// 如果 includeInactive 为 false，则过滤掉 IsActive=false 的条目
func (s *ProfileService) ListSocialLinks(includeInactive bool) ([]db.SocialLink, error) {
	query := s.db.Model(&db.SocialLink{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var items []db.SocialLink
	if err := query.Order("sort_order ASC, id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list social links: %w", err)
	}
	return items, nil
}

// GetSocialLink 根据主键获取社交链接
func (s *ProfileService) GetSocialLink(id uint) (*db.SocialLink, error) {
	var item db.SocialLink
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSocialLinkNotFound
		}
		return nil, fmt.Errorf("get social link: %w", err)
	}
	return &item, nil
}

// CreateSocialLink 新建社交链接，未指定排序时自动追加到末尾
func (s *ProfileService) CreateSocialLink(input SocialLinkInput) (*db.SocialLink, error) {
	input = input.normalized()
	if err := validateSocialLinkInput(input); err != nil {
		return nil, err
	}

	order, err := nextOrder(s.db, &db.SocialLink{}, input.Order)
	if err != nil {
		return nil, fmt.Errorf("resolve social link order: %w", err)
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	link := db.SocialLink{
		Platform: input.Platform,
		URL:      input.URL,
		Icon:     input.Icon,
		Order:    order,
		IsActive: active,
	}

	if err := s.db.Create(&link).Error; err != nil {
		return nil, fmt.Errorf("create social link: %w", err)
	}
	return &link, nil
}

// UpdateSocialLink 更新指定社交链接
func (s *ProfileService) UpdateSocialLink(id uint, input SocialLinkInput) (*db.SocialLink, error) {
	input = input.normalized()
	if err := validateSocialLinkInput(input); err != nil {
		return nil, err
	}

	link, err := s.GetSocialLink(id)
	if err != nil {
		return nil, err
	}

	link.Platform = input.Platform
	link.URL = input.URL
	link.Icon = input.Icon
	if input.Order != nil {
		link.Order = *input.Order
	}
	if input.IsActive != nil {
		link.IsActive = *input.IsActive
	}

	if err := s.db.Save(link).Error; err != nil {
		return nil, fmt.Errorf("update social link: %w", err)
	}
	return link, nil
}

// DeleteSocialLink 删除指定社交链接
func (s *ProfileService) DeleteSocialLink(id uint) error {
	result := s.db.Delete(&db.SocialLink{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete social link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSocialLinkNotFound
	}
	return nil
}

// ReorderSocialLinks 按给定顺序重排排序字段
// 传入的 IDs 会被依次赋值 0,1,2...，未包含的条目保持原排序
func (s *ProfileService) ReorderSocialLinks(ids []uint) error {
	return reorder(s.db, &db.SocialLink{}, ids)
}

func (in SocialLinkInput) normalized() SocialLinkInput {
	in.Platform = strings.ToLower(strings.TrimSpace(in.Platform))
	in.URL = strings.TrimSpace(in.URL)
	in.Icon = strings.TrimSpace(in.Icon)
	return in
}

func validateSocialLinkInput(input SocialLinkInput) error {
	err := validateInput(input)
	if input.Platform == "" || db.IsSocialPlatform(input.Platform) {
		return err
	}

	var verr *ValidationError
	if err == nil {
		verr = &ValidationError{Fields: map[string]string{}}
	} else if !errors.As(err, &verr) {
		return err
	}
	verr.Fields["platform"] = fmt.Sprintf("%q is not a valid choice.", input.Platform)
	return verr
}
