package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/folio/internal/db"
	"gorm.io/gorm"
)

// CertificationService 管理证书
type CertificationService struct {
	db *gorm.DB
}

// NewCertificationService 构造 CertificationService
func NewCertificationService(gdb *gorm.DB) *CertificationService {
	return &CertificationService{db: gdb}
}

// CertificationInput 描述证书的可写字段
type CertificationInput struct {
	Name          string    `field:"name" validate:"required,max=200"`
	Issuer        string    `field:"issuer" validate:"required,max=200"`
	IssueDate     time.Time `field:"issue_date" validate:"required"`
	ExpiryDate    *time.Time
	CredentialID  string `field:"credential_id" validate:"max=200"`
	CredentialURL string `field:"credential_url" validate:"omitempty,url,max=255"`
	Image         string `field:"image" validate:"max=255"`
	Order         *int
}

// List 按 order 升序、颁发时间倒序返回全部证书
func (s *CertificationService) List() ([]db.Certification, error) {
	var items []db.Certification
	if err := s.db.Order("sort_order ASC, issue_date DESC, id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list certifications: %w", err)
	}
	return items, nil
}

// Get 根据主键获取证书
func (s *CertificationService) Get(id uint) (*db.Certification, error) {
	var item db.Certification
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificationNotFound
		}
		return nil, fmt.Errorf("get certification: %w", err)
	}
	return &item, nil
}

// Create 新建证书
func (s *CertificationService) Create(input CertificationInput) (*db.Certification, error) {
	input = input.normalized()
	if err := validateCertificationInput(input); err != nil {
		return nil, err
	}

	order, err := nextOrder(s.db, &db.Certification{}, input.Order)
	if err != nil {
		return nil, fmt.Errorf("resolve certification order: %w", err)
	}

	item := db.Certification{}
	input.apply(&item)
	item.Order = order

	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create certification: %w", err)
	}
	return &item, nil
}

// Update 更新证书
func (s *CertificationService) Update(id uint, input CertificationInput) (*db.Certification, error) {
	input = input.normalized()
	if err := validateCertificationInput(input); err != nil {
		return nil, err
	}

	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	input.apply(item)

	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("update certification: %w", err)
	}
	return item, nil
}

// Delete 删除证书
func (s *CertificationService) Delete(id uint) error {
	result := s.db.Delete(&db.Certification{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete certification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCertificationNotFound
	}
	return nil
}

func validateCertificationInput(input CertificationInput) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if input.ExpiryDate != nil && input.ExpiryDate.Before(input.IssueDate) {
		return newFieldError("expiry_date", "Expiry date cannot be before the issue date.")
	}
	return nil
}

func (in CertificationInput) normalized() CertificationInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Issuer = strings.TrimSpace(in.Issuer)
	in.CredentialID = strings.TrimSpace(in.CredentialID)
	in.CredentialURL = strings.TrimSpace(in.CredentialURL)
	in.Image = strings.TrimSpace(in.Image)
	return in
}

func (in CertificationInput) apply(item *db.Certification) {
	item.Name = in.Name
	item.Issuer = in.Issuer
	item.IssueDate = in.IssueDate
	item.ExpiryDate = in.ExpiryDate
	item.CredentialID = in.CredentialID
	item.CredentialURL = in.CredentialURL
	item.Image = in.Image
	if in.Order != nil {
		item.Order = *in.Order
	}
}
