package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/folio/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCVActivationConflict 并发激活被唯一索引拦截
var ErrCVActivationConflict = fmt.Errorf("another cv was activated concurrently: %w", ErrConflict)

// CVService 管理简历文件记录，并保证同一时刻最多一份处于激活状态
type CVService struct {
	db *gorm.DB
}

// NewCVService 构造 CVService
func NewCVService(gdb *gorm.DB) *CVService {
	return &CVService{db: gdb}
}

// CVInput 描述简历记录的可写字段；File 为媒体库中的 key
type CVInput struct {
	Title    string `field:"title" validate:"max=200"`
	File     string `field:"file" validate:"required,max=255"`
	IsActive bool
}

// List 按上传时间倒序返回全部简历
func (s *CVService) List() ([]db.CV, error) {
	var items []db.CV
	if err := s.db.Order("uploaded_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list cvs: %w", err)
	}
	return items, nil
}

// Get 根据主键获取简历
func (s *CVService) Get(id uint) (*db.CV, error) {
	var item db.CV
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCVNotFound
		}
		return nil, fmt.Errorf("get cv: %w", err)
	}
	return &item, nil
}

// Active 返回当前激活的简历
func (s *CVService) Active() (*db.CV, error) {
	var item db.CV
	if err := s.db.Where("is_active = ?", true).Order("uploaded_at DESC, id DESC").First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveCV
		}
		return nil, fmt.Errorf("get active cv: %w", err)
	}
	return &item, nil
}

// Create 新建简历；IsActive=true 时同一事务内先停用其余简历
func (s *CVService) Create(input CVInput) (*db.CV, error) {
	input = input.normalized()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	item := db.CV{Title: input.Title, File: input.File, IsActive: input.IsActive}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if item.IsActive {
			if err := deactivateCVs(tx, 0); err != nil {
				return err
			}
		}
		if err := tx.Create(&item).Error; err != nil {
			return translateCVWriteError(err, "create cv")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update 更新简历；写入 IsActive=true 时切换激活状态
func (s *CVService) Update(id uint, input CVInput) (*db.CV, error) {
	input = input.normalized()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var item db.CV
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if input.IsActive {
			if err := deactivateCVs(tx, id); err != nil {
				return err
			}
		}
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCVNotFound
			}
			return fmt.Errorf("find cv: %w", err)
		}

		item.Title = input.Title
		item.File = input.File
		item.IsActive = input.IsActive
		if err := tx.Save(&item).Error; err != nil {
			return translateCVWriteError(err, "update cv")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Activate 将指定简历设为唯一激活项
func (s *CVService) Activate(id uint) (*db.CV, error) {
	var item db.CV
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := deactivateCVs(tx, id); err != nil {
			return err
		}
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCVNotFound
			}
			return fmt.Errorf("find cv: %w", err)
		}
		if err := tx.Model(&item).Update("is_active", true).Error; err != nil {
			return translateCVWriteError(err, "activate cv")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete 物理删除简历记录，媒体文件保留
func (s *CVService) Delete(id uint) error {
	result := s.db.Unscoped().Delete(&db.CV{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete cv: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCVNotFound
	}
	return nil
}

// deactivateCVs 锁定全部简历行后停用除 keepID 外的激活项，
// 并发的激活事务会在行锁上排队而不是各自读到旧状态。
func deactivateCVs(tx *gorm.DB, keepID uint) error {
	var locked []db.CV
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Find(&locked).Error; err != nil {
		return fmt.Errorf("lock cvs: %w", err)
	}

	query := tx.Model(&db.CV{}).Where("is_active = ?", true)
	if keepID != 0 {
		query = query.Where("id <> ?", keepID)
	}
	if err := query.Update("is_active", false).Error; err != nil {
		return fmt.Errorf("deactivate cvs: %w", err)
	}
	return nil
}

func translateCVWriteError(err error, action string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrCVActivationConflict
	}
	return fmt.Errorf("%s: %w", action, err)
}

func (in CVInput) normalized() CVInput {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		in.Title = db.DefaultCVTitle
	}
	in.File = strings.TrimSpace(in.File)
	return in
}
