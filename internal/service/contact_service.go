package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/folio/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// ContactService 处理公开联系表单的提交与后台查看
type ContactService struct {
	db     *gorm.DB
	policy *bluemonday.Policy
}

// NewContactService 构造 ContactService
func NewContactService(gdb *gorm.DB) *ContactService {
	return &ContactService{db: gdb, policy: bluemonday.StrictPolicy()}
}

// ContactInput 联系表单字段
type ContactInput struct {
	Name    string `field:"name" validate:"required,max=100"`
	Email   string `field:"email" validate:"required,email,max=254"`
	Subject string `field:"subject" validate:"required,max=200"`
	Message string `field:"message" validate:"required,max=5000"`
}

// Submit 清洗并校验输入后保存留言；校验失败时不写库
func (s *ContactService) Submit(input ContactInput) (*db.ContactMessage, error) {
	input = ContactInput{
		Name:    s.clean(input.Name),
		Email:   s.clean(input.Email),
		Subject: s.clean(input.Subject),
		Message: s.clean(input.Message),
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	message := db.ContactMessage{
		Name:    input.Name,
		Email:   input.Email,
		Subject: input.Subject,
		Message: input.Message,
		IsRead:  false,
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("create contact message: %w", err)
	}
	return &message, nil
}

// clean 去除全部 HTML 标签并裁剪空白，结果为纯文本；转义留给输出端
func (s *ContactService) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(strings.TrimSpace(value))))
}

// List 按提交时间倒序返回留言；unreadOnly 只返回未读
func (s *ContactService) List(unreadOnly bool) ([]db.ContactMessage, error) {
	query := s.db.Model(&db.ContactMessage{})
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var items []db.ContactMessage
	if err := query.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return items, nil
}

// Get 根据主键获取留言
func (s *ContactService) Get(id uint) (*db.ContactMessage, error) {
	var item db.ContactMessage
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactMessageNotFound
		}
		return nil, fmt.Errorf("get contact message: %w", err)
	}
	return &item, nil
}

// MarkRead 只修改已读标记，留言内容保持不变
func (s *ContactService) MarkRead(id uint, read bool) (*db.ContactMessage, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(item).Update("is_read", read).Error; err != nil {
		return nil, fmt.Errorf("mark contact message: %w", err)
	}
	return item, nil
}

// CountUnread 返回未读留言数量
func (s *ContactService) CountUnread() (int64, error) {
	var count int64
	if err := s.db.Model(&db.ContactMessage{}).Where("is_read = ?", false).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}
