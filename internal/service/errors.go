package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("not found")
	// ErrConflict 写入与现有数据冲突
	ErrConflict = errors.New("conflict")
)

var (
	ErrPersonalInfoNotFound   = fmt.Errorf("personal information not configured: %w", ErrNotFound)
	ErrPersonalInfoExists     = fmt.Errorf("personal information already exists: %w", ErrConflict)
	ErrSocialLinkNotFound     = fmt.Errorf("social link: %w", ErrNotFound)
	ErrSkillCategoryNotFound  = fmt.Errorf("skill category: %w", ErrNotFound)
	ErrSkillNotFound          = fmt.Errorf("skill: %w", ErrNotFound)
	ErrProjectNotFound        = fmt.Errorf("project: %w", ErrNotFound)
	ErrProjectSlugTaken       = fmt.Errorf("project slug already in use: %w", ErrConflict)
	ErrEducationNotFound      = fmt.Errorf("education: %w", ErrNotFound)
	ErrCertificationNotFound  = fmt.Errorf("certification: %w", ErrNotFound)
	ErrCVNotFound             = fmt.Errorf("cv: %w", ErrNotFound)
	ErrNoActiveCV             = fmt.Errorf("no active cv: %w", ErrNotFound)
	ErrContactMessageNotFound = fmt.Errorf("contact message: %w", ErrNotFound)
)

// ValidationError 携带逐字段的校验信息，key 为对外字段名。
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
