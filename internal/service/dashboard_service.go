package service

import (
	"fmt"

	"github.com/folio/internal/db"
	"gorm.io/gorm"
)

// DashboardStats 后台首页展示的记录数量
type DashboardStats struct {
	Projects       int64 `json:"projects"`
	ActiveProjects int64 `json:"active_projects"`
	Skills         int64 `json:"skills"`
	Categories     int64 `json:"skill_categories"`
	Education      int64 `json:"education"`
	Certifications int64 `json:"certifications"`
	SocialLinks    int64 `json:"social_links"`
	CVs            int64 `json:"cvs"`
	Messages       int64 `json:"messages"`
	UnreadMessages int64 `json:"unread_messages"`
	HasProfile     bool  `json:"has_personal_info"`
}

// DashboardService 汇总各类内容的数量
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService 构造 DashboardService
func NewDashboardService(gdb *gorm.DB) *DashboardService {
	return &DashboardService{db: gdb}
}

// Stats 统计各表记录数
func (s *DashboardService) Stats() (DashboardStats, error) {
	var stats DashboardStats
	var profiles int64

	counts := []struct {
		model interface{}
		where string
		dst   *int64
	}{
		{&db.Project{}, "", &stats.Projects},
		{&db.Project{}, "is_active = true", &stats.ActiveProjects},
		{&db.Skill{}, "", &stats.Skills},
		{&db.SkillCategory{}, "", &stats.Categories},
		{&db.Education{}, "", &stats.Education},
		{&db.Certification{}, "", &stats.Certifications},
		{&db.SocialLink{}, "", &stats.SocialLinks},
		{&db.CV{}, "", &stats.CVs},
		{&db.ContactMessage{}, "", &stats.Messages},
		{&db.ContactMessage{}, "is_read = false", &stats.UnreadMessages},
		{&db.PersonalInfo{}, "", &profiles},
	}

	for _, item := range counts {
		query := s.db.Model(item.model)
		if item.where != "" {
			query = query.Where(item.where)
		}
		if err := query.Count(item.dst).Error; err != nil {
			return DashboardStats{}, fmt.Errorf("count dashboard stats: %w", err)
		}
	}

	stats.HasProfile = profiles > 0
	return stats, nil
}
