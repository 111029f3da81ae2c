package service

import (
	"context"
	"fmt"
	"math"

	"github.com/teamtracker/internal/db"
	"gorm.io/gorm"
)

// StatsService 按需从台账和名录汇总统计数据，不做缓存
// 活跃队伍定义为至少有一个未完成任务的队伍，同时返回队伍总数供客户端对照
type StatsService struct {
	db *gorm.DB
}

// Statistics 汇总面板展示所需的全部计数
type Statistics struct {
	TotalLocations    int64 `json:"total_locations"`
	PreachedLocations int64 `json:"preached_locations"`
	TotalVisits       int64 `json:"total_visits"`
	TotalTeams        int64 `json:"total_teams"`
	ActiveTeams       int64 `json:"active_teams"`
	ProgressPercent   int   `json:"progress_percent"`
}

// NewStatsService 构造 StatsService
func NewStatsService(gdb *gorm.DB) *StatsService {
	return &StatsService{db: gdb}
}

// Stats 计算当前统计快照
// 地点总数为零时进度按 0% 返回，避免除零
func (s *StatsService) Stats(ctx context.Context) (Statistics, error) {
	var stats Statistics

	if err := s.db.WithContext(ctx).Model(&db.Location{}).Count(&stats.TotalLocations).Error; err != nil {
		return Statistics{}, fmt.Errorf("count locations: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&db.Location{}).
		Where("is_preached = ?", true).
		Count(&stats.PreachedLocations).Error; err != nil {
		return Statistics{}, fmt.Errorf("count preached locations: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&db.Visit{}).Count(&stats.TotalVisits).Error; err != nil {
		return Statistics{}, fmt.Errorf("count visits: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&db.Team{}).Count(&stats.TotalTeams).Error; err != nil {
		return Statistics{}, fmt.Errorf("count teams: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&db.Assignment{}).
		Where("is_completed = ?", false).
		Distinct("team_id").
		Count(&stats.ActiveTeams).Error; err != nil {
		return Statistics{}, fmt.Errorf("count active teams: %w", err)
	}

	if stats.TotalLocations > 0 {
		ratio := float64(stats.PreachedLocations) / float64(stats.TotalLocations)
		stats.ProgressPercent = int(math.Round(ratio * 100))
	}
	return stats, nil
}
