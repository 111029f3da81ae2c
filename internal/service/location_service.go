package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teamtracker/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrLocationNotFound 在指定地点不存在时返回
	ErrLocationNotFound = errors.New("location not found")
)

// LocationService 负责固定地点名录的查询
// 名录只读，派生字段由 VisitService 的签到事务维护
type LocationService struct {
	db *gorm.DB
}

// LocationStatus 描述地点及其访问汇总，用于总览视图
type LocationStatus struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	IsPreached    bool       `json:"is_preached"`
	LastVisitedAt *time.Time `json:"last_visited_at"`
	VisitCount    int        `json:"visit_count"`
}

// NewLocationService 构造 LocationService
func NewLocationService(gdb *gorm.DB) *LocationService {
	return &LocationService{db: gdb}
}

// List 返回全部地点，按名称排序
func (s *LocationService) List(ctx context.Context) ([]db.Location, error) {
	var locations []db.Location
	if err := s.db.WithContext(ctx).Order("name").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}

// Get 根据 ID 获取地点
func (s *LocationService) Get(ctx context.Context, id uint) (*db.Location, error) {
	var location db.Location
	if err := s.db.WithContext(ctx).First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &location, nil
}

// ListAvailable 返回对指定队伍尚无未完成任务的地点，用于分配和签到的候选列表
func (s *LocationService) ListAvailable(ctx context.Context, teamID uint) ([]db.Location, error) {
	if err := ensureTeamExists(ctx, s.db, teamID); err != nil {
		return nil, err
	}

	open := s.db.Model(&db.Assignment{}).
		Select("location_id").
		Where("team_id = ? AND is_completed = ?", teamID, false)

	var locations []db.Location
	if err := s.db.WithContext(ctx).
		Where("id NOT IN (?)", open).
		Order("name").
		Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("list available locations: %w", err)
	}
	return locations, nil
}

// StatusList 返回带访问次数汇总的地点列表
func (s *LocationService) StatusList(ctx context.Context) ([]LocationStatus, error) {
	statuses := make([]LocationStatus, 0)
	if err := s.db.WithContext(ctx).Model(&db.Location{}).
		Select(`locations.id, locations.name, locations.latitude, locations.longitude,
			locations.is_preached, locations.last_visited_at, COUNT(visits.id) AS visit_count`).
		Joins("LEFT JOIN visits ON visits.location_id = locations.id AND visits.deleted_at IS NULL").
		Group("locations.id").
		Order("locations.name").
		Scan(&statuses).Error; err != nil {
		return nil, fmt.Errorf("list location statuses: %w", err)
	}
	return statuses, nil
}

// ensureTeamExists 校验队伍存在，供跨服务的关联检查复用
func ensureTeamExists(ctx context.Context, gdb *gorm.DB, teamID uint) error {
	var count int64
	if err := gdb.WithContext(ctx).Model(&db.Team{}).Where("id = ?", teamID).Count(&count).Error; err != nil {
		return fmt.Errorf("check team: %w", err)
	}
	if count == 0 {
		return ErrTeamNotFound
	}
	return nil
}

// ensureLocationExists 校验地点存在
func ensureLocationExists(ctx context.Context, gdb *gorm.DB, locationID uint) error {
	var count int64
	if err := gdb.WithContext(ctx).Model(&db.Location{}).Where("id = ?", locationID).Count(&count).Error; err != nil {
		return fmt.Errorf("check location: %w", err)
	}
	if count == 0 {
		return ErrLocationNotFound
	}
	return nil
}
