package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teamtracker/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrTeamNotFound 在指定队伍不存在时返回
	ErrTeamNotFound = errors.New("team not found")
	// ErrTeamInvalid 当必填字段缺失或为空时返回
	ErrTeamInvalid = errors.New("invalid team input")
	// ErrTeamHasOpenAssignments 当队伍仍有未完成任务而拒绝删除时返回
	ErrTeamHasOpenAssignments = errors.New("team has open assignments")
)

// TeamService 负责队伍数据的增删改查
// 删除策略：存在未完成任务时拒绝删除，否则连同历史任务一并清理
// 访问记录不随队伍删除，历史视图对缺失队伍使用兜底名称
type TeamService struct {
	db *gorm.DB
}

// TeamInput 定义创建/更新队伍时可配置字段
type TeamInput struct {
	Name   string
	Leader string
}

// TeamCurrentLocation 描述队伍当前所在地点的派生结果
type TeamCurrentLocation struct {
	LocationID   *uint
	LocationName string
}

// NewTeamService 构造 TeamService
func NewTeamService(gdb *gorm.DB) *TeamService {
	return &TeamService{db: gdb}
}

// List 返回全部队伍，按创建时间排序
func (s *TeamService) List(ctx context.Context) ([]db.Team, error) {
	var teams []db.Team
	if err := s.db.WithContext(ctx).Order("created_at").Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

// Get 根据 ID 获取队伍
func (s *TeamService) Get(ctx context.Context, id uint) (*db.Team, error) {
	var team db.Team
	if err := s.db.WithContext(ctx).First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return &team, nil
}

// Create 新建队伍
func (s *TeamService) Create(ctx context.Context, input TeamInput) (*db.Team, error) {
	name := strings.TrimSpace(input.Name)
	leader := strings.TrimSpace(input.Leader)
	if name == "" || leader == "" {
		return nil, ErrTeamInvalid
	}

	team := db.Team{Name: name, Leader: leader}
	if err := s.db.WithContext(ctx).Create(&team).Error; err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	return &team, nil
}

// Update 更新队伍
func (s *TeamService) Update(ctx context.Context, id uint, input TeamInput) (*db.Team, error) {
	name := strings.TrimSpace(input.Name)
	leader := strings.TrimSpace(input.Leader)
	if name == "" || leader == "" {
		return nil, ErrTeamInvalid
	}

	var existing db.Team
	if err := s.db.WithContext(ctx).First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}

	existing.Name = name
	existing.Leader = leader
	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update team: %w", err)
	}
	return &existing, nil
}

// Delete 删除队伍及其已完成的历史任务
// 仍有未完成任务时返回 ErrTeamHasOpenAssignments，不修改任何数据
func (s *TeamService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team db.Team
		if err := tx.First(&team, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeamNotFound
			}
			return fmt.Errorf("get team: %w", err)
		}

		var openCount int64
		if err := tx.Model(&db.Assignment{}).
			Where("team_id = ? AND is_completed = ?", id, false).
			Count(&openCount).Error; err != nil {
			return fmt.Errorf("count open assignments: %w", err)
		}
		if openCount > 0 {
			return ErrTeamHasOpenAssignments
		}

		if err := tx.Where("team_id = ?", id).Delete(&db.Assignment{}).Error; err != nil {
			return fmt.Errorf("delete assignments: %w", err)
		}
		if err := tx.Where("team_id = ?", id).Delete(&db.PlannedVisit{}).Error; err != nil {
			return fmt.Errorf("delete planned visits: %w", err)
		}
		if err := tx.Delete(&team).Error; err != nil {
			return fmt.Errorf("delete team: %w", err)
		}
		return nil
	})
	return err
}

// CurrentLocation 派生队伍当前地点：优先取最近的未完成任务，其次取最近一次签到
func (s *TeamService) CurrentLocation(ctx context.Context, teamID uint) (TeamCurrentLocation, error) {
	var assignment db.Assignment
	err := s.db.WithContext(ctx).
		Where("team_id = ? AND is_completed = ?", teamID, false).
		Order("created_at DESC").
		First(&assignment).Error
	if err == nil {
		return s.locationRef(ctx, assignment.LocationID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return TeamCurrentLocation{}, fmt.Errorf("find open assignment: %w", err)
	}

	var visit db.Visit
	err = s.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("visit_date DESC").
		First(&visit).Error
	if err == nil {
		return s.locationRef(ctx, visit.LocationID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return TeamCurrentLocation{}, fmt.Errorf("find last visit: %w", err)
	}

	return TeamCurrentLocation{}, nil
}

func (s *TeamService) locationRef(ctx context.Context, locationID uint) (TeamCurrentLocation, error) {
	var location db.Location
	if err := s.db.WithContext(ctx).First(&location, locationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TeamCurrentLocation{}, nil
		}
		return TeamCurrentLocation{}, fmt.Errorf("get location: %w", err)
	}
	id := location.ID
	return TeamCurrentLocation{LocationID: &id, LocationName: location.Name}, nil
}
