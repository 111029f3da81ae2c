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
	// ErrAssignmentNotFound 在指定任务不存在时返回
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrAssignmentInvalid 当分配请求缺少地点时返回
	ErrAssignmentInvalid = errors.New("invalid assignment input")
)

// AssignmentService 负责队伍任务的分配与完成状态管理
// 分配幂等：同一 (team, location) 已有未完成任务或当日已完成任务时跳过
// 完成状态可双向切换，签到是进入完成态的第二条路径（见 VisitService）
type AssignmentService struct {
	db *gorm.DB
}

// AssignmentItem 描述一条任务及其地点名称，按分配时间排序返回
type AssignmentItem struct {
	ID            uint       `json:"id"`
	TeamID        uint       `json:"team_id"`
	LocationID    uint       `json:"location_id"`
	LocationName  string     `json:"location_name"`
	IsCompleted   bool       `json:"is_completed"`
	AssignedDate  time.Time  `json:"assigned_date"`
	CompletedDate *time.Time `json:"completed_date"`
}

// NewAssignmentService 构造 AssignmentService
func NewAssignmentService(gdb *gorm.DB) *AssignmentService {
	return &AssignmentService{db: gdb}
}

// Assign 为队伍批量分配地点，返回本次实际创建的任务
// 先整体校验队伍与全部地点，再在同一事务内逐个做幂等检查
func (s *AssignmentService) Assign(ctx context.Context, teamID uint, locationIDs []uint) ([]AssignmentItem, error) {
	ids := dedupeIDs(locationIDs)
	if len(ids) == 0 {
		return nil, ErrAssignmentInvalid
	}

	if err := ensureTeamExists(ctx, s.db, teamID); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := ensureLocationExists(ctx, s.db, id); err != nil {
			return nil, err
		}
	}

	dayStart := startOfDay(time.Now())
	var created []db.Assignment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, locationID := range ids {
			var blocking int64
			if err := tx.Model(&db.Assignment{}).
				Where("team_id = ? AND location_id = ?", teamID, locationID).
				Where("is_completed = ? OR completed_date >= ?", false, dayStart).
				Count(&blocking).Error; err != nil {
				return fmt.Errorf("check existing assignment: %w", err)
			}
			if blocking > 0 {
				continue
			}

			assignment := db.Assignment{TeamID: teamID, LocationID: locationID}
			if err := tx.Create(&assignment).Error; err != nil {
				return fmt.Errorf("create assignment: %w", err)
			}
			created = append(created, assignment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]AssignmentItem, 0, len(created))
	for _, assignment := range created {
		item, err := s.itemFor(ctx, assignment)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ListForTeam 返回队伍的全部任务，最早分配的在前
func (s *AssignmentService) ListForTeam(ctx context.Context, teamID uint) ([]AssignmentItem, error) {
	if err := ensureTeamExists(ctx, s.db, teamID); err != nil {
		return nil, err
	}

	items := make([]AssignmentItem, 0)
	if err := s.db.WithContext(ctx).Model(&db.Assignment{}).
		Select(`assignments.id, assignments.team_id, assignments.location_id,
			COALESCE(locations.name, '') AS location_name,
			assignments.is_completed, assignments.created_at AS assigned_date, assignments.completed_date`).
		Joins("LEFT JOIN locations ON locations.id = assignments.location_id AND locations.deleted_at IS NULL").
		Where("assignments.team_id = ?", teamID).
		Order("assignments.created_at").
		Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return items, nil
}

// SetCompletion 切换任务完成状态
// 置为完成时写入完成时间，取消完成时清空
func (s *AssignmentService) SetCompletion(ctx context.Context, assignmentID uint, isCompleted bool) (*AssignmentItem, error) {
	var assignment db.Assignment
	if err := s.db.WithContext(ctx).First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}

	var completedDate *time.Time
	if isCompleted {
		now := time.Now()
		completedDate = &now
	}

	if err := s.db.WithContext(ctx).Model(&assignment).
		Updates(map[string]interface{}{
			"is_completed":   isCompleted,
			"completed_date": completedDate,
		}).Error; err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}

	assignment.IsCompleted = isCompleted
	assignment.CompletedDate = completedDate
	item, err := s.itemFor(ctx, assignment)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *AssignmentService) itemFor(ctx context.Context, assignment db.Assignment) (AssignmentItem, error) {
	var location db.Location
	name := ""
	err := s.db.WithContext(ctx).First(&location, assignment.LocationID).Error
	if err == nil {
		name = location.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AssignmentItem{}, fmt.Errorf("get location: %w", err)
	}

	return AssignmentItem{
		ID:            assignment.ID,
		TeamID:        assignment.TeamID,
		LocationID:    assignment.LocationID,
		LocationName:  name,
		IsCompleted:   assignment.IsCompleted,
		AssignedDate:  assignment.CreatedAt,
		CompletedDate: assignment.CompletedDate,
	}, nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
