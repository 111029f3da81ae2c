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
	// ErrVisitInvalid 当签到请求缺少队伍或地点时返回
	ErrVisitInvalid = errors.New("invalid visit input")
)

// 历史视图中引用已不存在时的兜底名称
const (
	deletedTeamLabel     = "已删除的队伍"
	unknownLocationLabel = "未知地点"
)

// VisitService 负责签到台账
// 记录签到是唯一可以改写地点派生状态的入口
// 追加访问、完成匹配任务、刷新地点状态三步在同一事务内完成
type VisitService struct {
	db *gorm.DB
}

// VisitInput 定义一次签到的输入
type VisitInput struct {
	TeamID     uint
	LocationID uint
	Notes      string
	IsPreached bool
}

// VisitRecord 描述一条历史记录，连表取当下的队伍与地点名称
type VisitRecord struct {
	ID           uint      `json:"id"`
	TeamID       uint      `json:"team_id"`
	LocationID   uint      `json:"location_id"`
	VisitDate    time.Time `json:"visit_date"`
	IsPreached   bool      `json:"is_preached"`
	Notes        string    `json:"notes"`
	TeamName     string    `json:"team_name"`
	LocationName string    `json:"location_name"`
}

// NewVisitService 构造 VisitService
func NewVisitService(gdb *gorm.DB) *VisitService {
	return &VisitService{db: gdb}
}

// Record 记录一次签到
// 事务内依次：追加访问记录 → 完成匹配的未完成任务（完成时间取访问时间）→
// 重算地点的 is_preached 与 last_visited_at。任一步失败则整体回滚。
func (s *VisitService) Record(ctx context.Context, input VisitInput) (*db.Visit, error) {
	if input.TeamID == 0 || input.LocationID == 0 {
		return nil, ErrVisitInvalid
	}
	if err := ensureTeamExists(ctx, s.db, input.TeamID); err != nil {
		return nil, err
	}
	if err := ensureLocationExists(ctx, s.db, input.LocationID); err != nil {
		return nil, err
	}

	visit := db.Visit{
		TeamID:     input.TeamID,
		LocationID: input.LocationID,
		VisitDate:  time.Now(),
		IsPreached: input.IsPreached,
		Notes:      input.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&visit).Error; err != nil {
			return fmt.Errorf("create visit: %w", err)
		}

		var assignment db.Assignment
		err := tx.Where("team_id = ? AND location_id = ? AND is_completed = ?",
			input.TeamID, input.LocationID, false).
			Order("created_at").
			First(&assignment).Error
		switch {
		case err == nil:
			if err := tx.Model(&assignment).Updates(map[string]interface{}{
				"is_completed":   true,
				"completed_date": visit.VisitDate,
			}).Error; err != nil {
				return fmt.Errorf("complete assignment: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// 计划外签到，没有任务需要完成
		default:
			return fmt.Errorf("find open assignment: %w", err)
		}

		return refreshLocationState(tx, input.LocationID)
	})
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// History 返回全部签到记录，最新的在前
// 队伍或地点已删除时使用兜底名称，历史记录本身永不丢失
func (s *VisitService) History(ctx context.Context) ([]VisitRecord, error) {
	return s.history(ctx, nil)
}

// HistoryForLocation 返回指定地点的签到记录，最新的在前
func (s *VisitService) HistoryForLocation(ctx context.Context, locationID uint) ([]VisitRecord, error) {
	if err := ensureLocationExists(ctx, s.db, locationID); err != nil {
		return nil, err
	}
	return s.history(ctx, &locationID)
}

func (s *VisitService) history(ctx context.Context, locationID *uint) ([]VisitRecord, error) {
	query := s.db.WithContext(ctx).Model(&db.Visit{}).
		Select(`visits.id, visits.team_id, visits.location_id, visits.visit_date,
			visits.is_preached, visits.notes,
			COALESCE(teams.name, '') AS team_name,
			COALESCE(locations.name, '') AS location_name`).
		Joins("LEFT JOIN teams ON teams.id = visits.team_id AND teams.deleted_at IS NULL").
		Joins("LEFT JOIN locations ON locations.id = visits.location_id AND locations.deleted_at IS NULL").
		Order("visits.visit_date DESC")
	if locationID != nil {
		query = query.Where("visits.location_id = ?", *locationID)
	}

	var records []VisitRecord
	if err := query.Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("list visit history: %w", err)
	}

	for i := range records {
		if records[i].TeamName == "" {
			records[i].TeamName = deletedTeamLabel
		}
		if records[i].LocationName == "" {
			records[i].LocationName = unknownLocationLabel
		}
	}
	return records, nil
}

// refreshLocationState 以台账为准重算地点派生字段
// is_preached 从存在性判断得出，追加式台账保证其单调不回退
func refreshLocationState(tx *gorm.DB, locationID uint) error {
	var preachedCount int64
	if err := tx.Model(&db.Visit{}).
		Where("location_id = ? AND is_preached = ?", locationID, true).
		Count(&preachedCount).Error; err != nil {
		return fmt.Errorf("count preached visits: %w", err)
	}

	var latest db.Visit
	if err := tx.Where("location_id = ?", locationID).
		Order("visit_date DESC").
		First(&latest).Error; err != nil {
		return fmt.Errorf("find latest visit: %w", err)
	}

	if err := tx.Model(&db.Location{}).
		Where("id = ?", locationID).
		Updates(map[string]interface{}{
			"is_preached":     preachedCount > 0,
			"last_visited_at": latest.VisitDate,
		}).Error; err != nil {
		return fmt.Errorf("update location state: %w", err)
	}
	return nil
}
