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
	// ErrPlanInvalid 当计划请求缺少地点或日期格式不合法时返回
	ErrPlanInvalid = errors.New("invalid plan input")
)

const planDateFormat = "2006-01-02"

// PlannedVisitService 负责队伍的出访排期
// 同一天同一地点只排一次，重复提交直接跳过
type PlannedVisitService struct {
	db *gorm.DB
}

// PlannedItem 描述一条即将到来的计划
type PlannedItem struct {
	LocationID   uint      `json:"location_id"`
	LocationName string    `json:"location_name"`
	PlannedDate  time.Time `json:"planned_date"`
	Status       string    `json:"status"`
}

// NewPlannedVisitService 构造 PlannedVisitService
func NewPlannedVisitService(gdb *gorm.DB) *PlannedVisitService {
	return &PlannedVisitService{db: gdb}
}

// Plan 为队伍在指定日期批量排入地点，返回实际新建的条数
func (s *PlannedVisitService) Plan(ctx context.Context, teamID uint, locationIDs []uint, date string) (int, error) {
	ids := dedupeIDs(locationIDs)
	if len(ids) == 0 {
		return 0, ErrPlanInvalid
	}
	plannedDate, err := time.ParseInLocation(planDateFormat, date, time.Local)
	if err != nil {
		return 0, ErrPlanInvalid
	}

	if err := ensureTeamExists(ctx, s.db, teamID); err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := ensureLocationExists(ctx, s.db, id); err != nil {
			return 0, err
		}
	}

	created := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, locationID := range ids {
			var existing int64
			if err := tx.Model(&db.PlannedVisit{}).
				Where("location_id = ? AND planned_date = ?", locationID, plannedDate).
				Count(&existing).Error; err != nil {
				return fmt.Errorf("check planned visit: %w", err)
			}
			if existing > 0 {
				continue
			}

			plan := db.PlannedVisit{
				TeamID:      teamID,
				LocationID:  locationID,
				PlannedDate: plannedDate,
				Status:      db.PlanStatusPlanned,
			}
			if err := tx.Create(&plan).Error; err != nil {
				return fmt.Errorf("create planned visit: %w", err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// Upcoming 返回队伍今天及以后的计划，按日期和地点名称排序
func (s *PlannedVisitService) Upcoming(ctx context.Context, teamID uint) ([]PlannedItem, error) {
	if err := ensureTeamExists(ctx, s.db, teamID); err != nil {
		return nil, err
	}

	items := make([]PlannedItem, 0)
	if err := s.db.WithContext(ctx).Model(&db.PlannedVisit{}).
		Select(`planned_visits.location_id, COALESCE(locations.name, '') AS location_name,
			planned_visits.planned_date, planned_visits.status`).
		Joins("LEFT JOIN locations ON locations.id = planned_visits.location_id AND locations.deleted_at IS NULL").
		Where("planned_visits.team_id = ? AND planned_visits.planned_date >= ?", teamID, startOfDay(time.Now())).
		Order("planned_visits.planned_date, location_name").
		Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("list planned visits: %w", err)
	}
	return items, nil
}
