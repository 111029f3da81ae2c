package db

import (
	"time"

	"gorm.io/gorm"
)

// 计划状态仅使用以下三种取值
const (
	PlanStatusPlanned   = "planned"
	PlanStatusCompleted = "completed"
	PlanStatusCancelled = "cancelled"
)

// PlannedVisit 表示某个工作日的出访计划
// 同一天同一地点只排一次，去重在排期事务内完成
type PlannedVisit struct {
	gorm.Model
	TeamID      uint      `gorm:"index"`
	LocationID  uint      `gorm:"index"`
	PlannedDate time.Time `gorm:"index"`
	Status      string
}
