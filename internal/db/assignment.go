package db

import (
	"time"

	"gorm.io/gorm"
)

// Assignment 记录分配给队伍的地点任务
// 同一 (team, location) 最多存在一条未完成记录，幂等性由分配事务保证
// CompletedDate 在勾选完成时写入，取消完成时清空
type Assignment struct {
	gorm.Model
	TeamID        uint `gorm:"index"`
	LocationID    uint `gorm:"index"`
	IsCompleted   bool `gorm:"index"`
	CompletedDate *time.Time
}
