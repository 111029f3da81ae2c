package db

import (
	"time"

	"gorm.io/gorm"
)

// Location 表示固定名录中的一个地点
// 名录在部署时从 KML 文件一次性导入，正常运行中不增删
// IsPreached/LastVisitedAt 是派生字段，只能由访问记录的写入流程更新
type Location struct {
	gorm.Model
	Name          string  `gorm:"index"`
	Latitude      float64
	Longitude     float64
	IsPreached    bool `gorm:"index"`
	LastVisitedAt *time.Time
}
