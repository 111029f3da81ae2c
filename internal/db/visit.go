package db

import (
	"time"

	"gorm.io/gorm"
)

// Visit 记录一次地点签到，是派生状态的事实来源
// 访问记录只追加，创建后不提供修改或删除
// Notes 以 Markdown 文本存储，渲染在读取侧完成
type Visit struct {
	gorm.Model
	TeamID     uint      `gorm:"index"`
	LocationID uint      `gorm:"index"`
	VisitDate  time.Time `gorm:"index"`
	IsPreached bool
	Notes      string
}
