package db

import "gorm.io/gorm"

// Team 定义了队伍模型
// Name/Leader 为必填字段，创建和更新时都会校验
type Team struct {
	gorm.Model
	Name   string
	Leader string
}
