package service

import (
	"testing"

	"github.com/teamtracker/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Location{}, &db.Team{}, &db.Assignment{}, &db.Visit{}, &db.PlannedVisit{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func seedLocation(t *testing.T, name string) db.Location {
	t.Helper()
	location := db.Location{Name: name, Latitude: 36.85, Longitude: -76.28}
	if err := db.DB.Create(&location).Error; err != nil {
		t.Fatalf("failed to seed location: %v", err)
	}
	return location
}

func seedTeam(t *testing.T, name, leader string) db.Team {
	t.Helper()
	team := db.Team{Name: name, Leader: leader}
	if err := db.DB.Create(&team).Error; err != nil {
		t.Fatalf("failed to seed team: %v", err)
	}
	return team
}
