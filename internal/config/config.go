package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabasePath   string
	LocationsKML   string
	GinMode        string
	StorageTimeout time.Duration
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "teamtracker.db"
	}

	locationsKML := strings.TrimSpace(os.Getenv("LOCATIONS_KML"))
	if locationsKML == "" {
		locationsKML = "data/locations.kml"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	storageTimeout := 5000 * time.Millisecond
	if raw := strings.TrimSpace(os.Getenv("STORAGE_TIMEOUT_MS")); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			storageTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabasePath:   databasePath,
		LocationsKML:   locationsKML,
		GinMode:        ginMode,
		StorageTimeout: storageTimeout,
	}
}
