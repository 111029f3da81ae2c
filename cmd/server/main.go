package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/teamtracker/internal/config"
	"github.com/teamtracker/internal/db"
	"github.com/teamtracker/internal/router"
	"github.com/teamtracker/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 地点名录为空时从 KML 文件播种
	ctx, cancel := context.WithTimeout(context.Background(), cfg.StorageTimeout)
	imported, err := service.NewLocationService(db.DB).SeedFromKML(ctx, cfg.LocationsKML)
	cancel()
	if err != nil {
		log.Printf("warning: failed to seed locations from %s: %v", cfg.LocationsKML, err)
	} else if imported > 0 {
		log.Printf("seeded %d locations from %s", imported, cfg.LocationsKML)
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(cfg.StorageTimeout)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
