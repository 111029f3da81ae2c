package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/teamtracker/internal/db"
	"github.com/teamtracker/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(storageTimeout time.Duration) *gin.Engine {
	r := gin.Default()

	api := handler.NewAPI(db.DB, storageTimeout)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 业务 API 路由
	group := r.Group("/api")
	group.Use(requestID())
	{
		group.GET("/locations", api.GetLocations)
		group.GET("/locations/available", api.GetAvailableLocations)
		group.GET("/locations/status", api.GetLocationStatus)
		group.GET("/locations/:id/visits", api.GetLocationVisits)

		group.GET("/statistics", api.GetStatistics)

		group.GET("/teams", api.GetTeams)
		group.POST("/teams", api.CreateTeam)
		group.PUT("/teams/:id", api.UpdateTeam)
		group.DELETE("/teams/:id", api.DeleteTeam)

		group.GET("/teams/:id/assignments", api.GetTeamAssignments)
		group.POST("/teams/:id/assignments", api.AssignLocations)
		group.PUT("/teams/:id/assignments/:assignmentId", api.UpdateAssignment)

		group.POST("/teams/:id/plan", api.PlanVisits)
		group.GET("/teams/:id/planned", api.GetPlannedVisits)

		group.POST("/visits", api.CreateVisit)
		group.GET("/visits/history", api.GetVisitHistory)
	}

	return r
}

// requestID 为每个请求回写 X-Request-Id，便于客户端排查重试
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}
