package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamtracker/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	locations   *service.LocationService
	teams       *service.TeamService
	assignments *service.AssignmentService
	visits      *service.VisitService
	plans       *service.PlannedVisitService
	stats       *service.StatsService
	timeout     time.Duration
}

const defaultStorageTimeout = 5 * time.Second

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, storageTimeout time.Duration) *API {
	if storageTimeout <= 0 {
		storageTimeout = defaultStorageTimeout
	}

	return &API{
		db:          gdb,
		locations:   service.NewLocationService(gdb),
		teams:       service.NewTeamService(gdb),
		assignments: service.NewAssignmentService(gdb),
		visits:      service.NewVisitService(gdb),
		plans:       service.NewPlannedVisitService(gdb),
		stats:       service.NewStatsService(gdb),
		timeout:     storageTimeout,
	}
}

// requestContext 基于请求上下文派生带存储超时的上下文
// 所有存储访问都必须经由它，超时在各 handler 中映射为 503
func (a *API) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), a.timeout)
}
