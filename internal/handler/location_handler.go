package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamtracker/internal/db"
	"github.com/teamtracker/internal/service"
)

type locationPayload struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	IsPreached    bool       `json:"is_preached"`
	LastVisitedAt *time.Time `json:"last_visited_at"`
}

func locationResponse(location db.Location) locationPayload {
	return locationPayload{
		ID:            location.ID,
		Name:          location.Name,
		Latitude:      location.Latitude,
		Longitude:     location.Longitude,
		IsPreached:    location.IsPreached,
		LastVisitedAt: location.LastVisitedAt,
	}
}

// GetLocations 获取全部地点
func (a *API) GetLocations(c *gin.Context) {
	ctx, cancel := a.requestContext(c)
	defer cancel()

	locations, err := a.locations.List(ctx)
	if err != nil {
		if respondTimeout(c, err) {
			return
		}
		respondError(c, http.StatusInternalServerError, "获取地点列表失败")
		return
	}

	response := make([]locationPayload, 0, len(locations))
	for _, location := range locations {
		response = append(response, locationResponse(location))
	}
	c.JSON(http.StatusOK, response)
}

// GetAvailableLocations 获取对指定队伍可分配的地点
func (a *API) GetAvailableLocations(c *gin.Context) {
	teamID, err := parseUintQuery(c, "team_id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "team_id 参数不合法")
		return
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	locations, err := a.locations.ListAvailable(ctx, teamID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			respondError(c, http.StatusNotFound, "队伍不存在")
		case respondTimeout(c, err):
		default:
			respondError(c, http.StatusInternalServerError, "获取可分配地点失败")
		}
		return
	}

	response := make([]locationPayload, 0, len(locations))
	for _, location := range locations {
		response = append(response, locationResponse(location))
	}
	c.JSON(http.StatusOK, response)
}

// GetLocationStatus 获取带访问汇总的地点列表
func (a *API) GetLocationStatus(c *gin.Context) {
	ctx, cancel := a.requestContext(c)
	defer cancel()

	statuses, err := a.locations.StatusList(ctx)
	if err != nil {
		if respondTimeout(c, err) {
			return
		}
		respondError(c, http.StatusInternalServerError, "获取地点状态失败")
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// GetLocationVisits 获取指定地点的签到记录
func (a *API) GetLocationVisits(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "地点 ID 不合法")
		return
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	records, err := a.visits.HistoryForLocation(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLocationNotFound):
			respondError(c, http.StatusNotFound, "地点不存在")
		case respondTimeout(c, err):
		default:
			respondError(c, http.StatusInternalServerError, "获取地点签到记录失败")
		}
		return
	}
	c.JSON(http.StatusOK, visitHistoryResponse(records))
}
