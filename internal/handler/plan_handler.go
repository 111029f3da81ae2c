package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamtracker/internal/service"
)

type planRequest struct {
	LocationIDs []uint `json:"location_ids"`
	Date        string `json:"date"`
}

// PlanVisits 为队伍在指定日期排入出访计划
func (a *API) PlanVisits(c *gin.Context) {
	teamID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "队伍 ID 不合法")
		return
	}

	var req planRequest
	if !bindJSON(c, &req, "请求体不合法") {
		return
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	created, err := a.plans.Plan(ctx, teamID, req.LocationIDs, req.Date)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanInvalid):
			respondError(c, http.StatusBadRequest, "计划需要至少一个地点和 YYYY-MM-DD 格式的日期")
		case errors.Is(err, service.ErrTeamNotFound):
			respondError(c, http.StatusNotFound, "队伍不存在")
		case errors.Is(err, service.ErrLocationNotFound):
			respondError(c, http.StatusNotFound, "地点不存在")
		case respondTimeout(c, err):
		default:
			respondError(c, http.StatusInternalServerError, "创建出访计划失败")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"created": created})
}

// GetPlannedVisits 获取队伍今天及以后的出访计划
func (a *API) GetPlannedVisits(c *gin.Context) {
	teamID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "队伍 ID 不合法")
		return
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	items, err := a.plans.Upcoming(ctx, teamID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			respondError(c, http.StatusNotFound, "队伍不存在")
		case respondTimeout(c, err):
		default:
			respondError(c, http.StatusInternalServerError, "获取出访计划失败")
		}
		return
	}
	c.JSON(http.StatusOK, items)
}
