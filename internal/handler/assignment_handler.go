package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamtracker/internal/service"
)

type assignRequest struct {
	LocationIDs []uint `json:"location_ids"`
}

type completionRequest struct {
	IsCompleted *bool `json:"is_completed"`
}

// GetTeamAssignments 获取队伍的任务列表，最早分配的在前
func (a *API) GetTeamAssignments(c *gin.Context) {
	teamID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "队伍 ID 不合法")
		return
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	items, err := a.assignments.ListForTeam(ctx, teamID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			respondError(c, http.StatusNotFound, "队伍不存在")
		case respondTimeout(c, err):
		default:
			respondError(c, http.StatusInternalServerError, "获取任务列表失败")
		}
		return
	}
	c.JSON(http.StatusOK, items)
}

// AssignLocations 为队伍批量分配地点
// 重复提交是安全的：已有未完成任务或当日已完成的地点会被跳过
func (a *API) AssignLocations(c *gin.Context) {
	teamID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "队伍 ID 不合法")
		return
	}

	var req assignRequest
	if !bindJSON(c, &req, "请求体不合法") {
		return
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	items, err := a.assignments.Assign(ctx, teamID, req.LocationIDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentInvalid):
			respondError(c, http.StatusBadRequest, "至少需要选择一个地点")
		case errors.Is(err, service.ErrTeamNotFound):
			respondError(c, http.StatusNotFound, "队伍不存在")
		case errors.Is(err, service.ErrLocationNotFound):
			respondError(c, http.StatusNotFound, "地点不存在")
		case respondTimeout(c, err):
		default:
			respondError(c, http.StatusInternalServerError, "分配地点失败")
		}
		return
	}
	c.JSON(http.StatusCreated, items)
}

// UpdateAssignment 切换任务完成状态
func (a *API) UpdateAssignment(c *gin.Context) {
	if _, err := parseUintParam(c, "id"); err != nil {
		respondError(c, http.StatusBadRequest, "队伍 ID 不合法")
		return
	}
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "任务 ID 不合法")
		return
	}

	var req completionRequest
	if !bindJSON(c, &req, "请求体不合法") {
		return
	}
	if req.IsCompleted == nil {
		respondError(c, http.StatusBadRequest, "缺少 is_completed 字段")
		return
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	item, err := a.assignments.SetCompletion(ctx, assignmentID, *req.IsCompleted)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			respondError(c, http.StatusNotFound, "任务不存在")
		case respondTimeout(c, err):
		default:
			respondError(c, http.StatusInternalServerError, "更新任务失败")
		}
		return
	}
	c.JSON(http.StatusOK, item)
}
