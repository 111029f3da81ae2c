package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamtracker/internal/db"
	"github.com/teamtracker/internal/service"
)

type teamRequest struct {
	Name   string `json:"name"`
	Leader string `json:"leader"`
}

type teamPayload struct {
	ID                  uint   `json:"id"`
	Name                string `json:"name"`
	Leader              string `json:"leader"`
	CurrentLocationID   *uint  `json:"current_location_id"`
	CurrentLocationName string `json:"current_location_name"`
}

func (a *API) teamResponse(c *gin.Context, team db.Team) (teamPayload, error) {
	payload := teamPayload{ID: team.ID, Name: team.Name, Leader: team.Leader}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	current, err := a.teams.CurrentLocation(ctx, team.ID)
	if err != nil {
		return teamPayload{}, err
	}
	payload.CurrentLocationID = current.LocationID
	payload.CurrentLocationName = current.LocationName
	return payload, nil
}

// GetTeams 获取队伍列表，按创建时间排序
func (a *API) GetTeams(c *gin.Context) {
	ctx, cancel := a.requestContext(c)
	defer cancel()

	teams, err := a.teams.List(ctx)
	if err != nil {
		if respondTimeout(c, err) {
			return
		}
		respondError(c, http.StatusInternalServerError, "获取队伍列表失败")
		return
	}

	response := make([]teamPayload, 0, len(teams))
	for _, team := range teams {
		payload, err := a.teamResponse(c, team)
		if err != nil {
			if respondTimeout(c, err) {
				return
			}
			respondError(c, http.StatusInternalServerError, "获取队伍列表失败")
			return
		}
		response = append(response, payload)
	}
	c.JSON(http.StatusOK, response)
}

// CreateTeam 创建新队伍
func (a *API) CreateTeam(c *gin.Context) {
	var req teamRequest
	if !bindJSON(c, &req, "请求体不合法") {
		return
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	team, err := a.teams.Create(ctx, service.TeamInput{Name: req.Name, Leader: req.Leader})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamInvalid):
			respondError(c, http.StatusBadRequest, "队伍名称和负责人不能为空")
		case respondTimeout(c, err):
		default:
			respondError(c, http.StatusInternalServerError, "创建队伍失败")
		}
		return
	}

	payload, err := a.teamResponse(c, *team)
	if err != nil {
		if respondTimeout(c, err) {
			return
		}
		respondError(c, http.StatusInternalServerError, "创建队伍失败")
		return
	}
	c.JSON(http.StatusCreated, payload)
}

// UpdateTeam 更新队伍
func (a *API) UpdateTeam(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "队伍 ID 不合法")
		return
	}

	var req teamRequest
	if !bindJSON(c, &req, "请求体不合法") {
		return
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	team, err := a.teams.Update(ctx, id, service.TeamInput{Name: req.Name, Leader: req.Leader})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamInvalid):
			respondError(c, http.StatusBadRequest, "队伍名称和负责人不能为空")
		case errors.Is(err, service.ErrTeamNotFound):
			respondError(c, http.StatusNotFound, "队伍不存在")
		case respondTimeout(c, err):
		default:
			respondError(c, http.StatusInternalServerError, "更新队伍失败")
		}
		return
	}

	payload, err := a.teamResponse(c, *team)
	if err != nil {
		if respondTimeout(c, err) {
			return
		}
		respondError(c, http.StatusInternalServerError, "更新队伍失败")
		return
	}
	c.JSON(http.StatusOK, payload)
}

// DeleteTeam 删除队伍
// 仍有未完成任务时返回 409，不做任何修改
func (a *API) DeleteTeam(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "队伍 ID 不合法")
		return
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	if err := a.teams.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			respondError(c, http.StatusNotFound, "队伍不存在")
		case errors.Is(err, service.ErrTeamHasOpenAssignments):
			respondError(c, http.StatusConflict, "队伍仍有未完成的任务，请先处理后再删除")
		case respondTimeout(c, err):
		default:
			respondError(c, http.StatusInternalServerError, "删除队伍失败")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
