package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamtracker/internal/service"
)

type visitRequest struct {
	TeamID     uint   `json:"team_id"`
	LocationID uint   `json:"location_id"`
	Notes      string `json:"notes"`
	IsPreached *bool  `json:"is_preached"`
}

type visitHistoryPayload struct {
	ID           uint      `json:"id"`
	TeamID       uint      `json:"team_id"`
	LocationID   uint      `json:"location_id"`
	VisitDate    time.Time `json:"visit_date"`
	IsPreached   bool      `json:"is_preached"`
	Notes        string    `json:"notes"`
	NotesHTML    string    `json:"notes_html"`
	TeamName     string    `json:"team_name"`
	LocationName string    `json:"location_name"`
}

func visitHistoryResponse(records []service.VisitRecord) []visitHistoryPayload {
	response := make([]visitHistoryPayload, 0, len(records))
	for _, record := range records {
		response = append(response, visitHistoryPayload{
			ID:           record.ID,
			TeamID:       record.TeamID,
			LocationID:   record.LocationID,
			VisitDate:    record.VisitDate,
			IsPreached:   record.IsPreached,
			Notes:        record.Notes,
			NotesHTML:    renderNotesHTML(record.Notes),
			TeamName:     record.TeamName,
			LocationName: record.LocationName,
		})
	}
	return response
}

// CreateVisit 记录一次签到
// is_preached 省略时默认为 true，与前端签到表单的默认行为一致
func (a *API) CreateVisit(c *gin.Context) {
	var req visitRequest
	if !bindJSON(c, &req, "请求体不合法") {
		return
	}

	isPreached := true
	if req.IsPreached != nil {
		isPreached = *req.IsPreached
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	visit, err := a.visits.Record(ctx, service.VisitInput{
		TeamID:     req.TeamID,
		LocationID: req.LocationID,
		Notes:      req.Notes,
		IsPreached: isPreached,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVisitInvalid):
			respondError(c, http.StatusBadRequest, "签到需要指定队伍和地点")
		case errors.Is(err, service.ErrTeamNotFound):
			respondError(c, http.StatusNotFound, "队伍不存在")
		case errors.Is(err, service.ErrLocationNotFound):
			respondError(c, http.StatusNotFound, "地点不存在")
		case respondTimeout(c, err):
		default:
			respondError(c, http.StatusInternalServerError, "记录签到失败")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          visit.ID,
		"team_id":     visit.TeamID,
		"location_id": visit.LocationID,
		"visit_date":  visit.VisitDate,
		"is_preached": visit.IsPreached,
		"notes":       visit.Notes,
	})
}

// GetVisitHistory 获取全部签到记录，最新的在前
func (a *API) GetVisitHistory(c *gin.Context) {
	ctx, cancel := a.requestContext(c)
	defer cancel()

	records, err := a.visits.History(ctx)
	if err != nil {
		if respondTimeout(c, err) {
			return
		}
		respondError(c, http.StatusInternalServerError, "获取签到记录失败")
		return
	}
	c.JSON(http.StatusOK, visitHistoryResponse(records))
}
