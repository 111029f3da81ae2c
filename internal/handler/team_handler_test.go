package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamtracker/internal/db"
)

func TestCreateTeam(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	payload := map[string]any{"name": "Alpha", "leader": "Jo"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/teams", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	api.CreateTeam(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	var response struct {
		ID     uint   `json:"id"`
		Name   string `json:"name"`
		Leader string `json:"leader"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID == 0 || response.Name != "Alpha" || response.Leader != "Jo" {
		t.Fatalf("unexpected response: %+v", response)
	}
}

func TestCreateTeamBlankFields(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	payload := map[string]any{"name": "   ", "leader": "Jo"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/teams", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	api.CreateTeam(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestUpdateTeamNotFound(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	payload := map[string]any{"name": "Alpha", "leader": "Jo"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPut, "/api/teams/999", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{gin.Param{Key: "id", Value: "999"}}

	api.UpdateTeam(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestDeleteTeamConflictWithOpenAssignments(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	team := db.Team{Name: "Alpha", Leader: "Jo"}
	if err := db.DB.Create(&team).Error; err != nil {
		t.Fatalf("failed to seed team: %v", err)
	}
	location := db.Location{Name: "甲地点", Latitude: 36.85, Longitude: -76.28}
	if err := db.DB.Create(&location).Error; err != nil {
		t.Fatalf("failed to seed location: %v", err)
	}
	assignment := db.Assignment{TeamID: team.ID, LocationID: location.ID}
	if err := db.DB.Create(&assignment).Error; err != nil {
		t.Fatalf("failed to seed assignment: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/teams/"+strconv.Itoa(int(team.ID)), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{gin.Param{Key: "id", Value: strconv.Itoa(int(team.ID))}}

	api.DeleteTeam(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
}

func TestGetTeamsStorageTimeout(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	// 极小的存储超时让第一条查询就超过期限
	api := NewAPI(db.DB, time.Nanosecond)

	req := httptest.NewRequest(http.MethodGet, "/api/teams", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	api.GetTeams(c)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}

func TestGetTeamsCurrentLocationFailure(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	team := db.Team{Name: "Alpha", Leader: "Jo"}
	if err := db.DB.Create(&team).Error; err != nil {
		t.Fatalf("failed to seed team: %v", err)
	}

	// 任务表不可用时派生当前地点失败，必须作为错误暴露而不是渲染成空值
	if err := db.DB.Migrator().DropTable(&db.Assignment{}); err != nil {
		t.Fatalf("failed to drop assignments table: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/teams", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	api.GetTeams(c)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
}

func TestDeleteTeamNoContent(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	team := db.Team{Name: "Alpha", Leader: "Jo"}
	if err := db.DB.Create(&team).Error; err != nil {
		t.Fatalf("failed to seed team: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/teams/"+strconv.Itoa(int(team.ID)), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{gin.Param{Key: "id", Value: strconv.Itoa(int(team.ID))}}

	api.DeleteTeam(c)
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
}
