package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teamtracker/internal/db"
)

func TestAssignmentServiceAssignIsIdempotent(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewAssignmentService(db.DB)
	ctx := context.Background()

	team := seedTeam(t, "一队", "张弟兄")
	locA := seedLocation(t, "海滨小区")
	locB := seedLocation(t, "老城街区")
	locC := seedLocation(t, "工业园东区")

	created, err := svc.Assign(ctx, team.ID, []uint{locA.ID, locB.ID, locA.ID})
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(created))
	}

	// 重叠提交不产生重复任务
	created, err = svc.Assign(ctx, team.ID, []uint{locB.ID, locC.ID})
	if err != nil {
		t.Fatalf("second Assign returned error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected only the new location to be assigned, got %d", len(created))
	}
	if created[0].LocationID != locC.ID {
		t.Fatalf("expected assignment for location %d, got %d", locC.ID, created[0].LocationID)
	}

	items, err := svc.ListForTeam(ctx, team.ID)
	if err != nil {
		t.Fatalf("ListForTeam returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 assignments total, got %d", len(items))
	}
}

func TestAssignmentServiceAssignUnknownReferences(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewAssignmentService(db.DB)
	ctx := context.Background()

	team := seedTeam(t, "一队", "张弟兄")
	location := seedLocation(t, "海滨小区")

	if _, err := svc.Assign(ctx, 999, []uint{location.ID}); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}
	if _, err := svc.Assign(ctx, team.ID, []uint{999}); !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
	if _, err := svc.Assign(ctx, team.ID, nil); !errors.Is(err, ErrAssignmentInvalid) {
		t.Fatalf("expected ErrAssignmentInvalid, got %v", err)
	}

	// 整体校验失败时不应有任何任务落库
	var count int64
	db.DB.Model(&db.Assignment{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no assignments created, got %d", count)
	}
}

func TestAssignmentServiceCompletedTodayBlocksReassign(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewAssignmentService(db.DB)
	ctx := context.Background()

	team := seedTeam(t, "一队", "张弟兄")
	location := seedLocation(t, "海滨小区")

	created, err := svc.Assign(ctx, team.ID, []uint{location.ID})
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if _, err := svc.SetCompletion(ctx, created[0].ID, true); err != nil {
		t.Fatalf("SetCompletion returned error: %v", err)
	}

	// 当日已完成的地点不重复分配
	created, err = svc.Assign(ctx, team.ID, []uint{location.ID})
	if err != nil {
		t.Fatalf("re-Assign returned error: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected no new assignment for location completed today, got %d", len(created))
	}

	// 往日完成的地点可以再次分配
	yesterday := time.Now().AddDate(0, 0, -1)
	if err := db.DB.Model(&db.Assignment{}).
		Where("team_id = ? AND location_id = ?", team.ID, location.ID).
		Update("completed_date", yesterday).Error; err != nil {
		t.Fatalf("failed to backdate completion: %v", err)
	}

	created, err = svc.Assign(ctx, team.ID, []uint{location.ID})
	if err != nil {
		t.Fatalf("re-Assign after backdate returned error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected reassignment after a prior-day completion, got %d", len(created))
	}
}

func TestAssignmentServiceSetCompletionToggle(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewAssignmentService(db.DB)
	ctx := context.Background()

	team := seedTeam(t, "一队", "张弟兄")
	location := seedLocation(t, "海滨小区")

	created, err := svc.Assign(ctx, team.ID, []uint{location.ID})
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}

	item, err := svc.SetCompletion(ctx, created[0].ID, true)
	if err != nil {
		t.Fatalf("SetCompletion returned error: %v", err)
	}
	if !item.IsCompleted || item.CompletedDate == nil {
		t.Fatal("expected completion with completed date")
	}

	item, err = svc.SetCompletion(ctx, created[0].ID, false)
	if err != nil {
		t.Fatalf("SetCompletion returned error: %v", err)
	}
	if item.IsCompleted || item.CompletedDate != nil {
		t.Fatal("expected reopened assignment with cleared completed date")
	}

	if _, err := svc.SetCompletion(ctx, 999, true); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestAssignmentServiceListOrderedByAssignment(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewAssignmentService(db.DB)
	ctx := context.Background()

	team := seedTeam(t, "一队", "张弟兄")
	locA := seedLocation(t, "乙地点")
	locB := seedLocation(t, "甲地点")

	if _, err := svc.Assign(ctx, team.ID, []uint{locA.ID}); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if _, err := svc.Assign(ctx, team.ID, []uint{locB.ID}); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}

	items, err := svc.ListForTeam(ctx, team.ID)
	if err != nil {
		t.Fatalf("ListForTeam returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(items))
	}
	// 按分配时间排序，与地点名称无关
	if items[0].LocationID != locA.ID {
		t.Fatalf("expected oldest assignment first, got location %d", items[0].LocationID)
	}
	if items[0].LocationName != "乙地点" {
		t.Fatalf("unexpected location name: %q", items[0].LocationName)
	}
}
