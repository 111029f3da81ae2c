package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teamtracker/internal/db"
)

func TestPlannedVisitServicePlanAndUpcoming(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewPlannedVisitService(db.DB)
	ctx := context.Background()

	team := seedTeam(t, "一队", "张弟兄")
	locA := seedLocation(t, "甲地点")
	locB := seedLocation(t, "乙地点")

	date := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	created, err := svc.Plan(ctx, team.ID, []uint{locA.ID, locB.ID}, date)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if created != 2 {
		t.Fatalf("expected 2 planned visits, got %d", created)
	}

	// 同一天同一地点重复排期被跳过
	created, err = svc.Plan(ctx, team.ID, []uint{locA.ID}, date)
	if err != nil {
		t.Fatalf("second Plan returned error: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected duplicate plan to be skipped, got %d", created)
	}

	upcoming, err := svc.Upcoming(ctx, team.ID)
	if err != nil {
		t.Fatalf("Upcoming returned error: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("expected 2 upcoming plans, got %d", len(upcoming))
	}
	if upcoming[0].Status != db.PlanStatusPlanned {
		t.Fatalf("unexpected plan status: %q", upcoming[0].Status)
	}
}

func TestPlannedVisitServiceValidation(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewPlannedVisitService(db.DB)
	ctx := context.Background()

	team := seedTeam(t, "一队", "张弟兄")
	location := seedLocation(t, "甲地点")

	if _, err := svc.Plan(ctx, team.ID, nil, "2026-09-01"); !errors.Is(err, ErrPlanInvalid) {
		t.Fatalf("expected ErrPlanInvalid for empty locations, got %v", err)
	}
	if _, err := svc.Plan(ctx, team.ID, []uint{location.ID}, "09/01/2026"); !errors.Is(err, ErrPlanInvalid) {
		t.Fatalf("expected ErrPlanInvalid for malformed date, got %v", err)
	}
	if _, err := svc.Plan(ctx, 999, []uint{location.ID}, "2026-09-01"); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}

	// 过期计划不出现在列表里
	past := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	if _, err := svc.Plan(ctx, team.ID, []uint{location.ID}, past); err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	upcoming, err := svc.Upcoming(ctx, team.ID)
	if err != nil {
		t.Fatalf("Upcoming returned error: %v", err)
	}
	if len(upcoming) != 0 {
		t.Fatalf("expected past plans to be filtered out, got %d", len(upcoming))
	}
}
