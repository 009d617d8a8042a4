package services

import (
	"testing"

	"github.com/definitelynotchirag/Fitlog/models"
	"github.com/definitelynotchirag/Fitlog/utils"
)

func TestFindRoutineFuzzy(t *testing.T) {
	gdb := openTestDB(t)
	user := seedUser(t, gdb, "alice")
	legDay := seedRoutine(t, gdb, user.ID, "Leg Day")
	seedRoutine(t, gdb, user.ID, "Push Day")

	got, err := FindRoutine(gdb, user.ID, "leg dayy")
	if err != nil {
		t.Fatalf("FindRoutine: %v", err)
	}
	if got == nil || got.ID != legDay.ID {
		t.Fatalf("expected Leg Day, got %+v", got)
	}

	got, err = FindRoutine(gdb, user.ID, "Cardio")
	if err != nil {
		t.Fatalf("FindRoutine: %v", err)
	}
	if got != nil {
		t.Errorf("expected no match for Cardio, got %q", got.RoutineName)
	}
}

func TestFindRoutineScopedToUser(t *testing.T) {
	gdb := openTestDB(t)
	alice := seedUser(t, gdb, "alice")
	bob := seedUser(t, gdb, "bob")
	seedRoutine(t, gdb, bob.ID, "Leg Day")

	got, err := FindRoutine(gdb, alice.ID, "Leg Day")
	if err != nil {
		t.Fatalf("FindRoutine: %v", err)
	}
	if got != nil {
		t.Error("matched another user's routine")
	}
}

func TestFindOrCreateRoutine(t *testing.T) {
	gdb := openTestDB(t)
	user := seedUser(t, gdb, "alice")

	routine, created, err := FindOrCreateRoutine(gdb, user.ID, "Leg Day")
	if err != nil {
		t.Fatalf("FindOrCreateRoutine: %v", err)
	}
	if !created {
		t.Error("expected creation on first call")
	}
	if routine.RoutineName != "Leg Day" {
		t.Errorf("routine name = %q", routine.RoutineName)
	}

	// A close-enough query resolves to the existing row.
	again, created, err := FindOrCreateRoutine(gdb, user.ID, "leg dayy")
	if err != nil {
		t.Fatalf("FindOrCreateRoutine: %v", err)
	}
	if created {
		t.Error("expected reuse on fuzzy match")
	}
	if again.ID != routine.ID {
		t.Errorf("resolved routine %d, want %d", again.ID, routine.ID)
	}

	if n := countRows(t, gdb, &models.Routine{}); n != 1 {
		t.Errorf("routine rows = %d, want 1", n)
	}
}

func TestFindWorkoutScopedToRoutine(t *testing.T) {
	gdb := openTestDB(t)
	user := seedUser(t, gdb, "alice")
	legs := seedRoutine(t, gdb, user.ID, "Leg Day")
	push := seedRoutine(t, gdb, user.ID, "Push Day")
	seedWorkout(t, gdb, push.ID, "Bench Press", utils.TodayUTC())

	got, err := FindWorkout(gdb, legs.ID, "Bench Press")
	if err != nil {
		t.Fatalf("FindWorkout: %v", err)
	}
	if got != nil {
		t.Error("matched a workout from a different routine")
	}
}

func TestFindOrCreateWorkoutUsesDefaultDate(t *testing.T) {
	gdb := openTestDB(t)
	user := seedUser(t, gdb, "alice")
	routine := seedRoutine(t, gdb, user.ID, "Leg Day")

	date := utils.TodayUTC().AddDate(0, 0, -2)
	workout, created, err := FindOrCreateWorkout(gdb, routine.ID, "Squats", date)
	if err != nil {
		t.Fatalf("FindOrCreateWorkout: %v", err)
	}
	if !created {
		t.Error("expected creation")
	}
	if !workout.Date.Equal(date) {
		t.Errorf("workout date = %v, want %v", workout.Date, date)
	}

	// Fuzzy reuse keeps the original row and date.
	again, created, err := FindOrCreateWorkout(gdb, routine.ID, "squats", utils.TodayUTC())
	if err != nil {
		t.Fatalf("FindOrCreateWorkout: %v", err)
	}
	if created || again.ID != workout.ID {
		t.Errorf("expected reuse, created=%v id=%d", created, again.ID)
	}
}
