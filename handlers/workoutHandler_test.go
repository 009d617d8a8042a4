package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/definitelynotchirag/Fitlog/models"
	"github.com/definitelynotchirag/Fitlog/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func apiRouter(user models.User) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user", user)
		c.Next()
	})
	r.GET("/api/routines", DisplayRoutines)
	r.POST("/api/routines", CreateRoutine)
	r.POST("/api/routines/id-by-name", RoutineIDByName)
	r.GET("/api/workouts/by-date", WorkoutsByDate)
	r.POST("/api/workouts/log", LogWorkout)
	r.POST("/api/workouts/sets", AddSets)
	r.POST("/api/calories", CaloriesSummary)
	r.GET("/api/users/fitness-profile", GetFitnessProfile)
	r.POST("/api/users/fitness-profile", UpdateFitnessProfile)
	return r
}

func getPath(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedOwnedWorkout(t *testing.T, gdb *gorm.DB, userID uint, routineName, workoutName string, date time.Time) (models.Routine, models.Workout) {
	t.Helper()
	routine := models.Routine{UserID: userID, RoutineName: routineName}
	if err := gdb.Create(&routine).Error; err != nil {
		t.Fatalf("create routine: %v", err)
	}
	workout := models.Workout{RoutineID: routine.ID, WorkoutName: workoutName, Date: date}
	if err := gdb.Create(&workout).Error; err != nil {
		t.Fatalf("create workout: %v", err)
	}
	return routine, workout
}

func TestCreateAndDisplayRoutines(t *testing.T) {
	gdb := setupTestDB(t)
	user := testUser(t, gdb)
	r := apiRouter(user)

	w := postJSON(r, "/api/routines", gin.H{"routineName": "Leg Day"})
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}

	// Another user's routines must not leak into the listing.
	other := models.User{Username: "bob", Email: "bob@example.com"}
	if err := gdb.Create(&other).Error; err != nil {
		t.Fatalf("create other user: %v", err)
	}
	if err := gdb.Create(&models.Routine{UserID: other.ID, RoutineName: "Bob's Day"}).Error; err != nil {
		t.Fatalf("create other routine: %v", err)
	}

	w = getPath(r, "/api/routines")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp struct {
		Data []models.Routine `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].RoutineName != "Leg Day" {
		t.Errorf("routines = %+v", resp.Data)
	}
}

func TestRoutineIDByName(t *testing.T) {
	gdb := setupTestDB(t)
	user := testUser(t, gdb)
	routine, _ := seedOwnedWorkout(t, gdb, user.ID, "Leg Day", "Squats", utils.TodayUTC())
	r := apiRouter(user)

	w := postJSON(r, "/api/routines/id-by-name", gin.H{"routineName": "Leg Day"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		RoutineID uint `json:"routineId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.RoutineID != routine.ID {
		t.Errorf("routineId = %d, want %d", resp.RoutineID, routine.ID)
	}

	// Exact match only.
	w = postJSON(r, "/api/routines/id-by-name", gin.H{"routineName": "leg dayy"})
	if w.Code != http.StatusNotFound {
		t.Errorf("fuzzy name status = %d, want 404", w.Code)
	}
}

func TestLogWorkoutEndpoint(t *testing.T) {
	gdb := setupTestDB(t)
	user := testUser(t, gdb)
	routine := models.Routine{UserID: user.ID, RoutineName: "Push Day"}
	if err := gdb.Create(&routine).Error; err != nil {
		t.Fatalf("create routine: %v", err)
	}
	r := apiRouter(user)

	w := postJSON(r, "/api/workouts/log", gin.H{
		"workoutName": "Bench Press",
		"routineId":   routine.ID,
		"sets":        []gin.H{{"reps": 10, "weight": 60}, {"reps": 8, "weight": 65}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var n int64
	if err := gdb.Model(&models.Set{}).Count(&n).Error; err != nil {
		t.Fatalf("count sets: %v", err)
	}
	if n != 2 {
		t.Errorf("set rows = %d, want 2", n)
	}
}

func TestLogWorkoutRejectsForeignRoutine(t *testing.T) {
	gdb := setupTestDB(t)
	user := testUser(t, gdb)

	other := models.User{Username: "bob", Email: "bob@example.com"}
	if err := gdb.Create(&other).Error; err != nil {
		t.Fatalf("create other user: %v", err)
	}
	foreign := models.Routine{UserID: other.ID, RoutineName: "Bob's Day"}
	if err := gdb.Create(&foreign).Error; err != nil {
		t.Fatalf("create foreign routine: %v", err)
	}

	w := postJSON(apiRouter(user), "/api/workouts/log", gin.H{
		"workoutName": "Bench Press",
		"routineId":   foreign.ID,
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAddSetsOwnership(t *testing.T) {
	gdb := setupTestDB(t)
	user := testUser(t, gdb)
	_, workout := seedOwnedWorkout(t, gdb, user.ID, "Leg Day", "Squats", utils.TodayUTC())
	r := apiRouter(user)

	w := postJSON(r, "/api/workouts/sets", gin.H{
		"workoutId": workout.ID,
		"sets":      []gin.H{{"reps": 10, "weight": 100}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	// A workout reached through another user's routine is invisible.
	other := models.User{Username: "bob", Email: "bob@example.com"}
	if err := gdb.Create(&other).Error; err != nil {
		t.Fatalf("create other user: %v", err)
	}
	_, foreignWorkout := seedOwnedWorkout(t, gdb, other.ID, "Bob's Day", "Deadlift", utils.TodayUTC())

	w = postJSON(r, "/api/workouts/sets", gin.H{
		"workoutId": foreignWorkout.ID,
		"sets":      []gin.H{{"reps": 5, "weight": 120}},
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("foreign workout status = %d, want 404", w.Code)
	}
}

func TestWorkoutsByDate(t *testing.T) {
	gdb := setupTestDB(t)
	user := testUser(t, gdb)
	_, workout := seedOwnedWorkout(t, gdb, user.ID, "Leg Day", "Squats", utils.TodayUTC())
	for _, s := range []models.Set{
		{WorkoutID: workout.ID, SetReps: 10, SetWeight: 100, Date: utils.TodayUTC()},
		{WorkoutID: workout.ID, SetReps: 8, SetWeight: 110, Date: utils.TodayUTC()},
	} {
		if err := gdb.Create(&s).Error; err != nil {
			t.Fatalf("create set: %v", err)
		}
	}

	w := getPath(apiRouter(user), "/api/workouts/by-date")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		WorkoutsByDate map[string][]struct {
			WorkoutName string  `json:"workout_name"`
			SetsCount   int     `json:"sets_count"`
			TotalReps   int     `json:"total_reps"`
			TotalWeight float64 `json:"total_weight"`
		} `json:"workoutsByDate"`
		TotalWorkoutDays int `json:"totalWorkoutDays"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.TotalWorkoutDays != 1 {
		t.Fatalf("totalWorkoutDays = %d, want 1", resp.TotalWorkoutDays)
	}

	key := utils.TodayUTC().Format("2006-01-02")
	day := resp.WorkoutsByDate[key]
	if len(day) != 1 {
		t.Fatalf("workouts on %s = %d, want 1", key, len(day))
	}
	if day[0].SetsCount != 2 || day[0].TotalReps != 18 {
		t.Errorf("aggregates = %+v", day[0])
	}
	// 10*100 + 8*110.
	if day[0].TotalWeight != 1880 {
		t.Errorf("total weight = %g, want 1880", day[0].TotalWeight)
	}
}

func TestCaloriesSummary(t *testing.T) {
	gdb := setupTestDB(t)
	user := testUser(t, gdb)
	_, workout := seedOwnedWorkout(t, gdb, user.ID, "Leg Day", "Squats", utils.TodayUTC())

	total := 200.0
	if err := gdb.Model(&workout).Update("total_calories_burned", total).Error; err != nil {
		t.Fatalf("update workout: %v", err)
	}

	// Set-level calories are ignored when the workout carries a total.
	cal := 50.0
	set := models.Set{WorkoutID: workout.ID, SetReps: 10, SetWeight: 100, CaloriesBurned: &cal, Date: utils.TodayUTC()}
	if err := gdb.Create(&set).Error; err != nil {
		t.Fatalf("create set: %v", err)
	}

	w := postJSON(apiRouter(user), "/api/calories", gin.H{})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		TotalCalories float64            `json:"totalCalories"`
		DailyCalories map[string]float64 `json:"dailyCalories"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.TotalCalories != 200 {
		t.Errorf("totalCalories = %g, want 200", resp.TotalCalories)
	}
	key := utils.TodayUTC().Format("2006-01-02")
	if resp.DailyCalories[key] != 200 {
		t.Errorf("dailyCalories[%s] = %g, want 200", key, resp.DailyCalories[key])
	}
}

func TestFitnessProfileRoundTrip(t *testing.T) {
	gdb := setupTestDB(t)
	user := testUser(t, gdb)
	r := apiRouter(user)

	w := postJSON(r, "/api/users/fitness-profile", gin.H{
		"currentWeight": 80,
		"height":        180,
		"goalWeight":    75,
		"fitnessGoal":   "lose_weight",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}

	var stored models.User
	if err := gdb.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !stored.ProfileComplete {
		t.Error("profile_complete not set")
	}
	if stored.CurrentWeight == nil || *stored.CurrentWeight != 80 {
		t.Errorf("current weight = %v", stored.CurrentWeight)
	}
}

func TestFitnessProfileValidation(t *testing.T) {
	gdb := setupTestDB(t)
	user := testUser(t, gdb)
	r := apiRouter(user)

	// Missing fields.
	w := postJSON(r, "/api/users/fitness-profile", gin.H{"currentWeight": 80})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing fields status = %d, want 400", w.Code)
	}

	// Goal outside the closed set.
	w = postJSON(r, "/api/users/fitness-profile", gin.H{
		"currentWeight": 80,
		"height":        180,
		"goalWeight":    75,
		"fitnessGoal":   "become_batman",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid goal status = %d, want 400", w.Code)
	}
}
