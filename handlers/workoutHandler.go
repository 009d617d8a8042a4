package handlers

import (
	"net/http"
	"time"

	"github.com/definitelynotchirag/Fitlog/db"
	"github.com/definitelynotchirag/Fitlog/middleware"
	"github.com/definitelynotchirag/Fitlog/models"
	"github.com/definitelynotchirag/Fitlog/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type setInput struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// ownedRoutine loads a routine only when it belongs to the requesting user.
func ownedRoutine(userID, routineID uint) (*models.Routine, error) {
	var routine models.Routine
	err := db.DB.Where("id = ? AND user_id = ?", routineID, userID).First(&routine).Error
	if err != nil {
		return nil, err
	}
	return &routine, nil
}

// LogWorkout handles POST /api/workouts/log: direct (non-chat) logging of a
// workout with its sets against a known routine id.
func LogWorkout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		WorkoutName string     `json:"workoutName" binding:"required"`
		RoutineID   uint       `json:"routineId" binding:"required"`
		Sets        []setInput `json:"sets"`
		Date        string     `json:"date"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	if _, err := ownedRoutine(user.ID, input.RoutineID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Routine not found"})
		return
	}

	date, err := utils.ParseISODate(input.Date)
	if err != nil {
		date = utils.TodayUTC()
	}

	workout := models.Workout{
		RoutineID:   input.RoutineID,
		WorkoutName: input.WorkoutName,
		Date:        date,
	}
	if err := db.DB.Create(&workout).Error; err != nil {
		utils.Logger.Error("log_workout_failed", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error logging workout"})
		return
	}

	for _, s := range input.Sets {
		set := models.Set{
			WorkoutID: workout.ID,
			SetReps:   s.Reps,
			SetWeight: s.Weight,
			Date:      date,
		}
		if err := db.DB.Create(&set).Error; err != nil {
			utils.Logger.Error("log_workout_set_failed", zap.Uint("workout_id", workout.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error logging workout"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "workout": workout})
}

// AddSets handles POST /api/workouts/sets: bulk-append sets to an existing
// workout.
func AddSets(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		WorkoutID uint       `json:"workoutId" binding:"required"`
		Sets      []setInput `json:"sets" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	// Ownership runs through workout -> routine -> user.
	var workout models.Workout
	err := db.DB.Joins("JOIN routines ON routines.id = workouts.routine_id").
		Where("workouts.id = ? AND routines.user_id = ?", input.WorkoutID, user.ID).
		First(&workout).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workout not found"})
		return
	}

	now := time.Now().UTC()
	for _, s := range input.Sets {
		set := models.Set{
			WorkoutID: workout.ID,
			SetReps:   s.Reps,
			SetWeight: s.Weight,
			Date:      now,
		}
		if err := db.DB.Create(&set).Error; err != nil {
			utils.Logger.Error("add_sets_failed", zap.Uint("workout_id", workout.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding sets"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type workoutSummary struct {
	WorkoutID           uint      `json:"workout_id"`
	WorkoutName         string    `json:"workout_name"`
	RoutineName         string    `json:"routine_name"`
	Date                time.Time `json:"date"`
	DurationMinutes     *int      `json:"duration_minutes"`
	Notes               string    `json:"notes"`
	TotalCaloriesBurned *float64  `json:"total_calories_burned"`
	WorkoutType         string    `json:"workout_type"`
	SetsCount           int       `json:"sets_count"`
	TotalReps           int       `json:"total_reps"`
	TotalWeight         float64   `json:"total_weight"`
}

// WorkoutsByDate handles GET /api/workouts/by-date: all the user's workouts
// grouped by calendar date with per-workout set aggregates.
func WorkoutsByDate(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var routines []models.Routine
	err := db.DB.Where("user_id = ?", user.ID).
		Preload("Workouts", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("date DESC")
		}).
		Preload("Workouts.Sets").
		Find(&routines).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching workouts by date"})
		return
	}

	byDate := make(map[string][]workoutSummary)
	totalWorkouts := 0
	for _, routine := range routines {
		for _, w := range routine.Workouts {
			totalWorkouts++
			key := w.Date.UTC().Format("2006-01-02")

			totalReps := 0
			totalWeight := 0.0
			for _, s := range w.Sets {
				totalReps += s.SetReps
				totalWeight += s.SetWeight * float64(s.SetReps)
			}

			byDate[key] = append(byDate[key], workoutSummary{
				WorkoutID:           w.ID,
				WorkoutName:         w.WorkoutName,
				RoutineName:         routine.RoutineName,
				Date:                w.Date,
				DurationMinutes:     w.DurationMinutes,
				Notes:               w.Notes,
				TotalCaloriesBurned: w.TotalCaloriesBurned,
				WorkoutType:         w.WorkoutType,
				SetsCount:           len(w.Sets),
				TotalReps:           totalReps,
				TotalWeight:         totalWeight,
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"workoutsByDate":   byDate,
		"totalWorkoutDays": len(byDate),
		"totalWorkouts":    totalWorkouts,
	})
}

// CaloriesSummary handles POST /api/calories: calorie totals over a date
// range, defaulting to the last 7 days.
func CaloriesSummary(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	// Body is optional; both bounds default.
	_ = c.ShouldBindJSON(&input)

	end, err := utils.ParseISODate(input.EndDate)
	if err != nil {
		end = utils.TodayUTC()
	}
	start, err := utils.ParseISODate(input.StartDate)
	if err != nil {
		start = end.AddDate(0, 0, -7)
	}

	var routines []models.Routine
	err = db.DB.Where("user_id = ?", user.ID).
		Preload("Workouts", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("date >= ? AND date <= ?", start, end)
		}).
		Preload("Workouts.Sets").
		Find(&routines).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching calorie data"})
		return
	}

	dailyCalories := make(map[string]float64)
	totalCalories := 0.0
	for _, routine := range routines {
		for _, w := range routine.Workouts {
			key := w.Date.UTC().Format("2006-01-02")
			cals := 0.0
			if w.TotalCaloriesBurned != nil {
				cals = *w.TotalCaloriesBurned
			} else {
				for _, s := range w.Sets {
					if s.CaloriesBurned != nil {
						cals += *s.CaloriesBurned
					}
				}
			}
			dailyCalories[key] += cals
			totalCalories += cals
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"totalCalories": totalCalories,
		"dailyCalories": dailyCalories,
		"startDate":     start.Format("2006-01-02"),
		"endDate":       end.Format("2006-01-02"),
	})
}
