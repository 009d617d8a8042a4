package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/definitelynotchirag/Fitlog/models"
	"github.com/definitelynotchirag/Fitlog/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HistoryWindowDays is how far back the workout summary reaches when
// building LLM context.
const HistoryWindowDays = 30

// SentinelNoRoutines and SentinelNoWorkouts are the "no usable context"
// markers; callers must treat both as empty context, not as errors.
const SentinelNoRoutines = "No workout history found."

func SentinelNoWorkouts(days int) string {
	return fmt.Sprintf("No workouts found in the last %d days.", days)
}

type datedWorkout struct {
	workout     models.Workout
	routineName string
}

// SummarizeWorkoutHistory builds a bounded human-readable transcript of the
// user's workouts in the last `days` days, grouped by calendar date, most
// recent first. Failures degrade to the sentinel rather than erroring: the
// summary is enrichment, never a reason to fail a chat request.
func SummarizeWorkoutHistory(gdb *gorm.DB, userID uint, days int) string {
	cutoff := utils.TodayUTC().AddDate(0, 0, -days)

	var routines []models.Routine
	err := gdb.Where("user_id = ?", userID).
		Preload("Workouts", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("date >= ?", cutoff).Order("date DESC")
		}).
		Preload("Workouts.Sets").
		Find(&routines).Error
	if err != nil {
		utils.Logger.Warn("workout_history_fetch_failed",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return SentinelNoRoutines
	}

	if len(routines) == 0 {
		return SentinelNoRoutines
	}

	byDate := make(map[string][]datedWorkout)
	for _, routine := range routines {
		for _, workout := range routine.Workouts {
			key := workout.Date.UTC().Format("2006-01-02")
			byDate[key] = append(byDate[key], datedWorkout{workout: workout, routineName: routine.RoutineName})
		}
	}

	if len(byDate) == 0 {
		return SentinelNoWorkouts(days)
	}

	dates := make([]string, 0, len(byDate))
	for key := range byDate {
		dates = append(dates, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	today := utils.TodayUTC().Format("2006-01-02")
	yesterday := utils.TodayUTC().AddDate(0, 0, -1).Format("2006-01-02")

	var b strings.Builder
	fmt.Fprintf(&b, "User's Workout History (Last %d days):\n\n", days)

	for _, key := range dates {
		date, _ := utils.ParseISODate(key)
		display := date.Format("Monday, January 2, 2006")
		if key == today {
			display += " (Today)"
		} else if key == yesterday {
			display += " (Yesterday)"
		}
		fmt.Fprintf(&b, "📅 %s\n", display)

		for _, dw := range byDate[key] {
			w := dw.workout
			fmt.Fprintf(&b, "  💪 %s (%s routine)\n", w.WorkoutName, dw.routineName)

			if len(w.Sets) > 0 {
				parts := make([]string, len(w.Sets))
				for i, set := range w.Sets {
					s := fmt.Sprintf("%d reps @ %gkg", set.SetReps, set.SetWeight)
					if set.CaloriesBurned != nil {
						s += fmt.Sprintf(" (%g cal)", *set.CaloriesBurned)
					}
					parts[i] = s
				}
				fmt.Fprintf(&b, "    Sets: %s\n", strings.Join(parts, ", "))
			}

			if w.TotalCaloriesBurned != nil {
				fmt.Fprintf(&b, "    🔥 Total Calories: %g kcal\n", *w.TotalCaloriesBurned)
			}
			if w.DurationMinutes != nil {
				fmt.Fprintf(&b, "    ⏱️ Duration: %d minutes\n", *w.DurationMinutes)
			}
			if w.Notes != "" {
				fmt.Fprintf(&b, "    📝 Notes: %s\n", w.Notes)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// BuildPersonalContext prefixes the workout summary with the user's fitness
// profile when one is on file, so the model can scale calorie estimates.
func BuildPersonalContext(gdb *gorm.DB, userID uint, workoutHistory string) string {
	var user models.User
	if err := gdb.First(&user, userID).Error; err != nil {
		utils.Logger.Warn("personal_context_user_fetch_failed",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return workoutHistory
	}

	if !user.ProfileComplete {
		return fmt.Sprintf(`
%s

Use this workout history to answer questions about the user's past workouts.
`, workoutHistory)
	}

	goal := strings.ReplaceAll(user.FitnessGoal, "_", " ")
	return fmt.Sprintf(`
User's Fitness Profile:
- Current Weight: %gkg
- Height: %gcm
- Goal Weight: %gkg
- Fitness Goal: %s

%s

Use this information to provide personalized calorie estimates, fitness advice, and answer questions about their workout history.
For calorie calculations, consider the user's weight (%gkg) in your estimates.
When asked about their workout history, refer to the specific workouts, dates, sets, and weights listed above.
`, deref(user.CurrentWeight), deref(user.Height), deref(user.GoalWeight), goal, workoutHistory, deref(user.CurrentWeight))
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
