package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/definitelynotchirag/Fitlog/cache"
	"github.com/definitelynotchirag/Fitlog/llm"
	"github.com/definitelynotchirag/Fitlog/models"
	"github.com/definitelynotchirag/Fitlog/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Canonical action names.
const (
	ActionLogWorkout          = "log_workout"
	ActionAddWorkout          = "add_workout"
	ActionAddMultipleWorkouts = "add_multiple_workouts"
	ActionCreateRoutine       = "create_routine"
	ActionDeleteRoutine       = "delete_routine"
	ActionDeleteWorkout       = "delete_workout"
	ActionDeleteSet           = "delete_set"
)

// actionAliases folds the variants the model emits into canonical actions.
var actionAliases = map[string]string{
	"log_workout":     ActionLogWorkout,
	"log_workouts":    ActionLogWorkout,
	"record_workout":  ActionLogWorkout,
	"record_workouts": ActionLogWorkout,
	"save_workout":    ActionLogWorkout,
	"save_workouts":   ActionLogWorkout,

	"add_workout":     ActionAddWorkout,
	"add_workouts":    ActionAddWorkout,
	"create_workout":  ActionAddWorkout,
	"create_workouts": ActionAddWorkout,
	"new_workout":     ActionAddWorkout,
	"new_workouts":    ActionAddWorkout,

	"add_multiple_workouts": ActionAddMultipleWorkouts,

	"create_routine":  ActionCreateRoutine,
	"create_routines": ActionCreateRoutine,
	"add_routine":     ActionCreateRoutine,
	"add_routines":    ActionCreateRoutine,
	"new_routine":     ActionCreateRoutine,
	"new_routines":    ActionCreateRoutine,

	"delete_routine":  ActionDeleteRoutine,
	"delete_routines": ActionDeleteRoutine,
	"remove_routine":  ActionDeleteRoutine,
	"remove_routines": ActionDeleteRoutine,
	"erase_routine":   ActionDeleteRoutine,
	"erase_routines":  ActionDeleteRoutine,

	"delete_workout":  ActionDeleteWorkout,
	"delete_workouts": ActionDeleteWorkout,
	"remove_workout":  ActionDeleteWorkout,
	"remove_workouts": ActionDeleteWorkout,
	"erase_workout":   ActionDeleteWorkout,
	"erase_workouts":  ActionDeleteWorkout,

	"delete_set":  ActionDeleteSet,
	"delete_sets": ActionDeleteSet,
	"remove_set":  ActionDeleteSet,
	"remove_sets": ActionDeleteSet,
	"erase_set":   ActionDeleteSet,
	"erase_sets":  ActionDeleteSet,
}

// CanonicalAction maps an extracted action (or alias) to its canonical name.
// Unknown actions map to "".
func CanonicalAction(action string) string {
	return actionAliases[strings.ToLower(strings.TrimSpace(action))]
}

type CaloriesInfo struct {
	TotalCalories    float64 `json:"totalCalories"`
	SetsWithCalories int     `json:"setsWithCalories"`
}

type DispatchResult struct {
	Message      string        `json:"message"`
	CaloriesInfo *CaloriesInfo `json:"caloriesInfo,omitempty"`
}

// Dispatch executes an extracted action against the user's records.
// Every lookup is scoped by userID directly or through routine ownership.
// Repeat create commands create duplicates on purpose: names are not unique
// and resolution is fuzzy, not key-based.
func Dispatch(gdb *gorm.DB, userID uint, p llm.ActionPayload) (DispatchResult, error) {
	action := CanonicalAction(p.Action)

	date, err := utils.ParseISODate(p.Date)
	if err != nil {
		date = utils.TodayUTC()
	}

	var result DispatchResult
	switch action {
	case ActionLogWorkout:
		result, err = dispatchLogWorkout(gdb, userID, p, date)
	case ActionAddWorkout:
		result, err = dispatchAddWorkout(gdb, userID, p, date)
	case ActionAddMultipleWorkouts:
		result, err = dispatchAddMultipleWorkouts(gdb, userID, p, date)
	case ActionCreateRoutine:
		result, err = dispatchCreateRoutine(gdb, userID, p)
	case ActionDeleteRoutine:
		result, err = dispatchDeleteRoutine(gdb, userID, p)
	case ActionDeleteWorkout:
		result, err = dispatchDeleteWorkout(gdb, userID, p)
	case ActionDeleteSet:
		result, err = dispatchDeleteSet(gdb, userID, p)
	default:
		utils.ActionsDispatched.WithLabelValues("unknown", "ignored").Inc()
		return DispatchResult{
			Message: "I understand your request, but I'm not sure how to handle that action yet.",
		}, nil
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	utils.ActionsDispatched.WithLabelValues(action, outcome).Inc()

	if err == nil {
		invalidateUserCache(userID)
	}
	return result, err
}

func dispatchCreateRoutine(gdb *gorm.DB, userID uint, p llm.ActionPayload) (DispatchResult, error) {
	if strings.TrimSpace(p.RoutineName) == "" {
		return DispatchResult{}, &ValidationError{Message: "Please tell me the name of the routine you want to create."}
	}

	routine := models.Routine{UserID: userID, RoutineName: p.RoutineName}
	if err := gdb.Create(&routine).Error; err != nil {
		return DispatchResult{}, &PersistenceError{Op: "create routine", Err: err}
	}

	utils.Logger.Info("routine_created",
		zap.Uint("user_id", userID),
		zap.Uint("routine_id", routine.ID),
	)

	return DispatchResult{
		Message: fmt.Sprintf("Perfect! I've created the %q routine for you. You can now start adding workouts to it!", p.RoutineName),
	}, nil
}

func dispatchLogWorkout(gdb *gorm.DB, userID uint, p llm.ActionPayload, date time.Time) (DispatchResult, error) {
	if len(p.WorkoutName) == 0 || strings.TrimSpace(p.WorkoutName[0]) == "" {
		return DispatchResult{}, &ValidationError{
			Message: "Could not extract workout names from your request. Please specify the exercises you want to add.",
		}
	}
	if len(p.Sets) == 0 {
		return DispatchResult{}, &ValidationError{
			Message: "No sets data provided for workout logging. Please include sets information.",
		}
	}

	// A set missing reps or weight is dropped; valid siblings still commit.
	// Weight 0 counts as missing, so unweighted bodyweight sets are dropped
	// with it. If nothing survives, abort before any workout is created so
	// this path never leaves a workout with zero sets.
	validSets := make([]llm.SetInput, 0, len(p.Sets))
	for _, s := range p.Sets {
		if s.Reps <= 0 || s.Weight <= 0 {
			utils.Logger.Warn("invalid_set_dropped",
				zap.Uint("user_id", userID),
				zap.Int("reps", int(s.Reps)),
				zap.Float64("weight", float64(s.Weight)),
			)
			continue
		}
		validSets = append(validSets, s)
	}
	if len(validSets) == 0 {
		return DispatchResult{}, &ValidationError{Message: "No valid sets found in the data"}
	}

	routine, _, err := FindOrCreateRoutine(gdb, userID, p.RoutineName)
	if err != nil {
		return DispatchResult{}, err
	}

	workout, _, err := FindOrCreateWorkout(gdb, routine.ID, p.WorkoutName[0], date)
	if err != nil {
		return DispatchResult{}, err
	}

	if p.TotalCalories != nil {
		total := float64(*p.TotalCalories)
		err := gdb.Model(&models.Workout{}).
			Where("id = ?", workout.ID).
			Update("total_calories_burned", total).Error
		if err != nil {
			return DispatchResult{}, &PersistenceError{Op: "update workout calories", Err: err}
		}
	}

	if err := createSetsConcurrently(gdb, workout.ID, validSets, date); err != nil {
		return DispatchResult{}, err
	}

	setsWithCalories := 0
	for _, s := range validSets {
		if s.Calories != nil {
			setsWithCalories++
		}
	}
	info := &CaloriesInfo{SetsWithCalories: setsWithCalories}
	if p.TotalCalories != nil {
		info.TotalCalories = float64(*p.TotalCalories)
	}

	utils.Logger.Info("workout_logged",
		zap.Uint("user_id", userID),
		zap.Uint("workout_id", workout.ID),
		zap.Int("sets", len(validSets)),
	)

	return DispatchResult{
		Message: fmt.Sprintf("Great! I've logged your %s workout with %d sets to your %s routine.",
			p.WorkoutName[0], len(validSets), routine.RoutineName),
		CaloriesInfo: info,
	}, nil
}

func dispatchAddWorkout(gdb *gorm.DB, userID uint, p llm.ActionPayload, date time.Time) (DispatchResult, error) {
	if len(p.WorkoutName) == 0 || strings.TrimSpace(p.WorkoutName[0]) == "" {
		return DispatchResult{}, &ValidationError{
			Message: "Could not extract workout names from your request. Please specify the exercises you want to add.",
		}
	}

	routine, _, err := FindOrCreateRoutine(gdb, userID, p.RoutineName)
	if err != nil {
		return DispatchResult{}, err
	}

	workout := models.Workout{
		RoutineID:   routine.ID,
		WorkoutName: p.WorkoutName[0],
		Date:        date,
	}
	if p.TotalCalories != nil {
		total := float64(*p.TotalCalories)
		workout.TotalCaloriesBurned = &total
	}
	if err := gdb.Create(&workout).Error; err != nil {
		return DispatchResult{}, &PersistenceError{Op: "create workout", Err: err}
	}

	return DispatchResult{
		Message: fmt.Sprintf("Excellent! I've added %q to your %s routine. Ready to log some sets!",
			p.WorkoutName[0], routine.RoutineName),
	}, nil
}

func dispatchAddMultipleWorkouts(gdb *gorm.DB, userID uint, p llm.ActionPayload, date time.Time) (DispatchResult, error) {
	if len(p.WorkoutName) == 0 {
		return DispatchResult{}, &ValidationError{
			Message: "Could not extract workout names from your request. Please specify the exercises you want to add.",
		}
	}

	routine, _, err := FindOrCreateRoutine(gdb, userID, p.RoutineName)
	if err != nil {
		return DispatchResult{}, err
	}

	// Independent rows, created concurrently and jointly awaited.
	errChan := make(chan error, len(p.WorkoutName))
	var wg sync.WaitGroup
	for _, name := range p.WorkoutName {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			workout := models.Workout{
				RoutineID:   routine.ID,
				WorkoutName: name,
				Date:        date,
			}
			errChan <- gdb.Create(&workout).Error
		}(name)
	}
	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return DispatchResult{}, &PersistenceError{Op: "create workouts", Err: err}
		}
	}

	return DispatchResult{
		Message: fmt.Sprintf("Perfect! I've added %d workouts to your %s routine: %s. You're all set to start logging sets for these exercises!",
			len(p.WorkoutName), routine.RoutineName, strings.Join(p.WorkoutName, ", ")),
	}, nil
}

func dispatchDeleteRoutine(gdb *gorm.DB, userID uint, p llm.ActionPayload) (DispatchResult, error) {
	routine, err := FindRoutine(gdb, userID, p.RoutineName)
	if err != nil {
		return DispatchResult{}, err
	}
	if routine == nil {
		return DispatchResult{}, &ResolutionError{Kind: "routine", Name: p.RoutineName}
	}

	if err := deleteRoutineCascade(gdb, routine.ID); err != nil {
		return DispatchResult{}, err
	}

	utils.Logger.Info("routine_deleted",
		zap.Uint("user_id", userID),
		zap.Uint("routine_id", routine.ID),
	)

	return DispatchResult{
		Message: fmt.Sprintf("Routine %s has been successfully deleted.", routine.RoutineName),
	}, nil
}

func dispatchDeleteWorkout(gdb *gorm.DB, userID uint, p llm.ActionPayload) (DispatchResult, error) {
	routine, workout, err := resolveWorkoutRef(gdb, userID, p)
	if err != nil {
		return DispatchResult{}, err
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workout_id = ?", workout.ID).Delete(&models.Set{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Workout{}, workout.ID).Error
	})
	if err != nil {
		return DispatchResult{}, &PersistenceError{Op: "delete workout", Err: err}
	}

	return DispatchResult{
		Message: fmt.Sprintf("Workout %s has been successfully deleted from routine %s.",
			workout.WorkoutName, routine.RoutineName),
	}, nil
}

func dispatchDeleteSet(gdb *gorm.DB, userID uint, p llm.ActionPayload) (DispatchResult, error) {
	_, workout, err := resolveWorkoutRef(gdb, userID, p)
	if err != nil {
		return DispatchResult{}, err
	}

	if err := gdb.Where("workout_id = ?", workout.ID).Delete(&models.Set{}).Error; err != nil {
		return DispatchResult{}, &PersistenceError{Op: "delete sets", Err: err}
	}

	return DispatchResult{
		Message: fmt.Sprintf("Sets for workout %s have been successfully deleted.", workout.WorkoutName),
	}, nil
}

// resolveWorkoutRef resolves routine then workout for delete paths; neither
// may be created here.
func resolveWorkoutRef(gdb *gorm.DB, userID uint, p llm.ActionPayload) (*models.Routine, *models.Workout, error) {
	routine, err := FindRoutine(gdb, userID, p.RoutineName)
	if err != nil {
		return nil, nil, err
	}
	if routine == nil {
		return nil, nil, &ResolutionError{Kind: "routine", Name: p.RoutineName}
	}

	name := ""
	if len(p.WorkoutName) > 0 {
		name = p.WorkoutName[0]
	}
	workout, err := FindWorkout(gdb, routine.ID, name)
	if err != nil {
		return nil, nil, err
	}
	if workout == nil {
		return nil, nil, &ResolutionError{Kind: "workout", Name: name}
	}
	return routine, workout, nil
}

// deleteRoutineCascade removes a routine and everything under it in one
// transaction: sets first, then workouts, then the routine.
func deleteRoutineCascade(gdb *gorm.DB, routineID uint) error {
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var workoutIDs []uint
		if err := tx.Model(&models.Workout{}).
			Where("routine_id = ?", routineID).
			Pluck("id", &workoutIDs).Error; err != nil {
			return err
		}

		if len(workoutIDs) > 0 {
			if err := tx.Where("workout_id IN ?", workoutIDs).Delete(&models.Set{}).Error; err != nil {
				return err
			}
			if err := tx.Where("routine_id = ?", routineID).Delete(&models.Workout{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Routine{}, routineID).Error
	})
	if err != nil {
		return &PersistenceError{Op: "delete routine", Err: err}
	}
	return nil
}

// createSetsConcurrently fans out one insert per set, all sharing no mutable
// state, then jointly awaits them. Any failure fails the whole operation.
func createSetsConcurrently(gdb *gorm.DB, workoutID uint, sets []llm.SetInput, date time.Time) error {
	errChan := make(chan error, len(sets))
	var wg sync.WaitGroup

	for _, s := range sets {
		wg.Add(1)
		go func(s llm.SetInput) {
			defer wg.Done()
			set := models.Set{
				WorkoutID: workoutID,
				SetReps:   int(s.Reps),
				SetWeight: float64(s.Weight),
				Date:      date,
			}
			if s.Calories != nil {
				cal := float64(*s.Calories)
				set.CaloriesBurned = &cal
			}
			errChan <- gdb.Create(&set).Error
		}(s)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return &PersistenceError{Op: "create sets", Err: err}
		}
	}
	return nil
}

func invalidateUserCache(userID uint) {
	if !cache.Enabled() {
		return
	}
	if err := cache.DeletePattern(fmt.Sprintf("cache:%d:*", userID)); err != nil {
		utils.Logger.Warn("cache_invalidate_failed",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}
}
