package services

import (
	"time"

	"github.com/definitelynotchirag/Fitlog/models"
	"gorm.io/gorm"
)

// Entity resolution: free-text routine/workout names from chat are matched
// against the user's stored rows by fuzzy score. Find* never writes;
// FindOrCreate* is the explicitly side-effecting variant.
//
// Known limitation: two concurrent requests resolving the same unseen name
// race and can both create a row. There is no unique constraint on names
// (duplicates are legal) and no advisory lock.

// FindRoutine fuzzy-matches query against the user's routines.
// Returns nil when nothing clears the threshold.
func FindRoutine(gdb *gorm.DB, userID uint, query string) (*models.Routine, error) {
	var routines []models.Routine
	if err := gdb.Where("user_id = ?", userID).Find(&routines).Error; err != nil {
		return nil, &PersistenceError{Op: "list routines", Err: err}
	}

	names := make([]string, len(routines))
	for i, r := range routines {
		names[i] = r.RoutineName
	}

	idx, ok := bestMatch(query, names)
	if !ok {
		return nil, nil
	}
	return &routines[idx], nil
}

// FindOrCreateRoutine resolves query to an existing routine or creates one
// named query. The bool reports whether a new row was created.
func FindOrCreateRoutine(gdb *gorm.DB, userID uint, query string) (models.Routine, bool, error) {
	existing, err := FindRoutine(gdb, userID, query)
	if err != nil {
		return models.Routine{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}

	routine := models.Routine{
		UserID:      userID,
		RoutineName: query,
	}
	if err := gdb.Create(&routine).Error; err != nil {
		return models.Routine{}, false, &PersistenceError{Op: "create routine", Err: err}
	}
	return routine, true, nil
}

// FindWorkout fuzzy-matches query against the workouts of one routine.
func FindWorkout(gdb *gorm.DB, routineID uint, query string) (*models.Workout, error) {
	var workouts []models.Workout
	if err := gdb.Where("routine_id = ?", routineID).Find(&workouts).Error; err != nil {
		return nil, &PersistenceError{Op: "list workouts", Err: err}
	}

	names := make([]string, len(workouts))
	for i, w := range workouts {
		names[i] = w.WorkoutName
	}

	idx, ok := bestMatch(query, names)
	if !ok {
		return nil, nil
	}
	return &workouts[idx], nil
}

// FindOrCreateWorkout resolves query within a routine or creates a workout
// named query dated defaultDate.
func FindOrCreateWorkout(gdb *gorm.DB, routineID uint, query string, defaultDate time.Time) (models.Workout, bool, error) {
	existing, err := FindWorkout(gdb, routineID, query)
	if err != nil {
		return models.Workout{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}

	workout := models.Workout{
		RoutineID:   routineID,
		WorkoutName: query,
		Date:        defaultDate,
	}
	if err := gdb.Create(&workout).Error; err != nil {
		return models.Workout{}, false, &PersistenceError{Op: "create workout", Err: err}
	}
	return workout, true, nil
}
