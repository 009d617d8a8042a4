package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/definitelynotchirag/Fitlog/models"
	"github.com/definitelynotchirag/Fitlog/utils"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	utils.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// One connection keeps the in-memory database alive and serializes
	// the concurrent set inserts.
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Routine{},
		&models.Workout{},
		&models.Set{},
		&models.ChatHistory{},
		&models.ChatMessage{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedRoutine(t *testing.T, gdb *gorm.DB, userID uint, name string) models.Routine {
	t.Helper()
	routine := models.Routine{UserID: userID, RoutineName: name}
	if err := gdb.Create(&routine).Error; err != nil {
		t.Fatalf("seed routine %s: %v", name, err)
	}
	return routine
}

func seedWorkout(t *testing.T, gdb *gorm.DB, routineID uint, name string, date time.Time) models.Workout {
	t.Helper()
	workout := models.Workout{RoutineID: routineID, WorkoutName: name, Date: date}
	if err := gdb.Create(&workout).Error; err != nil {
		t.Fatalf("seed workout %s: %v", name, err)
	}
	return workout
}

func seedSet(t *testing.T, gdb *gorm.DB, workoutID uint, reps int, weight float64, date time.Time) models.Set {
	t.Helper()
	set := models.Set{WorkoutID: workoutID, SetReps: reps, SetWeight: weight, Date: date}
	if err := gdb.Create(&set).Error; err != nil {
		t.Fatalf("seed set: %v", err)
	}
	return set
}

func countRows(t *testing.T, gdb *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := gdb.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

// fakeGen scripts the completion client for pipeline tests.
type fakeGen struct {
	generate func(system, user string) (string, error)
	stream   func(system, user string, fn func(delta string) error) (string, error)
}

func (f *fakeGen) Generate(_ context.Context, system, user string) (string, error) {
	return f.generate(system, user)
}

func (f *fakeGen) GenerateStream(_ context.Context, system, user string, fn func(delta string) error) (string, error) {
	if f.stream != nil {
		return f.stream(system, user, fn)
	}
	out, err := f.generate(system, user)
	if err != nil {
		return "", err
	}
	if err := fn(out); err != nil {
		return out, err
	}
	return out, nil
}
