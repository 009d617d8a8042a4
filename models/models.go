package models

import "time"

const (
	GoalLoseWeight     = "lose_weight"
	GoalGainWeight     = "gain_weight"
	GoalMaintainWeight = "maintain_weight"
	GoalAddMuscle      = "add_muscle"
)

// ValidFitnessGoals is the closed set accepted by the profile endpoint.
var ValidFitnessGoals = []string{GoalLoseWeight, GoalGainWeight, GoalMaintainWeight, GoalAddMuscle}

type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Username        string    `gorm:"unique" json:"username"`
	Email           string    `gorm:"unique" json:"email"`
	PasswordHash    string    `json:"-"`
	CurrentWeight   *float64  `json:"current_weight"`
	Height          *float64  `json:"height"`
	GoalWeight      *float64  `json:"goal_weight"`
	FitnessGoal     string    `json:"fitness_goal"`
	ProfileComplete bool      `gorm:"default:false" json:"profile_complete"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	Routines        []Routine `gorm:"foreignKey:UserID"`
}

// Routine names are not unique per user. Chat commands resolve them by
// fuzzy match, so duplicates are allowed and expected.
type Routine struct {
	ID          uint      `gorm:"primaryKey" json:"routine_id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	RoutineName string    `json:"routine_name"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	Workouts    []Workout `gorm:"foreignKey:RoutineID"`
}

type Workout struct {
	ID                  uint      `gorm:"primaryKey" json:"workout_id"`
	RoutineID           uint      `gorm:"index" json:"routine_id"`
	WorkoutName         string    `json:"workout_name"`
	Date                time.Time `json:"date"`
	TotalCaloriesBurned *float64  `json:"total_calories_burned"`
	DurationMinutes     *int      `json:"duration_minutes"`
	Notes               string    `json:"notes"`
	WorkoutType         string    `json:"workout_type"`
	Sets                []Set     `gorm:"foreignKey:WorkoutID"`
}

type Set struct {
	ID             uint      `gorm:"primaryKey" json:"set_id"`
	WorkoutID      uint      `gorm:"index" json:"workout_id"`
	SetReps        int       `json:"set_reps"`
	SetWeight      float64   `json:"set_weight"`
	CaloriesBurned *float64  `json:"calories_burned"`
	Date           time.Time `json:"date"`
}

// ChatHistory is one-per-user; messages are append-only. The persisted
// history is unbounded, only the LLM context window is truncated.
type ChatHistory struct {
	ID       uint          `gorm:"primaryKey" json:"id"`
	UserID   uint          `gorm:"uniqueIndex" json:"user_id"`
	Messages []ChatMessage `gorm:"foreignKey:ChatHistoryID"`
}

const (
	AuthorUser      = "user"
	AuthorAssistant = "assistant"
)

type ChatMessage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ChatHistoryID uint      `gorm:"index" json:"chat_history_id"`
	Author        string    `json:"author"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
