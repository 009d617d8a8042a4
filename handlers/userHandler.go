package handlers

import (
	"net/http"
	"strings"

	"github.com/definitelynotchirag/Fitlog/db"
	"github.com/definitelynotchirag/Fitlog/middleware"
	"github.com/definitelynotchirag/Fitlog/models"
	"github.com/definitelynotchirag/Fitlog/services"
	"github.com/definitelynotchirag/Fitlog/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateUser is the idempotent find-or-create the web client calls on first
// visit. Matching is by email; an existing user is returned unchanged.
func CreateUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", input.Email).First(&user).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{"data": user, "message": "User Created Successfully"})
		return
	}

	username := input.Username
	if username == "" {
		username = strings.SplitN(input.Email, "@", 2)[0]
	}

	user = models.User{
		Username: username,
		Email:    input.Email,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		utils.Logger.Error("create_user_failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create user"})
		return
	}

	utils.Logger.Info("user_created", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"data": user, "message": "User Created Successfully"})
}

type fitnessProfileInput struct {
	CurrentWeight float64 `json:"currentWeight" validate:"required,gt=0"`
	Height        float64 `json:"height" validate:"required,gt=0"`
	GoalWeight    float64 `json:"goalWeight" validate:"required,gt=0"`
	FitnessGoal   string  `json:"fitnessGoal" validate:"required"`
}

// UpdateFitnessProfile handles POST /api/users/fitness-profile.
func UpdateFitnessProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User Not Signed In"})
		return
	}

	var input fitnessProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fitness profile fields are required"})
		return
	}
	if err := middleware.ValidateStruct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fitness profile fields are required"})
		return
	}

	validGoal := false
	for _, g := range models.ValidFitnessGoals {
		if input.FitnessGoal == g {
			validGoal = true
			break
		}
	}
	if !validGoal {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fitness goal"})
		return
	}

	user.CurrentWeight = &input.CurrentWeight
	user.Height = &input.Height
	user.GoalWeight = &input.GoalWeight
	user.FitnessGoal = input.FitnessGoal
	user.ProfileComplete = true

	if err := db.DB.Save(&user).Error; err != nil {
		utils.Logger.Error("fitness_profile_update_failed", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update fitness profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
		"message": "Fitness profile updated successfully",
	})
}

// GetFitnessProfile handles GET /api/users/fitness-profile.
func GetFitnessProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User Not Signed In"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"current_weight":   user.CurrentWeight,
			"height":           user.Height,
			"goal_weight":      user.GoalWeight,
			"fitness_goal":     user.FitnessGoal,
			"profile_complete": user.ProfileComplete,
		},
	})
}

// GetChatHistory handles POST /api/users/history, creating an empty history
// row when none exists yet.
func GetChatHistory(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	msgs, err := services.RecentMessages(db.DB, user.ID, services.ChatHistoryWindow)
	if err != nil {
		utils.Logger.Error("chat_history_fetch_failed", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching chat history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chatHistory": msgs})
}
